package navigation

import (
	"testing"

	"github.com/sportae/scoreauth"
)

func signedIn(role scoreauth.Role) scoreauth.State {
	return scoreauth.State{
		User:      &scoreauth.User{ID: "u-1", Role: role},
		AuthToken: "t",
		Ready:     true,
	}
}

func TestDecide(t *testing.T) {
	signedOut := scoreauth.State{Ready: true}

	tests := []struct {
		name   string
		state  scoreauth.State
		at     string
		action Action
		target string
	}{
		{name: "loading waits", state: scoreauth.State{Ready: true, IsLoading: true}, at: "/(tabs)/index", action: ActionWait},
		{name: "not restored waits", state: scoreauth.State{}, at: "/(tabs)/index", action: ActionWait},
		{name: "signed in but loading waits", state: func() scoreauth.State { s := signedIn(scoreauth.RoleScorer); s.IsLoading = true; return s }(), at: "/(auth)/login", action: ActionWait},
		{name: "signed out on viewer home", state: signedOut, at: "tabs/index", action: ActionRedirect, target: AuthEntry},
		{name: "signed out elsewhere", state: signedOut, at: "/+not-found", action: ActionRedirect, target: AuthEntry},
		{name: "signed out on auth flow", state: signedOut, at: "/(auth)/login", action: ActionNone},
		{name: "viewer on login", state: signedIn(scoreauth.RoleViewer), at: "auth/login", action: ActionRedirect, target: ViewerHome},
		{name: "scorer on login", state: signedIn(scoreauth.RoleScorer), at: "/(auth)/scorer-login", action: ActionRedirect, target: ScorerHome},
		{name: "admin on login", state: signedIn(scoreauth.RoleAdmin), at: "/(auth)", action: ActionRedirect, target: ViewerHome},
		{name: "scorer on viewer home", state: signedIn(scoreauth.RoleScorer), at: "tabs/index", action: ActionRedirect, target: ScorerHome},
		{name: "scorer on bare tabs", state: signedIn(scoreauth.RoleScorer), at: "/(tabs)", action: ActionRedirect, target: ScorerHome},
		{name: "viewer on scorer home", state: signedIn(scoreauth.RoleViewer), at: "/(tabs)/scorer-home", action: ActionRedirect, target: ViewerHome},
		{name: "admin on scorer home", state: signedIn(scoreauth.RoleAdmin), at: "/(tabs)/scorer-home", action: ActionRedirect, target: ViewerHome},
		{name: "scorer on scorer home", state: signedIn(scoreauth.RoleScorer), at: "/(tabs)/scorer-home", action: ActionNone},
		{name: "viewer on viewer home", state: signedIn(scoreauth.RoleViewer), at: "/(tabs)/index", action: ActionNone},
		{name: "scorer on other tab", state: signedIn(scoreauth.RoleScorer), at: "/(tabs)/profile", action: ActionNone},
		{name: "signed in outside groups", state: signedIn(scoreauth.RoleViewer), at: "/match/42", action: ActionNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decide(tt.state, ParseLocation(tt.at))
			if d.Action != tt.action || d.Target != tt.target {
				t.Fatalf("Decide = %s %q, want %s %q", d.Action, d.Target, tt.action, tt.target)
			}
		})
	}
}

func TestHome(t *testing.T) {
	if Home(scoreauth.RoleScorer) != ScorerHome {
		t.Fatal("scorer home")
	}
	if Home(scoreauth.RoleViewer) != ViewerHome || Home(scoreauth.RoleAdmin) != ViewerHome {
		t.Fatal("viewer and admin share the viewer home")
	}
}
