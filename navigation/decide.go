package navigation

import "github.com/sportae/scoreauth"

// Action is what the guard should do.
type Action int

const (
	// ActionNone leaves the route alone.
	ActionNone Action = iota
	// ActionWait defers any decision until the session settles.
	ActionWait
	// ActionRedirect replaces the route with Decision.Target.
	ActionRedirect
)

func (a Action) String() string {
	switch a {
	case ActionWait:
		return "wait"
	case ActionRedirect:
		return "redirect"
	}
	return "none"
}

// Decision is the outcome of [Decide].
type Decision struct {
	Action Action
	Target string
	Reason string
}

// Home returns the landing route for role. Admins land where viewers do.
func Home(role scoreauth.Role) string {
	if role == scoreauth.RoleScorer {
		return ScorerHome
	}
	return ViewerHome
}

// Decide applies the redirect rules in order; the first match wins. A
// session that is loading or not yet restored never redirects.
func Decide(s scoreauth.State, loc Location) Decision {
	if s.IsLoading || !s.Ready {
		return Decision{Action: ActionWait, Reason: "session loading"}
	}

	authenticated := s.IsAuthenticated()

	if !authenticated && loc.Group != GroupAuth {
		return Decision{Action: ActionRedirect, Target: AuthEntry, Reason: "signed out"}
	}

	if authenticated && loc.Group == GroupAuth {
		return Decision{Action: ActionRedirect, Target: Home(s.Role()), Reason: "signed in on auth flow"}
	}

	if authenticated && loc.Group == GroupTabs {
		scorer := s.Role() == scoreauth.RoleScorer
		if scorer && loc.Screen == ScreenViewerHome {
			return Decision{Action: ActionRedirect, Target: ScorerHome, Reason: "scorer on viewer home"}
		}
		if !scorer && loc.Screen == ScreenScorerHome {
			return Decision{Action: ActionRedirect, Target: ViewerHome, Reason: "viewer on scorer home"}
		}
	}

	return Decision{Action: ActionNone}
}
