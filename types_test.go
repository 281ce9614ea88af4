package scoreauth

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{in: "viewer", want: RoleViewer},
		{in: " Scorer ", want: RoleScorer},
		{in: "ADMIN", want: RoleAdmin},
		{in: "owner", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseRole(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrRoleInvalid) {
				t.Fatalf("ParseRole(%q): expected ErrRoleInvalid, got %v", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Fatalf("ParseRole(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestRoleJSONRejectsUnknown(t *testing.T) {
	var u User
	if err := json.Unmarshal([]byte(`{"id":"u-1","role":"superuser"}`), &u); !errors.Is(err, ErrRoleInvalid) {
		t.Fatalf("expected ErrRoleInvalid, got %v", err)
	}
	if err := json.Unmarshal([]byte(`{"id":"u-1","role":1}`), &u); !errors.Is(err, ErrRoleInvalid) {
		t.Fatalf("expected numeric role rejected, got %v", err)
	}
}

func TestProfileUpdateApply(t *testing.T) {
	u := &User{ID: "u-1", Name: "A", Email: "a@x.com", Address: "Pune"}
	ProfileUpdate{Name: String("B"), Status: String("")}.applyTo(u)

	if u.Name != "B" || u.Email != "a@x.com" || u.Address != "Pune" || u.Status != "" {
		t.Fatalf("unexpected merge result: %+v", u)
	}
}

func TestStateDerivedValues(t *testing.T) {
	var s State
	if s.IsAuthenticated() || s.Role() != "" {
		t.Fatal("expected zero state signed out")
	}
	s = State{User: &User{ID: "u-1", Role: RoleAdmin}, AuthToken: "t"}
	if !s.IsAuthenticated() || s.Role() != RoleAdmin {
		t.Fatalf("unexpected derived values: %+v", s)
	}
}
