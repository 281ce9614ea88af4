package scoreauth

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sportae/scoreauth/api"
)

// Role is the closed set of account roles.
type Role string

const (
	// RoleViewer consumes sports content.
	RoleViewer Role = "viewer"
	// RoleScorer records match scores.
	RoleScorer Role = "scorer"
	// RoleAdmin is navigated like a viewer.
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleViewer, RoleScorer, RoleAdmin:
		return true
	}
	return false
}

// ParseRole accepts a role name, case-insensitively.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrRoleInvalid, s)
	}
	return r, nil
}

func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrRoleInvalid, data)
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// roleFromCode maps the service role code. Unrecognized or missing codes take
// the fallback implied by the login surface.
func roleFromCode(code api.RoleCode, fallback Role) Role {
	v, ok := code.Code()
	if !ok {
		return fallback
	}
	switch v {
	case api.RoleCodeViewer:
		return RoleViewer
	case api.RoleCodeScorer:
		return RoleScorer
	}
	return fallback
}

// User is the signed-in account as held by the client.
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email,omitempty"`
	Name         string `json:"name,omitempty"`
	Role         Role   `json:"role"`
	ProfilePic   string `json:"profilePic,omitempty"`
	NickName     string `json:"nickName,omitempty"`
	MobileNumber string `json:"mobileNumber,omitempty"`
	CountryCode  string `json:"countryCode,omitempty"`
	Address      string `json:"address,omitempty"`
	Status       string `json:"status,omitempty"`
	FCMToken     string `json:"fcmToken,omitempty"`
}

func (u *User) clone() *User {
	if u == nil {
		return nil
	}
	out := *u
	return &out
}

func decodeUser(raw string) (*User, error) {
	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, err
	}
	if strings.TrimSpace(u.ID) == "" {
		return nil, fmt.Errorf("stored user has no id")
	}
	if !u.Role.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrRoleInvalid, u.Role)
	}
	return &u, nil
}

// ProfileUpdate lists profile fields to change. Nil fields are left alone.
type ProfileUpdate struct {
	Name        *string
	ProfilePic  *string
	Status      *string
	FCMToken    *string
	CountryCode *string
	Address     *string
}

// String returns a pointer to v, for building a [ProfileUpdate].
func String(v string) *string {
	return &v
}

func (p ProfileUpdate) request() api.EditProfileRequest {
	return api.EditProfileRequest{
		Name:        p.Name,
		ProfilePic:  p.ProfilePic,
		Status:      p.Status,
		FCMToken:    p.FCMToken,
		CountryCode: p.CountryCode,
		Address:     p.Address,
	}
}

func (p ProfileUpdate) applyTo(u *User) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&u.Name, p.Name)
	set(&u.ProfilePic, p.ProfilePic)
	set(&u.Status, p.Status)
	set(&u.FCMToken, p.FCMToken)
	set(&u.CountryCode, p.CountryCode)
	set(&u.Address, p.Address)
}

// ScorerSignupRequest is the scorer registration form. The service only
// accepts Email and Password at creation; the other fields are not sent.
type ScorerSignupRequest struct {
	Email        string
	Password     string
	Name         string
	MobileNumber string
	CountryCode  string
}

// State is a read-only snapshot of the session.
type State struct {
	User        *User
	AuthToken   string
	SocketToken string
	// IsLoading is true while any session operation is in flight.
	IsLoading bool
	// Ready is false until Restore has completed.
	Ready bool
}

// IsAuthenticated reports whether a user is signed in.
func (s State) IsAuthenticated() bool {
	return s.User != nil
}

// Role returns the signed-in role, or "" when signed out.
func (s State) Role() Role {
	if s.User == nil {
		return ""
	}
	return s.User.Role
}

// AuthClient is the remote auth service as used by the Manager.
// [*api.Client] implements it.
type AuthClient interface {
	Signup(ctx context.Context, email, password string) (*api.SignupResult, error)
	Login(ctx context.Context, email, password string) (*api.LoginResponse, error)
	EditProfile(ctx context.Context, req api.EditProfileRequest) (*api.EditProfileResponse, error)
	Attach(token, userID string)
	Detach()
}
