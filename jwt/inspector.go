package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNotJWT is returned when a token is opaque rather than a JWT.
var ErrNotJWT = errors.New("token is not a jwt")

// Inspector reads registered claims from unverified tokens.
type Inspector struct {
	parser *jwt.Parser
	leeway time.Duration
	now    func() time.Time
}

// NewInspector returns an inspector that tolerates leeway of clock skew.
func NewInspector(leeway time.Duration) *Inspector {
	if leeway < 0 {
		leeway = 0
	}
	return &Inspector{
		parser: jwt.NewParser(),
		leeway: leeway,
		now:    time.Now,
	}
}

// Claims returns the registered claims of token.
func (i *Inspector) Claims(token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := i.parser.ParseUnverified(token, claims); err != nil {
		return nil, errors.Join(ErrNotJWT, err)
	}
	return claims, nil
}

// ExpiresAt returns the exp claim. ok is false when the token is opaque or
// carries no expiry.
func (i *Inspector) ExpiresAt(token string) (time.Time, bool) {
	claims, err := i.Claims(token)
	if err != nil || claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// Expired reports whether token is a JWT whose expiry has passed. Opaque
// tokens and tokens without exp are never considered expired.
func (i *Inspector) Expired(token string) bool {
	exp, ok := i.ExpiresAt(token)
	if !ok {
		return false
	}
	return !i.now().Before(exp.Add(i.leeway))
}
