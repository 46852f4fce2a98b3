// Package auth holds the authorization gate that guards protected
// operations: strict access-token validation plus role-claim checks.
package auth

import (
	"errors"

	"github.com/shelfwise/auth-backend/internal/token"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

// Identity is the caller identity derived from a validated access token.
type Identity struct {
	Username string
	Roles    []string
	TokenID  string
}

type Gate struct {
	codec *token.Codec
}

func NewGate(codec *token.Codec) *Gate {
	return &Gate{codec: codec}
}

// Authorize validates raw strictly (signature, issuer, audience, expiry) and,
// when requiredRoles is non-empty, requires at least one of them to appear in
// the token's role claims. Role matching is case-sensitive on the claim value
// as issued. Any token failure collapses to ErrUnauthenticated so callers
// learn nothing about which check failed.
func (g *Gate) Authorize(raw string, requiredRoles ...string) (*Identity, error) {
	claims, err := g.codec.ValidateStrict(raw)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	if claims.Subject == "" {
		return nil, ErrUnauthenticated
	}

	identity := &Identity{
		Username: claims.Subject,
		Roles:    claims.Roles,
		TokenID:  claims.ID,
	}

	if len(requiredRoles) == 0 {
		return identity, nil
	}
	for _, required := range requiredRoles {
		for _, have := range claims.Roles {
			if have == required {
				return identity, nil
			}
		}
	}
	return nil, ErrForbidden
}

// HasRole reports whether the identity carries the exact role claim.
func (i *Identity) HasRole(role string) bool {
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}
