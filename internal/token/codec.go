package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrMalformed        = errors.New("token is malformed")
	ErrSignatureInvalid = errors.New("token signature is invalid")
	ErrIssuerMismatch   = errors.New("token issuer mismatch")
	ErrAudienceMismatch = errors.New("token audience mismatch")
	ErrExpired          = errors.New("token is expired")
)

// AccessClaims is the claim set of an access token. Roles carries the role
// names exactly as issued; matching downstream is case-sensitive.
type AccessClaims struct {
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// Codec issues and validates HS256-signed access tokens. It is stateless and
// safe for concurrent use.
type Codec struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
}

func NewCodec(secret, issuer, audience string, ttl time.Duration) *Codec {
	return &Codec{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		ttl:      ttl,
	}
}

// Issue signs a fresh access token for subject with the given role claims.
// Each token gets a unique jti so otherwise-identical tokens stay
// distinguishable.
func (c *Codec) Issue(subject string, roles []string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(c.ttl)

	claims := AccessClaims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        uuid.NewString(),
			Issuer:    c.issuer,
			Audience:  jwt.ClaimStrings{c.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ValidateStrict verifies signature, signing method, issuer, audience, and
// lifetime. Used on every protected call.
func (c *Codec) ValidateStrict(raw string) (*AccessClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithAudience(c.audience),
		jwt.WithExpirationRequired(),
	)

	claims := &AccessClaims{}
	tok, err := parser.ParseWithClaims(raw, claims, c.keyFunc)
	if err != nil {
		return nil, mapParseError(err)
	}
	if !tok.Valid {
		return nil, ErrMalformed
	}
	return claims, nil
}

// ValidateIgnoringExpiry verifies signature, signing method, issuer, and
// audience but tolerates an elapsed expiry. This is what lets a just-expired
// access token still identify its owner during the refresh exchange, while
// forged or foreign tokens are still rejected.
func (c *Codec) ValidateIgnoringExpiry(raw string) (*AccessClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	claims := &AccessClaims{}
	if _, err := parser.ParseWithClaims(raw, claims, c.keyFunc); err != nil {
		return nil, mapParseError(err)
	}

	// WithoutClaimsValidation skips iss/aud along with exp, so check those
	// two by hand.
	if claims.Issuer != c.issuer {
		return nil, ErrIssuerMismatch
	}
	if !containsAudience(claims.Audience, c.audience) {
		return nil, ErrAudienceMismatch
	}
	return claims, nil
}

func (c *Codec) keyFunc(t *jwt.Token) (interface{}, error) {
	return c.secret, nil
}

func containsAudience(aud jwt.ClaimStrings, want string) bool {
	for _, a := range aud {
		if a == want {
			return true
		}
	}
	return false
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrSignatureInvalid
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return ErrIssuerMismatch
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return ErrAudienceMismatch
	default:
		return ErrMalformed
	}
}
