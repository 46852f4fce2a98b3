package middleware

import (
	"errors"
	"strings"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/shelfwise/auth-backend/internal/auth"
	"github.com/shelfwise/auth-backend/internal/config"
	"github.com/shelfwise/auth-backend/internal/dto"
	"github.com/shelfwise/auth-backend/internal/token"
)

const identityKey = "identity"

// Protected guards routes that only need an authenticated caller. Signature
// and expiry are checked by the JWT middleware; issuer and audience are
// checked on the parsed claims before the request proceeds.
func Protected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.JWTSecret)},
		Claims:     &token.AccessClaims{},
		SuccessHandler: func(c *fiber.Ctx) error {
			tok, ok := c.Locals("user").(*jwt.Token)
			if !ok {
				return unauthorized(c)
			}
			claims, ok := tok.Claims.(*token.AccessClaims)
			if !ok || claims.Subject == "" {
				return unauthorized(c)
			}
			if claims.Issuer != cfg.JWTIssuer || !hasAudience(claims.Audience, cfg.JWTAudience) {
				return unauthorized(c)
			}
			c.Locals(identityKey, &auth.Identity{
				Username: claims.Subject,
				Roles:    claims.Roles,
				TokenID:  claims.ID,
			})
			return c.Next()
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return unauthorized(c)
		},
	})
}

// RequireRoles guards routes behind the authorization gate: strict token
// validation plus a non-empty intersection with the given roles.
func RequireRoles(gate *auth.Gate, roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, ok := bearerToken(c)
		if !ok {
			return unauthorized(c)
		}

		identity, err := gate.Authorize(raw, roles...)
		if err != nil {
			if errors.Is(err, auth.ErrForbidden) {
				return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
					Error: true, Message: "Forbidden",
				})
			}
			return unauthorized(c)
		}

		c.Locals(identityKey, identity)
		return c.Next()
	}
}

// CurrentIdentity returns the identity stored by Protected or RequireRoles.
func CurrentIdentity(c *fiber.Ctx) (*auth.Identity, bool) {
	identity, ok := c.Locals(identityKey).(*auth.Identity)
	return identity, ok
}

func bearerToken(c *fiber.Ctx) (string, bool) {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func hasAudience(aud jwt.ClaimStrings, want string) bool {
	for _, a := range aud {
		if a == want {
			return true
		}
	}
	return false
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error: true, Message: "Unauthorized: invalid or expired token",
	})
}
