package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"relay/internal/domain"
)

const claimsLocalKey = "auth.claims"

// Middleware verifies the bearer token and stores the claims on the request.
func Middleware(tokens *TokenService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}

		claims, err := tokens.Verify(token)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
		}

		c.Locals(claimsLocalKey, claims)
		return c.Next()
	}
}

// RequireAction rejects requests whose role is not permitted the action.
func RequireAction(action Action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := ClaimsFromCtx(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}
		if !Can(claims.Role, action) {
			return fiber.NewError(fiber.StatusForbidden, "role not permitted for this action")
		}
		return c.Next()
	}
}

// ClaimsFromCtx returns the verified claims stored by Middleware.
func ClaimsFromCtx(c *fiber.Ctx) (Claims, bool) {
	claims, ok := c.Locals(claimsLocalKey).(Claims)
	return claims, ok
}

// RoleFromCtx returns the caller role, or empty when unauthenticated.
func RoleFromCtx(c *fiber.Ctx) domain.Role {
	claims, ok := ClaimsFromCtx(c)
	if !ok {
		return domain.Role("")
	}
	return claims.Role
}

func bearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		return "", false
	}
	return token, true
}
