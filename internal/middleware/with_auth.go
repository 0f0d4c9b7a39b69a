package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/lumina-api/internal/utils"
)

// Role constants used by the RequireRole guard.
const (
	AuthRoleAny    = "any"
	AuthRoleAdmin  = "admin"
	AuthRoleEditor = "editor"
)

// RequireRole guards a route group behind an authenticated user with the
// given role. Admins pass every role check; editors only pass "editor" and
// "any". Must run after JWTProtected.
func RequireRole(role string) fiber.Handler {
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		role = AuthRoleAny
	}

	return func(c *fiber.Ctx) error {
		if c.Locals("user_id") == nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}

		if role == AuthRoleAny {
			return c.Next()
		}

		currentRole := normalizeRoleValue(c.Locals("user_role"))
		if currentRole == AuthRoleAdmin || currentRole == role {
			return c.Next()
		}

		return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
	}
}
