package middleware

import (
	"log"
	"slices"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	LocalUserID    = "user_id"
	LocalUserRoles = "user_roles"
)

// UserContextMiddleware extracts user identity and roles set by Gateway.
func UserContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := strings.TrimSpace(c.Get("X-User-ID"))
		if userID == "" {
			log.Printf("❌ [USER_CTX] X-User-ID required but missing on secured route: %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing X-User-ID — request must come through gateway with auth context",
			})
		}

		var roles []string
		for _, r := range strings.Split(c.Get("X-User-Roles"), ",") {
			if r = strings.TrimSpace(r); r != "" {
				roles = append(roles, r)
			}
		}

		c.Locals(LocalUserID, userID)
		c.Locals(LocalUserRoles, roles)
		return c.Next()
	}
}

// RequireRole rejects requests whose gateway roles do not include role.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		roles, _ := c.Locals(LocalUserRoles).([]string)
		if !slices.Contains(roles, role) {
			log.Printf("🚫 [USER_CTX] %v lacks role %q for %s", c.Locals(LocalUserID), role, c.Path())
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "insufficient role",
				"cause": "requires " + role,
			})
		}
		return c.Next()
	}
}

// UserID returns the caller set by UserContextMiddleware.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalUserID).(string)
	return id
}
