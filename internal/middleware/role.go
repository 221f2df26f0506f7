package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/putrawijaya/trackdev_be/internal/models"
)

// RequireRoles must run after RequireAuth.
func RequireRoles(allowed ...models.Role) fiber.Handler {
	allowedSet := map[models.Role]bool{}
	for _, r := range allowed {
		allowedSet[r] = true
	}

	return func(c *fiber.Ctx) error {
		user, ok := c.Locals("user").(*models.User)
		if !ok || user == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "Unauthorized",
			})
		}
		if !allowedSet[user.Role] {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"message": "Forbidden: insufficient role",
			})
		}
		return c.Next()
	}
}
