package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/putrawijaya/trackdev_be/internal/models"
)

// currentUser returns the user resolved by the auth middleware.
func currentUser(c *fiber.Ctx) (*models.User, error) {
	user, ok := c.Locals("user").(*models.User)
	if !ok || user == nil {
		return nil, fmt.Errorf("no authenticated user in context")
	}
	return user, nil
}
