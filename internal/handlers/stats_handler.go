package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/putrawijaya/trackdev_be/internal/models"
)

type StatsHandler struct {
	DB *gorm.DB
}

func NewStatsHandler(db *gorm.DB) *StatsHandler {
	return &StatsHandler{DB: db}
}

// GlobalStats recomputes the caller's dashboard numbers on every call: the
// students they own, those students' projects, and the revenue sum.
func (h *StatsHandler) GlobalStats(c *fiber.Ctx) error {
	dev, err := currentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "Unauthorized",
		})
	}

	ownedStudents := h.DB.Model(&models.User{}).
		Select("id").
		Where("role = ? AND assigned_developer_id = ?", models.RoleStudent, dev.ID)

	var totalStudents int64
	if err := h.DB.Model(&models.User{}).
		Where("role = ? AND assigned_developer_id = ?", models.RoleStudent, dev.ID).
		Count(&totalStudents).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to count students",
		})
	}

	var totalProjects int64
	if err := h.DB.Model(&models.Project{}).
		Where("student_id IN (?)", ownedStudents).
		Count(&totalProjects).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to count projects",
		})
	}

	var totalRevenue float64
	if err := h.DB.Model(&models.Project{}).
		Where("student_id IN (?)", ownedStudents).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&totalRevenue).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to sum revenue",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"total_students": totalStudents,
			"total_projects": totalProjects,
			"total_revenue":  totalRevenue,
		},
	})
}
