package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/statistics"
)

// HandleAdminDashboard returns the aggregate counters for the admin dashboard.
func HandleAdminDashboard(c *fiber.Ctx) error {
	return c.JSON(statistics.GetDashboardData())
}
