package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/storage"
)

// HandleHealth reports the cached health of the backing stores.
func HandleHealth(c *fiber.Ctx) error {
	h := storage.GetCachedHealth()
	status := fiber.StatusOK
	if !h.Healthy {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(h)
}
