package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/models"
)

// SettingsSnapshotMiddleware captures one immutable settings snapshot per
// request, so every feature gate decision within the request sees the same
// configuration even if an admin saves new settings concurrently.
func SettingsSnapshotMiddleware(c *fiber.Ctx) error {
	c.Locals("SETTINGS_SNAPSHOT", models.CurrentSnapshot())
	return c.Next()
}
