package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/usercontext"
)

// RequireAuth rejects requests without a logged-in session.
func RequireAuth(c *fiber.Ctx) error {
	if !usercontext.Get(c).IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "unauthorized",
			"message": "login required",
		})
	}
	return c.Next()
}

// RequireAdmin rejects requests whose session does not carry the admin role.
func RequireAdmin(c *fiber.Ctx) error {
	ctx := usercontext.Get(c)
	if !ctx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "unauthorized",
			"message": "login required",
		})
	}
	if !ctx.IsAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":   "forbidden",
			"message": "admin role required",
		})
	}
	return c.Next()
}
