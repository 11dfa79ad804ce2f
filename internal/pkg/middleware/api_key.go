package middleware

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/models"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/repository"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/database"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/usercontext"
)

// APIKeyAuthMiddleware authenticates /api/v1 requests with a per-user API
// key, taken from the X-API-Key header or a bearer token. On success it
// populates the same user context the session middleware would.
func APIKeyAuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		apiKey := extractAPIKey(c)
		if apiKey == "" {
			return apiError(c, fiber.StatusUnauthorized, "unauthorized", "Missing API key")
		}

		db := database.GetDB()
		if db == nil {
			log.Print("api key middleware: database unavailable")
			return apiError(c, fiber.StatusInternalServerError, "internal_server_error", "Database unavailable")
		}

		// Keys are stored hashed; compare by hash, never by value.
		hash := models.HashAPIKey(apiKey)
		repo := repository.GetGlobalFactory().GetUserRepository()
		user, settings, err := repo.GetByAPIKeyHash(hash)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apiError(c, fiber.StatusUnauthorized, "unauthorized", "Invalid API key")
			}
			log.Printf("api key lookup failed: %v", err)
			return apiError(c, fiber.StatusInternalServerError, "internal_server_error", "API key verification failed")
		}

		if user.Status != models.STATUS_ACTIVE {
			return apiError(c, fiber.StatusForbidden, "forbidden", "User inactive")
		}

		// Last-used timestamp is best effort, a failed write must not block
		// the request.
		if err := db.Model(&models.UserSettings{}).
			Where("id = ?", settings.ID).
			Update("api_key_last_used_at", time.Now()).Error; err != nil {
			log.Printf("failed to update api key usage timestamp for user %d: %v", user.ID, err)
		}

		isAdmin := user.Role == models.ROLE_ADMIN
		c.Locals(usercontext.LocalsKey, usercontext.UserContext{
			UserID:     user.ID,
			Username:   user.Name,
			IsLoggedIn: true,
			IsAdmin:    isAdmin,
		})
		c.Locals(usercontext.KeyFromProtected, true)
		c.Locals(usercontext.KeyUserID, user.ID)
		c.Locals(usercontext.KeyUsername, user.Name)
		c.Locals(usercontext.KeyIsAdmin, isAdmin)

		return c.Next()
	}
}

func apiError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": code, "message": message})
}

func extractAPIKey(c *fiber.Ctx) string {
	if key := strings.TrimSpace(c.Get("X-API-Key")); key != "" {
		return key
	}
	auth := strings.TrimSpace(c.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}
