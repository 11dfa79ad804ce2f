package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/models"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/database"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/utils"
)

// HandleUserProfile returns the current user's account data.
func HandleUserProfile(c *fiber.Ctx) error {
	db := database.GetDB()

	var user models.User
	if err := db.First(&user, currentUserID(c)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "user not found")
		}
		log.Errorf("profile lookup failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "lookup failed")
	}

	settings, err := models.GetUserSettings(db, user.ID)
	if err != nil {
		log.Errorf("user settings lookup failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "lookup failed")
	}

	return c.JSON(fiber.Map{
		"user":       user,
		"settings":   settings,
		"avatar_url": utils.GetGravatarURL(user.Email, 200),
	})
}

// HandleUserProfileUpdate changes the current user's name and notification preferences.
func HandleUserProfileUpdate(c *fiber.Ctx) error {
	var req struct {
		Name           string `json:"name"`
		NotifyListings *bool  `json:"notify_listings"`
		NotifyPayouts  *bool  `json:"notify_payouts"`
	}
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "malformed request body")
	}

	db := database.GetDB()
	userID := currentUserID(c)

	if req.Name != "" {
		if err := db.Model(&models.User{}).Where("id = ?", userID).Update("name", req.Name).Error; err != nil {
			log.Errorf("profile update failed: %v", err)
			return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "update failed")
		}
	}

	if req.NotifyListings != nil || req.NotifyPayouts != nil {
		settings, err := models.GetUserSettings(db, userID)
		if err != nil {
			log.Errorf("user settings lookup failed: %v", err)
			return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "update failed")
		}
		if req.NotifyListings != nil {
			settings.NotifyListings = *req.NotifyListings
		}
		if req.NotifyPayouts != nil {
			settings.NotifyPayouts = *req.NotifyPayouts
		}
		if err := db.Save(settings).Error; err != nil {
			log.Errorf("user settings update failed: %v", err)
			return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "update failed")
		}
	}

	return c.JSON(fiber.Map{"ok": true})
}

// HandleAPIKeyIssue generates a fresh API key for the current user. The raw
// secret is only returned once; we store the SHA-256 hash.
func HandleAPIKeyIssue(c *fiber.Ctx) error {
	db := database.GetDB()

	settings, err := models.GetUserSettings(db, currentUserID(c))
	if err != nil {
		log.Errorf("user settings lookup failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "key issue failed")
	}

	rawKey, err := settings.IssueAPIKey()
	if err != nil {
		log.Errorf("API key generation failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "key issue failed")
	}
	if err := db.Save(settings).Error; err != nil {
		log.Errorf("API key persist failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "key issue failed")
	}

	return c.JSON(fiber.Map{
		"api_key": rawKey,
		"prefix":  settings.APIKeyPrefix,
	})
}

// HandleAPIKeyRevoke invalidates the current user's API key.
func HandleAPIKeyRevoke(c *fiber.Ctx) error {
	db := database.GetDB()

	settings, err := models.GetUserSettings(db, currentUserID(c))
	if err != nil {
		log.Errorf("user settings lookup failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "key revoke failed")
	}
	if !settings.HasActiveAPIKey() {
		return jsonError(c, fiber.StatusNotFound, "not_found", "no active API key")
	}

	settings.RevokeAPIKey()
	if err := db.Save(settings).Error; err != nil {
		log.Errorf("API key revoke persist failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "key revoke failed")
	}

	return c.JSON(fiber.Map{"ok": true})
}
