package controllers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/models"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/repository"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/customfields"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/database"
)

// HandleAdminSettingsGet returns the current plugin-wide settings.
func HandleAdminSettingsGet(c *fiber.Ctx) error {
	return c.JSON(models.GetAppSettings())
}

// HandleAdminSettingsSave persists new settings and refreshes the in-memory
// copy that request snapshots are built from.
func HandleAdminSettingsSave(c *fiber.Ctx) error {
	var settings models.AppSettings
	if err := c.BodyParser(&settings); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "malformed request body")
	}

	if err := models.SaveSettings(database.GetDB(), &settings); err != nil {
		return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", err.Error())
	}

	return c.JSON(models.GetAppSettings())
}

// HandleAdminCustomFieldList returns all custom field definitions.
func HandleAdminCustomFieldList(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()
	fields, err := repos.CustomField.GetAll(c.Query("applies_to"), false)
	if err != nil {
		log.Errorf("custom field list failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "lookup failed")
	}
	return c.JSON(fiber.Map{"fields": fields})
}

// HandleAdminCustomFieldCreate creates a custom field definition.
func HandleAdminCustomFieldCreate(c *fiber.Ctx) error {
	var field models.CustomField
	if err := c.BodyParser(&field); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "malformed request body")
	}

	if err := customFieldsService.CreateField(requestSettings(c), &field); err != nil {
		if errors.Is(err, customfields.ErrMissingOptions) {
			return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", "choice fields need at least one option")
		}
		return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", err.Error())
	}
	return c.Status(fiber.StatusCreated).JSON(field)
}

// HandleAdminCustomFieldUpdate updates a custom field definition.
func HandleAdminCustomFieldUpdate(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "invalid field id")
	}

	var field models.CustomField
	if err := c.BodyParser(&field); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "malformed request body")
	}
	field.ID = uint(id)

	if err := customFieldsService.UpdateField(requestSettings(c), &field); err != nil {
		switch {
		case errors.Is(err, customfields.ErrMissingOptions):
			return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", "choice fields need at least one option")
		case errors.Is(err, gorm.ErrRecordNotFound):
			return jsonError(c, fiber.StatusNotFound, "not_found", "field not found")
		default:
			return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", err.Error())
		}
	}
	return c.JSON(field)
}

// HandleAdminCustomFieldDelete removes a custom field definition.
func HandleAdminCustomFieldDelete(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "invalid field id")
	}

	repos := repository.GetGlobalRepositories()
	if err := repos.CustomField.Delete(uint(id)); err != nil {
		log.Errorf("custom field delete failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "delete failed")
	}
	return c.JSON(fiber.Map{"ok": true})
}
