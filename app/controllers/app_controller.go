package controllers

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/models"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/repository"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/analytics"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/appbuilder"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/constants"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/entitlements"
)

var appService *appbuilder.Service

// InitializeAppController wires the app builder service to the database.
func InitializeAppController() {
	appService = appbuilder.NewService(repository.GetGlobalRepositories().App)
}

// HandleAppCreate creates a draft micro-site app for the current user.
func HandleAppCreate(c *fiber.Ctx) error {
	var app models.PwaApp
	if err := c.BodyParser(&app); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "malformed request body")
	}

	if err := appService.CreateApp(requestSettings(c), currentUserID(c), &app); err != nil {
		if errors.Is(err, appbuilder.ErrFeatureDisabled) {
			return jsonError(c, fiber.StatusServiceUnavailable, "feature_disabled", "the app builder is disabled")
		}
		return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", err.Error())
	}

	return c.Status(fiber.StatusCreated).JSON(app)
}

// HandleAppUpdate updates a draft or published app owned by the current user.
func HandleAppUpdate(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "invalid app id")
	}

	var app models.PwaApp
	if err := c.BodyParser(&app); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "malformed request body")
	}
	app.ID = uint(id)

	if err := appService.UpdateApp(requestSettings(c), currentUserID(c), &app); err != nil {
		switch {
		case errors.Is(err, appbuilder.ErrFeatureDisabled):
			return jsonError(c, fiber.StatusServiceUnavailable, "feature_disabled", "the app builder is disabled")
		case errors.Is(err, appbuilder.ErrNotOwner):
			return jsonError(c, fiber.StatusForbidden, "forbidden", "not your app")
		case errors.Is(err, gorm.ErrRecordNotFound):
			return jsonError(c, fiber.StatusNotFound, "not_found", "app not found")
		default:
			return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", err.Error())
		}
	}

	return c.JSON(app)
}

// HandleMyApps lists the current user's apps.
func HandleMyApps(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()
	apps, err := repos.App.GetByUserID(currentUserID(c), c.QueryInt("offset", 0), c.QueryInt("limit", 20))
	if err != nil {
		log.Errorf("failed to load user apps: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "lookup failed")
	}
	return c.JSON(fiber.Map{"apps": apps})
}

// HandleAppPublish makes an app publicly reachable under /a/{uuid}/.
func HandleAppPublish(c *fiber.Ctx) error {
	return handleAppTransition(c, true)
}

// HandleAppUnpublish takes a published app offline.
func HandleAppUnpublish(c *fiber.Ctx) error {
	return handleAppTransition(c, false)
}

func handleAppTransition(c *fiber.Ctx, publish bool) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "invalid app id")
	}

	if publish {
		err = appService.Publish(requestSettings(c), currentUserID(c), uint(id))
	} else {
		err = appService.Unpublish(currentUserID(c), uint(id))
	}
	if err != nil {
		switch {
		case errors.Is(err, appbuilder.ErrFeatureDisabled):
			return jsonError(c, fiber.StatusServiceUnavailable, "feature_disabled", "the app builder is disabled")
		case errors.Is(err, appbuilder.ErrNotOwner):
			return jsonError(c, fiber.StatusForbidden, "forbidden", "not your app")
		case errors.Is(err, gorm.ErrRecordNotFound):
			return jsonError(c, fiber.StatusNotFound, "not_found", "app not found")
		default:
			log.Errorf("app transition failed: %v", err)
			return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "transition failed")
		}
	}

	return c.JSON(fiber.Map{"ok": true})
}

// HandleAppIconUpload accepts a source image and generates the PNG and WebP
// icon variants the manifest references.
func HandleAppIconUpload(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "invalid app id")
	}

	repos := repository.GetGlobalRepositories()
	app, err := repos.App.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "app not found")
		}
		log.Errorf("app lookup failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "lookup failed")
	}
	if app.UserID != currentUserID(c) {
		return jsonError(c, fiber.StatusForbidden, "forbidden", "not your app")
	}

	fileHeader, err := c.FormFile("icon")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "missing icon file")
	}

	tmpFile, err := os.CreateTemp("", "app-icon-*")
	if err != nil {
		log.Errorf("temp file creation failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "upload failed")
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()
	defer os.Remove(tmpPath)

	if err := c.SaveFile(fileHeader, tmpPath); err != nil {
		log.Errorf("icon save failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "upload failed")
	}

	outputDir := filepath.Join(constants.UploadsPath, "apps", app.AppUUID, "icons")
	icons, err := appbuilder.GenerateIconVariants(requestSettings(c), app, tmpPath, outputDir)
	if err != nil {
		return jsonError(c, fiber.StatusUnprocessableEntity, "invalid_image", "could not process icon image")
	}

	app.Icons = icons
	app.CacheVersion++
	if err := repos.App.Update(app); err != nil {
		log.Errorf("icon persist failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "upload failed")
	}

	return c.JSON(fiber.Map{"icons": icons})
}

// HandleAppManifest serves the generated web app manifest for a published app
// and records the app view.
func HandleAppManifest(c *fiber.Ctx) error {
	app, err := appService.GetPublished(c.Params("uuid"))
	if err != nil {
		return appNotFound(c, err)
	}

	ipv4, _ := GetClientIP(c)
	if err := analyticsService.TrackView(requestSettings(c), app.ID, models.ItemTypeApp, ipv4, currentUserID(c)); err != nil &&
		!errors.Is(err, analytics.ErrFeatureDisabled) {
		log.Warnf("failed to track app view: %v", err)
	}

	body, err := appbuilder.ManifestJSON(app)
	if err != nil {
		log.Errorf("manifest render failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "manifest render failed")
	}

	c.Set(fiber.HeaderContentType, "application/manifest+json")
	return c.Send(body)
}

// HandleAppServiceWorker serves the generated service worker script.
func HandleAppServiceWorker(c *fiber.Ctx) error {
	app, err := appService.GetPublished(c.Params("uuid"))
	if err != nil {
		return appNotFound(c, err)
	}

	c.Set(fiber.HeaderContentType, "application/javascript; charset=utf-8")
	c.Set("Service-Worker-Allowed", "/a/"+app.AppUUID+"/")
	return c.Send(appbuilder.BuildServiceWorker(app, appFeatures(c, app)))
}

// HandleAppOfflinePage serves the precached offline fallback page. Apps whose
// plan does not include the offline page have no fallback to serve.
func HandleAppOfflinePage(c *fiber.Ctx) error {
	app, err := appService.GetPublished(c.Params("uuid"))
	if err != nil {
		return appNotFound(c, err)
	}
	if !appFeatures(c, app).Has(entitlements.FeatureOfflinePage) {
		return jsonError(c, fiber.StatusNotFound, "not_found", "offline page not available")
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Send(appbuilder.BuildOfflinePage(app))
}

// appFeatures resolves an app's effective feature set. Resolution failures
// degrade to no features rather than failing the asset request.
func appFeatures(c *fiber.Ctx, app *models.PwaApp) entitlements.FeatureSet {
	features, err := planService.EffectiveFeaturesForApp(requestSettings(c), app)
	if err != nil {
		log.Warnf("failed to resolve features for app %s: %v", app.AppUUID, err)
		return entitlements.FeatureSet{}
	}
	return features
}

func appNotFound(c *fiber.Ctx, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, appbuilder.ErrNotPublished) {
		return jsonError(c, fiber.StatusNotFound, "not_found", "app not found")
	}
	log.Errorf("app lookup failed: %v", err)
	return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "lookup failed")
}
