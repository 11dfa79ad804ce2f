package controllers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/models"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/repository"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/analytics"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/capability"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/entitlements"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/usercontext"
)

// statsTarget resolves the item behind a stats request and checks that the
// current user owns it.
func statsTarget(itemType string, itemID uint) (ownerID uint, err error) {
	repos := repository.GetGlobalRepositories()
	switch itemType {
	case models.ItemTypeListing:
		listing, err := repos.Listing.GetByID(itemID)
		if err != nil {
			return 0, err
		}
		return listing.UserID, nil
	case models.ItemTypeApp:
		app, err := repos.App.GetByID(itemID)
		if err != nil {
			return 0, err
		}
		return app.UserID, nil
	default:
		return 0, analytics.ErrInvalidItemType
	}
}

// HandleAnalyticsStats returns view and click aggregates for an owned item.
// Listing analytics additionally require the plan's analytics feature.
func HandleAnalyticsStats(c *fiber.Ctx) error {
	itemID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "invalid item id")
	}
	itemType := c.Query("type", models.ItemTypeListing)

	repos := repository.GetGlobalRepositories()
	user, err := repos.User.GetByID(currentUserID(c))
	if err != nil {
		log.Errorf("user lookup failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "lookup failed")
	}
	if !capability.Can(repos.User, user, capability.ViewAnalytics) {
		return jsonError(c, fiber.StatusForbidden, "forbidden", "analytics access denied")
	}

	ownerID, err := statsTarget(itemType, uint(itemID))
	if err != nil {
		switch {
		case errors.Is(err, analytics.ErrInvalidItemType):
			return jsonError(c, fiber.StatusBadRequest, "invalid_request", "unknown item type")
		case errors.Is(err, gorm.ErrRecordNotFound):
			return jsonError(c, fiber.StatusNotFound, "not_found", "item not found")
		default:
			log.Errorf("stats target lookup failed: %v", err)
			return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "lookup failed")
		}
	}
	if ownerID != user.ID && user.Role != models.ROLE_ADMIN {
		return jsonError(c, fiber.StatusForbidden, "forbidden", "not your item")
	}

	settings := requestSettings(c)
	if itemType == models.ItemTypeListing {
		features, err := planService.EffectiveFeaturesForListing(settings, uint(itemID))
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Errorf("feature lookup failed: %v", err)
			return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "lookup failed")
		}
		if !features.Has(entitlements.FeatureAnalytics) && user.Role != models.ROLE_ADMIN {
			return jsonError(c, fiber.StatusForbidden, "plan_required", "the current plan does not include analytics")
		}
	}

	stats, err := analyticsService.GetStats(uint(itemID), itemType, c.Query("period", "total"))
	if err != nil {
		if errors.Is(err, analytics.ErrInvalidPeriod) {
			return jsonError(c, fiber.StatusBadRequest, "invalid_request", "unknown period")
		}
		log.Errorf("stats query failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "stats query failed")
	}

	return c.JSON(stats)
}

// HandleAnalyticsDaily returns a per-day view series for charting.
func HandleAnalyticsDaily(c *fiber.Ctx) error {
	itemID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "invalid item id")
	}
	itemType := c.Query("type", models.ItemTypeListing)
	days := c.QueryInt("days", 30)

	ownerID, err := statsTarget(itemType, uint(itemID))
	if err != nil {
		switch {
		case errors.Is(err, analytics.ErrInvalidItemType):
			return jsonError(c, fiber.StatusBadRequest, "invalid_request", "unknown item type")
		case errors.Is(err, gorm.ErrRecordNotFound):
			return jsonError(c, fiber.StatusNotFound, "not_found", "item not found")
		default:
			log.Errorf("stats target lookup failed: %v", err)
			return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "lookup failed")
		}
	}
	if ownerID != currentUserID(c) && !usercontext.IsAdmin(c) {
		return jsonError(c, fiber.StatusForbidden, "forbidden", "not your item")
	}

	series, err := analyticsService.GetDailyViews(uint(itemID), itemType, days)
	if err != nil {
		log.Errorf("daily stats query failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "stats query failed")
	}

	return c.JSON(fiber.Map{"daily": series})
}
