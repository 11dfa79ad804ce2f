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
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/customfields"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/database"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/listings"
)

var (
	listingService      *listings.Service
	analyticsService    *analytics.Service
	customFieldsService *customfields.Service
)

// InitializeListingController wires the listing services to the database.
func InitializeListingController() {
	db := database.GetDB()
	repos := repository.GetGlobalRepositories()
	listingService = listings.NewService(db, repos.Listing, repos.Plan)
	analyticsService = analytics.NewService(repos.Analytics).WithRedisStatsCache()
	customFieldsService = customfields.NewService(repos.CustomField)
}

type listingRequest struct {
	models.BusinessListing
	CustomFields map[string]string `json:"custom_fields"`
}

// HandleListingSearch serves the public directory search.
func HandleListingSearch(c *fiber.Ctx) error {
	filter := repository.ListingFilter{
		Category: c.Query("category"),
		City:     c.Query("city"),
		Search:   c.Query("q"),
		Offset:   c.QueryInt("offset", 0),
		Limit:    c.QueryInt("limit", 20),
	}

	results, err := listingService.Search(requestSettings(c), filter)
	if err != nil {
		if errors.Is(err, listings.ErrFeatureDisabled) {
			return jsonError(c, fiber.StatusServiceUnavailable, "feature_disabled", "listings are disabled")
		}
		log.Errorf("listing search failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "search failed")
	}

	return c.JSON(fiber.Map{"listings": results, "count": len(results)})
}

// HandleListingGet serves one listing by slug and records the view.
func HandleListingGet(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()
	listing, err := repos.Listing.GetBySlug(c.Params("slug"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "listing not found")
		}
		log.Errorf("listing lookup failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "lookup failed")
	}
	if listing.Status != models.ListingStatusActive {
		return jsonError(c, fiber.StatusNotFound, "not_found", "listing not found")
	}

	ipv4, _ := GetClientIP(c)
	if err := analyticsService.TrackView(requestSettings(c), listing.ID, models.ItemTypeListing, ipv4, currentUserID(c)); err != nil &&
		!errors.Is(err, analytics.ErrFeatureDisabled) {
		log.Warnf("failed to track listing view: %v", err)
	}

	images, err := repos.Listing.GetImages(listing.ID)
	if err != nil {
		log.Warnf("failed to load listing images: %v", err)
	}

	return c.JSON(fiber.Map{"listing": listing, "images": images})
}

// HandleListingCreate creates a pending listing for the current user.
func HandleListingCreate(c *fiber.Ctx) error {
	var req listingRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "malformed request body")
	}

	settings := requestSettings(c)
	if settings.CustomFieldsEnabled {
		if err := customFieldsService.ValidateValues(settings, "listing", req.CustomFields); err != nil {
			return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", err.Error())
		}
	}

	listing := req.BusinessListing
	if err := listingService.Create(settings, currentUserID(c), &listing); err != nil {
		switch {
		case errors.Is(err, listings.ErrFeatureDisabled):
			return jsonError(c, fiber.StatusServiceUnavailable, "feature_disabled", "listings are disabled")
		default:
			return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", err.Error())
		}
	}

	return c.Status(fiber.StatusCreated).JSON(listing)
}

// HandleListingUpdate updates an owned listing.
func HandleListingUpdate(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "invalid listing id")
	}

	var req listingRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "malformed request body")
	}

	settings := requestSettings(c)
	if settings.CustomFieldsEnabled {
		if err := customFieldsService.ValidateValues(settings, "listing", req.CustomFields); err != nil {
			return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", err.Error())
		}
	}

	listing := req.BusinessListing
	listing.ID = uint(id)
	if err := listingService.Update(settings, currentUserID(c), &listing); err != nil {
		switch {
		case errors.Is(err, listings.ErrFeatureDisabled):
			return jsonError(c, fiber.StatusServiceUnavailable, "feature_disabled", "listings are disabled")
		case errors.Is(err, listings.ErrNotOwner):
			return jsonError(c, fiber.StatusForbidden, "forbidden", "not your listing")
		case errors.Is(err, gorm.ErrRecordNotFound):
			return jsonError(c, fiber.StatusNotFound, "not_found", "listing not found")
		default:
			return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", err.Error())
		}
	}

	return c.JSON(listing)
}

// HandleMyListings lists the current user's listings.
func HandleMyListings(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()
	results, err := repos.Listing.GetByUserID(currentUserID(c), c.QueryInt("offset", 0), c.QueryInt("limit", 20))
	if err != nil {
		log.Errorf("failed to load user listings: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "lookup failed")
	}
	return c.JSON(fiber.Map{"listings": results})
}

// HandleListingClaim opens an ownership claim for an unclaimed listing.
func HandleListingClaim(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "invalid listing id")
	}

	var req struct {
		Evidence string `json:"evidence"`
	}
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "malformed request body")
	}

	claim, err := listingService.SubmitClaim(requestSettings(c), currentUserID(c), uint(id), req.Evidence)
	if err != nil {
		switch {
		case errors.Is(err, listings.ErrClaimsDisabled):
			return jsonError(c, fiber.StatusServiceUnavailable, "feature_disabled", "claims are disabled")
		case errors.Is(err, listings.ErrAlreadyClaimed):
			return jsonError(c, fiber.StatusConflict, "conflict", "listing is already claimed")
		case errors.Is(err, gorm.ErrRecordNotFound):
			return jsonError(c, fiber.StatusNotFound, "not_found", "listing not found")
		default:
			log.Errorf("claim submission failed: %v", err)
			return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "claim failed")
		}
	}

	return c.Status(fiber.StatusCreated).JSON(claim)
}

// HandleCustomFieldList returns the active custom field definitions for a
// target form.
func HandleCustomFieldList(c *fiber.Ctx) error {
	fields, err := customFieldsService.FieldsFor(requestSettings(c), c.Query("applies_to", "listing"))
	if err != nil {
		log.Errorf("custom field list failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "lookup failed")
	}
	return c.JSON(fiber.Map{"fields": fields})
}

// HandleListingClick records an outbound click on a listing contact target.
func HandleListingClick(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "invalid listing id")
	}

	var req struct {
		Target string `json:"target"`
	}
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "malformed request body")
	}

	ipv4, _ := GetClientIP(c)
	err = analyticsService.TrackClick(requestSettings(c), uint(id), models.ItemTypeListing, req.Target, ipv4, currentUserID(c))
	if err != nil {
		switch {
		case errors.Is(err, analytics.ErrFeatureDisabled):
			return jsonError(c, fiber.StatusServiceUnavailable, "feature_disabled", "analytics is disabled")
		case errors.Is(err, analytics.ErrInvalidClickTarget):
			return jsonError(c, fiber.StatusBadRequest, "invalid_request", "unknown click target")
		default:
			log.Errorf("failed to track click: %v", err)
			return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "tracking failed")
		}
	}

	return c.JSON(fiber.Map{"ok": true})
}
