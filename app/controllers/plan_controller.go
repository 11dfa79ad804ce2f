package controllers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/models"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/repository"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/database"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/plans"
)

var planService *plans.Service

// InitializePlanController wires the plan service to the database.
func InitializePlanController() {
	planService = plans.NewServiceFromDB(database.GetDB())
}

// HandlePlanList returns active plans, optionally narrowed by scope.
func HandlePlanList(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()
	results, err := repos.Plan.GetAll(c.Query("scope"), true)
	if err != nil {
		log.Errorf("plan list failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "lookup failed")
	}
	return c.JSON(fiber.Map{"plans": results})
}

// HandlePlanAssign subscribes one of the user's listings to a plan.
func HandlePlanAssign(c *fiber.Ctx) error {
	var req struct {
		ListingID     uint   `json:"listing_id"`
		PlanID        uint   `json:"plan_id"`
		PaymentStatus string `json:"payment_status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "malformed request body")
	}
	if req.PaymentStatus == "" {
		req.PaymentStatus = models.PaymentStatusPending
	}

	repos := repository.GetGlobalRepositories()
	listing, err := repos.Listing.GetByID(req.ListingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "listing not found")
		}
		log.Errorf("listing lookup failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "lookup failed")
	}
	userID := currentUserID(c)
	if listing.UserID != userID {
		return jsonError(c, fiber.StatusForbidden, "forbidden", "not your listing")
	}

	sub, err := planService.AssignPlanToListing(requestSettings(c), req.ListingID, req.PlanID, userID, req.PaymentStatus)
	if err != nil {
		switch {
		case errors.Is(err, plans.ErrFeatureDisabled):
			return jsonError(c, fiber.StatusServiceUnavailable, "feature_disabled", "subscriptions are disabled")
		case errors.Is(err, plans.ErrPlanInactive):
			return jsonError(c, fiber.StatusUnprocessableEntity, "plan_inactive", "plan is not active")
		case errors.Is(err, plans.ErrScopeMismatch):
			return jsonError(c, fiber.StatusUnprocessableEntity, "scope_mismatch", "plan does not apply to listings")
		case errors.Is(err, gorm.ErrRecordNotFound):
			return jsonError(c, fiber.StatusNotFound, "not_found", "plan not found")
		default:
			log.Errorf("plan assignment failed: %v", err)
			return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "assignment failed")
		}
	}

	return c.Status(fiber.StatusCreated).JSON(sub)
}

// HandleListingFeatures returns the effective feature set of a listing.
func HandleListingFeatures(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "invalid listing id")
	}

	features, err := planService.EffectiveFeaturesForListing(requestSettings(c), uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "listing not found")
		}
		log.Errorf("feature lookup failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "lookup failed")
	}

	return c.JSON(fiber.Map{"features": features.Names()})
}

// HandleAdminPlanCreate creates a plan.
func HandleAdminPlanCreate(c *fiber.Ctx) error {
	var plan models.Plan
	if err := c.BodyParser(&plan); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "malformed request body")
	}

	if err := planService.CreatePlan(&plan); err != nil {
		return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", err.Error())
	}
	return c.Status(fiber.StatusCreated).JSON(plan)
}

// HandleAdminPlanUpdate updates a plan definition.
func HandleAdminPlanUpdate(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "invalid plan id")
	}

	var plan models.Plan
	if err := c.BodyParser(&plan); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "malformed request body")
	}
	plan.ID = uint(id)

	if err := planService.UpdatePlan(&plan); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "plan not found")
		}
		return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", err.Error())
	}
	return c.JSON(plan)
}

// HandleAdminPlanDelete removes a plan. Existing subscriptions keep running
// until their end date.
func HandleAdminPlanDelete(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "invalid plan id")
	}

	repos := repository.GetGlobalRepositories()
	if err := repos.Plan.Delete(uint(id)); err != nil {
		log.Errorf("plan delete failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "delete failed")
	}
	return c.JSON(fiber.Map{"ok": true})
}
