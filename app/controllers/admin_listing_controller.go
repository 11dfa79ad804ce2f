package controllers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/repository"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/database"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/listings"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/mail"
)

// HandleAdminListingList returns listings filtered by status for moderation.
func HandleAdminListingList(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()
	results, err := repos.Listing.List(repository.ListingFilter{
		Status: c.Query("status"),
		Offset: c.QueryInt("offset", 0),
		Limit:  c.QueryInt("limit", 50),
	})
	if err != nil {
		log.Errorf("admin listing list failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "lookup failed")
	}
	return c.JSON(fiber.Map{"listings": results})
}

// HandleAdminListingModerate transitions the moderation status of a listing
// and notifies the owner if they opted in.
func HandleAdminListingModerate(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "invalid listing id")
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "malformed request body")
	}

	if err := listingService.Moderate(uint(id), req.Status); err != nil {
		switch {
		case errors.Is(err, listings.ErrInvalidTransition):
			return jsonError(c, fiber.StatusUnprocessableEntity, "invalid_transition", err.Error())
		case errors.Is(err, gorm.ErrRecordNotFound):
			return jsonError(c, fiber.StatusNotFound, "not_found", "listing not found")
		default:
			log.Errorf("moderation failed: %v", err)
			return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "moderation failed")
		}
	}

	db := database.GetDB()
	repos := repository.GetGlobalRepositories()
	if listing, err := repos.Listing.GetByID(uint(id)); err == nil && listing.UserID != 0 {
		if owner, err := repos.User.GetByID(listing.UserID); err == nil {
			go mail.NotifyListingStatus(db, owner, listing)
		}
	}

	return c.JSON(fiber.Map{"ok": true, "status": req.Status})
}

// HandleAdminClaimList returns pending ownership claims.
func HandleAdminClaimList(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()
	claims, err := repos.Listing.GetPendingClaims(c.QueryInt("offset", 0), c.QueryInt("limit", 50))
	if err != nil {
		log.Errorf("claim list failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "lookup failed")
	}
	return c.JSON(fiber.Map{"claims": claims})
}

// HandleAdminClaimDecide approves or rejects an ownership claim.
func HandleAdminClaimDecide(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "invalid claim id")
	}

	var req struct {
		Approve bool `json:"approve"`
	}
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "malformed request body")
	}

	if req.Approve {
		err = listingService.ApproveClaim(uint(id))
	} else {
		err = listingService.RejectClaim(uint(id))
	}
	if err != nil {
		switch {
		case errors.Is(err, listings.ErrClaimDecided):
			return jsonError(c, fiber.StatusConflict, "conflict", "claim already decided")
		case errors.Is(err, gorm.ErrRecordNotFound):
			return jsonError(c, fiber.StatusNotFound, "not_found", "claim not found")
		default:
			log.Errorf("claim decision failed: %v", err)
			return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "decision failed")
		}
	}

	repos := repository.GetGlobalRepositories()
	if claim, err := repos.Listing.GetClaimByID(uint(id)); err == nil {
		if claimant, err := repos.User.GetByID(claim.UserID); err == nil {
			if listing, err := repos.Listing.GetByID(claim.ListingID); err == nil {
				go mail.NotifyClaimDecision(claimant, listing, req.Approve)
			}
		}
	}

	return c.JSON(fiber.Map{"ok": true})
}
