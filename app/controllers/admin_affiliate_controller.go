package controllers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/models"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/repository"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/affiliate"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/database"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/mail"
)

// HandleAdminAffiliateList returns affiliates filtered by status.
func HandleAdminAffiliateList(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()
	results, err := repos.Affiliate.List(c.Query("status"), c.QueryInt("offset", 0), c.QueryInt("limit", 50))
	if err != nil {
		log.Errorf("affiliate list failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "lookup failed")
	}
	return c.JSON(fiber.Map{"affiliates": results})
}

// HandleAdminAffiliateApprove activates a pending affiliate.
func HandleAdminAffiliateApprove(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "invalid affiliate id")
	}

	if err := affiliateService.Approve(uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "affiliate not found")
		}
		log.Errorf("affiliate approval failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "approval failed")
	}
	return c.JSON(fiber.Map{"ok": true})
}

// HandleAdminCommissionDecide approves or rejects a pending commission.
// Approval credits the affiliate wallet.
func HandleAdminCommissionDecide(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "invalid commission id")
	}

	var req struct {
		Approve bool `json:"approve"`
	}
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "malformed request body")
	}

	if req.Approve {
		err = affiliateService.ApproveCommission(uint(id))
	} else {
		err = affiliateService.RejectCommission(uint(id))
	}
	if err != nil {
		switch {
		case errors.Is(err, affiliate.ErrAlreadyDecided):
			return jsonError(c, fiber.StatusConflict, "conflict", "commission already decided")
		case errors.Is(err, gorm.ErrRecordNotFound):
			return jsonError(c, fiber.StatusNotFound, "not_found", "commission not found")
		default:
			log.Errorf("commission decision failed: %v", err)
			return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "decision failed")
		}
	}
	return c.JSON(fiber.Map{"ok": true})
}

// HandleAdminPayoutComplete marks a pending payout as completed and notifies
// the affiliate if they opted in.
func HandleAdminPayoutComplete(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "invalid payout id")
	}

	if err := affiliateService.CompletePayout(uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "payout not found")
		}
		log.Errorf("payout completion failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "completion failed")
	}

	db := database.GetDB()
	repos := repository.GetGlobalRepositories()
	if payout, err := repos.Affiliate.GetPayoutByID(uint(id)); err == nil {
		if aff, err := repos.Affiliate.GetByID(payout.AffiliateID); err == nil {
			if user, err := repos.User.GetByID(aff.UserID); err == nil {
				go mail.NotifyPayoutCompleted(db, user, payout)
			}
		}
	}

	return c.JSON(fiber.Map{"ok": true})
}

// HandleAdminTierList returns all affiliate tiers.
func HandleAdminTierList(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()
	tiers, err := repos.Affiliate.ListTiers(false)
	if err != nil {
		log.Errorf("tier list failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "lookup failed")
	}
	return c.JSON(fiber.Map{"tiers": tiers})
}

// HandleAdminTierCreate creates an affiliate tier.
func HandleAdminTierCreate(c *fiber.Ctx) error {
	var tier models.AffiliateTier
	if err := c.BodyParser(&tier); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "malformed request body")
	}
	if err := tier.Validate(); err != nil {
		return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", err.Error())
	}

	repos := repository.GetGlobalRepositories()
	if err := repos.Affiliate.CreateTier(&tier); err != nil {
		log.Errorf("tier creation failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "creation failed")
	}
	return c.Status(fiber.StatusCreated).JSON(tier)
}

// HandleAdminTierUpdate updates an affiliate tier.
func HandleAdminTierUpdate(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "invalid tier id")
	}

	var tier models.AffiliateTier
	if err := c.BodyParser(&tier); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "malformed request body")
	}
	tier.ID = uint(id)
	if err := tier.Validate(); err != nil {
		return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", err.Error())
	}

	repos := repository.GetGlobalRepositories()
	if err := repos.Affiliate.UpdateTier(&tier); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "tier not found")
		}
		log.Errorf("tier update failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "update failed")
	}
	return c.JSON(tier)
}
