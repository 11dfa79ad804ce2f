package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/models"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/repository"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/affiliate"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/database"
)

var affiliateService *affiliate.Service

// InitializeAffiliateController wires the affiliate service to the database.
func InitializeAffiliateController() {
	affiliateService = affiliate.NewServiceFromDB(database.GetDB())
}

// currentAffiliate resolves the affiliate record of the logged-in user.
func currentAffiliate(c *fiber.Ctx) (*models.Affiliate, error) {
	return repository.GetGlobalRepositories().Affiliate.GetByUserID(currentUserID(c))
}

// HandleAffiliateRegister enrolls the current user into the affiliate program.
func HandleAffiliateRegister(c *fiber.Ctx) error {
	var req struct {
		PaymentEmail string `json:"payment_email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "malformed request body")
	}

	repos := repository.GetGlobalRepositories()
	user, err := repos.User.GetByID(currentUserID(c))
	if err != nil {
		log.Errorf("user lookup failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "registration failed")
	}

	aff, err := affiliateService.Register(requestSettings(c), user, req.PaymentEmail)
	if err != nil {
		switch {
		case errors.Is(err, affiliate.ErrFeatureDisabled):
			return jsonError(c, fiber.StatusServiceUnavailable, "feature_disabled", "the affiliate program is disabled")
		case errors.Is(err, affiliate.ErrAlreadyRegistered):
			return jsonError(c, fiber.StatusConflict, "conflict", "already registered as affiliate")
		default:
			log.Errorf("affiliate registration failed: %v", err)
			return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "registration failed")
		}
	}

	return c.Status(fiber.StatusCreated).JSON(aff)
}

// HandleAffiliateProfile returns the affiliate record and aggregated stats.
func HandleAffiliateProfile(c *fiber.Ctx) error {
	aff, err := currentAffiliate(c)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "not registered as affiliate")
		}
		log.Errorf("affiliate lookup failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "lookup failed")
	}

	stats, err := affiliateService.GetStats(aff.ID)
	if err != nil {
		log.Errorf("affiliate stats failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "lookup failed")
	}

	return c.JSON(fiber.Map{"affiliate": aff, "stats": stats})
}

// HandleAffiliateCommissions lists the current affiliate's commission ledger.
func HandleAffiliateCommissions(c *fiber.Ctx) error {
	aff, err := currentAffiliate(c)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "not registered as affiliate")
		}
		log.Errorf("affiliate lookup failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "lookup failed")
	}

	repos := repository.GetGlobalRepositories()
	commissions, err := repos.Affiliate.GetCommissionsByAffiliate(aff.ID, c.QueryInt("offset", 0), c.QueryInt("limit", 50))
	if err != nil {
		log.Errorf("commission list failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "lookup failed")
	}
	total, err := repos.Affiliate.CountCommissionsByAffiliate(aff.ID)
	if err != nil {
		log.Errorf("commission count failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "lookup failed")
	}

	return c.JSON(fiber.Map{"commissions": commissions, "total": total})
}

// HandleAffiliatePayouts lists the current affiliate's payout requests.
func HandleAffiliatePayouts(c *fiber.Ctx) error {
	aff, err := currentAffiliate(c)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "not registered as affiliate")
		}
		log.Errorf("affiliate lookup failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "lookup failed")
	}

	repos := repository.GetGlobalRepositories()
	payouts, err := repos.Affiliate.GetPayoutsByAffiliate(aff.ID, c.QueryInt("offset", 0), c.QueryInt("limit", 50))
	if err != nil {
		log.Errorf("payout list failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "lookup failed")
	}

	return c.JSON(fiber.Map{"payouts": payouts})
}

// HandleAffiliatePayoutRequest debits the wallet and opens a pending payout.
func HandleAffiliatePayoutRequest(c *fiber.Ctx) error {
	var req struct {
		Amount string `json:"amount"`
		Method string `json:"method"`
	}
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "malformed request body")
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "amount must be a positive decimal")
	}

	aff, err := currentAffiliate(c)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "not registered as affiliate")
		}
		log.Errorf("affiliate lookup failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "lookup failed")
	}

	payout, err := affiliateService.RequestPayout(requestSettings(c), aff.ID, amount, req.Method)
	if err != nil {
		switch {
		case errors.Is(err, affiliate.ErrFeatureDisabled):
			return jsonError(c, fiber.StatusServiceUnavailable, "feature_disabled", "the affiliate program is disabled")
		case errors.Is(err, affiliate.ErrNotActive):
			return jsonError(c, fiber.StatusForbidden, "forbidden", "affiliate account is not active")
		case errors.Is(err, affiliate.ErrInsufficientBalance):
			return jsonError(c, fiber.StatusUnprocessableEntity, "insufficient_balance", "wallet balance is too low")
		case errors.Is(err, affiliate.ErrBelowMinimum):
			return jsonError(c, fiber.StatusUnprocessableEntity, "below_minimum", "amount is below the minimum payout")
		default:
			log.Errorf("payout request failed: %v", err)
			return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "payout request failed")
		}
	}

	return c.Status(fiber.StatusCreated).JSON(payout)
}
