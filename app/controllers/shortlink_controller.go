package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/models"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/repository"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/shortener"
)

// HandleReferralShortLink resolves an affiliate share link and forwards the
// visitor to registration with the referral code attached.
func HandleReferralShortLink(c *fiber.Ctx) error {
	code := c.Params("code")

	repos := repository.GetGlobalRepositories()
	aff, err := repos.Affiliate.GetByCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "unknown referral code")
		}
		log.Errorf("referral code lookup failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "lookup failed")
	}
	if !aff.IsActive() {
		return jsonError(c, fiber.StatusNotFound, "not_found", "unknown referral code")
	}

	return c.Redirect("/register?referral_code="+aff.AffiliateCode, fiber.StatusFound)
}

// HandleListingShortLink resolves a Base62 share link to the listing's
// canonical URL.
func HandleListingShortLink(c *fiber.Ctx) error {
	id := shortener.DecodeID(c.Params("code"))
	if id == 0 {
		return jsonError(c, fiber.StatusNotFound, "not_found", "unknown short link")
	}

	repos := repository.GetGlobalRepositories()
	listing, err := repos.Listing.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "unknown short link")
		}
		log.Errorf("short link lookup failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "lookup failed")
	}
	if listing.Status != models.ListingStatusActive {
		return jsonError(c, fiber.StatusNotFound, "not_found", "unknown short link")
	}

	return c.Redirect("/listings/"+listing.Slug, fiber.StatusFound)
}
