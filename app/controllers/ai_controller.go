package controllers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/repository"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/aigateway"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/capability"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/entitlements"
)

var aiService *aigateway.Service

// InitializeAIController wires the AI gateway service to the database.
func InitializeAIController() {
	aiService = aigateway.NewService(repository.GetGlobalRepositories().AI)
}

func requireAICapability(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()
	user, err := repos.User.GetByID(currentUserID(c))
	if err != nil {
		log.Errorf("user lookup failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "lookup failed")
	}
	if !capability.Can(repos.User, user, capability.UseAI) {
		return jsonError(c, fiber.StatusForbidden, "forbidden", "AI access denied")
	}
	return nil
}

func aiErrorResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, aigateway.ErrNotConfigured):
		return jsonError(c, fiber.StatusServiceUnavailable, "feature_disabled", "the AI gateway is not configured")
	case errors.Is(err, aigateway.ErrEmptyPrompt):
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "prompt must not be empty")
	case errors.Is(err, aigateway.ErrProvider):
		return jsonError(c, fiber.StatusBadGateway, "provider_error", err.Error())
	case errors.Is(err, aigateway.ErrBadResponse):
		return jsonError(c, fiber.StatusBadGateway, "provider_error", "the provider returned an unusable response")
	default:
		log.Errorf("AI generation failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "generation failed")
	}
}

// HandleAIGenerate proxies a free-form text prompt to the configured provider.
func HandleAIGenerate(c *fiber.Ctx) error {
	if err := requireAICapability(c); err != nil {
		return err
	}

	var req struct {
		Kind   string `json:"kind"`
		Prompt string `json:"prompt"`
	}
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "malformed request body")
	}
	if req.Kind == "" {
		req.Kind = "text"
	}

	text, err := aiService.Generate(c.UserContext(), requestSettings(c), currentUserID(c), req.Kind, strings.TrimSpace(req.Prompt))
	if err != nil {
		return aiErrorResponse(c, err)
	}

	return c.JSON(fiber.Map{"text": text})
}

// HandleAIGenerateSEO produces structured SEO metadata for one of the user's
// listings. The listing's plan must include the AI SEO feature.
func HandleAIGenerateSEO(c *fiber.Ctx) error {
	if err := requireAICapability(c); err != nil {
		return err
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "invalid listing id")
	}

	repos := repository.GetGlobalRepositories()
	listing, err := repos.Listing.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "listing not found")
		}
		log.Errorf("listing lookup failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "lookup failed")
	}
	if listing.UserID != currentUserID(c) {
		return jsonError(c, fiber.StatusForbidden, "forbidden", "not your listing")
	}

	settings := requestSettings(c)
	features, err := planService.EffectiveFeaturesForListing(settings, listing.ID)
	if err != nil {
		log.Errorf("feature lookup failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "lookup failed")
	}
	if !features.Has(entitlements.FeatureAISEO) {
		return jsonError(c, fiber.StatusForbidden, "plan_required", "the current plan does not include AI SEO")
	}

	suggestion, err := aiService.GenerateSEO(c.UserContext(), settings, currentUserID(c), listing.Name, listing.Description)
	if err != nil {
		return aiErrorResponse(c, err)
	}

	return c.JSON(suggestion)
}
