package controllers

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/models"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/repository"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/affiliate"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/env"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/payments"
)

type paymentWebhookEvent struct {
	SubscriptionID uint   `json:"subscription_id"`
	Status         string `json:"status"`
}

// HandlePaymentWebhook processes payment confirmations from the external
// payment provider. The raw body is signed with a shared HMAC secret.
func HandlePaymentWebhook(c *fiber.Ctx) error {
	secret := env.GetEnv("PAYMENT_WEBHOOK_SECRET", "")
	if secret == "" {
		return jsonError(c, fiber.StatusServiceUnavailable, "not_configured", "payment webhooks are not configured")
	}

	body := c.Body()
	if !payments.VerifyWebhookSignature(body, c.Get("X-Webhook-Signature"), secret) {
		return jsonError(c, fiber.StatusUnauthorized, "invalid_signature", "webhook signature mismatch")
	}

	var event paymentWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "malformed webhook payload")
	}
	if event.SubscriptionID == 0 {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "subscription_id is required")
	}
	if event.Status != "paid" {
		// Only payment confirmations are acted on; everything else is acknowledged
		return c.JSON(fiber.Map{"processed": false})
	}

	sub, paid, err := planService.MarkSubscriptionPaid(event.SubscriptionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "subscription not found")
		}
		log.Errorf("payment webhook failed for subscription %d: %v", event.SubscriptionID, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "processing failed")
	}
	if paid {
		accrueReferralCommission(requestSettings(c), sub)
	}

	return c.JSON(fiber.Map{"processed": true, "subscription_id": sub.ID, "payment_status": sub.PaymentStatus})
}

// accrueReferralCommission credits the paying user's referrer, if any, with a
// subscription commission. Accrual problems never fail the webhook: the
// payment is already recorded and the provider must not retry it.
func accrueReferralCommission(settings models.SettingsSnapshot, sub *models.UserSubscription) {
	plan, err := repository.GetGlobalRepositories().Plan.GetByID(sub.PlanID)
	if err != nil {
		log.Errorf("referral accrual skipped for subscription %d: plan %d: %v", sub.ID, sub.PlanID, err)
		return
	}

	commission, err := affiliateService.RecordConversion(settings, sub.UserID, models.ReferralTypeSubscription, plan.Price)
	switch {
	case errors.Is(err, affiliate.ErrFeatureDisabled), errors.Is(err, affiliate.ErrNotActive):
		log.Infof("referral accrual skipped for subscription %d: %v", sub.ID, err)
	case err != nil:
		log.Errorf("referral accrual failed for subscription %d: %v", sub.ID, err)
	case commission != nil:
		log.Infof("commission %d accrued for subscription %d (affiliate %d)", commission.ID, sub.ID, commission.AffiliateID)
	}
}
