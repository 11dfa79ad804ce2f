package mail

import (
	"fmt"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/models"
)

// NotifyListingStatus emails the listing owner about a moderation decision,
// honoring the owner's notification preference. Failures are logged only.
func NotifyListingStatus(db *gorm.DB, user *models.User, listing *models.BusinessListing) {
	us, err := models.GetOrCreateUserSettings(db, user.ID)
	if err != nil || !us.NotifyListings {
		return
	}

	subject := fmt.Sprintf("Your listing %q is now %s", listing.Name, listing.Status)
	body := fmt.Sprintf(
		"<p>Hello %s,</p><p>the status of your listing <strong>%s</strong> changed to <strong>%s</strong>.</p>",
		user.Name, listing.Name, listing.Status,
	)
	if err := SendMail(user.Email, subject, body); err != nil {
		log.Warnf("listing notification to %s failed: %v", user.Email, err)
	}
}

// NotifyPayoutCompleted emails the affiliate that a payout was processed.
func NotifyPayoutCompleted(db *gorm.DB, user *models.User, payout *models.AffiliatePayout) {
	us, err := models.GetOrCreateUserSettings(db, user.ID)
	if err != nil || !us.NotifyPayouts {
		return
	}

	subject := "Your payout has been processed"
	body := fmt.Sprintf(
		"<p>Hello %s,</p><p>your payout of <strong>%s</strong> via %s has been completed.</p>",
		user.Name, payout.Amount.StringFixed(2), payout.Method,
	)
	if err := SendMail(user.Email, subject, body); err != nil {
		log.Warnf("payout notification to %s failed: %v", user.Email, err)
	}
}

// NotifyClaimDecision emails the claimant about their claim outcome.
func NotifyClaimDecision(user *models.User, listing *models.BusinessListing, approved bool) {
	outcome := "approved"
	if !approved {
		outcome = "rejected"
	}
	subject := fmt.Sprintf("Your claim for %q was %s", listing.Name, outcome)
	body := fmt.Sprintf(
		"<p>Hello %s,</p><p>your ownership claim for <strong>%s</strong> was %s.</p>",
		user.Name, listing.Name, outcome,
	)
	if err := SendMail(user.Email, subject, body); err != nil {
		log.Warnf("claim notification to %s failed: %v", user.Email, err)
	}
}
