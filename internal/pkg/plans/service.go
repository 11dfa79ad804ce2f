package plans

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/models"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/repository"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/entitlements"
)

var (
	// ErrFeatureDisabled is returned when subscriptions are globally off.
	ErrFeatureDisabled = errors.New("subscriptions are disabled")
	// ErrPlanInactive is returned when assigning a deactivated plan.
	ErrPlanInactive = errors.New("plan is not active")
	// ErrScopeMismatch is returned when a plan's scope does not fit the target.
	ErrScopeMismatch = errors.New("plan scope does not match target")
)

// Service manages plans and listing subscriptions.
type Service struct {
	db       *gorm.DB
	plans    repository.PlanRepository
	listings repository.ListingRepository
}

// NewService creates a plans service.
func NewService(db *gorm.DB, plans repository.PlanRepository, listings repository.ListingRepository) *Service {
	return &Service{db: db, plans: plans, listings: listings}
}

// NewServiceFromDB creates a plans service with default repositories.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(db, repository.NewPlanRepository(db), repository.NewListingRepository(db))
}

// lockForUpdate adds a row lock on dialects that support it. The sqlite
// driver used in tests has no FOR UPDATE; its single-writer model covers us.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "mysql" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// CreatePlan validates and stores a new plan.
func (s *Service) CreatePlan(plan *models.Plan) error {
	if plan.Slug == "" {
		plan.Slug = models.Slugify(plan.Name)
	}
	if err := plan.Validate(); err != nil {
		return fmt.Errorf("plan validation failed: %w", err)
	}
	// Unknown feature names are dropped up front so the stored list only
	// ever contains members of the closed feature set.
	plan.Features = entitlements.FromNames(plan.Features).Names()
	return s.plans.Create(plan)
}

// UpdatePlan validates and stores plan changes.
func (s *Service) UpdatePlan(plan *models.Plan) error {
	if err := plan.Validate(); err != nil {
		return fmt.Errorf("plan validation failed: %w", err)
	}
	plan.Features = entitlements.FromNames(plan.Features).Names()
	return s.plans.Update(plan)
}

// AssignPlanToListing switches a listing onto a plan. All previously active
// subscriptions of the listing are marked expired and the new subscription is
// inserted in the same transaction, so no two subscriptions of one listing
// are ever simultaneously active.
func (s *Service) AssignPlanToListing(settings models.SettingsSnapshot, listingID, planID, userID uint, paymentStatus string) (*models.UserSubscription, error) {
	plan, err := s.plans.GetByID(planID)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan %d: %w", planID, err)
	}
	if !plan.IsActive {
		return nil, ErrPlanInactive
	}
	if plan.Scope != models.PlanScopeListing {
		return nil, ErrScopeMismatch
	}
	if !settings.SubscriptionsEnabled && !plan.IsFree() {
		log.Infof("plan assignment rejected: subscriptions disabled (listing %d)", listingID)
		return nil, ErrFeatureDisabled
	}

	listing, err := s.listings.GetByID(listingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load listing %d: %w", listingID, err)
	}

	now := time.Now()
	sub := &models.UserSubscription{
		UserID:        userID,
		ListingID:     listing.ID,
		PlanID:        plan.ID,
		StartDate:     now,
		Status:        models.SubscriptionStatusActive,
		PaymentStatus: paymentStatus,
	}
	if plan.IsFree() {
		sub.PaymentStatus = models.PaymentStatusFree
	}
	if plan.DurationDays > 0 {
		end := now.AddDate(0, 0, plan.DurationDays)
		sub.EndDate = &end
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Lock the listing row so concurrent assignments serialize.
		var locked models.BusinessListing
		if err := lockForUpdate(tx).First(&locked, listing.ID).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.UserSubscription{}).
			Where("listing_id = ? AND status = ?", listing.ID, models.SubscriptionStatusActive).
			Update("status", models.SubscriptionStatusExpired).Error; err != nil {
			return err
		}

		if err := tx.Create(sub).Error; err != nil {
			return err
		}

		return tx.Model(&models.BusinessListing{}).
			Where("id = ?", listing.ID).
			Update("current_plan_id", plan.ID).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to assign plan %d to listing %d: %w", planID, listingID, err)
	}

	return sub, nil
}

// MarkSubscriptionPaid records a confirmed payment for a pending
// subscription. The returned bool reports whether this call performed the
// pending-to-paid transition; replayed webhooks for an already-paid or free
// subscription get false, so one payment only ever accrues once downstream.
func (s *Service) MarkSubscriptionPaid(subscriptionID uint) (*models.UserSubscription, bool, error) {
	sub, err := s.plans.GetSubscriptionByID(subscriptionID)
	if err != nil {
		return nil, false, err
	}
	if sub.PaymentStatus == models.PaymentStatusPaid || sub.PaymentStatus == models.PaymentStatusFree {
		return sub, false, nil
	}

	sub.PaymentStatus = models.PaymentStatusPaid
	if err := s.plans.UpdateSubscription(sub); err != nil {
		return nil, false, fmt.Errorf("failed to mark subscription %d paid: %w", subscriptionID, err)
	}

	log.Infof("subscription %d marked paid (listing %d)", sub.ID, sub.ListingID)
	return sub, true, nil
}

// EffectiveFeaturesForListing resolves the listing's effective feature set:
// its current plan's features filtered by the global settings gates.
func (s *Service) EffectiveFeaturesForListing(settings models.SettingsSnapshot, listingID uint) (entitlements.FeatureSet, error) {
	listing, err := s.listings.GetByID(listingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load listing %d: %w", listingID, err)
	}
	if listing.CurrentPlanID == 0 {
		return entitlements.FeatureSet{}, nil
	}

	plan, err := s.plans.GetByID(listing.CurrentPlanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entitlements.FeatureSet{}, nil
		}
		return nil, err
	}

	sub, err := s.plans.GetActiveSubscriptionForListing(listing.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Plan without a backing subscription entitles nothing.
			return entitlements.FeatureSet{}, nil
		}
		return nil, err
	}

	return entitlements.EffectiveFeatures(sub, plan, settings), nil
}

// EffectiveFeaturesForApp resolves an app's effective feature set: its
// current app-scoped plan's features filtered by the global settings gates.
// Apps carry no subscription rows; the plan assignment alone entitles.
func (s *Service) EffectiveFeaturesForApp(settings models.SettingsSnapshot, app *models.PwaApp) (entitlements.FeatureSet, error) {
	if app.CurrentPlanID == 0 {
		return entitlements.FeatureSet{}, nil
	}

	plan, err := s.plans.GetByID(app.CurrentPlanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entitlements.FeatureSet{}, nil
		}
		return nil, err
	}
	if !plan.IsActive {
		return entitlements.FeatureSet{}, nil
	}

	return entitlements.EffectiveFeatures(nil, plan, settings), nil
}

// ExpireDue marks all date-expired subscriptions of all listings expired.
// Intended to run periodically; the entitlement path also checks dates at
// read time so a missed sweep never extends entitlements.
func (s *Service) ExpireDue() (int64, error) {
	n, err := s.plans.ExpireDueSubscriptions(time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to expire due subscriptions: %w", err)
	}
	if n > 0 {
		log.Infof("expired %d due subscriptions", n)
	}
	return n, nil
}
