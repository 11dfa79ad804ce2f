package listings

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/models"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/repository"
)

var (
	// ErrFeatureDisabled is returned when the directory is globally off.
	ErrFeatureDisabled = errors.New("listings are disabled")
	// ErrClaimsDisabled is returned when the claim flow is globally off.
	ErrClaimsDisabled = errors.New("listing claims are disabled")
	// ErrNotOwner is returned when a user mutates a listing they do not own.
	ErrNotOwner = errors.New("listing does not belong to this user")
	// ErrAlreadyClaimed is returned when claiming a listing with an owner.
	ErrAlreadyClaimed = errors.New("listing is already claimed")
	// ErrInvalidTransition is returned for status changes outside the
	// moderation flow.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrClaimDecided is returned when re-deciding a decided claim.
	ErrClaimDecided = errors.New("claim has already been decided")
)

// Service manages directory listings: creation, moderation and the claim
// flow for imported entries without an owner.
type Service struct {
	db    *gorm.DB
	repo  repository.ListingRepository
	plans repository.PlanRepository
}

// NewService creates a listings service.
func NewService(db *gorm.DB, repo repository.ListingRepository, plans repository.PlanRepository) *Service {
	return &Service{db: db, repo: repo, plans: plans}
}

// NewServiceFromDB creates a listings service with default repositories.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(db, repository.NewListingRepository(db), repository.NewPlanRepository(db))
}

// Create stores a new listing in pending status awaiting moderation. The
// slug is derived from the name and deduplicated with a numeric suffix.
func (s *Service) Create(settings models.SettingsSnapshot, userID uint, listing *models.BusinessListing) error {
	if !settings.ListingsEnabled {
		return ErrFeatureDisabled
	}

	listing.UserID = userID
	listing.Status = models.ListingStatusPending
	listing.IsClaimed = userID != 0

	slug, err := s.uniqueSlug(models.Slugify(listing.Name))
	if err != nil {
		return err
	}
	listing.Slug = slug

	if err := listing.Validate(); err != nil {
		return fmt.Errorf("listing validation failed: %w", err)
	}
	if err := s.repo.Create(listing); err != nil {
		return fmt.Errorf("failed to create listing: %w", err)
	}

	log.Infof("created listing %d (%s) for user %d", listing.ID, listing.Slug, userID)
	return nil
}

func (s *Service) uniqueSlug(base string) (string, error) {
	if base == "" {
		base = "listing"
	}
	slug := base
	for i := 2; ; i++ {
		_, err := s.repo.GetBySlug(slug)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return slug, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to check slug %q: %w", slug, err)
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

// Update stores changes to an owned listing. Ownership, status and counters
// are not caller-writable.
func (s *Service) Update(settings models.SettingsSnapshot, userID uint, listing *models.BusinessListing) error {
	if !settings.ListingsEnabled {
		return ErrFeatureDisabled
	}

	current, err := s.repo.GetByID(listing.ID)
	if err != nil {
		return fmt.Errorf("failed to load listing %d: %w", listing.ID, err)
	}
	if current.UserID != userID {
		return ErrNotOwner
	}

	listing.UserID = current.UserID
	listing.Slug = current.Slug
	listing.Status = current.Status
	listing.CurrentPlanID = current.CurrentPlanID
	listing.IsClaimed = current.IsClaimed
	listing.ViewCount = current.ViewCount
	listing.ClickCount = current.ClickCount

	if err := listing.Validate(); err != nil {
		return fmt.Errorf("listing validation failed: %w", err)
	}
	return s.repo.Update(listing)
}

// moderationFlow maps each status to the statuses an admin may move it to.
var moderationFlow = map[string][]string{
	models.ListingStatusPending:  {models.ListingStatusActive, models.ListingStatusRejected},
	models.ListingStatusActive:   {models.ListingStatusInactive},
	models.ListingStatusInactive: {models.ListingStatusActive},
	models.ListingStatusRejected: {models.ListingStatusPending},
}

// Moderate applies an admin status transition.
func (s *Service) Moderate(listingID uint, newStatus string) error {
	listing, err := s.repo.GetByID(listingID)
	if err != nil {
		return fmt.Errorf("failed to load listing %d: %w", listingID, err)
	}

	allowed := false
	for _, next := range moderationFlow[listing.Status] {
		if next == newStatus {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, listing.Status, newStatus)
	}

	if err := s.repo.UpdateStatus(listingID, newStatus); err != nil {
		return fmt.Errorf("failed to update listing %d status: %w", listingID, err)
	}
	log.Infof("listing %d moderated: %s -> %s", listingID, listing.Status, newStatus)
	return nil
}

// Search returns active listings matching the filter for the public
// directory; admin callers pass an explicit status instead.
func (s *Service) Search(settings models.SettingsSnapshot, filter repository.ListingFilter) ([]models.BusinessListing, error) {
	if !settings.ListingsEnabled {
		return nil, ErrFeatureDisabled
	}
	if filter.Status == "" {
		filter.Status = models.ListingStatusActive
	}
	return s.repo.List(filter)
}

// SubmitClaim opens a claim for an unclaimed listing.
func (s *Service) SubmitClaim(settings models.SettingsSnapshot, userID, listingID uint, evidence string) (*models.ListingClaim, error) {
	if !settings.ClaimsEnabled {
		return nil, ErrClaimsDisabled
	}

	listing, err := s.repo.GetByID(listingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load listing %d: %w", listingID, err)
	}
	if listing.IsClaimed || listing.UserID != 0 {
		return nil, ErrAlreadyClaimed
	}

	claim := &models.ListingClaim{
		ListingID: listingID,
		UserID:    userID,
		Evidence:  evidence,
		Status:    models.ClaimStatusPending,
	}
	if err := claim.GenerateClaimToken(); err != nil {
		return nil, fmt.Errorf("failed to generate claim token: %w", err)
	}
	if err := s.repo.CreateClaim(claim); err != nil {
		return nil, fmt.Errorf("failed to create claim: %w", err)
	}
	return claim, nil
}

// ApproveClaim transfers ownership to the claimant, marks the listing claimed
// and starts the new owner on the free listing plan, in one transaction with
// the claim decision.
func (s *Service) ApproveClaim(claimID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var claim models.ListingClaim
		if err := tx.First(&claim, claimID).Error; err != nil {
			return fmt.Errorf("failed to load claim %d: %w", claimID, err)
		}
		if claim.Status != models.ClaimStatusPending {
			return ErrClaimDecided
		}

		now := time.Now()
		claim.Status = models.ClaimStatusApproved
		claim.DecidedAt = &now
		if err := tx.Save(&claim).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.BusinessListing{}).
			Where("id = ?", claim.ListingID).
			Updates(map[string]interface{}{
				"user_id":    claim.UserID,
				"is_claimed": true,
			}).Error; err != nil {
			return err
		}

		return s.assignFreePlan(tx, claim.ListingID, claim.UserID)
	})
}

// assignFreePlan puts a freshly claimed listing on the free listing plan so
// the new owner has that plan's entitlements from the start. A catalog
// without a free listing plan leaves the listing unplanned; the approval
// itself still stands.
func (s *Service) assignFreePlan(tx *gorm.DB, listingID, userID uint) error {
	plan, err := s.plans.GetFreePlan(models.PlanScopeListing)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Warnf("no free listing plan to assign to claimed listing %d", listingID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load free listing plan: %w", err)
	}

	if err := tx.Model(&models.UserSubscription{}).
		Where("listing_id = ? AND status = ?", listingID, models.SubscriptionStatusActive).
		Update("status", models.SubscriptionStatusExpired).Error; err != nil {
		return err
	}

	sub := &models.UserSubscription{
		UserID:        userID,
		ListingID:     listingID,
		PlanID:        plan.ID,
		StartDate:     time.Now(),
		Status:        models.SubscriptionStatusActive,
		PaymentStatus: models.PaymentStatusFree,
	}
	if plan.DurationDays > 0 {
		end := sub.StartDate.AddDate(0, 0, plan.DurationDays)
		sub.EndDate = &end
	}
	if err := tx.Create(sub).Error; err != nil {
		return err
	}

	return tx.Model(&models.BusinessListing{}).
		Where("id = ?", listingID).
		Update("current_plan_id", plan.ID).Error
}

// RejectClaim closes a pending claim without transferring anything.
func (s *Service) RejectClaim(claimID uint) error {
	claim, err := s.repo.GetClaimByID(claimID)
	if err != nil {
		return fmt.Errorf("failed to load claim %d: %w", claimID, err)
	}
	if claim.Status != models.ClaimStatusPending {
		return ErrClaimDecided
	}
	now := time.Now()
	claim.Status = models.ClaimStatusRejected
	claim.DecidedAt = &now
	return s.repo.UpdateClaim(claim)
}
