package listings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/models"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/repository"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/entitlements"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/plans"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.BusinessListing{},
		&models.ListingClaim{},
		&models.Plan{},
		&models.UserSubscription{},
	))
	return NewServiceFromDB(db), db
}

func listingsOn() models.SettingsSnapshot {
	return models.SettingsSnapshot{ListingsEnabled: true, ClaimsEnabled: true}
}

func sampleListing(name string) *models.BusinessListing {
	return &models.BusinessListing{
		Name:     name,
		Category: "cafe",
		City:     "Berlin",
	}
}

func TestCreateListing(t *testing.T) {
	svc, _ := newTestService(t)

	listing := sampleListing("Blue Bottle Cafe")
	require.NoError(t, svc.Create(listingsOn(), 3, listing))
	assert.Equal(t, "blue-bottle-cafe", listing.Slug)
	assert.Equal(t, models.ListingStatusPending, listing.Status)
	assert.True(t, listing.IsClaimed)

	// Same name gets a deduplicated slug.
	second := sampleListing("Blue Bottle Cafe")
	require.NoError(t, svc.Create(listingsOn(), 3, second))
	assert.Equal(t, "blue-bottle-cafe-2", second.Slug)

	err := svc.Create(models.SettingsSnapshot{}, 3, sampleListing("Closed Cafe"))
	assert.ErrorIs(t, err, ErrFeatureDisabled)
}

func TestCreateUnclaimedImport(t *testing.T) {
	svc, _ := newTestService(t)

	listing := sampleListing("Imported Diner")
	require.NoError(t, svc.Create(listingsOn(), 0, listing))
	assert.False(t, listing.IsClaimed)
	assert.Equal(t, uint(0), listing.UserID)
}

func TestUpdateListing(t *testing.T) {
	svc, db := newTestService(t)

	listing := sampleListing("Blue Bottle Cafe")
	require.NoError(t, svc.Create(listingsOn(), 3, listing))
	require.NoError(t, db.Model(listing).Update("status", models.ListingStatusActive).Error)

	listing.Description = "Coffee in Mitte"
	listing.Status = models.ListingStatusRejected // caller cannot change status
	require.NoError(t, svc.Update(listingsOn(), 3, listing))

	var stored models.BusinessListing
	require.NoError(t, db.First(&stored, listing.ID).Error)
	assert.Equal(t, "Coffee in Mitte", stored.Description)
	assert.Equal(t, models.ListingStatusActive, stored.Status)

	assert.ErrorIs(t, svc.Update(listingsOn(), 99, listing), ErrNotOwner)
}

func TestModerate(t *testing.T) {
	svc, db := newTestService(t)

	listing := sampleListing("Blue Bottle Cafe")
	require.NoError(t, svc.Create(listingsOn(), 3, listing))

	// pending -> inactive is not part of the moderation flow.
	assert.ErrorIs(t, svc.Moderate(listing.ID, models.ListingStatusInactive), ErrInvalidTransition)

	require.NoError(t, svc.Moderate(listing.ID, models.ListingStatusActive))
	require.NoError(t, svc.Moderate(listing.ID, models.ListingStatusInactive))
	require.NoError(t, svc.Moderate(listing.ID, models.ListingStatusActive))

	var stored models.BusinessListing
	require.NoError(t, db.First(&stored, listing.ID).Error)
	assert.Equal(t, models.ListingStatusActive, stored.Status)
}

func TestSearchDefaultsToActive(t *testing.T) {
	svc, _ := newTestService(t)

	active := sampleListing("Open Cafe")
	require.NoError(t, svc.Create(listingsOn(), 1, active))
	require.NoError(t, svc.Moderate(active.ID, models.ListingStatusActive))

	pending := sampleListing("Waiting Cafe")
	require.NoError(t, svc.Create(listingsOn(), 1, pending))

	results, err := svc.Search(listingsOn(), repository.ListingFilter{City: "Berlin"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, active.ID, results[0].ID)
}

func TestClaimFlow(t *testing.T) {
	svc, db := newTestService(t)

	listing := sampleListing("Imported Diner")
	require.NoError(t, svc.Create(listingsOn(), 0, listing))

	claim, err := svc.SubmitClaim(listingsOn(), 7, listing.ID, "I am the owner, see website imprint")
	require.NoError(t, err)
	assert.Equal(t, models.ClaimStatusPending, claim.Status)
	assert.NotEmpty(t, claim.Token)

	require.NoError(t, svc.ApproveClaim(claim.ID))

	var claimed models.BusinessListing
	require.NoError(t, db.First(&claimed, listing.ID).Error)
	assert.True(t, claimed.IsClaimed)
	assert.Equal(t, uint(7), claimed.UserID)

	// A claimed listing cannot be claimed again.
	_, err = svc.SubmitClaim(listingsOn(), 8, listing.ID, "me too")
	assert.ErrorIs(t, err, ErrAlreadyClaimed)

	assert.ErrorIs(t, svc.ApproveClaim(claim.ID), ErrClaimDecided)
}

func TestApproveClaimAssignsFreePlan(t *testing.T) {
	svc, db := newTestService(t)

	freePlan := &models.Plan{
		Name:     "Free",
		Slug:     "free",
		Scope:    models.PlanScopeListing,
		Features: []string{string(entitlements.FeatureGallery)},
		IsActive: true,
	}
	require.NoError(t, db.Create(freePlan).Error)

	listing := sampleListing("Imported Diner")
	require.NoError(t, svc.Create(listingsOn(), 0, listing))

	claim, err := svc.SubmitClaim(listingsOn(), 7, listing.ID, "see website imprint")
	require.NoError(t, err)
	require.NoError(t, svc.ApproveClaim(claim.ID))

	var claimed models.BusinessListing
	require.NoError(t, db.First(&claimed, listing.ID).Error)
	assert.Equal(t, freePlan.ID, claimed.CurrentPlanID)

	var sub models.UserSubscription
	require.NoError(t, db.Where("listing_id = ?", listing.ID).First(&sub).Error)
	assert.Equal(t, uint(7), sub.UserID)
	assert.Equal(t, freePlan.ID, sub.PlanID)
	assert.Equal(t, models.SubscriptionStatusActive, sub.Status)
	assert.Equal(t, models.PaymentStatusFree, sub.PaymentStatus)

	// The new owner's entitlements resolve immediately.
	features, err := plans.NewServiceFromDB(db).EffectiveFeaturesForListing(
		models.SettingsSnapshot{SubscriptionsEnabled: true}, listing.ID)
	require.NoError(t, err)
	assert.True(t, features.Has(entitlements.FeatureGallery))
}

func TestRejectClaim(t *testing.T) {
	svc, db := newTestService(t)

	listing := sampleListing("Imported Diner")
	require.NoError(t, svc.Create(listingsOn(), 0, listing))

	claim, err := svc.SubmitClaim(listingsOn(), 7, listing.ID, "trust me")
	require.NoError(t, err)
	require.NoError(t, svc.RejectClaim(claim.ID))

	var unchanged models.BusinessListing
	require.NoError(t, db.First(&unchanged, listing.ID).Error)
	assert.False(t, unchanged.IsClaimed)
	assert.Equal(t, uint(0), unchanged.UserID)

	assert.ErrorIs(t, svc.RejectClaim(claim.ID), ErrClaimDecided)
}

func TestClaimsDisabled(t *testing.T) {
	svc, _ := newTestService(t)

	listing := sampleListing("Imported Diner")
	require.NoError(t, svc.Create(listingsOn(), 0, listing))

	off := listingsOn()
	off.ClaimsEnabled = false
	_, err := svc.SubmitClaim(off, 7, listing.ID, "evidence")
	assert.ErrorIs(t, err, ErrClaimsDisabled)
}
