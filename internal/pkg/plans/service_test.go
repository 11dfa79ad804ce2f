package plans

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/models"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/entitlements"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.BusinessListing{},
		&models.Plan{},
		&models.UserSubscription{},
	))
	return db
}

func seedListing(t *testing.T, db *gorm.DB) *models.BusinessListing {
	t.Helper()
	listing := &models.BusinessListing{
		UserID:       1,
		Name: "Blue Bottle Cafe",
		Slug:         "blue-bottle-cafe",
		Status:       models.ListingStatusActive,
	}
	require.NoError(t, db.Create(listing).Error)
	return listing
}

func seedPlan(t *testing.T, db *gorm.DB, name string, price string, durationDays int, features []string) *models.Plan {
	t.Helper()
	plan := &models.Plan{
		Name:         name,
		Slug:         models.Slugify(name),
		Scope:        models.PlanScopeListing,
		Price:        decimal.RequireFromString(price),
		DurationDays: durationDays,
		Features:     features,
		IsActive:     true,
	}
	require.NoError(t, db.Create(plan).Error)
	return plan
}

func subscriptionsOn() models.SettingsSnapshot {
	return models.SettingsSnapshot{SubscriptionsEnabled: true, AnalyticsEnabled: true, AIEnabled: true}
}

func TestCreatePlanDropsUnknownFeatures(t *testing.T) {
	db := newTestDB(t)
	svc := NewServiceFromDB(db)

	plan := &models.Plan{
		Name:     "Gold",
		Scope:    models.PlanScopeListing,
		Price:    decimal.RequireFromString("29.00"),
		Features: []string{string(entitlements.FeatureGallery), "teleportation"},
		IsActive: true,
	}
	require.NoError(t, svc.CreatePlan(plan))
	assert.Equal(t, "gold", plan.Slug)
	assert.Equal(t, []string{string(entitlements.FeatureGallery)}, plan.Features)
}

func TestAssignPlanExpiresPreviousSubscription(t *testing.T) {
	db := newTestDB(t)
	svc := NewServiceFromDB(db)
	listing := seedListing(t, db)
	basic := seedPlan(t, db, "Basic", "9.00", 30, []string{string(entitlements.FeatureGallery)})
	gold := seedPlan(t, db, "Gold", "29.00", 30, []string{string(entitlements.FeatureGallery), string(entitlements.FeatureAnalytics)})

	first, err := svc.AssignPlanToListing(subscriptionsOn(), listing.ID, basic.ID, 1, models.PaymentStatusPaid)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusActive, first.Status)
	require.NotNil(t, first.EndDate)

	second, err := svc.AssignPlanToListing(subscriptionsOn(), listing.ID, gold.ID, 1, models.PaymentStatusPaid)
	require.NoError(t, err)

	// At most one active subscription per listing.
	var active []models.UserSubscription
	require.NoError(t, db.Where("listing_id = ? AND status = ?", listing.ID, models.SubscriptionStatusActive).Find(&active).Error)
	require.Len(t, active, 1)
	assert.Equal(t, second.ID, active[0].ID)

	var old models.UserSubscription
	require.NoError(t, db.First(&old, first.ID).Error)
	assert.Equal(t, models.SubscriptionStatusExpired, old.Status)

	var updated models.BusinessListing
	require.NoError(t, db.First(&updated, listing.ID).Error)
	assert.Equal(t, gold.ID, updated.CurrentPlanID)
}

func TestAssignPaidPlanRejectedWhenSubscriptionsDisabled(t *testing.T) {
	db := newTestDB(t)
	svc := NewServiceFromDB(db)
	listing := seedListing(t, db)
	paid := seedPlan(t, db, "Gold", "29.00", 30, nil)
	free := seedPlan(t, db, "Free", "0.00", 0, nil)

	off := models.SettingsSnapshot{SubscriptionsEnabled: false}

	_, err := svc.AssignPlanToListing(off, listing.ID, paid.ID, 1, models.PaymentStatusPaid)
	assert.ErrorIs(t, err, ErrFeatureDisabled)

	// Free plans are assignable even with subscriptions off.
	sub, err := svc.AssignPlanToListing(off, listing.ID, free.ID, 1, "")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusFree, sub.PaymentStatus)
	assert.Nil(t, sub.EndDate)
}

func TestAssignInactivePlan(t *testing.T) {
	db := newTestDB(t)
	svc := NewServiceFromDB(db)
	listing := seedListing(t, db)
	plan := seedPlan(t, db, "Retired", "9.00", 30, nil)
	require.NoError(t, db.Model(plan).Update("is_active", false).Error)

	_, err := svc.AssignPlanToListing(subscriptionsOn(), listing.ID, plan.ID, 1, models.PaymentStatusPaid)
	assert.ErrorIs(t, err, ErrPlanInactive)
}

func TestAssignAppScopedPlanToListing(t *testing.T) {
	db := newTestDB(t)
	svc := NewServiceFromDB(db)
	listing := seedListing(t, db)

	plan := &models.Plan{
		Name:     "App Pro",
		Slug:     "app-pro",
		Scope:    models.PlanScopeApp,
		Price:    decimal.RequireFromString("9.00"),
		IsActive: true,
	}
	require.NoError(t, db.Create(plan).Error)

	_, err := svc.AssignPlanToListing(subscriptionsOn(), listing.ID, plan.ID, 1, models.PaymentStatusPaid)
	assert.ErrorIs(t, err, ErrScopeMismatch)
}

func TestMarkSubscriptionPaid(t *testing.T) {
	db := newTestDB(t)
	svc := NewServiceFromDB(db)
	listing := seedListing(t, db)
	plan := seedPlan(t, db, "Gold", "29.00", 30, nil)

	sub, err := svc.AssignPlanToListing(subscriptionsOn(), listing.ID, plan.ID, 1, models.PaymentStatusPending)
	require.NoError(t, err)
	require.Equal(t, models.PaymentStatusPending, sub.PaymentStatus)

	paid, changed, err := svc.MarkSubscriptionPaid(sub.ID)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, models.PaymentStatusPaid, paid.PaymentStatus)

	// A replayed confirmation reports no transition.
	again, changed, err := svc.MarkSubscriptionPaid(sub.ID)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, models.PaymentStatusPaid, again.PaymentStatus)
}

func TestMarkSubscriptionPaidFreePlan(t *testing.T) {
	db := newTestDB(t)
	svc := NewServiceFromDB(db)
	listing := seedListing(t, db)
	free := seedPlan(t, db, "Free", "0.00", 0, nil)

	sub, err := svc.AssignPlanToListing(subscriptionsOn(), listing.ID, free.ID, 1, "")
	require.NoError(t, err)

	_, changed, err := svc.MarkSubscriptionPaid(sub.ID)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestEffectiveFeaturesForListing(t *testing.T) {
	db := newTestDB(t)
	svc := NewServiceFromDB(db)
	listing := seedListing(t, db)
	plan := seedPlan(t, db, "Gold", "29.00", 30,
		[]string{string(entitlements.FeatureGallery), string(entitlements.FeatureAnalytics)})

	// No plan assigned yet.
	features, err := svc.EffectiveFeaturesForListing(subscriptionsOn(), listing.ID)
	require.NoError(t, err)
	assert.Empty(t, features)

	_, err = svc.AssignPlanToListing(subscriptionsOn(), listing.ID, plan.ID, 1, models.PaymentStatusPaid)
	require.NoError(t, err)

	features, err = svc.EffectiveFeaturesForListing(subscriptionsOn(), listing.ID)
	require.NoError(t, err)
	assert.True(t, features.Has(entitlements.FeatureGallery))
	assert.True(t, features.Has(entitlements.FeatureAnalytics))

	// The analytics gate filters the plan allowance.
	gated := subscriptionsOn()
	gated.AnalyticsEnabled = false
	features, err = svc.EffectiveFeaturesForListing(gated, listing.ID)
	require.NoError(t, err)
	assert.True(t, features.Has(entitlements.FeatureGallery))
	assert.False(t, features.Has(entitlements.FeatureAnalytics))
}

func TestEffectiveFeaturesForApp(t *testing.T) {
	db := newTestDB(t)
	svc := NewServiceFromDB(db)

	plan := &models.Plan{
		Name:     "App Pro",
		Slug:     "app-pro",
		Scope:    models.PlanScopeApp,
		Price:    decimal.RequireFromString("9.00"),
		Features: []string{string(entitlements.FeatureOfflinePage)},
		IsActive: true,
	}
	require.NoError(t, db.Create(plan).Error)

	app := &models.PwaApp{CurrentPlanID: plan.ID}
	features, err := svc.EffectiveFeaturesForApp(subscriptionsOn(), app)
	require.NoError(t, err)
	assert.True(t, features.Has(entitlements.FeatureOfflinePage))

	// No plan assigned, no features.
	features, err = svc.EffectiveFeaturesForApp(subscriptionsOn(), &models.PwaApp{})
	require.NoError(t, err)
	assert.Empty(t, features)

	// A deactivated plan entitles nothing.
	require.NoError(t, db.Model(plan).Update("is_active", false).Error)
	features, err = svc.EffectiveFeaturesForApp(subscriptionsOn(), app)
	require.NoError(t, err)
	assert.Empty(t, features)
}

func TestExpireDue(t *testing.T) {
	db := newTestDB(t)
	svc := NewServiceFromDB(db)
	listing := seedListing(t, db)
	plan := seedPlan(t, db, "Gold", "29.00", 30, []string{string(entitlements.FeatureGallery)})

	sub, err := svc.AssignPlanToListing(subscriptionsOn(), listing.ID, plan.ID, 1, models.PaymentStatusPaid)
	require.NoError(t, err)

	past := time.Now().Add(-24 * time.Hour)
	require.NoError(t, db.Model(&models.UserSubscription{}).Where("id = ?", sub.ID).Update("end_date", past).Error)

	// Expiry is visible at read time even before the sweep runs.
	features, err := svc.EffectiveFeaturesForListing(subscriptionsOn(), listing.ID)
	require.NoError(t, err)
	assert.Empty(t, features)

	n, err := svc.ExpireDue()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	var expired models.UserSubscription
	require.NoError(t, db.First(&expired, sub.ID).Error)
	assert.Equal(t, models.SubscriptionStatusExpired, expired.Status)
}
