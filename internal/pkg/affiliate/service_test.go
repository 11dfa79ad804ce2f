package affiliate

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.UserCapability{},
		&models.Affiliate{},
		&models.AffiliateTier{},
		&models.AffiliateCommission{},
		&models.AffiliatePayout{},
	))
	return db
}

func enabledSettings() models.SettingsSnapshot {
	return models.SettingsSnapshot{AffiliatesEnabled: true, MinPayoutAmount: 10}
}

func seedTier(t *testing.T, db *gorm.DB, base, mlm string) *models.AffiliateTier {
	t.Helper()
	tier := &models.AffiliateTier{
		Name:               "Standard",
		BaseCommissionRate: decimal.RequireFromString(base),
		MLMCommissionRate:  decimal.RequireFromString(mlm),
		IsActive:           true,
	}
	require.NoError(t, db.Create(tier).Error)
	return tier
}

func seedAffiliate(t *testing.T, db *gorm.DB, userID, tierID, referredBy uint, status string) *models.Affiliate {
	t.Helper()
	code, err := generateAffiliateCode()
	require.NoError(t, err)
	aff := &models.Affiliate{
		UserID:        userID,
		AffiliateCode: code,
		PaymentEmail:  "aff@example.com",
		Status:        status,
		CurrentTierID: tierID,
		ReferredBy:    referredBy,
	}
	require.NoError(t, db.Create(aff).Error)
	return aff
}

func TestRegister(t *testing.T) {
	db := newTestDB(t)
	svc := NewServiceFromDB(db)
	tier := seedTier(t, db, "10.00", "5.00")

	user := &models.User{Name: "alice", Email: "alice@example.com", Password: "x", Role: models.ROLE_USER, Status: models.STATUS_ACTIVE}
	require.NoError(t, db.Create(user).Error)

	aff, err := svc.Register(enabledSettings(), user, "alice@pay.example.com")
	require.NoError(t, err)
	assert.Equal(t, models.AffiliateStatusPending, aff.Status)
	assert.Equal(t, tier.ID, aff.CurrentTierID)
	assert.NotEmpty(t, aff.AffiliateCode)
	assert.True(t, aff.WalletBalance.IsZero())

	// Registration grants the self-service affiliate capabilities.
	var caps []models.UserCapability
	require.NoError(t, db.Where("user_id = ?", user.ID).Find(&caps).Error)
	assert.Len(t, caps, 2)

	_, err = svc.Register(enabledSettings(), user, "alice@pay.example.com")
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestRegisterDisabled(t *testing.T) {
	db := newTestDB(t)
	svc := NewServiceFromDB(db)

	user := &models.User{Name: "bob", Email: "bob@example.com", Password: "x", Role: models.ROLE_USER, Status: models.STATUS_ACTIVE}
	require.NoError(t, db.Create(user).Error)

	_, err := svc.Register(models.SettingsSnapshot{AffiliatesEnabled: false}, user, "bob@pay.example.com")
	assert.ErrorIs(t, err, ErrFeatureDisabled)
}

func TestRegisterLinksParentByReferralCode(t *testing.T) {
	db := newTestDB(t)
	svc := NewServiceFromDB(db)
	tier := seedTier(t, db, "10.00", "5.00")
	parent := seedAffiliate(t, db, 1, tier.ID, 0, models.AffiliateStatusActive)

	user := &models.User{Name: "carol", Email: "carol@example.com", Password: "x", Role: models.ROLE_USER, Status: models.STATUS_ACTIVE, ReferredByCode: parent.AffiliateCode}
	require.NoError(t, db.Create(user).Error)

	aff, err := svc.Register(enabledSettings(), user, "carol@pay.example.com")
	require.NoError(t, err)
	assert.Equal(t, parent.ID, aff.ReferredBy)
}

func TestRecordCommissionWithMLM(t *testing.T) {
	db := newTestDB(t)
	svc := NewServiceFromDB(db)
	tier := seedTier(t, db, "10.00", "5.00")

	parent := seedAffiliate(t, db, 1, tier.ID, 0, models.AffiliateStatusActive)
	child := seedAffiliate(t, db, 2, tier.ID, parent.ID, models.AffiliateStatusActive)

	commission, err := svc.RecordCommission(enabledSettings(), child.ID, 99, models.ReferralTypeSubscription, decimal.RequireFromString("200.00"))
	require.NoError(t, err)
	assert.Equal(t, "20.00", commission.CommissionAmount.StringFixed(2))
	assert.Equal(t, models.CommissionStatusPending, commission.Status)
	assert.False(t, commission.IsMLM)

	var rows []models.AffiliateCommission
	require.NoError(t, db.Order("id").Find(&rows).Error)
	require.Len(t, rows, 2)

	mlm := rows[1]
	assert.Equal(t, parent.ID, mlm.AffiliateID)
	assert.True(t, mlm.IsMLM)
	assert.Equal(t, "10.00", mlm.CommissionAmount.StringFixed(2))
	assert.Equal(t, uint(99), mlm.ReferredUserID)
}

func TestRecordCommissionNoMLMWithoutParent(t *testing.T) {
	db := newTestDB(t)
	svc := NewServiceFromDB(db)
	tier := seedTier(t, db, "10.00", "5.00")
	aff := seedAffiliate(t, db, 1, tier.ID, 0, models.AffiliateStatusActive)

	_, err := svc.RecordCommission(enabledSettings(), aff.ID, 99, models.ReferralTypeSignup, decimal.RequireFromString("50.00"))
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.AffiliateCommission{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRecordCommissionInactiveParentSkipsMLM(t *testing.T) {
	db := newTestDB(t)
	svc := NewServiceFromDB(db)
	tier := seedTier(t, db, "10.00", "5.00")
	parent := seedAffiliate(t, db, 1, tier.ID, 0, models.AffiliateStatusPending)
	child := seedAffiliate(t, db, 2, tier.ID, parent.ID, models.AffiliateStatusActive)

	_, err := svc.RecordCommission(enabledSettings(), child.ID, 99, models.ReferralTypeSubscription, decimal.RequireFromString("100.00"))
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.AffiliateCommission{}).Where("is_mlm = ?", true).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestRecordConversionCreditsReferrer(t *testing.T) {
	db := newTestDB(t)
	svc := NewServiceFromDB(db)
	tier := seedTier(t, db, "10.00", "0")
	referrer := seedAffiliate(t, db, 1, tier.ID, 0, models.AffiliateStatusActive)

	buyer := &models.User{Name: "dave", Email: "dave@example.com", Password: "x", Role: models.ROLE_USER, Status: models.STATUS_ACTIVE, ReferredByCode: referrer.AffiliateCode}
	require.NoError(t, db.Create(buyer).Error)

	commission, err := svc.RecordConversion(enabledSettings(), buyer.ID, models.ReferralTypeSubscription, decimal.RequireFromString("120.00"))
	require.NoError(t, err)
	require.NotNil(t, commission)
	assert.Equal(t, referrer.ID, commission.AffiliateID)
	assert.Equal(t, buyer.ID, commission.ReferredUserID)
	assert.Equal(t, models.ReferralTypeSubscription, commission.ReferralType)
	assert.Equal(t, "12.00", commission.CommissionAmount.StringFixed(2))
}

func TestRecordConversionWithoutReferral(t *testing.T) {
	db := newTestDB(t)
	svc := NewServiceFromDB(db)
	seedTier(t, db, "10.00", "0")

	buyer := &models.User{Name: "erin", Email: "erin@example.com", Password: "x", Role: models.ROLE_USER, Status: models.STATUS_ACTIVE}
	require.NoError(t, db.Create(buyer).Error)

	commission, err := svc.RecordConversion(enabledSettings(), buyer.ID, models.ReferralTypeSubscription, decimal.RequireFromString("120.00"))
	require.NoError(t, err)
	assert.Nil(t, commission)

	var count int64
	require.NoError(t, db.Model(&models.AffiliateCommission{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestRecordConversionUnknownCode(t *testing.T) {
	db := newTestDB(t)
	svc := NewServiceFromDB(db)

	buyer := &models.User{Name: "finn", Email: "finn@example.com", Password: "x", Role: models.ROLE_USER, Status: models.STATUS_ACTIVE, ReferredByCode: "no-such-code"}
	require.NoError(t, db.Create(buyer).Error)

	commission, err := svc.RecordConversion(enabledSettings(), buyer.ID, models.ReferralTypeSubscription, decimal.RequireFromString("120.00"))
	require.NoError(t, err)
	assert.Nil(t, commission)
}

func TestRecordConversionInactiveReferrer(t *testing.T) {
	db := newTestDB(t)
	svc := NewServiceFromDB(db)
	tier := seedTier(t, db, "10.00", "0")
	referrer := seedAffiliate(t, db, 1, tier.ID, 0, models.AffiliateStatusPending)

	buyer := &models.User{Name: "gus", Email: "gus@example.com", Password: "x", Role: models.ROLE_USER, Status: models.STATUS_ACTIVE, ReferredByCode: referrer.AffiliateCode}
	require.NoError(t, db.Create(buyer).Error)

	_, err := svc.RecordConversion(enabledSettings(), buyer.ID, models.ReferralTypeSubscription, decimal.RequireFromString("120.00"))
	assert.ErrorIs(t, err, ErrNotActive)
}

func TestRecordCommissionInactiveAffiliate(t *testing.T) {
	db := newTestDB(t)
	svc := NewServiceFromDB(db)
	tier := seedTier(t, db, "10.00", "5.00")
	aff := seedAffiliate(t, db, 1, tier.ID, 0, models.AffiliateStatusPending)

	_, err := svc.RecordCommission(enabledSettings(), aff.ID, 99, models.ReferralTypeSignup, decimal.RequireFromString("50.00"))
	assert.ErrorIs(t, err, ErrNotActive)

	var count int64
	require.NoError(t, db.Model(&models.AffiliateCommission{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestApproveCommissionCreditsWallet(t *testing.T) {
	db := newTestDB(t)
	svc := NewServiceFromDB(db)
	tier := seedTier(t, db, "10.00", "0")
	aff := seedAffiliate(t, db, 1, tier.ID, 0, models.AffiliateStatusActive)

	commission, err := svc.RecordCommission(enabledSettings(), aff.ID, 99, models.ReferralTypeSubscription, decimal.RequireFromString("200.00"))
	require.NoError(t, err)

	require.NoError(t, svc.ApproveCommission(commission.ID))

	var updated models.Affiliate
	require.NoError(t, db.First(&updated, aff.ID).Error)
	assert.Equal(t, "20.00", updated.WalletBalance.StringFixed(2))

	var decided models.AffiliateCommission
	require.NoError(t, db.First(&decided, commission.ID).Error)
	assert.Equal(t, models.CommissionStatusApproved, decided.Status)
	assert.NotNil(t, decided.DecidedAt)

	// Re-deciding is refused and the wallet is not credited twice.
	assert.ErrorIs(t, svc.ApproveCommission(commission.ID), ErrAlreadyDecided)
	require.NoError(t, db.First(&updated, aff.ID).Error)
	assert.Equal(t, "20.00", updated.WalletBalance.StringFixed(2))
}

func TestRejectCommissionLeavesWallet(t *testing.T) {
	db := newTestDB(t)
	svc := NewServiceFromDB(db)
	tier := seedTier(t, db, "10.00", "0")
	aff := seedAffiliate(t, db, 1, tier.ID, 0, models.AffiliateStatusActive)

	commission, err := svc.RecordCommission(enabledSettings(), aff.ID, 99, models.ReferralTypeSignup, decimal.RequireFromString("80.00"))
	require.NoError(t, err)

	require.NoError(t, svc.RejectCommission(commission.ID))

	var updated models.Affiliate
	require.NoError(t, db.First(&updated, aff.ID).Error)
	assert.True(t, updated.WalletBalance.IsZero())

	assert.ErrorIs(t, svc.RejectCommission(commission.ID), ErrAlreadyDecided)
}

func TestRequestPayout(t *testing.T) {
	db := newTestDB(t)
	svc := NewServiceFromDB(db)
	tier := seedTier(t, db, "10.00", "0")
	aff := seedAffiliate(t, db, 1, tier.ID, 0, models.AffiliateStatusActive)
	require.NoError(t, db.Model(aff).Update("wallet_balance", decimal.RequireFromString("50.00")).Error)

	// More than the wallet holds.
	_, err := svc.RequestPayout(enabledSettings(), aff.ID, decimal.RequireFromString("75.00"), models.PayoutMethodPaypal)
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	var unchanged models.Affiliate
	require.NoError(t, db.First(&unchanged, aff.ID).Error)
	assert.Equal(t, "50.00", unchanged.WalletBalance.StringFixed(2))

	// Below the configured minimum.
	_, err = svc.RequestPayout(enabledSettings(), aff.ID, decimal.RequireFromString("5.00"), models.PayoutMethodPaypal)
	assert.ErrorIs(t, err, ErrBelowMinimum)

	// A valid request debits the wallet immediately.
	payout, err := svc.RequestPayout(enabledSettings(), aff.ID, decimal.RequireFromString("30.00"), models.PayoutMethodPaypal)
	require.NoError(t, err)
	assert.Equal(t, models.PayoutStatusPending, payout.Status)

	var debited models.Affiliate
	require.NoError(t, db.First(&debited, aff.ID).Error)
	assert.Equal(t, "20.00", debited.WalletBalance.StringFixed(2))
}

func TestRequestPayoutInactive(t *testing.T) {
	db := newTestDB(t)
	svc := NewServiceFromDB(db)
	tier := seedTier(t, db, "10.00", "0")
	aff := seedAffiliate(t, db, 1, tier.ID, 0, models.AffiliateStatusPending)
	require.NoError(t, db.Model(aff).Update("wallet_balance", decimal.RequireFromString("100.00")).Error)

	_, err := svc.RequestPayout(enabledSettings(), aff.ID, decimal.RequireFromString("50.00"), models.PayoutMethodBank)
	assert.ErrorIs(t, err, ErrNotActive)
}

func TestCompletePayout(t *testing.T) {
	db := newTestDB(t)
	svc := NewServiceFromDB(db)
	tier := seedTier(t, db, "10.00", "0")
	aff := seedAffiliate(t, db, 1, tier.ID, 0, models.AffiliateStatusActive)
	require.NoError(t, db.Model(aff).Update("wallet_balance", decimal.RequireFromString("100.00")).Error)

	payout, err := svc.RequestPayout(enabledSettings(), aff.ID, decimal.RequireFromString("40.00"), models.PayoutMethodPaypal)
	require.NoError(t, err)

	require.NoError(t, svc.CompletePayout(payout.ID))

	var done models.AffiliatePayout
	require.NoError(t, db.First(&done, payout.ID).Error)
	assert.Equal(t, models.PayoutStatusCompleted, done.Status)
	assert.NotNil(t, done.CompletedAt)

	// Completing again is a no-op.
	require.NoError(t, svc.CompletePayout(payout.ID))
}

func TestGetStats(t *testing.T) {
	db := newTestDB(t)
	svc := NewServiceFromDB(db)
	tier := seedTier(t, db, "10.00", "0")
	aff := seedAffiliate(t, db, 1, tier.ID, 0, models.AffiliateStatusActive)

	c1, err := svc.RecordCommission(enabledSettings(), aff.ID, 10, models.ReferralTypeSubscription, decimal.RequireFromString("200.00"))
	require.NoError(t, err)
	_, err = svc.RecordCommission(enabledSettings(), aff.ID, 11, models.ReferralTypeSignup, decimal.RequireFromString("50.00"))
	require.NoError(t, err)
	require.NoError(t, svc.ApproveCommission(c1.ID))

	_, err = svc.RequestPayout(enabledSettings(), aff.ID, decimal.RequireFromString("15.00"), models.PayoutMethodPaypal)
	require.NoError(t, err)

	stats, err := svc.GetStats(aff.ID)
	require.NoError(t, err)
	assert.Equal(t, "5.00", stats.WalletBalance.StringFixed(2))
	assert.Equal(t, "20.00", stats.TotalEarned.StringFixed(2))
	assert.Equal(t, "5.00", stats.PendingEarnings.StringFixed(2))
	assert.Equal(t, int64(2), stats.CommissionCount)
	assert.Equal(t, "15.00", stats.TotalPaidOut.StringFixed(2))
}
