package affiliate

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/models"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/repository"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/capability"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/shortener"
)

var (
	// ErrFeatureDisabled is returned when the affiliate program is globally off.
	ErrFeatureDisabled = errors.New("affiliate program is disabled")
	// ErrAlreadyRegistered is returned when a user re-registers as an affiliate.
	ErrAlreadyRegistered = errors.New("user is already registered as an affiliate")
	// ErrNotActive is returned for ledger operations on non-active affiliates.
	ErrNotActive = errors.New("affiliate is not active")
	// ErrInsufficientBalance is returned when a payout exceeds the wallet.
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
	// ErrBelowMinimum is returned when a payout is under the configured minimum.
	ErrBelowMinimum = errors.New("payout amount is below the minimum")
	// ErrAlreadyDecided is returned when re-deciding a decided commission.
	ErrAlreadyDecided = errors.New("commission has already been decided")
)

// Service is the affiliate ledger. Wallet balances only move inside database
// transactions with the affiliate row locked, so concurrent approvals and
// payout requests never lose an update.
type Service struct {
	db    *gorm.DB
	repo  repository.AffiliateRepository
	users repository.UserRepository
}

// NewService creates an affiliate ledger service.
func NewService(db *gorm.DB, repo repository.AffiliateRepository, users repository.UserRepository) *Service {
	return &Service{db: db, repo: repo, users: users}
}

// NewServiceFromDB creates an affiliate ledger service with default repositories.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(db, repository.NewAffiliateRepository(db), repository.NewUserRepository(db))
}

func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "mysql" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

func generateAffiliateCode() (string, error) {
	code, err := shortener.GenerateSecureSlug(10)
	if err != nil {
		return "", fmt.Errorf("failed to generate affiliate code: %w", err)
	}
	return code, nil
}

// Register enrolls a user into the affiliate program with pending status and
// the default tier. When the user was referred by another affiliate's code,
// that affiliate becomes the one-level MLM parent.
func (s *Service) Register(settings models.SettingsSnapshot, user *models.User, paymentEmail string) (*models.Affiliate, error) {
	if !settings.AffiliatesEnabled {
		return nil, ErrFeatureDisabled
	}

	if _, err := s.repo.GetByUserID(user.ID); err == nil {
		return nil, ErrAlreadyRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up affiliate for user %d: %w", user.ID, err)
	}

	code, err := generateAffiliateCode()
	if err != nil {
		return nil, err
	}

	aff := &models.Affiliate{
		UserID:        user.ID,
		AffiliateCode: code,
		PaymentEmail:  paymentEmail,
		Status:        models.AffiliateStatusPending,
	}

	if tier, err := s.repo.GetDefaultTier(); err == nil {
		aff.CurrentTierID = tier.ID
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load default tier: %w", err)
	}

	if user.ReferredByCode != "" {
		if parent, err := s.repo.GetByCode(user.ReferredByCode); err == nil {
			aff.ReferredBy = parent.ID
		}
	}

	if err := aff.Validate(); err != nil {
		return nil, fmt.Errorf("affiliate validation failed: %w", err)
	}
	if err := s.repo.Create(aff); err != nil {
		return nil, fmt.Errorf("failed to create affiliate: %w", err)
	}

	for _, cap := range []string{capability.ViewAffiliate, capability.RequestPayout} {
		if err := capability.Grant(s.users, user.ID, cap); err != nil {
			log.Warnf("failed to grant %s to user %d: %v", cap, user.ID, err)
		}
	}

	log.Infof("registered affiliate %d (user %d, code %s)", aff.ID, user.ID, aff.AffiliateCode)
	return aff, nil
}

// Approve activates a pending affiliate.
func (s *Service) Approve(affiliateID uint) error {
	aff, err := s.repo.GetByID(affiliateID)
	if err != nil {
		return fmt.Errorf("failed to load affiliate %d: %w", affiliateID, err)
	}
	if aff.IsActive() {
		return nil
	}
	now := time.Now()
	aff.Status = models.AffiliateStatusActive
	aff.ApprovedAt = &now
	return s.repo.Update(aff)
}

// RecordCommission writes a pending commission for the referring affiliate,
// plus an MLM commission one level up when the affiliate was itself referred.
// Inactive affiliates earn nothing, so the whole call is a no-op for them.
// Failure to write the MLM row never rolls back the primary commission.
func (s *Service) RecordCommission(settings models.SettingsSnapshot, affiliateID, referredUserID uint, referralType string, amount decimal.Decimal) (*models.AffiliateCommission, error) {
	if !settings.AffiliatesEnabled {
		return nil, ErrFeatureDisabled
	}

	aff, err := s.repo.GetByID(affiliateID)
	if err != nil {
		return nil, fmt.Errorf("failed to load affiliate %d: %w", affiliateID, err)
	}
	if !aff.IsActive() {
		return nil, ErrNotActive
	}

	tier, err := s.repo.GetTierByID(aff.CurrentTierID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tier %d: %w", aff.CurrentTierID, err)
	}

	commission := &models.AffiliateCommission{
		AffiliateID:      aff.ID,
		ReferredUserID:   referredUserID,
		ReferralType:     referralType,
		ReferralAmount:   amount,
		CommissionRate:   tier.BaseCommissionRate,
		CommissionAmount: amount.Mul(tier.BaseCommissionRate).Div(decimal.NewFromInt(100)).Round(2),
		Status:           models.CommissionStatusPending,
	}
	if err := s.repo.CreateCommission(commission); err != nil {
		return nil, fmt.Errorf("failed to record commission: %w", err)
	}

	s.recordMLMCommission(aff, commission, tier)

	return commission, nil
}

// RecordConversion accrues a commission for whoever referred the given user.
// Users without a referral code, or with a code that matches no affiliate,
// simply earn nobody anything: the call returns (nil, nil).
func (s *Service) RecordConversion(settings models.SettingsSnapshot, referredUserID uint, referralType string, amount decimal.Decimal) (*models.AffiliateCommission, error) {
	if !settings.AffiliatesEnabled {
		return nil, ErrFeatureDisabled
	}

	user, err := s.users.GetByID(referredUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user %d: %w", referredUserID, err)
	}
	if user.ReferredByCode == "" {
		return nil, nil
	}

	aff, err := s.repo.GetByCode(user.ReferredByCode)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve referral code %q: %w", user.ReferredByCode, err)
	}

	return s.RecordCommission(settings, aff.ID, referredUserID, referralType, amount)
}

// recordMLMCommission writes the one-level parent commission. Deeper
// ancestors never earn from this event.
func (s *Service) recordMLMCommission(aff *models.Affiliate, primary *models.AffiliateCommission, tier *models.AffiliateTier) {
	if aff.ReferredBy == 0 || !tier.MLMCommissionRate.IsPositive() {
		return
	}

	parent, err := s.repo.GetByID(aff.ReferredBy)
	if err != nil {
		log.Warnf("mlm commission skipped: parent affiliate %d not found: %v", aff.ReferredBy, err)
		return
	}
	if !parent.IsActive() {
		return
	}

	mlm := &models.AffiliateCommission{
		AffiliateID:      parent.ID,
		ReferredUserID:   primary.ReferredUserID,
		ReferralType:     primary.ReferralType,
		ReferralAmount:   primary.ReferralAmount,
		CommissionRate:   tier.MLMCommissionRate,
		CommissionAmount: primary.ReferralAmount.Mul(tier.MLMCommissionRate).Div(decimal.NewFromInt(100)).Round(2),
		IsMLM:            true,
		Status:           models.CommissionStatusPending,
	}
	if err := s.repo.CreateCommission(mlm); err != nil {
		log.Errorf("failed to record mlm commission for affiliate %d: %v", parent.ID, err)
	}
}

// ApproveCommission marks a pending commission approved and credits the
// wallet in one transaction.
func (s *Service) ApproveCommission(commissionID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var commission models.AffiliateCommission
		if err := lockForUpdate(tx).First(&commission, commissionID).Error; err != nil {
			return fmt.Errorf("failed to load commission %d: %w", commissionID, err)
		}
		if commission.Status != models.CommissionStatusPending {
			return ErrAlreadyDecided
		}

		var aff models.Affiliate
		if err := lockForUpdate(tx).First(&aff, commission.AffiliateID).Error; err != nil {
			return fmt.Errorf("failed to load affiliate %d: %w", commission.AffiliateID, err)
		}

		now := time.Now()
		commission.Status = models.CommissionStatusApproved
		commission.DecidedAt = &now
		if err := tx.Save(&commission).Error; err != nil {
			return err
		}

		aff.WalletBalance = aff.WalletBalance.Add(commission.CommissionAmount)
		return tx.Save(&aff).Error
	})
}

// RejectCommission marks a pending commission rejected. The wallet is never
// touched because pending commissions are not part of the balance.
func (s *Service) RejectCommission(commissionID uint) error {
	commission, err := s.repo.GetCommissionByID(commissionID)
	if err != nil {
		return fmt.Errorf("failed to load commission %d: %w", commissionID, err)
	}
	if commission.Status != models.CommissionStatusPending {
		return ErrAlreadyDecided
	}
	now := time.Now()
	commission.Status = models.CommissionStatusRejected
	commission.DecidedAt = &now
	return s.repo.UpdateCommission(commission)
}

// RequestPayout debits the wallet immediately and creates a pending payout.
// The affiliate row is locked for the balance check and debit, so two
// concurrent requests cannot both pass against the same balance.
func (s *Service) RequestPayout(settings models.SettingsSnapshot, affiliateID uint, amount decimal.Decimal, method string) (*models.AffiliatePayout, error) {
	if !settings.AffiliatesEnabled {
		return nil, ErrFeatureDisabled
	}
	if !amount.IsPositive() {
		return nil, ErrBelowMinimum
	}
	if amount.LessThan(decimal.NewFromFloat(settings.MinPayoutAmount)) {
		return nil, ErrBelowMinimum
	}

	payout := &models.AffiliatePayout{
		AffiliateID: affiliateID,
		Amount:      amount,
		Method:      method,
		Status:      models.PayoutStatusPending,
		RequestedAt: time.Now(),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var aff models.Affiliate
		if err := lockForUpdate(tx).First(&aff, affiliateID).Error; err != nil {
			return fmt.Errorf("failed to load affiliate %d: %w", affiliateID, err)
		}
		if !aff.IsActive() {
			return ErrNotActive
		}
		if aff.WalletBalance.LessThan(amount) {
			return ErrInsufficientBalance
		}

		aff.WalletBalance = aff.WalletBalance.Sub(amount)
		if aff.WalletBalance.IsNegative() {
			aff.WalletBalance = decimal.Zero
		}
		if err := tx.Save(&aff).Error; err != nil {
			return err
		}

		return tx.Create(payout).Error
	})
	if err != nil {
		return nil, err
	}

	log.Infof("payout %d requested: affiliate %d, amount %s", payout.ID, affiliateID, amount.StringFixed(2))
	return payout, nil
}

// CompletePayout marks a pending payout completed. The wallet was already
// debited when the payout was requested.
func (s *Service) CompletePayout(payoutID uint) error {
	payout, err := s.repo.GetPayoutByID(payoutID)
	if err != nil {
		return fmt.Errorf("failed to load payout %d: %w", payoutID, err)
	}
	if payout.Status == models.PayoutStatusCompleted {
		return nil
	}
	now := time.Now()
	payout.Status = models.PayoutStatusCompleted
	payout.CompletedAt = &now
	return s.repo.UpdatePayout(payout)
}

// Stats aggregates an affiliate's ledger for the dashboard.
type Stats struct {
	WalletBalance   decimal.Decimal `json:"wallet_balance"`
	TotalEarned     decimal.Decimal `json:"total_earned"`
	PendingEarnings decimal.Decimal `json:"pending_earnings"`
	CommissionCount int64           `json:"commission_count"`
	TotalPaidOut    decimal.Decimal `json:"total_paid_out"`
}

// GetStats computes ledger totals for one affiliate.
func (s *Service) GetStats(affiliateID uint) (*Stats, error) {
	aff, err := s.repo.GetByID(affiliateID)
	if err != nil {
		return nil, fmt.Errorf("failed to load affiliate %d: %w", affiliateID, err)
	}

	stats := &Stats{
		WalletBalance:   aff.WalletBalance,
		TotalEarned:     decimal.Zero,
		PendingEarnings: decimal.Zero,
		TotalPaidOut:    decimal.Zero,
	}

	var sums []struct {
		Status string
		Total  decimal.Decimal
		Count  int64
	}
	err = s.db.Model(&models.AffiliateCommission{}).
		Select("status, COALESCE(SUM(commission_amount), 0) AS total, COUNT(*) AS count").
		Where("affiliate_id = ?", affiliateID).
		Group("status").
		Scan(&sums).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate commissions: %w", err)
	}
	for _, row := range sums {
		stats.CommissionCount += row.Count
		switch row.Status {
		case models.CommissionStatusApproved:
			stats.TotalEarned = row.Total
		case models.CommissionStatusPending:
			stats.PendingEarnings = row.Total
		}
	}

	var paid decimal.Decimal
	err = s.db.Model(&models.AffiliatePayout{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("affiliate_id = ?", affiliateID).
		Scan(&paid).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate payouts: %w", err)
	}
	stats.TotalPaidOut = paid

	return stats, nil
}
