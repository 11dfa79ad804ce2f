package repository

import (
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/models"
	"gorm.io/gorm"
)

// affiliateRepository implements the AffiliateRepository interface
type affiliateRepository struct {
	db *gorm.DB
}

// NewAffiliateRepository creates a new affiliate repository instance
func NewAffiliateRepository(db *gorm.DB) AffiliateRepository {
	return &affiliateRepository{db: db}
}

// Create creates a new affiliate record
func (r *affiliateRepository) Create(affiliate *models.Affiliate) error {
	return r.db.Create(affiliate).Error
}

// GetByID retrieves an affiliate by its ID
func (r *affiliateRepository) GetByID(id uint) (*models.Affiliate, error) {
	var affiliate models.Affiliate
	err := r.db.First(&affiliate, id).Error
	if err != nil {
		return nil, err
	}
	return &affiliate, nil
}

// GetByUserID retrieves the affiliate record of a user
func (r *affiliateRepository) GetByUserID(userID uint) (*models.Affiliate, error) {
	var affiliate models.Affiliate
	err := r.db.Where("user_id = ?", userID).First(&affiliate).Error
	if err != nil {
		return nil, err
	}
	return &affiliate, nil
}

// GetByCode retrieves an affiliate by its referral code
func (r *affiliateRepository) GetByCode(code string) (*models.Affiliate, error) {
	var affiliate models.Affiliate
	err := r.db.Where("affiliate_code = ?", code).First(&affiliate).Error
	if err != nil {
		return nil, err
	}
	return &affiliate, nil
}

// Update updates an affiliate record
func (r *affiliateRepository) Update(affiliate *models.Affiliate) error {
	return r.db.Save(affiliate).Error
}

// List retrieves affiliates, optionally narrowed by status
func (r *affiliateRepository) List(status string, offset, limit int) ([]models.Affiliate, error) {
	query := r.db.Model(&models.Affiliate{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var affiliates []models.Affiliate
	err := query.Offset(offset).Limit(limit).Order("created_at DESC").Find(&affiliates).Error
	return affiliates, err
}

// GetTierByID retrieves a commission tier by its ID
func (r *affiliateRepository) GetTierByID(id uint) (*models.AffiliateTier, error) {
	var tier models.AffiliateTier
	err := r.db.First(&tier, id).Error
	if err != nil {
		return nil, err
	}
	return &tier, nil
}

// GetDefaultTier retrieves the lowest active tier, used for new registrations
func (r *affiliateRepository) GetDefaultTier() (*models.AffiliateTier, error) {
	var tier models.AffiliateTier
	err := r.db.Where("is_active = ?", true).Order("base_commission_rate ASC, id ASC").First(&tier).Error
	if err != nil {
		return nil, err
	}
	return &tier, nil
}

// CreateTier creates a new commission tier
func (r *affiliateRepository) CreateTier(tier *models.AffiliateTier) error {
	return r.db.Create(tier).Error
}

// UpdateTier updates a commission tier
func (r *affiliateRepository) UpdateTier(tier *models.AffiliateTier) error {
	return r.db.Save(tier).Error
}

// ListTiers retrieves commission tiers
func (r *affiliateRepository) ListTiers(activeOnly bool) ([]models.AffiliateTier, error) {
	query := r.db.Model(&models.AffiliateTier{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var tiers []models.AffiliateTier
	err := query.Order("base_commission_rate ASC").Find(&tiers).Error
	return tiers, err
}

// CreateCommission inserts a commission event row
func (r *affiliateRepository) CreateCommission(commission *models.AffiliateCommission) error {
	return r.db.Create(commission).Error
}

// GetCommissionByID retrieves a commission row by its ID
func (r *affiliateRepository) GetCommissionByID(id uint) (*models.AffiliateCommission, error) {
	var commission models.AffiliateCommission
	err := r.db.First(&commission, id).Error
	if err != nil {
		return nil, err
	}
	return &commission, nil
}

// GetCommissionsByAffiliate retrieves commission rows for an affiliate
func (r *affiliateRepository) GetCommissionsByAffiliate(affiliateID uint, offset, limit int) ([]models.AffiliateCommission, error) {
	var commissions []models.AffiliateCommission
	err := r.db.Where("affiliate_id = ?", affiliateID).
		Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&commissions).Error
	return commissions, err
}

// CountCommissionsByAffiliate returns the number of commission rows for an affiliate
func (r *affiliateRepository) CountCommissionsByAffiliate(affiliateID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.AffiliateCommission{}).
		Where("affiliate_id = ?", affiliateID).
		Count(&count).Error
	return count, err
}

// UpdateCommission updates a commission row
func (r *affiliateRepository) UpdateCommission(commission *models.AffiliateCommission) error {
	return r.db.Save(commission).Error
}

// CreatePayout inserts a payout request row
func (r *affiliateRepository) CreatePayout(payout *models.AffiliatePayout) error {
	return r.db.Create(payout).Error
}

// GetPayoutByID retrieves a payout by its ID
func (r *affiliateRepository) GetPayoutByID(id uint) (*models.AffiliatePayout, error) {
	var payout models.AffiliatePayout
	err := r.db.First(&payout, id).Error
	if err != nil {
		return nil, err
	}
	return &payout, nil
}

// GetPayoutsByAffiliate retrieves payout rows for an affiliate
func (r *affiliateRepository) GetPayoutsByAffiliate(affiliateID uint, offset, limit int) ([]models.AffiliatePayout, error) {
	var payouts []models.AffiliatePayout
	err := r.db.Where("affiliate_id = ?", affiliateID).
		Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&payouts).Error
	return payouts, err
}

// UpdatePayout updates a payout row
func (r *affiliateRepository) UpdatePayout(payout *models.AffiliatePayout) error {
	return r.db.Save(payout).Error
}
