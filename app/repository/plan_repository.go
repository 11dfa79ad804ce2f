package repository

import (
	"time"

	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/models"
	"gorm.io/gorm"
)

// planRepository implements the PlanRepository interface
type planRepository struct {
	db *gorm.DB
}

// NewPlanRepository creates a new plan repository instance
func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &planRepository{db: db}
}

// Create creates a new plan
func (r *planRepository) Create(plan *models.Plan) error {
	return r.db.Create(plan).Error
}

// GetByID retrieves a plan by its ID
func (r *planRepository) GetByID(id uint) (*models.Plan, error) {
	var plan models.Plan
	err := r.db.First(&plan, id).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// GetBySlug retrieves a plan by its slug
func (r *planRepository) GetBySlug(slug string) (*models.Plan, error) {
	var plan models.Plan
	err := r.db.Where("slug = ?", slug).First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// GetAll retrieves plans, optionally narrowed by scope and active flag
func (r *planRepository) GetAll(scope string, activeOnly bool) ([]models.Plan, error) {
	query := r.db.Model(&models.Plan{})
	if scope != "" {
		query = query.Where("scope = ?", scope)
	}
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var plans []models.Plan
	err := query.Order("price ASC").Find(&plans).Error
	return plans, err
}

// GetFreePlan retrieves the cheapest zero-price active plan for a scope
func (r *planRepository) GetFreePlan(scope string) (*models.Plan, error) {
	var plan models.Plan
	err := r.db.Where("scope = ? AND price = 0 AND is_active = ?", scope, true).
		Order("id ASC").
		First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// Update updates an existing plan
func (r *planRepository) Update(plan *models.Plan) error {
	return r.db.Save(plan).Error
}

// Delete soft-deletes a plan
func (r *planRepository) Delete(id uint) error {
	return r.db.Delete(&models.Plan{}, id).Error
}

// CreateSubscription inserts a new subscription row
func (r *planRepository) CreateSubscription(sub *models.UserSubscription) error {
	return r.db.Create(sub).Error
}

// GetSubscriptionByID retrieves a subscription by its ID
func (r *planRepository) GetSubscriptionByID(id uint) (*models.UserSubscription, error) {
	var sub models.UserSubscription
	err := r.db.First(&sub, id).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// GetActiveSubscriptionForListing retrieves the single active subscription of
// a listing, if any.
func (r *planRepository) GetActiveSubscriptionForListing(listingID uint) (*models.UserSubscription, error) {
	var sub models.UserSubscription
	err := r.db.Where("listing_id = ? AND status = ?", listingID, models.SubscriptionStatusActive).
		Order("created_at DESC").
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// GetSubscriptionsByUser retrieves all subscriptions belonging to a user
func (r *planRepository) GetSubscriptionsByUser(userID uint) ([]models.UserSubscription, error) {
	var subs []models.UserSubscription
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&subs).Error
	return subs, err
}

// UpdateSubscription persists changes to an existing subscription
func (r *planRepository) UpdateSubscription(sub *models.UserSubscription) error {
	return r.db.Save(sub).Error
}

// ExpireDueSubscriptions marks active subscriptions whose end date has passed
// as expired and returns the number of affected rows.
func (r *planRepository) ExpireDueSubscriptions(now time.Time) (int64, error) {
	result := r.db.Model(&models.UserSubscription{}).
		Where("status = ? AND end_date IS NOT NULL AND end_date <= ?", models.SubscriptionStatusActive, now).
		Update("status", models.SubscriptionStatusExpired)
	return result.RowsAffected, result.Error
}
