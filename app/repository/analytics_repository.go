package repository

import (
	"time"

	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/models"
	"gorm.io/gorm"
)

// analyticsRepository implements the AnalyticsRepository interface
type analyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository creates a new analytics repository instance
func NewAnalyticsRepository(db *gorm.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

// CreateView appends a view event
func (r *analyticsRepository) CreateView(view *models.AnalyticsView) error {
	return r.db.Create(view).Error
}

// CreateClick appends a click event
func (r *analyticsRepository) CreateClick(click *models.AnalyticsClick) error {
	return r.db.Create(click).Error
}

func applyRange(query *gorm.DB, from, to *time.Time) *gorm.DB {
	if from != nil {
		query = query.Where("created_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("created_at < ?", *to)
	}
	return query
}

// CountViews counts view events for an item within an optional time range
func (r *analyticsRepository) CountViews(itemID uint, itemType string, from, to *time.Time) (int64, error) {
	var count int64
	query := r.db.Model(&models.AnalyticsView{}).
		Where("item_id = ? AND item_type = ?", itemID, itemType)
	err := applyRange(query, from, to).Count(&count).Error
	return count, err
}

// CountClicks counts click events for an item within an optional time range
func (r *analyticsRepository) CountClicks(itemID uint, itemType string, from, to *time.Time) (int64, error) {
	var count int64
	query := r.db.Model(&models.AnalyticsClick{}).
		Where("item_id = ? AND item_type = ?", itemID, itemType)
	err := applyRange(query, from, to).Count(&count).Error
	return count, err
}

// ClickTargets returns per-target click counts for an item in a single
// grouped query.
func (r *analyticsRepository) ClickTargets(itemID uint, itemType string, from, to *time.Time) ([]models.TargetStats, error) {
	var stats []models.TargetStats
	query := r.db.Model(&models.AnalyticsClick{}).
		Select("click_target AS target, COUNT(*) AS count").
		Where("item_id = ? AND item_type = ?", itemID, itemType)
	err := applyRange(query, from, to).
		Group("click_target").
		Order("count DESC").
		Scan(&stats).Error
	return stats, err
}

// DailyViews returns per-day view counts for an item between two dates
func (r *analyticsRepository) DailyViews(itemID uint, itemType string, startDate, endDate time.Time) ([]models.DailyStats, error) {
	var stats []models.DailyStats
	err := r.db.Model(&models.AnalyticsView{}).
		Select("DATE(created_at) AS date, COUNT(*) AS count").
		Where("item_id = ? AND item_type = ? AND created_at >= ? AND created_at < ?", itemID, itemType, startDate, endDate).
		Group("DATE(created_at)").
		Order("date ASC").
		Scan(&stats).Error
	return stats, err
}
