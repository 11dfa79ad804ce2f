package repository

import (
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/models"
	"gorm.io/gorm"
)

// appRepository implements the AppRepository interface
type appRepository struct {
	db *gorm.DB
}

// NewAppRepository creates a new PWA app repository instance
func NewAppRepository(db *gorm.DB) AppRepository {
	return &appRepository{db: db}
}

// Create creates a new PWA app
func (r *appRepository) Create(app *models.PwaApp) error {
	return r.db.Create(app).Error
}

// GetByID retrieves an app by its internal ID
func (r *appRepository) GetByID(id uint) (*models.PwaApp, error) {
	var app models.PwaApp
	err := r.db.First(&app, id).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// GetByUUID retrieves an app by its external UUID
func (r *appRepository) GetByUUID(uuid string) (*models.PwaApp, error) {
	var app models.PwaApp
	err := r.db.Where("app_uuid = ?", uuid).First(&app).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// GetByUserID retrieves apps owned by a user
func (r *appRepository) GetByUserID(userID uint, offset, limit int) ([]models.PwaApp, error) {
	var apps []models.PwaApp
	err := r.db.Where("user_id = ?", userID).
		Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&apps).Error
	return apps, err
}

// Update updates an existing app
func (r *appRepository) Update(app *models.PwaApp) error {
	return r.db.Save(app).Error
}

// Delete soft-deletes an app
func (r *appRepository) Delete(id uint) error {
	return r.db.Delete(&models.PwaApp{}, id).Error
}

// List retrieves a paginated list of apps
func (r *appRepository) List(offset, limit int) ([]models.PwaApp, error) {
	var apps []models.PwaApp
	err := r.db.Offset(offset).Limit(limit).Order("created_at DESC").Find(&apps).Error
	return apps, err
}

// Count returns the total number of apps
func (r *appRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.PwaApp{}).Count(&count).Error
	return count, err
}

// CountByStatus returns the number of apps with the given status
func (r *appRepository) CountByStatus(status string) (int64, error) {
	var count int64
	err := r.db.Model(&models.PwaApp{}).Where("app_status = ?", status).Count(&count).Error
	return count, err
}
