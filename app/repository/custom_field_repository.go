package repository

import (
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/models"
	"gorm.io/gorm"
)

// customFieldRepository implements the CustomFieldRepository interface
type customFieldRepository struct {
	db *gorm.DB
}

// NewCustomFieldRepository creates a new custom field repository instance
func NewCustomFieldRepository(db *gorm.DB) CustomFieldRepository {
	return &customFieldRepository{db: db}
}

// Create creates a new custom field definition
func (r *customFieldRepository) Create(field *models.CustomField) error {
	return r.db.Create(field).Error
}

// GetByID retrieves a field definition by its ID
func (r *customFieldRepository) GetByID(id uint) (*models.CustomField, error) {
	var field models.CustomField
	err := r.db.First(&field, id).Error
	if err != nil {
		return nil, err
	}
	return &field, nil
}

// GetBySlug retrieves a field definition by its slug
func (r *customFieldRepository) GetBySlug(slug string) (*models.CustomField, error) {
	var field models.CustomField
	err := r.db.Where("slug = ?", slug).First(&field).Error
	if err != nil {
		return nil, err
	}
	return &field, nil
}

// GetAll retrieves field definitions, optionally narrowed by target and active flag
func (r *customFieldRepository) GetAll(appliesTo string, activeOnly bool) ([]models.CustomField, error) {
	query := r.db.Model(&models.CustomField{})
	if appliesTo != "" {
		query = query.Where("applies_to = ?", appliesTo)
	}
	if activeOnly {
		query = query.Where("active = ?", true)
	}

	var fields []models.CustomField
	err := query.Order("id ASC").Find(&fields).Error
	return fields, err
}

// Update updates a field definition
func (r *customFieldRepository) Update(field *models.CustomField) error {
	return r.db.Save(field).Error
}

// Delete soft-deletes a field definition
func (r *customFieldRepository) Delete(id uint) error {
	return r.db.Delete(&models.CustomField{}, id).Error
}
