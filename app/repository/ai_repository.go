package repository

import (
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/models"
	"gorm.io/gorm"
)

// aiRepository implements the AIRepository interface
type aiRepository struct {
	db *gorm.DB
}

// NewAIRepository creates a new AI interaction repository instance
func NewAIRepository(db *gorm.DB) AIRepository {
	return &aiRepository{db: db}
}

// CreateInteraction appends an AI audit row
func (r *aiRepository) CreateInteraction(interaction *models.AIInteraction) error {
	return r.db.Create(interaction).Error
}

// GetInteractionsByUser retrieves AI audit rows for a user
func (r *aiRepository) GetInteractionsByUser(userID uint, offset, limit int) ([]models.AIInteraction, error) {
	var interactions []models.AIInteraction
	err := r.db.Where("user_id = ?", userID).
		Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&interactions).Error
	return interactions, err
}

// CountInteractions returns the total number of AI audit rows
func (r *aiRepository) CountInteractions() (int64, error) {
	var count int64
	err := r.db.Model(&models.AIInteraction{}).Count(&count).Error
	return count, err
}
