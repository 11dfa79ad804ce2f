package repository

import (
	"strings"

	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/models"
	"gorm.io/gorm"
)

// listingRepository implements the ListingRepository interface
type listingRepository struct {
	db *gorm.DB
}

// NewListingRepository creates a new listing repository instance
func NewListingRepository(db *gorm.DB) ListingRepository {
	return &listingRepository{db: db}
}

// Create creates a new business listing
func (r *listingRepository) Create(listing *models.BusinessListing) error {
	return r.db.Create(listing).Error
}

// GetByID retrieves a listing by its ID
func (r *listingRepository) GetByID(id uint) (*models.BusinessListing, error) {
	var listing models.BusinessListing
	err := r.db.First(&listing, id).Error
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// GetBySlug retrieves a listing by its URL slug
func (r *listingRepository) GetBySlug(slug string) (*models.BusinessListing, error) {
	var listing models.BusinessListing
	err := r.db.Where("slug = ?", slug).First(&listing).Error
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// GetByUserID retrieves listings owned by a user
func (r *listingRepository) GetByUserID(userID uint, offset, limit int) ([]models.BusinessListing, error) {
	var listings []models.BusinessListing
	err := r.db.Where("user_id = ?", userID).
		Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&listings).Error
	return listings, err
}

// Update updates an existing listing
func (r *listingRepository) Update(listing *models.BusinessListing) error {
	return r.db.Save(listing).Error
}

// UpdateStatus changes only the status column of a listing
func (r *listingRepository) UpdateStatus(id uint, status string) error {
	return r.db.Model(&models.BusinessListing{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// Delete soft-deletes a listing
func (r *listingRepository) Delete(id uint) error {
	return r.db.Delete(&models.BusinessListing{}, id).Error
}

// List retrieves listings matching the filter
func (r *listingRepository) List(filter ListingFilter) ([]models.BusinessListing, error) {
	query := r.db.Model(&models.BusinessListing{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.City != "" {
		query = query.Where("city = ?", filter.City)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + s + "%"
		query = query.Where("name LIKE ? OR description LIKE ?", like, like)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var listings []models.BusinessListing
	err := query.Offset(filter.Offset).Order("created_at DESC").Find(&listings).Error
	return listings, err
}

// Count returns the total number of listings
func (r *listingRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.BusinessListing{}).Count(&count).Error
	return count, err
}

// CountByStatus returns the number of listings with the given status
func (r *listingRepository) CountByStatus(status string) (int64, error) {
	var count int64
	err := r.db.Model(&models.BusinessListing{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

// AddImage attaches a gallery image to a listing
func (r *listingRepository) AddImage(image *models.ListingImage) error {
	return r.db.Create(image).Error
}

// GetImages retrieves all gallery images for a listing
func (r *listingRepository) GetImages(listingID uint) ([]models.ListingImage, error) {
	var images []models.ListingImage
	err := r.db.Where("listing_id = ?", listingID).Order("created_at ASC").Find(&images).Error
	return images, err
}

// GetImageByID retrieves a single gallery image
func (r *listingRepository) GetImageByID(imageID uint) (*models.ListingImage, error) {
	var image models.ListingImage
	if err := r.db.First(&image, imageID).Error; err != nil {
		return nil, err
	}
	return &image, nil
}

// DeleteImage soft-deletes a gallery image
func (r *listingRepository) DeleteImage(imageID uint) error {
	return r.db.Delete(&models.ListingImage{}, imageID).Error
}

// CreateClaim records a new listing claim request
func (r *listingRepository) CreateClaim(claim *models.ListingClaim) error {
	return r.db.Create(claim).Error
}

// GetClaimByID retrieves a claim by its ID
func (r *listingRepository) GetClaimByID(id uint) (*models.ListingClaim, error) {
	var claim models.ListingClaim
	err := r.db.First(&claim, id).Error
	if err != nil {
		return nil, err
	}
	return &claim, nil
}

// GetPendingClaims retrieves claims awaiting a decision
func (r *listingRepository) GetPendingClaims(offset, limit int) ([]models.ListingClaim, error) {
	var claims []models.ListingClaim
	err := r.db.Where("status = ?", models.ClaimStatusPending).
		Offset(offset).Limit(limit).
		Order("created_at ASC").
		Find(&claims).Error
	return claims, err
}

// UpdateClaim updates a claim record
func (r *listingRepository) UpdateClaim(claim *models.ListingClaim) error {
	return r.db.Save(claim).Error
}
