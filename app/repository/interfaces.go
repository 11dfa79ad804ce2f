package repository

import (
	"time"

	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByActivationToken(token string) (*models.User, error)
	GetByAPIKeyHash(hash string) (*models.User, *models.UserSettings, error)
	Update(user *models.User) error
	Delete(id uint) error
	List(offset, limit int) ([]models.User, error)
	Count() (int64, error)
	GetCapabilities(userID uint) ([]string, error)
	GrantCapability(userID uint, capability string) error
	RevokeCapability(userID uint, capability string) error
}

// ListingRepository defines the interface for business listing operations
type ListingRepository interface {
	Create(listing *models.BusinessListing) error
	GetByID(id uint) (*models.BusinessListing, error)
	GetBySlug(slug string) (*models.BusinessListing, error)
	GetByUserID(userID uint, offset, limit int) ([]models.BusinessListing, error)
	Update(listing *models.BusinessListing) error
	UpdateStatus(id uint, status string) error
	Delete(id uint) error
	List(filter ListingFilter) ([]models.BusinessListing, error)
	Count() (int64, error)
	CountByStatus(status string) (int64, error)
	AddImage(image *models.ListingImage) error
	GetImages(listingID uint) ([]models.ListingImage, error)
	GetImageByID(imageID uint) (*models.ListingImage, error)
	DeleteImage(imageID uint) error
	CreateClaim(claim *models.ListingClaim) error
	GetClaimByID(id uint) (*models.ListingClaim, error)
	GetPendingClaims(offset, limit int) ([]models.ListingClaim, error)
	UpdateClaim(claim *models.ListingClaim) error
}

// ListingFilter narrows List results; zero values mean "no filter".
type ListingFilter struct {
	Status   string
	UserID   uint
	Category string
	City     string
	Search   string
	Offset   int
	Limit    int
}

// PlanRepository defines the interface for plan and subscription operations
type PlanRepository interface {
	Create(plan *models.Plan) error
	GetByID(id uint) (*models.Plan, error)
	GetBySlug(slug string) (*models.Plan, error)
	GetAll(scope string, activeOnly bool) ([]models.Plan, error)
	GetFreePlan(scope string) (*models.Plan, error)
	Update(plan *models.Plan) error
	Delete(id uint) error

	CreateSubscription(sub *models.UserSubscription) error
	GetSubscriptionByID(id uint) (*models.UserSubscription, error)
	GetActiveSubscriptionForListing(listingID uint) (*models.UserSubscription, error)
	GetSubscriptionsByUser(userID uint) ([]models.UserSubscription, error)
	UpdateSubscription(sub *models.UserSubscription) error
	ExpireDueSubscriptions(now time.Time) (int64, error)
}

// AppRepository defines the interface for PWA app operations
type AppRepository interface {
	Create(app *models.PwaApp) error
	GetByID(id uint) (*models.PwaApp, error)
	GetByUUID(uuid string) (*models.PwaApp, error)
	GetByUserID(userID uint, offset, limit int) ([]models.PwaApp, error)
	Update(app *models.PwaApp) error
	Delete(id uint) error
	List(offset, limit int) ([]models.PwaApp, error)
	Count() (int64, error)
	CountByStatus(status string) (int64, error)
}

// AffiliateRepository defines the interface for affiliate ledger operations
type AffiliateRepository interface {
	Create(affiliate *models.Affiliate) error
	GetByID(id uint) (*models.Affiliate, error)
	GetByUserID(userID uint) (*models.Affiliate, error)
	GetByCode(code string) (*models.Affiliate, error)
	Update(affiliate *models.Affiliate) error
	List(status string, offset, limit int) ([]models.Affiliate, error)

	GetTierByID(id uint) (*models.AffiliateTier, error)
	GetDefaultTier() (*models.AffiliateTier, error)
	CreateTier(tier *models.AffiliateTier) error
	UpdateTier(tier *models.AffiliateTier) error
	ListTiers(activeOnly bool) ([]models.AffiliateTier, error)

	CreateCommission(commission *models.AffiliateCommission) error
	GetCommissionByID(id uint) (*models.AffiliateCommission, error)
	GetCommissionsByAffiliate(affiliateID uint, offset, limit int) ([]models.AffiliateCommission, error)
	CountCommissionsByAffiliate(affiliateID uint) (int64, error)
	UpdateCommission(commission *models.AffiliateCommission) error

	CreatePayout(payout *models.AffiliatePayout) error
	GetPayoutByID(id uint) (*models.AffiliatePayout, error)
	GetPayoutsByAffiliate(affiliateID uint, offset, limit int) ([]models.AffiliatePayout, error)
	UpdatePayout(payout *models.AffiliatePayout) error
}

// AnalyticsRepository defines the interface for tracking event operations
type AnalyticsRepository interface {
	CreateView(view *models.AnalyticsView) error
	CreateClick(click *models.AnalyticsClick) error
	CountViews(itemID uint, itemType string, from, to *time.Time) (int64, error)
	CountClicks(itemID uint, itemType string, from, to *time.Time) (int64, error)
	ClickTargets(itemID uint, itemType string, from, to *time.Time) ([]models.TargetStats, error)
	DailyViews(itemID uint, itemType string, startDate, endDate time.Time) ([]models.DailyStats, error)
}

// AIRepository defines the interface for AI interaction audit records
type AIRepository interface {
	CreateInteraction(interaction *models.AIInteraction) error
	GetInteractionsByUser(userID uint, offset, limit int) ([]models.AIInteraction, error)
	CountInteractions() (int64, error)
}

// CustomFieldRepository defines the interface for custom field definitions
type CustomFieldRepository interface {
	Create(field *models.CustomField) error
	GetByID(id uint) (*models.CustomField, error)
	GetBySlug(slug string) (*models.CustomField, error)
	GetAll(appliesTo string, activeOnly bool) ([]models.CustomField, error)
	Update(field *models.CustomField) error
	Delete(id uint) error
}

// SettingRepository defines the interface for setting-related database operations
type SettingRepository interface {
	Get() (*models.AppSettings, error)
	Save(settings *models.AppSettings) error
	GetValue(key string) (string, error)
	SetValue(key, value string) error
}

// Repositories struct holds all repository instances
type Repositories struct {
	User        UserRepository
	Listing     ListingRepository
	Plan        PlanRepository
	App         AppRepository
	Affiliate   AffiliateRepository
	Analytics   AnalyticsRepository
	AI          AIRepository
	CustomField CustomFieldRepository
	Setting     SettingRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:        NewUserRepository(db),
		Listing:     NewListingRepository(db),
		Plan:        NewPlanRepository(db),
		App:         NewAppRepository(db),
		Affiliate:   NewAffiliateRepository(db),
		Analytics:   NewAnalyticsRepository(db),
		AI:          NewAIRepository(db),
		CustomField: NewCustomFieldRepository(db),
		Setting:     NewSettingRepository(db),
	}
}
