package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

const (
	AppStatusDraft     = "draft"
	AppStatusPublished = "published"
)

const (
	DisplayStandalone = "standalone"
	DisplayFullscreen = "fullscreen"
	DisplayMinimalUI  = "minimal-ui"
	DisplayBrowser    = "browser"
)

// AppIcon is one stored icon variant referenced by the generated manifest.
type AppIcon struct {
	Path    string `json:"path"`
	Sizes   string `json:"sizes"` // e.g. "192x192"
	Type    string `json:"type"`  // image/png or image/webp
	Purpose string `json:"purpose,omitempty"`
}

// PwaApp holds the manifest-level configuration of a generated micro-site app.
// The AppUUID is the external identifier used in public manifest/worker URLs.
type PwaApp struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	AppUUID         string         `gorm:"type:varchar(36);uniqueIndex;not null" json:"app_uuid"`
	UserID          uint           `gorm:"index;not null" json:"user_id"`
	ListingID       uint           `gorm:"index;default:0" json:"listing_id"` // 0 when the app is not bound to a listing
	Name            string         `gorm:"type:varchar(100);not null" json:"name" validate:"required,min=2,max=100"`
	ShortName       string         `gorm:"type:varchar(30)" json:"short_name" validate:"max=30"`
	Description     string         `gorm:"type:text" json:"description" validate:"max=2000"`
	StartURL        string         `gorm:"type:varchar(255);default:'/'" json:"start_url" validate:"max=255"`
	ThemeColor      string         `gorm:"type:varchar(7);default:'#ffffff'" json:"theme_color" validate:"omitempty,hexcolor"`
	BackgroundColor string         `gorm:"type:varchar(7);default:'#ffffff'" json:"background_color" validate:"omitempty,hexcolor"`
	Display         string         `gorm:"type:varchar(20);default:'standalone'" json:"display" validate:"oneof=standalone fullscreen minimal-ui browser"`
	CurrentPlanID   uint           `gorm:"default:0" json:"current_plan_id"`
	Icons           []AppIcon      `gorm:"serializer:json" json:"icons"`
	CacheVersion    int            `gorm:"default:1" json:"cache_version"`
	AppStatus       string         `gorm:"type:varchar(20);default:'draft';index" json:"app_status" validate:"oneof=draft published"`
	PublishedAt     *time.Time     `gorm:"type:timestamp;default:null" json:"published_at,omitempty"`
	ViewCount       int64          `gorm:"default:0" json:"view_count"`
	ClickCount      int64          `gorm:"default:0" json:"click_count"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (a *PwaApp) Validate() error {
	v := validator.New()
	return v.Struct(a)
}

// IsPublished reports whether the app is publicly served.
func (a *PwaApp) IsPublished() bool {
	return a.AppStatus == AppStatusPublished
}
