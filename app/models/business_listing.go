package models

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

const (
	ListingStatusPending  = "pending"
	ListingStatusActive   = "active"
	ListingStatusInactive = "inactive"
	ListingStatusRejected = "rejected"
)

// DayHours describes opening hours for one weekday. Closed days carry empty strings.
type DayHours struct {
	Open  string `json:"open" validate:"omitempty,len=5"`
	Close string `json:"close" validate:"omitempty,len=5"`
}

// BusinessHours holds per-weekday opening hours.
type BusinessHours struct {
	Monday    DayHours `json:"monday"`
	Tuesday   DayHours `json:"tuesday"`
	Wednesday DayHours `json:"wednesday"`
	Thursday  DayHours `json:"thursday"`
	Friday    DayHours `json:"friday"`
	Saturday  DayHours `json:"saturday"`
	Sunday    DayHours `json:"sunday"`
}

// SocialLinks holds the listing's social profiles.
type SocialLinks struct {
	Facebook  string `json:"facebook" validate:"omitempty,url"`
	Instagram string `json:"instagram" validate:"omitempty,url"`
	Twitter   string `json:"twitter" validate:"omitempty,url"`
	LinkedIn  string `json:"linkedin" validate:"omitempty,url"`
	YouTube   string `json:"youtube" validate:"omitempty,url"`
}

// BusinessListing is a single directory entry. Status transitions are
// admin-driven: pending -> active/rejected, active <-> inactive.
type BusinessListing struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	UserID        uint           `gorm:"index" json:"user_id"` // 0 for unclaimed imports
	Name          string         `gorm:"type:varchar(200);not null" json:"name" validate:"required,min=2,max=200"`
	Slug          string         `gorm:"type:varchar(220);uniqueIndex;not null" json:"slug"`
	Description   string         `gorm:"type:text" json:"description" validate:"max=5000"`
	Category      string         `gorm:"type:varchar(100);index" json:"category" validate:"max=100"`
	Phone         string         `gorm:"type:varchar(30)" json:"phone" validate:"max=30"`
	Email         string         `gorm:"type:varchar(200)" json:"email" validate:"omitempty,email"`
	Website       string         `gorm:"type:varchar(255)" json:"website" validate:"omitempty,url"`
	Address       string         `gorm:"type:varchar(500)" json:"address" validate:"max=500"`
	City          string         `gorm:"type:varchar(100);index" json:"city" validate:"max=100"`
	Country       string         `gorm:"type:varchar(100)" json:"country" validate:"max=100"`
	Hours         *BusinessHours `gorm:"serializer:json" json:"hours,omitempty"`
	Social        *SocialLinks   `gorm:"serializer:json" json:"social,omitempty"`
	Status        string         `gorm:"type:varchar(20);default:'pending';index" json:"status" validate:"oneof=pending active inactive rejected"`
	CurrentPlanID uint           `gorm:"default:0" json:"current_plan_id"`
	IsClaimed     bool           `gorm:"default:false" json:"is_claimed"`
	ViewCount     int64          `gorm:"default:0" json:"view_count"`
	ClickCount    int64          `gorm:"default:0" json:"click_count"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (l *BusinessListing) Validate() error {
	v := validator.New()
	return v.Struct(l)
}

// Slugify builds a URL slug from a listing name.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	lastDash := true
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

// ListingImage is a gallery image attached to a listing.
type ListingImage struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	ListingID   uint           `gorm:"index;not null" json:"listing_id"`
	UUID        string         `gorm:"type:varchar(36);uniqueIndex" json:"uuid"`
	FileName    string         `gorm:"type:varchar(255);not null" json:"file_name"`
	FilePath    string         `gorm:"type:varchar(500);not null" json:"file_path"`
	FileSize    int64          `json:"file_size"`
	ContentType string         `gorm:"type:varchar(100)" json:"content_type"`
	Width       int            `json:"width"`
	Height      int            `json:"height"`
	IsLogo      bool           `gorm:"default:false" json:"is_logo"`
	HasWebP     bool           `gorm:"default:false" json:"has_webp"`
	TakenAt     *time.Time     `json:"taken_at,omitempty"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
