package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	PlanScopeListing = "listing"
	PlanScopeApp     = "app"
)

// Plan is a purchasable feature bundle for a listing or a PWA app.
// Features holds the plan's declared feature names; whether a feature is
// actually on for a listing additionally depends on the global settings
// gates (see internal/pkg/entitlements).
type Plan struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	Name         string          `gorm:"type:varchar(100);not null" json:"name" validate:"required,min=2,max=100"`
	Slug         string          `gorm:"type:varchar(120);uniqueIndex;not null" json:"slug"`
	Description  string          `gorm:"type:text" json:"description" validate:"max=2000"`
	Price        decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"price"`
	DurationDays int             `gorm:"default:0" json:"duration_days" validate:"gte=0"` // 0 = never expires
	Features     []string        `gorm:"serializer:json" json:"features"`
	Scope        string          `gorm:"type:varchar(20);default:'listing';index" json:"scope" validate:"oneof=listing app"`
	IsActive     bool            `gorm:"default:true;index" json:"is_active"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (p *Plan) Validate() error {
	v := validator.New()
	return v.Struct(p)
}

// IsFree reports whether the plan costs nothing.
func (p *Plan) IsFree() bool {
	return p.Price.IsZero()
}
