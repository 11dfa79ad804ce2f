package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	AffiliateStatusPending = "pending"
	AffiliateStatusActive  = "active"
)

// Affiliate is one registered member of the referral program. WalletBalance
// is a denormalized running total; all mutations go through the affiliate
// ledger service which locks the row inside a transaction.
type Affiliate struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	UserID        uint            `gorm:"uniqueIndex;not null" json:"user_id"`
	AffiliateCode string          `gorm:"type:varchar(32);uniqueIndex;not null" json:"affiliate_code"`
	PaymentEmail  string          `gorm:"type:varchar(200)" json:"payment_email" validate:"required,email"`
	Status        string          `gorm:"type:varchar(20);default:'pending';index" json:"status" validate:"oneof=pending active"`
	WalletBalance decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"wallet_balance"`
	CurrentTierID uint            `gorm:"default:0" json:"current_tier_id"`
	ReferredBy    uint            `gorm:"default:0;index" json:"referred_by"` // parent affiliate id, 0 = none
	ApprovedAt    *time.Time      `gorm:"type:timestamp;default:null" json:"approved_at,omitempty"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (a *Affiliate) Validate() error {
	v := validator.New()
	return v.Struct(a)
}

// IsActive reports whether the affiliate may earn commissions.
func (a *Affiliate) IsActive() bool {
	return a.Status == AffiliateStatusActive
}

// AffiliateTier is a named commission-rate bracket. BaseCommissionRate and
// MLMCommissionRate are percentages applied to a referral amount.
type AffiliateTier struct {
	ID                 uint            `gorm:"primaryKey" json:"id"`
	Name               string          `gorm:"type:varchar(100);not null" json:"name" validate:"required,min=2,max=100"`
	BaseCommissionRate decimal.Decimal `gorm:"type:decimal(6,2);default:0" json:"base_commission_rate"`
	MLMCommissionRate  decimal.Decimal `gorm:"type:decimal(6,2);default:0" json:"mlm_commission_rate"`
	IsActive           bool            `gorm:"default:true;index" json:"is_active"`
	CreatedAt          time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (t *AffiliateTier) Validate() error {
	v := validator.New()
	return v.Struct(t)
}
