package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	CommissionStatusPending  = "pending"
	CommissionStatusApproved = "approved"
	CommissionStatusRejected = "rejected"
)

const (
	ReferralTypeSignup       = "signup"
	ReferralTypeSubscription = "subscription"
	ReferralTypeAppPurchase  = "app_purchase"
)

// AffiliateCommission is one commission event. MLM rows are synthesized for
// the referring affiliate's own referrer, one level up only, and carry IsMLM.
type AffiliateCommission struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	AffiliateID      uint            `gorm:"index;not null" json:"affiliate_id"`
	ReferredUserID   uint            `gorm:"index;not null" json:"referred_user_id"`
	ReferralType     string          `gorm:"type:varchar(30);not null" json:"referral_type"`
	ReferralAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"referral_amount"`
	CommissionRate   decimal.Decimal `gorm:"type:decimal(6,2);not null" json:"commission_rate"`
	CommissionAmount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"commission_amount"`
	IsMLM            bool            `gorm:"default:false" json:"is_mlm"`
	Status           string          `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	DecidedAt        *time.Time      `gorm:"type:timestamp;default:null" json:"decided_at,omitempty"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}
