package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PayoutStatusPending   = "pending"
	PayoutStatusCompleted = "completed"
)

const (
	PayoutMethodPaypal = "paypal"
	PayoutMethodBank   = "bank_transfer"
)

// AffiliatePayout is a withdrawal request. Requesting a payout debits the
// wallet immediately; there is no escrow state.
type AffiliatePayout struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	AffiliateID uint            `gorm:"index;not null" json:"affiliate_id"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Method      string          `gorm:"type:varchar(30);not null" json:"method"`
	Status      string          `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	RequestedAt time.Time       `gorm:"not null" json:"requested_at"`
	CompletedAt *time.Time      `gorm:"type:timestamp;default:null" json:"completed_at,omitempty"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}
