package models

import "time"

const (
	SubscriptionStatusActive  = "active"
	SubscriptionStatusExpired = "expired"
	SubscriptionStatusPending = "pending"
)

const (
	PaymentStatusPaid    = "paid"
	PaymentStatusPending = "pending"
	PaymentStatusFree    = "free"
)

// UserSubscription links a listing (or app) to a plan for a period of time.
// At most one subscription per listing is supposed to be active; the plans
// service enforces this inside a transaction when assigning a new plan.
type UserSubscription struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	UserID        uint       `gorm:"index;not null" json:"user_id"`
	ListingID     uint       `gorm:"index;not null;index:idx_subscriptions_listing_status,priority:1" json:"listing_id"`
	PlanID        uint       `gorm:"index;not null" json:"plan_id"`
	StartDate     time.Time  `gorm:"not null" json:"start_date"`
	EndDate       *time.Time `gorm:"type:timestamp;default:null" json:"end_date,omitempty"` // nil = never expires
	Status        string     `gorm:"type:varchar(20);default:'pending';index:idx_subscriptions_listing_status,priority:2" json:"status"`
	PaymentStatus string     `gorm:"type:varchar(20);default:'pending'" json:"payment_status"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsCurrent reports whether the subscription entitles its listing right now:
// status must be active and the end date, when set, must lie in the future.
func (s *UserSubscription) IsCurrent(now time.Time) bool {
	if s.Status != SubscriptionStatusActive {
		return false
	}
	if s.EndDate != nil && !s.EndDate.After(now) {
		return false
	}
	return true
}
