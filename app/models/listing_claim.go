package models

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

const (
	ClaimStatusPending  = "pending"
	ClaimStatusApproved = "approved"
	ClaimStatusRejected = "rejected"
)

// ListingClaim records a user's request to take over an unclaimed listing.
type ListingClaim struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	ListingID uint       `gorm:"index;not null" json:"listing_id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	Token     string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"-"`
	Evidence  string     `gorm:"type:text" json:"evidence"`
	Status    string     `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	DecidedAt *time.Time `gorm:"type:timestamp;default:null" json:"decided_at,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// GenerateClaimToken creates a random verification token for the claim.
func (c *ListingClaim) GenerateClaimToken() error {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return err
	}
	c.Token = hex.EncodeToString(b)
	return nil
}
