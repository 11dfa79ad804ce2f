package models

import "time"

// UserCapability grants a single capability string to a user beyond the
// defaults implied by their role. Capability names are defined in
// internal/pkg/capability.
type UserCapability struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index:idx_user_capability,unique,priority:1" json:"user_id"`
	Capability string    `gorm:"type:varchar(64);not null;index:idx_user_capability,unique,priority:2" json:"capability"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}
