package models

import "time"

const (
	AIKindContent     = "content"
	AIKindSEO         = "seo"
	AIKindDescription = "description"
)

// AIInteraction is one audited call through the AI gateway. Append-only.
type AIInteraction struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Kind      string    `gorm:"type:varchar(30);not null" json:"kind"`
	Prompt    string    `gorm:"type:text;not null" json:"prompt"`
	Response  string    `gorm:"type:longtext" json:"response"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
