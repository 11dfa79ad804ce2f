package models

import "time"

const (
	ItemTypeListing = "listing"
	ItemTypeApp     = "app"
)

const (
	ClickTargetPhone   = "phone"
	ClickTargetWebsite = "website"
	ClickTargetEmail   = "email"
	ClickTargetAddress = "address"
	ClickTargetProduct = "product"
)

// AnalyticsView is one recorded view event. Append-only.
type AnalyticsView struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ItemID    uint      `gorm:"not null;index:idx_views_item,priority:1" json:"item_id"`
	ItemType  string    `gorm:"type:varchar(20);not null;index:idx_views_item,priority:2" json:"item_type"`
	IP        string    `gorm:"type:varchar(45)" json:"-"`
	UserID    uint      `gorm:"default:0" json:"user_id"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// AnalyticsClick is one recorded click event with its target. Append-only.
type AnalyticsClick struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ItemID      uint      `gorm:"not null;index:idx_clicks_item,priority:1" json:"item_id"`
	ItemType    string    `gorm:"type:varchar(20);not null;index:idx_clicks_item,priority:2" json:"item_type"`
	ClickTarget string    `gorm:"type:varchar(30);not null;index" json:"click_target"`
	IP          string    `gorm:"type:varchar(45)" json:"-"`
	UserID      uint      `gorm:"default:0" json:"user_id"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// DailyStats represents aggregated counts for a single day
type DailyStats struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// TargetStats represents aggregated click counts for a single target
type TargetStats struct {
	Target string `json:"target"`
	Count  int64  `json:"count"`
}
