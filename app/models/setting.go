package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// Setting represents a system setting
type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"column:setting_key;size:255;not null;uniqueIndex" json:"key" validate:"required,min=1,max=255"`
	Value     string    `gorm:"type:text" json:"value"`
	Type      string    `gorm:"size:50;not null" json:"type" validate:"required"` // string, boolean, integer, float
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AppSettings represents the application settings structure.
// Every feature of the platform is gated behind one of these flags.
type AppSettings struct {
	SiteTitle            string  `json:"site_title" validate:"required,min=1,max=255"`
	SiteDescription      string  `json:"site_description" validate:"max=500"`
	ListingsEnabled      bool    `json:"listings_enabled"`
	AppBuilderEnabled    bool    `json:"app_builder_enabled"`
	SubscriptionsEnabled bool    `json:"subscriptions_enabled"`
	AffiliatesEnabled    bool    `json:"affiliates_enabled"`
	AnalyticsEnabled     bool    `json:"analytics_enabled"`
	AIEnabled            bool    `json:"ai_enabled"`
	ClaimsEnabled        bool    `json:"claims_enabled"`
	CustomFieldsEnabled  bool    `json:"custom_fields_enabled"`
	WebPIconsEnabled     bool    `json:"webp_icons_enabled"`
	AIEndpoint           string  `json:"ai_endpoint" validate:"omitempty,url,max=500"`
	AIAPIKey             string  `json:"ai_api_key" validate:"max=255"`
	MinPayoutAmount      float64 `json:"min_payout_amount" validate:"gte=0"`
	mu                   sync.RWMutex
}

// Global settings instance
var (
	appSettings *AppSettings
	settingsMu  sync.RWMutex
)

// GetAppSettings returns the current application settings
func GetAppSettings() *AppSettings {
	settingsMu.RLock()
	defer settingsMu.RUnlock()
	return appSettings
}

// LoadSettings loads settings from database into memory
func LoadSettings(db *gorm.DB) error {
	settingsMu.Lock()
	defer settingsMu.Unlock()

	// Initialize with defaults
	appSettings = &AppSettings{
		SiteTitle:            "Laburda",
		SiteDescription:      "PWA micro-site and business directory platform",
		ListingsEnabled:      true,
		AppBuilderEnabled:    true,
		SubscriptionsEnabled: true,
		AffiliatesEnabled:    false,
		AnalyticsEnabled:     true,
		AIEnabled:            false,
		ClaimsEnabled:        true,
		CustomFieldsEnabled:  true,
		WebPIconsEnabled:     true,
		MinPayoutAmount:      10,
	}

	// Load settings from database
	var settings []Setting
	if err := db.Find(&settings).Error; err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	// Apply loaded settings
	for _, setting := range settings {
		switch setting.Key {
		case "site_title":
			appSettings.SiteTitle = setting.Value
		case "site_description":
			appSettings.SiteDescription = setting.Value
		case "listings_enabled":
			appSettings.ListingsEnabled = setting.Value == "true"
		case "app_builder_enabled":
			appSettings.AppBuilderEnabled = setting.Value == "true"
		case "subscriptions_enabled":
			appSettings.SubscriptionsEnabled = setting.Value == "true"
		case "affiliates_enabled":
			appSettings.AffiliatesEnabled = setting.Value == "true"
		case "analytics_enabled":
			appSettings.AnalyticsEnabled = setting.Value == "true"
		case "ai_enabled":
			appSettings.AIEnabled = setting.Value == "true"
		case "claims_enabled":
			appSettings.ClaimsEnabled = setting.Value == "true"
		case "custom_fields_enabled":
			appSettings.CustomFieldsEnabled = setting.Value == "true"
		case "webp_icons_enabled":
			appSettings.WebPIconsEnabled = setting.Value == "true"
		case "ai_endpoint":
			appSettings.AIEndpoint = setting.Value
		case "ai_api_key":
			appSettings.AIAPIKey = setting.Value
		case "min_payout_amount":
			if v, err := strconv.ParseFloat(setting.Value, 64); err == nil {
				appSettings.MinPayoutAmount = v
			}
		}
	}

	return nil
}

// SaveSettings saves current settings to database
func SaveSettings(db *gorm.DB, settings *AppSettings) error {
	settingsMu.Lock()
	defer settingsMu.Unlock()

	// Validate settings
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	// Convert settings to database format
	settingsMap := map[string]interface{}{
		"site_title":            settings.SiteTitle,
		"site_description":      settings.SiteDescription,
		"listings_enabled":      fmt.Sprintf("%t", settings.ListingsEnabled),
		"app_builder_enabled":   fmt.Sprintf("%t", settings.AppBuilderEnabled),
		"subscriptions_enabled": fmt.Sprintf("%t", settings.SubscriptionsEnabled),
		"affiliates_enabled":    fmt.Sprintf("%t", settings.AffiliatesEnabled),
		"analytics_enabled":     fmt.Sprintf("%t", settings.AnalyticsEnabled),
		"ai_enabled":            fmt.Sprintf("%t", settings.AIEnabled),
		"claims_enabled":        fmt.Sprintf("%t", settings.ClaimsEnabled),
		"custom_fields_enabled": fmt.Sprintf("%t", settings.CustomFieldsEnabled),
		"webp_icons_enabled":    fmt.Sprintf("%t", settings.WebPIconsEnabled),
		"ai_endpoint":           settings.AIEndpoint,
		"ai_api_key":            settings.AIAPIKey,
		"min_payout_amount":     strconv.FormatFloat(settings.MinPayoutAmount, 'f', -1, 64),
	}

	// Save each setting
	for key, value := range settingsMap {
		var setting Setting
		result := db.Where("setting_key = ?", key).First(&setting)

		if result.Error != nil {
			if result.Error == gorm.ErrRecordNotFound {
				// Create new setting
				setting = Setting{
					Key:   key,
					Value: fmt.Sprintf("%v", value),
					Type:  getSettingType(key),
				}
				if err := db.Create(&setting).Error; err != nil {
					return fmt.Errorf("failed to create setting %s: %w", key, err)
				}
			} else {
				return fmt.Errorf("failed to query setting %s: %w", key, result.Error)
			}
		} else {
			// Update existing setting
			setting.Value = fmt.Sprintf("%v", value)
			if err := db.Save(&setting).Error; err != nil {
				return fmt.Errorf("failed to update setting %s: %w", key, err)
			}
		}
	}

	// Update global settings
	appSettings = settings
	return nil
}

// getSettingType returns the type of a setting based on its key
func getSettingType(key string) string {
	switch key {
	case "site_title", "site_description", "ai_endpoint", "ai_api_key":
		return "string"
	case "min_payout_amount":
		return "float"
	default:
		return "boolean"
	}
}

// Validate validates the settings
func (s *AppSettings) Validate() error {
	validate := validator.New()
	return validate.Struct(s)
}

// ToJSON converts settings to JSON
func (s *AppSettings) ToJSON() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return json.Marshal(s)
}

// FromJSON loads settings from JSON
func (s *AppSettings) FromJSON(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return json.Unmarshal(data, s)
}

// SettingsSnapshot is a plain value copy of AppSettings without locking.
type SettingsSnapshot struct {
	SiteTitle            string
	SiteDescription      string
	ListingsEnabled      bool
	AppBuilderEnabled    bool
	SubscriptionsEnabled bool
	AffiliatesEnabled    bool
	AnalyticsEnabled     bool
	AIEnabled            bool
	ClaimsEnabled        bool
	CustomFieldsEnabled  bool
	WebPIconsEnabled     bool
	AIEndpoint           string
	AIAPIKey             string
	MinPayoutAmount      float64
}

// Snapshot returns an immutable copy of the settings so feature decisions
// stay consistent for the duration of a request even if an admin saves new
// settings mid-flight.
func (s *AppSettings) Snapshot() SettingsSnapshot {
	if s == nil {
		return SettingsSnapshot{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SettingsSnapshot{
		SiteTitle:            s.SiteTitle,
		SiteDescription:      s.SiteDescription,
		ListingsEnabled:      s.ListingsEnabled,
		AppBuilderEnabled:    s.AppBuilderEnabled,
		SubscriptionsEnabled: s.SubscriptionsEnabled,
		AffiliatesEnabled:    s.AffiliatesEnabled,
		AnalyticsEnabled:     s.AnalyticsEnabled,
		AIEnabled:            s.AIEnabled,
		ClaimsEnabled:        s.ClaimsEnabled,
		CustomFieldsEnabled:  s.CustomFieldsEnabled,
		WebPIconsEnabled:     s.WebPIconsEnabled,
		AIEndpoint:           s.AIEndpoint,
		AIAPIKey:             s.AIAPIKey,
		MinPayoutAmount:      s.MinPayoutAmount,
	}
}

// CurrentSnapshot returns a snapshot of the global settings instance.
func CurrentSnapshot() SettingsSnapshot {
	return GetAppSettings().Snapshot()
}

// GetSiteTitle returns the site title
func (s *AppSettings) GetSiteTitle() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.SiteTitle
}

// IsListingsEnabled returns whether the business directory is enabled
func (s *AppSettings) IsListingsEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ListingsEnabled
}

// IsAppBuilderEnabled returns whether the PWA app builder is enabled
func (s *AppSettings) IsAppBuilderEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.AppBuilderEnabled
}

// IsSubscriptionsEnabled returns whether paid plans are enabled
func (s *AppSettings) IsSubscriptionsEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.SubscriptionsEnabled
}

// IsAffiliatesEnabled returns whether the affiliate program is enabled
func (s *AppSettings) IsAffiliatesEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.AffiliatesEnabled
}

// IsAnalyticsEnabled returns whether view/click tracking is enabled
func (s *AppSettings) IsAnalyticsEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.AnalyticsEnabled
}

// IsAIEnabled returns whether the AI content gateway is enabled
func (s *AppSettings) IsAIEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.AIEnabled
}

// IsClaimsEnabled returns whether listing claims are enabled
func (s *AppSettings) IsClaimsEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ClaimsEnabled
}

// IsCustomFieldsEnabled returns whether custom listing fields are enabled
func (s *AppSettings) IsCustomFieldsEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.CustomFieldsEnabled
}
