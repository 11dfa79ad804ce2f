package entitlements

import (
	"testing"
	"time"

	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/models"
)

func TestParseFeatures_MalformedJSON(t *testing.T) {
	for _, raw := range []string{"", "{", "null", `{"gallery":true}`, "42"} {
		set := ParseFeatures([]byte(raw))
		if len(set) != 0 {
			t.Fatalf("ParseFeatures(%q) = %v, want empty set", raw, set.Names())
		}
	}
}

func TestParseFeatures_DropsUnknownNames(t *testing.T) {
	set := ParseFeatures([]byte(`["gallery","made_up_feature","social_links"]`))
	if len(set) != 2 {
		t.Fatalf("expected 2 known features, got %v", set.Names())
	}
	if !set.Has(FeatureGallery) || !set.Has(FeatureSocialLinks) {
		t.Fatalf("expected gallery and social_links, got %v", set.Names())
	}
}

func TestEffectiveFeatures_NoPlan(t *testing.T) {
	set := EffectiveFeatures(nil, nil, models.SettingsSnapshot{AnalyticsEnabled: true})
	if len(set) != 0 {
		t.Fatalf("expected empty set without a plan, got %v", set.Names())
	}
}

func TestEffectiveFeatures_GlobalGateWins(t *testing.T) {
	plan := &models.Plan{Features: []string{"analytics", "gallery"}}

	on := EffectiveFeatures(nil, plan, models.SettingsSnapshot{AnalyticsEnabled: true})
	if !on.Has(FeatureAnalytics) {
		t.Fatalf("expected analytics on when globally enabled")
	}

	off := EffectiveFeatures(nil, plan, models.SettingsSnapshot{AnalyticsEnabled: false})
	if off.Has(FeatureAnalytics) {
		t.Fatalf("expected analytics off when globally disabled, regardless of plan")
	}
	if !off.Has(FeatureGallery) {
		t.Fatalf("gallery has no global gate and must stay on")
	}
}

func TestEffectiveFeatures_AIGate(t *testing.T) {
	plan := &models.Plan{Features: []string{"ai_seo"}}
	if EffectiveFeatures(nil, plan, models.SettingsSnapshot{AIEnabled: false}).Has(FeatureAISEO) {
		t.Fatalf("ai_seo must be off when AI is globally disabled")
	}
	if !EffectiveFeatures(nil, plan, models.SettingsSnapshot{AIEnabled: true}).Has(FeatureAISEO) {
		t.Fatalf("ai_seo must be on when AI is globally enabled")
	}
}

func TestEffectiveFeatures_ExpiredSubscription(t *testing.T) {
	plan := &models.Plan{Features: []string{"gallery"}}
	past := time.Now().Add(-time.Hour)

	expiredByDate := &models.UserSubscription{
		Status:  models.SubscriptionStatusActive,
		EndDate: &past,
	}
	if len(EffectiveFeatures(expiredByDate, plan, models.SettingsSnapshot{})) != 0 {
		t.Fatalf("date-expired subscription must yield an empty set")
	}

	expiredByStatus := &models.UserSubscription{Status: models.SubscriptionStatusExpired}
	if len(EffectiveFeatures(expiredByStatus, plan, models.SettingsSnapshot{})) != 0 {
		t.Fatalf("status-expired subscription must yield an empty set")
	}

	future := time.Now().Add(time.Hour)
	current := &models.UserSubscription{
		Status:  models.SubscriptionStatusActive,
		EndDate: &future,
	}
	if !EffectiveFeatures(current, plan, models.SettingsSnapshot{}).Has(FeatureGallery) {
		t.Fatalf("current subscription must expose plan features")
	}
}

func TestEffectiveFeatures_OpenEndedSubscription(t *testing.T) {
	plan := &models.Plan{Features: []string{"gallery"}}
	sub := &models.UserSubscription{Status: models.SubscriptionStatusActive}
	if !EffectiveFeatures(sub, plan, models.SettingsSnapshot{}).Has(FeatureGallery) {
		t.Fatalf("subscription without end date must stay current")
	}
}
