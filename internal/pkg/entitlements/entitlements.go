package entitlements

import (
	"encoding/json"
	"time"

	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/models"
)

// Feature identifies one plan-gated capability of a listing or app.
type Feature string

const (
	FeatureGallery        Feature = "gallery"
	FeatureBusinessHours  Feature = "business_hours"
	FeatureSocialLinks    Feature = "social_links"
	FeatureContactForm    Feature = "contact_form"
	FeatureAnalytics      Feature = "analytics"
	FeatureAISEO          Feature = "ai_seo"
	FeaturePushPrompt     Feature = "push_prompt"
	FeatureOfflinePage    Feature = "offline_page"
	FeatureCustomDomain   Feature = "custom_domain"
	FeatureProductCatalog Feature = "product_catalog"
	FeatureCouponCodes    Feature = "coupon_codes"
)

// knownFeatures is the closed set of valid feature names. Unknown names in a
// plan's feature list are dropped instead of silently carried along.
var knownFeatures = map[Feature]struct{}{
	FeatureGallery:        {},
	FeatureBusinessHours:  {},
	FeatureSocialLinks:    {},
	FeatureContactForm:    {},
	FeatureAnalytics:      {},
	FeatureAISEO:          {},
	FeaturePushPrompt:     {},
	FeatureOfflinePage:    {},
	FeatureCustomDomain:   {},
	FeatureProductCatalog: {},
	FeatureCouponCodes:    {},
}

// IsKnown reports whether the feature name is part of the closed set.
func IsKnown(f Feature) bool {
	_, ok := knownFeatures[f]
	return ok
}

// FeatureSet is a set of enabled features.
type FeatureSet map[Feature]struct{}

// Has reports whether the feature is in the set.
func (s FeatureSet) Has(f Feature) bool {
	_, ok := s[f]
	return ok
}

// Names returns the feature names in the set as plain strings.
func (s FeatureSet) Names() []string {
	names := make([]string, 0, len(s))
	for f := range s {
		names = append(names, string(f))
	}
	return names
}

// FromNames builds a feature set from plan feature names, dropping unknown ones.
func FromNames(names []string) FeatureSet {
	set := make(FeatureSet, len(names))
	for _, n := range names {
		f := Feature(n)
		if IsKnown(f) {
			set[f] = struct{}{}
		}
	}
	return set
}

// ParseFeatures decodes a JSON feature name array. Malformed JSON yields an
// empty set, matching how an undecodable plan column is treated everywhere.
func ParseFeatures(data []byte) FeatureSet {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return FeatureSet{}
	}
	return FromNames(names)
}

// globalGate returns whether the admin settings allow a feature at all.
// Features with no dedicated flag are gated only by the plan.
func globalGate(f Feature, s models.SettingsSnapshot) bool {
	switch f {
	case FeatureAnalytics:
		return s.AnalyticsEnabled
	case FeatureAISEO:
		return s.AIEnabled
	}
	return true
}

// EffectiveFeatures computes the effective feature set of a listing or app:
// the plan's declared features filtered by the admin's global gates. A nil
// plan or a subscription that is not current yields the empty set.
func EffectiveFeatures(sub *models.UserSubscription, plan *models.Plan, s models.SettingsSnapshot) FeatureSet {
	if plan == nil {
		return FeatureSet{}
	}
	if sub != nil && !sub.IsCurrent(time.Now()) {
		return FeatureSet{}
	}

	set := FromNames(plan.Features)
	for f := range set {
		if !globalGate(f, s) {
			delete(set, f)
		}
	}
	return set
}

// HasFeature reports whether a specific feature is effectively on.
func HasFeature(sub *models.UserSubscription, plan *models.Plan, s models.SettingsSnapshot, f Feature) bool {
	return EffectiveFeatures(sub, plan, s).Has(f)
}
