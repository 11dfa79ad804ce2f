package capability

import (
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/models"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/repository"
)

// Capability names are stable strings persisted in user_capabilities.
const (
	ManageListings   = "aslp_manage_listings"
	ManageApps       = "aslp_manage_apps"
	ManagePlans      = "aslp_manage_plans"
	ManageAffiliates = "aslp_manage_affiliates"
	ManageSettings   = "aslp_manage_settings"
	ViewAffiliate    = "aslp_view_affiliate"
	RequestPayout    = "aslp_request_payout"
	ViewAnalytics    = "aslp_view_analytics"
	UseAI            = "aslp_use_ai"
)

// roleDefaults maps a user role to the capabilities it implies without an
// explicit grant.
var roleDefaults = map[string][]string{
	models.ROLE_ADMIN: {
		ManageListings, ManageApps, ManagePlans, ManageAffiliates,
		ManageSettings, ViewAffiliate, RequestPayout, ViewAnalytics, UseAI,
	},
	models.ROLE_USER: {
		ManageListings, ManageApps, ViewAnalytics, UseAI,
	},
}

// Can reports whether the user holds the capability, either through their
// role defaults or through an explicit per-user grant.
func Can(userRepo repository.UserRepository, user *models.User, cap string) bool {
	if user == nil || !user.IsActive() {
		return false
	}
	for _, c := range roleDefaults[user.Role] {
		if c == cap {
			return true
		}
	}
	granted, err := userRepo.GetCapabilities(user.ID)
	if err != nil {
		return false
	}
	for _, c := range granted {
		if c == cap {
			return true
		}
	}
	return false
}

// Grant adds an explicit capability grant to a user.
func Grant(userRepo repository.UserRepository, userID uint, cap string) error {
	return userRepo.GrantCapability(userID, cap)
}

// Revoke removes an explicit capability grant from a user.
func Revoke(userRepo repository.UserRepository, userID uint, cap string) error {
	return userRepo.RevokeCapability(userID, cap)
}
