package router

import (
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/controllers"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/middleware"
	"github.com/gofiber/fiber/v2"
)

func (h HttpRouter) registerAdminRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin", middleware.RequireAdmin)

	adminGroup.Get("/dashboard", controllers.HandleAdminDashboard)

	// Listing moderation and ownership claims
	adminGroup.Get("/listings", controllers.HandleAdminListingList)
	adminGroup.Post("/listings/:id/moderate", controllers.HandleAdminListingModerate)
	adminGroup.Get("/claims", controllers.HandleAdminClaimList)
	adminGroup.Post("/claims/:id/decide", controllers.HandleAdminClaimDecide)

	// Plan management
	adminGroup.Post("/plans", controllers.HandleAdminPlanCreate)
	adminGroup.Put("/plans/:id", controllers.HandleAdminPlanUpdate)
	adminGroup.Delete("/plans/:id", controllers.HandleAdminPlanDelete)

	// Affiliate program management
	adminGroup.Get("/affiliates", controllers.HandleAdminAffiliateList)
	adminGroup.Post("/affiliates/:id/approve", controllers.HandleAdminAffiliateApprove)
	adminGroup.Post("/commissions/:id/decide", controllers.HandleAdminCommissionDecide)
	adminGroup.Post("/payouts/:id/complete", controllers.HandleAdminPayoutComplete)
	adminGroup.Get("/tiers", controllers.HandleAdminTierList)
	adminGroup.Post("/tiers", controllers.HandleAdminTierCreate)
	adminGroup.Put("/tiers/:id", controllers.HandleAdminTierUpdate)

	// Settings and custom fields
	adminGroup.Get("/settings", controllers.HandleAdminSettingsGet)
	adminGroup.Post("/settings", controllers.HandleAdminSettingsSave)
	adminGroup.Get("/custom-fields", controllers.HandleAdminCustomFieldList)
	adminGroup.Post("/custom-fields", controllers.HandleAdminCustomFieldCreate)
	adminGroup.Put("/custom-fields/:id", controllers.HandleAdminCustomFieldUpdate)
	adminGroup.Delete("/custom-fields/:id", controllers.HandleAdminCustomFieldDelete)
}
