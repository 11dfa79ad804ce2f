package router

import (
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/controllers"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/middleware"
	"github.com/gofiber/fiber/v2"
)

func (h HttpRouter) registerUserRoutes(app *fiber.App) {
	user := app.Group("/user", middleware.RequireAuth)
	user.Get("/profile", controllers.HandleUserProfile)
	user.Post("/profile", controllers.HandleUserProfileUpdate)
	user.Post("/api-key", controllers.HandleAPIKeyIssue)
	user.Post("/api-key/revoke", controllers.HandleAPIKeyRevoke)

	// Owned listings
	user.Get("/listings", controllers.HandleMyListings)
	user.Post("/listings", controllers.HandleListingCreate)
	user.Put("/listings/:id", controllers.HandleListingUpdate)
	user.Post("/listings/:id/claim", controllers.HandleListingClaim)
	user.Post("/listings/:id/seo", controllers.HandleAIGenerateSEO)
	user.Post("/listings/:id/images", controllers.HandleListingImageUpload)
	user.Delete("/listings/:id/images/:imageID", controllers.HandleListingImageDelete)

	// Subscriptions (listing id comes from the request body)
	user.Post("/subscriptions", controllers.HandlePlanAssign)

	// Owned apps
	user.Get("/apps", controllers.HandleMyApps)
	user.Post("/apps", controllers.HandleAppCreate)
	user.Put("/apps/:id", controllers.HandleAppUpdate)
	user.Post("/apps/:id/publish", controllers.HandleAppPublish)
	user.Post("/apps/:id/unpublish", controllers.HandleAppUnpublish)
	user.Post("/apps/:id/icon", controllers.HandleAppIconUpload)

	// Analytics
	user.Get("/stats/:id", controllers.HandleAnalyticsStats)
	user.Get("/stats/:id/daily", controllers.HandleAnalyticsDaily)

	// AI gateway
	user.Post("/ai/generate", controllers.HandleAIGenerate)

	// Affiliate program
	user.Post("/affiliate/register", controllers.HandleAffiliateRegister)
	user.Get("/affiliate", controllers.HandleAffiliateProfile)
	user.Get("/affiliate/commissions", controllers.HandleAffiliateCommissions)
	user.Get("/affiliate/payouts", controllers.HandleAffiliatePayouts)
	user.Post("/affiliate/payouts", controllers.HandleAffiliatePayoutRequest)
}
