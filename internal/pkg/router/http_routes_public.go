package router

import (
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/controllers"
	"github.com/gofiber/fiber/v2"
)

func (h HttpRouter) registerPublicRoutes(app *fiber.App) {
	app.Get("/health", controllers.HandleHealth)

	// Auth
	app.Post("/register", controllers.HandleRegister)
	app.Get("/activate", controllers.HandleActivate)
	app.Post("/login", controllers.HandleLogin)
	app.Post("/logout", controllers.HandleLogout)

	// Social OAuth
	app.Get("/auth/:provider", controllers.HandleOAuthBegin)
	app.Get("/auth/:provider/callback", controllers.HandleOAuthCallback)
	app.Get("/auth/logout", controllers.HandleOAuthLogout)

	// Directory
	app.Get("/listings", controllers.HandleListingSearch)
	app.Get("/listings/:slug", controllers.HandleListingGet)
	app.Post("/listings/:id/click", controllers.HandleListingClick)
	app.Get("/listings/:id/features", controllers.HandleListingFeatures)

	// Payment provider callbacks (HMAC-signed)
	app.Post("/webhooks/payment", controllers.HandlePaymentWebhook)

	// Short links
	app.Get("/r/:code", controllers.HandleReferralShortLink)
	app.Get("/l/:code", controllers.HandleListingShortLink)

	// Plans and custom field definitions
	app.Get("/plans", controllers.HandlePlanList)
	app.Get("/custom-fields", controllers.HandleCustomFieldList)

	// Generated PWA surface. The service worker must be served from inside
	// the app scope so registration under /a/{uuid}/ is allowed.
	app.Get("/a/:uuid/manifest.json", controllers.HandleAppManifest)
	app.Get("/a/:uuid/sw.js", controllers.HandleAppServiceWorker)
	app.Get("/a/:uuid/offline", controllers.HandleAppOfflinePage)
}
