package router

import (
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/controllers"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/middleware"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/oauth"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/session"

	"github.com/gofiber/fiber/v2"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init session
	session.NewSessionStore()

	// init oauth providers
	oauth.Setup()

	// UserContext first, settings snapshot second: handlers read both.
	app.Use(middleware.UserContextMiddleware)
	app.Use(middleware.SettingsSnapshotMiddleware)

	controllers.InitializeListingController()
	controllers.InitializePlanController()
	controllers.InitializeAppController()
	controllers.InitializeAffiliateController()
	controllers.InitializeAIController()

	h.registerPublicRoutes(app)
	h.registerUserRoutes(app)
	h.registerAdminRoutes(app)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}
