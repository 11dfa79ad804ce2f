package router

import (
	"github.com/gofiber/fiber/v2"
)

// InstallRouter wires all route groups onto the app. The HTTP router goes
// first because it initializes the session store, oauth providers and the
// UserContext middleware that the API routes depend on.
func InstallRouter(app *fiber.App) {
	setup(app, NewHttpRouter(), NewApiRouter())
}

func setup(app *fiber.App, routers ...Router) {
	for _, r := range routers {
		r.InstallRouter(app)
	}
}
