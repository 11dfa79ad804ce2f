package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	apiv1 "github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/api/v1"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/middleware"
)

// ApiRouter mounts the versioned JSON API. Everything under /api/v1 is
// authenticated with per-user API keys.
type ApiRouter struct{}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New())

	v1 := api.Group("/v1", middleware.APIKeyAuthMiddleware())
	apiv1.RegisterHandlers(v1, apiv1.NewAPIServer())
}
