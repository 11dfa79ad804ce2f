package apiv1

import (
	"github.com/gofiber/fiber/v2"
)

// Pong is the response of the ping endpoint.
type Pong struct {
	Ping string `json:"ping"`
}

// ServerInterface is the contract the public v1 API implements. The route
// shapes mirror public/docs/v1/openapi.yml.
type ServerInterface interface {
	// GET /ping
	GetPing(c *fiber.Ctx) error
	// GET /profile
	GetUserProfile(c *fiber.Ctx) error
	// GET /listings
	GetUserListings(c *fiber.Ctx) error
	// GET /listings/{id}/stats
	GetListingStats(c *fiber.Ctx, id string) error
	// POST /ai/generate
	PostAIGenerate(c *fiber.Ctx) error
}

// RegisterHandlers attaches the v1 routes to the given router group.
func RegisterHandlers(router fiber.Router, si ServerInterface) {
	router.Get("/ping", si.GetPing)
	router.Get("/profile", si.GetUserProfile)
	router.Get("/listings", si.GetUserListings)
	router.Get("/listings/:id/stats", func(c *fiber.Ctx) error {
		return si.GetListingStats(c, c.Params("id"))
	})
	router.Post("/ai/generate", si.PostAIGenerate)
}
