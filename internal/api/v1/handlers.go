package apiv1

import (
	"github.com/gofiber/fiber/v2"

	// Delegate to existing controllers to keep behavior consistent
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/controllers"
)

// APIServer implements the ServerInterface
type APIServer struct{}

// NewAPIServer creates a new API server instance
func NewAPIServer() *APIServer {
	return &APIServer{}
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	response := Pong{
		Ping: "pong",
	}

	return c.Status(fiber.StatusOK).JSON(response)
}

// GetUserProfile returns account information for the authenticated user (API key).
// Security is enforced via API key middleware attached in the router.
func (s *APIServer) GetUserProfile(c *fiber.Ctx) error {
	return controllers.HandleUserProfile(c)
}

// GetUserListings returns the listings owned by the API key's user.
func (s *APIServer) GetUserListings(c *fiber.Ctx) error {
	return controllers.HandleMyListings(c)
}

// GetListingStats returns view/click aggregates for one of the user's listings.
func (s *APIServer) GetListingStats(c *fiber.Ctx, id string) error {
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "id missing"})
	}
	// Controller reads the id from route params; wrapper already set it.
	return controllers.HandleAnalyticsStats(c)
}

// PostAIGenerate proxies a prompt through the generative AI gateway.
func (s *APIServer) PostAIGenerate(c *fiber.Ctx) error {
	return controllers.HandleAIGenerate(c)
}
