package usercontext

import "github.com/gofiber/fiber/v2"

// LocalsKey is the fiber Locals slot the auth middlewares store the
// resolved context under.
const LocalsKey = "USER_CONTEXT"

// UserContext is the authenticated identity attached to a request, either
// from the session or from an API key.
type UserContext struct {
	UserID     uint   `json:"user_id"`
	Username   string `json:"username"`
	IsLoggedIn bool   `json:"is_logged_in"`
	IsAdmin    bool   `json:"is_admin"`
}

// Get returns the request's user context, or an anonymous one when no
// middleware has populated it.
func Get(c *fiber.Ctx) UserContext {
	if ctx := c.Locals(LocalsKey); ctx != nil {
		return ctx.(UserContext)
	}
	return UserContext{}
}

// IsAdmin reports whether the current user has the admin role.
func IsAdmin(c *fiber.Ctx) bool {
	return Get(c).IsAdmin
}

// GetUserID returns the current user's id, 0 when anonymous.
func GetUserID(c *fiber.Ctx) uint {
	return Get(c).UserID
}
