package usercontext

// Locals/session keys shared by the auth middleware, controllers and the
// session-backed login flow.
const (
	KeyUserID        = "user_id"
	KeyUsername      = "username"
	KeyIsAdmin       = "isAdmin"
	KeyFromProtected = "from_protected"
)
