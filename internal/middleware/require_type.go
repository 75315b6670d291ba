package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kaamkaro/portal/internal/models"
)

// RequireUserType gates a portal group to one user type. A signed-in user
// of the other type is sent to their own dashboard rather than shown an
// error page. Must run after SessionFromCookie.
func RequireUserType(required models.UserType) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := CurrentSession(c)
		if sess == nil {
			return fiber.ErrUnauthorized
		}
		if Decide(StateAuthenticated, sess.User.UserType, required) == VerdictOwnDashboard {
			return c.Redirect(DashboardPath(sess.User.UserType), fiber.StatusFound)
		}
		return c.Next()
	}
}
