package middleware

import (
	"errors"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/kaamkaro/portal/internal/models"
	"github.com/kaamkaro/portal/internal/session"
	"github.com/kaamkaro/portal/internal/utils"
)

const SessionCookie = "kk_session"

// Locals keys set by SessionFromCookie for downstream handlers.
const (
	LocalSession  = "session"
	LocalUserID   = "userId"
	LocalUserType = "userType"
)

// SessionFromCookie resolves the portal session cookie into a session
// record and applies the route guard. An unreadable store defers the
// request; a missing or dead session redirects to login with the original
// path, so login can return the user there.
func SessionFromCookie(secret string, store session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		state, sess := resolve(c, secret, store)

		switch Decide(state, userTypeOf(sess), "") {
		case VerdictPending:
			c.Set(fiber.HeaderRetryAfter, "1")
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"success": false,
				"message": "Session store unavailable, retry shortly",
			})
		case VerdictLogin:
			return c.Redirect("/login?redirect="+url.QueryEscape(c.OriginalURL()), fiber.StatusFound)
		}

		c.Locals(LocalSession, sess)
		c.Locals(LocalUserID, sess.User.ID)
		c.Locals(LocalUserType, sess.User.UserType)
		return c.Next()
	}
}

func resolve(c *fiber.Ctx, secret string, store session.Store) (AuthState, *session.Session) {
	tokenStr := c.Cookies(SessionCookie)
	if tokenStr == "" {
		return StateAnonymous, nil
	}

	claims, err := utils.ParseSessionJWT(secret, tokenStr)
	if err != nil {
		return StateAnonymous, nil
	}

	sess, err := store.Get(c.UserContext(), claims.SessionID)
	if errors.Is(err, session.ErrNotFound) {
		return StateAnonymous, nil
	}
	if err != nil {
		return StateLoading, nil
	}
	// Tokens cleared by a failed refresh: the session is dead, do not
	// attempt unauthenticated upstream calls on its behalf.
	if sess.Tokens.Empty() {
		return StateAnonymous, nil
	}
	return StateAuthenticated, sess
}

func userTypeOf(sess *session.Session) models.UserType {
	if sess == nil {
		return ""
	}
	return sess.User.UserType
}

// CurrentSession pulls the session a guard middleware stored in locals.
func CurrentSession(c *fiber.Ctx) *session.Session {
	sess, _ := c.Locals(LocalSession).(*session.Session)
	return sess
}
