package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/kaamkaro/portal/internal/cache"
	"github.com/kaamkaro/portal/internal/lifecycle"
	"github.com/kaamkaro/portal/internal/middleware"
	"github.com/kaamkaro/portal/internal/session"
	"github.com/kaamkaro/portal/internal/upstream"
)

// Deps is the shared handler wiring: upstream client, per-session read
// cache, session store and the rating flow gate. Everything is injected;
// handlers hold no globals.
type Deps struct {
	API   *upstream.Client
	Cache *cache.Cache
	Store session.Store
	Gate  *lifecycle.RatingGate
	Log   *slog.Logger
}

// handle binds the request's session to the store so the upstream
// transport can refresh tokens mid-request.
func (d Deps) handle(c *fiber.Ctx) (*session.Handle, *session.Session) {
	sess := middleware.CurrentSession(c)
	if sess == nil {
		return nil, nil
	}
	return session.NewHandle(sess, d.Store), sess
}

type FieldErrors map[string][]string

func (e FieldErrors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

func validationFail(c *fiber.Ctx, errs FieldErrors) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": "Validation error",
		"errors":  errs,
	})
}

func okJSON(c *fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{"success": true, "data": data})
}

// fail maps an upstream or local error to an envelope response. An
// unrecoverable authentication failure becomes a 401 with the session
// cookie cleared; an upstream 4xx keeps its class so callers can tell a
// rejected request from a gateway failure; everything else is a 502-class
// message passthrough, never a crash.
func fail(c *fiber.Ctx, err error) error {
	if errors.Is(err, upstream.ErrAuthenticationFailed) {
		c.Cookie(&fiber.Cookie{
			Name:     middleware.SessionCookie,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HTTPOnly: true,
			SameSite: "Lax",
		})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	status := fiber.StatusBadGateway
	var apiErr *upstream.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
		status = apiErr.StatusCode
	}
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": err.Error(),
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}
