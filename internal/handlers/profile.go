package handlers

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/kaamkaro/portal/internal/cache"
	"github.com/kaamkaro/portal/internal/models"
)

// ProfileHandler serves the type-specific profile pages and the public
// worker lookup used on worker cards.
type ProfileHandler struct {
	Deps
}

func NewProfileHandler(deps Deps) *ProfileHandler {
	return &ProfileHandler{Deps: deps}
}

func (h *ProfileHandler) WorkerRoutes(r fiber.Router) {
	r.Get("/profile", h.WorkerProfile)
	r.Patch("/profile", h.UpdateWorkerProfile)
}

func (h *ProfileHandler) CustomerRoutes(r fiber.Router) {
	r.Get("/profile", h.CustomerProfile)
	r.Patch("/profile", h.UpdateCustomerProfile)
}

func (h *ProfileHandler) PublicRoutes(r fiber.Router) {
	r.Get("/workers/:id", h.WorkerLookup)
}

func (h *ProfileHandler) WorkerProfile(c *fiber.Ctx) error {
	auth, sess := h.handle(c)
	if sess == nil {
		return fiber.ErrUnauthorized
	}

	profile, err := cache.Fetch(c.UserContext(), h.Cache,
		cache.Key(sess.ID, cache.FamilyProfile, map[string]string{"kind": "worker"}),
		cache.TTL(cache.FamilyProfile),
		func(ctx context.Context) (models.WorkerProfile, error) {
			return h.API.WorkerProfile(ctx, auth)
		})
	if err != nil {
		return fail(c, err)
	}
	return okJSON(c, profile)
}

func (h *ProfileHandler) UpdateWorkerProfile(c *fiber.Ctx) error {
	auth, sess := h.handle(c)
	if sess == nil {
		return fiber.ErrUnauthorized
	}

	var data models.UpdateWorkerProfileData
	if err := c.BodyParser(&data); err != nil {
		return badRequest(c, "invalid body")
	}
	if data.HourlyRate != nil && *data.HourlyRate < 0 {
		return badRequest(c, "Hourly rate cannot be negative")
	}

	profile, err := h.API.UpdateWorkerProfile(c.UserContext(), auth, data)
	if err != nil {
		return fail(c, err)
	}

	h.Cache.Invalidate(sess.ID, cache.FamilyProfile)
	return okJSON(c, profile)
}

func (h *ProfileHandler) CustomerProfile(c *fiber.Ctx) error {
	auth, sess := h.handle(c)
	if sess == nil {
		return fiber.ErrUnauthorized
	}

	profile, err := cache.Fetch(c.UserContext(), h.Cache,
		cache.Key(sess.ID, cache.FamilyProfile, map[string]string{"kind": "customer"}),
		cache.TTL(cache.FamilyProfile),
		func(ctx context.Context) (models.CustomerProfile, error) {
			return h.API.CustomerProfile(ctx, auth)
		})
	if err != nil {
		return fail(c, err)
	}
	return okJSON(c, profile)
}

func (h *ProfileHandler) UpdateCustomerProfile(c *fiber.Ctx) error {
	auth, sess := h.handle(c)
	if sess == nil {
		return fiber.ErrUnauthorized
	}

	var data models.UpdateCustomerProfileData
	if err := c.BodyParser(&data); err != nil {
		return badRequest(c, "invalid body")
	}

	profile, err := h.API.UpdateCustomerProfile(c.UserContext(), auth, data)
	if err != nil {
		return fail(c, err)
	}

	h.Cache.Invalidate(sess.ID, cache.FamilyProfile)
	return okJSON(c, profile)
}

func (h *ProfileHandler) WorkerLookup(c *fiber.Ctx) error {
	auth, sess := h.handle(c)
	if sess == nil {
		return fiber.ErrUnauthorized
	}
	userID, err := c.ParamsInt("id")
	if err != nil {
		return badRequest(c, "invalid user id")
	}

	lookup, err := cache.Fetch(c.UserContext(), h.Cache,
		cache.Key(sess.ID, cache.FamilyProfile, map[string]string{"worker": strconv.Itoa(userID)}),
		cache.TTL(cache.FamilyProfile),
		func(ctx context.Context) (models.WorkerLookup, error) {
			return h.API.WorkerProfileByUserID(ctx, auth, userID)
		})
	if err != nil {
		return fail(c, err)
	}
	return okJSON(c, lookup)
}
