package handlers

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/kaamkaro/portal/internal/cache"
	"github.com/kaamkaro/portal/internal/lifecycle"
	"github.com/kaamkaro/portal/internal/models"
)

// RatingHandler implements the two-step rating flow. Submission is refused
// outright unless the same session confirmed eligibility for the same
// assignment first, and each confirmation is spent by one submission.
type RatingHandler struct {
	Deps
}

func NewRatingHandler(deps Deps) *RatingHandler {
	return &RatingHandler{Deps: deps}
}

func (h *RatingHandler) Routes(r fiber.Router) {
	r.Post("/assignments/:id/can-rate", h.Eligibility)
	r.Post("/assignments/:id/ratings", h.Submit)
	r.Get("/assignments/:id/ratings", h.AssignmentRatings)
	r.Patch("/ratings/:id", h.Update)
	r.Delete("/ratings/:id", h.Delete)
	r.Post("/ratings/:id/helpful", h.MarkHelpful)
	r.Delete("/ratings/:id/helpful", h.RemoveHelpful)
	r.Get("/users/:id/ratings", h.UserRatings)
	r.Get("/users/:id/rating-summary", h.UserRatingSummary)
}

// Eligibility runs the server-side can-rate pre-flight. A positive answer
// arms the gate with the rater->ratee mapping the submission must use; the
// server's mapping wins, local inference only fills a silent response.
func (h *RatingHandler) Eligibility(c *fiber.Ctx) error {
	auth, sess := h.handle(c)
	if sess == nil {
		return fiber.ErrUnauthorized
	}
	assignmentID, err := c.ParamsInt("id")
	if err != nil {
		return badRequest(c, "invalid assignment id")
	}
	ctx := c.UserContext()

	result, err := h.API.CanRate(ctx, auth, assignmentID)
	if err != nil {
		return fail(c, err)
	}
	if !result.CanRate {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"message": result.Reason,
			"data":    result,
		})
	}

	assignment, err := h.API.GetAssignment(ctx, auth, assignmentID)
	if err != nil {
		return fail(c, err)
	}
	meta := lifecycle.ResolveRatingMeta(result, sess.User.UserType, assignment)
	h.Gate.Confirm(sess.ID, assignmentID, meta)
	return okJSON(c, result)
}

type ratingForm struct {
	Rating                int    `json:"rating"`
	Review                string `json:"review"`
	QualityRating         int    `json:"quality_rating"`
	CommunicationRating   int    `json:"communication_rating"`
	PunctualityRating     int    `json:"punctuality_rating"`
	ProfessionalismRating int    `json:"professionalism_rating"`
	IsAnonymous           bool   `json:"is_anonymous"`
}

// Submit spends the eligibility confirmation and forwards the rating. With
// no live confirmation the request never reaches the backend.
func (h *RatingHandler) Submit(c *fiber.Ctx) error {
	auth, sess := h.handle(c)
	if sess == nil {
		return fiber.ErrUnauthorized
	}
	assignmentID, err := c.ParamsInt("id")
	if err != nil {
		return badRequest(c, "invalid assignment id")
	}

	meta, ok := h.Gate.Take(sess.ID, assignmentID)
	if !ok {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"message": "Rating eligibility must be confirmed before submitting",
		})
	}

	var form ratingForm
	if err := c.BodyParser(&form); err != nil {
		return badRequest(c, "invalid body")
	}

	rating, err := h.API.CreateRating(c.UserContext(), auth, models.CreateRatingData{
		Assignment:            assignmentID,
		Ratee:                 meta.RateeID,
		RatingType:            meta.RatingType,
		Rating:                form.Rating,
		Review:                form.Review,
		QualityRating:         form.QualityRating,
		CommunicationRating:   form.CommunicationRating,
		PunctualityRating:     form.PunctualityRating,
		ProfessionalismRating: form.ProfessionalismRating,
		IsAnonymous:           form.IsAnonymous,
	})
	if err != nil {
		return fail(c, err)
	}

	h.Cache.Invalidate(sess.ID, cache.FamilyRatings)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": rating})
}

func (h *RatingHandler) AssignmentRatings(c *fiber.Ctx) error {
	auth, sess := h.handle(c)
	if sess == nil {
		return fiber.ErrUnauthorized
	}
	assignmentID, err := c.ParamsInt("id")
	if err != nil {
		return badRequest(c, "invalid assignment id")
	}

	ratings, err := cache.Fetch(c.UserContext(), h.Cache,
		cache.Key(sess.ID, cache.FamilyRatings, map[string]string{"assignment": strconv.Itoa(assignmentID)}),
		cache.TTL(cache.FamilyRatings),
		func(ctx context.Context) ([]models.Rating, error) {
			return h.API.AssignmentRatings(ctx, auth, assignmentID)
		})
	if err != nil {
		return fail(c, err)
	}
	return okJSON(c, ratings)
}

func (h *RatingHandler) Update(c *fiber.Ctx) error {
	auth, sess := h.handle(c)
	if sess == nil {
		return fiber.ErrUnauthorized
	}
	id, err := c.ParamsInt("id")
	if err != nil {
		return badRequest(c, "invalid rating id")
	}

	fields := map[string]any{}
	if err := c.BodyParser(&fields); err != nil {
		return badRequest(c, "invalid body")
	}
	// JSON numbers arrive as float64; normalize the rating fields so the
	// client-side clamp applies.
	for _, key := range []string{"rating", "quality_rating", "communication_rating", "punctuality_rating", "professionalism_rating"} {
		if f, isFloat := fields[key].(float64); isFloat {
			fields[key] = int(f)
		}
	}

	rating, err := h.API.UpdateRating(c.UserContext(), auth, id, fields)
	if err != nil {
		return fail(c, err)
	}

	h.Cache.Invalidate(sess.ID, cache.FamilyRatings)
	return okJSON(c, rating)
}

func (h *RatingHandler) Delete(c *fiber.Ctx) error {
	auth, sess := h.handle(c)
	if sess == nil {
		return fiber.ErrUnauthorized
	}
	id, err := c.ParamsInt("id")
	if err != nil {
		return badRequest(c, "invalid rating id")
	}

	if err := h.API.DeleteRating(c.UserContext(), auth, id); err != nil {
		return fail(c, err)
	}

	h.Cache.Invalidate(sess.ID, cache.FamilyRatings)
	return c.JSON(fiber.Map{"success": true, "message": "Rating deleted"})
}

// MarkHelpful is non-critical feedback; a failed vote is logged and reported
// but never breaks the page that triggered it.
func (h *RatingHandler) MarkHelpful(c *fiber.Ctx) error {
	auth, sess := h.handle(c)
	if sess == nil {
		return fiber.ErrUnauthorized
	}
	id, err := c.ParamsInt("id")
	if err != nil {
		return badRequest(c, "invalid rating id")
	}

	if err := h.API.MarkRatingHelpful(c.UserContext(), auth, id); err != nil {
		h.Log.Warn("helpful vote failed", "rating_id", id, "error", err)
		return c.JSON(fiber.Map{"success": false, "message": err.Error()})
	}
	h.Cache.Invalidate(sess.ID, cache.FamilyRatings)
	return c.JSON(fiber.Map{"success": true})
}

func (h *RatingHandler) RemoveHelpful(c *fiber.Ctx) error {
	auth, sess := h.handle(c)
	if sess == nil {
		return fiber.ErrUnauthorized
	}
	id, err := c.ParamsInt("id")
	if err != nil {
		return badRequest(c, "invalid rating id")
	}

	if err := h.API.RemoveRatingHelpful(c.UserContext(), auth, id); err != nil {
		h.Log.Warn("helpful vote removal failed", "rating_id", id, "error", err)
		return c.JSON(fiber.Map{"success": false, "message": err.Error()})
	}
	h.Cache.Invalidate(sess.ID, cache.FamilyRatings)
	return c.JSON(fiber.Map{"success": true})
}

func (h *RatingHandler) UserRatings(c *fiber.Ctx) error {
	auth, sess := h.handle(c)
	if sess == nil {
		return fiber.ErrUnauthorized
	}
	userID, err := c.ParamsInt("id")
	if err != nil {
		return badRequest(c, "invalid user id")
	}

	ratings, err := cache.Fetch(c.UserContext(), h.Cache,
		cache.Key(sess.ID, cache.FamilyRatings, map[string]string{"user": strconv.Itoa(userID)}),
		cache.TTL(cache.FamilyRatings),
		func(ctx context.Context) ([]models.RatingListItem, error) {
			return h.API.UserRatings(ctx, auth, userID)
		})
	if err != nil {
		return fail(c, err)
	}
	return okJSON(c, ratings)
}

func (h *RatingHandler) UserRatingSummary(c *fiber.Ctx) error {
	auth, sess := h.handle(c)
	if sess == nil {
		return fiber.ErrUnauthorized
	}
	userID, err := c.ParamsInt("id")
	if err != nil {
		return badRequest(c, "invalid user id")
	}

	summary, err := cache.Fetch(c.UserContext(), h.Cache,
		cache.Key(sess.ID, cache.FamilyRatings, map[string]string{"summary": strconv.Itoa(userID)}),
		cache.TTL(cache.FamilyRatings),
		func(ctx context.Context) (models.RatingSummary, error) {
			return h.API.UserRatingSummary(ctx, auth, userID)
		})
	if err != nil {
		return fail(c, err)
	}
	return okJSON(c, summary)
}
