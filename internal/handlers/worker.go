package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/kaamkaro/portal/internal/cache"
	"github.com/kaamkaro/portal/internal/lifecycle"
	"github.com/kaamkaro/portal/internal/models"
	"github.com/kaamkaro/portal/internal/session"
)

// WorkerHandler serves the worker portal: browsing open jobs, responding
// with an accept or a quote, walking assignments through their lifecycle
// and reading earnings.
type WorkerHandler struct {
	Deps
}

func NewWorkerHandler(deps Deps) *WorkerHandler {
	return &WorkerHandler{Deps: deps}
}

func (h *WorkerHandler) Routes(r fiber.Router) {
	r.Get("/dashboard", h.Dashboard)
	r.Get("/jobs", h.AvailableJobs)
	r.Post("/jobs/:id/respond", h.Respond)
	r.Patch("/responses/:id", h.UpdateResponse)
	r.Delete("/responses/:id", h.DeleteResponse)
	r.Get("/assignments", h.Assignments)
	r.Post("/assignments/:id/status", h.UpdateAssignmentStatus)
	r.Get("/earnings", h.Earnings)
}

func (h *WorkerHandler) openJobs(ctx context.Context, auth *session.Handle, sessionID string, filters models.JobFilters) ([]models.Job, error) {
	filters.Status = string(models.JobStatusOpen)
	return cache.Fetch(ctx, h.Cache,
		cache.Key(sessionID, cache.FamilyJobs, map[string]string{
			"status":   filters.Status,
			"category": filters.Category,
			"city":     filters.City,
			"urgency":  filters.Urgency,
		}),
		cache.TTL(cache.FamilyJobs),
		func(ctx context.Context) ([]models.Job, error) {
			return h.API.ListJobs(ctx, auth, filters)
		})
}

func (h *WorkerHandler) ownResponses(ctx context.Context, auth *session.Handle, sessionID string) ([]models.JobResponse, error) {
	return cache.Fetch(ctx, h.Cache,
		cache.Key(sessionID, cache.FamilyWorkerResponses, nil),
		cache.TTL(cache.FamilyWorkerResponses),
		func(ctx context.Context) ([]models.JobResponse, error) {
			return h.API.WorkerResponses(ctx, auth)
		})
}

func (h *WorkerHandler) ownAssignments(ctx context.Context, auth *session.Handle, sessionID string, workerID int) ([]models.Assignment, error) {
	return cache.Fetch(ctx, h.Cache,
		cache.Key(sessionID, cache.FamilyAssignments, map[string]string{"worker": strconv.Itoa(workerID)}),
		cache.TTL(cache.FamilyAssignments),
		func(ctx context.Context) ([]models.Assignment, error) {
			return h.API.ListAssignments(ctx, auth, models.AssignmentFilters{Worker: workerID})
		})
}

// Dashboard shows open jobs the worker has not responded to, their own
// responses and assignments, and an earnings summary. A job with any prior
// response, whatever its status, is hidden from the available list.
func (h *WorkerHandler) Dashboard(c *fiber.Ctx) error {
	auth, sess := h.handle(c)
	if sess == nil {
		return fiber.ErrUnauthorized
	}
	ctx := c.UserContext()

	nearby, err := h.openJobs(ctx, auth, sess.ID, models.JobFilters{City: c.Query("city")})
	if err != nil {
		return fail(c, err)
	}
	responses, err := h.ownResponses(ctx, auth, sess.ID)
	if err != nil {
		return fail(c, err)
	}
	assignments, err := h.ownAssignments(ctx, auth, sess.ID, sess.User.ID)
	if err != nil {
		return fail(c, err)
	}

	summary, err := cache.Fetch(ctx, h.Cache,
		cache.Key(sess.ID, cache.FamilyEarningsSummary, nil),
		cache.TTL(cache.FamilyEarningsSummary),
		func(ctx context.Context) (models.EarningsSummary, error) {
			return h.API.EarningsSummary(ctx, auth)
		})
	if err != nil {
		return fail(c, err)
	}

	return okJSON(c, fiber.Map{
		"available_jobs":   lifecycle.AvailableJobs(nearby, responses),
		"responses":        responses,
		"assignments":      assignments,
		"earnings_summary": summary,
	})
}

func (h *WorkerHandler) AvailableJobs(c *fiber.Ctx) error {
	auth, sess := h.handle(c)
	if sess == nil {
		return fiber.ErrUnauthorized
	}
	ctx := c.UserContext()

	nearby, err := h.openJobs(ctx, auth, sess.ID, models.JobFilters{
		Category: c.Query("category"),
		City:     c.Query("city"),
		Urgency:  c.Query("urgency"),
	})
	if err != nil {
		return fail(c, err)
	}
	responses, err := h.ownResponses(ctx, auth, sess.ID)
	if err != nil {
		return fail(c, err)
	}
	return okJSON(c, lifecycle.AvailableJobs(nearby, responses))
}

// Respond submits an accept or a quote for an open job. A quote must carry
// a positive amount; an accept takes the job at its posted budget.
func (h *WorkerHandler) Respond(c *fiber.Ctx) error {
	auth, sess := h.handle(c)
	if sess == nil {
		return fiber.ErrUnauthorized
	}
	jobID, err := c.ParamsInt("id")
	if err != nil {
		return badRequest(c, "invalid job id")
	}

	var data models.CreateJobResponseData
	if err := c.BodyParser(&data); err != nil {
		return badRequest(c, "invalid body")
	}
	if data.ResponseType != models.ResponseTypeAccept && data.ResponseType != models.ResponseTypeQuote {
		return badRequest(c, "response_type must be accept or quote")
	}
	if data.ResponseType == models.ResponseTypeQuote && (data.QuoteAmount == nil || *data.QuoteAmount <= 0) {
		return badRequest(c, "Quote amount must be greater than zero")
	}
	if data.ResponseType == models.ResponseTypeAccept {
		data.QuoteAmount = nil
	}

	response, err := h.API.CreateJobResponse(c.UserContext(), auth, jobID, data)
	if err != nil {
		return fail(c, err)
	}

	h.Cache.Invalidate(sess.ID,
		cache.FamilyJobResponses, cache.FamilyJobs, cache.FamilyWorkerResponses, cache.FamilyAssignments)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": response})
}

func (h *WorkerHandler) UpdateResponse(c *fiber.Ctx) error {
	auth, sess := h.handle(c)
	if sess == nil {
		return fiber.ErrUnauthorized
	}
	id, err := c.ParamsInt("id")
	if err != nil {
		return badRequest(c, "invalid response id")
	}

	var data models.UpdateJobResponseData
	if err := c.BodyParser(&data); err != nil {
		return badRequest(c, "invalid body")
	}
	if data.QuoteAmount != nil && *data.QuoteAmount <= 0 {
		return badRequest(c, "Quote amount must be greater than zero")
	}

	response, err := h.API.UpdateJobResponse(c.UserContext(), auth, id, data)
	if err != nil {
		return fail(c, err)
	}

	h.Cache.Invalidate(sess.ID,
		cache.FamilyJobResponses, cache.FamilyWorkerResponses, cache.FamilyJobs, cache.FamilyAssignments)
	return okJSON(c, response)
}

func (h *WorkerHandler) DeleteResponse(c *fiber.Ctx) error {
	auth, sess := h.handle(c)
	if sess == nil {
		return fiber.ErrUnauthorized
	}
	id, err := c.ParamsInt("id")
	if err != nil {
		return badRequest(c, "invalid response id")
	}

	if err := h.API.DeleteJobResponse(c.UserContext(), auth, id); err != nil {
		return fail(c, err)
	}

	h.Cache.Invalidate(sess.ID,
		cache.FamilyJobs, cache.FamilyJobDetail, cache.FamilyJobResponses,
		cache.FamilyWorkerResponses, cache.FamilyAssignments)
	return c.JSON(fiber.Map{"success": true, "message": "Response withdrawn"})
}

func (h *WorkerHandler) Assignments(c *fiber.Ctx) error {
	auth, sess := h.handle(c)
	if sess == nil {
		return fiber.ErrUnauthorized
	}

	assignments, err := h.ownAssignments(c.UserContext(), auth, sess.ID, sess.User.ID)
	if err != nil {
		return fail(c, err)
	}
	return okJSON(c, assignments)
}

type assignmentStatusRequest struct {
	Status             models.AssignmentStatus `json:"status"`
	Notes              *string                 `json:"notes,omitempty"`
	CancellationReason *string                 `json:"cancellation_reason,omitempty"`
}

// UpdateAssignmentStatus moves an assignment forward, stamping the matching
// timestamp. Completing an assignment also asks the backend to settle it;
// settlement failure is reported as a warning but never rolls the status
// back, the earnings caches are dropped either way so the next read shows
// whatever the backend recorded.
func (h *WorkerHandler) UpdateAssignmentStatus(c *fiber.Ctx) error {
	auth, sess := h.handle(c)
	if sess == nil {
		return fiber.ErrUnauthorized
	}
	id, err := c.ParamsInt("id")
	if err != nil {
		return badRequest(c, "invalid assignment id")
	}

	var req assignmentStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	ctx := c.UserContext()
	current, err := h.API.GetAssignment(ctx, auth, id)
	if err != nil {
		return fail(c, err)
	}
	if !current.Status.CanTransition(req.Status) {
		return badRequest(c, "Cannot change assignment status from "+string(current.Status)+" to "+string(req.Status))
	}

	now := time.Now().UTC().Format(time.RFC3339)
	data := models.UpdateAssignmentData{
		Status:             &req.Status,
		Notes:              req.Notes,
		CancellationReason: req.CancellationReason,
	}
	switch req.Status {
	case models.AssignmentStatusStarted:
		data.StartedAt = &now
	case models.AssignmentStatusCompleted:
		data.CompletedAt = &now
	case models.AssignmentStatusCancelled:
		data.CancelledAt = &now
	}

	assignment, err := h.API.UpdateAssignment(ctx, auth, id, data)
	if err != nil {
		return fail(c, err)
	}
	h.Cache.Invalidate(sess.ID, cache.FamilyAssignments, cache.FamilyJobs, cache.FamilyJobDetail)

	var warning string
	if req.Status == models.AssignmentStatusCompleted {
		if _, err := h.API.CreateTransaction(ctx, auth, assignment.ID); err != nil {
			h.Log.Warn("transaction create failed after completion",
				"assignment_id", assignment.ID, "error", err)
			warning = "Assignment completed but payment record creation failed"
		}
		h.Cache.Invalidate(sess.ID,
			cache.FamilyEarnings, cache.FamilyTransactions, cache.FamilyEarningsSummary)
	}

	body := fiber.Map{"success": true, "data": assignment}
	if warning != "" {
		body["warning"] = warning
	}
	return c.JSON(body)
}

// Earnings returns the worker's earnings, transaction history and summary
// in one payload, each cached independently.
func (h *WorkerHandler) Earnings(c *fiber.Ctx) error {
	auth, sess := h.handle(c)
	if sess == nil {
		return fiber.ErrUnauthorized
	}
	ctx := c.UserContext()

	earnings, err := cache.Fetch(ctx, h.Cache,
		cache.Key(sess.ID, cache.FamilyEarnings, nil),
		cache.TTL(cache.FamilyEarnings),
		func(ctx context.Context) ([]models.Earning, error) {
			return h.API.Earnings(ctx, auth)
		})
	if err != nil {
		return fail(c, err)
	}

	transactions, err := cache.Fetch(ctx, h.Cache,
		cache.Key(sess.ID, cache.FamilyTransactions, nil),
		cache.TTL(cache.FamilyTransactions),
		func(ctx context.Context) ([]models.Transaction, error) {
			return h.API.Transactions(ctx, auth)
		})
	if err != nil {
		return fail(c, err)
	}

	summary, err := cache.Fetch(ctx, h.Cache,
		cache.Key(sess.ID, cache.FamilyEarningsSummary, nil),
		cache.TTL(cache.FamilyEarningsSummary),
		func(ctx context.Context) (models.EarningsSummary, error) {
			return h.API.EarningsSummary(ctx, auth)
		})
	if err != nil {
		return fail(c, err)
	}

	return okJSON(c, fiber.Map{
		"earnings":     earnings,
		"transactions": transactions,
		"summary":      summary,
	})
}
