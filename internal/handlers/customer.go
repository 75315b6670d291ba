package handlers

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/kaamkaro/portal/internal/cache"
	"github.com/kaamkaro/portal/internal/lifecycle"
	"github.com/kaamkaro/portal/internal/models"
)

// CustomerHandler serves the customer portal: posting and editing jobs,
// reviewing worker responses, and the dashboard partition of jobs into
// active / in-progress / completed buckets.
type CustomerHandler struct {
	Deps
}

func NewCustomerHandler(deps Deps) *CustomerHandler {
	return &CustomerHandler{Deps: deps}
}

func (h *CustomerHandler) Routes(r fiber.Router) {
	r.Get("/dashboard", h.Dashboard)
	r.Post("/jobs", h.CreateJob)
	r.Patch("/jobs/:id", h.UpdateJob)
	r.Delete("/jobs/:id", h.DeleteJob)
	r.Post("/jobs/:id/cancel", h.CancelJob)
	r.Get("/jobs/:id/responses", h.JobResponses)
	r.Post("/responses/:id/accept", h.AcceptResponse)
}

// Dashboard cross-references the customer's jobs with their assignments;
// the buckets come from assignment existence and status, not job.status,
// which can lag upstream.
func (h *CustomerHandler) Dashboard(c *fiber.Ctx) error {
	auth, sess := h.handle(c)
	if sess == nil {
		return fiber.ErrUnauthorized
	}
	ctx := c.UserContext()

	jobs, err := cache.Fetch(ctx, h.Cache,
		cache.Key(sess.ID, cache.FamilyJobs, map[string]string{"customer": strconv.Itoa(sess.User.ID)}),
		cache.TTL(cache.FamilyJobs),
		func(ctx context.Context) ([]models.Job, error) {
			return h.API.ListJobs(ctx, auth, models.JobFilters{Customer: sess.User.ID})
		})
	if err != nil {
		return fail(c, err)
	}

	assignments, err := cache.Fetch(ctx, h.Cache,
		cache.Key(sess.ID, cache.FamilyAssignments, map[string]string{"customer": strconv.Itoa(sess.User.ID)}),
		cache.TTL(cache.FamilyAssignments),
		func(ctx context.Context) ([]models.Assignment, error) {
			return h.API.ListAssignments(ctx, auth, models.AssignmentFilters{Customer: sess.User.ID})
		})
	if err != nil {
		return fail(c, err)
	}

	buckets := lifecycle.PartitionCustomerJobs(jobs, assignments)
	return okJSON(c, fiber.Map{
		"active_jobs":      buckets.Active,
		"in_progress_jobs": buckets.InProgress,
		"completed_jobs":   buckets.Completed,
		"assignments":      assignments,
		"stats": fiber.Map{
			"active_count":      len(buckets.Active),
			"in_progress_count": len(buckets.InProgress),
			"completed_count":   len(buckets.Completed),
			"total_spent":       lifecycle.CompletedTotal(assignments),
		},
	})
}

func validateJobForm(data models.CreateJobData) (FieldErrors, string) {
	errs := FieldErrors{}
	if data.Title == "" {
		errs.Add("title", "Title is required")
	}
	if data.Description == "" {
		errs.Add("description", "Description is required")
	}
	if data.Category == "" {
		errs.Add("category", "Category is required")
	}
	if data.BudgetMin <= 0 || data.BudgetMax <= 0 {
		return errs, "Budget amounts must be greater than zero"
	}
	if data.BudgetMin >= data.BudgetMax {
		return errs, "Maximum budget must be greater than minimum budget"
	}
	return errs, ""
}

// CreateJob validates the form locally before any upstream call; a bad
// budget range never leaves the portal.
func (h *CustomerHandler) CreateJob(c *fiber.Ctx) error {
	auth, sess := h.handle(c)
	if sess == nil {
		return fiber.ErrUnauthorized
	}

	var data models.CreateJobData
	if err := c.BodyParser(&data); err != nil {
		return badRequest(c, "invalid body")
	}
	errs, msg := validateJobForm(data)
	if msg != "" {
		return badRequest(c, msg)
	}
	if len(errs) > 0 {
		return validationFail(c, errs)
	}

	job, err := h.API.CreateJob(c.UserContext(), auth, data)
	if err != nil {
		return fail(c, err)
	}

	// A new job can immediately acquire responses and assignments.
	h.Cache.Invalidate(sess.ID,
		cache.FamilyJobs, cache.FamilyJobDetail, cache.FamilyJobResponses, cache.FamilyAssignments)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": job})
}

func (h *CustomerHandler) UpdateJob(c *fiber.Ctx) error {
	auth, sess := h.handle(c)
	if sess == nil {
		return fiber.ErrUnauthorized
	}
	id, err := c.ParamsInt("id")
	if err != nil {
		return badRequest(c, "invalid job id")
	}

	var data models.UpdateJobData
	if err := c.BodyParser(&data); err != nil {
		return badRequest(c, "invalid body")
	}
	if data.BudgetMin != nil && data.BudgetMax != nil && *data.BudgetMin >= *data.BudgetMax {
		return badRequest(c, "Maximum budget must be greater than minimum budget")
	}

	job, err := h.API.UpdateJob(c.UserContext(), auth, id, data)
	if err != nil {
		return fail(c, err)
	}

	h.Cache.Invalidate(sess.ID, cache.FamilyJobs)
	h.Cache.Put(
		cache.Key(sess.ID, cache.FamilyJobDetail, map[string]string{"id": strconv.Itoa(job.ID)}),
		cache.TTL(cache.FamilyJobDetail), job)
	return okJSON(c, job)
}

func (h *CustomerHandler) DeleteJob(c *fiber.Ctx) error {
	auth, sess := h.handle(c)
	if sess == nil {
		return fiber.ErrUnauthorized
	}
	id, err := c.ParamsInt("id")
	if err != nil {
		return badRequest(c, "invalid job id")
	}

	if err := h.API.DeleteJob(c.UserContext(), auth, id); err != nil {
		return fail(c, err)
	}

	h.Cache.Invalidate(sess.ID, cache.FamilyJobs)
	h.Cache.InvalidateKey(cache.Key(sess.ID, cache.FamilyJobDetail, map[string]string{"id": strconv.Itoa(id)}))
	return c.JSON(fiber.Map{"success": true, "message": "Job deleted"})
}

func (h *CustomerHandler) CancelJob(c *fiber.Ctx) error {
	auth, sess := h.handle(c)
	if sess == nil {
		return fiber.ErrUnauthorized
	}
	id, err := c.ParamsInt("id")
	if err != nil {
		return badRequest(c, "invalid job id")
	}

	job, err := h.API.UpdateJobStatus(c.UserContext(), auth, id, models.JobStatusCancelled)
	if err != nil {
		return fail(c, err)
	}

	h.Cache.Invalidate(sess.ID, cache.FamilyJobs, cache.FamilyAssignments)
	h.Cache.Put(
		cache.Key(sess.ID, cache.FamilyJobDetail, map[string]string{"id": strconv.Itoa(job.ID)}),
		cache.TTL(cache.FamilyJobDetail), job)
	return okJSON(c, job)
}

func (h *CustomerHandler) JobResponses(c *fiber.Ctx) error {
	auth, sess := h.handle(c)
	if sess == nil {
		return fiber.ErrUnauthorized
	}
	id, err := c.ParamsInt("id")
	if err != nil {
		return badRequest(c, "invalid job id")
	}

	responses, err := cache.Fetch(c.UserContext(), h.Cache,
		cache.Key(sess.ID, cache.FamilyJobResponses, map[string]string{"job": strconv.Itoa(id)}),
		cache.TTL(cache.FamilyJobResponses),
		func(ctx context.Context) ([]models.JobResponse, error) {
			return h.API.ListJobResponses(ctx, auth, id)
		})
	if err != nil {
		return fail(c, err)
	}
	return okJSON(c, responses)
}

// AcceptResponse locks a worker in. The backend creates the assignment;
// every cached list the acceptance can affect is dropped in the same
// action.
func (h *CustomerHandler) AcceptResponse(c *fiber.Ctx) error {
	auth, sess := h.handle(c)
	if sess == nil {
		return fiber.ErrUnauthorized
	}
	id, err := c.ParamsInt("id")
	if err != nil {
		return badRequest(c, "invalid response id")
	}

	assignment, err := h.API.AcceptJobResponse(c.UserContext(), auth, id)
	if err != nil {
		return fail(c, err)
	}

	h.Cache.Invalidate(sess.ID,
		cache.FamilyJobs, cache.FamilyJobDetail, cache.FamilyJobResponses,
		cache.FamilyAssignments, cache.FamilyWorkerResponses)
	return okJSON(c, assignment)
}
