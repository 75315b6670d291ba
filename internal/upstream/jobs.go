package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/kaamkaro/portal/internal/models"
)

// ListJobs returns jobs matching the filters, normalized from either list
// shape the backend emits.
func (c *Client) ListJobs(ctx context.Context, auth TokenSource, filters models.JobFilters) ([]models.Job, error) {
	q := url.Values{}
	if filters.Category != "" {
		q.Set("category", filters.Category)
	}
	if filters.City != "" {
		q.Set("city", filters.City)
	}
	if filters.Urgency != "" {
		q.Set("urgency", filters.Urgency)
	}
	if filters.Status != "" {
		q.Set("status", filters.Status)
	}
	if filters.Customer != 0 {
		q.Set("customer", strconv.Itoa(filters.Customer))
	}

	status, body, err := c.do(ctx, auth, http.MethodGet, "/jobs/", q, nil)
	if err != nil {
		return nil, err
	}
	if !ok(status) {
		return nil, c.apiError(status, body, "Failed to fetch jobs")
	}
	return decodeList[models.Job](c, "jobs", body), nil
}

func (c *Client) GetJob(ctx context.Context, auth TokenSource, id int) (models.Job, error) {
	status, body, err := c.do(ctx, auth, http.MethodGet, fmt.Sprintf("/jobs/%d/", id), nil, nil)
	if err != nil {
		return models.Job{}, err
	}
	if !ok(status) {
		return models.Job{}, c.apiError(status, body, "Failed to fetch job")
	}
	return decodeInto[models.Job](body, "Failed to fetch job")
}

func (c *Client) CreateJob(ctx context.Context, auth TokenSource, data models.CreateJobData) (models.Job, error) {
	status, body, err := c.do(ctx, auth, http.MethodPost, "/jobs/", nil, data)
	if err != nil {
		return models.Job{}, err
	}
	if !ok(status) {
		return models.Job{}, c.apiError(status, body, "Failed to create job")
	}
	return decodeInto[models.Job](body, "Failed to create job")
}

func (c *Client) UpdateJob(ctx context.Context, auth TokenSource, id int, data models.UpdateJobData) (models.Job, error) {
	status, body, err := c.do(ctx, auth, http.MethodPatch, fmt.Sprintf("/jobs/%d/", id), nil, data)
	if err != nil {
		return models.Job{}, err
	}
	if !ok(status) {
		return models.Job{}, c.apiError(status, body, "Failed to update job")
	}
	return decodeInto[models.Job](body, "Failed to update job")
}

func (c *Client) DeleteJob(ctx context.Context, auth TokenSource, id int) error {
	status, body, err := c.do(ctx, auth, http.MethodDelete, fmt.Sprintf("/jobs/%d/", id), nil, nil)
	if err != nil {
		return err
	}
	if !ok(status) {
		return c.apiError(status, body, "Failed to delete job")
	}
	return nil
}

func (c *Client) UpdateJobStatus(ctx context.Context, auth TokenSource, id int, jobStatus models.JobStatus) (models.Job, error) {
	payload := map[string]models.JobStatus{"status": jobStatus}
	status, body, err := c.do(ctx, auth, http.MethodPost, fmt.Sprintf("/jobs/%d/status/", id), nil, payload)
	if err != nil {
		return models.Job{}, err
	}
	if !ok(status) {
		return models.Job{}, c.apiError(status, body, "Failed to update job status")
	}
	return decodeInto[models.Job](body, "Failed to update job status")
}

func (c *Client) ListJobResponses(ctx context.Context, auth TokenSource, jobID int) ([]models.JobResponse, error) {
	status, body, err := c.do(ctx, auth, http.MethodGet, fmt.Sprintf("/jobs/%d/responses/", jobID), nil, nil)
	if err != nil {
		return nil, err
	}
	if !ok(status) {
		return nil, c.apiError(status, body, "Failed to fetch job responses")
	}
	return decodeList[models.JobResponse](c, "job responses", body), nil
}

// WorkerResponses lists the calling worker's own responses across all jobs.
func (c *Client) WorkerResponses(ctx context.Context, auth TokenSource) ([]models.JobResponse, error) {
	status, body, err := c.do(ctx, auth, http.MethodGet, "/worker/responses/", nil, nil)
	if err != nil {
		return nil, err
	}
	if !ok(status) {
		return nil, c.apiError(status, body, "Failed to fetch worker job responses")
	}
	return decodeList[models.JobResponse](c, "worker responses", body), nil
}

func (c *Client) CreateJobResponse(ctx context.Context, auth TokenSource, jobID int, data models.CreateJobResponseData) (models.JobResponse, error) {
	status, body, err := c.do(ctx, auth, http.MethodPost, fmt.Sprintf("/jobs/%d/responses/", jobID), nil, data)
	if err != nil {
		return models.JobResponse{}, err
	}
	if !ok(status) {
		return models.JobResponse{}, c.apiError(status, body, "Failed to create job response")
	}
	return decodeInto[models.JobResponse](body, "Failed to create job response")
}

func (c *Client) UpdateJobResponse(ctx context.Context, auth TokenSource, responseID int, data models.UpdateJobResponseData) (models.JobResponse, error) {
	status, body, err := c.do(ctx, auth, http.MethodPatch, fmt.Sprintf("/responses/%d/", responseID), nil, data)
	if err != nil {
		return models.JobResponse{}, err
	}
	if !ok(status) {
		return models.JobResponse{}, c.apiError(status, body, "Failed to update job response")
	}
	return decodeInto[models.JobResponse](body, "Failed to update job response")
}

func (c *Client) DeleteJobResponse(ctx context.Context, auth TokenSource, responseID int) error {
	status, body, err := c.do(ctx, auth, http.MethodDelete, fmt.Sprintf("/responses/%d/", responseID), nil, nil)
	if err != nil {
		return err
	}
	if !ok(status) {
		return c.apiError(status, body, "Failed to delete job response")
	}
	return nil
}

// AcceptJobResponse locks a worker in; the backend creates the assignment
// and returns it.
func (c *Client) AcceptJobResponse(ctx context.Context, auth TokenSource, responseID int) (models.Assignment, error) {
	status, body, err := c.do(ctx, auth, http.MethodPost, fmt.Sprintf("/responses/%d/accept/", responseID), nil, nil)
	if err != nil {
		return models.Assignment{}, err
	}
	if !ok(status) {
		return models.Assignment{}, c.apiError(status, body, "Failed to accept job response")
	}
	return decodeInto[models.Assignment](body, "Failed to accept job response")
}

func (c *Client) ListAssignments(ctx context.Context, auth TokenSource, filters models.AssignmentFilters) ([]models.Assignment, error) {
	q := url.Values{}
	if filters.Customer != 0 {
		q.Set("customer", strconv.Itoa(filters.Customer))
	}
	if filters.Worker != 0 {
		q.Set("worker", strconv.Itoa(filters.Worker))
	}
	if filters.Status != "" {
		q.Set("status", filters.Status)
	}

	status, body, err := c.do(ctx, auth, http.MethodGet, "/assignments/", q, nil)
	if err != nil {
		return nil, err
	}
	if !ok(status) {
		return nil, c.apiError(status, body, "Failed to fetch assignments")
	}
	return decodeList[models.Assignment](c, "assignments", body), nil
}

func (c *Client) GetAssignment(ctx context.Context, auth TokenSource, id int) (models.Assignment, error) {
	status, body, err := c.do(ctx, auth, http.MethodGet, fmt.Sprintf("/assignments/%d/", id), nil, nil)
	if err != nil {
		return models.Assignment{}, err
	}
	if !ok(status) {
		return models.Assignment{}, c.apiError(status, body, "Failed to fetch assignment")
	}
	return decodeInto[models.Assignment](body, "Failed to fetch assignment")
}

func (c *Client) UpdateAssignment(ctx context.Context, auth TokenSource, id int, data models.UpdateAssignmentData) (models.Assignment, error) {
	status, body, err := c.do(ctx, auth, http.MethodPatch, fmt.Sprintf("/assignments/%d/", id), nil, data)
	if err != nil {
		return models.Assignment{}, err
	}
	if !ok(status) {
		return models.Assignment{}, c.apiError(status, body, "Failed to update assignment")
	}
	return decodeInto[models.Assignment](body, "Failed to update assignment")
}
