package upstream

import (
	"context"
	"fmt"
	"net/http"

	"github.com/kaamkaro/portal/internal/models"
)

func (c *Client) WorkerProfile(ctx context.Context, auth TokenSource) (models.WorkerProfile, error) {
	status, body, err := c.do(ctx, auth, http.MethodGet, "/auth/profile/worker/", nil, nil)
	if err != nil {
		return models.WorkerProfile{}, err
	}
	if !ok(status) {
		return models.WorkerProfile{}, c.apiError(status, body, "Failed to fetch worker profile")
	}
	return decodeInto[models.WorkerProfile](body, "Failed to fetch worker profile")
}

func (c *Client) UpdateWorkerProfile(ctx context.Context, auth TokenSource, data models.UpdateWorkerProfileData) (models.WorkerProfile, error) {
	status, body, err := c.do(ctx, auth, http.MethodPatch, "/auth/profile/worker/", nil, data)
	if err != nil {
		return models.WorkerProfile{}, err
	}
	if !ok(status) {
		return models.WorkerProfile{}, c.apiError(status, body, "Failed to update worker profile")
	}
	return decodeInto[models.WorkerProfile](body, "Failed to update worker profile")
}

func (c *Client) CustomerProfile(ctx context.Context, auth TokenSource) (models.CustomerProfile, error) {
	status, body, err := c.do(ctx, auth, http.MethodGet, "/auth/profile/customer/", nil, nil)
	if err != nil {
		return models.CustomerProfile{}, err
	}
	if !ok(status) {
		return models.CustomerProfile{}, c.apiError(status, body, "Failed to fetch customer profile")
	}
	return decodeInto[models.CustomerProfile](body, "Failed to fetch customer profile")
}

func (c *Client) UpdateCustomerProfile(ctx context.Context, auth TokenSource, data models.UpdateCustomerProfileData) (models.CustomerProfile, error) {
	status, body, err := c.do(ctx, auth, http.MethodPatch, "/auth/profile/customer/", nil, data)
	if err != nil {
		return models.CustomerProfile{}, err
	}
	if !ok(status) {
		return models.CustomerProfile{}, c.apiError(status, body, "Failed to update customer profile")
	}
	return decodeInto[models.CustomerProfile](body, "Failed to update customer profile")
}

// WorkerProfileByUserID is the public lookup used on worker cards.
func (c *Client) WorkerProfileByUserID(ctx context.Context, auth TokenSource, userID int) (models.WorkerLookup, error) {
	status, body, err := c.do(ctx, auth, http.MethodGet, fmt.Sprintf("/auth/profile/worker/%d/", userID), nil, nil)
	if err != nil {
		return models.WorkerLookup{}, err
	}
	if !ok(status) {
		return models.WorkerLookup{}, c.apiError(status, body, "Failed to fetch worker profile")
	}
	return decodeInto[models.WorkerLookup](body, "Failed to fetch worker profile")
}
