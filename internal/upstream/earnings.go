package upstream

import (
	"context"
	"net/http"

	"github.com/kaamkaro/portal/internal/models"
)

func (c *Client) Earnings(ctx context.Context, auth TokenSource) ([]models.Earning, error) {
	status, body, err := c.do(ctx, auth, http.MethodGet, "/earnings/", nil, nil)
	if err != nil {
		return nil, err
	}
	if !ok(status) {
		return nil, c.apiError(status, body, "Failed to fetch earnings")
	}
	return decodeList[models.Earning](c, "earnings", body), nil
}

func (c *Client) Transactions(ctx context.Context, auth TokenSource) ([]models.Transaction, error) {
	status, body, err := c.do(ctx, auth, http.MethodGet, "/transactions/", nil, nil)
	if err != nil {
		return nil, err
	}
	if !ok(status) {
		return nil, c.apiError(status, body, "Failed to fetch transactions")
	}
	return decodeList[models.Transaction](c, "transactions", body), nil
}

func (c *Client) EarningsSummary(ctx context.Context, auth TokenSource) (models.EarningsSummary, error) {
	status, body, err := c.do(ctx, auth, http.MethodGet, "/earnings/summary/", nil, nil)
	if err != nil {
		return models.EarningsSummary{}, err
	}
	if !ok(status) {
		return models.EarningsSummary{}, c.apiError(status, body, "Failed to fetch earnings summary")
	}
	return decodeInto[models.EarningsSummary](body, "Failed to fetch earnings summary")
}

// CreateTransaction asks the backend to settle a completed assignment. The
// financial record itself is created and owned upstream.
func (c *Client) CreateTransaction(ctx context.Context, auth TokenSource, assignmentID int) (models.Transaction, error) {
	payload := map[string]int{"assignment_id": assignmentID}
	status, body, err := c.do(ctx, auth, http.MethodPost, "/transactions/create/", nil, payload)
	if err != nil {
		return models.Transaction{}, err
	}
	if !ok(status) {
		return models.Transaction{}, c.apiError(status, body, "Failed to create transaction")
	}
	return decodeInto[models.Transaction](body, "Failed to create transaction")
}
