package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/kaamkaro/portal/internal/models"
)

func clampRating(v int) int {
	if v < 1 {
		return 1
	}
	if v > 5 {
		return 5
	}
	return v
}

// sanitizeRatingPayload clamps the overall rating and each provided
// sub-rating into [1,5]. A sub-rating below 1 means "not provided" and is
// omitted rather than sent as an invalid value.
func sanitizeRatingPayload(d models.CreateRatingData) map[string]any {
	payload := map[string]any{
		"assignment":   d.Assignment,
		"ratee":        d.Ratee,
		"rating_type":  d.RatingType,
		"rating":       clampRating(d.Rating),
		"review":       d.Review,
		"is_anonymous": d.IsAnonymous,
	}
	for key, v := range map[string]int{
		"quality_rating":         d.QualityRating,
		"communication_rating":   d.CommunicationRating,
		"punctuality_rating":     d.PunctualityRating,
		"professionalism_rating": d.ProfessionalismRating,
	} {
		if v >= 1 {
			payload[key] = clampRating(v)
		}
	}
	return payload
}

func (c *Client) ListRatings(ctx context.Context, auth TokenSource, filters models.RatingFilters) ([]models.Rating, error) {
	q := url.Values{}
	if filters.Assignment != 0 {
		q.Set("assignment", strconv.Itoa(filters.Assignment))
	}
	if filters.Ratee != 0 {
		q.Set("ratee", strconv.Itoa(filters.Ratee))
	}
	if filters.Rater != 0 {
		q.Set("rater", strconv.Itoa(filters.Rater))
	}
	if filters.Type != "" {
		q.Set("type", filters.Type)
	}

	status, body, err := c.do(ctx, auth, http.MethodGet, "/ratings/", q, nil)
	if err != nil {
		return nil, err
	}
	if !ok(status) {
		return nil, c.apiError(status, body, "Failed to fetch ratings")
	}
	return decodeList[models.Rating](c, "ratings", body), nil
}

func (c *Client) CreateRating(ctx context.Context, auth TokenSource, data models.CreateRatingData) (models.Rating, error) {
	status, body, err := c.do(ctx, auth, http.MethodPost, "/ratings/", nil, sanitizeRatingPayload(data))
	if err != nil {
		return models.Rating{}, err
	}
	if !ok(status) {
		return models.Rating{}, c.apiError(status, body, "Failed to create rating")
	}
	return decodeInto[models.Rating](body, "Failed to create rating")
}

// UpdateRating patches an existing rating, applying the same clamp/omit
// sanitization to whichever fields are present.
func (c *Client) UpdateRating(ctx context.Context, auth TokenSource, ratingID int, fields map[string]any) (models.Rating, error) {
	payload := make(map[string]any, len(fields))
	for key, v := range fields {
		switch key {
		case "rating":
			if n, isInt := v.(int); isInt {
				payload[key] = clampRating(n)
				continue
			}
		case "quality_rating", "communication_rating", "punctuality_rating", "professionalism_rating":
			if n, isInt := v.(int); isInt {
				if n < 1 {
					continue
				}
				payload[key] = clampRating(n)
				continue
			}
		}
		payload[key] = v
	}

	status, body, err := c.do(ctx, auth, http.MethodPatch, fmt.Sprintf("/ratings/%d/", ratingID), nil, payload)
	if err != nil {
		return models.Rating{}, err
	}
	if !ok(status) {
		return models.Rating{}, c.apiError(status, body, "Failed to update rating")
	}
	return decodeInto[models.Rating](body, "Failed to update rating")
}

func (c *Client) DeleteRating(ctx context.Context, auth TokenSource, ratingID int) error {
	status, body, err := c.do(ctx, auth, http.MethodDelete, fmt.Sprintf("/ratings/%d/", ratingID), nil, nil)
	if err != nil {
		return err
	}
	if !ok(status) {
		return c.apiError(status, body, "Failed to delete rating")
	}
	return nil
}

func (c *Client) MarkRatingHelpful(ctx context.Context, auth TokenSource, ratingID int) error {
	payload := map[string]int{"rating": ratingID}
	status, body, err := c.do(ctx, auth, http.MethodPost, "/ratings/helpful/", nil, payload)
	if err != nil {
		return err
	}
	if !ok(status) {
		return c.apiError(status, body, "Failed to mark rating as helpful")
	}
	return nil
}

func (c *Client) RemoveRatingHelpful(ctx context.Context, auth TokenSource, ratingID int) error {
	status, body, err := c.do(ctx, auth, http.MethodDelete, fmt.Sprintf("/ratings/%d/helpful/", ratingID), nil, nil)
	if err != nil {
		return err
	}
	if !ok(status) {
		return c.apiError(status, body, "Failed to remove helpful vote")
	}
	return nil
}

func (c *Client) UserRatings(ctx context.Context, auth TokenSource, userID int) ([]models.RatingListItem, error) {
	status, body, err := c.do(ctx, auth, http.MethodGet, fmt.Sprintf("/users/%d/ratings/", userID), nil, nil)
	if err != nil {
		return nil, err
	}
	if !ok(status) {
		return nil, c.apiError(status, body, "Failed to fetch user ratings")
	}
	return decodeList[models.RatingListItem](c, "user ratings", body), nil
}

func (c *Client) UserRatingSummary(ctx context.Context, auth TokenSource, userID int) (models.RatingSummary, error) {
	status, body, err := c.do(ctx, auth, http.MethodGet, fmt.Sprintf("/users/%d/rating-summary/", userID), nil, nil)
	if err != nil {
		return models.RatingSummary{}, err
	}
	if !ok(status) {
		return models.RatingSummary{}, c.apiError(status, body, "Failed to fetch rating summary")
	}
	return decodeInto[models.RatingSummary](body, "Failed to fetch rating summary")
}

func (c *Client) AssignmentRatings(ctx context.Context, auth TokenSource, assignmentID int) ([]models.Rating, error) {
	status, body, err := c.do(ctx, auth, http.MethodGet, fmt.Sprintf("/assignments/%d/ratings/", assignmentID), nil, nil)
	if err != nil {
		return nil, err
	}
	if !ok(status) {
		return nil, c.apiError(status, body, "Failed to fetch assignment ratings")
	}
	return decodeList[models.Rating](c, "assignment ratings", body), nil
}

// CanRate is the server-side pre-flight confirming a rating may legally be
// submitted for the assignment by the calling user.
func (c *Client) CanRate(ctx context.Context, auth TokenSource, assignmentID int) (models.CanRateResult, error) {
	status, body, err := c.do(ctx, auth, http.MethodPost, fmt.Sprintf("/assignments/%d/can-rate/", assignmentID), nil, nil)
	if err != nil {
		return models.CanRateResult{}, err
	}
	if !ok(status) {
		return models.CanRateResult{}, c.apiError(status, body, "Failed to check rating eligibility")
	}
	return decodeInto[models.CanRateResult](body, "Failed to check rating eligibility")
}
