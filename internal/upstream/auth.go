package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/kaamkaro/portal/internal/models"
)

// Login exchanges credentials for a token pair. Failures surface the
// server's message verbatim; there is no retry.
func (c *Client) Login(ctx context.Context, creds models.LoginCredentials) (models.AuthResponse, error) {
	status, body, err := c.do(ctx, nil, http.MethodPost, "/auth/login/", nil, creds)
	if err != nil {
		return models.AuthResponse{}, err
	}
	if !ok(status) {
		return models.AuthResponse{}, c.apiError(status, body, "Login failed")
	}
	return decodeInto[models.AuthResponse](body, "Login failed")
}

// Register creates an account. Field-level validation failures (email,
// username, password, phone_number) are assembled per field; anything else
// falls back to the server's message.
func (c *Client) Register(ctx context.Context, data models.RegisterData) (models.AuthResponse, error) {
	status, body, err := c.do(ctx, nil, http.MethodPost, "/auth/register/", nil, data)
	if err != nil {
		return models.AuthResponse{}, err
	}
	if !ok(status) {
		return models.AuthResponse{}, registrationError(c, status, body)
	}
	return decodeInto[models.AuthResponse](body, "Registration failed")
}

func registrationError(c *Client, status int, body []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return c.apiError(status, body, "Registration failed")
	}

	var messages []string
	for _, f := range []struct{ key, label string }{
		{"email", "Email"},
		{"username", "Username"},
		{"password", "Password"},
		{"phone_number", "Phone"},
	} {
		if v, present := raw[f.key]; present {
			if text := flattenFieldValue(v); text != "" {
				messages = append(messages, f.label+": "+text)
			}
		}
	}
	if len(messages) > 0 {
		return &APIError{status, strings.Join(messages, ". ")}
	}
	return c.apiError(status, body, "Registration failed")
}

// Logout asks the server to invalidate the refresh token. Callers treat
// failures as non-fatal; local state is cleared regardless.
func (c *Client) Logout(ctx context.Context, auth TokenSource) error {
	refresh := auth.RefreshToken()
	if refresh == "" {
		return nil
	}
	payload := map[string]string{"refresh_token": refresh}
	status, body, err := c.do(ctx, auth, http.MethodPost, "/auth/logout/", nil, payload)
	if err != nil {
		return err
	}
	if !ok(status) {
		return c.apiError(status, body, "Logout failed")
	}
	return nil
}

// CurrentUser fetches the {user, profile} pair for the session.
func (c *Client) CurrentUser(ctx context.Context, auth TokenSource) (models.CurrentUser, error) {
	status, body, err := c.do(ctx, auth, http.MethodGet, "/auth/profile/", nil, nil)
	if err != nil {
		return models.CurrentUser{}, err
	}
	if !ok(status) {
		return models.CurrentUser{}, c.apiError(status, body, "Failed to fetch user profile")
	}
	return decodeInto[models.CurrentUser](body, "Failed to fetch user profile")
}

// RefreshToken trades the refresh token for a new pair. It does not touch
// any TokenSource; the transport owns persisting the result.
func (c *Client) RefreshToken(ctx context.Context, refresh string) (models.AuthTokens, error) {
	if refresh == "" {
		return models.AuthTokens{}, errors.New("No refresh token available")
	}
	payload := map[string]string{"refresh": refresh}
	status, body, err := c.send(ctx, nil, http.MethodPost, "/auth/token/refresh/", nil, payload)
	if err != nil {
		return models.AuthTokens{}, err
	}
	if !ok(status) {
		return models.AuthTokens{}, errors.New("Token refresh failed")
	}
	return decodeInto[models.AuthTokens](body, "Token refresh failed")
}
