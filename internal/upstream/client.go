package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/kaamkaro/portal/internal/models"
)

// TokenSource supplies the bearer token pair for authenticated calls and
// lets the transport swap or clear it during a silent refresh. Nil means
// the call goes out unauthenticated.
type TokenSource interface {
	AccessToken() string
	RefreshToken() string
	UpdateTokens(ctx context.Context, t models.AuthTokens) error
	ClearTokens(ctx context.Context) error
}

// ErrAuthenticationFailed is returned when a 401 could not be recovered by
// the single refresh-and-retry attempt. The token pair has been cleared by
// the time callers see it.
var ErrAuthenticationFailed = errors.New("Authentication failed")

// Client is a typed wrapper over the KaamKaro REST API. It holds no state
// of its own; session tokens come in per call through a TokenSource.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Log     *slog.Logger
}

func NewClient(baseURL string, timeout time.Duration, log *slog.Logger) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
		Log:     log,
	}
}

// do issues one request, applying the 401 policy: exactly one refresh
// attempt using the stored refresh token, then one retry of the original
// request with the new credentials. A failed refresh clears the tokens and
// surfaces ErrAuthenticationFailed. There are no other retries here.
func (c *Client) do(ctx context.Context, auth TokenSource, method, path string, query url.Values, payload any) (int, []byte, error) {
	status, body, err := c.send(ctx, auth, method, path, query, payload)
	if err != nil {
		return 0, nil, err
	}

	if status == http.StatusUnauthorized && auth != nil {
		tokens, refreshErr := c.RefreshToken(ctx, auth.RefreshToken())
		if refreshErr != nil {
			if clearErr := auth.ClearTokens(ctx); clearErr != nil {
				c.Log.Error("failed to clear tokens after refresh failure", "error", clearErr)
			}
			return 0, nil, ErrAuthenticationFailed
		}
		if err := auth.UpdateTokens(ctx, tokens); err != nil {
			return 0, nil, err
		}
		return c.send(ctx, auth, method, path, query, payload)
	}

	return status, body, nil
}

func (c *Client) send(ctx context.Context, auth TokenSource, method, path string, query url.Values, payload any) (int, []byte, error) {
	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if auth != nil {
		if token := auth.AccessToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	return resp.StatusCode, body, nil
}

func ok(status int) bool { return status >= 200 && status < 300 }

// APIError is a non-2xx upstream response flattened to one message. The
// status code survives so the handler layer can tell a user-caused 4xx from
// an upstream outage.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string { return e.Message }

// apiError flattens an upstream error body into one human-readable message.
// JSON bodies contribute detail/error/message plus any field->messages
// validation map ("field: msg1, msg2"); anything else wraps the raw status
// and a bounded prefix of the text.
func (c *Client) apiError(status int, body []byte, fallback string) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		text := strings.TrimSpace(string(body))
		if len(text) > 200 {
			text = text[:200]
		}
		if text == "" {
			return &APIError{status, fmt.Sprintf("%s: %s", fallback, http.StatusText(status))}
		}
		return &APIError{status, fmt.Sprintf("%s: %d %s. %s", fallback, status, http.StatusText(status), text)}
	}

	var messages []string
	for _, key := range []string{"error", "detail", "message"} {
		if v, ok := raw[key]; ok {
			var s string
			if err := json.Unmarshal(v, &s); err == nil && s != "" {
				messages = append(messages, s)
			}
		}
	}

	fieldSource := raw
	if v, ok := raw["errors"]; ok {
		var nested map[string]json.RawMessage
		if err := json.Unmarshal(v, &nested); err == nil {
			fieldSource = nested
		}
	}
	var fields []string
	for field := range fieldSource {
		switch field {
		case "error", "detail", "message", "success", "errors":
			continue
		}
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		if text := flattenFieldValue(fieldSource[field]); text != "" {
			messages = append(messages, field+": "+text)
		}
	}

	if len(messages) == 0 {
		return &APIError{status, fallback}
	}
	return &APIError{status, strings.Join(messages, " | ")}
}

func flattenFieldValue(raw json.RawMessage) string {
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		parts := make([]string, 0, len(list))
		for _, item := range list {
			var s string
			if err := json.Unmarshal(item, &s); err == nil {
				parts = append(parts, s)
			} else {
				parts = append(parts, string(item))
			}
		}
		return strings.Join(parts, ", ")
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// decodeList tolerates the two list shapes the backend emits: a bare array
// or a paginated envelope with a results array. Anything else is logged as
// a warning and degraded to an empty slice rather than failing the caller.
func decodeList[T any](c *Client, resource string, body []byte) []T {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err == nil {
		if raw, ok := envelope["results"]; ok {
			var items []T
			if err := json.Unmarshal(raw, &items); err == nil {
				if items == nil {
					items = []T{}
				}
				return items
			}
		}
	} else {
		var items []T
		if err := json.Unmarshal(body, &items); err == nil {
			if items == nil {
				items = []T{}
			}
			return items
		}
	}

	c.Log.Warn("upstream returned unexpected list shape", "resource", resource)
	return []T{}
}

func decodeInto[T any](body []byte, fallback string) (T, error) {
	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		return out, fmt.Errorf("%s: failed to parse response: %w", fallback, err)
	}
	return out, nil
}
