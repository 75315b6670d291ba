package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/kaamkaro/portal/internal/models"
)

var ErrNotFound = errors.New("session not found")

// Session is one signed-in portal user: identity, cached profile and the
// upstream token pair. It is the only durable client-side state the portal
// keeps, mirroring the browser's local storage.
type Session struct {
	ID      string            `json:"id"`
	User    models.User       `json:"user"`
	Profile json.RawMessage   `json:"profile,omitempty"`
	Tokens  models.AuthTokens `json:"tokens"`
}

// Store persists sessions. Implementations: Redis for deployment, memory
// for tests and Redis-less development.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

// Handle binds a session to its store so the upstream transport can swap or
// clear the token pair mid-request (silent refresh). Reads and writes go
// through one mutex; interleavings across requests resolve last-write-wins.
type Handle struct {
	mu    sync.Mutex
	sess  *Session
	store Store
}

func NewHandle(s *Session, store Store) *Handle {
	return &Handle{sess: s, store: store}
}

func (h *Handle) Session() *Session { return h.sess }

func (h *Handle) AccessToken() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sess.Tokens.Access
}

func (h *Handle) RefreshToken() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sess.Tokens.Refresh
}

func (h *Handle) UpdateTokens(ctx context.Context, t models.AuthTokens) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sess.Tokens = t
	return h.store.Save(ctx, h.sess)
}

func (h *Handle) ClearTokens(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sess.Tokens = models.AuthTokens{}
	return h.store.Save(ctx, h.sess)
}
