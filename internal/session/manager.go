package session

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/kaamkaro/portal/internal/models"
	"github.com/kaamkaro/portal/internal/upstream"
)

// Manager owns the login/register/logout flows: it drives the upstream auth
// endpoints and keeps the session store in step. Construct one per process
// and inject it; there are no package-level singletons.
type Manager struct {
	API   *upstream.Client
	Store Store
	Log   *slog.Logger
}

func NewManager(api *upstream.Client, store Store, log *slog.Logger) *Manager {
	return &Manager{API: api, Store: store, Log: log}
}

// Login authenticates upstream and, on success, persists the token pair and
// caches the current user and profile in a fresh session. Upstream failures
// surface the server's message verbatim; nothing is retried.
func (m *Manager) Login(ctx context.Context, creds models.LoginCredentials) (*Session, error) {
	resp, err := m.API.Login(ctx, creds)
	if err != nil {
		return nil, err
	}
	return m.establish(ctx, resp)
}

// Register mirrors the login success path; validation failures arrive
// already assembled per field by the upstream client.
func (m *Manager) Register(ctx context.Context, data models.RegisterData) (*Session, error) {
	resp, err := m.API.Register(ctx, data)
	if err != nil {
		return nil, err
	}
	return m.establish(ctx, resp)
}

func (m *Manager) establish(ctx context.Context, resp models.AuthResponse) (*Session, error) {
	sess := &Session{
		ID:     uuid.NewString(),
		User:   resp.User,
		Tokens: resp.Tokens,
	}
	if err := m.Store.Save(ctx, sess); err != nil {
		return nil, err
	}

	current, err := m.API.CurrentUser(ctx, NewHandle(sess, m.Store))
	if err != nil {
		if delErr := m.Store.Delete(ctx, sess.ID); delErr != nil {
			m.Log.Error("failed to discard half-established session", "error", delErr)
		}
		return nil, err
	}
	sess.User = current.User
	sess.Profile = current.Profile
	if err := m.Store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Logout invalidates the refresh token upstream on a best-effort basis and
// then unconditionally drops the session.
func (m *Manager) Logout(ctx context.Context, sess *Session) {
	if sess.Tokens.Refresh != "" {
		if err := m.API.Logout(ctx, NewHandle(sess, m.Store)); err != nil {
			m.Log.Error("upstream logout failed", "error", err)
		}
	}
	if err := m.Store.Delete(ctx, sess.ID); err != nil {
		m.Log.Error("failed to delete session", "error", err)
	}
}

// Refresh re-fetches {user, profile} and updates the cached copies.
func (m *Manager) Refresh(ctx context.Context, sess *Session) (*Session, error) {
	current, err := m.API.CurrentUser(ctx, NewHandle(sess, m.Store))
	if err != nil {
		return nil, err
	}
	sess.User = current.User
	sess.Profile = current.Profile
	if err := m.Store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}
