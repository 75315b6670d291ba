package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kaamkaro/portal/internal/models"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(time.Hour)
	sess := &Session{
		ID:     "s1",
		User:   models.User{ID: 7, Email: "a@b.c", UserType: models.UserTypeWorker},
		Tokens: models.AuthTokens{Access: "acc", Refresh: "ref"},
	}
	if err := store.Save(context.Background(), sess); err != nil {
		t.Fatal(err)
	}

	got, err := store.Get(context.Background(), "s1")
	if err != nil {
		t.Fatal(err)
	}
	if got.User.ID != 7 || got.Tokens.Refresh != "ref" {
		t.Fatalf("round trip lost data: %+v", got)
	}

	if err := store.Delete(context.Background(), "s1"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get(context.Background(), "s1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(-time.Second)
	if err := store.Save(context.Background(), &Session{ID: "s1"}); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get(context.Background(), "s1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected expired session to be gone, got %v", err)
	}
}

func TestMemoryStoreGetUnknown(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(time.Hour)
	if _, err := store.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestHandleUpdateTokensWritesThrough(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(time.Hour)
	sess := &Session{ID: "s1", Tokens: models.AuthTokens{Access: "old", Refresh: "old-r"}}
	if err := store.Save(context.Background(), sess); err != nil {
		t.Fatal(err)
	}

	h := NewHandle(sess, store)
	if err := h.UpdateTokens(context.Background(), models.AuthTokens{Access: "new", Refresh: "new-r"}); err != nil {
		t.Fatal(err)
	}

	if h.AccessToken() != "new" || h.RefreshToken() != "new-r" {
		t.Fatal("handle not updated in memory")
	}
	persisted, err := store.Get(context.Background(), "s1")
	if err != nil {
		t.Fatal(err)
	}
	if persisted.Tokens.Access != "new" {
		t.Fatalf("rotation not persisted: %+v", persisted.Tokens)
	}
}

func TestHandleClearTokensWritesThrough(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(time.Hour)
	sess := &Session{ID: "s1", Tokens: models.AuthTokens{Access: "a", Refresh: "r"}}
	if err := store.Save(context.Background(), sess); err != nil {
		t.Fatal(err)
	}

	h := NewHandle(sess, store)
	if err := h.ClearTokens(context.Background()); err != nil {
		t.Fatal(err)
	}

	persisted, err := store.Get(context.Background(), "s1")
	if err != nil {
		t.Fatal(err)
	}
	if !persisted.Tokens.Empty() {
		t.Fatalf("tokens should be cleared in the store: %+v", persisted.Tokens)
	}
}
