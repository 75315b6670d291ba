package cache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

func testCache() *Cache {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestKeyCanonicalizesFilters(t *testing.T) {
	t.Parallel()

	a := Key("s1", FamilyJobs, map[string]string{"city": "Pune", "status": "open"})
	b := Key("s1", FamilyJobs, map[string]string{"status": "open", "city": "Pune"})
	if a != b {
		t.Fatalf("equal filter sets produced different keys: %q vs %q", a, b)
	}
	if a == Key("s2", FamilyJobs, map[string]string{"city": "Pune", "status": "open"}) {
		t.Fatal("keys must be session scoped")
	}
	if a == Key("s1", FamilyJobs, map[string]string{"city": "Pune"}) {
		t.Fatal("different filters must produce different keys")
	}
}

func TestKeyDropsEmptyFilterValues(t *testing.T) {
	t.Parallel()

	a := Key("s1", FamilyJobs, map[string]string{"city": "", "status": "open"})
	b := Key("s1", FamilyJobs, map[string]string{"status": "open"})
	if a != b {
		t.Fatalf("empty filter values should be ignored: %q vs %q", a, b)
	}
}

func TestGetOrFetchServesFreshValueWithoutRefetch(t *testing.T) {
	t.Parallel()

	c := testCache()
	calls := 0
	fetch := func(ctx context.Context) (any, error) {
		calls++
		return "value", nil
	}

	key := Key("s1", FamilyJobs, nil)
	for i := 0; i < 3; i++ {
		v, err := c.GetOrFetch(context.Background(), key, time.Minute, fetch)
		if err != nil || v != "value" {
			t.Fatalf("unexpected result: %v, %v", v, err)
		}
	}
	if calls != 1 {
		t.Fatalf("expected one upstream fetch, got %d", calls)
	}
}

func TestGetOrFetchRefetchesAfterExpiry(t *testing.T) {
	t.Parallel()

	c := testCache()
	calls := 0
	key := Key("s1", FamilyJobs, nil)
	fetch := func(ctx context.Context) (any, error) {
		calls++
		return calls, nil
	}

	if _, err := c.GetOrFetch(context.Background(), key, -time.Second, fetch); err != nil {
		t.Fatal(err)
	}
	v, err := c.GetOrFetch(context.Background(), key, time.Minute, fetch)
	if err != nil {
		t.Fatal(err)
	}
	if v != 2 {
		t.Fatalf("expected refetch after expiry, got %v", v)
	}
}

func TestGetOrFetchRetriesTransientErrors(t *testing.T) {
	t.Parallel()

	c := testCache()
	calls := 0
	v, err := c.GetOrFetch(context.Background(), Key("s1", FamilyJobs, nil), time.Minute, func(ctx context.Context) (any, error) {
		calls++
		if calls < 3 {
			return nil, errors.New("connection reset")
		}
		return "recovered", nil
	})
	if err != nil || v != "recovered" {
		t.Fatalf("expected recovery on third attempt: %v, %v", v, err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestGetOrFetchGivesUpAfterThreeAttempts(t *testing.T) {
	t.Parallel()

	c := testCache()
	calls := 0
	_, err := c.GetOrFetch(context.Background(), Key("s1", FamilyJobs, nil), time.Minute, func(ctx context.Context) (any, error) {
		calls++
		return nil, errors.New("still down")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestGetOrFetchDoesNotRetryAuthErrors(t *testing.T) {
	t.Parallel()

	for _, msg := range []string{"Authentication failed", "No active account found with the given credentials"} {
		c := testCache()
		calls := 0
		_, err := c.GetOrFetch(context.Background(), Key("s1", FamilyJobs, nil), time.Minute, func(ctx context.Context) (any, error) {
			calls++
			return nil, errors.New(msg)
		})
		if err == nil {
			t.Fatal("expected error")
		}
		if calls != 1 {
			t.Fatalf("auth error %q retried %d times", msg, calls)
		}
	}
}

func TestInvalidateDropsWholeFamilyForOneSession(t *testing.T) {
	t.Parallel()

	c := testCache()
	c.Put(Key("s1", FamilyJobs, nil), time.Minute, "all")
	c.Put(Key("s1", FamilyJobs, map[string]string{"city": "Pune"}), time.Minute, "pune")
	c.Put(Key("s1", FamilyProfile, nil), time.Minute, "profile")
	c.Put(Key("s2", FamilyJobs, nil), time.Minute, "other session")

	c.Invalidate("s1", FamilyJobs)

	calls := 0
	refetch := func(ctx context.Context) (any, error) { calls++; return "fresh", nil }
	c.GetOrFetch(context.Background(), Key("s1", FamilyJobs, nil), time.Minute, refetch)
	c.GetOrFetch(context.Background(), Key("s1", FamilyJobs, map[string]string{"city": "Pune"}), time.Minute, refetch)
	if calls != 2 {
		t.Fatalf("expected both jobs keys dropped, refetched %d", calls)
	}

	if v, _ := c.GetOrFetch(context.Background(), Key("s1", FamilyProfile, nil), time.Minute, refetch); v != "profile" {
		t.Fatalf("profile family should survive jobs invalidation, got %v", v)
	}
	if v, _ := c.GetOrFetch(context.Background(), Key("s2", FamilyJobs, nil), time.Minute, refetch); v != "other session" {
		t.Fatalf("other session should be untouched, got %v", v)
	}
}

func TestDropSessionClearsEverything(t *testing.T) {
	t.Parallel()

	c := testCache()
	c.Put(Key("s1", FamilyJobs, nil), time.Minute, "jobs")
	c.Put(Key("s1", FamilyProfile, nil), time.Minute, "profile")
	c.Put(Key("s2", FamilyJobs, nil), time.Minute, "keep")

	c.DropSession("s1")

	calls := 0
	refetch := func(ctx context.Context) (any, error) { calls++; return nil, nil }
	c.GetOrFetch(context.Background(), Key("s1", FamilyJobs, nil), time.Minute, refetch)
	c.GetOrFetch(context.Background(), Key("s1", FamilyProfile, nil), time.Minute, refetch)
	if calls != 2 {
		t.Fatalf("expected both s1 keys dropped, refetched %d", calls)
	}
	if v, _ := c.GetOrFetch(context.Background(), Key("s2", FamilyJobs, nil), time.Minute, refetch); v != "keep" {
		t.Fatalf("s2 should survive, got %v", v)
	}
}

func TestFetchTyped(t *testing.T) {
	t.Parallel()

	c := testCache()
	got, err := Fetch(context.Background(), c, Key("s1", FamilyJobs, nil), time.Minute, func(ctx context.Context) ([]int, error) {
		return []int{1, 2}, nil
	})
	if err != nil || len(got) != 2 {
		t.Fatalf("unexpected: %v, %v", got, err)
	}

	_, err = Fetch(context.Background(), c, Key("s1", FamilyProfile, nil), time.Minute, func(ctx context.Context) (string, error) {
		return "", errors.New("boom")
	})
	if err == nil {
		t.Fatal("expected error passthrough")
	}
}
