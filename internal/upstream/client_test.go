package upstream

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kaamkaro/portal/internal/models"
)

type fakeTokens struct {
	mu      sync.Mutex
	tokens  models.AuthTokens
	cleared bool
}

func (f *fakeTokens) AccessToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tokens.Access
}

func (f *fakeTokens) RefreshToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tokens.Refresh
}

func (f *fakeTokens) UpdateTokens(_ context.Context, t models.AuthTokens) error {
	f.mu.Lock()
	f.tokens = t
	f.mu.Unlock()
	return nil
}

func (f *fakeTokens) ClearTokens(_ context.Context) error {
	f.mu.Lock()
	f.tokens = models.AuthTokens{}
	f.cleared = true
	f.mu.Unlock()
	return nil
}

func testClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewClient(srv.URL, 5*time.Second, log), srv
}

func TestListJobsBareArray(t *testing.T) {
	t.Parallel()

	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":1,"title":"Fix sink"},{"id":2,"title":"Paint wall"}]`))
	}))

	jobs, err := c.ListJobs(context.Background(), &fakeTokens{}, models.JobFilters{})
	if err != nil {
		t.Fatalf("expected jobs, got %v", err)
	}
	if len(jobs) != 2 || jobs[0].ID != 1 || jobs[1].Title != "Paint wall" {
		t.Fatalf("unexpected jobs: %+v", jobs)
	}
}

func TestListJobsPaginatedEnvelope(t *testing.T) {
	t.Parallel()

	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"count":1,"next":null,"results":[{"id":7,"title":"Mow lawn"}]}`))
	}))

	jobs, err := c.ListJobs(context.Background(), &fakeTokens{}, models.JobFilters{})
	if err != nil {
		t.Fatalf("expected jobs, got %v", err)
	}
	if len(jobs) != 1 || jobs[0].ID != 7 {
		t.Fatalf("unexpected jobs: %+v", jobs)
	}
}

func TestListJobsUnexpectedShapeDegradesToEmpty(t *testing.T) {
	t.Parallel()

	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"weird":"shape"}`))
	}))

	jobs, err := c.ListJobs(context.Background(), &fakeTokens{}, models.JobFilters{})
	if err != nil {
		t.Fatalf("expected empty list, got %v", err)
	}
	if jobs == nil || len(jobs) != 0 {
		t.Fatalf("expected empty non-nil slice, got %+v", jobs)
	}
}

func TestUnauthorizedRefreshesOnceAndRetries(t *testing.T) {
	t.Parallel()

	var jobCalls, refreshCalls int
	var mu sync.Mutex
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		if r.URL.Path == "/auth/token/refresh/" {
			refreshCalls++
			json.NewEncoder(w).Encode(models.AuthTokens{Access: "new-access", Refresh: "new-refresh"})
			return
		}
		jobCalls++
		if r.Header.Get("Authorization") != "Bearer new-access" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"detail":"token expired"}`))
			return
		}
		w.Write([]byte(`[{"id":3,"title":"Clean gutters"}]`))
	}))

	src := &fakeTokens{tokens: models.AuthTokens{Access: "stale", Refresh: "r1"}}
	jobs, err := c.ListJobs(context.Background(), src, models.JobFilters{})
	if err != nil {
		t.Fatalf("expected recovery via refresh, got %v", err)
	}
	if len(jobs) != 1 || jobs[0].ID != 3 {
		t.Fatalf("unexpected jobs after retry: %+v", jobs)
	}
	if refreshCalls != 1 {
		t.Fatalf("expected exactly one refresh call, got %d", refreshCalls)
	}
	if jobCalls != 2 {
		t.Fatalf("expected original call plus one retry, got %d", jobCalls)
	}
	if src.AccessToken() != "new-access" || src.RefreshToken() != "new-refresh" {
		t.Fatalf("tokens not rotated: %+v", src.tokens)
	}
}

func TestFailedRefreshClearsTokens(t *testing.T) {
	t.Parallel()

	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/token/refresh/" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"detail":"refresh token blacklisted"}`))
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))

	src := &fakeTokens{tokens: models.AuthTokens{Access: "stale", Refresh: "dead"}}
	_, err := c.ListJobs(context.Background(), src, models.JobFilters{})
	if err == nil {
		t.Fatal("expected authentication failure")
	}
	if err.Error() != "Authentication failed" {
		t.Fatalf("unexpected error message: %v", err)
	}
	if !src.cleared {
		t.Fatal("expected token pair cleared after failed refresh")
	}
	if !src.tokens.Empty() {
		t.Fatalf("tokens should be empty, got %+v", src.tokens)
	}
}

func TestCreateRatingClampsAndOmitsSubRatings(t *testing.T) {
	t.Parallel()

	var payload map[string]any
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&payload)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":10,"rating":5}`))
	}))

	_, err := c.CreateRating(context.Background(), &fakeTokens{}, models.CreateRatingData{
		Assignment:          4,
		Ratee:               9,
		RatingType:          models.RatingCustomerToWorker,
		Rating:              9,
		QualityRating:       7,
		CommunicationRating: 0,
		PunctualityRating:   3,
	})
	if err != nil {
		t.Fatalf("expected created rating, got %v", err)
	}
	if payload["rating"] != float64(5) {
		t.Fatalf("overall rating not clamped: %v", payload["rating"])
	}
	if payload["quality_rating"] != float64(5) {
		t.Fatalf("quality rating not clamped: %v", payload["quality_rating"])
	}
	if _, present := payload["communication_rating"]; present {
		t.Fatal("zero sub-rating should be omitted")
	}
	if payload["punctuality_rating"] != float64(3) {
		t.Fatalf("in-range sub-rating altered: %v", payload["punctuality_rating"])
	}
}

func TestAPIErrorFlattensFieldMessages(t *testing.T) {
	t.Parallel()

	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail":"Invalid input","budget_min":["Must be positive"],"title":["Required","Too short"]}`))
	}))

	_, err := c.CreateJob(context.Background(), &fakeTokens{}, models.CreateJobData{})
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	for _, want := range []string{"Invalid input", "budget_min: Must be positive", "title: Required, Too short"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("missing %q in %q", want, msg)
		}
	}
}

func TestAPIErrorNonJSONBody(t *testing.T) {
	t.Parallel()

	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`<html>upstream exploded</html>`))
	}))

	_, err := c.GetJob(context.Background(), &fakeTokens{}, 1)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "Failed to fetch job") || !strings.Contains(err.Error(), "502") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRegisterFlattensFieldErrors(t *testing.T) {
	t.Parallel()

	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"email":["user with this email already exists."]}`))
	}))

	_, err := c.Register(context.Background(), models.RegisterData{Email: "a@b.c"})
	if err == nil {
		t.Fatal("expected registration error")
	}
	if !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLogoutWithoutRefreshTokenSkipsUpstream(t *testing.T) {
	t.Parallel()

	var called bool
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	if err := c.Logout(context.Background(), &fakeTokens{}); err != nil {
		t.Fatalf("expected silent no-op, got %v", err)
	}
	if called {
		t.Fatal("logout should not hit upstream without a refresh token")
	}
}
