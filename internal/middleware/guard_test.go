package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/kaamkaro/portal/internal/models"
	"github.com/kaamkaro/portal/internal/session"
	"github.com/kaamkaro/portal/internal/utils"
)

func TestDecide(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		state    AuthState
		userType models.UserType
		required models.UserType
		want     Verdict
	}{
		{"loading defers", StateLoading, "", models.UserTypeCustomer, VerdictPending},
		{"anonymous goes to login", StateAnonymous, "", models.UserTypeCustomer, VerdictLogin},
		{"wrong portal", StateAuthenticated, models.UserTypeWorker, models.UserTypeCustomer, VerdictOwnDashboard},
		{"matching type passes", StateAuthenticated, models.UserTypeCustomer, models.UserTypeCustomer, VerdictAllow},
		{"no required type passes anyone", StateAuthenticated, models.UserTypeWorker, "", VerdictAllow},
		{"loading wins over mismatch", StateLoading, models.UserTypeWorker, models.UserTypeCustomer, VerdictPending},
	}
	for _, tc := range cases {
		if got := Decide(tc.state, tc.userType, tc.required); got != tc.want {
			t.Fatalf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestDashboardPath(t *testing.T) {
	t.Parallel()

	if DashboardPath(models.UserTypeCustomer) != "/customer" {
		t.Fatal("customer dashboard path")
	}
	if DashboardPath(models.UserTypeWorker) != "/worker" {
		t.Fatal("worker dashboard path")
	}
}

const testSecret = "guard-test-secret"

func guardedApp(store session.Store) *fiber.App {
	app := fiber.New()
	protected := app.Group("/", SessionFromCookie(testSecret, store))
	protected.Get("/any", func(c *fiber.Ctx) error { return c.SendString("ok") })
	customer := protected.Group("/customer", RequireUserType(models.UserTypeCustomer))
	customer.Get("/dashboard", func(c *fiber.Ctx) error { return c.SendString("customer ok") })
	return app
}

func seedSession(t *testing.T, store session.Store, userType models.UserType) string {
	t.Helper()
	sess := &session.Session{
		ID:     "sess-1",
		User:   models.User{ID: 42, UserType: userType},
		Tokens: models.AuthTokens{Access: "a", Refresh: "r"},
	}
	if err := store.Save(context.Background(), sess); err != nil {
		t.Fatal(err)
	}
	token, err := utils.SignSessionJWT(testSecret, sess.ID, sess.User.ID, string(userType), 60)
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func TestGuardRedirectsAnonymousToLoginWithReturnPath(t *testing.T) {
	t.Parallel()

	app := guardedApp(session.NewMemoryStore(time.Hour))
	req := httptest.NewRequest("GET", "/customer/dashboard?tab=jobs", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusFound {
		t.Fatalf("expected 302, got %d", resp.StatusCode)
	}
	loc := resp.Header.Get("Location")
	if !strings.HasPrefix(loc, "/login?redirect=") {
		t.Fatalf("unexpected redirect target: %q", loc)
	}
	back, err := url.QueryUnescape(strings.TrimPrefix(loc, "/login?redirect="))
	if err != nil || back != "/customer/dashboard?tab=jobs" {
		t.Fatalf("return path not preserved: %q", back)
	}
}

func TestGuardAllowsMatchingUserType(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore(time.Hour)
	token := seedSession(t, store, models.UserTypeCustomer)

	app := guardedApp(store)
	req := httptest.NewRequest("GET", "/customer/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestGuardSendsWrongTypeToOwnDashboard(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore(time.Hour)
	token := seedSession(t, store, models.UserTypeWorker)

	app := guardedApp(store)
	req := httptest.NewRequest("GET", "/customer/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusFound {
		t.Fatalf("expected 302, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/worker" {
		t.Fatalf("worker should land on their own dashboard, got %q", loc)
	}
}

func TestGuardTreatsClearedTokensAsAnonymous(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore(time.Hour)
	sess := &session.Session{ID: "dead", User: models.User{ID: 1, UserType: models.UserTypeCustomer}}
	if err := store.Save(context.Background(), sess); err != nil {
		t.Fatal(err)
	}
	token, err := utils.SignSessionJWT(testSecret, "dead", 1, "customer", 60)
	if err != nil {
		t.Fatal(err)
	}

	app := guardedApp(store)
	req := httptest.NewRequest("GET", "/any", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusFound {
		t.Fatalf("dead session should redirect to login, got %d", resp.StatusCode)
	}
}

func TestGuardTamperedCookieIsAnonymous(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore(time.Hour)
	token, err := utils.SignSessionJWT("wrong-secret", "sess-1", 1, "customer", 60)
	if err != nil {
		t.Fatal(err)
	}

	app := guardedApp(store)
	req := httptest.NewRequest("GET", "/any", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusFound {
		t.Fatalf("tampered cookie should redirect to login, got %d", resp.StatusCode)
	}
}

type brokenStore struct{}

func (brokenStore) Get(ctx context.Context, id string) (*session.Session, error) {
	return nil, errors.New("store down")
}
func (brokenStore) Save(ctx context.Context, s *session.Session) error { return errors.New("store down") }
func (brokenStore) Delete(ctx context.Context, id string) error        { return errors.New("store down") }

func TestGuardDefersWhenStoreUnavailable(t *testing.T) {
	t.Parallel()

	token, err := utils.SignSessionJWT(testSecret, "sess-1", 1, "customer", 60)
	if err != nil {
		t.Fatal(err)
	}

	app := guardedApp(brokenStore{})
	req := httptest.NewRequest("GET", "/any", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusServiceUnavailable {
		t.Fatalf("unreadable store should defer, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}
}
