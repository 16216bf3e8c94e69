package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/aioutlet/admin-service/internal/core/domain"
	"github.com/aioutlet/admin-service/internal/infrastructure/config"
	"github.com/aioutlet/admin-service/internal/infrastructure/http/handlers"
)

type stubAuth struct {
	identities map[string]*domain.Identity
}

func (s *stubAuth) Verify(ctx context.Context, token string) (*domain.Identity, error) {
	if id, ok := s.identities[token]; ok {
		return id, nil
	}
	return nil, errors.New("bad token")
}

func (s *stubAuth) Authorize(identity *domain.Identity, required ...domain.Role) error {
	if identity == nil {
		return domain.ErrUnauthorized
	}
	if !identity.HasAnyRole(required...) {
		return domain.ErrForbidden
	}
	return nil
}

type stubUsers struct {
	calls int
}

func (s *stubUsers) FetchAllUsers(ctx context.Context, token string) (json.RawMessage, error) {
	s.calls++
	return json.RawMessage(`[]`), nil
}

func (s *stubUsers) FetchUserByID(ctx context.Context, id, token string) (json.RawMessage, error) {
	s.calls++
	return json.RawMessage(`{"_id":"` + id + `"}`), nil
}

func (s *stubUsers) UpdateUserByID(ctx context.Context, id string, payload domain.UpdatePayload, token string) (json.RawMessage, error) {
	s.calls++
	return json.RawMessage(`{}`), nil
}

func (s *stubUsers) RemoveUserByID(ctx context.Context, id, token string) error {
	s.calls++
	return nil
}

type stubDashboard struct{}

func (stubDashboard) GetStats(ctx context.Context, token string) (*domain.DashboardStats, error) {
	return &domain.DashboardStats{}, nil
}

func (stubDashboard) RecentOrders(ctx context.Context, token string, limit int) ([]domain.RecentOrder, error) {
	return []domain.RecentOrder{}, nil
}

func (stubDashboard) RecentUsers(ctx context.Context, token string, limit int) ([]domain.RecentUser, error) {
	return []domain.RecentUser{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Port:        "3008",
		Env:         "test",
		ServiceName: "admin-service",
		APIVersion:  "1.0.0",
		Services:    config.ServicesConfig{HealthCheckTimeout: time.Second},
		HTTP:        config.HTTPConfig{CORSOrigins: []string{"http://localhost:3000"}, BodyLimit: "1M"},
		RateLimit: config.RateLimitConfig{
			Enabled:           true,
			Window:            time.Minute,
			MaxRequests:       1000,
			UserManagementMax: 3,
		},
		AdminRoles: []string{"admin"},
	}
}

func newTestRouter(users *stubUsers, checks ...handlers.Check) *echo.Echo {
	return NewRouter(Deps{
		Config: testConfig(),
		Auth: &stubAuth{identities: map[string]*domain.Identity{
			"admin-token": {ID: "507f1f77bcf86cd799439011", Roles: []domain.Role{domain.RoleAdmin}},
			"user-token":  {ID: "507f191e810c19729de860ea", Roles: []domain.Role{domain.RoleUser}},
		}},
		Users:      users,
		Dashboard:  stubDashboard{},
		Checks:     checks,
		Registerer: prometheus.NewRegistry(),
		Log:        zerolog.Nop(),
	})
}

func serve(e *echo.Echo, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = "10.1.1.1:5555"
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var body envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v (%s)", err, rec.Body.String())
	}
	return body
}

func TestRouter_AdminRequiresToken(t *testing.T) {
	users := &stubUsers{}
	e := newTestRouter(users)

	rec := serve(e, http.MethodGet, "/api/admin/users", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if body := decodeEnvelope(t, rec); body.Error.Code != "UNAUTHORIZED" {
		t.Fatalf("expected UNAUTHORIZED, got %s", body.Error.Code)
	}
	if users.calls != 0 {
		t.Fatalf("expected no upstream call, got %d", users.calls)
	}
}

func TestRouter_AdminRequiresRole(t *testing.T) {
	users := &stubUsers{}
	e := newTestRouter(users)

	rec := serve(e, http.MethodGet, "/api/admin/dashboard/stats", "user-token")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	if body.Error.Code != "FORBIDDEN" || body.Error.Details == nil {
		t.Fatalf("expected FORBIDDEN with role details outside production, got %+v", body.Error)
	}
}

func TestRouter_AdminRoutes(t *testing.T) {
	users := &stubUsers{}
	e := newTestRouter(users)

	cases := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/api/admin/users", http.StatusOK},
		{http.MethodGet, "/api/admin/users/507f191e810c19729de860ea", http.StatusOK},
		{http.MethodDelete, "/api/admin/users/507f191e810c19729de860ea", http.StatusNoContent},
		{http.MethodGet, "/api/admin/dashboard/stats", http.StatusOK},
		{http.MethodGet, "/api/admin/dashboard/recent-orders?limit=3", http.StatusOK},
		{http.MethodGet, "/api/admin/dashboard/recent-users", http.StatusOK},
	}
	for _, tc := range cases {
		rec := serve(e, tc.method, tc.path, "admin-token")
		if rec.Code != tc.status {
			t.Fatalf("%s %s: expected %d, got %d (%s)", tc.method, tc.path, tc.status, rec.Code, rec.Body.String())
		}
	}
}

func TestRouter_HomeIsPublic(t *testing.T) {
	e := newTestRouter(&stubUsers{})

	for _, path := range []string{"/api/home", "/api/home/version"} {
		if rec := serve(e, http.MethodGet, path, ""); rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestRouter_PanicLoggedOnce(t *testing.T) {
	var buf bytes.Buffer
	e := NewRouter(Deps{
		Config:     testConfig(),
		Auth:       &stubAuth{},
		Users:      &stubUsers{},
		Dashboard:  stubDashboard{},
		Registerer: prometheus.NewRegistry(),
		Log:        zerolog.New(&buf),
	})
	e.GET("/api/boom", func(c echo.Context) error {
		panic("boom")
	})

	rec := serve(e, http.MethodGet, "/api/boom", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if body := decodeEnvelope(t, rec); body.Error.Code != "INTERNAL_ERROR" {
		t.Fatalf("unexpected code %q", body.Error.Code)
	}

	var failures int
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("log line is not JSON: %q", line)
		}
		if entry["level"] != "error" {
			continue
		}
		failures++
		if entry["message"] != "request failed" {
			t.Fatalf("unexpected error entry %v", entry)
		}
		if stack, _ := entry["panic_stack"].(string); stack == "" {
			t.Fatalf("expected panic stack in %v", entry)
		}
	}
	if failures != 1 {
		t.Fatalf("expected the panic logged once, got %d error entries:\n%s", failures, buf.String())
	}
}

func TestRouter_CorrelationAndTraceHeaders(t *testing.T) {
	e := newTestRouter(&stubUsers{})

	req := httptest.NewRequest(http.MethodGet, "/api/home", nil)
	req.Header.Set("X-Correlation-ID", "corr-42")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Correlation-ID"); got != "corr-42" {
		t.Fatalf("expected correlation id echoed, got %q", got)
	}
	if rec.Header().Get("traceparent") == "" {
		t.Fatalf("expected traceparent response header")
	}
}

func TestRouter_UserManagementRateLimit(t *testing.T) {
	e := newTestRouter(&stubUsers{})

	for i := 0; i < 3; i++ {
		if rec := serve(e, http.MethodGet, "/api/admin/users", "admin-token"); rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rec.Code)
		}
	}
	rec := serve(e, http.MethodGet, "/api/admin/users", "admin-token")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if body := decodeEnvelope(t, rec); body.Error.Code != "RATE_LIMITED" {
		t.Fatalf("expected RATE_LIMITED, got %s", body.Error.Code)
	}

	// dashboard is outside the user-management limiter
	if rec := serve(e, http.MethodGet, "/api/admin/dashboard/stats", "admin-token"); rec.Code != http.StatusOK {
		t.Fatalf("expected dashboard 200, got %d", rec.Code)
	}
}

func TestRouter_Readiness(t *testing.T) {
	e := newTestRouter(&stubUsers{},
		handlers.Check{Name: "user", Critical: true, Ping: func(ctx context.Context) error { return nil }},
		handlers.Check{Name: "review", Ping: func(ctx context.Context) error { return errors.New("down") }},
	)

	rec := serve(e, http.MethodGet, "/health/ready", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 when only a non-critical check fails, got %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "degraded" {
		t.Fatalf("expected degraded, got %v", body["status"])
	}
}

func TestRouter_Operational(t *testing.T) {
	e := newTestRouter(&stubUsers{})

	for _, path := range []string{"/health", "/health/live", "/metrics"} {
		if rec := serve(e, http.MethodGet, path, ""); rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}
