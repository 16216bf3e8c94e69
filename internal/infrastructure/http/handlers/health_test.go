package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

var testInfo = ServiceInfo{Name: "admin-service", Version: "1.0.0", Env: "test"}

func ok(context.Context) error   { return nil }
func fail(context.Context) error { return errors.New("connection refused") }

func serve(t *testing.T, h echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	if err := h(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

func TestHealthHandler_Health(t *testing.T) {
	rec := serve(t, NewHealthHandler(testInfo).Health)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "healthy" || body.Service != "admin-service" || body.Version != "1.0.0" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestHealthHandler_Liveness(t *testing.T) {
	rec := serve(t, NewHealthHandler(testInfo).Liveness)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestReadiness(t *testing.T) {
	cases := []struct {
		name       string
		checks     []Check
		wantCode   int
		wantStatus string
	}{
		{
			name:       "all healthy",
			checks:     []Check{{Name: "user-service", Critical: true, Ping: ok}, {Name: "redis", Ping: ok}},
			wantCode:   http.StatusOK,
			wantStatus: "ready",
		},
		{
			name:       "non-critical down",
			checks:     []Check{{Name: "user-service", Critical: true, Ping: ok}, {Name: "redis", Ping: fail}},
			wantCode:   http.StatusOK,
			wantStatus: "degraded",
		},
		{
			name:       "critical down",
			checks:     []Check{{Name: "user-service", Critical: true, Ping: fail}, {Name: "redis", Ping: ok}},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "not_ready",
		},
		{
			name:       "no checks",
			wantCode:   http.StatusOK,
			wantStatus: "ready",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewReadinessHandler(testInfo, tc.checks, time.Second, zerolog.Nop())
			rec := serve(t, h.Readiness)

			if rec.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d", tc.wantCode, rec.Code)
			}
			var body readinessResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Status != tc.wantStatus {
				t.Fatalf("expected status %q, got %q", tc.wantStatus, body.Status)
			}
			if len(body.Checks) != len(tc.checks) {
				t.Fatalf("expected %d check results, got %d", len(tc.checks), len(body.Checks))
			}
		})
	}
}

func TestRunChecks_Timeout(t *testing.T) {
	slow := Check{Name: "order-service", Critical: true, Ping: func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}}

	start := time.Now()
	report := RunChecks(context.Background(), []Check{slow}, 50*time.Millisecond)
	if time.Since(start) > time.Second {
		t.Fatalf("checks were not bounded by the timeout")
	}
	if report.Ready() {
		t.Fatalf("expected not ready")
	}
	if failed := report.Failed(); len(failed) != 1 || failed[0] != "order-service" {
		t.Fatalf("unexpected failed list: %v", failed)
	}
}
