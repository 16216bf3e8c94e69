package handlers

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ServiceInfo identifies the running process in health responses.
type ServiceInfo struct {
	Name    string
	Version string
	Env     string
}

// HealthHandler handles GET /health and GET /health/live.
// Both answer immediately; they only prove the process is serving.
type HealthHandler struct {
	info    ServiceInfo
	started time.Time
}

func NewHealthHandler(info ServiceInfo) *HealthHandler {
	return &HealthHandler{info: info, started: time.Now()}
}

type healthResponse struct {
	Status    string  `json:"status"`
	Service   string  `json:"service"`
	Version   string  `json:"version"`
	Timestamp string  `json:"timestamp"`
	Uptime    float64 `json:"uptime"`
}

func (h *HealthHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{
		Status:    "healthy",
		Service:   h.info.Name,
		Version:   h.info.Version,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Uptime:    time.Since(h.started).Seconds(),
	})
}

func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":  "alive",
		"service": h.info.Name,
		"checks":  map[string]string{"service": "healthy"},
	})
}

// Check is one dependency checked for readiness. A failing Critical check
// makes the service not ready; other failures only mark it degraded.
type Check struct {
	Name     string
	Critical bool
	Ping     func(ctx context.Context) error
}

type CheckResult struct {
	Status    string `json:"status"`
	Critical  bool   `json:"critical"`
	LatencyMS int64  `json:"latencyMs"`
	Error     string `json:"error,omitempty"`
}

// Report is the outcome of running every check once.
type Report struct {
	Status string                 `json:"status"`
	Checks map[string]CheckResult `json:"checks"`
}

// Ready reports whether every critical check passed.
func (r Report) Ready() bool { return r.Status != "not_ready" }

// Failed lists the names of failed checks in order.
func (r Report) Failed() []string {
	var names []string
	for name, res := range r.Checks {
		if res.Status != "ok" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// RunChecks pings every dependency concurrently within timeout.
func RunChecks(ctx context.Context, checks []Check, timeout time.Duration) Report {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var (
		g  errgroup.Group
		mu sync.Mutex
	)
	results := make(map[string]CheckResult, len(checks))

	for _, chk := range checks {
		chk := chk
		g.Go(func() error {
			start := time.Now()
			err := chk.Ping(ctx)
			res := CheckResult{Status: "ok", Critical: chk.Critical, LatencyMS: time.Since(start).Milliseconds()}
			if err != nil {
				res.Status = "unhealthy"
				res.Error = err.Error()
			}
			mu.Lock()
			results[chk.Name] = res
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	status := "ready"
	for _, res := range results {
		if res.Status == "ok" {
			continue
		}
		if res.Critical {
			status = "not_ready"
			break
		}
		status = "degraded"
	}
	return Report{Status: status, Checks: results}
}

// ReadinessHandler handles GET /health/ready.
type ReadinessHandler struct {
	info    ServiceInfo
	checks  []Check
	timeout time.Duration
	log     zerolog.Logger
}

func NewReadinessHandler(info ServiceInfo, checks []Check, timeout time.Duration, log zerolog.Logger) *ReadinessHandler {
	return &ReadinessHandler{info: info, checks: checks, timeout: timeout, log: log}
}

type readinessResponse struct {
	Service   string                 `json:"service"`
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks"`
}

func (h *ReadinessHandler) Readiness(c echo.Context) error {
	report := RunChecks(c.Request().Context(), h.checks, h.timeout)

	httpStatus := http.StatusOK
	if !report.Ready() {
		httpStatus = http.StatusServiceUnavailable
		h.log.Warn().Strs("failed", report.Failed()).Msg("readiness check failed")
	}

	return c.JSON(httpStatus, readinessResponse{
		Service:   h.info.Name,
		Status:    report.Status,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Checks:    report.Checks,
	})
}
