package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/aioutlet/admin-service/internal/api/apierror"
	"github.com/aioutlet/admin-service/internal/pkg/metrics"
)

// skipOperational excludes health routes and the metrics scrape from limits and access logs.
func skipOperational(c echo.Context) bool {
	p := c.Request().URL.Path
	return p == "/metrics" || p == "/health" || strings.HasPrefix(p, "/health/")
}

// NewMemoryStore allows max requests per window for each client, refilled
// continuously. It is used when no Redis is configured.
func NewMemoryStore(max int, window time.Duration) echomiddleware.RateLimiterStore {
	return echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(max) / window.Seconds()),
		Burst:     max,
		ExpiresIn: window,
	})
}

// RateLimit rejects clients over the store's budget with 429. name labels
// logs and metrics; window is reported in the Retry-After header.
func RateLimit(name string, store echomiddleware.RateLimiterStore, window time.Duration, log zerolog.Logger) echo.MiddlewareFunc {
	retryAfter := strconv.Itoa(int(window.Seconds()))

	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Skipper: skipOperational,
		Store:   store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return apierror.Write(c, http.StatusForbidden, apierror.CodeForbidden, "Unable to identify client", nil)
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			metrics.RateLimitedTotal.WithLabelValues(name).Inc()
			ev := log.Warn().
				Str("limiter", name).
				Str("ip", identifier).
				Str("path", c.Request().URL.Path).
				Str("correlation_id", CorrelationID(c))
			if id := IdentityFrom(c); id != nil {
				ev = ev.Str("user_id", id.ID)
			}
			ev.Msg("rate limit exceeded")

			c.Response().Header().Set("Retry-After", retryAfter)
			return apierror.Write(c, http.StatusTooManyRequests, apierror.CodeRateLimited,
				"Too many requests, please try again later", map[string]any{"retryAfter": window.Seconds()})
		},
	})
}
