// Package metrics defines the custom Prometheus metrics of the admin service.
// Every collector is registered with the default registry through promauto,
// so importing the package is enough; /metrics exposes them next to the
// echoprometheus HTTP metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "admin"

// ── Upstream metrics ──────────────────────────────────────────────────────────

// UpstreamRequestsTotal counts calls to downstream services.
// Labels:
//   - service: "user", "order", "product" or "review"
//   - operation: client method, e.g. "fetch_all_users"
//   - outcome: "success", "http_error" or "transport_error"
var UpstreamRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_requests_total",
		Help:      "Total number of requests sent to upstream services.",
	},
	[]string{"service", "operation", "outcome"},
)

// UpstreamRequestDuration measures upstream round trips.
var UpstreamRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_request_duration_seconds",
		Help:      "Duration of requests sent to upstream services.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"service", "operation"},
)

// ── Dashboard metrics ─────────────────────────────────────────────────────────

// DashboardSectionFailuresTotal counts dashboard sections served as zeroes
// because their upstream call failed.
// Label:
//   - section: "users", "orders", "products" or "reviews"
var DashboardSectionFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dashboard_section_failures_total",
		Help:      "Total number of dashboard sections degraded to defaults.",
	},
	[]string{"section"},
)

// ── Access metrics ────────────────────────────────────────────────────────────

// AuthFailuresTotal counts rejected requests.
// Label:
//   - reason: "missing_token", "invalid_token", "forbidden" or "secret_unavailable"
var AuthFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_failures_total",
		Help:      "Total number of authentication and authorization failures.",
	},
	[]string{"reason"},
)

// RateLimitedTotal counts requests rejected by a rate limiter.
// Label:
//   - limiter: "general" or "user_management"
var RateLimitedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Total number of requests rejected by rate limiting.",
	},
	[]string{"limiter"},
)
