package http

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/aioutlet/admin-service/internal/infrastructure/http/handlers"
)

// Operational configures the health, metrics and docs routes.
type Operational struct {
	Info         handlers.ServiceInfo
	Checks       []handlers.Check
	CheckTimeout time.Duration
	// Docs mounts /swagger/* when true.
	Docs bool
}

// RegisterOperational adds the unauthenticated operational routes to e.
func RegisterOperational(e *echo.Echo, op Operational, log zerolog.Logger) {
	healthHandler := handlers.NewHealthHandler(op.Info)
	readyHandler := handlers.NewReadinessHandler(op.Info, op.Checks, op.CheckTimeout, log)

	e.GET("/health", healthHandler.Health)         // basic status
	e.GET("/health/ready", readyHandler.Readiness) // readiness – are dependencies up?
	e.GET("/health/live", healthHandler.Liveness)  // liveness  – is the process alive?
	e.GET("/metrics", echoprometheus.NewHandler())

	if op.Docs {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}
}
