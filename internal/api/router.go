package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/aioutlet/admin-service/internal/api/handler"
	"github.com/aioutlet/admin-service/internal/api/middleware"
	"github.com/aioutlet/admin-service/internal/core/ports"
	"github.com/aioutlet/admin-service/internal/infrastructure/config"
	redisdb "github.com/aioutlet/admin-service/internal/infrastructure/db/redis"
	ophttp "github.com/aioutlet/admin-service/internal/infrastructure/http"
	"github.com/aioutlet/admin-service/internal/infrastructure/http/handlers"
	"github.com/aioutlet/admin-service/internal/pkg/reqctx"
)

// Deps carries everything the router wires into handlers and middleware.
type Deps struct {
	Config    *config.Config
	Auth      ports.AuthService
	Users     ports.UserClient
	Dashboard ports.DashboardService
	Checks    []handlers.Check

	// Redis, when set, holds rate-limit counters shared across replicas.
	Redis *redis.Client
	// Registerer receives the HTTP metrics. Defaults to prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer

	Log zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	cfg := d.Config
	log := d.Log

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.RecoverWithConfig(echomiddleware.RecoverConfig{
		// The error handler logs the panic together with its stack.
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			return &panicError{err: err, stack: stack}
		},
	}))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSOrigins,
		AllowCredentials: true,
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowHeaders: []string{
			echo.HeaderAuthorization, echo.HeaderContentType,
			reqctx.HeaderCorrelationID, reqctx.HeaderTraceParent,
		},
		ExposeHeaders: []string{reqctx.HeaderCorrelationID, reqctx.HeaderTraceParent},
	}))
	e.Use(middleware.Correlation())
	e.Use(middleware.TraceContext())
	e.Use(middleware.RequestLogger(log))
	e.Use(httpMetrics(d.Registerer))
	if cfg.RateLimit.Enabled {
		e.Use(middleware.RateLimit("general",
			limiterStore(d, "general", cfg.RateLimit.MaxRequests),
			cfg.RateLimit.Window, log))
	}
	e.Use(echomiddleware.BodyLimit(cfg.HTTP.BodyLimit))

	// --- Operational routes (no auth required) ---
	ophttp.RegisterOperational(e, ophttp.Operational{
		Info: handlers.ServiceInfo{
			Name:    cfg.ServiceName,
			Version: cfg.APIVersion,
			Env:     cfg.Env,
		},
		Checks:       d.Checks,
		CheckTimeout: cfg.Services.HealthCheckTimeout,
		Docs:         !cfg.IsProduction(),
	}, log)

	// --- Home routes (optional auth) ---
	homeHandler := handler.NewHomeHandler(cfg.ServiceName, cfg.APIVersion, cfg.Env)
	home := e.Group("/api/home", middleware.OptionalAuth(d.Auth, log))
	home.GET("", homeHandler.Welcome)
	home.GET("/version", homeHandler.Version)

	// --- Admin routes ---
	admin := e.Group("/api/admin",
		middleware.Authenticate(d.Auth, log),
		middleware.RequireRoles(d.Auth, cfg.IsProduction(), cfg.Roles()...),
	)

	adminHandler := handler.NewAdminHandler(d.Users, log)
	var userMW []echo.MiddlewareFunc
	if cfg.RateLimit.Enabled {
		userMW = append(userMW, middleware.RateLimit("user_management",
			limiterStore(d, "user_management", cfg.RateLimit.UserManagementMax),
			cfg.RateLimit.Window, log))
	}
	users := admin.Group("/users", userMW...)
	users.GET("", adminHandler.ListUsers)
	users.GET("/:id", adminHandler.GetUser)
	users.PATCH("/:id", adminHandler.UpdateUser)
	users.DELETE("/:id", adminHandler.DeleteUser)
	users.POST("/:id/password/change", adminHandler.ChangePassword)
	users.POST("/:id/activate", adminHandler.ActivateUser)
	users.POST("/:id/deactivate", adminHandler.DeactivateUser)

	dashboardHandler := handler.NewDashboardHandler(d.Dashboard)
	dashboard := admin.Group("/dashboard")
	dashboard.GET("/stats", dashboardHandler.Stats)
	dashboard.GET("/recent-orders", dashboardHandler.RecentOrders)
	dashboard.GET("/recent-users", dashboardHandler.RecentUsers)

	return e
}

// limiterStore keeps counters in Redis when a client is configured and in
// process memory otherwise.
func limiterStore(d Deps, name string, max int) echomiddleware.RateLimiterStore {
	if d.Redis != nil {
		return redisdb.NewRateLimitStore(d.Redis, name, max, d.Config.RateLimit.Window, d.Log)
	}
	return middleware.NewMemoryStore(max, d.Config.RateLimit.Window)
}

func httpMetrics(reg prometheus.Registerer) echo.MiddlewareFunc {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "admin",
		Registerer: reg,
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == "/metrics"
		},
	})
}
