package main

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/aioutlet/admin-service/internal/core/service"
	"github.com/aioutlet/admin-service/internal/infrastructure/config"
	mongodb "github.com/aioutlet/admin-service/internal/infrastructure/db/mongo"
	redisdb "github.com/aioutlet/admin-service/internal/infrastructure/db/redis"
	"github.com/aioutlet/admin-service/internal/infrastructure/http/handlers"
	"github.com/aioutlet/admin-service/internal/infrastructure/secrets"
	"github.com/aioutlet/admin-service/internal/infrastructure/upstream"
)

// app holds the process-wide dependencies shared by serve and check-deps.
type app struct {
	cfg *config.Config
	log zerolog.Logger

	users    *upstream.UserClient
	orders   *upstream.OrderClient
	products *upstream.ProductClient
	reviews  *upstream.ReviewClient

	auth      *service.AuthService
	dashboard *service.DashboardService

	redis *redis.Client
	mongo *mongo.Database
}

// newApp builds the upstream clients and services. Redis and MongoDB are
// optional: a failed connection is logged and the feature degrades.
func newApp(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*app, error) {
	timeout := cfg.Services.UpstreamTimeout
	a := &app{
		cfg:      cfg,
		log:      log,
		users:    upstream.NewUserClient(cfg.Services.UserURL, timeout, log),
		orders:   upstream.NewOrderClient(cfg.Services.OrderURL, timeout, log),
		products: upstream.NewProductClient(cfg.Services.ProductURL, timeout, log),
		reviews:  upstream.NewReviewClient(cfg.Services.ReviewURL, timeout, log),
	}

	fallback := map[string]string{}
	if cfg.JWT.Secret != "" {
		fallback[cfg.JWT.SecretName] = cfg.JWT.Secret
	}
	resolver, err := secrets.NewResolver(secrets.VaultConfig{
		Address: cfg.Vault.Addr,
		Token:   cfg.Vault.Token,
		Path:    cfg.Vault.SecretPath,
		Timeout: cfg.Vault.Timeout,
	}, fallback, log)
	if err != nil {
		return nil, err
	}

	a.auth = service.NewAuthService(resolver, service.AuthOptions{
		SecretName: cfg.JWT.SecretName,
		Issuer:     cfg.JWT.Issuer,
		Audience:   cfg.JWT.Audience,
	}, log)
	a.dashboard = service.NewDashboardService(a.users, a.orders, a.products, a.reviews, cfg.LowStockThreshold, log)

	if cfg.Redis.Addr != "" {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unavailable, rate limits kept in memory")
		} else {
			a.redis = rdb
		}
	}
	if cfg.Mongo.URI != "" {
		db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			log.Warn().Err(err).Msg("mongodb unavailable, skipping its readiness check")
		} else {
			a.mongo = db
		}
	}
	return a, nil
}

// checks lists the readiness checks. The user, order and product services
// are critical; everything else only degrades readiness.
func (a *app) checks() []handlers.Check {
	checks := []handlers.Check{
		{Name: "user-service", Critical: true, Ping: a.users.Ping},
		{Name: "order-service", Critical: true, Ping: a.orders.Ping},
		{Name: "product-service", Critical: true, Ping: a.products.Ping},
		{Name: "review-service", Ping: a.reviews.Ping},
	}
	if a.redis != nil {
		checks = append(checks, handlers.Check{
			Name: "redis",
			Ping: func(ctx context.Context) error {
				return redisdb.Ping(ctx, a.redis, a.cfg.Services.HealthCheckTimeout)
			},
		})
	}
	if a.mongo != nil {
		checks = append(checks, handlers.Check{
			Name: "mongodb",
			Ping: func(ctx context.Context) error { return mongodb.Ping(ctx, a.mongo) },
		})
	}
	return checks
}

func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn().Err(err).Msg("closing redis")
		}
	}
	if a.mongo != nil {
		if err := mongodb.Disconnect(ctx, a.mongo); err != nil {
			a.log.Warn().Err(err).Msg("closing mongodb")
		}
	}
}
