package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/aioutlet/admin-service/internal/api"
	"github.com/aioutlet/admin-service/internal/infrastructure/config"
	"github.com/aioutlet/admin-service/internal/infrastructure/http/handlers"
	"github.com/aioutlet/admin-service/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

var checkDepsCmd = &cobra.Command{
	Use:   "check-deps",
	Short: "Check every upstream dependency once and print the report",
	RunE:  runCheckDeps,
}

func setup(ctx context.Context) (*app, error) {
	cfg, err := config.FromEnv(ctx)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: cfg.ServiceName,
		Version: cfg.APIVersion,
	})
	return newApp(ctx, cfg, log)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	cfg, log := a.cfg, a.log
	checks := a.checks()

	e := api.NewRouter(api.Deps{
		Config:     cfg,
		Auth:       a.auth,
		Users:      a.users,
		Dashboard:  a.dashboard,
		Checks:     checks,
		Redis:      a.redis,
		Registerer: prometheus.DefaultRegisterer,
		Log:        log,
	})

	// startup check is informational only
	go logStartupReport(ctx, checks, cfg.Services.HealthCheckTimeout, log)

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", cfg.Addr()).
			Str("env", cfg.Env).
			Bool("rate_limiting", cfg.RateLimit.Enabled).
			Bool("redis", a.redis != nil).
			Msg("admin service listening")
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}

func logStartupReport(ctx context.Context, checks []handlers.Check, timeout time.Duration, log zerolog.Logger) {
	report := handlers.RunChecks(ctx, checks, timeout)
	if report.Status == "ready" {
		log.Info().Int("dependencies", len(checks)).Msg("all dependencies reachable")
		return
	}
	log.Warn().
		Str("status", report.Status).
		Strs("failed", report.Failed()).
		Msg("some dependencies are unreachable at startup")
}

func runCheckDeps(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	report := handlers.RunChecks(ctx, a.checks(), a.cfg.Services.HealthCheckTimeout)
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return err
	}
	if !report.Ready() {
		return fmt.Errorf("critical dependencies unavailable: %v", report.Failed())
	}
	return nil
}
