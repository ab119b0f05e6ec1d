package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httpserver "github.com/fyrsmithlabs/showcase/internal/http"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the showcase HTTP API",
		Long: `Start the HTTP API serving the filter state and the ordered results.

Title search updates are debounced (pipeline.debounce); filter changes
rerun the pipeline immediately. Results are kept in memory and, when
nats.enabled is set, published to nats.subject.

Examples:
  # Start with the default config
  showcase serve

  # Use a specific catalog
  showcase serve --catalog ./catalog.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx)
		},
	}
}

// runServe starts the API and blocks until ctx is cancelled, then shuts
// everything down within server.shutdown_timeout.
func runServe(ctx context.Context) error {
	a, err := newApp(ctx, configPath, appOptions{catalogPath: catalogPath})
	if err != nil {
		return err
	}

	shutdownTimeout := a.cfg.Server.ShutdownTimeout.Duration()
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.close(closeCtx)
	}()

	a.logger.Info(ctx, "starting showcase",
		zap.String("version", version),
		zap.String("addr", a.cfg.Server.Addr()),
		zap.String("catalog", a.catalog),
		zap.Duration("debounce", a.cfg.Pipeline.Debounce.Duration()),
		zap.Bool("nats", a.cfg.NATS.Enabled),
		zap.Bool("telemetry", a.telemetry.IsEnabled()),
		zap.Bool("telemetry_degraded", a.telemetry.Health().Degraded))

	srv, err := httpserver.NewServer(httpserver.Deps{
		Filters:    a.filters,
		Catalog:    a.manager,
		Results:    a.memory,
		Dimensions: a.dims,
	}, a.logger.Underlying(), &httpserver.Config{
		Host:      a.cfg.Server.Host,
		Port:      a.cfg.Server.Port,
		RateLimit: a.cfg.Server.RateLimit,
		RateBurst: a.cfg.Server.RateBurst,
	})
	if err != nil {
		return fmt.Errorf("failed to create http server: %w", err)
	}

	if err := a.start(ctx); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	a.logger.Info(shutdownCtx, "server shutdown complete")
	return nil
}
