package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/ranker/internal/adapters/http/api"
	"github.com/okian/ranker/internal/adapters/http/swagger"
	service "github.com/okian/ranker/internal/app"
	"github.com/okian/ranker/internal/config"
	"github.com/okian/ranker/pkg/logger"
	"github.com/okian/ranker/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the decision API over HTTP",
		Long: `Start the HTTP API. Configuration is layered: defaults, then the YAML
file from --config or $RANKER_CONFIG, then RANKER_* environment variables.

Examples:
  ranker serve
  RANKER_ADDR=:8080 ranker serve --log-format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Root context with cancel on SIGINT/SIGTERM.
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, err := loadConfig(ctx, opts)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := initLogging(ctx, cfg, cmd.ErrOrStderr()); err != nil {
				return err
			}
			return runServe(ctx, cfg)
		},
	}
}

// newService builds the mutation service from configuration.
func newService(cfg *config.Config) *service.Service {
	return service.New(
		service.WithLogger(logger.Named("service")),
		service.WithDedupeSize(cfg.DedupeSize),
		service.WithWinnerMinSubjects(cfg.WinnerMinSubjects),
	)
}

// newHandler wires the API and docs routes for svc.
func newHandler(ctx context.Context, svc *service.Service) http.Handler {
	router := api.NewServer(svc, svc).NewRouter(ctx)
	swagger.Register(ctx, router)
	return router
}

func runServe(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()
	metrics.RegisterRuntimeCollectors()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(ctx, newService(cfg)),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.ShutdownTimeoutMS)*time.Millisecond)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info(ctx, "server stopped")
	return nil
}
