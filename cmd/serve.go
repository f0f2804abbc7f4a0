package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"campus-events/config"
	"campus-events/db"
	"campus-events/handlers"
	"campus-events/middleware"
	"campus-events/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :3000)")
	_ = bindFlag(serveCmd, "server.addr", "addr")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := newLogger(cfg.Log.Level)
	slog.SetDefault(logger)

	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	// Close DB connection last
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close db", "error", err)
		}
	}()
	logger.Info("database ready", "path", store.Path(), "native_upsert", store.NativeUpsert())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Seed {
		seeded, err := store.Seed(ctx)
		if err != nil {
			return fmt.Errorf("seeding: %w", err)
		}
		if seeded {
			logger.Info("sample data seeded")
		}
	}

	limiter, closeLimiter, err := newLimiter(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeLimiter()

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      buildHandler(cfg, store, limiter, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", cfg.Server.Addr, "version", version)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	logger.Info("server exited cleanly")
	return nil
}

// buildHandler mounts every route and wraps the mux in the global
// middleware: Recovery, Logging, Metrics, then RateLimit.
func buildHandler(c config.Config, store *db.DB, limiter middleware.Limiter, logger *slog.Logger) http.Handler {
	h := handlers.New(store, services.NewAuthService(store, 0, logger), logger, handlers.Options{
		Version:      version,
		EnforceRoles: c.Server.EnforceRoles,
		Metrics:      c.Metrics.Enabled,
	})
	mux := http.NewServeMux()
	h.Routes(mux)

	mws := []middleware.Middleware{
		middleware.Recovery(logger),
		middleware.Logging(logger),
	}
	if c.Metrics.Enabled {
		mws = append(mws, middleware.Metrics)
	}
	if limiter != nil {
		mws = append(mws, middleware.RateLimit(limiter, c.RateLimit.Window, c.Server.TrustForwardedFor, logger))
	}
	return middleware.Chain(mux, mws...)
}

// newLimiter picks the shared Redis limiter when redis.url is set and the
// in-process one otherwise. A zero request budget disables limiting.
func newLimiter(ctx context.Context, c config.Config, logger *slog.Logger) (middleware.Limiter, func(), error) {
	noop := func() {}
	if c.RateLimit.Requests <= 0 {
		return nil, noop, nil
	}
	if c.Redis.URL == "" {
		return middleware.NewMemoryLimiter(c.RateLimit.Requests, c.RateLimit.Window), noop, nil
	}

	opts, err := redis.ParseURL(c.Redis.URL)
	if err != nil {
		return nil, noop, fmt.Errorf("parsing redis.url: %w", err)
	}
	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, noop, fmt.Errorf("connecting to redis: %w", err)
	}
	logger.Info("rate limiting via redis", "addr", opts.Addr)
	return middleware.NewRedisLimiter(client, c.RateLimit.Requests, c.RateLimit.Window), func() {
		if err := client.Close(); err != nil {
			logger.Error("failed to close redis", "error", err)
		}
	}, nil
}
