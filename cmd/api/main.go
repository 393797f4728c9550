package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vaughan-dsouza/bookcart/internal/config"
	"github.com/vaughan-dsouza/bookcart/internal/db"
	"github.com/vaughan-dsouza/bookcart/internal/handlers"
	"github.com/vaughan-dsouza/bookcart/internal/session"
	"github.com/vaughan-dsouza/bookcart/internal/token"
	"github.com/vaughan-dsouza/bookcart/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// logger is not configured yet
		log.Fatalf("config: %v", err)
	}

	logger := utils.InitLogger(cfg.LogLevel)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

// run owns every process-wide handle; deferred closes execute on both the
// error and the shutdown path.
func run(cfg config.Config, logger *slog.Logger) error {
	ctx := context.Background()

	dbConn, err := db.Open(ctx, cfg.DBDriver, cfg.DatabaseURL, cfg.Pool())
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer dbConn.Close()

	if err := db.Migrate(ctx, dbConn); err != nil {
		return fmt.Errorf("db migrate: %w", err)
	}
	seeded, err := db.Seed(ctx, dbConn)
	if err != nil {
		return fmt.Errorf("db seed: %w", err)
	}
	logger.Info("database ready", "driver", cfg.DBDriver, "seeded", seeded)

	keys, err := cfg.Keyring()
	if err != nil {
		return fmt.Errorf("keys: %w", err)
	}
	tokens, err := token.NewService(keys)
	if err != nil {
		return fmt.Errorf("token service: %w", err)
	}

	var revoker session.Revoker = session.Noop{}
	if cfg.RedisAddr != "" {
		rr := session.NewRedisRevoker(cfg.RedisAddr, cfg.RedisPassword)
		defer rr.Close()
		if err := rr.Ping(ctx); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		revoker = rr
	} else {
		logger.Warn("REDIS_ADDR not set; logout will not revoke tokens")
	}

	h := handlers.NewHandler(dbConn, tokens, revoker)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h.Router(cfg.StaticDir),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		return fmt.Errorf("listen: %w", err)
	case <-quit:
	}
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server exited")
	return nil
}
