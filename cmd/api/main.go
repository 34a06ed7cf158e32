package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"libraryapi/internal/platform/config"
	"libraryapi/internal/platform/logging"
	"libraryapi/internal/platform/otel"
	"libraryapi/internal/store"
)

const serviceName = "libraryapi"

func main() {
	config.LoadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Setup(ctx, serviceName, cfg.OTELEndpoint)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("flush traces", "error", err)
		}
	}()

	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	router, cleanup := newRouter(cfg, st, logger)
	defer cleanup()

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", cfg.Addr, "storage", cfg.StorageDriver)
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down", "timeout", cfg.ShutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (store.Store, error) {
	st, err := store.Open(ctx, store.OpenOptions{
		Driver:     cfg.StorageDriver,
		DSN:        cfg.DatabaseDSN,
		SQLitePath: cfg.SQLitePath,
		Timeout:    cfg.DBTimeout,
		Migrate:    cfg.AutoMigrate,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s storage (%s): %w", cfg.StorageDriver, storageTarget(cfg), err)
	}
	if strings.EqualFold(cfg.StorageDriver, store.DriverMemory) {
		logger.Warn("using in-memory storage; data is lost on exit")
	}
	logger.Info("storage ready", "driver", cfg.StorageDriver, "target", storageTarget(cfg))
	return st, nil
}

func storageTarget(cfg config.Config) string {
	switch strings.ToLower(cfg.StorageDriver) {
	case store.DriverSQLite:
		return cfg.SQLitePath
	case store.DriverMemory:
		return "memory"
	default:
		return config.RedactDSN(cfg.DatabaseDSN)
	}
}
