// Package main is the entry point for the hotel booking API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hotelmate/backend/internal/config"
	"github.com/hotelmate/backend/internal/repo"
	"github.com/hotelmate/backend/internal/repo/memory"
	"github.com/hotelmate/backend/migrations"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// The default logger writes plain text to stderr until ours is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Metrics ----------------------------------------------------------
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// --- Storage ----------------------------------------------------------
	st, cleanup, err := openStorage(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("storage setup failed", "backend", cfg.StorageBackend, "error", err)
		os.Exit(1)
	}
	defer cleanup()

	// --- HTTP Server ------------------------------------------------------
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(cfg, logger, reg, st),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", "addr", srv.Addr, "backend", cfg.StorageBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// openStorage builds the repositories for the configured backend. The
// returned cleanup releases any connections.
func openStorage(ctx context.Context, cfg config.Config, logger *slog.Logger) (storage, func(), error) {
	if cfg.StorageBackend == config.BackendMemory {
		logger.Warn("using in-memory storage; data is lost on restart")
		return storage{hotels: memory.NewHotelRepo(), reservations: memory.NewReservationRepo()}, func() {}, nil
	}

	// New() does not open connections immediately; the ping below does.
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return storage{}, nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return storage{}, nil, err
	}
	logger.Info("database connection established")

	if cfg.MigrateOnStart {
		db := stdlib.OpenDBFromPool(pool)
		n, err := migrations.Up(ctx, db)
		_ = db.Close()
		if err != nil {
			pool.Close()
			return storage{}, nil, err
		}
		logger.Info("migrations applied", "count", n)
	}

	return storage{
		hotels:       repo.NewHotelRepo(pool),
		reservations: repo.NewReservationRepo(pool),
		ping:         pool.Ping,
	}, pool.Close, nil
}
