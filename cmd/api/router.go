package main

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hotelmate/backend/internal/config"
	"github.com/hotelmate/backend/internal/confirmation"
	"github.com/hotelmate/backend/internal/handler"
	"github.com/hotelmate/backend/internal/metrics"
	"github.com/hotelmate/backend/internal/middleware"
	"github.com/hotelmate/backend/internal/repo"
	"github.com/hotelmate/backend/internal/service"
	"github.com/hotelmate/backend/openapi"
)

// storage is the pair of repositories every service is built on.
type storage struct {
	hotels       repo.HotelRepo
	reservations repo.ReservationRepo
	ping         func(ctx context.Context) error // nil for the memory backend
}

// newRouter wires services, handlers and middleware on top of st.
func newRouter(cfg config.Config, logger *slog.Logger, reg *prometheus.Registry, st storage) http.Handler {
	m := metrics.New(reg)

	inventory := service.NewInventoryTracker(st.hotels, logger, m)
	reservations := service.NewReservationService(
		st.reservations, st.hotels, inventory,
		confirmation.NewGenerator(cfg.ConfirmationPrefix),
		logger, m,
	)
	hotels := service.NewHotelService(st.hotels, logger, m)
	search := service.NewSearchEngine(st.reservations, st.hotels, logger, m)
	stats := service.NewStatsAggregator(st.reservations, st.hotels, logger, m)

	srv := handler.NewServer(reservations, hotels, search, stats, logger)
	if st.ping != nil {
		srv.WithReadinessCheck(st.ping)
	}
	auth := middleware.NewAuthenticator(middleware.AuthConfig{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer}, logger)

	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer.
	// RequestID generates a unique trace ID per request.
	// RealIP sets r.RemoteAddr from X-Forwarded-For / X-Real-IP (safe behind a proxy).
	// SlogLogger writes one structured JSON log line per request.
	// Recoverer catches panics and returns HTTP 500 instead of crashing.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))
	r.Use(middleware.NewMetricsHandler(m))

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	r.Get("/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(openapi.Document)
	})
	srv.Mount(r, auth.Middleware)

	return r
}
