// Package handler implements the HTTP handlers for the hotel booking API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, hotel.go, reservation.go) but share the same Server
// struct so they can access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hotelmate/backend/internal/domain"
	"github.com/hotelmate/backend/internal/middleware"
)

// ReservationServicer defines the reservation operations the handlers depend on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching storage or the service layer.
type ReservationServicer interface {
	Create(ctx context.Context, caller domain.Caller, in domain.NewReservation) (domain.Reservation, error)
	Get(ctx context.Context, caller domain.Caller, id uuid.UUID) (domain.Reservation, error)
	GetByConfirmationNumber(ctx context.Context, caller domain.Caller, code string) (domain.Reservation, error)
	ListMine(ctx context.Context, caller domain.Caller, limit int) ([]domain.Reservation, error)
	Update(ctx context.Context, caller domain.Caller, id uuid.UUID, u domain.ReservationUpdate) (domain.Reservation, error)
	Cancel(ctx context.Context, caller domain.Caller, id uuid.UUID, reason string) (domain.Reservation, error)
	CheckIn(ctx context.Context, id uuid.UUID) (domain.Reservation, error)
	CheckOut(ctx context.Context, id uuid.UUID) (domain.Reservation, error)
	SetPaymentStatus(ctx context.Context, id uuid.UUID, ps domain.PaymentStatus) (domain.Reservation, error)
}

// HotelServicer defines the hotel catalogue operations the handlers depend on.
type HotelServicer interface {
	Create(ctx context.Context, h domain.Hotel) (domain.Hotel, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Hotel, error)
	Deactivate(ctx context.Context, id uuid.UUID) (domain.Hotel, error)
	Featured(ctx context.Context, limit int) ([]domain.Hotel, error)
}

// Searcher runs filtered, sorted, paginated searches.
type Searcher interface {
	SearchReservations(ctx context.Context, q domain.ReservationQuery) (domain.Page[domain.Reservation], error)
	ExportReservations(ctx context.Context, q domain.ReservationQuery) ([]domain.Reservation, error)
	SearchHotels(ctx context.Context, q domain.HotelQuery) (domain.Page[domain.Hotel], error)
	NearbyHotels(ctx context.Context, lat, lon, radiusKM float64, limit int) ([]domain.NearbyHotel, error)
}

// StatsReporter computes aggregate statistics.
type StatsReporter interface {
	ReservationStats(ctx context.Context) (domain.ReservationStats, error)
	HotelStats(ctx context.Context) (domain.HotelStats, error)
}

// Server holds the dependencies shared by every handler.
type Server struct {
	reservations ReservationServicer
	hotels       HotelServicer
	search       Searcher
	stats        StatsReporter
	ready        func(ctx context.Context) error
	log          *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
func NewServer(reservations ReservationServicer, hotels HotelServicer, search Searcher, stats StatsReporter, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{reservations: reservations, hotels: hotels, search: search, stats: stats, log: log}
}

// WithReadinessCheck makes GET /healthz report 503 while check fails.
func (s *Server) WithReadinessCheck(check func(ctx context.Context) error) *Server {
	s.ready = check
	return s
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(nil, nil, nil, nil, nil)
}

// Mount registers every route on r. authn must authenticate the bearer token
// and store the caller with middleware.WithCaller; admin routes are further
// guarded by middleware.RequireAdmin.
func (s *Server) Mount(r chi.Router, authn func(http.Handler) http.Handler) {
	r.Get("/healthz", s.GetHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(authn)

		r.Route("/hotels", func(r chi.Router) {
			r.With(middleware.RequireAdmin).Post("/", s.CreateHotel)
			r.Get("/search", s.SearchHotels)
			r.Get("/nearby", s.NearbyHotels)
			r.Get("/featured", s.FeaturedHotels)
			r.With(middleware.RequireAdmin).Get("/stats", s.HotelStats)
			r.Get("/{id}", s.GetHotel)
			r.With(middleware.RequireAdmin).Delete("/{id}", s.DeactivateHotel)
		})

		r.Route("/reservations", func(r chi.Router) {
			r.Post("/", s.CreateReservation)
			r.With(middleware.RequireAdmin).Get("/search", s.SearchReservations)
			r.With(middleware.RequireAdmin).Get("/export", s.ExportReservations)
			r.Get("/my", s.ListMyReservations)
			r.With(middleware.RequireAdmin).Get("/statistics", s.ReservationStats)
			r.Get("/confirmation/{code}", s.GetReservationByConfirmation)
			r.Get("/{id}", s.GetReservation)
			r.Put("/{id}", s.UpdateReservation)
			r.Patch("/{id}/cancel", s.CancelReservation)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Patch("/{id}/check-in", s.CheckIn)
				r.Patch("/{id}/check-out", s.CheckOut)
				r.Patch("/{id}/payment-status", s.SetPaymentStatus)
			})
		})
	})
}
