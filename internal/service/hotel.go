package service

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/hotelmate/backend/internal/domain"
	"github.com/hotelmate/backend/internal/metrics"
	"github.com/hotelmate/backend/internal/repo"
)

const (
	defaultFeaturedLimit = 6
	defaultCurrency      = "PLN"
	maxGuestsPerRoom     = 20
)

// HotelService manages the hotel catalogue. It never changes availability;
// that belongs to InventoryTracker.
type HotelService struct {
	hotels  repo.HotelRepo
	log     *slog.Logger
	metrics *metrics.Metrics
}

// NewHotelService constructs a HotelService backed by the provided HotelRepo.
func NewHotelService(hotels repo.HotelRepo, log *slog.Logger, m *metrics.Metrics) *HotelService {
	return &HotelService{hotels: hotels, log: orDefaultLogger(log), metrics: m}
}

// Create validates and persists a new active hotel with every room available.
func (s *HotelService) Create(ctx context.Context, h domain.Hotel) (domain.Hotel, error) {
	h.Name = strings.TrimSpace(h.Name)
	h.Currency = strings.ToUpper(strings.TrimSpace(h.Currency))
	if h.Currency == "" {
		h.Currency = defaultCurrency
	}
	if err := validateHotel(h); err != nil {
		return domain.Hotel{}, fmt.Errorf("service.HotelService.Create: %w", err)
	}

	h.ID = uuid.Nil
	h.AvailableRooms = h.TotalRooms
	h.Status = domain.HotelActive
	h.Rating, h.ReviewCount = 0, 0

	created, err := s.hotels.Create(ctx, h)
	if err != nil {
		return domain.Hotel{}, fmt.Errorf("service.HotelService.Create: %w", err)
	}
	s.log.Info("hotel created", slog.String("hotel_id", created.ID.String()), slog.String("name", created.Name))
	return created, nil
}

func validateHotel(h domain.Hotel) error {
	if n := len([]rune(h.Name)); n < 2 || n > 100 {
		return fmt.Errorf("%w: name must be between 2 and 100 characters", domain.ErrValidation)
	}
	if _, err := domain.ParseHotelCategory(string(h.Category)); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	if len([]rune(strings.TrimSpace(h.Address))) < 5 {
		return fmt.Errorf("%w: address must be at least 5 characters", domain.ErrValidation)
	}
	if len([]rune(strings.TrimSpace(h.City))) < 2 || len([]rune(strings.TrimSpace(h.Country))) < 2 {
		return fmt.Errorf("%w: city and country are required", domain.ErrValidation)
	}
	if (h.Latitude == nil) != (h.Longitude == nil) {
		return fmt.Errorf("%w: latitude and longitude must be given together", domain.ErrValidation)
	}
	if h.HasCoordinates() {
		if err := validatePoint(*h.Latitude, *h.Longitude); err != nil {
			return err
		}
	}
	if h.PricePerNight.IsNegative() {
		return fmt.Errorf("%w: price_per_night must not be negative", domain.ErrValidation)
	}
	if len(h.Currency) != 3 {
		return fmt.Errorf("%w: currency must be a 3-letter code", domain.ErrValidation)
	}
	if h.MaxGuestsPerRoom < 1 || h.MaxGuestsPerRoom > maxGuestsPerRoom {
		return fmt.Errorf("%w: max_guests_per_room must be between 1 and %d", domain.ErrValidation, maxGuestsPerRoom)
	}
	if h.TotalRooms < 1 {
		return fmt.Errorf("%w: total_rooms must be at least 1", domain.ErrValidation)
	}
	return nil
}

func validatePoint(lat, lon float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("%w: latitude must be between -90 and 90", domain.ErrValidation)
	}
	if lon < -180 || lon > 180 {
		return fmt.Errorf("%w: longitude must be between -180 and 180", domain.ErrValidation)
	}
	return nil
}

// GetByID returns a single hotel by ID.
func (s *HotelService) GetByID(ctx context.Context, id uuid.UUID) (domain.Hotel, error) {
	h, err := s.hotels.GetByID(ctx, id)
	if err != nil {
		return domain.Hotel{}, fmt.Errorf("service.HotelService.GetByID: %w", err)
	}
	return h, nil
}

// Deactivate takes a hotel off sale. Hotels are never deleted because
// reservations keep referring to them.
func (s *HotelService) Deactivate(ctx context.Context, id uuid.UUID) (domain.Hotel, error) {
	h, err := s.hotels.SetStatus(ctx, id, domain.HotelInactive)
	if err != nil {
		return domain.Hotel{}, fmt.Errorf("service.HotelService.Deactivate: %w", err)
	}
	s.log.Info("hotel deactivated", slog.String("hotel_id", id.String()))
	return h, nil
}

// Featured returns the highest rated active hotels.
func (s *HotelService) Featured(ctx context.Context, limit int) ([]domain.Hotel, error) {
	if limit <= 0 {
		limit = defaultFeaturedLimit
	}
	limit = min(limit, domain.MaxPageSize)

	rows, err := s.hotels.Query(ctx, repo.HotelFilter{Status: domain.HotelActive})
	if err != nil {
		return nil, fmt.Errorf("service.HotelService.Featured: %w", err)
	}
	hotels := decodeAll(rows, "hotels", s.log, s.metrics)
	slices.SortStableFunc(hotels, func(a, b domain.Hotel) int {
		return cmp.Compare(b.Rating, a.Rating)
	})
	return hotels[:min(limit, len(hotels))], nil
}
