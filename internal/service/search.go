package service

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/hotelmate/backend/internal/domain"
	"github.com/hotelmate/backend/internal/metrics"
	"github.com/hotelmate/backend/internal/repo"
)

const (
	defaultNearbyRadiusKM = 10
	defaultNearbyLimit    = 20
)

// SearchEngine answers filtered, sorted, paginated queries over reservations
// and hotels. Equality filters go to the repo; ranges, free text, amenities
// and distance are applied in memory. It never mutates anything.
type SearchEngine struct {
	reservations repo.ReservationRepo
	hotels       repo.HotelRepo
	log          *slog.Logger
	metrics      *metrics.Metrics
}

// NewSearchEngine constructs a SearchEngine.
func NewSearchEngine(reservations repo.ReservationRepo, hotels repo.HotelRepo, log *slog.Logger, m *metrics.Metrics) *SearchEngine {
	return &SearchEngine{reservations: reservations, hotels: hotels, log: orDefaultLogger(log), metrics: m}
}

// SearchReservations returns one page of reservations matching q.
func (e *SearchEngine) SearchReservations(ctx context.Context, q domain.ReservationQuery) (domain.Page[domain.Reservation], error) {
	all, err := e.matchingReservations(ctx, q)
	if err != nil {
		return domain.Page[domain.Reservation]{}, fmt.Errorf("service.SearchEngine.SearchReservations: %w", err)
	}
	return domain.Paginate(all, q.Page), nil
}

// ExportReservations returns every reservation matching q in q's sort order.
// q.Page is ignored.
func (e *SearchEngine) ExportReservations(ctx context.Context, q domain.ReservationQuery) ([]domain.Reservation, error) {
	all, err := e.matchingReservations(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("service.SearchEngine.ExportReservations: %w", err)
	}
	return all, nil
}

func (e *SearchEngine) matchingReservations(ctx context.Context, q domain.ReservationQuery) ([]domain.Reservation, error) {
	rows, err := e.reservations.Query(ctx, repo.ReservationFilter{
		UserID:     q.UserID,
		HotelID:    q.HotelID,
		Status:     q.Status,
		GuestEmail: q.GuestEmail,
	})
	if err != nil {
		return nil, err
	}
	all := decodeAll(rows, "reservations", e.log, e.metrics)

	all = slices.DeleteFunc(all, func(r domain.Reservation) bool {
		if q.CheckInFrom != nil && r.CheckInDate.Before(domain.DateOf(*q.CheckInFrom)) {
			return true
		}
		if q.CheckInTo != nil && r.CheckInDate.After(domain.DateOf(*q.CheckInTo)) {
			return true
		}
		return false
	})

	var byKey func(a, b domain.Reservation) int
	switch q.SortBy {
	case domain.SortReservationsByCheckInDate:
		byKey = func(a, b domain.Reservation) int { return compareTime(a.CheckInDate, b.CheckInDate) }
	case domain.SortReservationsByTotalPrice:
		byKey = func(a, b domain.Reservation) int { return a.TotalPrice.Cmp(b.TotalPrice) }
	default:
		byKey = func(a, b domain.Reservation) int { return compareTime(a.CreatedAt, b.CreatedAt) }
	}
	slices.SortStableFunc(all, ordered(byKey, q.SortOrder))
	return all, nil
}

// SearchHotels returns one page of active hotels matching q.
func (e *SearchEngine) SearchHotels(ctx context.Context, q domain.HotelQuery) (domain.Page[domain.Hotel], error) {
	if q.Geo != nil {
		if err := validatePoint(q.Geo.Latitude, q.Geo.Longitude); err != nil {
			return domain.Page[domain.Hotel]{}, fmt.Errorf("service.SearchEngine.SearchHotels: %w", err)
		}
	}

	rows, err := e.hotels.Query(ctx, repo.HotelFilter{
		Status:   domain.HotelActive,
		City:     q.City,
		Country:  q.Country,
		Category: q.Category,
	})
	if err != nil {
		return domain.Page[domain.Hotel]{}, fmt.Errorf("service.SearchEngine.SearchHotels: %w", err)
	}
	all := decodeAll(rows, "hotels", e.log, e.metrics)
	all = slices.DeleteFunc(all, func(h domain.Hotel) bool { return !matchesHotel(h, q) })

	var byKey func(a, b domain.Hotel) int
	switch q.SortBy {
	case domain.SortHotelsByPrice:
		byKey = func(a, b domain.Hotel) int { return a.PricePerNight.Cmp(b.PricePerNight) }
	case domain.SortHotelsByName:
		byKey = func(a, b domain.Hotel) int { return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)) }
	case domain.SortHotelsByCreatedAt:
		byKey = func(a, b domain.Hotel) int { return compareTime(a.CreatedAt, b.CreatedAt) }
	default:
		byKey = func(a, b domain.Hotel) int { return cmp.Compare(a.Rating, b.Rating) }
	}
	slices.SortStableFunc(all, ordered(byKey, q.SortOrder))

	return domain.Paginate(all, q.Page), nil
}

func matchesHotel(h domain.Hotel, q domain.HotelQuery) bool {
	if text := strings.ToLower(strings.TrimSpace(q.Text)); text != "" {
		if !strings.Contains(strings.ToLower(h.Name), text) &&
			!strings.Contains(strings.ToLower(h.City), text) &&
			!strings.Contains(strings.ToLower(h.Address), text) {
			return false
		}
	}
	if q.MinPrice != nil && h.PricePerNight.LessThan(*q.MinPrice) {
		return false
	}
	if q.MaxPrice != nil && h.PricePerNight.GreaterThan(*q.MaxPrice) {
		return false
	}
	if q.MinRating != nil && h.Rating < *q.MinRating {
		return false
	}
	if !h.HasAmenities(q.Amenities) {
		return false
	}
	if q.Guests != nil && *q.Guests > h.MaxGuestsPerRoom {
		return false
	}
	if q.Geo != nil {
		d, ok := h.DistanceKM(q.Geo.Latitude, q.Geo.Longitude)
		if !ok || d > q.Geo.RadiusKM {
			return false
		}
	}
	return true
}

// NearbyHotels lists active hotels within radiusKM of a point, nearest first.
// Hotels without coordinates are never included. Non-positive radiusKM and
// limit fall back to 10 km and 20 results.
func (e *SearchEngine) NearbyHotels(ctx context.Context, lat, lon, radiusKM float64, limit int) ([]domain.NearbyHotel, error) {
	if err := validatePoint(lat, lon); err != nil {
		return nil, fmt.Errorf("service.SearchEngine.NearbyHotels: %w", err)
	}
	if radiusKM <= 0 {
		radiusKM = defaultNearbyRadiusKM
	}
	if limit <= 0 {
		limit = defaultNearbyLimit
	}
	limit = min(limit, domain.MaxPageSize)

	rows, err := e.hotels.Query(ctx, repo.HotelFilter{Status: domain.HotelActive})
	if err != nil {
		return nil, fmt.Errorf("service.SearchEngine.NearbyHotels: %w", err)
	}

	out := []domain.NearbyHotel{}
	for _, h := range decodeAll(rows, "hotels", e.log, e.metrics) {
		d, ok := h.DistanceKM(lat, lon)
		if !ok || d > radiusKM {
			continue
		}
		out = append(out, domain.NearbyHotel{Hotel: h, DistanceKM: round(d, 2)})
	}
	slices.SortStableFunc(out, func(a, b domain.NearbyHotel) int {
		return cmp.Compare(a.DistanceKM, b.DistanceKM)
	})
	return out[:min(limit, len(out))], nil
}

// ordered turns an ascending comparator into one for the requested order.
// Equal elements compare as 0 either way, so a stable sort keeps them in
// creation order.
func ordered[T any](asc func(a, b T) int, order domain.SortOrder) func(a, b T) int {
	if order == domain.SortAsc {
		return asc
	}
	return func(a, b T) int { return asc(b, a) }
}

func compareTime(a, b time.Time) int { return a.Compare(b) }
