package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/hotelmate/backend/internal/domain"
	"github.com/hotelmate/backend/internal/metrics"
	"github.com/hotelmate/backend/internal/repo"
)

// StatsAggregator computes reporting figures over full scans of reservations
// and hotels.
type StatsAggregator struct {
	reservations repo.ReservationRepo
	hotels       repo.HotelRepo
	log          *slog.Logger
	metrics      *metrics.Metrics
}

// NewStatsAggregator constructs a StatsAggregator.
func NewStatsAggregator(reservations repo.ReservationRepo, hotels repo.HotelRepo, log *slog.Logger, m *metrics.Metrics) *StatsAggregator {
	return &StatsAggregator{reservations: reservations, hotels: hotels, log: orDefaultLogger(log), metrics: m}
}

// ReservationStats aggregates every stored reservation.
//   - TotalRevenue sums confirmed, checked-in and checked-out totals.
//   - AverageStayLength is the mean of positive night counts.
//   - OccupancyRate is rooms held by confirmed and checked-in reservations as a
//     percentage of all hotel rooms, 0 when there are none.
func (a *StatsAggregator) ReservationStats(ctx context.Context) (domain.ReservationStats, error) {
	var (
		reservations []domain.Reservation
		hotels       []domain.Hotel
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := a.reservations.Query(gctx, repo.ReservationFilter{})
		if err != nil {
			return err
		}
		reservations = decodeAll(rows, "reservations", a.log, a.metrics)
		return nil
	})
	g.Go(func() error {
		rows, err := a.hotels.Query(gctx, repo.HotelFilter{})
		if err != nil {
			return err
		}
		hotels = decodeAll(rows, "hotels", a.log, a.metrics)
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.ReservationStats{}, fmt.Errorf("service.StatsAggregator.ReservationStats: %w", err)
	}

	stats := domain.ReservationStats{Total: len(reservations), TotalRevenue: decimal.Zero}
	var (
		nights, stays int
		occupied      int
		capacity      int
	)
	for _, r := range reservations {
		switch r.Status {
		case domain.StatusPending:
			stats.Pending++
		case domain.StatusConfirmed:
			stats.Confirmed++
		case domain.StatusCancelled:
			stats.Cancelled++
		}
		switch r.Status {
		case domain.StatusConfirmed, domain.StatusCheckedIn, domain.StatusCheckedOut:
			stats.TotalRevenue = stats.TotalRevenue.Add(r.TotalPrice)
		}
		if r.Status == domain.StatusConfirmed || r.Status == domain.StatusCheckedIn {
			occupied += r.Rooms
		}
		if r.Nights > 0 {
			nights += r.Nights
			stays++
		}
	}
	for _, h := range hotels {
		capacity += h.TotalRooms
	}

	if stays > 0 {
		stats.AverageStayLength = round(float64(nights)/float64(stays), 1)
	}
	if capacity > 0 {
		stats.OccupancyRate = round(float64(occupied)/float64(capacity)*100, 1)
	}
	return stats, nil
}

// HotelStats summarises the catalogue: counts, rooms and average rating over
// active hotels, and the category distribution over all hotels.
func (a *StatsAggregator) HotelStats(ctx context.Context) (domain.HotelStats, error) {
	rows, err := a.hotels.Query(ctx, repo.HotelFilter{})
	if err != nil {
		return domain.HotelStats{}, fmt.Errorf("service.StatsAggregator.HotelStats: %w", err)
	}

	stats := domain.HotelStats{Categories: make(map[domain.HotelCategory]int, len(domain.HotelCategories))}
	for _, c := range domain.HotelCategories {
		stats.Categories[c] = 0
	}

	var (
		ratingSum float64
		rated     int
	)
	for _, h := range decodeAll(rows, "hotels", a.log, a.metrics) {
		stats.Categories[h.Category]++
		if h.Status != domain.HotelActive {
			continue
		}
		stats.TotalHotels++
		stats.TotalRooms += h.TotalRooms
		if h.Rating > 0 {
			ratingSum += h.Rating
			rated++
		}
	}
	if rated > 0 {
		stats.AverageRating = round(ratingSum/float64(rated), 2)
	}
	return stats, nil
}

func round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
