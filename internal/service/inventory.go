package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/hotelmate/backend/internal/domain"
	"github.com/hotelmate/backend/internal/metrics"
	"github.com/hotelmate/backend/internal/repo"
)

// InventoryTracker owns hotel room availability. It is the only component
// that changes available_rooms, and it does so only through the repo's atomic
// Reserve and Release.
type InventoryTracker struct {
	hotels  repo.HotelRepo
	log     *slog.Logger
	metrics *metrics.Metrics
}

// NewInventoryTracker constructs an InventoryTracker over the given HotelRepo.
func NewInventoryTracker(hotels repo.HotelRepo, log *slog.Logger, m *metrics.Metrics) *InventoryTracker {
	return &InventoryTracker{hotels: hotels, log: orDefaultLogger(log), metrics: m}
}

// Reserve takes count rooms out of the hotel's availability, or fails with
// domain.ErrInsufficientInventory and changes nothing.
func (t *InventoryTracker) Reserve(ctx context.Context, hotelID uuid.UUID, count int) error {
	if count < 1 {
		return fmt.Errorf("service.InventoryTracker.Reserve: %w: room count must be positive", domain.ErrValidation)
	}
	left, err := t.hotels.Reserve(ctx, hotelID, count)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientInventory) {
			t.metrics.InventoryRejected()
		}
		return fmt.Errorf("service.InventoryTracker.Reserve: %w", err)
	}
	t.log.Debug("rooms reserved",
		slog.String("hotel_id", hotelID.String()),
		slog.Int("rooms", count),
		slog.Int("available", left),
	)
	return nil
}

// Release returns count rooms to the hotel's availability, never exceeding
// its total rooms.
func (t *InventoryTracker) Release(ctx context.Context, hotelID uuid.UUID, count int) error {
	if count < 1 {
		return fmt.Errorf("service.InventoryTracker.Release: %w: room count must be positive", domain.ErrValidation)
	}
	avail, err := t.hotels.Release(ctx, hotelID, count)
	if err != nil {
		return fmt.Errorf("service.InventoryTracker.Release: %w", err)
	}
	t.metrics.Released(count)
	t.log.Debug("rooms released",
		slog.String("hotel_id", hotelID.String()),
		slog.Int("rooms", count),
		slog.Int("available", avail),
	)
	return nil
}

// releaseLogged is Release for compensation paths, where the original error
// is what the caller needs to see. It runs even if ctx is already cancelled.
func (t *InventoryTracker) releaseLogged(ctx context.Context, hotelID uuid.UUID, count int, why string) {
	if err := t.Release(context.WithoutCancel(ctx), hotelID, count); err != nil {
		t.log.Error("inventory release failed",
			slog.String("hotel_id", hotelID.String()),
			slog.Int("rooms", count),
			slog.String("reason", why),
			slog.String("error", err.Error()),
		)
	}
}
