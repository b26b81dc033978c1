package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hotelmate/backend/internal/domain"
	"github.com/hotelmate/backend/internal/metrics"
	"github.com/hotelmate/backend/internal/repo"
)

const (
	// codeAttempts bounds confirmation number regeneration on collision.
	codeAttempts = 5
	// conflictAttempts bounds read-modify-write retries on a version conflict.
	conflictAttempts = 3
)

// CodeGenerator issues confirmation numbers. *confirmation.Generator satisfies it.
type CodeGenerator interface {
	Generate(userID string) (string, error)
}

// ReservationService implements creation, reads, updates and lifecycle
// transitions of reservations.
type ReservationService struct {
	reservations repo.ReservationRepo
	hotels       repo.HotelRepo
	inventory    *InventoryTracker
	codes        CodeGenerator
	log          *slog.Logger
	metrics      *metrics.Metrics
	now          func() time.Time
}

// NewReservationService constructs a ReservationService.
func NewReservationService(
	reservations repo.ReservationRepo,
	hotels repo.HotelRepo,
	inventory *InventoryTracker,
	codes CodeGenerator,
	log *slog.Logger,
	m *metrics.Metrics,
) *ReservationService {
	return &ReservationService{
		reservations: reservations,
		hotels:       hotels,
		inventory:    inventory,
		codes:        codes,
		log:          orDefaultLogger(log),
		metrics:      m,
		now:          utcNow,
	}
}

// WithClock replaces the service clock. It returns s for chaining.
func (s *ReservationService) WithClock(now func() time.Time) *ReservationService {
	s.now = now
	return s
}

// Create books rooms for the caller. Rooms are reserved before the record is
// persisted and released again if persisting fails.
func (s *ReservationService) Create(ctx context.Context, caller domain.Caller, in domain.NewReservation) (domain.Reservation, error) {
	now := s.now()
	if caller.UserID == "" {
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.Create: %w: missing user id", domain.ErrValidation)
	}
	if err := domain.ValidateGuestDetails(in.GuestName, in.GuestEmail, in.GuestPhone, in.SpecialRequests); err != nil {
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.Create: %w", err)
	}
	checkIn, checkOut := domain.DateOf(in.CheckInDate), domain.DateOf(in.CheckOutDate)
	if checkIn.Before(domain.DateOf(now)) {
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.Create: %w: check_in_date cannot be in the past", domain.ErrValidation)
	}

	hotel, err := s.hotels.GetByID(ctx, in.HotelID)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.Create: %w", err)
	}
	if hotel.Status != domain.HotelActive {
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.Create: %w: hotel is not accepting reservations", domain.ErrValidation)
	}
	if err := domain.ValidateBooking(in.Guests, in.Rooms, hotel.MaxGuestsPerRoom); err != nil {
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.Create: %w", err)
	}
	nights, total, err := domain.ComputeStay(checkIn, checkOut, hotel.PricePerNight, in.Rooms)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.Create: %w", err)
	}

	if err := s.inventory.Reserve(ctx, hotel.ID, in.Rooms); err != nil {
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.Create: %w", err)
	}

	res := domain.Reservation{
		UserID:          caller.UserID,
		HotelID:         hotel.ID,
		HotelName:       hotel.Name,
		HotelAddress:    hotel.Address,
		HotelCity:       hotel.City,
		CheckInDate:     checkIn,
		CheckOutDate:    checkOut,
		Nights:          nights,
		Guests:          in.Guests,
		Rooms:           in.Rooms,
		GuestName:       strings.TrimSpace(in.GuestName),
		GuestEmail:      strings.TrimSpace(in.GuestEmail),
		GuestPhone:      strings.TrimSpace(in.GuestPhone),
		SpecialRequests: in.SpecialRequests,
		PricePerNight:   hotel.PricePerNight,
		TotalPrice:      total,
		Currency:        hotel.Currency,
		Status:          domain.StatusPending,
		PaymentStatus:   domain.PaymentPending,
	}

	created, err := s.persistNew(ctx, res)
	if err != nil {
		s.inventory.releaseLogged(ctx, hotel.ID, in.Rooms, "reservation not persisted")
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.Create: %w", err)
	}

	s.metrics.ReservationCreated()
	s.log.Info("reservation created",
		slog.String("reservation_id", created.ID.String()),
		slog.String("confirmation_number", created.ConfirmationNumber),
		slog.String("hotel_id", hotel.ID.String()),
		slog.Int("rooms", created.Rooms),
		slog.Int("nights", created.Nights),
	)
	return created, nil
}

// persistNew assigns a confirmation number and stores res, drawing a new
// number whenever the store reports a collision.
func (s *ReservationService) persistNew(ctx context.Context, res domain.Reservation) (domain.Reservation, error) {
	var err error
	for range codeAttempts {
		res.ConfirmationNumber, err = s.codes.Generate(res.UserID)
		if err != nil {
			return domain.Reservation{}, err
		}
		var created domain.Reservation
		created, err = s.reservations.Create(ctx, res)
		if err == nil {
			return created, nil
		}
		if !errors.Is(err, domain.ErrDuplicate) {
			return domain.Reservation{}, err
		}
		s.log.Warn("confirmation number collision", slog.String("confirmation_number", res.ConfirmationNumber))
	}
	return domain.Reservation{}, fmt.Errorf("no unique confirmation number after %d attempts: %w", codeAttempts, err)
}

// Get returns a reservation the caller owns, or any reservation for an admin.
func (s *ReservationService) Get(ctx context.Context, caller domain.Caller, id uuid.UUID) (domain.Reservation, error) {
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.Get: %w", err)
	}
	if !caller.CanAccess(res) {
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.Get: %w", domain.ErrForbidden)
	}
	return res, nil
}

// GetByConfirmationNumber looks a reservation up by its booking reference,
// with the same access rule as Get.
func (s *ReservationService) GetByConfirmationNumber(ctx context.Context, caller domain.Caller, code string) (domain.Reservation, error) {
	res, err := s.reservations.GetByConfirmationNumber(ctx, code)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.GetByConfirmationNumber: %w", err)
	}
	if !caller.CanAccess(res) {
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.GetByConfirmationNumber: %w", domain.ErrForbidden)
	}
	return res, nil
}

// ListMine returns up to limit of the caller's reservations, newest first.
// A non-positive limit means the default page size.
func (s *ReservationService) ListMine(ctx context.Context, caller domain.Caller, limit int) ([]domain.Reservation, error) {
	if caller.UserID == "" {
		return nil, fmt.Errorf("service.ReservationService.ListMine: %w: missing user id", domain.ErrValidation)
	}
	rows, err := s.reservations.Query(ctx, repo.ReservationFilter{UserID: caller.UserID})
	if err != nil {
		return nil, fmt.Errorf("service.ReservationService.ListMine: %w", err)
	}
	all := decodeAll(rows, "reservations", s.log, s.metrics)
	// Rows arrive in creation order; newest first is the reverse.
	slices.Reverse(all)

	p := domain.NewPaginationParams(nil, &limit, domain.DefaultReservationPageSize)
	return domain.Paginate(all, p).Items, nil
}

// Update applies field changes to a pending or confirmed reservation.
// More rooms are reserved before the change is stored; fewer rooms are
// released after it is stored.
func (s *ReservationService) Update(ctx context.Context, caller domain.Caller, id uuid.UUID, u domain.ReservationUpdate) (domain.Reservation, error) {
	if u.IsEmpty() {
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.Update: %w: no fields to update", domain.ErrValidation)
	}

	for attempt := 1; ; attempt++ {
		cur, err := s.reservations.GetByID(ctx, id)
		if err != nil {
			return domain.Reservation{}, fmt.Errorf("service.ReservationService.Update: %w", err)
		}
		if !caller.CanAccess(cur) {
			return domain.Reservation{}, fmt.Errorf("service.ReservationService.Update: %w", domain.ErrForbidden)
		}
		hotel, err := s.hotels.GetByID(ctx, cur.HotelID)
		if err != nil {
			return domain.Reservation{}, fmt.Errorf("service.ReservationService.Update: hotel: %w", err)
		}
		next, err := cur.ApplyUpdate(u, hotel.MaxGuestsPerRoom, s.now())
		if err != nil {
			return domain.Reservation{}, fmt.Errorf("service.ReservationService.Update: %w", err)
		}

		delta := next.Rooms - cur.Rooms
		if delta > 0 {
			if err := s.inventory.Reserve(ctx, cur.HotelID, delta); err != nil {
				return domain.Reservation{}, fmt.Errorf("service.ReservationService.Update: %w", err)
			}
		}

		next.UpdatedAt = s.now()
		updated, err := s.reservations.Update(ctx, next)
		if err != nil {
			if delta > 0 {
				s.inventory.releaseLogged(ctx, cur.HotelID, delta, "reservation update not persisted")
			}
			if isConflict(err) && attempt < conflictAttempts {
				continue
			}
			return domain.Reservation{}, fmt.Errorf("service.ReservationService.Update: %w", err)
		}
		if delta < 0 {
			s.inventory.releaseLogged(ctx, cur.HotelID, -delta, "rooms reduced")
		}
		return updated, nil
	}
}

// Cancel cancels a pending or confirmed reservation the caller may access and
// returns its rooms to inventory. An empty reason is stored as the default.
func (s *ReservationService) Cancel(ctx context.Context, caller domain.Caller, id uuid.UUID, reason string) (domain.Reservation, error) {
	res, err := s.mutate(ctx, id, &caller, func(r *domain.Reservation) error {
		return r.Cancel(reason, s.now())
	})
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.Cancel: %w", err)
	}
	s.inventory.releaseLogged(ctx, res.HotelID, res.Rooms, "reservation cancelled")
	s.metrics.Transition(string(domain.StatusCancelled))
	s.log.Info("reservation cancelled",
		slog.String("reservation_id", res.ID.String()),
		slog.String("reason", res.CancellationReason),
	)
	return res, nil
}

// CheckIn moves a confirmed reservation to checked-in on or after its
// check-in date.
func (s *ReservationService) CheckIn(ctx context.Context, id uuid.UUID) (domain.Reservation, error) {
	res, err := s.mutate(ctx, id, nil, func(r *domain.Reservation) error {
		return r.CheckIn(s.now())
	})
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.CheckIn: %w", err)
	}
	s.metrics.Transition(string(domain.StatusCheckedIn))
	s.log.Info("guest checked in", slog.String("reservation_id", res.ID.String()))
	return res, nil
}

// CheckOut completes a checked-in stay and returns its rooms to inventory.
// Unlike a plain status change, this frees the rooms for new bookings at
// departure rather than leaving them committed until a manual restock.
func (s *ReservationService) CheckOut(ctx context.Context, id uuid.UUID) (domain.Reservation, error) {
	res, err := s.mutate(ctx, id, nil, func(r *domain.Reservation) error {
		return r.CheckOut(s.now())
	})
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.CheckOut: %w", err)
	}
	s.inventory.releaseLogged(ctx, res.HotelID, res.Rooms, "guest checked out")
	s.metrics.Transition(string(domain.StatusCheckedOut))
	s.log.Info("guest checked out", slog.String("reservation_id", res.ID.String()))
	return res, nil
}

// SetPaymentStatus records a payment status change. Marking a pending
// reservation paid also confirms it.
func (s *ReservationService) SetPaymentStatus(ctx context.Context, id uuid.UUID, ps domain.PaymentStatus) (domain.Reservation, error) {
	var confirmed bool
	res, err := s.mutate(ctx, id, nil, func(r *domain.Reservation) error {
		confirmed = r.SetPaymentStatus(ps, s.now())
		return nil
	})
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.SetPaymentStatus: %w", err)
	}
	if confirmed {
		s.metrics.Transition(string(domain.StatusConfirmed))
	}
	s.log.Info("payment status updated",
		slog.String("reservation_id", res.ID.String()),
		slog.String("payment_status", string(ps)),
		slog.Bool("confirmed", confirmed),
	)
	return res, nil
}

// mutate is the read-modify-write loop shared by lifecycle operations. A nil
// caller skips the ownership check (admin-only routes are guarded upstream).
// apply runs on a fresh copy on every attempt, so an ErrConflict retry sees
// the competing writer's result: a second concurrent cancel fails with
// ErrInvalidTransition instead of releasing rooms twice.
func (s *ReservationService) mutate(ctx context.Context, id uuid.UUID, caller *domain.Caller, apply func(*domain.Reservation) error) (domain.Reservation, error) {
	for attempt := 1; ; attempt++ {
		cur, err := s.reservations.GetByID(ctx, id)
		if err != nil {
			return domain.Reservation{}, err
		}
		if caller != nil && !caller.CanAccess(cur) {
			return domain.Reservation{}, domain.ErrForbidden
		}
		if err := apply(&cur); err != nil {
			return domain.Reservation{}, err
		}
		updated, err := s.reservations.Update(ctx, cur)
		if isConflict(err) && attempt < conflictAttempts {
			continue
		}
		if err != nil {
			return domain.Reservation{}, err
		}
		return updated, nil
	}
}
