package domain

import (
	"fmt"
	"strings"
	"time"
)

// Reservation lifecycle:
//
//	pending ──► confirmed ──► checked_in ──► checked_out
//	   │            │ │
//	   └──► cancelled ◄┘ └──► no_show
//
// checked_out, cancelled and no_show are terminal.

// CanTransitionTo reports whether the state machine allows moving from s to next.
func (s ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusCheckedIn || next == StatusCancelled || next == StatusNoShow
	case StatusCheckedIn:
		return next == StatusCheckedOut
	case StatusCheckedOut, StatusCancelled, StatusNoShow:
		return false
	default:
		return false
	}
}

// IsTerminal reports whether no further transitions are possible from s.
func (s ReservationStatus) IsTerminal() bool {
	switch s {
	case StatusCheckedOut, StatusCancelled, StatusNoShow:
		return true
	default:
		return false
	}
}

// Editable reports whether dates, guests, rooms and contact details may
// still be changed.
func (r Reservation) Editable() bool {
	return r.Status == StatusPending || r.Status == StatusConfirmed
}

// Cancel moves the reservation to cancelled and records when and why.
// Allowed only from pending or confirmed.
func (r *Reservation) Cancel(reason string, now time.Time) error {
	if err := r.transition("cancel", StatusCancelled); err != nil {
		return err
	}
	if strings.TrimSpace(reason) == "" {
		reason = DefaultCancellationReason
	}
	at := now.UTC()
	r.CancelledAt = &at
	r.CancellationReason = reason
	r.UpdatedAt = at
	return nil
}

// CheckIn moves a confirmed reservation to checked_in. It fails with
// ErrPrematureCheckIn while the check-in date is still in the future.
func (r *Reservation) CheckIn(now time.Time) error {
	if !r.Status.CanTransitionTo(StatusCheckedIn) {
		return fmt.Errorf("%w: cannot check in a %s reservation", ErrInvalidTransition, r.Status)
	}
	if r.CheckInDate.After(DateOf(now)) {
		return fmt.Errorf("%w: check-in opens on %s", ErrPrematureCheckIn, r.CheckInDate.Format(time.DateOnly))
	}
	r.Status = StatusCheckedIn
	r.UpdatedAt = now.UTC()
	return nil
}

// CheckOut moves a checked-in reservation to checked_out.
func (r *Reservation) CheckOut(now time.Time) error {
	if err := r.transition("check out", StatusCheckedOut); err != nil {
		return err
	}
	r.UpdatedAt = now.UTC()
	return nil
}

// SetPaymentStatus records a new payment status. A payment marked paid on a
// pending reservation also confirms it; the returned bool reports whether
// that happened.
func (r *Reservation) SetPaymentStatus(ps PaymentStatus, now time.Time) bool {
	r.PaymentStatus = ps
	r.UpdatedAt = now.UTC()
	if ps == PaymentPaid && r.Status == StatusPending {
		r.Status = StatusConfirmed
		return true
	}
	return false
}

func (r *Reservation) transition(op string, next ReservationStatus) error {
	if !r.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: cannot %s a %s reservation", ErrInvalidTransition, op, r.Status)
	}
	r.Status = next
	return nil
}
