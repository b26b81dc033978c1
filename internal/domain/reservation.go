// Package domain contains the core data types for the hotel booking core:
// hotels, reservations, their closed status enums, pricing, the reservation
// lifecycle, and the sentinel errors every other internal package shares.
package domain

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Booking limits carried over from the public booking form.
const (
	MaxGuestsPerBooking  = 10
	MaxRoomsPerBooking   = 5
	MaxSpecialRequestLen = 500
)

// DefaultCancellationReason is stored when a guest cancels without a reason.
const DefaultCancellationReason = "Cancelled by guest"

// Reservation is a booking of one or more rooms in a hotel for a date range.
// CheckInDate and CheckOutDate are calendar dates (UTC midnight).
// PricePerNight is a snapshot of the hotel rate at booking time and never
// changes afterwards; TotalPrice = Nights × PricePerNight × Rooms.
type Reservation struct {
	ID                 uuid.UUID
	ConfirmationNumber string
	UserID             string
	HotelID            uuid.UUID

	// Snapshot of the hotel at booking time, for display.
	HotelName    string
	HotelAddress string
	HotelCity    string

	CheckInDate  time.Time
	CheckOutDate time.Time
	Nights       int
	Guests       int
	Rooms        int

	GuestName       string
	GuestEmail      string
	GuestPhone      string
	SpecialRequests string

	PricePerNight decimal.Decimal
	TotalPrice    decimal.Decimal
	Currency      string

	Status        ReservationStatus
	PaymentStatus PaymentStatus

	CreatedAt          time.Time
	UpdatedAt          time.Time
	CancelledAt        *time.Time // nil unless Status is StatusCancelled
	CancellationReason string

	// Version is incremented by the store on every update and is used for
	// optimistic concurrency control.
	Version int64
}

// NewReservation is the input to create a reservation.
type NewReservation struct {
	HotelID         uuid.UUID
	CheckInDate     time.Time
	CheckOutDate    time.Time
	Guests          int
	Rooms           int
	GuestName       string
	GuestEmail      string
	GuestPhone      string
	SpecialRequests string
}

// ReservationUpdate carries the optional field changes for an existing
// reservation. Nil fields are left untouched.
type ReservationUpdate struct {
	CheckInDate     *time.Time
	CheckOutDate    *time.Time
	Guests          *int
	Rooms           *int
	GuestName       *string
	GuestEmail      *string
	GuestPhone      *string
	SpecialRequests *string
}

// IsEmpty reports whether the update changes nothing.
func (u ReservationUpdate) IsEmpty() bool {
	return u.CheckInDate == nil && u.CheckOutDate == nil && u.Guests == nil && u.Rooms == nil &&
		u.GuestName == nil && u.GuestEmail == nil && u.GuestPhone == nil && u.SpecialRequests == nil
}

// Caller is the authenticated identity on whose behalf an operation runs.
type Caller struct {
	UserID  string
	IsAdmin bool
}

// CanAccess reports whether the caller may read or modify r: the caller must
// own the reservation or hold the admin role.
func (c Caller) CanAccess(r Reservation) bool {
	if c.IsAdmin {
		return true
	}
	return c.UserID != "" && r.UserID == c.UserID
}

// DateOf returns the calendar date of t as UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ApplyUpdate merges u into a copy of r and validates the complete result.
// Dates, guests and rooms changes recompute Nights and TotalPrice from the
// existing PricePerNight snapshot. maxGuestsPerRoom is the hotel's current
// per-room guest limit; today is the operation's current date.
// Returns the candidate record; r itself is never modified.
func (r Reservation) ApplyUpdate(u ReservationUpdate, maxGuestsPerRoom int, today time.Time) (Reservation, error) {
	if !r.Editable() {
		return Reservation{}, fmt.Errorf("%w: cannot update a %s reservation", ErrInvalidTransition, r.Status)
	}

	c := r
	if u.CheckInDate != nil {
		c.CheckInDate = DateOf(*u.CheckInDate)
		if c.CheckInDate.Before(DateOf(today)) {
			return Reservation{}, fmt.Errorf("%w: check_in_date cannot be in the past", ErrValidation)
		}
	}
	if u.CheckOutDate != nil {
		c.CheckOutDate = DateOf(*u.CheckOutDate)
	}
	if u.Guests != nil {
		c.Guests = *u.Guests
	}
	if u.Rooms != nil {
		c.Rooms = *u.Rooms
	}
	if u.GuestName != nil {
		c.GuestName = *u.GuestName
	}
	if u.GuestEmail != nil {
		c.GuestEmail = *u.GuestEmail
	}
	if u.GuestPhone != nil {
		c.GuestPhone = *u.GuestPhone
	}
	if u.SpecialRequests != nil {
		c.SpecialRequests = *u.SpecialRequests
	}

	if err := ValidateBooking(c.Guests, c.Rooms, maxGuestsPerRoom); err != nil {
		return Reservation{}, err
	}
	if err := ValidateGuestDetails(c.GuestName, c.GuestEmail, c.GuestPhone, c.SpecialRequests); err != nil {
		return Reservation{}, err
	}

	nights, total, err := ComputeStay(c.CheckInDate, c.CheckOutDate, c.PricePerNight, c.Rooms)
	if err != nil {
		return Reservation{}, err
	}
	c.Nights = nights
	c.TotalPrice = total
	return c, nil
}

// ValidateBooking checks guest and room counts against the booking limits and
// the hotel's per-room capacity.
func ValidateBooking(guests, rooms, maxGuestsPerRoom int) error {
	if guests < 1 || guests > MaxGuestsPerBooking {
		return fmt.Errorf("%w: guests must be between 1 and %d", ErrValidation, MaxGuestsPerBooking)
	}
	if rooms < 1 || rooms > MaxRoomsPerBooking {
		return fmt.Errorf("%w: rooms must be between 1 and %d", ErrValidation, MaxRoomsPerBooking)
	}
	if guests > maxGuestsPerRoom*rooms {
		return fmt.Errorf("%w: at most %d guests per room are allowed", ErrValidation, maxGuestsPerRoom)
	}
	return nil
}

// ValidateGuestDetails checks the guest contact fields.
//   - Name must be 2–100 characters after trimming.
//   - Email must be a syntactically valid address.
//   - Phone is required.
//   - Special requests are limited to MaxSpecialRequestLen characters.
func ValidateGuestDetails(name, email, phone, requests string) error {
	if n := len([]rune(strings.TrimSpace(name))); n < 2 || n > 100 {
		return fmt.Errorf("%w: guest_name must be between 2 and 100 characters", ErrValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil || strings.TrimSpace(email) == "" {
		return fmt.Errorf("%w: guest_email is not a valid email address", ErrValidation)
	}
	if strings.TrimSpace(phone) == "" {
		return fmt.Errorf("%w: guest_phone is required", ErrValidation)
	}
	if len([]rune(requests)) > MaxSpecialRequestLen {
		return fmt.Errorf("%w: special_requests must be at most %d characters", ErrValidation, MaxSpecialRequestLen)
	}
	return nil
}
