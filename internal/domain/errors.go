package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by repo and service functions when the requested
// hotel, reservation, or confirmation number does not exist.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing required field, check-out before check-in).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrInvalidDateRange is the validation failure for a stay whose check-out
// date is not strictly after its check-in date.
var ErrInvalidDateRange = fmt.Errorf("%w: check_out_date must be after check_in_date", ErrValidation)

// ErrInsufficientInventory is returned when a hotel does not have enough
// available rooms to satisfy a reservation. No reservation is persisted.
// Handlers should map this to HTTP 409.
var ErrInsufficientInventory = errors.New("insufficient inventory")

// ErrForbidden is returned when the caller neither owns the reservation nor
// holds the admin role. Handlers should map this to HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrInvalidTransition is returned when a lifecycle operation is not allowed
// from the reservation's current status. The stored record is unchanged.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrPrematureCheckIn is returned when check-in is attempted before the
// reservation's check-in date.
var ErrPrematureCheckIn = errors.New("check-in date has not been reached")

// ErrCorruptRecord marks a persisted record that cannot be mapped back to a
// domain value (unknown enum, unparseable date). List scans skip and log such
// records; single fetches report them together with ErrNotFound.
var ErrCorruptRecord = errors.New("corrupt record")

// ErrConflict is returned by repo Update when the record was modified by
// another writer since it was read (optimistic concurrency).
var ErrConflict = errors.New("concurrent modification")

// ErrDuplicate is returned by repo Create when a unique key (the confirmation
// number) already exists.
var ErrDuplicate = errors.New("duplicate key")
