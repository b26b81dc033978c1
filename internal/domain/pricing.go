package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const secondsPerDay = 24 * 60 * 60

// ComputeStay derives the number of nights and the total price of a stay.
// Nights is the whole-day difference between the two calendar dates; the
// total is nights × rate × rooms in exact decimal arithmetic.
// Returns ErrInvalidDateRange if checkOut is not after checkIn.
func ComputeStay(checkIn, checkOut time.Time, rate decimal.Decimal, rooms int) (int, decimal.Decimal, error) {
	// time.Duration saturates after ~292 years, so count days from Unix seconds.
	nights := int((DateOf(checkOut).Unix() - DateOf(checkIn).Unix()) / secondsPerDay)
	if nights <= 0 {
		return 0, decimal.Zero, ErrInvalidDateRange
	}
	if rate.IsNegative() {
		return 0, decimal.Zero, fmt.Errorf("%w: price_per_night must not be negative", ErrValidation)
	}
	if rooms < 1 {
		return 0, decimal.Zero, fmt.Errorf("%w: rooms must be at least 1", ErrValidation)
	}

	total := rate.Mul(decimal.NewFromInt(int64(nights))).Mul(decimal.NewFromInt(int64(rooms)))
	return nights, total, nil
}
