package domain

import "fmt"

// ReservationStatus is the lifecycle state of a reservation.
// The set is closed: values outside the constants below are rejected by
// ParseReservationStatus at the persistence and HTTP boundaries.
type ReservationStatus string

const (
	StatusPending    ReservationStatus = "pending"
	StatusConfirmed  ReservationStatus = "confirmed"
	StatusCheckedIn  ReservationStatus = "checked_in"
	StatusCheckedOut ReservationStatus = "checked_out"
	StatusCancelled  ReservationStatus = "cancelled"
	StatusNoShow     ReservationStatus = "no_show"
)

// ParseReservationStatus converts a stored or user-supplied string into a
// ReservationStatus.
func ParseReservationStatus(s string) (ReservationStatus, error) {
	switch st := ReservationStatus(s); st {
	case StatusPending, StatusConfirmed, StatusCheckedIn, StatusCheckedOut, StatusCancelled, StatusNoShow:
		return st, nil
	default:
		return "", fmt.Errorf("unknown reservation status %q", s)
	}
}

// PaymentStatus tracks the payment state of a reservation. Payments
// themselves are processed elsewhere.
type PaymentStatus string

const (
	PaymentPending       PaymentStatus = "pending"
	PaymentPaid          PaymentStatus = "paid"
	PaymentPartiallyPaid PaymentStatus = "partially_paid"
	PaymentRefunded      PaymentStatus = "refunded"
	PaymentFailed        PaymentStatus = "failed"
)

// ParsePaymentStatus converts a stored or user-supplied string into a PaymentStatus.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch ps := PaymentStatus(s); ps {
	case PaymentPending, PaymentPaid, PaymentPartiallyPaid, PaymentRefunded, PaymentFailed:
		return ps, nil
	default:
		return "", fmt.Errorf("unknown payment status %q", s)
	}
}

// HotelCategory classifies a property.
type HotelCategory string

const (
	CategoryHotel      HotelCategory = "hotel"
	CategoryApartment  HotelCategory = "apartment"
	CategoryGuesthouse HotelCategory = "guesthouse"
	CategoryVilla      HotelCategory = "villa"
	CategoryHostel     HotelCategory = "hostel"
	CategoryGlamping   HotelCategory = "glamping"
)

// HotelCategories lists every category in display order.
var HotelCategories = []HotelCategory{
	CategoryHotel, CategoryApartment, CategoryGuesthouse,
	CategoryVilla, CategoryHostel, CategoryGlamping,
}

// ParseHotelCategory converts a stored or user-supplied string into a HotelCategory.
func ParseHotelCategory(s string) (HotelCategory, error) {
	switch c := HotelCategory(s); c {
	case CategoryHotel, CategoryApartment, CategoryGuesthouse, CategoryVilla, CategoryHostel, CategoryGlamping:
		return c, nil
	default:
		return "", fmt.Errorf("unknown hotel category %q", s)
	}
}

// HotelStatus controls whether a hotel is listed and bookable.
type HotelStatus string

const (
	HotelActive      HotelStatus = "active"
	HotelInactive    HotelStatus = "inactive"
	HotelMaintenance HotelStatus = "maintenance"
)

// ParseHotelStatus converts a stored or user-supplied string into a HotelStatus.
func ParseHotelStatus(s string) (HotelStatus, error) {
	switch st := HotelStatus(s); st {
	case HotelActive, HotelInactive, HotelMaintenance:
		return st, nil
	default:
		return "", fmt.Errorf("unknown hotel status %q", s)
	}
}
