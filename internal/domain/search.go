package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SortOrder is the direction of a search sort.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortOrder converts a query string value into a SortOrder.
// An empty string yields def.
func ParseSortOrder(s string, def SortOrder) (SortOrder, error) {
	switch o := SortOrder(s); o {
	case "":
		return def, nil
	case SortAsc, SortDesc:
		return o, nil
	default:
		return "", fmt.Errorf("%w: sort_order must be asc or desc", ErrValidation)
	}
}

// ReservationSortKey names a sortable reservation field.
type ReservationSortKey string

const (
	SortReservationsByCreatedAt   ReservationSortKey = "created_at"
	SortReservationsByCheckInDate ReservationSortKey = "check_in_date"
	SortReservationsByTotalPrice  ReservationSortKey = "total_price"
)

// ParseReservationSortKey converts a query string value into a ReservationSortKey.
// An empty string defaults to created_at.
func ParseReservationSortKey(s string) (ReservationSortKey, error) {
	switch k := ReservationSortKey(s); k {
	case "":
		return SortReservationsByCreatedAt, nil
	case SortReservationsByCreatedAt, SortReservationsByCheckInDate, SortReservationsByTotalPrice:
		return k, nil
	default:
		return "", fmt.Errorf("%w: cannot sort reservations by %q", ErrValidation, s)
	}
}

// HotelSortKey names a sortable hotel field.
type HotelSortKey string

const (
	SortHotelsByPrice     HotelSortKey = "price"
	SortHotelsByRating    HotelSortKey = "rating"
	SortHotelsByName      HotelSortKey = "name"
	SortHotelsByCreatedAt HotelSortKey = "created_at"
)

// ParseHotelSort converts sort_by/sort_order query values into a key and order.
// The legacy price_asc and price_desc values fix the order themselves.
// Defaults: rating, descending.
func ParseHotelSort(sortBy, sortOrder string) (HotelSortKey, SortOrder, error) {
	switch sortBy {
	case "price_asc":
		return SortHotelsByPrice, SortAsc, nil
	case "price_desc":
		return SortHotelsByPrice, SortDesc, nil
	}

	order, err := ParseSortOrder(sortOrder, SortDesc)
	if err != nil {
		return "", "", err
	}
	switch k := HotelSortKey(sortBy); k {
	case "":
		return SortHotelsByRating, order, nil
	case SortHotelsByPrice, SortHotelsByRating, SortHotelsByName, SortHotelsByCreatedAt:
		return k, order, nil
	default:
		return "", "", fmt.Errorf("%w: cannot sort hotels by %q", ErrValidation, sortBy)
	}
}

// ReservationQuery describes a reservation search. Zero-valued filters are
// not applied; all applied filters are combined with AND.
type ReservationQuery struct {
	UserID      string
	HotelID     uuid.UUID
	Status      ReservationStatus
	GuestEmail  string
	CheckInFrom *time.Time // inclusive
	CheckInTo   *time.Time // inclusive

	SortBy    ReservationSortKey
	SortOrder SortOrder
	Page      PaginationParams
}

// GeoFilter restricts a hotel search to a radius around a point.
type GeoFilter struct {
	Latitude  float64
	Longitude float64
	RadiusKM  float64
}

// HotelQuery describes a hotel search. Zero-valued filters are not applied;
// all applied filters are combined with AND. Only active hotels are returned.
type HotelQuery struct {
	Text      string // case-insensitive match on name, city or address
	City      string
	Country   string
	Category  HotelCategory
	MinPrice  *decimal.Decimal
	MaxPrice  *decimal.Decimal
	MinRating *float64
	Amenities []string // the hotel must offer all of them
	Guests    *int     // must fit in one room
	Geo       *GeoFilter

	SortBy    HotelSortKey
	SortOrder SortOrder
	Page      PaginationParams
}

// ReservationStats aggregates every stored reservation.
type ReservationStats struct {
	Total             int
	Confirmed         int
	Pending           int
	Cancelled         int
	TotalRevenue      decimal.Decimal
	AverageStayLength float64 // nights, one decimal place
	OccupancyRate     float64 // percent, one decimal place
}

// HotelStats aggregates the hotel catalogue.
type HotelStats struct {
	TotalHotels   int // active hotels
	TotalRooms    int // rooms in active hotels
	AverageRating float64
	Categories    map[HotelCategory]int
}
