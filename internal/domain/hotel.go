package domain

import (
	"math"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EarthRadiusKM is the mean Earth radius used for great-circle distances.
const EarthRadiusKM = 6371.0

// Hotel is a bookable property. AvailableRooms is owned by the inventory
// tracker: it only changes through Reserve/Release and always stays within
// [0, TotalRooms]. TotalRooms is fixed at creation.
type Hotel struct {
	ID               uuid.UUID
	Name             string
	Description      string
	Category         HotelCategory
	Address          string
	City             string
	Country          string
	Latitude         *float64 // nil when the hotel has no coordinates
	Longitude        *float64
	PricePerNight    decimal.Decimal
	Currency         string
	MaxGuestsPerRoom int
	TotalRooms       int
	AvailableRooms   int
	Amenities        []string
	Rating           float64
	ReviewCount      int
	Status           HotelStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// HasCoordinates reports whether both latitude and longitude are set.
func (h Hotel) HasCoordinates() bool {
	return h.Latitude != nil && h.Longitude != nil
}

// HasAmenities reports whether the hotel offers every amenity in want.
// An empty want list is always satisfied.
func (h Hotel) HasAmenities(want []string) bool {
	for _, a := range want {
		if !slices.Contains(h.Amenities, a) {
			return false
		}
	}
	return true
}

// DistanceKM returns the great-circle distance from (lat, lon) to the hotel.
// The second result is false when the hotel has no coordinates.
func (h Hotel) DistanceKM(lat, lon float64) (float64, bool) {
	if !h.HasCoordinates() {
		return 0, false
	}
	return Haversine(lat, lon, *h.Latitude, *h.Longitude), true
}

// NearbyHotel pairs a hotel with its distance from a query point.
type NearbyHotel struct {
	Hotel      Hotel
	DistanceKM float64
}

// Haversine returns the great-circle distance in kilometres between two
// points given in decimal degrees.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	phi1, phi2 := toRad(lat1), toRad(lat2)
	dPhi := toRad(lat2 - lat1)
	dLambda := toRad(lon2 - lon1)

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Asin(math.Sqrt(a))

	return EarthRadiusKM * c
}
