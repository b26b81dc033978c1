package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hotelmate/backend/internal/domain"
)

// CreateHotelRequest is the body of POST /hotels.
type CreateHotelRequest struct {
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	Category         string          `json:"category"`
	Address          string          `json:"address"`
	City             string          `json:"city"`
	Country          string          `json:"country"`
	Latitude         *float64        `json:"latitude,omitempty"`
	Longitude        *float64        `json:"longitude,omitempty"`
	PricePerNight    decimal.Decimal `json:"price_per_night"`
	Currency         string          `json:"currency"`
	MaxGuestsPerRoom int             `json:"max_guests_per_room"`
	TotalRooms       int             `json:"total_rooms"`
	Amenities        []string        `json:"amenities"`
}

// Hotel is the JSON representation of a hotel. Prices are decimal strings.
type Hotel struct {
	ID               uuid.UUID       `json:"id"`
	Name             string          `json:"name"`
	Description      string          `json:"description,omitempty"`
	Category         string          `json:"category"`
	Address          string          `json:"address"`
	City             string          `json:"city"`
	Country          string          `json:"country"`
	Latitude         *float64        `json:"latitude,omitempty"`
	Longitude        *float64        `json:"longitude,omitempty"`
	PricePerNight    decimal.Decimal `json:"price_per_night"`
	Currency         string          `json:"currency"`
	MaxGuestsPerRoom int             `json:"max_guests_per_room"`
	TotalRooms       int             `json:"total_rooms"`
	AvailableRooms   int             `json:"available_rooms"`
	Amenities        []string        `json:"amenities"`
	Rating           float64         `json:"rating"`
	ReviewCount      int             `json:"review_count"`
	Status           string          `json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// NearbyHotel is a hotel with its distance from the query point.
type NearbyHotel struct {
	Hotel
	DistanceKM float64 `json:"distance_km"`
}

// HotelStats is the body of GET /hotels/stats.
type HotelStats struct {
	TotalHotels   int            `json:"total_hotels"`
	TotalRooms    int            `json:"total_rooms"`
	AverageRating float64        `json:"average_rating"`
	Categories    map[string]int `json:"categories"`
}

// CreateHotel handles POST /hotels.
func (s *Server) CreateHotel(w http.ResponseWriter, r *http.Request) {
	var body CreateHotelRequest
	if err := decodeBody(r, &body); err != nil {
		writeRequestError(w, err)
		return
	}

	created, err := s.hotels.Create(r.Context(), requestToHotel(body))
	if err != nil {
		s.writeServiceError(w, r, "hotel", err)
		return
	}
	writeJSON(w, http.StatusCreated, hotelToResponse(created))
}

// GetHotel handles GET /hotels/{id}.
func (s *Server) GetHotel(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r)
	if err != nil {
		writeRequestError(w, err)
		return
	}
	h, err := s.hotels.GetByID(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, "hotel", err)
		return
	}
	writeJSON(w, http.StatusOK, hotelToResponse(h))
}

// DeactivateHotel handles DELETE /hotels/{id}. The hotel is taken off sale,
// never removed.
func (s *Server) DeactivateHotel(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r)
	if err != nil {
		writeRequestError(w, err)
		return
	}
	if _, err := s.hotels.Deactivate(r.Context(), id); err != nil {
		s.writeServiceError(w, r, "hotel", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SearchHotels handles GET /hotels/search.
// Supports query, city, country, category, min_price, max_price, min_rating,
// amenities (repeatable), guests, latitude/longitude/radius_km, sort_by,
// sort_order, page and limit.
func (s *Server) SearchHotels(w http.ResponseWriter, r *http.Request) {
	var (
		text, city, country, category, minPrice, maxPrice, sortBy, sortOrder *string
		minRating, lat, lon, radius                                          *float64
		guests, page, limit                                                  *int
		amenities                                                            *[]string
	)
	err := bindQuery(r,
		queryParam{"query", &text}, queryParam{"city", &city}, queryParam{"country", &country},
		queryParam{"category", &category}, queryParam{"min_price", &minPrice}, queryParam{"max_price", &maxPrice},
		queryParam{"min_rating", &minRating}, queryParam{"amenities", &amenities}, queryParam{"guests", &guests},
		queryParam{"latitude", &lat}, queryParam{"longitude", &lon}, queryParam{"radius_km", &radius},
		queryParam{"sort_by", &sortBy}, queryParam{"sort_order", &sortOrder},
		queryParam{"page", &page}, queryParam{"limit", &limit},
	)
	if err != nil {
		writeRequestError(w, err)
		return
	}

	q := domain.HotelQuery{
		Text:      deref(text),
		City:      deref(city),
		Country:   deref(country),
		MinRating: minRating,
		Amenities: deref(amenities),
		Guests:    guests,
		Page:      domain.NewPaginationParams(page, limit, domain.DefaultHotelPageSize),
	}
	if c := deref(category); c != "" {
		if q.Category, err = domain.ParseHotelCategory(c); err != nil {
			writeError(w, http.StatusUnprocessableEntity, "validation_error", err.Error())
			return
		}
	}
	if q.MinPrice, err = parseDecimal("min_price", minPrice); err != nil {
		writeRequestError(w, err)
		return
	}
	if q.MaxPrice, err = parseDecimal("max_price", maxPrice); err != nil {
		writeRequestError(w, err)
		return
	}
	if lat != nil || lon != nil {
		if lat == nil || lon == nil {
			writeError(w, http.StatusUnprocessableEntity, "validation_error", "latitude and longitude must be given together")
			return
		}
		q.Geo = &domain.GeoFilter{Latitude: *lat, Longitude: *lon, RadiusKM: deref(radius)}
	}
	if q.SortBy, q.SortOrder, err = domain.ParseHotelSort(deref(sortBy), deref(sortOrder)); err != nil {
		writeRequestError(w, err)
		return
	}

	res, err := s.search.SearchHotels(r.Context(), q)
	if err != nil {
		s.writeServiceError(w, r, "hotel", err)
		return
	}
	writeJSON(w, http.StatusOK, toPageResponse(res, hotelToResponse))
}

// NearbyHotels handles GET /hotels/nearby?latitude=&longitude=[&radius_km=&limit=].
func (s *Server) NearbyHotels(w http.ResponseWriter, r *http.Request) {
	var (
		lat, lon, radius *float64
		limit            *int
	)
	if err := bindQuery(r,
		queryParam{"latitude", &lat}, queryParam{"longitude", &lon},
		queryParam{"radius_km", &radius}, queryParam{"limit", &limit},
	); err != nil {
		writeRequestError(w, err)
		return
	}
	if lat == nil || lon == nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "latitude and longitude are required")
		return
	}

	found, err := s.search.NearbyHotels(r.Context(), *lat, *lon, deref(radius), deref(limit))
	if err != nil {
		s.writeServiceError(w, r, "hotel", err)
		return
	}
	data := make([]NearbyHotel, len(found))
	for i, n := range found {
		data[i] = NearbyHotel{Hotel: hotelToResponse(n.Hotel), DistanceKM: n.DistanceKM}
	}
	writeJSON(w, http.StatusOK, listResponse[NearbyHotel]{Data: data})
}

// FeaturedHotels handles GET /hotels/featured[?limit=].
func (s *Server) FeaturedHotels(w http.ResponseWriter, r *http.Request) {
	var limit *int
	if err := bindQuery(r, queryParam{"limit", &limit}); err != nil {
		writeRequestError(w, err)
		return
	}
	hotels, err := s.hotels.Featured(r.Context(), deref(limit))
	if err != nil {
		s.writeServiceError(w, r, "hotel", err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[Hotel]{Data: mapSlice(hotels, hotelToResponse)})
}

// HotelStats handles GET /hotels/stats.
func (s *Server) HotelStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.stats.HotelStats(r.Context())
	if err != nil {
		s.writeServiceError(w, r, "hotel", err)
		return
	}
	cats := make(map[string]int, len(st.Categories))
	for c, n := range st.Categories {
		cats[string(c)] = n
	}
	writeJSON(w, http.StatusOK, HotelStats{
		TotalHotels:   st.TotalHotels,
		TotalRooms:    st.TotalRooms,
		AverageRating: st.AverageRating,
		Categories:    cats,
	})
}

// --- mapping helpers --------------------------------------------------------

// requestToHotel converts a CreateHotelRequest into a domain.Hotel. A missing
// category defaults to hotel; anything else is validated by the service.
func requestToHotel(body CreateHotelRequest) domain.Hotel {
	cat := domain.HotelCategory(body.Category)
	if cat == "" {
		cat = domain.CategoryHotel
	}
	return domain.Hotel{
		Name:             body.Name,
		Description:      body.Description,
		Category:         cat,
		Address:          body.Address,
		City:             body.City,
		Country:          body.Country,
		Latitude:         body.Latitude,
		Longitude:        body.Longitude,
		PricePerNight:    body.PricePerNight,
		Currency:         body.Currency,
		MaxGuestsPerRoom: body.MaxGuestsPerRoom,
		TotalRooms:       body.TotalRooms,
		Amenities:        body.Amenities,
	}
}

func hotelToResponse(h domain.Hotel) Hotel {
	amenities := h.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	return Hotel{
		ID:               h.ID,
		Name:             h.Name,
		Description:      h.Description,
		Category:         string(h.Category),
		Address:          h.Address,
		City:             h.City,
		Country:          h.Country,
		Latitude:         h.Latitude,
		Longitude:        h.Longitude,
		PricePerNight:    h.PricePerNight,
		Currency:         h.Currency,
		MaxGuestsPerRoom: h.MaxGuestsPerRoom,
		TotalRooms:       h.TotalRooms,
		AvailableRooms:   h.AvailableRooms,
		Amenities:        amenities,
		Rating:           h.Rating,
		ReviewCount:      h.ReviewCount,
		Status:           string(h.Status),
		CreatedAt:        h.CreatedAt,
		UpdatedAt:        h.UpdatedAt,
	}
}
