package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"

	"github.com/hotelmate/backend/internal/domain"
)

// CreateReservationRequest is the body of POST /reservations.
type CreateReservationRequest struct {
	HotelID         uuid.UUID           `json:"hotel_id"`
	CheckInDate     openapi_types.Date  `json:"check_in_date"`
	CheckOutDate    openapi_types.Date  `json:"check_out_date"`
	Guests          int                 `json:"guests"`
	Rooms           int                 `json:"rooms"`
	GuestName       string              `json:"guest_name"`
	GuestEmail      openapi_types.Email `json:"guest_email"`
	GuestPhone      string              `json:"guest_phone"`
	SpecialRequests *string             `json:"special_requests,omitempty"`
}

// UpdateReservationRequest is the body of PUT /reservations/{id}. Omitted
// fields are left unchanged.
type UpdateReservationRequest struct {
	CheckInDate     *openapi_types.Date  `json:"check_in_date,omitempty"`
	CheckOutDate    *openapi_types.Date  `json:"check_out_date,omitempty"`
	Guests          *int                 `json:"guests,omitempty"`
	Rooms           *int                 `json:"rooms,omitempty"`
	GuestName       *string              `json:"guest_name,omitempty"`
	GuestEmail      *openapi_types.Email `json:"guest_email,omitempty"`
	GuestPhone      *string              `json:"guest_phone,omitempty"`
	SpecialRequests *string              `json:"special_requests,omitempty"`
}

// CancelReservationRequest is the optional body of PATCH /reservations/{id}/cancel.
type CancelReservationRequest struct {
	Reason *string `json:"reason,omitempty"`
}

// PaymentStatusRequest is the body of PATCH /reservations/{id}/payment-status.
type PaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status"`
}

// Reservation is the JSON representation of a reservation. Prices are
// decimal strings; dates are YYYY-MM-DD.
type Reservation struct {
	ID                 uuid.UUID          `json:"id"`
	ConfirmationNumber string             `json:"confirmation_number"`
	UserID             string             `json:"user_id"`
	HotelID            uuid.UUID          `json:"hotel_id"`
	HotelName          string             `json:"hotel_name"`
	HotelAddress       string             `json:"hotel_address"`
	HotelCity          string             `json:"hotel_city"`
	CheckInDate        openapi_types.Date `json:"check_in_date"`
	CheckOutDate       openapi_types.Date `json:"check_out_date"`
	Nights             int                `json:"nights"`
	Guests             int                `json:"guests"`
	Rooms              int                `json:"rooms"`
	GuestName          string             `json:"guest_name"`
	GuestEmail         string             `json:"guest_email"`
	GuestPhone         string             `json:"guest_phone"`
	SpecialRequests    *string            `json:"special_requests,omitempty"`
	PricePerNight      decimal.Decimal    `json:"price_per_night"`
	TotalPrice         decimal.Decimal    `json:"total_price"`
	Currency           string             `json:"currency"`
	Status             string             `json:"status"`
	PaymentStatus      string             `json:"payment_status"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
	CancelledAt        *time.Time         `json:"cancelled_at,omitempty"`
	CancellationReason *string            `json:"cancellation_reason,omitempty"`
}

// ReservationStats is the body of GET /reservations/statistics.
type ReservationStats struct {
	TotalReservations int             `json:"total_reservations"`
	Confirmed         int             `json:"confirmed"`
	Pending           int             `json:"pending"`
	Cancelled         int             `json:"cancelled"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	AverageStayLength float64         `json:"average_stay_length"`
	OccupancyRate     float64         `json:"occupancy_rate"`
}

// CreateReservation handles POST /reservations.
func (s *Server) CreateReservation(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOf(w, r)
	if !ok {
		return
	}
	var body CreateReservationRequest
	if err := decodeBody(r, &body); err != nil {
		writeRequestError(w, err)
		return
	}

	created, err := s.reservations.Create(r.Context(), caller, domain.NewReservation{
		HotelID:         body.HotelID,
		CheckInDate:     body.CheckInDate.Time,
		CheckOutDate:    body.CheckOutDate.Time,
		Guests:          body.Guests,
		Rooms:           body.Rooms,
		GuestName:       body.GuestName,
		GuestEmail:      string(body.GuestEmail),
		GuestPhone:      body.GuestPhone,
		SpecialRequests: deref(body.SpecialRequests),
	})
	if err != nil {
		// An unknown hotel_id is a bad reference in the body, not a missing route.
		s.writeServiceError(w, r, "hotel", err)
		return
	}
	writeJSON(w, http.StatusCreated, reservationToResponse(created))
}

// GetReservation handles GET /reservations/{id}.
func (s *Server) GetReservation(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOf(w, r)
	if !ok {
		return
	}
	id, err := pathUUID(r)
	if err != nil {
		writeRequestError(w, err)
		return
	}
	res, err := s.reservations.Get(r.Context(), caller, id)
	if err != nil {
		s.writeServiceError(w, r, "reservation", err)
		return
	}
	writeJSON(w, http.StatusOK, reservationToResponse(res))
}

// GetReservationByConfirmation handles GET /reservations/confirmation/{code}.
func (s *Server) GetReservationByConfirmation(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOf(w, r)
	if !ok {
		return
	}
	res, err := s.reservations.GetByConfirmationNumber(r.Context(), caller, chi.URLParam(r, "code"))
	if err != nil {
		s.writeServiceError(w, r, "reservation", err)
		return
	}
	writeJSON(w, http.StatusOK, reservationToResponse(res))
}

// ListMyReservations handles GET /reservations/my[?limit=].
func (s *Server) ListMyReservations(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOf(w, r)
	if !ok {
		return
	}
	var limit *int
	if err := bindQuery(r, queryParam{"limit", &limit}); err != nil {
		writeRequestError(w, err)
		return
	}
	mine, err := s.reservations.ListMine(r.Context(), caller, deref(limit))
	if err != nil {
		s.writeServiceError(w, r, "reservation", err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[Reservation]{Data: mapSlice(mine, reservationToResponse)})
}

// SearchReservations handles GET /reservations/search.
// Supports user_id, hotel_id, status, guest_email, check_in_from,
// check_in_to, sort_by, sort_order, page and limit.
func (s *Server) SearchReservations(w http.ResponseWriter, r *http.Request) {
	q, err := bindReservationQuery(r)
	if err != nil {
		writeRequestError(w, err)
		return
	}
	res, err := s.search.SearchReservations(r.Context(), q)
	if err != nil {
		s.writeServiceError(w, r, "reservation", err)
		return
	}
	writeJSON(w, http.StatusOK, toPageResponse(res, reservationToResponse))
}

// bindReservationQuery reads the reservation search filters from the query string.
func bindReservationQuery(r *http.Request) (domain.ReservationQuery, error) {
	var (
		userID, hotelID, status, email, from, to, sortBy, sortOrder *string
		page, limit                                                 *int
	)
	err := bindQuery(r,
		queryParam{"user_id", &userID}, queryParam{"hotel_id", &hotelID}, queryParam{"status", &status},
		queryParam{"guest_email", &email}, queryParam{"check_in_from", &from}, queryParam{"check_in_to", &to},
		queryParam{"sort_by", &sortBy}, queryParam{"sort_order", &sortOrder},
		queryParam{"page", &page}, queryParam{"limit", &limit},
	)
	if err != nil {
		return domain.ReservationQuery{}, err
	}

	q := domain.ReservationQuery{
		UserID:     deref(userID),
		GuestEmail: deref(email),
		Page:       domain.NewPaginationParams(page, limit, domain.DefaultReservationPageSize),
	}
	if st := deref(status); st != "" {
		if q.Status, err = domain.ParseReservationStatus(st); err != nil {
			return domain.ReservationQuery{}, fmt.Errorf("%w: %w", domain.ErrValidation, err)
		}
	}
	if h := deref(hotelID); h != "" {
		if q.HotelID, err = uuid.Parse(h); err != nil {
			return domain.ReservationQuery{}, fmt.Errorf("%w: hotel_id must be a UUID", domain.ErrValidation)
		}
	}
	if q.CheckInFrom, err = parseDate("check_in_from", from); err != nil {
		return domain.ReservationQuery{}, err
	}
	if q.CheckInTo, err = parseDate("check_in_to", to); err != nil {
		return domain.ReservationQuery{}, err
	}
	if q.SortBy, err = domain.ParseReservationSortKey(deref(sortBy)); err != nil {
		return domain.ReservationQuery{}, err
	}
	if q.SortOrder, err = domain.ParseSortOrder(deref(sortOrder), domain.SortDesc); err != nil {
		return domain.ReservationQuery{}, err
	}
	return q, nil
}

// UpdateReservation handles PUT /reservations/{id}.
func (s *Server) UpdateReservation(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOf(w, r)
	if !ok {
		return
	}
	id, err := pathUUID(r)
	if err != nil {
		writeRequestError(w, err)
		return
	}
	var body UpdateReservationRequest
	if err := decodeBody(r, &body); err != nil {
		writeRequestError(w, err)
		return
	}

	updated, err := s.reservations.Update(r.Context(), caller, id, requestToUpdate(body))
	if err != nil {
		s.writeServiceError(w, r, "reservation", err)
		return
	}
	writeJSON(w, http.StatusOK, reservationToResponse(updated))
}

// CancelReservation handles PATCH /reservations/{id}/cancel. The body is optional.
func (s *Server) CancelReservation(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOf(w, r)
	if !ok {
		return
	}
	id, err := pathUUID(r)
	if err != nil {
		writeRequestError(w, err)
		return
	}
	var body CancelReservationRequest
	if r.ContentLength != 0 {
		if err := decodeBody(r, &body); err != nil {
			writeRequestError(w, err)
			return
		}
	}

	cancelled, err := s.reservations.Cancel(r.Context(), caller, id, deref(body.Reason))
	if err != nil {
		s.writeServiceError(w, r, "reservation", err)
		return
	}
	writeJSON(w, http.StatusOK, reservationToResponse(cancelled))
}

// CheckIn handles PATCH /reservations/{id}/check-in.
func (s *Server) CheckIn(w http.ResponseWriter, r *http.Request) {
	s.adminTransition(w, r, s.reservations.CheckIn)
}

// CheckOut handles PATCH /reservations/{id}/check-out.
func (s *Server) CheckOut(w http.ResponseWriter, r *http.Request) {
	s.adminTransition(w, r, s.reservations.CheckOut)
}

// SetPaymentStatus handles PATCH /reservations/{id}/payment-status.
func (s *Server) SetPaymentStatus(w http.ResponseWriter, r *http.Request) {
	var body PaymentStatusRequest
	if err := decodeBody(r, &body); err != nil {
		writeRequestError(w, err)
		return
	}
	ps, err := domain.ParsePaymentStatus(body.PaymentStatus)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", err.Error())
		return
	}
	s.adminTransition(w, r, func(ctx context.Context, id uuid.UUID) (domain.Reservation, error) {
		return s.reservations.SetPaymentStatus(ctx, id, ps)
	})
}

func (s *Server) adminTransition(w http.ResponseWriter, r *http.Request, op func(context.Context, uuid.UUID) (domain.Reservation, error)) {
	id, err := pathUUID(r)
	if err != nil {
		writeRequestError(w, err)
		return
	}
	res, err := op(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, "reservation", err)
		return
	}
	writeJSON(w, http.StatusOK, reservationToResponse(res))
}

// ReservationStats handles GET /reservations/statistics.
func (s *Server) ReservationStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.stats.ReservationStats(r.Context())
	if err != nil {
		s.writeServiceError(w, r, "reservation", err)
		return
	}
	writeJSON(w, http.StatusOK, ReservationStats{
		TotalReservations: st.Total,
		Confirmed:         st.Confirmed,
		Pending:           st.Pending,
		Cancelled:         st.Cancelled,
		TotalRevenue:      st.TotalRevenue,
		AverageStayLength: st.AverageStayLength,
		OccupancyRate:     st.OccupancyRate,
	})
}

// --- mapping helpers --------------------------------------------------------

func requestToUpdate(body UpdateReservationRequest) domain.ReservationUpdate {
	u := domain.ReservationUpdate{
		Guests:          body.Guests,
		Rooms:           body.Rooms,
		GuestName:       body.GuestName,
		GuestPhone:      body.GuestPhone,
		SpecialRequests: body.SpecialRequests,
	}
	if body.CheckInDate != nil {
		u.CheckInDate = &body.CheckInDate.Time
	}
	if body.CheckOutDate != nil {
		u.CheckOutDate = &body.CheckOutDate.Time
	}
	if body.GuestEmail != nil {
		email := string(*body.GuestEmail)
		u.GuestEmail = &email
	}
	return u
}

func reservationToResponse(res domain.Reservation) Reservation {
	out := Reservation{
		ID:                 res.ID,
		ConfirmationNumber: res.ConfirmationNumber,
		UserID:             res.UserID,
		HotelID:            res.HotelID,
		HotelName:          res.HotelName,
		HotelAddress:       res.HotelAddress,
		HotelCity:          res.HotelCity,
		CheckInDate:        openapi_types.Date{Time: res.CheckInDate},
		CheckOutDate:       openapi_types.Date{Time: res.CheckOutDate},
		Nights:             res.Nights,
		Guests:             res.Guests,
		Rooms:              res.Rooms,
		GuestName:          res.GuestName,
		GuestEmail:         res.GuestEmail,
		GuestPhone:         res.GuestPhone,
		PricePerNight:      res.PricePerNight,
		TotalPrice:         res.TotalPrice,
		Currency:           res.Currency,
		Status:             string(res.Status),
		PaymentStatus:      string(res.PaymentStatus),
		CreatedAt:          res.CreatedAt,
		UpdatedAt:          res.UpdatedAt,
		CancelledAt:        res.CancelledAt,
	}
	if res.SpecialRequests != "" {
		out.SpecialRequests = &res.SpecialRequests
	}
	if res.CancellationReason != "" {
		out.CancellationReason = &res.CancellationReason
	}
	return out
}
