// Package handler: export.go implements GET /reservations/export.
// Returns every reservation matching the search filters as a flat table.
// Supports content negotiation via ?format=csv (CSV) or default (JSON).
package handler

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"github.com/hotelmate/backend/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"confirmation_number", "status", "payment_status", "user_id",
	"hotel_id", "hotel_name", "hotel_city",
	"check_in_date", "check_out_date", "nights", "guests", "rooms",
	"guest_name", "guest_email", "guest_phone",
	"price_per_night", "total_price", "currency",
	"created_at", "cancelled_at", "cancellation_reason",
}

// ExportReservations handles GET /reservations/export.
// It accepts the same filters and sort as /reservations/search; paging is
// ignored. Use ?format=csv to receive CSV; default is JSON.
func (s *Server) ExportReservations(w http.ResponseWriter, r *http.Request) {
	var format *string
	if err := bindQuery(r, queryParam{"format", &format}); err != nil {
		writeRequestError(w, err)
		return
	}
	f := deref(format)
	if f != "" && f != "csv" && f != "json" {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "format must be csv or json")
		return
	}
	q, err := bindReservationQuery(r)
	if err != nil {
		writeRequestError(w, err)
		return
	}

	rows, err := s.search.ExportReservations(r.Context(), q)
	if err != nil {
		s.writeServiceError(w, r, "reservation", err)
		return
	}

	if f == "csv" {
		body := buildCSV(rows)
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="reservations.csv"`)
		w.Header().Set("Content-Length", strconv.Itoa(body.Len()))
		w.WriteHeader(http.StatusOK)
		_, _ = body.WriteTo(w)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[Reservation]{Data: mapSlice(rows, reservationToResponse)})
}

// buildCSV encodes reservations as CSV with a header row.
func buildCSV(rows []domain.Reservation) *bytes.Buffer {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	// bytes.Buffer writes cannot fail.
	_ = w.Write(csvHeaders)
	for _, res := range rows {
		_ = w.Write(reservationToCSVRecord(res))
	}
	w.Flush()
	return &buf
}

// reservationToCSVRecord flattens a reservation into csvHeaders order.
// Prices keep two decimal places; a nil cancelled_at is an empty cell.
func reservationToCSVRecord(res domain.Reservation) []string {
	return []string{
		res.ConfirmationNumber,
		string(res.Status),
		string(res.PaymentStatus),
		res.UserID,
		res.HotelID.String(),
		res.HotelName,
		res.HotelCity,
		res.CheckInDate.Format(time.DateOnly),
		res.CheckOutDate.Format(time.DateOnly),
		strconv.Itoa(res.Nights),
		strconv.Itoa(res.Guests),
		strconv.Itoa(res.Rooms),
		res.GuestName,
		res.GuestEmail,
		res.GuestPhone,
		res.PricePerNight.StringFixed(2),
		res.TotalPrice.StringFixed(2),
		res.Currency,
		res.CreatedAt.UTC().Format(time.RFC3339),
		formatOptionalTime(res.CancelledAt),
		res.CancellationReason,
	}
}

// formatOptionalTime returns the RFC3339 representation of t, or "" if t is nil.
func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
