package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/hotelmate/backend/internal/domain"
	"github.com/hotelmate/backend/internal/handler"
	"github.com/hotelmate/backend/internal/middleware"
)

// mockReservationServicer is a test double for handler.ReservationServicer.
// Set only the method fields your test needs.
type mockReservationServicer struct {
	create           func(ctx context.Context, caller domain.Caller, in domain.NewReservation) (domain.Reservation, error)
	get              func(ctx context.Context, caller domain.Caller, id uuid.UUID) (domain.Reservation, error)
	getByCode        func(ctx context.Context, caller domain.Caller, code string) (domain.Reservation, error)
	listMine         func(ctx context.Context, caller domain.Caller, limit int) ([]domain.Reservation, error)
	update           func(ctx context.Context, caller domain.Caller, id uuid.UUID, u domain.ReservationUpdate) (domain.Reservation, error)
	cancel           func(ctx context.Context, caller domain.Caller, id uuid.UUID, reason string) (domain.Reservation, error)
	checkIn          func(ctx context.Context, id uuid.UUID) (domain.Reservation, error)
	checkOut         func(ctx context.Context, id uuid.UUID) (domain.Reservation, error)
	setPaymentStatus func(ctx context.Context, id uuid.UUID, ps domain.PaymentStatus) (domain.Reservation, error)
}

func (m *mockReservationServicer) Create(ctx context.Context, c domain.Caller, in domain.NewReservation) (domain.Reservation, error) {
	return m.create(ctx, c, in)
}
func (m *mockReservationServicer) Get(ctx context.Context, c domain.Caller, id uuid.UUID) (domain.Reservation, error) {
	return m.get(ctx, c, id)
}
func (m *mockReservationServicer) GetByConfirmationNumber(ctx context.Context, c domain.Caller, code string) (domain.Reservation, error) {
	return m.getByCode(ctx, c, code)
}
func (m *mockReservationServicer) ListMine(ctx context.Context, c domain.Caller, limit int) ([]domain.Reservation, error) {
	return m.listMine(ctx, c, limit)
}
func (m *mockReservationServicer) Update(ctx context.Context, c domain.Caller, id uuid.UUID, u domain.ReservationUpdate) (domain.Reservation, error) {
	return m.update(ctx, c, id, u)
}
func (m *mockReservationServicer) Cancel(ctx context.Context, c domain.Caller, id uuid.UUID, reason string) (domain.Reservation, error) {
	return m.cancel(ctx, c, id, reason)
}
func (m *mockReservationServicer) CheckIn(ctx context.Context, id uuid.UUID) (domain.Reservation, error) {
	return m.checkIn(ctx, id)
}
func (m *mockReservationServicer) CheckOut(ctx context.Context, id uuid.UUID) (domain.Reservation, error) {
	return m.checkOut(ctx, id)
}
func (m *mockReservationServicer) SetPaymentStatus(ctx context.Context, id uuid.UUID, ps domain.PaymentStatus) (domain.Reservation, error) {
	return m.setPaymentStatus(ctx, id, ps)
}

// mockHotelServicer is a test double for handler.HotelServicer.
type mockHotelServicer struct {
	create     func(ctx context.Context, h domain.Hotel) (domain.Hotel, error)
	getByID    func(ctx context.Context, id uuid.UUID) (domain.Hotel, error)
	deactivate func(ctx context.Context, id uuid.UUID) (domain.Hotel, error)
	featured   func(ctx context.Context, limit int) ([]domain.Hotel, error)
}

func (m *mockHotelServicer) Create(ctx context.Context, h domain.Hotel) (domain.Hotel, error) {
	return m.create(ctx, h)
}
func (m *mockHotelServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Hotel, error) {
	return m.getByID(ctx, id)
}
func (m *mockHotelServicer) Deactivate(ctx context.Context, id uuid.UUID) (domain.Hotel, error) {
	return m.deactivate(ctx, id)
}
func (m *mockHotelServicer) Featured(ctx context.Context, limit int) ([]domain.Hotel, error) {
	return m.featured(ctx, limit)
}

// mockSearcher is a test double for handler.Searcher.
type mockSearcher struct {
	reservations func(ctx context.Context, q domain.ReservationQuery) (domain.Page[domain.Reservation], error)
	export       func(ctx context.Context, q domain.ReservationQuery) ([]domain.Reservation, error)
	hotels       func(ctx context.Context, q domain.HotelQuery) (domain.Page[domain.Hotel], error)
	nearby       func(ctx context.Context, lat, lon, radiusKM float64, limit int) ([]domain.NearbyHotel, error)
}

func (m *mockSearcher) SearchReservations(ctx context.Context, q domain.ReservationQuery) (domain.Page[domain.Reservation], error) {
	return m.reservations(ctx, q)
}
func (m *mockSearcher) ExportReservations(ctx context.Context, q domain.ReservationQuery) ([]domain.Reservation, error) {
	return m.export(ctx, q)
}
func (m *mockSearcher) SearchHotels(ctx context.Context, q domain.HotelQuery) (domain.Page[domain.Hotel], error) {
	return m.hotels(ctx, q)
}
func (m *mockSearcher) NearbyHotels(ctx context.Context, lat, lon, radiusKM float64, limit int) ([]domain.NearbyHotel, error) {
	return m.nearby(ctx, lat, lon, radiusKM, limit)
}

// mockStats is a test double for handler.StatsReporter.
type mockStats struct {
	reservations func(ctx context.Context) (domain.ReservationStats, error)
	hotels       func(ctx context.Context) (domain.HotelStats, error)
}

func (m *mockStats) ReservationStats(ctx context.Context) (domain.ReservationStats, error) {
	return m.reservations(ctx)
}
func (m *mockStats) HotelStats(ctx context.Context) (domain.HotelStats, error) {
	return m.hotels(ctx)
}

// compile-time checks: the mocks must satisfy the handler interfaces.
var (
	_ handler.ReservationServicer = (*mockReservationServicer)(nil)
	_ handler.HotelServicer       = (*mockHotelServicer)(nil)
	_ handler.Searcher            = (*mockSearcher)(nil)
	_ handler.StatsReporter       = (*mockStats)(nil)
)

// ---- helpers ---------------------------------------------------------------

var (
	guest = domain.Caller{UserID: "user-1"}
	admin = domain.Caller{UserID: "admin-1", IsAdmin: true}
)

// deps groups the mocks a test wires into the router; nil fields get empty mocks.
type deps struct {
	reservations *mockReservationServicer
	hotels       *mockHotelServicer
	search       *mockSearcher
	stats        *mockStats
}

// newHTTPHandler mounts a Server on a chi router the way main.go does, with
// token verification replaced by a fixed caller.
func newHTTPHandler(d deps, caller domain.Caller) http.Handler {
	if d.reservations == nil {
		d.reservations = &mockReservationServicer{}
	}
	if d.hotels == nil {
		d.hotels = &mockHotelServicer{}
	}
	if d.search == nil {
		d.search = &mockSearcher{}
	}
	if d.stats == nil {
		d.stats = &mockStats{}
	}
	srv := handler.NewServer(d.reservations, d.hotels, d.search, d.stats, nil)
	r := chi.NewRouter()
	srv.Mount(r, func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(middleware.WithCaller(r.Context(), caller)))
		})
	})
	return r
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func decodeError(t *testing.T, body *bytes.Buffer) handler.ErrorDetail {
	t.Helper()
	var resp handler.ErrorResponse
	require.NoError(t, json.NewDecoder(body).Decode(&resp))
	return resp.Error
}

func hotelFixture() domain.Hotel {
	lat, lon := 52.2297, 21.0122
	return domain.Hotel{
		ID:               uuid.New(),
		Name:             "Hotel Bristol",
		Category:         domain.CategoryHotel,
		Address:          "Krakowskie Przedmiescie 42",
		City:             "Warsaw",
		Country:          "Poland",
		Latitude:         &lat,
		Longitude:        &lon,
		PricePerNight:    decimal.RequireFromString("450.50"),
		Currency:         "PLN",
		MaxGuestsPerRoom: 2,
		TotalRooms:       10,
		AvailableRooms:   7,
		Amenities:        []string{"wifi", "spa"},
		Rating:           4.7,
		Status:           domain.HotelActive,
		CreatedAt:        time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		UpdatedAt:        time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func reservationFixture() domain.Reservation {
	return domain.Reservation{
		ID:                 uuid.New(),
		ConfirmationNumber: "HM2026101875736572ABCDEF01",
		UserID:             guest.UserID,
		HotelID:            uuid.New(),
		HotelName:          "Hotel Bristol",
		HotelCity:          "Warsaw",
		CheckInDate:        time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC),
		CheckOutDate:       time.Date(2026, 11, 4, 0, 0, 0, 0, time.UTC),
		Nights:             3,
		Guests:             2,
		Rooms:              1,
		GuestName:          "Jan Kowalski",
		GuestEmail:         "jan@example.com",
		GuestPhone:         "+48 600 000 000",
		PricePerNight:      decimal.RequireFromString("450.50"),
		TotalPrice:         decimal.RequireFromString("1351.50"),
		Currency:           "PLN",
		Status:             domain.StatusPending,
		PaymentStatus:      domain.PaymentPending,
		Version:            1,
	}
}
