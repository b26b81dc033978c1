package service_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hotelmate/backend/internal/domain"
	"github.com/hotelmate/backend/internal/repo"
	"github.com/hotelmate/backend/internal/repo/memory"
	"github.com/hotelmate/backend/internal/service"
)

// mockHotelRepo is a hand-written test double for repo.HotelRepo.
// Each method is a function field; unset fields delegate to base, so a test
// only overrides the calls it cares about.
type mockHotelRepo struct {
	base      repo.HotelRepo
	create    func(ctx context.Context, h domain.Hotel) (domain.Hotel, error)
	getByID   func(ctx context.Context, id uuid.UUID) (domain.Hotel, error)
	query     func(ctx context.Context, f repo.HotelFilter) ([]repo.Decoded[domain.Hotel], error)
	reserve   func(ctx context.Context, id uuid.UUID, count int) (int, error)
	release   func(ctx context.Context, id uuid.UUID, count int) (int, error)
	setStatus func(ctx context.Context, id uuid.UUID, st domain.HotelStatus) (domain.Hotel, error)
}

func (m *mockHotelRepo) Create(ctx context.Context, h domain.Hotel) (domain.Hotel, error) {
	if m.create != nil {
		return m.create(ctx, h)
	}
	return m.base.Create(ctx, h)
}
func (m *mockHotelRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Hotel, error) {
	if m.getByID != nil {
		return m.getByID(ctx, id)
	}
	return m.base.GetByID(ctx, id)
}
func (m *mockHotelRepo) Query(ctx context.Context, f repo.HotelFilter) ([]repo.Decoded[domain.Hotel], error) {
	if m.query != nil {
		return m.query(ctx, f)
	}
	return m.base.Query(ctx, f)
}
func (m *mockHotelRepo) Reserve(ctx context.Context, id uuid.UUID, count int) (int, error) {
	if m.reserve != nil {
		return m.reserve(ctx, id, count)
	}
	return m.base.Reserve(ctx, id, count)
}
func (m *mockHotelRepo) Release(ctx context.Context, id uuid.UUID, count int) (int, error) {
	if m.release != nil {
		return m.release(ctx, id, count)
	}
	return m.base.Release(ctx, id, count)
}
func (m *mockHotelRepo) SetStatus(ctx context.Context, id uuid.UUID, st domain.HotelStatus) (domain.Hotel, error) {
	if m.setStatus != nil {
		return m.setStatus(ctx, id, st)
	}
	return m.base.SetStatus(ctx, id, st)
}

// mockReservationRepo is the repo.ReservationRepo counterpart of mockHotelRepo.
type mockReservationRepo struct {
	base      repo.ReservationRepo
	create    func(ctx context.Context, r domain.Reservation) (domain.Reservation, error)
	getByID   func(ctx context.Context, id uuid.UUID) (domain.Reservation, error)
	getByCode func(ctx context.Context, code string) (domain.Reservation, error)
	update    func(ctx context.Context, r domain.Reservation) (domain.Reservation, error)
	query     func(ctx context.Context, f repo.ReservationFilter) ([]repo.Decoded[domain.Reservation], error)
}

func (m *mockReservationRepo) Create(ctx context.Context, r domain.Reservation) (domain.Reservation, error) {
	if m.create != nil {
		return m.create(ctx, r)
	}
	return m.base.Create(ctx, r)
}
func (m *mockReservationRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Reservation, error) {
	if m.getByID != nil {
		return m.getByID(ctx, id)
	}
	return m.base.GetByID(ctx, id)
}
func (m *mockReservationRepo) GetByConfirmationNumber(ctx context.Context, code string) (domain.Reservation, error) {
	if m.getByCode != nil {
		return m.getByCode(ctx, code)
	}
	return m.base.GetByConfirmationNumber(ctx, code)
}
func (m *mockReservationRepo) Update(ctx context.Context, r domain.Reservation) (domain.Reservation, error) {
	if m.update != nil {
		return m.update(ctx, r)
	}
	return m.base.Update(ctx, r)
}
func (m *mockReservationRepo) Query(ctx context.Context, f repo.ReservationFilter) ([]repo.Decoded[domain.Reservation], error) {
	if m.query != nil {
		return m.query(ctx, f)
	}
	return m.base.Query(ctx, f)
}

// compile-time checks: the mocks must satisfy the repo interfaces.
var (
	_ repo.HotelRepo       = (*mockHotelRepo)(nil)
	_ repo.ReservationRepo = (*mockReservationRepo)(nil)
)

// seqCodes hands out confirmation numbers from a fixed list, then counters.
type seqCodes struct {
	mu    sync.Mutex
	codes []string
	n     int
}

func (g *seqCodes) Generate(string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	if g.n <= len(g.codes) {
		return g.codes[g.n-1], nil
	}
	return "HM" + uuid.NewString(), nil
}

// ---- fixtures --------------------------------------------------------------

var today = time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC)

func clock() time.Time { return today }

func day(offset int) time.Time { return domain.DateOf(today).AddDate(0, 0, offset) }

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

var (
	guest = domain.Caller{UserID: "user-1"}
	other = domain.Caller{UserID: "user-2"}
	admin = domain.Caller{UserID: "admin-1", IsAdmin: true}
)

func hotelFixture() domain.Hotel {
	lat, lon := 52.2297, 21.0122
	return domain.Hotel{
		Name:             "Hotel Bristol",
		Category:         domain.CategoryHotel,
		Address:          "Krakowskie Przedmieście 42/44",
		City:             "Warszawa",
		Country:          "Poland",
		Latitude:         &lat,
		Longitude:        &lon,
		PricePerNight:    decimal.NewFromInt(450),
		Currency:         "PLN",
		MaxGuestsPerRoom: 2,
		TotalRooms:       10,
		AvailableRooms:   10,
		Amenities:        []string{"wifi", "spa"},
		Rating:           4.5,
		Status:           domain.HotelActive,
	}
}

func bookingFor(hotelID uuid.UUID) domain.NewReservation {
	return domain.NewReservation{
		HotelID:      hotelID,
		CheckInDate:  day(7),
		CheckOutDate: day(10),
		Guests:       2,
		Rooms:        1,
		GuestName:    "Jan Kowalski",
		GuestEmail:   "jan@example.com",
		GuestPhone:   "+48 123 456 789",
	}
}

// env is a ReservationService over memory repos wrapped in mocks.
type env struct {
	hotels       *mockHotelRepo
	reservations *mockReservationRepo
	codes        *seqCodes
	svc          *service.ReservationService
}

func newEnv() *env {
	e := &env{
		hotels:       &mockHotelRepo{base: memory.NewHotelRepo()},
		reservations: &mockReservationRepo{base: memory.NewReservationRepo()},
		codes:        &seqCodes{},
	}
	log := discardLogger()
	inv := service.NewInventoryTracker(e.hotels, log, nil)
	e.svc = service.NewReservationService(e.reservations, e.hotels, inv, e.codes, log, nil).WithClock(clock)
	return e
}

func (e *env) addHotel(h domain.Hotel) domain.Hotel {
	created, err := e.hotels.base.Create(context.Background(), h)
	if err != nil {
		panic(err)
	}
	return created
}

func (e *env) available(id uuid.UUID) int {
	h, err := e.hotels.base.GetByID(context.Background(), id)
	if err != nil {
		panic(err)
	}
	return h.AvailableRooms
}

var repoFilterAll = repo.ReservationFilter{}
