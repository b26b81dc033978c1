package repo_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hotelmate/backend/internal/domain"
	"github.com/hotelmate/backend/internal/repo"
	"github.com/hotelmate/backend/testutil"
)

// newTestTx opens a transaction against the test database. The transaction is
// rolled back when the test finishes, giving free per-test isolation.
func newTestTx(t *testing.T) pgx.Tx {
	t.Helper()
	pool := testutil.NewPool(t)

	tx, err := pool.Begin(context.Background())
	require.NoError(t, err, "begin transaction")

	t.Cleanup(func() {
		_ = tx.Rollback(context.Background())
	})
	return tx
}

func hotelFixture() domain.Hotel {
	lat, lon := 52.2297, 21.0122
	return domain.Hotel{
		Name:             "Hotel Bristol",
		Description:      "Historic hotel on the Royal Route",
		Category:         domain.CategoryHotel,
		Address:          "Krakowskie Przedmieście 42/44",
		City:             "Warszawa",
		Country:          "Poland",
		Latitude:         &lat,
		Longitude:        &lon,
		PricePerNight:    decimal.RequireFromString("450.00"),
		Currency:         "PLN",
		MaxGuestsPerRoom: 3,
		TotalRooms:       5,
		AvailableRooms:   5,
		Amenities:        []string{"wifi", "spa"},
		Rating:           4.7,
		ReviewCount:      120,
		Status:           domain.HotelActive,
	}
}

func TestHotelRepo_CreateAndGet(t *testing.T) {
	r := repo.NewHotelRepo(newTestTx(t))
	ctx := context.Background()

	created, err := r.Create(ctx, hotelFixture())
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID, "ID should be DB-generated")
	assert.False(t, created.CreatedAt.IsZero())

	got, err := r.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hotel Bristol", got.Name)
	assert.Equal(t, "PLN", got.Currency)
	assert.True(t, got.PricePerNight.Equal(decimal.NewFromInt(450)), "got %s", got.PricePerNight)
	assert.Equal(t, []string{"wifi", "spa"}, got.Amenities)
	require.True(t, got.HasCoordinates())
	assert.InDelta(t, 52.2297, *got.Latitude, 1e-9)
}

func TestHotelRepo_GetByID_NotFound(t *testing.T) {
	r := repo.NewHotelRepo(newTestTx(t))

	_, err := r.GetByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHotelRepo_Query_Filters(t *testing.T) {
	r := repo.NewHotelRepo(newTestTx(t))
	ctx := context.Background()

	a := hotelFixture()
	_, err := r.Create(ctx, a)
	require.NoError(t, err)

	b := hotelFixture()
	b.Name, b.City, b.Category = "Wawel Inn", "Kraków", domain.CategoryGuesthouse
	_, err = r.Create(ctx, b)
	require.NoError(t, err)

	c := hotelFixture()
	c.Name, c.Status = "Closed Hotel", domain.HotelInactive
	_, err = r.Create(ctx, c)
	require.NoError(t, err)

	got, err := r.Query(ctx, repo.HotelFilter{Status: domain.HotelActive, City: "warszawa"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.NoError(t, got[0].Err)
	assert.Equal(t, "Hotel Bristol", got[0].Value.Name)

	got, err = r.Query(ctx, repo.HotelFilter{Category: domain.CategoryGuesthouse})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Wawel Inn", got[0].Value.Name)
}

func TestHotelRepo_Query_CorruptRowIsReportedNotFatal(t *testing.T) {
	tx := newTestTx(t)
	r := repo.NewHotelRepo(tx)
	ctx := context.Background()

	good, err := r.Create(ctx, hotelFixture())
	require.NoError(t, err)
	bad, err := r.Create(ctx, hotelFixture())
	require.NoError(t, err)
	_, err = tx.Exec(ctx, `UPDATE hotels SET category = 'castle' WHERE id = $1`, bad.ID)
	require.NoError(t, err)

	got, err := r.Query(ctx, repo.HotelFilter{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, good.ID, got[0].ID)
	assert.NoError(t, got[0].Err)
	assert.Equal(t, bad.ID, got[1].ID)
	assert.ErrorIs(t, got[1].Err, domain.ErrCorruptRecord)

	_, err = r.GetByID(ctx, bad.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, err, domain.ErrCorruptRecord)
}

func TestHotelRepo_ReserveAndRelease(t *testing.T) {
	r := repo.NewHotelRepo(newTestTx(t))
	ctx := context.Background()

	h, err := r.Create(ctx, hotelFixture())
	require.NoError(t, err)

	left, err := r.Reserve(ctx, h.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, left)

	_, err = r.Reserve(ctx, h.ID, 3)
	assert.ErrorIs(t, err, domain.ErrInsufficientInventory)

	got, err := r.GetByID(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.AvailableRooms, "failed reserve must not change availability")

	avail, err := r.Release(ctx, h.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, 5, avail, "release is capped at total rooms")
}

func TestHotelRepo_Reserve_UnknownHotel(t *testing.T) {
	r := repo.NewHotelRepo(newTestTx(t))

	_, err := r.Reserve(context.Background(), uuid.New(), 1)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// TestHotelRepo_Reserve_Concurrent runs against the pool rather than a
// transaction so that the reservations really race.
func TestHotelRepo_Reserve_Concurrent(t *testing.T) {
	pool := testutil.NewPool(t)
	r := repo.NewHotelRepo(pool)
	ctx := context.Background()

	h, err := r.Create(ctx, hotelFixture())
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM hotels WHERE id = $1`, h.ID)
	})

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.Reserve(ctx, h.ID, 1); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	got, err := r.GetByID(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, ok)
	assert.Equal(t, 0, got.AvailableRooms)
}

func TestHotelRepo_SetStatus(t *testing.T) {
	r := repo.NewHotelRepo(newTestTx(t))
	ctx := context.Background()

	h, err := r.Create(ctx, hotelFixture())
	require.NoError(t, err)

	got, err := r.SetStatus(ctx, h.ID, domain.HotelInactive)
	require.NoError(t, err)
	assert.Equal(t, domain.HotelInactive, got.Status)

	_, err = r.SetStatus(ctx, uuid.New(), domain.HotelInactive)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
