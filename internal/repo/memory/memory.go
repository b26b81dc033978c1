// Package memory provides in-process implementations of the repo interfaces.
// They are used for local development (STORAGE_BACKEND=memory) and by service
// tests that need real concurrency semantics without a database.
package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hotelmate/backend/internal/domain"
	"github.com/hotelmate/backend/internal/repo"
)

var (
	_ repo.HotelRepo       = (*HotelRepo)(nil)
	_ repo.ReservationRepo = (*ReservationRepo)(nil)
)

// HotelRepo is a mutex-guarded map of hotels. Reserve and Release hold the
// write lock for the whole check-and-update, which makes them atomic.
type HotelRepo struct {
	mu     sync.RWMutex
	hotels map[uuid.UUID]domain.Hotel
	order  []uuid.UUID
	now    func() time.Time
}

// NewHotelRepo returns an empty HotelRepo.
func NewHotelRepo() *HotelRepo {
	return &HotelRepo{hotels: make(map[uuid.UUID]domain.Hotel), now: time.Now}
}

func (r *HotelRepo) Create(_ context.Context, h domain.Hotel) (domain.Hotel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	if _, dup := r.hotels[h.ID]; dup {
		return domain.Hotel{}, fmt.Errorf("memory.HotelRepo.Create: %w", domain.ErrDuplicate)
	}
	now := r.now().UTC()
	h.CreatedAt, h.UpdatedAt = now, now
	h.Amenities = slices.Clone(h.Amenities)

	r.hotels[h.ID] = h
	r.order = append(r.order, h.ID)
	return cloneHotel(h), nil
}

func (r *HotelRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Hotel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.hotels[id]
	if !ok {
		return domain.Hotel{}, fmt.Errorf("memory.HotelRepo.GetByID: %w", domain.ErrNotFound)
	}
	return cloneHotel(h), nil
}

func (r *HotelRepo) Query(_ context.Context, f repo.HotelFilter) ([]repo.Decoded[domain.Hotel], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []repo.Decoded[domain.Hotel]
	for _, id := range r.order {
		h := r.hotels[id]
		if f.Status != "" && h.Status != f.Status {
			continue
		}
		if f.City != "" && !strings.EqualFold(h.City, f.City) {
			continue
		}
		if f.Country != "" && !strings.EqualFold(h.Country, f.Country) {
			continue
		}
		if f.Category != "" && h.Category != f.Category {
			continue
		}
		out = append(out, repo.Decoded[domain.Hotel]{ID: id, Value: cloneHotel(h)})
	}
	return out, nil
}

func (r *HotelRepo) Reserve(_ context.Context, id uuid.UUID, count int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.hotels[id]
	if !ok {
		return 0, fmt.Errorf("memory.HotelRepo.Reserve: %w", domain.ErrNotFound)
	}
	if h.AvailableRooms < count {
		return 0, fmt.Errorf("memory.HotelRepo.Reserve: %w", domain.ErrInsufficientInventory)
	}
	h.AvailableRooms -= count
	h.UpdatedAt = r.now().UTC()
	r.hotels[id] = h
	return h.AvailableRooms, nil
}

func (r *HotelRepo) Release(_ context.Context, id uuid.UUID, count int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.hotels[id]
	if !ok {
		return 0, fmt.Errorf("memory.HotelRepo.Release: %w", domain.ErrNotFound)
	}
	h.AvailableRooms = min(h.TotalRooms, h.AvailableRooms+count)
	h.UpdatedAt = r.now().UTC()
	r.hotels[id] = h
	return h.AvailableRooms, nil
}

func (r *HotelRepo) SetStatus(_ context.Context, id uuid.UUID, status domain.HotelStatus) (domain.Hotel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.hotels[id]
	if !ok {
		return domain.Hotel{}, fmt.Errorf("memory.HotelRepo.SetStatus: %w", domain.ErrNotFound)
	}
	h.Status = status
	h.UpdatedAt = r.now().UTC()
	r.hotels[id] = h
	return cloneHotel(h), nil
}

func cloneHotel(h domain.Hotel) domain.Hotel {
	h.Amenities = slices.Clone(h.Amenities)
	return h
}

// ReservationRepo is a mutex-guarded map of reservations with a unique index
// on confirmation number and version-checked updates.
type ReservationRepo struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]domain.Reservation
	byCode map[string]uuid.UUID
	order  []uuid.UUID
	now    func() time.Time
}

// NewReservationRepo returns an empty ReservationRepo.
func NewReservationRepo() *ReservationRepo {
	return &ReservationRepo{
		byID:   make(map[uuid.UUID]domain.Reservation),
		byCode: make(map[string]uuid.UUID),
		now:    time.Now,
	}
}

func (r *ReservationRepo) Create(_ context.Context, res domain.Reservation) (domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.byCode[res.ConfirmationNumber]; dup {
		return domain.Reservation{}, fmt.Errorf("memory.ReservationRepo.Create: %w", domain.ErrDuplicate)
	}
	if res.ID == uuid.Nil {
		res.ID = uuid.New()
	}
	now := r.now().UTC()
	res.CreatedAt, res.UpdatedAt = now, now
	res.Version = 1

	r.byID[res.ID] = res
	r.byCode[res.ConfirmationNumber] = res.ID
	r.order = append(r.order, res.ID)
	return res, nil
}

func (r *ReservationRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res, ok := r.byID[id]
	if !ok {
		return domain.Reservation{}, fmt.Errorf("memory.ReservationRepo.GetByID: %w", domain.ErrNotFound)
	}
	return res, nil
}

func (r *ReservationRepo) GetByConfirmationNumber(_ context.Context, code string) (domain.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byCode[code]
	if !ok {
		return domain.Reservation{}, fmt.Errorf("memory.ReservationRepo.GetByConfirmationNumber: %w", domain.ErrNotFound)
	}
	return r.byID[id], nil
}

func (r *ReservationRepo) Update(_ context.Context, res domain.Reservation) (domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byID[res.ID]
	if !ok {
		return domain.Reservation{}, fmt.Errorf("memory.ReservationRepo.Update: %w", domain.ErrNotFound)
	}
	if cur.Version != res.Version {
		return domain.Reservation{}, fmt.Errorf("memory.ReservationRepo.Update: %w", domain.ErrConflict)
	}

	// Identity, snapshot and creation fields are immutable.
	res.ConfirmationNumber = cur.ConfirmationNumber
	res.UserID = cur.UserID
	res.HotelID = cur.HotelID
	res.HotelName, res.HotelAddress, res.HotelCity = cur.HotelName, cur.HotelAddress, cur.HotelCity
	res.PricePerNight = cur.PricePerNight
	res.Currency = cur.Currency
	res.CreatedAt = cur.CreatedAt

	res.Version = cur.Version + 1
	res.UpdatedAt = r.now().UTC()
	r.byID[res.ID] = res
	return res, nil
}

func (r *ReservationRepo) Query(_ context.Context, f repo.ReservationFilter) ([]repo.Decoded[domain.Reservation], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []repo.Decoded[domain.Reservation]
	for _, id := range r.order {
		res := r.byID[id]
		if f.UserID != "" && res.UserID != f.UserID {
			continue
		}
		if f.HotelID != uuid.Nil && res.HotelID != f.HotelID {
			continue
		}
		if f.Status != "" && res.Status != f.Status {
			continue
		}
		if f.GuestEmail != "" && !strings.EqualFold(res.GuestEmail, f.GuestEmail) {
			continue
		}
		out = append(out, repo.Decoded[domain.Reservation]{ID: id, Value: res})
	}
	return out, nil
}
