package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/hotelmate/backend/internal/domain"
)

// HotelRepo defines the persistence operations for hotels.
// Reserve and Release are the only writers of available_rooms and must be
// atomic per hotel: concurrent callers can never drive the count below zero or
// above total_rooms.
type HotelRepo interface {
	// Create inserts a new hotel and returns the persisted record (with
	// store-generated id, created_at and updated_at populated).
	Create(ctx context.Context, h domain.Hotel) (domain.Hotel, error)

	// GetByID retrieves a single hotel.
	// Returns domain.ErrNotFound if no hotel with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Hotel, error)

	// Query returns every hotel matching f in creation order.
	Query(ctx context.Context, f HotelFilter) ([]Decoded[domain.Hotel], error)

	// Reserve atomically decrements available rooms by count and returns the
	// remaining count. Returns domain.ErrInsufficientInventory, leaving the
	// hotel untouched, when fewer than count rooms are available.
	Reserve(ctx context.Context, id uuid.UUID, count int) (int, error)

	// Release atomically increments available rooms by count, capped at the
	// hotel's total rooms, and returns the new count.
	Release(ctx context.Context, id uuid.UUID, count int) (int, error)

	// SetStatus changes the hotel's operating status and returns the updated record.
	SetStatus(ctx context.Context, id uuid.UUID, status domain.HotelStatus) (domain.Hotel, error)
}

const hotelColumns = `
	id, name, description, category, address, city, country, latitude, longitude,
	price_per_night, currency, max_guests_per_room, total_rooms, available_rooms,
	amenities, rating, review_count, status, created_at, updated_at`

// pgHotelRepo is the Postgres implementation of HotelRepo.
type pgHotelRepo struct {
	db db
}

// NewHotelRepo constructs a HotelRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewHotelRepo(db db) HotelRepo {
	return &pgHotelRepo{db: db}
}

func (r *pgHotelRepo) Create(ctx context.Context, h domain.Hotel) (domain.Hotel, error) {
	q := `
		INSERT INTO hotels (
			name, description, category, address, city, country, latitude, longitude,
			price_per_night, currency, max_guests_per_room, total_rooms, available_rooms,
			amenities, rating, review_count, status)
		VALUES (
			@name, @description, @category, @address, @city, @country, @latitude, @longitude,
			@price_per_night, @currency, @max_guests_per_room, @total_rooms, @available_rooms,
			@amenities, @rating, @review_count, @status)
		RETURNING ` + hotelColumns

	amenities := h.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	args := pgx.NamedArgs{
		"name":                h.Name,
		"description":         h.Description,
		"category":            string(h.Category),
		"address":             h.Address,
		"city":                h.City,
		"country":             h.Country,
		"latitude":            h.Latitude, // nil becomes NULL
		"longitude":           h.Longitude,
		"price_per_night":     h.PricePerNight.String(),
		"currency":            h.Currency,
		"max_guests_per_room": h.MaxGuestsPerRoom,
		"total_rooms":         h.TotalRooms,
		"available_rooms":     h.AvailableRooms,
		"amenities":           amenities,
		"rating":              h.Rating,
		"review_count":        h.ReviewCount,
		"status":              string(h.Status),
	}

	result, err := scanHotel(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Hotel{}, fmt.Errorf("repo.HotelRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgHotelRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Hotel, error) {
	q := `SELECT ` + hotelColumns + ` FROM hotels WHERE id = @id`

	result, err := scanHotel(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Hotel{}, fmt.Errorf("repo.HotelRepo.GetByID: %w", singleFetchErr(err))
	}
	return result, nil
}

func (r *pgHotelRepo) Query(ctx context.Context, f HotelFilter) ([]Decoded[domain.Hotel], error) {
	var (
		where []string
		args  = pgx.NamedArgs{}
	)
	if f.Status != "" {
		where = append(where, "status = @status")
		args["status"] = string(f.Status)
	}
	if f.City != "" {
		where = append(where, "lower(city) = lower(@city)")
		args["city"] = f.City
	}
	if f.Country != "" {
		where = append(where, "lower(country) = lower(@country)")
		args["country"] = f.Country
	}
	if f.Category != "" {
		where = append(where, "category = @category")
		args["category"] = string(f.Category)
	}

	q := `SELECT ` + hotelColumns + ` FROM hotels`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.HotelRepo.Query: %w", err)
	}
	defer rows.Close()

	var out []Decoded[domain.Hotel]
	for rows.Next() {
		h, err := scanHotel(rows)
		if err != nil && !errors.Is(err, domain.ErrCorruptRecord) {
			return nil, fmt.Errorf("repo.HotelRepo.Query: scan: %w", err)
		}
		out = append(out, Decoded[domain.Hotel]{ID: h.ID, Value: h, Err: err})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.HotelRepo.Query: rows: %w", err)
	}
	return out, nil
}

func (r *pgHotelRepo) Reserve(ctx context.Context, id uuid.UUID, count int) (int, error) {
	const q = `
		UPDATE hotels
		SET available_rooms = available_rooms - @count,
		    updated_at      = now()
		WHERE id = @id AND available_rooms >= @count
		RETURNING available_rooms`

	var remaining int
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "count": count}).Scan(&remaining)
	if errors.Is(err, pgx.ErrNoRows) {
		ok, exErr := exists(ctx, r.db, "hotels", id)
		switch {
		case exErr != nil:
			return 0, fmt.Errorf("repo.HotelRepo.Reserve: %w", exErr)
		case !ok:
			return 0, fmt.Errorf("repo.HotelRepo.Reserve: %w", domain.ErrNotFound)
		default:
			return 0, fmt.Errorf("repo.HotelRepo.Reserve: %w", domain.ErrInsufficientInventory)
		}
	}
	if err != nil {
		return 0, fmt.Errorf("repo.HotelRepo.Reserve: %w", err)
	}
	return remaining, nil
}

func (r *pgHotelRepo) Release(ctx context.Context, id uuid.UUID, count int) (int, error) {
	const q = `
		UPDATE hotels
		SET available_rooms = LEAST(total_rooms, available_rooms + @count),
		    updated_at      = now()
		WHERE id = @id
		RETURNING available_rooms`

	var available int
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "count": count}).Scan(&available)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("repo.HotelRepo.Release: %w", domain.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("repo.HotelRepo.Release: %w", err)
	}
	return available, nil
}

func (r *pgHotelRepo) SetStatus(ctx context.Context, id uuid.UUID, status domain.HotelStatus) (domain.Hotel, error) {
	q := `
		UPDATE hotels
		SET status = @status, updated_at = now()
		WHERE id = @id
		RETURNING ` + hotelColumns

	result, err := scanHotel(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "status": string(status)}))
	if err != nil {
		return domain.Hotel{}, fmt.Errorf("repo.HotelRepo.SetStatus: %w", singleFetchErr(err))
	}
	return result, nil
}

// scanHotel maps a single row into a domain.Hotel. Rows with unknown enum
// values come back with the ID set and an error wrapping domain.ErrCorruptRecord.
func scanHotel(s scanner) (domain.Hotel, error) {
	var (
		h        domain.Hotel
		id       pgtype.UUID
		category string
		status   string
	)

	err := s.Scan(
		&id, &h.Name, &h.Description, &category, &h.Address, &h.City, &h.Country,
		&h.Latitude, &h.Longitude, &h.PricePerNight, &h.Currency, &h.MaxGuestsPerRoom,
		&h.TotalRooms, &h.AvailableRooms, &h.Amenities, &h.Rating, &h.ReviewCount,
		&status, &h.CreatedAt, &h.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Hotel{}, domain.ErrNotFound
		}
		return domain.Hotel{}, err
	}
	h.ID = uuid.UUID(id.Bytes)
	h.Currency = strings.TrimSpace(h.Currency)

	if h.Category, err = domain.ParseHotelCategory(category); err != nil {
		return h, fmt.Errorf("%w: hotel %s: %w", domain.ErrCorruptRecord, h.ID, err)
	}
	if h.Status, err = domain.ParseHotelStatus(status); err != nil {
		return h, fmt.Errorf("%w: hotel %s: %w", domain.ErrCorruptRecord, h.ID, err)
	}
	return h, nil
}

// singleFetchErr makes a corrupt record on a single-row read also satisfy
// errors.Is(err, domain.ErrNotFound).
func singleFetchErr(err error) error {
	if errors.Is(err, domain.ErrCorruptRecord) {
		return fmt.Errorf("%w: %w", domain.ErrNotFound, err)
	}
	return err
}
