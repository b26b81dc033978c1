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

// ReservationRepo defines the persistence operations for reservations.
type ReservationRepo interface {
	// Create inserts a new reservation at version 1 and returns the persisted
	// record. Returns domain.ErrDuplicate if the confirmation number is taken.
	Create(ctx context.Context, r domain.Reservation) (domain.Reservation, error)

	// GetByID retrieves a single reservation.
	// Returns domain.ErrNotFound if no reservation with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Reservation, error)

	// GetByConfirmationNumber retrieves a reservation by its unique,
	// case-sensitive confirmation number.
	GetByConfirmationNumber(ctx context.Context, code string) (domain.Reservation, error)

	// Update overwrites the mutable fields of r if the stored version still
	// equals r.Version and returns the stored record with the version bumped.
	// Returns domain.ErrConflict if another writer got there first.
	Update(ctx context.Context, r domain.Reservation) (domain.Reservation, error)

	// Query returns every reservation matching f in creation order.
	Query(ctx context.Context, f ReservationFilter) ([]Decoded[domain.Reservation], error)
}

const reservationColumns = `
	id, confirmation_number, user_id, hotel_id, hotel_name, hotel_address, hotel_city,
	check_in_date, check_out_date, nights, guests, rooms,
	guest_name, guest_email, guest_phone, special_requests,
	price_per_night, total_price, currency, status, payment_status,
	cancelled_at, cancellation_reason, version, created_at, updated_at`

// pgReservationRepo is the Postgres implementation of ReservationRepo.
type pgReservationRepo struct {
	db db
}

// NewReservationRepo constructs a ReservationRepo backed by the provided db connection.
func NewReservationRepo(db db) ReservationRepo {
	return &pgReservationRepo{db: db}
}

func (r *pgReservationRepo) Create(ctx context.Context, res domain.Reservation) (domain.Reservation, error) {
	q := `
		INSERT INTO reservations (
			confirmation_number, user_id, hotel_id, hotel_name, hotel_address, hotel_city,
			check_in_date, check_out_date, nights, guests, rooms,
			guest_name, guest_email, guest_phone, special_requests,
			price_per_night, total_price, currency, status, payment_status,
			cancelled_at, cancellation_reason, version)
		VALUES (
			@confirmation_number, @user_id, @hotel_id, @hotel_name, @hotel_address, @hotel_city,
			@check_in_date, @check_out_date, @nights, @guests, @rooms,
			@guest_name, @guest_email, @guest_phone, @special_requests,
			@price_per_night, @total_price, @currency, @status, @payment_status,
			@cancelled_at, @cancellation_reason, 1)
		RETURNING ` + reservationColumns

	args := reservationArgs(res)
	args["confirmation_number"] = res.ConfirmationNumber
	args["user_id"] = res.UserID
	args["hotel_id"] = res.HotelID
	args["hotel_name"] = res.HotelName
	args["hotel_address"] = res.HotelAddress
	args["hotel_city"] = res.HotelCity
	args["price_per_night"] = res.PricePerNight.String()
	args["currency"] = res.Currency

	result, err := scanReservation(r.db.QueryRow(ctx, q, args))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.Create: %w", domain.ErrDuplicate)
		}
		return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgReservationRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Reservation, error) {
	q := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = @id`

	result, err := scanReservation(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.GetByID: %w", singleFetchErr(err))
	}
	return result, nil
}

func (r *pgReservationRepo) GetByConfirmationNumber(ctx context.Context, code string) (domain.Reservation, error) {
	q := `SELECT ` + reservationColumns + ` FROM reservations WHERE confirmation_number = @code`

	result, err := scanReservation(r.db.QueryRow(ctx, q, pgx.NamedArgs{"code": code}))
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.GetByConfirmationNumber: %w", singleFetchErr(err))
	}
	return result, nil
}

func (r *pgReservationRepo) Update(ctx context.Context, res domain.Reservation) (domain.Reservation, error) {
	q := `
		UPDATE reservations
		SET check_in_date       = @check_in_date,
		    check_out_date      = @check_out_date,
		    nights              = @nights,
		    guests              = @guests,
		    rooms               = @rooms,
		    guest_name          = @guest_name,
		    guest_email         = @guest_email,
		    guest_phone         = @guest_phone,
		    special_requests    = @special_requests,
		    total_price         = @total_price,
		    status              = @status,
		    payment_status      = @payment_status,
		    cancelled_at        = @cancelled_at,
		    cancellation_reason = @cancellation_reason,
		    version             = version + 1,
		    updated_at          = now()
		WHERE id = @id AND version = @version
		RETURNING ` + reservationColumns

	args := reservationArgs(res)
	args["id"] = res.ID
	args["version"] = res.Version

	result, err := scanReservation(r.db.QueryRow(ctx, q, args))
	if errors.Is(err, domain.ErrNotFound) {
		ok, exErr := exists(ctx, r.db, "reservations", res.ID)
		switch {
		case exErr != nil:
			return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.Update: %w", exErr)
		case ok:
			return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.Update: %w", domain.ErrConflict)
		}
	}
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.Update: %w", err)
	}
	return result, nil
}

func (r *pgReservationRepo) Query(ctx context.Context, f ReservationFilter) ([]Decoded[domain.Reservation], error) {
	var (
		where []string
		args  = pgx.NamedArgs{}
	)
	if f.UserID != "" {
		where = append(where, "user_id = @user_id")
		args["user_id"] = f.UserID
	}
	if f.HotelID != uuid.Nil {
		where = append(where, "hotel_id = @hotel_id")
		args["hotel_id"] = f.HotelID
	}
	if f.Status != "" {
		where = append(where, "status = @status")
		args["status"] = string(f.Status)
	}
	if f.GuestEmail != "" {
		where = append(where, "lower(guest_email) = lower(@guest_email)")
		args["guest_email"] = f.GuestEmail
	}

	q := `SELECT ` + reservationColumns + ` FROM reservations`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.ReservationRepo.Query: %w", err)
	}
	defer rows.Close()

	var out []Decoded[domain.Reservation]
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil && !errors.Is(err, domain.ErrCorruptRecord) {
			return nil, fmt.Errorf("repo.ReservationRepo.Query: scan: %w", err)
		}
		out = append(out, Decoded[domain.Reservation]{ID: res.ID, Value: res, Err: err})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.ReservationRepo.Query: rows: %w", err)
	}
	return out, nil
}

// reservationArgs returns the named args shared by insert and update.
func reservationArgs(res domain.Reservation) pgx.NamedArgs {
	return pgx.NamedArgs{
		"check_in_date":       domain.DateOf(res.CheckInDate),
		"check_out_date":      domain.DateOf(res.CheckOutDate),
		"nights":              res.Nights,
		"guests":              res.Guests,
		"rooms":               res.Rooms,
		"guest_name":          res.GuestName,
		"guest_email":         res.GuestEmail,
		"guest_phone":         res.GuestPhone,
		"special_requests":    res.SpecialRequests,
		"total_price":         res.TotalPrice.String(),
		"status":              string(res.Status),
		"payment_status":      string(res.PaymentStatus),
		"cancelled_at":        res.CancelledAt, // nil becomes NULL
		"cancellation_reason": res.CancellationReason,
	}
}

// scanReservation maps a single row into a domain.Reservation. Dates come back
// as UTC midnight. Rows with unknown enum values come back with the ID set and
// an error wrapping domain.ErrCorruptRecord.
func scanReservation(s scanner) (domain.Reservation, error) {
	var (
		res           domain.Reservation
		id, hotelID   pgtype.UUID
		checkIn       pgtype.Date
		checkOut      pgtype.Date
		status        string
		paymentStatus string
	)

	err := s.Scan(
		&id, &res.ConfirmationNumber, &res.UserID, &hotelID,
		&res.HotelName, &res.HotelAddress, &res.HotelCity,
		&checkIn, &checkOut, &res.Nights, &res.Guests, &res.Rooms,
		&res.GuestName, &res.GuestEmail, &res.GuestPhone, &res.SpecialRequests,
		&res.PricePerNight, &res.TotalPrice, &res.Currency, &status, &paymentStatus,
		&res.CancelledAt, &res.CancellationReason, &res.Version, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Reservation{}, domain.ErrNotFound
		}
		return domain.Reservation{}, err
	}

	res.ID = uuid.UUID(id.Bytes)
	res.HotelID = uuid.UUID(hotelID.Bytes)
	res.CheckInDate = domain.DateOf(checkIn.Time)
	res.CheckOutDate = domain.DateOf(checkOut.Time)
	res.Currency = strings.TrimSpace(res.Currency)

	if res.Status, err = domain.ParseReservationStatus(status); err != nil {
		return res, fmt.Errorf("%w: reservation %s: %w", domain.ErrCorruptRecord, res.ID, err)
	}
	if res.PaymentStatus, err = domain.ParsePaymentStatus(paymentStatus); err != nil {
		return res, fmt.Errorf("%w: reservation %s: %w", domain.ErrCorruptRecord, res.ID, err)
	}
	return res, nil
}
