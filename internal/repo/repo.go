// Package repo contains all persistence logic for the booking core.
// Each collection has its own file with an interface and a Postgres
// implementation; package memory provides in-process implementations of the
// same interfaces. No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hotelmate/backend/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// Decoded is one row of a list query. Err is non-nil (and wraps
// domain.ErrCorruptRecord) when the stored row could not be mapped back to a
// domain value; callers skip such rows instead of failing the whole query.
type Decoded[T any] struct {
	ID    uuid.UUID
	Value T
	Err   error
}

// HotelFilter restricts a hotel query. Zero-valued fields are not applied.
// Text fields are matched case-insensitively.
type HotelFilter struct {
	Status   domain.HotelStatus
	City     string
	Country  string
	Category domain.HotelCategory
}

// ReservationFilter restricts a reservation query. Zero-valued fields are not
// applied. GuestEmail is matched case-insensitively.
type ReservationFilter struct {
	UserID     string
	HotelID    uuid.UUID
	Status     domain.ReservationStatus
	GuestEmail string
}

// uniqueViolation is the Postgres SQLSTATE for a unique constraint violation.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// exists reports whether a row with the given id exists in table.
// table is always a package constant, never user input.
func exists(ctx context.Context, d db, table string, id uuid.UUID) (bool, error) {
	var ok bool
	err := d.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM `+table+` WHERE id = @id)`, pgx.NamedArgs{"id": id}).Scan(&ok)
	return ok, err
}
