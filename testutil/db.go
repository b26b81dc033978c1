// Package testutil provides shared helpers for the Postgres integration tests.
// Every helper that needs a database skips the calling test when
// TEST_DATABASE_URL is not set.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

const pingTimeout = 5 * time.Second

// NewPool returns a pool on the test database, closed when the test ends.
// The pool is sized for the concurrent inventory tests.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	cfg, err := pgxpool.ParseConfig(dsn(t))
	if err != nil {
		t.Fatalf("testutil.NewPool: parse dsn: %v", err)
	}
	cfg.MaxConns = 16

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		t.Fatalf("testutil.NewPool: open: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Fatalf("testutil.NewPool: ping: %v", err)
	}

	t.Cleanup(pool.Close)
	return pool
}

// NewSQLDB returns a database/sql handle on the test database for goose.
// It shares a pgx pool underneath and is closed when the test ends.
func NewSQLDB(t *testing.T) *sql.DB {
	t.Helper()
	db := stdlib.OpenDBFromPool(NewPool(t))
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// MustOpenSQLDB opens a database/sql handle for dsn and panics if the database
// is unreachable. Meant for TestMain, where there is no *testing.T.
// The caller closes the returned handle.
func MustOpenSQLDB(dsn string) *sql.DB {
	db, err := openSQLDB(dsn)
	if err != nil {
		panic("testutil.MustOpenSQLDB: " + err.Error())
	}
	return db
}

func openSQLDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return db, nil
}

func dsn(t *testing.T) string {
	t.Helper()
	v := os.Getenv("TEST_DATABASE_URL")
	if v == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping integration test")
	}
	return v
}
