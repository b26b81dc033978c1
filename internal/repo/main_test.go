package repo_test

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/hotelmate/backend/migrations"
	"github.com/hotelmate/backend/testutil"
)

// TestMain brings the test database schema up to date once for the whole
// package; each test then works inside its own rolled-back transaction.
func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		// Every integration test skips itself through testutil.
		os.Exit(m.Run())
	}

	db := testutil.MustOpenSQLDB(dsn)
	if _, err := migrations.Up(context.Background(), db); err != nil {
		db.Close()
		log.Fatalf("TestMain: %v", err)
	}
	db.Close()

	os.Exit(m.Run())
}
