package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/hotelmate/backend/internal/handler"
)

func serveHealth(srv *handler.Server) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	srv.Mount(r, func(next http.Handler) http.Handler { return next })
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	return rec
}

// TestGetHealth_returns200WithOKStatus verifies that GET /healthz returns
// HTTP 200 and a JSON body of {"status":"ok"}.
func TestGetHealth_returns200WithOKStatus(t *testing.T) {
	rec := serveHealth(handler.NewHealthHandler())

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Equal(t, "ok", body["status"])
}

// TestGetHealth_readinessFailure verifies that a failing readiness check
// turns the health endpoint into a 503.
func TestGetHealth_readinessFailure(t *testing.T) {
	srv := handler.NewHealthHandler().WithReadinessCheck(func(context.Context) error {
		return errors.New("database unreachable")
	})

	rec := serveHealth(srv)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
