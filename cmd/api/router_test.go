package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hotelmate/backend/internal/config"
	"github.com/hotelmate/backend/internal/middleware"
	"github.com/hotelmate/backend/internal/repo/memory"
)

const testSecret = "router-test-secret"

func testConfig() config.Config {
	return config.Config{
		StorageBackend:     config.BackendMemory,
		CORSOrigins:        []string{"http://localhost:5173"},
		JWTSecret:          testSecret,
		ConfirmationPrefix: "HM",
		MaxBodyBytes:       1 << 20,
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := storage{hotels: memory.NewHotelRepo(), reservations: memory.NewReservationRepo()}
	ts := httptest.NewServer(newRouter(testConfig(), logger, prometheus.NewRegistry(), st))
	t.Cleanup(ts.Close)
	return ts
}

func token(t *testing.T, sub string, admin bool) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, middleware.Claims{
		IsAdmin: admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return tok
}

// call sends a request and decodes a JSON response into out when non-nil.
func call(t *testing.T, ts *httptest.Server, method, path, tok, body string, out any) int {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, ts.URL+path, rd)
	require.NoError(t, err)
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

// TestRouter_BookingFlow drives a full stay through the wired router on the
// in-memory backend.
func TestRouter_BookingFlow(t *testing.T) {
	ts := newTestServer(t)
	adminTok, guestTok := token(t, "admin-1", true), token(t, "user-1", false)

	var hotel struct {
		ID             string `json:"id"`
		AvailableRooms int    `json:"available_rooms"`
	}
	status := call(t, ts, http.MethodPost, "/api/v1/hotels", adminTok, `{
		"name": "Hotel Bristol", "category": "hotel", "address": "Krakowskie Przedmiescie 42",
		"city": "Warsaw", "country": "Poland", "price_per_night": "450.00",
		"max_guests_per_room": 2, "total_rooms": 3
	}`, &hotel)
	require.Equal(t, http.StatusCreated, status)
	require.Equal(t, 3, hotel.AvailableRooms)

	checkIn := time.Now().UTC().AddDate(0, 0, 7).Format(time.DateOnly)
	checkOut := time.Now().UTC().AddDate(0, 0, 9).Format(time.DateOnly)
	var res struct {
		ID                 string `json:"id"`
		ConfirmationNumber string `json:"confirmation_number"`
		Nights             int    `json:"nights"`
		TotalPrice         string `json:"total_price"`
		Status             string `json:"status"`
	}
	status = call(t, ts, http.MethodPost, "/api/v1/reservations", guestTok, `{
		"hotel_id": "`+hotel.ID+`", "check_in_date": "`+checkIn+`", "check_out_date": "`+checkOut+`",
		"guests": 3, "rooms": 2, "guest_name": "Jan Kowalski", "guest_email": "jan@example.com",
		"guest_phone": "+48 600 000 000"
	}`, &res)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, 2, res.Nights)
	assert.Equal(t, "1800", res.TotalPrice)
	assert.Equal(t, "pending", res.Status)
	assert.True(t, strings.HasPrefix(res.ConfirmationNumber, "HM"))

	call(t, ts, http.MethodGet, "/api/v1/hotels/"+hotel.ID, guestTok, "", &hotel)
	assert.Equal(t, 1, hotel.AvailableRooms)

	// Another guest cannot read it, by id or by confirmation number.
	otherTok := token(t, "user-2", false)
	assert.Equal(t, http.StatusForbidden, call(t, ts, http.MethodGet, "/api/v1/reservations/"+res.ID, otherTok, "", nil))
	assert.Equal(t, http.StatusForbidden, call(t, ts, http.MethodGet, "/api/v1/reservations/confirmation/"+res.ConfirmationNumber, otherTok, "", nil))

	status = call(t, ts, http.MethodPatch, "/api/v1/reservations/"+res.ID+"/payment-status", adminTok, `{"payment_status":"paid"}`, &res)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "confirmed", res.Status)

	status = call(t, ts, http.MethodPatch, "/api/v1/reservations/"+res.ID+"/cancel", guestTok, "", &res)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "cancelled", res.Status)

	call(t, ts, http.MethodGet, "/api/v1/hotels/"+hotel.ID, guestTok, "", &hotel)
	assert.Equal(t, 3, hotel.AvailableRooms)

	// A second cancel is an invalid transition and releases nothing.
	assert.Equal(t, http.StatusConflict, call(t, ts, http.MethodPatch, "/api/v1/reservations/"+res.ID+"/cancel", guestTok, "", nil))
	call(t, ts, http.MethodGet, "/api/v1/hotels/"+hotel.ID, guestTok, "", &hotel)
	assert.Equal(t, 3, hotel.AvailableRooms)
}

func TestRouter_RequiresToken(t *testing.T) {
	ts := newTestServer(t)

	assert.Equal(t, http.StatusUnauthorized, call(t, ts, http.MethodGet, "/api/v1/reservations/my", "", "", nil))
	assert.Equal(t, http.StatusOK, call(t, ts, http.MethodGet, "/healthz", "", "", nil))
}

func TestRouter_ServesMetricsAndOpenAPI(t *testing.T) {
	ts := newTestServer(t)
	call(t, ts, http.MethodGet, "/healthz", "", "", nil)

	resp, err := ts.Client().Get(ts.URL + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), `hotelmate_http_requests_total{method="GET",route="/healthz",status="200"} 1`)

	resp, err = ts.Client().Get(ts.URL + "/openapi.yaml")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/yaml", resp.Header.Get("Content-Type"))
}
