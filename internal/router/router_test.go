package router

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/iliyamo/cinema-ticket-sales/internal/config"
	"github.com/iliyamo/cinema-ticket-sales/internal/utils"
)

var testSchema = []string{
	`CREATE TABLE users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		hashed_password TEXT NOT NULL,
		is_admin INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE movies (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		duration INTEGER NOT NULL,
		poster_url TEXT NOT NULL DEFAULT '',
		release_date TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE halls (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		capacity INTEGER NOT NULL DEFAULT 0,
		"rows" INTEGER NOT NULL,
		seats_per_row INTEGER NOT NULL
	)`,
	`CREATE TABLE seats (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		hall_id INTEGER NOT NULL,
		"row" INTEGER NOT NULL,
		number INTEGER NOT NULL,
		UNIQUE (hall_id, "row", number)
	)`,
	`CREATE TABLE showtimes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		movie_id INTEGER NOT NULL,
		hall_id INTEGER NOT NULL,
		start_time TIMESTAMP NOT NULL,
		end_time TIMESTAMP NOT NULL,
		price REAL NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE reservations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		showtime_id INTEGER NOT NULL,
		payment_status TEXT NOT NULL DEFAULT 'pending',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE reservation_seats (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		reservation_id INTEGER NOT NULL,
		seat_id INTEGER NOT NULL,
		UNIQUE (reservation_id, seat_id)
	)`,
}

func testConfig() config.Config {
	return config.Config{
		Env:                    "test",
		Port:                   "0",
		JWTSecret:              "router-test-secret",
		JWTAlgorithm:           "HS256",
		AccessTTLMin:           30,
		BcryptCost:             4,
		MaxSeatsPerReservation: 5,
	}
}

func newTestServer(t *testing.T) (*echo.Echo, *sql.DB) {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	for _, stmt := range testSchema {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return New(testConfig(), db, nil, ""), db
}

func seedAdmin(t *testing.T, db *sql.DB, username, password string) {
	t.Helper()
	hash, err := utils.HashPassword(password, 4)
	require.NoError(t, err)
	_, err = db.Exec(
		`INSERT INTO users (username, email, hashed_password, is_admin) VALUES (?, ?, ?, 1)`,
		username, username+"@example.com", hash)
	require.NoError(t, err)
}

func doJSON(e *echo.Echo, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
}

func register(t *testing.T, e *echo.Echo, username, password string) {
	t.Helper()
	rec := doJSON(e, http.MethodPost, "/users/", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func login(t *testing.T, e *echo.Echo, username, password string) string {
	t.Helper()
	form := url.Values{"username": {username}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	decode(t, rec, &resp)
	require.Equal(t, "bearer", resp.TokenType)
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

func TestRegisterAndLogin(t *testing.T) {
	e, _ := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/users/", "", map[string]string{
		"username": "alice", "email": "alice@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var user struct {
		ID       uint64 `json:"id"`
		Username string `json:"username"`
		IsAdmin  bool   `json:"is_admin"`
	}
	decode(t, rec, &user)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.False(t, user.IsAdmin)

	// Duplicate username and duplicate email are client errors, each
	// naming the offending field.
	rec = doJSON(e, http.MethodPost, "/users/", "", map[string]string{
		"username": "alice", "email": "other@example.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "username already registered")

	rec = doJSON(e, http.MethodPost, "/users/", "", map[string]string{
		"username": "alice2", "email": "alice@example.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "email already registered")

	login(t, e, "alice", "secret1")

	// Wrong password: 401, indistinguishable from unknown user.
	form := url.Values{"username": {"alice"}, "password": {"wrong"}}
	req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec2 := httptest.NewRecorder()
	e.ServeHTTP(rec2, req)
	assert.Equal(t, http.StatusUnauthorized, rec2.Code)
}

func TestAuthAndAdminGates(t *testing.T) {
	e, db := newTestServer(t)
	seedAdmin(t, db, "root", "rootpw")
	register(t, e, "bob", "bobpass")
	userTok := login(t, e, "bob", "bobpass")
	adminTok := login(t, e, "root", "rootpw")

	movie := map[string]interface{}{"title": "Gate Movie", "duration": 90}

	rec := doJSON(e, http.MethodPost, "/movies/", "", movie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(e, http.MethodPost, "/movies/", userTok, movie)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(e, http.MethodPost, "/movies/", adminTok, movie)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(e, http.MethodPost, "/reservations/", "", map[string]interface{}{
		"showtime_id": 1, "seat_ids": []uint64{1},
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(e, http.MethodGet, "/admin/statistics", userTok, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

// setupShowtime creates movie, hall and showtime as admin and returns
// the showtime id plus the hall's seat ids in grid order.
func setupShowtime(t *testing.T, e *echo.Echo, adminTok string, price float64) (uint64, []uint64) {
	t.Helper()

	rec := doJSON(e, http.MethodPost, "/movies/", adminTok, map[string]interface{}{
		"title": "Flow Movie", "duration": 120,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var movie struct {
		ID uint64 `json:"id"`
	}
	decode(t, rec, &movie)

	rec = doJSON(e, http.MethodPost, "/halls/", adminTok, map[string]interface{}{
		"name": "Main Hall", "capacity": 6, "rows": 2, "seats_per_row": 3,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var hall struct {
		ID uint64 `json:"id"`
	}
	decode(t, rec, &hall)

	start := time.Date(2026, 9, 12, 19, 30, 0, 0, time.UTC)
	rec = doJSON(e, http.MethodPost, "/showtimes/", adminTok, map[string]interface{}{
		"movie_id":   movie.ID,
		"hall_id":    hall.ID,
		"start_time": start.Format(time.RFC3339),
		"end_time":   start.Add(2 * time.Hour).Format(time.RFC3339),
		"price":      price,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var showtime struct {
		ID uint64 `json:"id"`
	}
	decode(t, rec, &showtime)

	rec = doJSON(e, http.MethodGet, fmt.Sprintf("/showtime/%d/seats", showtime.ID), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var seats []struct {
		ID         uint64 `json:"id"`
		IsReserved bool   `json:"is_reserved"`
	}
	decode(t, rec, &seats)
	require.Len(t, seats, 6)

	ids := make([]uint64, len(seats))
	for i, s := range seats {
		require.False(t, s.IsReserved)
		ids[i] = s.ID
	}
	return showtime.ID, ids
}

func TestBookingFlow(t *testing.T) {
	e, db := newTestServer(t)
	seedAdmin(t, db, "root", "rootpw")
	adminTok := login(t, e, "root", "rootpw")
	register(t, e, "carol", "carolpw")
	userTok := login(t, e, "carol", "carolpw")

	showtimeID, seatIDs := setupShowtime(t, e, adminTok, 12.5)

	// Reserve two seats.
	rec := doJSON(e, http.MethodPost, "/reservations/", userTok, map[string]interface{}{
		"showtime_id": showtimeID, "seat_ids": seatIDs[:2],
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res struct {
		ID            uint64 `json:"id"`
		PaymentStatus string `json:"payment_status"`
		Showtime      *struct {
			Movie *struct {
				Title string `json:"title"`
			} `json:"movie"`
		} `json:"showtime"`
		Seats []struct {
			ID uint64 `json:"id"`
		} `json:"seats"`
	}
	decode(t, rec, &res)
	assert.Equal(t, "pending", res.PaymentStatus)
	require.NotNil(t, res.Showtime)
	require.NotNil(t, res.Showtime.Movie)
	assert.Equal(t, "Flow Movie", res.Showtime.Movie.Title)
	assert.Len(t, res.Seats, 2)

	// Seat map now shows the two seats as reserved.
	rec = doJSON(e, http.MethodGet, fmt.Sprintf("/showtime/%d/seats", showtimeID), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var seats []struct {
		ID         uint64 `json:"id"`
		IsReserved bool   `json:"is_reserved"`
	}
	decode(t, rec, &seats)
	reserved := 0
	for _, s := range seats {
		if s.IsReserved {
			reserved++
		}
	}
	assert.Equal(t, 2, reserved)

	// Overlapping booking conflicts.
	register(t, e, "dave", "davepw")
	rivalTok := login(t, e, "dave", "davepw")
	rec = doJSON(e, http.MethodPost, "/reservations/", rivalTok, map[string]interface{}{
		"showtime_id": showtimeID, "seat_ids": seatIDs[1:3],
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Validation and missing-entity responses.
	rec = doJSON(e, http.MethodPost, "/reservations/", rivalTok, map[string]interface{}{
		"showtime_id": showtimeID, "seat_ids": seatIDs,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "six seats exceed the cap")

	rec = doJSON(e, http.MethodPost, "/reservations/", rivalTok, map[string]interface{}{
		"showtime_id": 9999, "seat_ids": seatIDs[3:4],
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(e, http.MethodPost, "/reservations/", rivalTok, map[string]interface{}{
		"showtime_id": showtimeID, "seat_ids": []uint64{987654},
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Strangers cannot read someone else's reservation; admins can.
	resPath := fmt.Sprintf("/reservations/%d", res.ID)
	rec = doJSON(e, http.MethodGet, resPath, rivalTok, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = doJSON(e, http.MethodGet, resPath, adminTok, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// No ticket while payment is pending.
	rec = doJSON(e, http.MethodGet, resPath+"/ticket", userTok, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Invalid payment status is rejected.
	rec = doJSON(e, http.MethodPatch, resPath, userTok, map[string]string{"payment_status": "paid"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Complete the payment.
	rec = doJSON(e, http.MethodPatch, resPath, userTok, map[string]string{"payment_status": "completed"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &res)
	assert.Equal(t, "completed", res.PaymentStatus)

	// Ticket is a PDF attachment now.
	rec = doJSON(e, http.MethodGet, resPath+"/ticket", userTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get(echo.HeaderContentType))
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), fmt.Sprintf("ticket_%d.pdf", res.ID))
	require.Greater(t, rec.Body.Len(), 4)
	assert.Equal(t, "%PDF", rec.Body.String()[:4])

	// History lists the booking, newest first.
	rec = doJSON(e, http.MethodGet, "/users/me/reservations", userTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var history []json.RawMessage
	decode(t, rec, &history)
	assert.Len(t, history, 1)

	// Statistics reflect the completed sale.
	rec = doJSON(e, http.MethodGet, "/admin/statistics", adminTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats struct {
		TotalSales  float64 `json:"total_sales"`
		TicketsSold int     `json:"tickets_sold"`
		Popular     []struct {
			Title        string `json:"title"`
			Reservations int    `json:"reservations"`
		} `json:"popular_movies"`
	}
	decode(t, rec, &stats)
	assert.Equal(t, 12.5, stats.TotalSales)
	assert.Equal(t, 1, stats.TicketsSold)
	require.NotEmpty(t, stats.Popular)
	assert.Equal(t, "Flow Movie", stats.Popular[0].Title)
	assert.Equal(t, 1, stats.Popular[0].Reservations)
}

func TestPublicCatalogue(t *testing.T) {
	e, db := newTestServer(t)
	seedAdmin(t, db, "root", "rootpw")
	adminTok := login(t, e, "root", "rootpw")
	showtimeID, _ := setupShowtime(t, e, adminTok, 9)

	rec := doJSON(e, http.MethodGet, "/movies/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, http.MethodGet, "/movies/999", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(e, http.MethodGet, "/showtimes/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var showtimes []struct {
		ID    uint64 `json:"id"`
		Movie *struct {
			Title string `json:"title"`
		} `json:"movie"`
	}
	decode(t, rec, &showtimes)
	require.Len(t, showtimes, 1)
	assert.Equal(t, showtimeID, showtimes[0].ID)
	require.NotNil(t, showtimes[0].Movie)

	// Unknown showtime yields an empty seat map, not an error.
	rec = doJSON(e, http.MethodGet, "/showtime/424242/seats", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var seats []json.RawMessage
	decode(t, rec, &seats)
	assert.Empty(t, seats)

	rec = doJSON(e, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHallManagement(t *testing.T) {
	e, db := newTestServer(t)
	seedAdmin(t, db, "root", "rootpw")
	adminTok := login(t, e, "root", "rootpw")
	_, _ = setupShowtime(t, e, adminTok, 5)

	// Hall 1 backs a showtime, so deleting it is rejected.
	rec := doJSON(e, http.MethodDelete, "/halls/1", adminTok, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(e, http.MethodPost, "/halls/", adminTok, map[string]interface{}{
		"name": "Spare Hall", "capacity": 4, "rows": 2, "seats_per_row": 2,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var hall struct {
		ID uint64 `json:"id"`
	}
	decode(t, rec, &hall)

	rec = doJSON(e, http.MethodPut, fmt.Sprintf("/halls/%d", hall.ID), adminTok, map[string]interface{}{
		"name": "Spare Hall Renamed", "capacity": 4, "rows": 2, "seats_per_row": 2,
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, http.MethodDelete, fmt.Sprintf("/halls/%d", hall.ID), adminTok, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(e, http.MethodGet, fmt.Sprintf("/halls/%d", hall.ID), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
