package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/iliyamo/cinema-ticket-sales/internal/model"
)

// The repositories run against in-memory SQLite in tests.  The DDL
// mirrors the production schema; TIMESTAMP columns keep time.Time
// scanning working with the sqlite driver.
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

// newTestDB opens a fresh in-memory database.  A single connection is
// enforced so every query sees the same memory store.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	for _, stmt := range testSchema {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seedUser(t *testing.T, db *sql.DB, username string) uint64 {
	t.Helper()
	res, err := db.Exec(
		`INSERT INTO users (username, email, hashed_password, is_admin) VALUES (?, ?, 'x', 0)`,
		username, username+"@example.com")
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return uint64(id)
}

func seedMovie(t *testing.T, db *sql.DB, title string) uint64 {
	t.Helper()
	m := &model.Movie{Title: title, Duration: 120}
	require.NoError(t, NewMovieRepo(db).Create(context.Background(), m))
	return m.ID
}

func seedHall(t *testing.T, db *sql.DB, rows, seatsPerRow uint32) *model.Hall {
	t.Helper()
	h := &model.Hall{Name: "Hall", Capacity: rows * seatsPerRow, Rows: rows, SeatsPerRow: seatsPerRow}
	require.NoError(t, NewHallRepo(db).CreateWithSeats(context.Background(), h))
	return h
}

func seedShowtime(t *testing.T, db *sql.DB, movieID, hallID uint64, price float64) uint64 {
	t.Helper()
	start := time.Date(2026, 9, 12, 19, 30, 0, 0, time.UTC)
	det, err := NewShowtimeRepo(db).Create(context.Background(), &model.Showtime{
		MovieID:   movieID,
		HallID:    hallID,
		StartTime: start,
		EndTime:   start.Add(2 * time.Hour),
		Price:     price,
	})
	require.NoError(t, err)
	return det.ID
}
