// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios and map
// them onto HTTP statuses: validation failures become 400, conflicts
// 409 and missing entities 404.
package repository

import (
	"errors"
	"strings"
)

// ErrSeatsTaken is returned when one or more requested seats are already
// attached to a blocking reservation for the showtime.  Handlers should
// translate this into an HTTP 409 response.
var ErrSeatsTaken = errors.New("one or more selected seats are already reserved")

// ErrTooManySeats is returned when a reservation request exceeds the
// per-reservation seat limit.
var ErrTooManySeats = errors.New("cannot reserve more than the allowed number of seats")

// ErrNoSeats is returned when a reservation request names no seats.
var ErrNoSeats = errors.New("at least one seat is required")

// ErrHallHasShowtimes is returned when a hall cannot be deleted because
// showtimes still reference it.
var ErrHallHasShowtimes = errors.New("cannot delete hall with associated showtimes")

// ErrUsernameExists is returned when registering a username that is
// already taken.
var ErrUsernameExists = errors.New("username already registered")

// ErrEmailExists is returned when registering an email address that is
// already taken.
var ErrEmailExists = errors.New("email already registered")

// Not-found sentinels, one per entity.
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrMovieNotFound       = errors.New("movie not found")
	ErrHallNotFound        = errors.New("hall not found")
	ErrSeatNotFound        = errors.New("seat not found")
	ErrShowtimeNotFound    = errors.New("showtime not found")
	ErrReservationNotFound = errors.New("reservation not found")
)

// isDuplicate reports whether err is a unique-constraint violation.
// MySQL reports "Duplicate entry" (error 1062); SQLite, used by the test
// suite, reports "UNIQUE constraint failed".
func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

// isSerializationFailure reports whether err is the engine rolling a
// transaction back because of lock contention, which makes the
// transaction safe to retry.  MySQL reports deadlocks as error 1213 and
// lock wait timeouts as 1205; SQLite reports SQLITE_BUSY ("database is
// locked").
func isSerializationFailure(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Error 1213") ||
		strings.Contains(msg, "Deadlock found") ||
		strings.Contains(msg, "Error 1205") ||
		strings.Contains(msg, "Lock wait timeout") ||
		strings.Contains(msg, "SQLITE_BUSY") ||
		strings.Contains(msg, "database is locked")
}
