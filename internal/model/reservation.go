package model

import "time"

// Payment status values a reservation may hold.  Reservations start
// as pending and are mutated only via payment status transitions.
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentCancelled = "cancelled"
)

// ValidPaymentStatus reports whether s is one of the accepted
// payment status values.
func ValidPaymentStatus(s string) bool {
	switch s {
	case PaymentPending, PaymentCompleted, PaymentCancelled:
		return true
	}
	return false
}

// Reservation records a user's claim on a set of seats for one
// showtime.  The seats themselves are stored in the
// reservation_seats linking table, one row per seat.
//
// Fields:
//  ID            – primary key identifier.
//  UserID        – user who made the reservation.
//  ShowtimeID    – showtime being reserved.
//  PaymentStatus – pending | completed | cancelled.
//  CreatedAt     – creation timestamp (UTC).
type Reservation struct {
	ID            uint64    // reservations.id
	UserID        uint64    // reservations.user_id
	ShowtimeID    uint64    // reservations.showtime_id
	PaymentStatus string    // reservations.payment_status
	CreatedAt     time.Time // reservations.created_at
}

// ReservationSeat links one reservation to one seat.  A
// (reservation_id, seat_id) pair is unique.
//
// Fields:
//  ID            – primary key identifier.
//  ReservationID – reference to the reservation.
//  SeatID        – seat included in the reservation.
type ReservationSeat struct {
	ID            uint64 // reservation_seats.id
	ReservationID uint64 // reservation_seats.reservation_id
	SeatID        uint64 // reservation_seats.seat_id
}
