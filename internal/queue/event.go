// Package queue defines message payloads exchanged over the message broker.
package queue

// ReservationCompletedEvent is published when a reservation's payment
// status transitions to completed.  It carries enough detail for
// downstream consumers to log or notify without querying the primary
// database.
type ReservationCompletedEvent struct {
	ReservationID uint64   `json:"reservation_id"`
	UserID        uint64   `json:"user_id"`
	ShowtimeID    uint64   `json:"showtime_id"`
	MovieTitle    string   `json:"movie_title"`
	HallName      string   `json:"hall_name"`
	StartsAt      string   `json:"starts_at"`
	Price         float64  `json:"price"`
	SeatLabels    []string `json:"seats"`
	CompletedAt   string   `json:"completed_at"`
}
