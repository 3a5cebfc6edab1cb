package model

import "time"

// Showtime represents a scheduled screening of a movie in a hall
// with a start/end time and a ticket price.  Price is a plain
// float, matching the storage schema.
//
// Fields:
//  ID        – primary key identifier.
//  MovieID   – movie being screened.
//  HallID    – hall where the screening takes place.
//  StartTime – when the screening begins (UTC).
//  EndTime   – when the screening ends (UTC).
//  Price     – ticket price for this showtime.
type Showtime struct {
	ID        uint64    `json:"id"`         // showtimes.id
	MovieID   uint64    `json:"movie_id"`   // showtimes.movie_id
	HallID    uint64    `json:"hall_id"`    // showtimes.hall_id
	StartTime time.Time `json:"start_time"` // showtimes.start_time
	EndTime   time.Time `json:"end_time"`   // showtimes.end_time
	Price     float64   `json:"price"`      // showtimes.price
}
