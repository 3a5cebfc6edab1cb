package database

import (
	"context"
	"database/sql"
)

// schema lists the CREATE TABLE statements applied at startup.  The
// service owns its schema the same way the system it replaces did:
// tables are created on boot when missing and never migrated in place.
//
// reservation_seats carries UNIQUE(reservation_id, seat_id) so a seat
// can never be linked twice to the same reservation.  Cross-reservation
// conflicts are prevented by the serializable transaction in the
// reservation repository, not by a storage constraint, because whether a
// cancelled reservation still blocks its seats is a runtime policy.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		username VARCHAR(64) NOT NULL,
		email VARCHAR(255) NOT NULL,
		hashed_password VARCHAR(255) NOT NULL,
		is_admin TINYINT(1) NOT NULL DEFAULT 0,
		PRIMARY KEY (id),
		UNIQUE KEY uq_users_username (username),
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS movies (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		title VARCHAR(255) NOT NULL,
		description TEXT NOT NULL,
		duration INT UNSIGNED NOT NULL,
		poster_url VARCHAR(512) NOT NULL,
		release_date VARCHAR(32) NOT NULL,
		PRIMARY KEY (id),
		KEY idx_movies_title (title)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS halls (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		name VARCHAR(128) NOT NULL,
		capacity INT UNSIGNED NOT NULL,
		` + "`rows`" + ` INT UNSIGNED NOT NULL,
		seats_per_row INT UNSIGNED NOT NULL,
		PRIMARY KEY (id)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS seats (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		hall_id BIGINT UNSIGNED NOT NULL,
		` + "`row`" + ` INT UNSIGNED NOT NULL,
		number INT UNSIGNED NOT NULL,
		PRIMARY KEY (id),
		KEY idx_seats_hall (hall_id),
		UNIQUE KEY uq_seats_hall_row_number (hall_id, ` + "`row`" + `, number),
		CONSTRAINT fk_seats_hall FOREIGN KEY (hall_id) REFERENCES halls (id)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS showtimes (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		movie_id BIGINT UNSIGNED NOT NULL,
		hall_id BIGINT UNSIGNED NOT NULL,
		start_time DATETIME NOT NULL,
		end_time DATETIME NOT NULL,
		price DOUBLE NOT NULL,
		PRIMARY KEY (id),
		KEY idx_showtimes_movie (movie_id),
		KEY idx_showtimes_hall (hall_id)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS reservations (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		user_id BIGINT UNSIGNED NOT NULL,
		showtime_id BIGINT UNSIGNED NOT NULL,
		payment_status VARCHAR(16) NOT NULL DEFAULT 'pending',
		created_at DATETIME NOT NULL,
		PRIMARY KEY (id),
		KEY idx_reservations_user (user_id),
		KEY idx_reservations_showtime (showtime_id)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS reservation_seats (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		reservation_id BIGINT UNSIGNED NOT NULL,
		seat_id BIGINT UNSIGNED NOT NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uq_reservation_seat (reservation_id, seat_id),
		KEY idx_reservation_seats_seat (seat_id),
		CONSTRAINT fk_reservation_seats_reservation FOREIGN KEY (reservation_id) REFERENCES reservations (id)
	) ENGINE=InnoDB`,
}

// EnsureSchema creates all tables when they do not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
