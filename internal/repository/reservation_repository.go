package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/cinema-ticket-sales/internal/model"
)

// ReservationRepo provides creation and read assembly for reservations
// and their seat links.  A reservation groups 1..N seats for one
// showtime and user; the seats live in the reservation_seats table.
//
// The availability invariant — a seat must not belong to more than one
// blocking reservation for the same showtime — is enforced here: the
// availability re-check and all inserts run inside one transaction
// opened with serializable isolation, so two concurrent overlapping
// requests cannot both pass the check and both insert.
type ReservationRepo struct {
	db        *sql.DB
	showtimes *ShowtimeRepo
	seats     *SeatRepo
}

// NewReservationRepo returns a ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo {
	return &ReservationRepo{db: db, showtimes: NewShowtimeRepo(db), seats: NewSeatRepo(db)}
}

// ReservationDetail is the fully nested read shape: reservation plus
// showtime (with movie and hall) plus the reserved seats.  Showtime is
// nil only when its row is missing; the read still succeeds.
type ReservationDetail struct {
	ID            uint64          `json:"id"`
	UserID        uint64          `json:"user_id"`
	ShowtimeID    uint64          `json:"showtime_id"`
	PaymentStatus string          `json:"payment_status"`
	CreatedAt     time.Time       `json:"created_at"`
	Showtime      *ShowtimeDetail `json:"showtime"`
	Seats         []model.Seat    `json:"seats"`
}

// CreateOptions carries the policy knobs for reservation creation.
type CreateOptions struct {
	// MaxSeats is the per-reservation seat cap (business rule: 5).
	MaxSeats int
	// CancelledBlocksSeats keeps cancelled reservations in the blocking
	// set when true (the historical behavior of this system).
	CancelledBlocksSeats bool
}

// blockedSeatIDs returns the ids of seats attached to a blocking
// reservation for the showtime, optionally restricted to a candidate
// set.  Runs on any queryable (DB or Tx) so the creation path can reuse
// it inside its transaction.
func blockedSeatIDs(ctx context.Context, q interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}, showtimeID uint64, seatIDs []uint64, cancelledBlocks bool) ([]uint64, error) {
	query := `SELECT rs.seat_id
	          FROM reservation_seats rs
	          JOIN reservations r ON r.id = rs.reservation_id
	          WHERE r.showtime_id = ?`
	args := []interface{}{showtimeID}
	if !cancelledBlocks {
		query += ` AND r.payment_status <> ?`
		args = append(args, model.PaymentCancelled)
	}
	if len(seatIDs) > 0 {
		query += ` AND rs.seat_id IN (` + placeholders(len(seatIDs)) + `)`
		args = append(args, toArgs(seatIDs)...)
	}
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// Available reports whether every seat in seatIDs is free for the
// showtime.  An empty candidate set is trivially available.
func (r *ReservationRepo) Available(ctx context.Context, showtimeID uint64, seatIDs []uint64, cancelledBlocks bool) (bool, error) {
	if len(seatIDs) == 0 {
		return true, nil
	}
	taken, err := blockedSeatIDs(ctx, r.db, showtimeID, seatIDs, cancelledBlocks)
	if err != nil {
		return false, err
	}
	return len(taken) == 0, nil
}

// ReservedSeatIDs returns the set of seat ids currently blocked for a
// showtime, used by the public seat-map endpoint.
func (r *ReservationRepo) ReservedSeatIDs(ctx context.Context, showtimeID uint64, cancelledBlocks bool) (map[uint64]bool, error) {
	taken, err := blockedSeatIDs(ctx, r.db, showtimeID, nil, cancelledBlocks)
	if err != nil {
		return nil, err
	}
	set := make(map[uint64]bool, len(taken))
	for _, id := range taken {
		set[id] = true
	}
	return set, nil
}

// Create validates and creates a reservation with one seat link per
// seat, initial payment status "pending", and returns the nested
// detail.  Failure modes:
//
//	ErrNoSeats / ErrTooManySeats – seat count outside 1..MaxSeats
//	ErrShowtimeNotFound          – unknown showtime id
//	ErrSeatNotFound              – any unknown seat id
//	ErrSeatsTaken                – any seat already blocked for the showtime
//
// Under concurrent load the engine may abort one of two overlapping
// transactions instead of letting the re-check see the winner (InnoDB
// rolls the victim back with a deadlock error).  Create retries the
// aborted transaction once; the retry's re-check then reports the
// seats as taken.  A second abort is treated as ErrSeatsTaken as well,
// never surfaced as an internal error.
func (r *ReservationRepo) Create(ctx context.Context, userID, showtimeID uint64, seatIDs []uint64, opts CreateOptions) (*ReservationDetail, error) {
	// Deduplicate before validating the count so a request repeating one
	// seat id is treated as a single seat, not a conflict with itself.
	unique := make([]uint64, 0, len(seatIDs))
	seen := make(map[uint64]struct{}, len(seatIDs))
	for _, id := range seatIDs {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			unique = append(unique, id)
		}
	}
	if len(unique) == 0 {
		return nil, ErrNoSeats
	}
	if len(unique) > opts.MaxSeats {
		return nil, ErrTooManySeats
	}

	if _, err := r.showtimes.GetByID(ctx, showtimeID); err != nil {
		return nil, err
	}
	n, err := r.seats.CountExisting(ctx, unique)
	if err != nil {
		return nil, err
	}
	if n != len(unique) {
		return nil, ErrSeatNotFound
	}

	var reservationID uint64
	for attempt := 0; ; attempt++ {
		reservationID, err = r.createTx(ctx, userID, showtimeID, unique, opts)
		if err == nil {
			break
		}
		if !isSerializationFailure(err) {
			return nil, err
		}
		if attempt == 0 {
			continue
		}
		// Aborted twice in a row: another reservation is winning the
		// same seats, so report the conflict instead of the abort.
		return nil, ErrSeatsTaken
	}

	return r.GetDetail(ctx, reservationID)
}

// createTx runs one attempt of the creation transaction and returns the
// new reservation id.  Callers retry on serialization failures.
func (r *ReservationRepo) createTx(ctx context.Context, userID, showtimeID uint64, seatIDs []uint64, opts CreateOptions) (uint64, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Re-check availability inside the transaction: this is the check
	// that actually guarantees at-most-one assignment per seat.
	taken, err := blockedSeatIDs(ctx, tx, showtimeID, seatIDs, opts.CancelledBlocksSeats)
	if err != nil {
		return 0, err
	}
	if len(taken) > 0 {
		return 0, ErrSeatsTaken
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO reservations (user_id, showtime_id, payment_status, created_at) VALUES (?, ?, ?, ?)`,
		userID, showtimeID, model.PaymentPending, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	reservationID := uint64(id)

	query := `INSERT INTO reservation_seats (reservation_id, seat_id) VALUES `
	args := make([]interface{}, 0, len(seatIDs)*2)
	for i, sid := range seatIDs {
		if i > 0 {
			query += ","
		}
		query += "(?, ?)"
		args = append(args, reservationID, sid)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if isDuplicate(err) {
			return 0, ErrSeatsTaken
		}
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return reservationID, nil
}

// GetDetail loads one reservation with showtime, movie, hall and seats
// nested.  Missing movie/hall rows yield null nested fields rather than
// an error.  Returns ErrReservationNotFound for an unknown id.
func (r *ReservationRepo) GetDetail(ctx context.Context, id uint64) (*ReservationDetail, error) {
	const q = `SELECT id, user_id, showtime_id, payment_status, created_at FROM reservations WHERE id = ?`
	var det ReservationDetail
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&det.ID, &det.UserID, &det.ShowtimeID, &det.PaymentStatus, &det.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}

	st, err := r.showtimes.GetDetail(ctx, det.ShowtimeID)
	if err != nil && !errors.Is(err, ErrShowtimeNotFound) {
		return nil, err
	}
	det.Showtime = st // nil when the showtime row is gone

	det.Seats, err = r.seatsForReservations(ctx, []uint64{det.ID})
	if err != nil {
		return nil, err
	}
	return &det, nil
}

// ListByUser returns all reservations of a user, newest first, each
// fully nested.  Showtimes, movies, halls and seats are loaded with
// batched IN queries rather than one round trip per reservation.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]ReservationDetail, error) {
	const q = `SELECT id, user_id, showtime_id, payment_status, created_at
	           FROM reservations WHERE user_id = ? ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	details := make([]ReservationDetail, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var d ReservationDetail
		if err := rows.Scan(&d.ID, &d.UserID, &d.ShowtimeID, &d.PaymentStatus, &d.CreatedAt); err != nil {
			return nil, err
		}
		d.Seats = []model.Seat{}
		index[d.ID] = len(details)
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return details, nil
	}

	// Batched showtime details keyed by id.
	showtimeIDs := make([]uint64, 0, len(details))
	seenST := map[uint64]struct{}{}
	for _, d := range details {
		if _, ok := seenST[d.ShowtimeID]; !ok {
			seenST[d.ShowtimeID] = struct{}{}
			showtimeIDs = append(showtimeIDs, d.ShowtimeID)
		}
	}
	stByID, err := r.showtimes.getDetailsByIDs(ctx, showtimeIDs)
	if err != nil {
		return nil, err
	}
	for i := range details {
		details[i].Showtime = stByID[details[i].ShowtimeID]
	}

	// Seats for every reservation in one query.
	ids := make([]uint64, 0, len(details))
	for _, d := range details {
		ids = append(ids, d.ID)
	}
	seatQ := "SELECT rs.reservation_id, se.id, se.hall_id, se.`row`, se.number" +
		` FROM reservation_seats rs
		  JOIN seats se ON se.id = rs.seat_id
		  WHERE rs.reservation_id IN (` + placeholders(len(ids)) + `)` +
		" ORDER BY rs.reservation_id, se.`row`, se.number"
	srows, err := r.db.QueryContext(ctx, seatQ, toArgs(ids)...)
	if err != nil {
		return nil, err
	}
	defer srows.Close()
	for srows.Next() {
		var rid uint64
		var s model.Seat
		if err := srows.Scan(&rid, &s.ID, &s.HallID, &s.Row, &s.Number); err != nil {
			return nil, err
		}
		if idx, ok := index[rid]; ok {
			details[idx].Seats = append(details[idx].Seats, s)
		}
	}
	if err := srows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}

// UpdateStatus sets the payment status of a reservation and returns the
// refreshed nested detail.  Returns ErrReservationNotFound for an
// unknown id.  Status validation happens at the handler layer.
func (r *ReservationRepo) UpdateStatus(ctx context.Context, id uint64, paymentStatus string) (*ReservationDetail, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE reservations SET payment_status = ? WHERE id = ?`, paymentStatus, id)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Either missing or a no-op update; GetDetail settles it.
		if _, err := r.GetDetail(ctx, id); err != nil {
			return nil, err
		}
	}
	return r.GetDetail(ctx, id)
}

// seatsForReservations loads seats linked to the given reservations,
// ordered by row then number.
func (r *ReservationRepo) seatsForReservations(ctx context.Context, reservationIDs []uint64) ([]model.Seat, error) {
	if len(reservationIDs) == 0 {
		return []model.Seat{}, nil
	}
	q := "SELECT se.id, se.hall_id, se.`row`, se.number" +
		` FROM reservation_seats rs
		  JOIN seats se ON se.id = rs.seat_id
		  WHERE rs.reservation_id IN (` + placeholders(len(reservationIDs)) + `)` +
		" ORDER BY se.`row`, se.number"
	rows, err := r.db.QueryContext(ctx, q, toArgs(reservationIDs)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	seats := make([]model.Seat, 0)
	for rows.Next() {
		var s model.Seat
		if err := rows.Scan(&s.ID, &s.HallID, &s.Row, &s.Number); err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	return seats, rows.Err()
}
