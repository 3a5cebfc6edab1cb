// Package repository contains data access logic for showtime operations.
// A Showtime schedules a movie into a hall; read paths return the
// showtime together with its nested movie and hall so API responses are
// never partial references.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/cinema-ticket-sales/internal/model"
)

// ShowtimeDetail is a showtime with its movie and hall populated.  The
// nested fields are nil when the referenced row is missing (broken FK):
// the read still succeeds and the caller serializes null.
type ShowtimeDetail struct {
	ID        uint64       `json:"id"`
	MovieID   uint64       `json:"movie_id"`
	HallID    uint64       `json:"hall_id"`
	StartTime time.Time    `json:"start_time"`
	EndTime   time.Time    `json:"end_time"`
	Price     float64      `json:"price"`
	Movie     *model.Movie `json:"movie"`
	Hall      *model.Hall  `json:"hall"`
}

// ShowtimeRepo manages persistence for showtimes.  It also carries the
// movie and hall repositories it needs for nested read assembly.
type ShowtimeRepo struct {
	db     *sql.DB
	movies *MovieRepo
	halls  *HallRepo
}

// NewShowtimeRepo constructs a ShowtimeRepo bound to the given database.
func NewShowtimeRepo(db *sql.DB) *ShowtimeRepo {
	return &ShowtimeRepo{db: db, movies: NewMovieRepo(db), halls: NewHallRepo(db)}
}

// DB exposes the underlying sql.DB.  It allows callers to begin
// transactions spanning multiple repositories.
func (r *ShowtimeRepo) DB() *sql.DB {
	return r.db
}

// Create inserts a new showtime and returns it with nested movie and
// hall data populated.
func (r *ShowtimeRepo) Create(ctx context.Context, s *model.Showtime) (*ShowtimeDetail, error) {
	const q = `INSERT INTO showtimes (movie_id, hall_id, start_time, end_time, price) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, s.MovieID, s.HallID, s.StartTime.UTC(), s.EndTime.UTC(), s.Price)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	s.ID = uint64(id)
	return r.GetDetail(ctx, s.ID)
}

// GetByID retrieves a bare showtime row.  Returns ErrShowtimeNotFound
// when no row is found.
func (r *ShowtimeRepo) GetByID(ctx context.Context, id uint64) (*model.Showtime, error) {
	const q = `SELECT id, movie_id, hall_id, start_time, end_time, price FROM showtimes WHERE id = ?`
	var s model.Showtime
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&s.ID, &s.MovieID, &s.HallID, &s.StartTime, &s.EndTime, &s.Price)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShowtimeNotFound
		}
		return nil, err
	}
	return &s, nil
}

// GetDetail retrieves a showtime with nested movie and hall.
func (r *ShowtimeRepo) GetDetail(ctx context.Context, id uint64) (*ShowtimeDetail, error) {
	s, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	det := detailFromShowtime(*s)
	if m, err := r.movies.GetByID(ctx, s.MovieID); err == nil {
		det.Movie = m
	} else if !errors.Is(err, ErrMovieNotFound) {
		return nil, err
	}
	if h, err := r.halls.GetByID(ctx, s.HallID); err == nil {
		det.Hall = h
	} else if !errors.Is(err, ErrHallNotFound) {
		return nil, err
	}
	return det, nil
}

// List returns all showtimes, optionally filtered by movie, each with
// nested movie and hall.  Movies and halls are fetched in two batched
// IN queries instead of one pair of lookups per row.
func (r *ShowtimeRepo) List(ctx context.Context, movieID *uint64) ([]ShowtimeDetail, error) {
	q := `SELECT id, movie_id, hall_id, start_time, end_time, price FROM showtimes`
	args := []interface{}{}
	if movieID != nil {
		q += ` WHERE movie_id = ?`
		args = append(args, *movieID)
	}
	q += ` ORDER BY start_time, id`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	details := make([]ShowtimeDetail, 0)
	for rows.Next() {
		var s model.Showtime
		if err := rows.Scan(&s.ID, &s.MovieID, &s.HallID, &s.StartTime, &s.EndTime, &s.Price); err != nil {
			return nil, err
		}
		details = append(details, *detailFromShowtime(s))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return details, nil
	}

	movieIDs := make([]uint64, 0, len(details))
	hallIDs := make([]uint64, 0, len(details))
	seenM := map[uint64]struct{}{}
	seenH := map[uint64]struct{}{}
	for _, d := range details {
		if _, ok := seenM[d.MovieID]; !ok {
			seenM[d.MovieID] = struct{}{}
			movieIDs = append(movieIDs, d.MovieID)
		}
		if _, ok := seenH[d.HallID]; !ok {
			seenH[d.HallID] = struct{}{}
			hallIDs = append(hallIDs, d.HallID)
		}
	}
	movies, err := r.movies.getByIDs(ctx, movieIDs)
	if err != nil {
		return nil, err
	}
	halls, err := r.halls.getByIDs(ctx, hallIDs)
	if err != nil {
		return nil, err
	}
	for i := range details {
		if m, ok := movies[details[i].MovieID]; ok {
			mc := m
			details[i].Movie = &mc
		}
		if h, ok := halls[details[i].HallID]; ok {
			hc := h
			details[i].Hall = &hc
		}
	}
	return details, nil
}

// Update overwrites all mutable showtime fields and returns the updated
// nested detail.  Returns ErrShowtimeNotFound for an unknown id.
func (r *ShowtimeRepo) Update(ctx context.Context, s *model.Showtime) (*ShowtimeDetail, error) {
	if _, err := r.GetByID(ctx, s.ID); err != nil {
		return nil, err
	}
	const q = `UPDATE showtimes SET movie_id = ?, hall_id = ?, start_time = ?, end_time = ?, price = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, q, s.MovieID, s.HallID, s.StartTime.UTC(), s.EndTime.UTC(), s.Price, s.ID); err != nil {
		return nil, err
	}
	return r.GetDetail(ctx, s.ID)
}

// Delete removes a showtime and cascades over its reservations: all
// reservation_seats rows and reservations for the showtime are deleted
// first, then the showtime itself, in a single transaction.  Returns
// ErrShowtimeNotFound for an unknown id.
func (r *ShowtimeRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var exists uint64
	if err := tx.QueryRowContext(ctx, `SELECT id FROM showtimes WHERE id = ?`, id).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrShowtimeNotFound
		}
		return err
	}

	const delLinks = `DELETE FROM reservation_seats
	                  WHERE reservation_id IN (SELECT id FROM reservations WHERE showtime_id = ?)`
	if _, err := tx.ExecContext(ctx, delLinks, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM reservations WHERE showtime_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM showtimes WHERE id = ?`, id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// getDetailsByIDs loads several showtimes at once keyed by id, each with
// nested movie and hall, for the batched read assembly.
func (r *ShowtimeRepo) getDetailsByIDs(ctx context.Context, ids []uint64) (map[uint64]*ShowtimeDetail, error) {
	out := make(map[uint64]*ShowtimeDetail, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	q := `SELECT id, movie_id, hall_id, start_time, end_time, price FROM showtimes WHERE id IN (` + placeholders(len(ids)) + `)`
	rows, err := r.db.QueryContext(ctx, q, toArgs(ids)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	movieIDs := make([]uint64, 0, len(ids))
	hallIDs := make([]uint64, 0, len(ids))
	seenM := map[uint64]struct{}{}
	seenH := map[uint64]struct{}{}
	for rows.Next() {
		var s model.Showtime
		if err := rows.Scan(&s.ID, &s.MovieID, &s.HallID, &s.StartTime, &s.EndTime, &s.Price); err != nil {
			return nil, err
		}
		out[s.ID] = detailFromShowtime(s)
		if _, ok := seenM[s.MovieID]; !ok {
			seenM[s.MovieID] = struct{}{}
			movieIDs = append(movieIDs, s.MovieID)
		}
		if _, ok := seenH[s.HallID]; !ok {
			seenH[s.HallID] = struct{}{}
			hallIDs = append(hallIDs, s.HallID)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	movies, err := r.movies.getByIDs(ctx, movieIDs)
	if err != nil {
		return nil, err
	}
	halls, err := r.halls.getByIDs(ctx, hallIDs)
	if err != nil {
		return nil, err
	}
	for _, d := range out {
		if m, ok := movies[d.MovieID]; ok {
			mc := m
			d.Movie = &mc
		}
		if h, ok := halls[d.HallID]; ok {
			hc := h
			d.Hall = &hc
		}
	}
	return out, nil
}

func detailFromShowtime(s model.Showtime) *ShowtimeDetail {
	return &ShowtimeDetail{
		ID:        s.ID,
		MovieID:   s.MovieID,
		HallID:    s.HallID,
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
		Price:     s.Price,
	}
}
