package repository // repository holds data access logic for domain entities

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/cinema-ticket-sales/internal/model"
)

// MovieRepo provides methods to create and retrieve movies.
type MovieRepo struct {
	db *sql.DB
}

// NewMovieRepo constructs a MovieRepo with the given DB handle.
func NewMovieRepo(db *sql.DB) *MovieRepo {
	return &MovieRepo{db: db}
}

// Create inserts a new movie.  On success the movie's ID is populated.
func (r *MovieRepo) Create(ctx context.Context, m *model.Movie) error {
	const q = `INSERT INTO movies (title, description, duration, poster_url, release_date)
	           VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, m.Title, m.Description, m.Duration, m.PosterURL, m.ReleaseDate)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return nil
}

// GetByID retrieves a movie by its ID.  Returns ErrMovieNotFound when
// no row is found.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (*model.Movie, error) {
	const q = `SELECT id, title, description, duration, poster_url, release_date FROM movies WHERE id = ?`
	var m model.Movie
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&m.ID, &m.Title, &m.Description, &m.Duration, &m.PosterURL, &m.ReleaseDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMovieNotFound
		}
		return nil, err
	}
	return &m, nil
}

// List returns all movies ordered by id.
func (r *MovieRepo) List(ctx context.Context) ([]model.Movie, error) {
	const q = `SELECT id, title, description, duration, poster_url, release_date FROM movies ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Movie, 0)
	for rows.Next() {
		var m model.Movie
		if err := rows.Scan(&m.ID, &m.Title, &m.Description, &m.Duration, &m.PosterURL, &m.ReleaseDate); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// getByIDs loads several movies at once and returns them keyed by id.
// Used by the batched showtime/reservation read assembly.
func (r *MovieRepo) getByIDs(ctx context.Context, ids []uint64) (map[uint64]model.Movie, error) {
	out := make(map[uint64]model.Movie, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	q := `SELECT id, title, description, duration, poster_url, release_date FROM movies WHERE id IN (` + placeholders(len(ids)) + `)`
	rows, err := r.db.QueryContext(ctx, q, toArgs(ids)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var m model.Movie
		if err := rows.Scan(&m.ID, &m.Title, &m.Description, &m.Duration, &m.PosterURL, &m.ReleaseDate); err != nil {
			return nil, err
		}
		out[m.ID] = m
	}
	return out, rows.Err()
}
