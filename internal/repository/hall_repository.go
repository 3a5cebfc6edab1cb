package repository // repository defines data access for halls and their seat grids

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/cinema-ticket-sales/internal/model"
)

// HallRepo provides methods to create, retrieve and delete halls.
// Creating a hall also materializes its full seat grid; deleting one
// removes the grid with it.  Both run inside a single transaction so a
// hall can never exist half-seated.
type HallRepo struct {
	db *sql.DB
}

// NewHallRepo constructs a HallRepo with the given DB handle.
func NewHallRepo(db *sql.DB) *HallRepo {
	return &HallRepo{db: db}
}

// CreateWithSeats inserts a hall and bulk-inserts its Rows×SeatsPerRow
// seat grid, row numbers 1..Rows and seat numbers 1..SeatsPerRow.  The
// seats are written in one statement rather than one round trip per
// seat.  On success the hall's ID is populated.
func (r *HallRepo) CreateWithSeats(ctx context.Context, h *model.Hall) error {
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

	const qHall = "INSERT INTO halls (name, capacity, `rows`, seats_per_row) VALUES (?, ?, ?, ?)"
	res, err := tx.ExecContext(ctx, qHall, h.Name, h.Capacity, h.Rows, h.SeatsPerRow)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	h.ID = uint64(id)

	total := int(h.Rows) * int(h.SeatsPerRow)
	if total > 0 {
		query := "INSERT INTO seats (hall_id, `row`, number) VALUES "
		args := make([]interface{}, 0, total*3)
		first := true
		for row := uint32(1); row <= h.Rows; row++ {
			for num := uint32(1); num <= h.SeatsPerRow; num++ {
				if !first {
					query += ","
				}
				first = false
				query += "(?, ?, ?)"
				args = append(args, h.ID, row, num)
			}
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByID retrieves a hall by its ID.  Returns ErrHallNotFound when no
// row is found.
func (r *HallRepo) GetByID(ctx context.Context, id uint64) (*model.Hall, error) {
	const q = "SELECT id, name, capacity, `rows`, seats_per_row FROM halls WHERE id = ?"
	var h model.Hall
	err := r.db.QueryRowContext(ctx, q, id).Scan(&h.ID, &h.Name, &h.Capacity, &h.Rows, &h.SeatsPerRow)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHallNotFound
		}
		return nil, err
	}
	return &h, nil
}

// List returns all halls ordered by id.
func (r *HallRepo) List(ctx context.Context) ([]model.Hall, error) {
	const q = "SELECT id, name, capacity, `rows`, seats_per_row FROM halls ORDER BY id"
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Hall, 0)
	for rows.Next() {
		var h model.Hall
		if err := rows.Scan(&h.ID, &h.Name, &h.Capacity, &h.Rows, &h.SeatsPerRow); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update overwrites hall fields without touching the seat grid, matching
// the original system: changing rows/seats_per_row after creation does
// not regenerate seats.  Returns ErrHallNotFound for an unknown id.
func (r *HallRepo) Update(ctx context.Context, h *model.Hall) error {
	const q = "UPDATE halls SET name = ?, capacity = ?, `rows` = ?, seats_per_row = ? WHERE id = ?"
	res, err := r.db.ExecContext(ctx, q, h.Name, h.Capacity, h.Rows, h.SeatsPerRow, h.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Distinguish a no-op update from a missing hall.
		if _, err := r.GetByID(ctx, h.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a hall and all of its seats.  It fails with
// ErrHallHasShowtimes while any showtime references the hall, leaving
// hall and seats untouched.
func (r *HallRepo) Delete(ctx context.Context, id uint64) error {
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

	var n int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM showtimes WHERE hall_id = ?`, id).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrHallHasShowtimes
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM seats WHERE hall_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM halls WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrHallNotFound
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// getByIDs loads several halls at once keyed by id, for the batched
// read assembly.
func (r *HallRepo) getByIDs(ctx context.Context, ids []uint64) (map[uint64]model.Hall, error) {
	out := make(map[uint64]model.Hall, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	q := "SELECT id, name, capacity, `rows`, seats_per_row FROM halls WHERE id IN (" + placeholders(len(ids)) + ")"
	rows, err := r.db.QueryContext(ctx, q, toArgs(ids)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var h model.Hall
		if err := rows.Scan(&h.ID, &h.Name, &h.Capacity, &h.Rows, &h.SeatsPerRow); err != nil {
			return nil, err
		}
		out[h.ID] = h
	}
	return out, rows.Err()
}
