package repository // repository defines data access for seats

import (
	"context"
	"database/sql"

	"github.com/iliyamo/cinema-ticket-sales/internal/model"
)

// SeatRepo provides methods to work with seats in the database.  Seats
// are created in bulk by HallRepo.CreateWithSeats and never mutated
// afterwards, so this repository is read-only.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo constructs a SeatRepo with the given DB handle.
func NewSeatRepo(db *sql.DB) *SeatRepo {
	return &SeatRepo{db: db}
}

// GetByHall retrieves all seats of a hall ordered by row then number.
func (r *SeatRepo) GetByHall(ctx context.Context, hallID uint64) ([]model.Seat, error) {
	const q = "SELECT id, hall_id, `row`, number FROM seats WHERE hall_id = ? ORDER BY `row`, number"
	rows, err := r.db.QueryContext(ctx, q, hallID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]model.Seat, 0)
	for rows.Next() {
		var s model.Seat
		if err := rows.Scan(&s.ID, &s.HallID, &s.Row, &s.Number); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// CountExisting returns how many of the given seat ids exist.  The
// reservation flow uses this to reject requests naming unknown seats.
func (r *SeatRepo) CountExisting(ctx context.Context, seatIDs []uint64) (int, error) {
	if len(seatIDs) == 0 {
		return 0, nil
	}
	q := `SELECT COUNT(*) FROM seats WHERE id IN (` + placeholders(len(seatIDs)) + `)`
	var n int
	if err := r.db.QueryRowContext(ctx, q, toArgs(seatIDs)...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
