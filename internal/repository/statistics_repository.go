package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/cinema-ticket-sales/internal/model"
)

// Statistics is the admin sales rollup.  TotalSales sums the showtime
// price once per completed reservation, TicketsSold counts completed
// reservations, and PopularMovies ranks the top five movies by
// completed reservation count.
type Statistics struct {
	TotalSales    float64        `json:"total_sales"`
	TicketsSold   int            `json:"tickets_sold"`
	PopularMovies []PopularMovie `json:"popular_movies"`
}

// PopularMovie is a movie together with its completed reservation
// count.  Movies with zero completed reservations still appear thanks
// to the LEFT JOINs in the ranking query.
type PopularMovie struct {
	model.Movie
	Reservations int `json:"reservations"`
}

// StatisticsRepo computes sales aggregates for the admin dashboard.
type StatisticsRepo struct {
	db *sql.DB
}

// NewStatisticsRepo constructs a StatisticsRepo with the given DB handle.
func NewStatisticsRepo(db *sql.DB) *StatisticsRepo {
	return &StatisticsRepo{db: db}
}

// Get computes the full rollup in three queries.  Only reservations
// with payment status "completed" count as sales; pending and cancelled
// reservations contribute nothing.
func (r *StatisticsRepo) Get(ctx context.Context) (*Statistics, error) {
	stats := &Statistics{PopularMovies: []PopularMovie{}}

	const qSales = `SELECT COALESCE(SUM(s.price), 0)
	                FROM showtimes s
	                JOIN reservations r ON r.showtime_id = s.id
	                WHERE r.payment_status = ?`
	if err := r.db.QueryRowContext(ctx, qSales, model.PaymentCompleted).Scan(&stats.TotalSales); err != nil {
		return nil, err
	}

	const qSold = `SELECT COUNT(*) FROM reservations WHERE payment_status = ?`
	if err := r.db.QueryRowContext(ctx, qSold, model.PaymentCompleted).Scan(&stats.TicketsSold); err != nil {
		return nil, err
	}

	// Ties are broken alphabetically so the ranking is deterministic.
	const qPopular = `SELECT m.id, m.title, m.description, m.duration, m.poster_url, m.release_date,
	                         COUNT(r.id) AS reservations
	                  FROM movies m
	                  LEFT JOIN showtimes s ON s.movie_id = m.id
	                  LEFT JOIN reservations r ON r.showtime_id = s.id AND r.payment_status = ?
	                  GROUP BY m.id, m.title, m.description, m.duration, m.poster_url, m.release_date
	                  ORDER BY reservations DESC, m.title ASC
	                  LIMIT 5`
	rows, err := r.db.QueryContext(ctx, qPopular, model.PaymentCompleted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var pm PopularMovie
		if err := rows.Scan(&pm.ID, &pm.Title, &pm.Description, &pm.Duration,
			&pm.PosterURL, &pm.ReleaseDate, &pm.Reservations); err != nil {
			return nil, err
		}
		stats.PopularMovies = append(stats.PopularMovies, pm)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stats, nil
}
