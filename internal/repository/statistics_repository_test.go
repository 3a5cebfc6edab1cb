package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-ticket-sales/internal/model"
)

func TestStatisticsRepo_EmptyDatabase(t *testing.T) {
	db := newTestDB(t)

	stats, err := NewStatisticsRepo(db).Get(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.TotalSales)
	assert.Zero(t, stats.TicketsSold)
	assert.Empty(t, stats.PopularMovies)
}

func TestStatisticsRepo_CompletedOnly(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	h := seedHall(t, db, 2, 5)
	hit := seedMovie(t, db, "Blockbuster")
	flop := seedMovie(t, db, "Arthouse")
	hitShow := seedShowtime(t, db, hit, h.ID, 10)
	flopShow := seedShowtime(t, db, flop, h.ID, 7)

	seats, err := NewSeatRepo(db).GetByHall(ctx, h.ID)
	require.NoError(t, err)

	repo := NewReservationRepo(db)
	complete := func(userID uint64, showtimeID uint64, seat uint64) {
		det, err := repo.Create(ctx, userID, showtimeID, []uint64{seat}, CreateOptions{MaxSeats: 5})
		require.NoError(t, err)
		_, err = repo.UpdateStatus(ctx, det.ID, model.PaymentCompleted)
		require.NoError(t, err)
	}

	u := seedUser(t, db, "viewer")
	complete(u, hitShow, seats[0].ID)
	complete(u, hitShow, seats[1].ID)
	complete(u, flopShow, seats[2].ID)

	// A pending reservation must not count.
	_, err = repo.Create(ctx, u, hitShow, []uint64{seats[3].ID}, CreateOptions{MaxSeats: 5})
	require.NoError(t, err)

	// A cancelled one must not count either.
	det, err := repo.Create(ctx, u, flopShow, []uint64{seats[4].ID}, CreateOptions{MaxSeats: 5})
	require.NoError(t, err)
	_, err = repo.UpdateStatus(ctx, det.ID, model.PaymentCancelled)
	require.NoError(t, err)

	stats, err := NewStatisticsRepo(db).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 27.0, stats.TotalSales) // 10 + 10 + 7
	assert.Equal(t, 3, stats.TicketsSold)

	require.Len(t, stats.PopularMovies, 2)
	assert.Equal(t, "Blockbuster", stats.PopularMovies[0].Title)
	assert.Equal(t, 2, stats.PopularMovies[0].Reservations)
	assert.Equal(t, "Arthouse", stats.PopularMovies[1].Title)
	assert.Equal(t, 1, stats.PopularMovies[1].Reservations)
}

func TestStatisticsRepo_RankingTiesAndZeroCounts(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	// Zero-reservation movies still appear, tied at zero and ordered by
	// title.
	seedMovie(t, db, "Zebra")
	seedMovie(t, db, "Alpha")
	seedMovie(t, db, "Mango")

	stats, err := NewStatisticsRepo(db).Get(ctx)
	require.NoError(t, err)
	require.Len(t, stats.PopularMovies, 3)
	assert.Equal(t, "Alpha", stats.PopularMovies[0].Title)
	assert.Equal(t, "Mango", stats.PopularMovies[1].Title)
	assert.Equal(t, "Zebra", stats.PopularMovies[2].Title)
	for _, pm := range stats.PopularMovies {
		assert.Zero(t, pm.Reservations)
	}
}

func TestStatisticsRepo_TopFiveCap(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for _, title := range []string{"A", "B", "C", "D", "E", "F", "G"} {
		seedMovie(t, db, title)
	}

	stats, err := NewStatisticsRepo(db).Get(ctx)
	require.NoError(t, err)
	assert.Len(t, stats.PopularMovies, 5)
}
