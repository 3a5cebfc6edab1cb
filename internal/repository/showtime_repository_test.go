package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-ticket-sales/internal/model"
)

func TestShowtimeRepo_CreateAndDetail(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	movieID := seedMovie(t, db, "Detail Movie")
	h := seedHall(t, db, 2, 2)
	id := seedShowtime(t, db, movieID, h.ID, 12.5)

	det, err := NewShowtimeRepo(db).GetDetail(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 12.5, det.Price)
	require.NotNil(t, det.Movie)
	assert.Equal(t, "Detail Movie", det.Movie.Title)
	require.NotNil(t, det.Hall)
	assert.Equal(t, h.ID, det.Hall.ID)
}

func TestShowtimeRepo_Detail_BrokenReferences(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	// Schedule against ids that do not exist; the read must still work.
	start := time.Date(2026, 10, 1, 20, 0, 0, 0, time.UTC)
	det, err := NewShowtimeRepo(db).Create(ctx, &model.Showtime{
		MovieID:   777,
		HallID:    888,
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Price:     5,
	})
	require.NoError(t, err)
	assert.Nil(t, det.Movie)
	assert.Nil(t, det.Hall)
}

func TestShowtimeRepo_List_FilterByMovie(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	m1 := seedMovie(t, db, "One")
	m2 := seedMovie(t, db, "Two")
	h := seedHall(t, db, 1, 1)
	seedShowtime(t, db, m1, h.ID, 1)
	seedShowtime(t, db, m1, h.ID, 2)
	seedShowtime(t, db, m2, h.ID, 3)

	all, err := NewShowtimeRepo(db).List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	only, err := NewShowtimeRepo(db).List(ctx, &m1)
	require.NoError(t, err)
	require.Len(t, only, 2)
	for _, d := range only {
		assert.Equal(t, m1, d.MovieID)
		require.NotNil(t, d.Movie)
		assert.Equal(t, "One", d.Movie.Title)
	}
}

func TestShowtimeRepo_Update_NotFound(t *testing.T) {
	db := newTestDB(t)
	start := time.Now().UTC()
	_, err := NewShowtimeRepo(db).Update(context.Background(), &model.Showtime{
		ID: 999, MovieID: 1, HallID: 1, StartTime: start, EndTime: start, Price: 1,
	})
	assert.ErrorIs(t, err, ErrShowtimeNotFound)
}

func TestShowtimeRepo_Delete_CascadesReservations(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	movieID := seedMovie(t, db, "Cascade")
	h := seedHall(t, db, 2, 2)
	stID := seedShowtime(t, db, movieID, h.ID, 8)
	userID := seedUser(t, db, "dave")

	seats, err := NewSeatRepo(db).GetByHall(ctx, h.ID)
	require.NoError(t, err)

	res := NewReservationRepo(db)
	det, err := res.Create(ctx, userID, stID, []uint64{seats[0].ID, seats[1].ID},
		CreateOptions{MaxSeats: 5})
	require.NoError(t, err)

	require.NoError(t, NewShowtimeRepo(db).Delete(ctx, stID))

	_, err = NewShowtimeRepo(db).GetByID(ctx, stID)
	assert.ErrorIs(t, err, ErrShowtimeNotFound)
	_, err = res.GetDetail(ctx, det.ID)
	assert.ErrorIs(t, err, ErrReservationNotFound)

	var links int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM reservation_seats`).Scan(&links))
	assert.Zero(t, links)
}

func TestShowtimeRepo_Delete_NotFound(t *testing.T) {
	db := newTestDB(t)
	err := NewShowtimeRepo(db).Delete(context.Background(), 424242)
	assert.ErrorIs(t, err, ErrShowtimeNotFound)
}
