package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-ticket-sales/internal/model"
)

func TestHallRepo_CreateWithSeats_ExactGrid(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	h := seedHall(t, db, 3, 4)
	require.NotZero(t, h.ID)

	seats, err := NewSeatRepo(db).GetByHall(ctx, h.ID)
	require.NoError(t, err)
	require.Len(t, seats, 12)

	// Exactly rows 1..3 × numbers 1..4, ordered by row then number.
	i := 0
	for row := uint32(1); row <= 3; row++ {
		for num := uint32(1); num <= 4; num++ {
			assert.Equal(t, h.ID, seats[i].HallID)
			assert.Equal(t, row, seats[i].Row)
			assert.Equal(t, num, seats[i].Number)
			i++
		}
	}
}

func TestHallRepo_Update_KeepsSeatGrid(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	h := seedHall(t, db, 2, 2)
	h.Name = "Renamed"
	h.Rows = 10
	h.SeatsPerRow = 10
	require.NoError(t, NewHallRepo(db).Update(ctx, h))

	got, err := NewHallRepo(db).GetByID(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, uint32(10), got.Rows)

	// Seat grid is not regenerated on update.
	seats, err := NewSeatRepo(db).GetByHall(ctx, h.ID)
	require.NoError(t, err)
	assert.Len(t, seats, 4)
}

func TestHallRepo_Update_NotFound(t *testing.T) {
	db := newTestDB(t)
	err := NewHallRepo(db).Update(context.Background(), &model.Hall{ID: 999, Name: "x", Rows: 1, SeatsPerRow: 1})
	assert.ErrorIs(t, err, ErrHallNotFound)
}

func TestHallRepo_Delete_RemovesSeats(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	h := seedHall(t, db, 2, 3)
	require.NoError(t, NewHallRepo(db).Delete(ctx, h.ID))

	_, err := NewHallRepo(db).GetByID(ctx, h.ID)
	assert.ErrorIs(t, err, ErrHallNotFound)

	seats, err := NewSeatRepo(db).GetByHall(ctx, h.ID)
	require.NoError(t, err)
	assert.Empty(t, seats)
}

func TestHallRepo_Delete_BlockedByShowtime(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	h := seedHall(t, db, 2, 2)
	movieID := seedMovie(t, db, "Blocker")
	seedShowtime(t, db, movieID, h.ID, 10)

	err := NewHallRepo(db).Delete(ctx, h.ID)
	assert.ErrorIs(t, err, ErrHallHasShowtimes)

	// Hall and seats untouched.
	_, err = NewHallRepo(db).GetByID(ctx, h.ID)
	require.NoError(t, err)
	seats, err := NewSeatRepo(db).GetByHall(ctx, h.ID)
	require.NoError(t, err)
	assert.Len(t, seats, 4)
}

func TestHallRepo_Delete_NotFound(t *testing.T) {
	db := newTestDB(t)
	err := NewHallRepo(db).Delete(context.Background(), 12345)
	assert.ErrorIs(t, err, ErrHallNotFound)
}
