package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepo_CreateAndAuthenticate(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepo(db)
	ctx := context.Background()

	id, err := repo.Create(ctx, "alice", "Alice@Example.com", "pass123", 4)
	require.NoError(t, err)
	assert.NotZero(t, id)

	u, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "alice@example.com", u.Email) // normalized on create
	assert.False(t, u.IsAdmin)
	assert.NotEqual(t, "pass123", u.HashedPassword)

	got, err := repo.Authenticate(ctx, "alice", "pass123")
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
}

func TestUserRepo_DuplicateUsername(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepo(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, "bob", "bob@example.com", "pw", 4)
	require.NoError(t, err)

	_, err = repo.Create(ctx, "bob", "other@example.com", "pw", 4)
	assert.ErrorIs(t, err, ErrUsernameExists)
}

func TestUserRepo_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepo(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, "erin", "erin@example.com", "pw", 4)
	require.NoError(t, err)

	_, err = repo.Create(ctx, "erin2", "erin@example.com", "pw", 4)
	assert.ErrorIs(t, err, ErrEmailExists)

	// Normalization makes case-variant emails collide too.
	_, err = repo.Create(ctx, "erin3", "Erin@Example.COM", "pw", 4)
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestUserRepo_AuthenticateFailures(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepo(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, "carol", "carol@example.com", "right", 4)
	require.NoError(t, err)

	_, err = repo.Authenticate(ctx, "carol", "wrong")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = repo.Authenticate(ctx, "nobody", "whatever")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
