package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/zaloga/internal/db"
)

func TestCreateAndGetUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, err := CreateUser(ctx, database, "Ana Novak", "ana", "hash123", "9611692015")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "ana", user.Username)
	assert.Equal(t, "Ana Novak", user.Name)
	assert.Equal(t, "9611692015", user.Phone)
	assert.False(t, user.Verified())

	got, err := GetUser(ctx, database, user.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "hash123", got.PasswordHash)
}

func TestGetUserByUsername(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	_, err := CreateUser(ctx, database, "Alice", "alice", "hash", "")
	require.NoError(t, err)

	user, err := GetUserByUsername(ctx, database, "alice")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "alice", user.Username)

	missing, err := GetUserByUsername(ctx, database, "bob")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCreateUserDuplicate(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	_, err := CreateUser(ctx, database, "Alice", "alice", "hash", "")
	require.NoError(t, err)

	_, err = CreateUser(ctx, database, "Other Alice", "alice", "hash2", "")
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestMarkUserVerified(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, err := CreateUser(ctx, database, "Alice", "alice", "hash", "")
	require.NoError(t, err)

	require.NoError(t, MarkUserVerified(ctx, database, user.ID))

	got, err := GetUser(ctx, database, user.ID)
	require.NoError(t, err)
	assert.True(t, got.Verified())
}

func TestUpdateUserPassword(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, err := CreateUser(ctx, database, "Alice", "alice", "old", "")
	require.NoError(t, err)

	require.NoError(t, UpdateUserPassword(ctx, database, user.ID, "new"))

	got, err := GetUser(ctx, database, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", got.PasswordHash)
}
