package repository

import (
	"context"
	"testing"

	"anex/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetByEmail_NilWhenMissing(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewUserRepository(db)

	user, err := repo.GetByEmail(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestGetByUsername_RoundTrip(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewUserRepository(db)
	created := createTestUser(t, db, "alice")

	user, err := repo.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, created.ID, user.ID)
	assert.Equal(t, "alice@example.com", user.Email)
}

func TestTouchLastSeen(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewUserRepository(db)
	created := createTestUser(t, db, "alice")
	require.Nil(t, created.LastSeen)

	require.NoError(t, repo.TouchLastSeen(context.Background(), created.ID))

	user, err := repo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.NotNil(t, user.LastSeen)
}

func TestUpdatePassword(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewUserRepository(db)
	created := createTestUser(t, db, "alice")

	require.NoError(t, repo.UpdatePassword(context.Background(), created.ID, "new-hash"))

	user, err := repo.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "new-hash", user.Password)
}
