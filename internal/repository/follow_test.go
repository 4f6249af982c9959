package repository

import (
	"context"
	"testing"

	"anex/internal/models"
	"anex/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Email: username + "@example.com", Password: "x"}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestFollow_IsIdempotent(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewFollowRepository(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	require.NoError(t, repo.Follow(context.Background(), alice.ID, bob.ID))
	require.NoError(t, repo.Follow(context.Background(), alice.ID, bob.ID))

	var count int64
	db.Model(&models.Follow{}).Count(&count)
	assert.EqualValues(t, 1, count)

	following, err := repo.IsFollowing(context.Background(), alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, following)
}

func TestFollow_IsDirectional(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewFollowRepository(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	require.NoError(t, repo.Follow(context.Background(), alice.ID, bob.ID))

	reverse, err := repo.IsFollowing(context.Background(), bob.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, reverse)

	followers, err := repo.CountFollowers(context.Background(), bob.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, followers)

	following, err := repo.CountFollowing(context.Background(), bob.ID)
	require.NoError(t, err)
	assert.Zero(t, following)
}

func TestUnfollow_MissingRelationshipIsNoOp(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewFollowRepository(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	require.NoError(t, repo.Unfollow(context.Background(), alice.ID, bob.ID))

	require.NoError(t, repo.Follow(context.Background(), alice.ID, bob.ID))
	require.NoError(t, repo.Unfollow(context.Background(), alice.ID, bob.ID))

	following, err := repo.IsFollowing(context.Background(), alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, following)
}
