package repository

import (
	"context"
	"testing"
	"time"

	"anex/internal/models"
	"anex/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createTestPost(t *testing.T, db *gorm.DB, userID uint, body string, createdAt time.Time) *models.Post {
	t.Helper()
	post := &models.Post{Body: body, UserID: userID}
	require.NoError(t, db.Create(post).Error)
	// Control ordering explicitly.
	require.NoError(t, db.Model(post).Update("created_at", createdAt).Error)
	post.CreatedAt = createdAt
	return post
}

func TestFeed_IncludesOwnAndFollowedPosts(t *testing.T) {
	db := testutil.NewTestDB(t)
	posts := NewPostRepository(db)
	follows := NewFollowRepository(db)

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	carol := createTestUser(t, db, "carol")

	require.NoError(t, follows.Follow(context.Background(), alice.ID, bob.ID))

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	createTestPost(t, db, alice.ID, "mine", base)
	createTestPost(t, db, bob.ID, "followed", base.Add(time.Hour))
	createTestPost(t, db, carol.ID, "stranger", base.Add(2*time.Hour))

	feed, err := posts.Feed(context.Background(), alice.ID, 50, 0)
	require.NoError(t, err)
	require.Len(t, feed, 2)

	// Newest first, no posts from unfollowed users.
	assert.Equal(t, "followed", feed[0].Body)
	assert.Equal(t, "mine", feed[1].Body)
}

func TestFeed_NoDuplicatesWhenFollowingSelfStyleOverlap(t *testing.T) {
	db := testutil.NewTestDB(t)
	posts := NewPostRepository(db)
	follows := NewFollowRepository(db)

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	require.NoError(t, follows.Follow(context.Background(), alice.ID, bob.ID))

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		createTestPost(t, db, bob.ID, "post", base.Add(time.Duration(i)*time.Minute))
	}

	feed, err := posts.Feed(context.Background(), alice.ID, 50, 0)
	require.NoError(t, err)
	assert.Len(t, feed, 3)

	seen := map[uint]bool{}
	for _, p := range feed {
		assert.False(t, seen[p.ID], "post %d appeared twice", p.ID)
		seen[p.ID] = true
	}
}

func TestFeed_Pagination(t *testing.T) {
	db := testutil.NewTestDB(t)
	posts := NewPostRepository(db)

	alice := createTestUser(t, db, "alice")
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		createTestPost(t, db, alice.ID, "post", base.Add(time.Duration(i)*time.Minute))
	}

	page1, err := posts.Feed(context.Background(), alice.ID, 2, 0)
	require.NoError(t, err)
	page2, err := posts.Feed(context.Background(), alice.ID, 2, 2)
	require.NoError(t, err)

	require.Len(t, page1, 2)
	require.Len(t, page2, 2)
	assert.NotEqual(t, page1[0].ID, page2[0].ID)
	assert.True(t, page1[1].CreatedAt.After(page2[0].CreatedAt) || page1[1].CreatedAt.Equal(page2[0].CreatedAt))
}

func TestList_ReturnsAllPostsNewestFirst(t *testing.T) {
	db := testutil.NewTestDB(t)
	posts := NewPostRepository(db)

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	createTestPost(t, db, alice.ID, "older", base)
	createTestPost(t, db, bob.ID, "newer", base.Add(time.Hour))

	all, err := posts.List(context.Background(), 50, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "newer", all[0].Body)
}
