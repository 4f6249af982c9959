package server

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePost(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createUser(t, "alice")

	resp := env.request(t, http.MethodPost, "/api/posts/", token, map[string]string{
		"body":     "hello world",
		"language": "en",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	payload := decodeBody(t, resp)
	assert.Equal(t, "hello world", payload["body"])
}

func TestCreatePost_EnforcesLengthAndLanguage(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createUser(t, "alice")

	resp := env.request(t, http.MethodPost, "/api/posts/", token, map[string]string{
		"body": strings.Repeat("a", 141),
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.request(t, http.MethodPost, "/api/posts/", token, map[string]string{
		"body":     "ok",
		"language": "not a tag",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.request(t, http.MethodPost, "/api/posts/", token, map[string]string{
		"body": "",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestFeedAndExplore(t *testing.T) {
	env := newTestEnv(t)
	_, aliceToken := env.createUser(t, "alice")
	_, bobToken := env.createUser(t, "bob")
	_, carolToken := env.createUser(t, "carol")

	for who, token := range map[string]string{"alice": aliceToken, "bob": bobToken, "carol": carolToken} {
		resp := env.request(t, http.MethodPost, "/api/posts/", token, map[string]string{"body": "post by " + who})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp := env.request(t, http.MethodPost, "/api/follow/bob", aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.request(t, http.MethodGet, "/api/posts/feed", aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	feed := decodeBody(t, resp)["posts"].([]any)
	require.Len(t, feed, 2)
	for _, entry := range feed {
		body := entry.(map[string]any)["body"].(string)
		assert.NotEqual(t, "post by carol", body)
	}

	resp = env.request(t, http.MethodGet, "/api/posts/explore", aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	explore := decodeBody(t, resp)["posts"].([]any)
	assert.Len(t, explore, 3)
}

func TestDeletePost_OwnershipEnforced(t *testing.T) {
	env := newTestEnv(t)
	_, aliceToken := env.createUser(t, "alice")
	_, bobToken := env.createUser(t, "bob")

	resp := env.request(t, http.MethodPost, "/api/posts/", aliceToken, map[string]string{"body": "mine"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	postID := fmt.Sprintf("%.0f", decodeBody(t, resp)["id"].(float64))

	resp = env.request(t, http.MethodDelete, "/api/posts/"+postID, bobToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = env.request(t, http.MethodDelete, "/api/posts/"+postID, aliceToken, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestGetUserProfileAndPosts(t *testing.T) {
	env := newTestEnv(t)
	_, aliceToken := env.createUser(t, "alice")
	env.createUser(t, "bob")

	resp := env.request(t, http.MethodGet, "/api/users/bob", aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	payload := decodeBody(t, resp)
	assert.Equal(t, false, payload["is_following"])
	assert.NotEmpty(t, payload["avatar_url"])

	resp = env.request(t, http.MethodGet, "/api/users/ghost", aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.request(t, http.MethodGet, "/api/users/bob/posts", aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUpdateMyProfile(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createUser(t, "alice")
	env.createUser(t, "bob")

	resp := env.request(t, http.MethodPut, "/api/users/me", token, map[string]string{
		"bio": "gardener of small systems",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Taken username conflicts.
	resp = env.request(t, http.MethodPut, "/api/users/me", token, map[string]string{
		"username": "bob",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = env.request(t, http.MethodPut, "/api/users/me", token, map[string]string{
		"bio": strings.Repeat("x", 141),
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
