package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowUnfollowFlow(t *testing.T) {
	env := newTestEnv(t)
	_, aliceToken := env.createUser(t, "alice")
	env.createUser(t, "bob")

	resp := env.request(t, http.MethodGet, "/api/follow/bob", aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, decodeBody(t, resp)["following"])

	resp = env.request(t, http.MethodPost, "/api/follow/bob", aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, decodeBody(t, resp)["following"])

	// Following twice stays a success.
	resp = env.request(t, http.MethodPost, "/api/follow/bob", aliceToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.request(t, http.MethodGet, "/api/follow/bob", aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, decodeBody(t, resp)["following"])

	resp = env.request(t, http.MethodDelete, "/api/follow/bob", aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, decodeBody(t, resp)["following"])

	// Unfollowing a user you don't follow is a no-op success.
	resp = env.request(t, http.MethodDelete, "/api/follow/bob", aliceToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestFollow_SelfRejected(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createUser(t, "alice")

	resp := env.request(t, http.MethodPost, "/api/follow/alice", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestFollow_UnknownUser(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createUser(t, "alice")

	resp := env.request(t, http.MethodPost, "/api/follow/ghost", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
