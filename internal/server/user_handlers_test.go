package server

import (
	"net/http"
	"testing"

	"writescape/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExistsChecks(t *testing.T) {
	env := newTestEnv(t, false)
	env.register(t, "alice")

	var res struct {
		Exists bool `json:"exists"`
	}
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/users/exists/username", "", map[string]any{"username": "alice"}, &res))
	assert.True(t, res.Exists)

	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/users/exists/username", "", map[string]any{"username": "nobody"}, &res))
	assert.False(t, res.Exists)

	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/users/exists/email", "", map[string]any{"email": "alice@example.com"}, &res))
	assert.True(t, res.Exists)

	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/users/exists/email", "", map[string]any{"email": 12}, &res))
	assert.False(t, res.Exists)
}

func TestProfileEndpoints(t *testing.T) {
	env := newTestEnv(t, false)
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	env.createPost(t, alice, "One", "1")
	env.createPost(t, alice, "Two", "2")
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/follow/alice", bob, nil, nil))

	var summary models.ProfileSummary
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/profiles/alice", bob, nil, &summary))
	assert.Equal(t, "alice", summary.Username)
	assert.EqualValues(t, 2, summary.PostCount)
	assert.EqualValues(t, 1, summary.FollowerCount)
	assert.EqualValues(t, 0, summary.FollowingCount)
	assert.True(t, summary.IsFollowing)
	assert.False(t, summary.IsVisitorProfile)

	summary = models.ProfileSummary{}
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/profiles/alice", alice, nil, &summary))
	assert.True(t, summary.IsVisitorProfile)
	assert.False(t, summary.IsFollowing)

	var posts []models.Post
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/profiles/alice/posts", alice, nil, &posts))
	require.Len(t, posts, 2)
	assert.True(t, posts[0].IsOwner)

	var followers []models.FollowUser
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/profiles/alice/followers", "", nil, &followers))
	require.Len(t, followers, 1)
	assert.Equal(t, "bob", followers[0].Username)

	var following []models.FollowUser
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/profiles/alice/following", "", nil, &following))
	assert.Empty(t, following)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/profiles/ghost", "", nil, nil))
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/profiles/ghost/followers", "", nil, nil))
}
