package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"writescape/internal/config"
	"writescape/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testPassword = "correct-horse-battery"

type testEnv struct {
	server *Server
	app    *fiber.App
	db     *gorm.DB
	mr     *miniredis.Miniredis
}

func newTestConfig() *config.Config {
	return &config.Config{
		JWTSecret:     "test-secret",
		Env:           "test",
		FeatureFlags:  "chat=on,notifications=on",
		TokenTTLHours: 1,
	}
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Post{}, &models.Follow{}))
	return db
}

func newTestEnv(t *testing.T, withRedis bool) *testEnv {
	t.Helper()
	return newTestEnvWithConfig(t, newTestConfig(), withRedis)
}

func newTestEnvWithConfig(t *testing.T, cfg *config.Config, withRedis bool) *testEnv {
	t.Helper()
	env := &testEnv{db: setupTestDB(t)}

	var rdb *redis.Client
	if withRedis {
		env.mr = miniredis.RunT(t)
		rdb = redis.NewClient(&redis.Options{Addr: env.mr.Addr()})
		t.Cleanup(func() { _ = rdb.Close() })
	}

	s, err := NewServerWithDeps(cfg, env.db, rdb)
	require.NoError(t, err)
	env.server = s
	env.app = s.NewApp()
	return env
}

// do sends a JSON request and decodes the response body into out when non-nil.
func (e *testEnv) do(t *testing.T, method, path, token string, body any, out any) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

// register creates an account through the API and returns its token.
func (e *testEnv) register(t *testing.T, username string) string {
	t.Helper()
	var res authResponse
	status := e.do(t, http.MethodPost, "/api/auth/register", "", map[string]any{
		"username": username,
		"email":    username + "@example.com",
		"password": testPassword,
	}, &res)
	require.Equal(t, http.StatusCreated, status)
	require.NotEmpty(t, res.Token)
	return res.Token
}

func (e *testEnv) createPost(t *testing.T, token, title, body string) uint {
	t.Helper()
	var res struct {
		ID uint `json:"id"`
	}
	status := e.do(t, http.MethodPost, "/api/posts/", token, map[string]any{"title": title, "body": body}, &res)
	require.Equal(t, http.StatusCreated, status)
	require.NotZero(t, res.ID)
	return res.ID
}
