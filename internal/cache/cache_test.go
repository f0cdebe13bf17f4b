package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedThing struct {
	Name string `json:"name"`
}

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	return New(redis.NewClient(&redis.Options{Addr: mr.Addr()})), mr
}

func TestAside_MissThenHit(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	calls := 0
	fetch := func(dest *cachedThing) func() error {
		return func() error {
			calls++
			dest.Name = "first"
			return nil
		}
	}

	var a cachedThing
	require.NoError(t, c.Aside(ctx, PostKey(1), &a, PostTTL, fetch(&a)))
	assert.Equal(t, "first", a.Name)
	assert.True(t, mr.Exists("post:1"))

	var b cachedThing
	require.NoError(t, c.Aside(ctx, PostKey(1), &b, PostTTL, fetch(&b)))
	assert.Equal(t, "first", b.Name)
	assert.Equal(t, 1, calls)

	c.Invalidate(ctx, PostKey(1))
	assert.False(t, mr.Exists("post:1"))
}

func TestAside_FetchErrorNotCached(t *testing.T) {
	c, mr := newTestCache(t)
	var dest cachedThing
	err := c.Aside(context.Background(), UserKey(9), &dest, UserTTL, func() error { return errors.New("db down") })
	assert.Error(t, err)
	assert.False(t, mr.Exists("user:9"))
}

func TestAside_RedisDownFallsBackToFetch(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()

	var dest cachedThing
	err := c.Aside(context.Background(), UserKey(1), &dest, UserTTL, func() error {
		dest.Name = "db"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "db", dest.Name)
}

func TestNilCacheIsNoop(t *testing.T) {
	var c *Cache
	assert.False(t, c.Enabled())

	var dest cachedThing
	require.NoError(t, c.Aside(context.Background(), "k", &dest, UserTTL, func() error {
		dest.Name = "x"
		return nil
	}))
	assert.Equal(t, "x", dest.Name)
	c.Invalidate(context.Background(), "k")
}

func TestNewRedisOptions(t *testing.T) {
	opts, err := NewRedisOptions("redis://localhost:6380/2")
	require.NoError(t, err)
	assert.Equal(t, "localhost:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)

	opts, err = NewRedisOptions("cache:6379")
	require.NoError(t, err)
	assert.Equal(t, "cache:6379", opts.Addr)

	_, err = NewRedisOptions("redis://%zz")
	assert.Error(t, err)
}

func TestInitRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := InitRedis(mr.Addr())
	require.NotNil(t, client)
	_ = client.Close()

	assert.Nil(t, InitRedis("redis://%zz"))
}
