package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *RedisCache) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, NewRedisCache(client, time.Minute)
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()

	t.Run("miss then hit", func(t *testing.T) {
		_, cache := setupTestRedis(t)

		_, ok := cache.Get(ctx, "budi")
		assert.False(t, ok)

		cache.Set(ctx, "Budi ", []byte(`{"type":"FeatureCollection"}`))
		payload, ok := cache.Get(ctx, "budi")
		require.True(t, ok)
		assert.Equal(t, `{"type":"FeatureCollection"}`, string(payload))
	})

	t.Run("invalidate drops every filter", func(t *testing.T) {
		_, cache := setupTestRedis(t)

		cache.Set(ctx, "", []byte("all"))
		cache.Set(ctx, "siti", []byte("siti"))
		cache.Invalidate(ctx)

		_, ok := cache.Get(ctx, "")
		assert.False(t, ok)
		_, ok = cache.Get(ctx, "siti")
		assert.False(t, ok)

		cache.Set(ctx, "", []byte("fresh"))
		payload, ok := cache.Get(ctx, "")
		require.True(t, ok)
		assert.Equal(t, "fresh", string(payload))
	})

	t.Run("entries expire", func(t *testing.T) {
		mr, cache := setupTestRedis(t)

		cache.Set(ctx, "x", []byte("1"))
		mr.FastForward(2 * time.Minute)
		_, ok := cache.Get(ctx, "x")
		assert.False(t, ok)
	})

	t.Run("redis down is a miss", func(t *testing.T) {
		mr, cache := setupTestRedis(t)
		mr.Close()

		cache.Set(ctx, "x", []byte("1"))
		_, ok := cache.Get(ctx, "x")
		assert.False(t, ok)
		cache.Invalidate(ctx)
	})
}

func TestNoopCache(t *testing.T) {
	var c FeatureCache = NoopCache{}
	c.Set(context.Background(), "x", []byte("1"))
	_, ok := c.Get(context.Background(), "x")
	assert.False(t, ok)
}
