package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisSlidingWindow(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewRedis(client)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, err := store.Allow(ctx, "ip:1.2.3.4", 2, time.Minute)
		require.NoError(t, err)
		require.True(t, res.Allowed)
		assert.Equal(t, 1-i, res.Remaining)
		now = now.Add(20 * time.Second)
	}

	res, err := store.Allow(ctx, "ip:1.2.3.4", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 20, res.RetryAfter)
	assert.True(t, mr.Exists("ratelimit:ip:1.2.3.4"))

	now = now.Add(21 * time.Second)
	res, err = store.Allow(ctx, "ip:1.2.3.4", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestRedisStoreError(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	_, err := NewRedis(client).Allow(context.Background(), "ip:x", 1, time.Second)
	require.Error(t, err)
}
