package protocol

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomFormat(t *testing.T) {
	alloc := NewRandom("")
	pattern := regexp.MustCompile(`^ESIC-[0-9A-F]{8}$`)

	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		code, err := alloc.Allocate(context.Background(), time.Now())
		require.NoError(t, err)
		assert.Regexp(t, pattern, code)
		seen[code] = struct{}{}
	}
	assert.Len(t, seen, 200)
}

func TestSequence(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	brt := time.FixedZone("BRT", -3*60*60)
	seq := NewSequence(client, "sic", brt)
	ctx := context.Background()

	first, err := seq.Allocate(ctx, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "SIC-2024-000001", first)

	second, err := seq.Allocate(ctx, time.Date(2024, 6, 2, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "SIC-2024-000002", second)

	// 01:00 UTC on Jan 1 is still the previous year in the reference zone.
	edge, err := seq.Allocate(ctx, time.Date(2025, 1, 1, 1, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "SIC-2024-000003", edge)

	next, err := seq.Allocate(ctx, time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "SIC-2025-000001", next)
}

func TestSequenceRedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	_, err := NewSequence(client, "", nil).Allocate(context.Background(), time.Now())
	assert.Error(t, err)
}
