package directory

import (
	"context"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHaversine(t *testing.T) {
	assert.InDelta(t, 0, haversineKm(12.97, 77.59, 12.97, 77.59), 1e-9)
	// Bangalore to Delhi is roughly 1740 km.
	assert.InDelta(t, 1740, haversineKm(12.9716, 77.5946, 28.6139, 77.2090), 20)
}

func exerciseIndex(t *testing.T, index LocationIndex) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, index.Set(ctx, "v1", 12.9746, 77.5993))
	require.NoError(t, index.Set(ctx, "v2", 12.9780, 77.6400))

	hits, err := index.Nearby(ctx, 12.9783, 77.6408, 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "v2", hits[0].VendorID)
	assert.Equal(t, "v1", hits[1].VendorID)
	assert.Less(t, hits[0].DistanceKm, hits[1].DistanceKm)

	hits, err = index.Nearby(ctx, 12.9783, 77.6408, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "v2", hits[0].VendorID)

	// Moving a vendor replaces its point.
	require.NoError(t, index.Set(ctx, "v1", 28.6139, 77.2090))
	hits, err = index.Nearby(ctx, 12.9783, 77.6408, 10)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestMemoryLocationIndex(t *testing.T) {
	exerciseIndex(t, NewMemoryLocationIndex())
}

func TestRedisLocationIndex(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set; skipping redis test")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	key := "test:vendor-locations:" + t.Name()
	require.NoError(t, client.Del(context.Background(), key).Err())
	t.Cleanup(func() { client.Del(context.Background(), key) })

	exerciseIndex(t, NewRedisLocationIndex(client, key))
}
