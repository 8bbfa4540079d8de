package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/nutrition-engine/backend/internal/types"
)

func TestTrendCacheKey(t *testing.T) {
	q := types.TrendQuery{SchoolID: "school-1", From: monday, To: monday.AddDate(0, 0, 7), StudentIDs: []string{"b", "a"}}
	reordered := q
	reordered.StudentIDs = []string{"a", "b"}

	key := TrendCacheKey(q, 0)
	assert.True(t, strings.HasPrefix(key, "report:trend:"))
	assert.Len(t, strings.TrimPrefix(key, "report:trend:"), 32)
	assert.Equal(t, key, TrendCacheKey(reordered, 0))
	assert.Equal(t, []string{"b", "a"}, q.StudentIDs)
	assert.NotEqual(t, key, TrendCacheKey(q, 1))

	other := q
	other.SchoolID = "school-2"
	assert.NotEqual(t, key, TrendCacheKey(other, 0))
}

func TestMemoryReportCache(t *testing.T) {
	c := NewMemoryReportCache(time.Minute)
	now := monday
	c.now = func() time.Time { return now }
	ctx := context.Background()

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)

	value := []byte(`{"a":1}`)
	require.NoError(t, c.Set(ctx, "k", value))
	value[0] = 'x'

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(got))

	now = now.Add(2 * time.Minute)
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryReportCache_Invalidate(t *testing.T) {
	c := NewMemoryReportCache(time.Minute)
	now := monday
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "stale", []byte("old")))
	now = now.Add(2 * time.Minute)
	require.NoError(t, c.Set(ctx, "fresh", []byte("new")))

	require.NoError(t, c.Invalidate(ctx, "school-1"))
	require.NoError(t, c.Invalidate(ctx, "school-1"))

	gen, err := c.Generation(ctx, "school-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), gen)
	assert.NotContains(t, c.entries, "stale")
	assert.Contains(t, c.entries, "fresh")
}

func TestRedisReportCache(t *testing.T) {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		t.Skip("REDIS_HOST not set, skipping Redis test")
	}
	client := redis.NewClient(&redis.Options{Addr: host + ":6379"})
	defer client.Close()
	ctx := context.Background()
	require.NoError(t, client.Ping(ctx).Err())

	c := NewRedisReportCache(client)
	key := TrendCacheKey(types.TrendQuery{SchoolID: "redis-test", From: time.Now(), To: time.Now().Add(time.Hour)}, 0)
	genKey := fmt.Sprintf(generationKeyPrefix, "redis-test")
	defer client.Del(ctx, key, genKey)

	_, err := c.Get(ctx, key)
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.Set(ctx, key, []byte("report")))
	got, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "report", string(got))

	ttl, err := client.TTL(ctx, key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 23*time.Hour)

	client.Del(ctx, genKey)
	gen, err := c.Generation(ctx, "redis-test")
	require.NoError(t, err)
	assert.Zero(t, gen)
	require.NoError(t, c.Invalidate(ctx, "redis-test"))
	gen, err = c.Generation(ctx, "redis-test")
	require.NoError(t, err)
	assert.Equal(t, int64(1), gen)
}
