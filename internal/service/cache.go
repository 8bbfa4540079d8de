package service

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/blake2b"

	"github.com/pageza/nutrition-engine/backend/internal/types"
)

const (
	trendReportKeyPrefix = "report:trend:%s"
	generationKeyPrefix  = "report:generation:%s"
	reportTTL            = 24 * time.Hour
)

// TrendCacheKey fingerprints a trend query at a school's data generation.
// Student order does not matter.
func TrendCacheKey(q types.TrendQuery, generation int64) string {
	ids := append([]string(nil), q.StudentIDs...)
	sort.Strings(ids)
	raw := strings.Join([]string{
		q.SchoolID,
		strconv.FormatInt(generation, 10),
		q.From.UTC().Format(time.RFC3339),
		q.To.UTC().Format(time.RFC3339),
		strings.Join(ids, ","),
	}, "|")
	sum := blake2b.Sum256([]byte(raw))
	return fmt.Sprintf(trendReportKeyPrefix, hex.EncodeToString(sum[:16]))
}

// RedisReportCache keeps serialized reports in Redis for a fixed TTL.
type RedisReportCache struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewRedisReportCache(client *redis.Client) *RedisReportCache {
	return &RedisReportCache{redis: client, ttl: reportTTL}
}

func (c *RedisReportCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

func (c *RedisReportCache) Set(ctx context.Context, key string, value []byte) error {
	if err := c.redis.Set(ctx, key, value, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Generation returns the school's data generation, zero before any write.
func (c *RedisReportCache) Generation(ctx context.Context, schoolID string) (int64, error) {
	gen, err := c.redis.Get(ctx, fmt.Sprintf(generationKeyPrefix, schoolID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read generation for %s: %w", schoolID, err)
	}
	return gen, nil
}

// Invalidate bumps the school's generation so earlier reports are never served again.
func (c *RedisReportCache) Invalidate(ctx context.Context, schoolID string) error {
	if err := c.redis.Incr(ctx, fmt.Sprintf(generationKeyPrefix, schoolID)).Err(); err != nil {
		return fmt.Errorf("failed to bump generation for %s: %w", schoolID, err)
	}
	return nil
}

// MemoryReportCache is an in-process ReportCache used when Redis is not configured.
type MemoryReportCache struct {
	mu          sync.Mutex
	ttl         time.Duration
	now         func() time.Time
	entries     map[string]memoryEntry
	generations map[string]int64
}

type memoryEntry struct {
	value   []byte
	expires time.Time
}

func NewMemoryReportCache(ttl time.Duration) *MemoryReportCache {
	if ttl <= 0 {
		ttl = reportTTL
	}
	return &MemoryReportCache{
		ttl:         ttl,
		now:         time.Now,
		entries:     make(map[string]memoryEntry),
		generations: make(map[string]int64),
	}
}

func (c *MemoryReportCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	if c.now().After(e.expires) {
		delete(c.entries, key)
		return nil, ErrCacheMiss
	}
	return append([]byte(nil), e.value...), nil
}

func (c *MemoryReportCache) Set(_ context.Context, key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryEntry{value: append([]byte(nil), value...), expires: c.now().Add(c.ttl)}
	return nil
}

func (c *MemoryReportCache) Generation(_ context.Context, schoolID string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[schoolID], nil
}

// Invalidate bumps the school's generation and drops expired entries.
func (c *MemoryReportCache) Invalidate(_ context.Context, schoolID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations[schoolID]++
	now := c.now()
	for k, e := range c.entries {
		if now.After(e.expires) {
			delete(c.entries, k)
		}
	}
	return nil
}
