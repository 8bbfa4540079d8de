package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimitConfig defines configuration for rate limiting
type RateLimitConfig struct {
	// Window is the time window for rate limiting
	Window time.Duration
	// Limit is the maximum number of requests allowed in the window. Zero disables the limiter.
	Limit int
	// Key prefix for counter keys
	KeyPrefix string
}

// counterStore counts hits per key within a window.
type counterStore interface {
	incr(ctx context.Context, key string, ttl time.Duration) (int, error)
	get(ctx context.Context, key string) (int, error)
}

// RateLimiter handles fixed-window rate limiting backed by Redis, or by
// process memory when no Redis client is configured.
type RateLimiter struct {
	store  counterStore
	config RateLimitConfig
	now    func() time.Time
}

// NewRateLimiter creates a new rate limiter instance. A nil client keeps counters in memory.
func NewRateLimiter(redisClient *redis.Client, config RateLimitConfig) *RateLimiter {
	var store counterStore = newMemoryCounter()
	if redisClient != nil {
		store = &redisCounter{client: redisClient}
	}
	return &RateLimiter{store: store, config: config, now: time.Now}
}

// NewPlanRateLimiter limits meal plan generation per user.
func NewPlanRateLimiter(redisClient *redis.Client, limit int, window time.Duration) *RateLimiter {
	return NewRateLimiter(redisClient, RateLimitConfig{
		Window:    window,
		Limit:     limit,
		KeyPrefix: "rate_limit:plan_generation",
	})
}

// RateLimitMiddleware returns a Gin middleware that enforces rate limiting
func (rl *RateLimiter) RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.config.Limit <= 0 {
			c.Next()
			return
		}
		userID, exists := c.Get(ContextUserID)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "user not authenticated", Code: "unauthorized"})
			return
		}

		allowed, remaining, resetTime, err := rl.IsAllowed(c.Request.Context(), fmt.Sprintf("%v", userID))
		if err != nil {
			// Counter backend is down; serve the request without a limit.
			c.Header("X-RateLimit-Error", "rate limit check failed")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.config.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":                "rate limit exceeded",
				"code":                 "rate_limited",
				"message":              fmt.Sprintf("You have exceeded the rate limit of %d requests per %v", rl.config.Limit, rl.config.Window),
				"rate_limit_remaining": remaining,
				"rate_limit_reset":     resetTime.Unix(),
				"retry_after":          int(resetTime.Sub(rl.now()).Seconds()),
			})
			return
		}

		c.Next()
	}
}

// IsAllowed counts a request from the given user and reports whether it fits the window.
// Returns: allowed, remaining requests, reset time, error
func (rl *RateLimiter) IsAllowed(ctx context.Context, userID string) (bool, int, time.Time, error) {
	key, resetTime := rl.windowKey(userID)
	count, err := rl.store.incr(ctx, key, rl.config.Window)
	if err != nil {
		return false, 0, time.Time{}, err
	}
	return count <= rl.config.Limit, max(rl.config.Limit-count, 0), resetTime, nil
}

// GetRemainingRequests returns the number of remaining requests for a user
func (rl *RateLimiter) GetRemainingRequests(ctx context.Context, userID string) (int, time.Time, error) {
	key, resetTime := rl.windowKey(userID)
	count, err := rl.store.get(ctx, key)
	if err != nil {
		return 0, time.Time{}, err
	}
	return max(rl.config.Limit-count, 0), resetTime, nil
}

func (rl *RateLimiter) windowKey(userID string) (string, time.Time) {
	windowStart := rl.now().Truncate(rl.config.Window)
	return fmt.Sprintf("%s:%s:%d", rl.config.KeyPrefix, userID, windowStart.Unix()), windowStart.Add(rl.config.Window)
}

type redisCounter struct {
	client *redis.Client
}

func (r *redisCounter) incr(ctx context.Context, key string, ttl time.Duration) (int, error) {
	pipe := r.client.Pipeline()
	incrCmd := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return int(incrCmd.Val()), nil
}

func (r *redisCounter) get(ctx context.Context, key string) (int, error) {
	count, err := r.client.Get(ctx, key).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return count, err
}

type memoryEntry struct {
	count   int
	expires time.Time
}

type memoryCounter struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func newMemoryCounter() *memoryCounter {
	return &memoryCounter{entries: make(map[string]memoryEntry), now: time.Now}
}

func (m *memoryCounter) incr(_ context.Context, key string, ttl time.Duration) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for k, e := range m.entries {
		if now.After(e.expires) {
			delete(m.entries, k)
		}
	}
	e := m.entries[key]
	e.count++
	e.expires = now.Add(ttl)
	m.entries[key] = e
	return e.count, nil
}

func (m *memoryCounter) get(_ context.Context, key string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok || m.now().After(e.expires) {
		return 0, nil
	}
	return e.count, nil
}
