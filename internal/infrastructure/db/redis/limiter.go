package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter enforces a fixed-window request quota per key, backed by Redis
// so the limit holds across instances.
// Key format: ratelimit:<key>
type RateLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

// NewRateLimiter creates a limiter allowing limit requests per window.
func NewRateLimiter(client *redis.Client, limit int64, window time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = 100
	}
	if window <= 0 {
		window = time.Hour
	}
	return &RateLimiter{client: client, limit: limit, window: window}
}

// Allow records one request for key and reports whether it is still within
// quota. The window starts at the first request and expires as a whole.
func (l *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := "ratelimit:" + key

	n, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return false, fmt.Errorf("rate limit incr: %w", err)
	}
	if n == 1 {
		if err := l.client.Expire(ctx, k, l.window).Err(); err != nil {
			return false, fmt.Errorf("rate limit expire: %w", err)
		}
	}

	return n <= l.limit, nil
}
