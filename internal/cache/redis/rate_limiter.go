package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RateLimiter implements a sliding-window rate limit backed by Redis sorted
// sets: one member per request scored by its timestamp, old members trimmed
// on every check.
type RateLimiter struct {
	rdb *redis.Client
}

// NewRateLimiter creates a RateLimiter backed by the given Client.
func NewRateLimiter(c *Client) *RateLimiter {
	return &RateLimiter{rdb: c.Underlying()}
}

func rateLimitKey(key string) string { return "ratelimit:" + key }

// Allow reports whether a request for key is permitted under the window.
// An allowed request is counted; a denied one is not.
func (rl *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if limit <= 0 {
		return true, nil
	}

	now := time.Now()
	cutoff := now.Add(-window).UnixMicro()
	k := rateLimitKey(key)

	pipe := rl.rdb.TxPipeline()
	pipe.ZRemRangeByScore(ctx, k, "0", strconv.FormatInt(cutoff, 10))
	count := pipe.ZCard(ctx, k)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("redis: rate limit check %s: %w", key, err)
	}

	if count.Val() >= int64(limit) {
		return false, nil
	}

	add := rl.rdb.TxPipeline()
	add.ZAdd(ctx, k, redis.Z{
		Score:  float64(now.UnixMicro()),
		Member: uuid.NewString(),
	})
	add.Expire(ctx, k, window)
	if _, err := add.Exec(ctx); err != nil {
		return false, fmt.Errorf("redis: rate limit record %s: %w", key, err)
	}
	return true, nil
}
