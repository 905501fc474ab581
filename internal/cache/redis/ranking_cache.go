package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lottolens/lottolens/internal/domain"
)

const rankingKey = "scratchers:ranked"

// RankingCache implements domain.RankingCache: the scored scratcher list as
// one JSON blob with a TTL.
type RankingCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRankingCache creates a RankingCache backed by the given Client.
func NewRankingCache(c *Client, ttl time.Duration) *RankingCache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &RankingCache{rdb: c.Underlying(), ttl: ttl}
}

// Get retrieves the cached ranking, returning domain.ErrNotFound on a miss.
func (rc *RankingCache) Get(ctx context.Context) ([]domain.RankedScratcher, error) {
	data, err := rc.rdb.Get(ctx, rankingKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("redis: get ranking: %w", err)
	}

	var ranked []domain.RankedScratcher
	if err := json.Unmarshal(data, &ranked); err != nil {
		return nil, fmt.Errorf("redis: unmarshal ranking: %w", err)
	}
	return ranked, nil
}

// Set stores the ranking with the configured TTL.
func (rc *RankingCache) Set(ctx context.Context, ranked []domain.RankedScratcher) error {
	data, err := json.Marshal(ranked)
	if err != nil {
		return fmt.Errorf("redis: marshal ranking: %w", err)
	}
	if err := rc.rdb.Set(ctx, rankingKey, data, rc.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set ranking: %w", err)
	}
	return nil
}

// Invalidate drops the cached ranking.
func (rc *RankingCache) Invalidate(ctx context.Context) error {
	if err := rc.rdb.Del(ctx, rankingKey).Err(); err != nil {
		return fmt.Errorf("redis: invalidate ranking: %w", err)
	}
	return nil
}
