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

// AnalysisCache implements domain.AnalysisCache using JSON-serialized
// GameAnalysis values under per-game keys with a TTL.
//
// Key schema:
//
//	analysis:{game} - JSON GameAnalysis
type AnalysisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewAnalysisCache creates an AnalysisCache backed by the given Client.
func NewAnalysisCache(c *Client, ttl time.Duration) *AnalysisCache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &AnalysisCache{rdb: c.Underlying(), ttl: ttl}
}

func analysisKey(game domain.GameID) string { return "analysis:" + string(game) }

// Get retrieves a cached analysis, returning domain.ErrNotFound on a miss.
func (ac *AnalysisCache) Get(ctx context.Context, game domain.GameID) (domain.GameAnalysis, error) {
	data, err := ac.rdb.Get(ctx, analysisKey(game)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.GameAnalysis{}, domain.ErrNotFound
		}
		return domain.GameAnalysis{}, fmt.Errorf("redis: get analysis %s: %w", game, err)
	}

	var analysis domain.GameAnalysis
	if err := json.Unmarshal(data, &analysis); err != nil {
		return domain.GameAnalysis{}, fmt.Errorf("redis: unmarshal analysis %s: %w", game, err)
	}
	return analysis, nil
}

// Set stores an analysis with the configured TTL.
func (ac *AnalysisCache) Set(ctx context.Context, analysis domain.GameAnalysis) error {
	data, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("redis: marshal analysis %s: %w", analysis.Game, err)
	}
	if err := ac.rdb.Set(ctx, analysisKey(analysis.Game), data, ac.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set analysis %s: %w", analysis.Game, err)
	}
	return nil
}

// Invalidate drops the cached analysis for one game.
func (ac *AnalysisCache) Invalidate(ctx context.Context, game domain.GameID) error {
	if err := ac.rdb.Del(ctx, analysisKey(game)).Err(); err != nil {
		return fmt.Errorf("redis: invalidate analysis %s: %w", game, err)
	}
	return nil
}
