package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lottolens/lottolens/internal/domain"
	"github.com/lottolens/lottolens/internal/engine"
	"github.com/lottolens/lottolens/internal/worker"
)

// ListQuery holds the filter and sort parameters for a scratcher listing.
// Zero values leave the corresponding filter off.
type ListQuery struct {
	MinPrice      float64
	MaxPrice      float64
	Query         string
	Lifecycle     domain.ScratcherLifecycle
	MinPrizes     int
	MinPrizeRatio float64
	Sort          engine.SortKey
}

// ScratcherService lists, filters, sorts, and ranks scratch-off snapshots.
type ScratcherService struct {
	store   domain.ScratcherStore
	cache   domain.RankingCache
	bridge  *worker.Bridge
	weights engine.ScoreWeights
	logger  *slog.Logger
}

// NewScratcherService creates a ScratcherService. cache may be nil.
func NewScratcherService(
	store domain.ScratcherStore,
	cache domain.RankingCache,
	bridge *worker.Bridge,
	weights engine.ScoreWeights,
	logger *slog.Logger,
) *ScratcherService {
	return &ScratcherService{
		store:   store,
		cache:   cache,
		bridge:  bridge,
		weights: weights,
		logger:  logger.With(slog.String("component", "scratcher_service")),
	}
}

// Get returns one scratcher snapshot by its game number.
func (s *ScratcherService) Get(ctx context.Context, gameNumber int) (domain.ScratcherGame, error) {
	g, err := s.store.GetByNumber(ctx, gameNumber)
	if err != nil {
		return domain.ScratcherGame{}, fmt.Errorf("scratcher_service: get %d: %w", gameNumber, err)
	}
	return g, nil
}

// List returns the active snapshots matching q, ordered by q.Sort (price
// when unset). Sorting by score ranks the filtered set and returns the
// games in score order.
func (s *ScratcherService) List(ctx context.Context, q ListQuery) ([]domain.ScratcherGame, error) {
	key := q.Sort
	if key == "" {
		key = engine.SortByPrice
	}
	if !engine.ValidSortKey(key) {
		return nil, fmt.Errorf("scratcher_service: sort key %q: %w", key, domain.ErrInvalidMode)
	}

	games, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("scratcher_service: list: %w", err)
	}
	games = s.applyFilters(games, q)

	if key == engine.SortByScore {
		ranked, err := s.rank(ctx, games)
		if err != nil {
			return nil, err
		}
		out := make([]domain.ScratcherGame, len(ranked))
		for i, r := range ranked {
			out[i] = r.Game
		}
		return out, nil
	}

	sorted, err := offload(ctx, s.bridge, func() []domain.ScratcherGame {
		engine.SortGames(games, key)
		return games
	})
	if err != nil {
		return nil, fmt.Errorf("scratcher_service: sort: %w", err)
	}
	return sorted, nil
}

// Ranked returns all active snapshots scored and ordered best-first,
// serving from cache when fresh.
func (s *ScratcherService) Ranked(ctx context.Context) ([]domain.RankedScratcher, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.WarnContext(ctx, "ranking cache read failed", slog.String("error", err.Error()))
		}
	}

	games, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("scratcher_service: list: %w", err)
	}

	ranked, err := s.rank(ctx, games)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, ranked); err != nil {
			s.logger.WarnContext(ctx, "ranking cache write failed", slog.String("error", err.Error()))
		}
	}
	return ranked, nil
}

// Invalidate drops the cached ranking. Used after an ingest pass.
func (s *ScratcherService) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		return fmt.Errorf("scratcher_service: invalidate ranking: %w", err)
	}
	return nil
}

func (s *ScratcherService) rank(ctx context.Context, games []domain.ScratcherGame) ([]domain.RankedScratcher, error) {
	ranked, err := offload(ctx, s.bridge, func() []domain.RankedScratcher {
		r := engine.RankScratchers(games, s.weights)
		engine.SortRanked(r)
		return r
	})
	if err != nil {
		return nil, fmt.Errorf("scratcher_service: rank: %w", err)
	}
	return ranked, nil
}

func (s *ScratcherService) applyFilters(games []domain.ScratcherGame, q ListQuery) []domain.ScratcherGame {
	var filters []engine.ScratcherFilter
	if q.MinPrice > 0 || q.MaxPrice > 0 {
		filters = append(filters, engine.PriceBetween(q.MinPrice, q.MaxPrice))
	}
	if q.Query != "" {
		filters = append(filters, engine.MatchesQuery(q.Query))
	}
	if q.Lifecycle != "" {
		filters = append(filters, engine.LifecycleIs(q.Lifecycle))
	}
	if q.MinPrizes > 0 {
		filters = append(filters, engine.MinPrizesRemaining(q.MinPrizes))
	}
	if q.MinPrizeRatio > 0 {
		filters = append(filters, engine.MinPrizeRatio(q.MinPrizeRatio))
	}
	if len(filters) == 0 {
		return games
	}
	return engine.Apply(games, filters...)
}
