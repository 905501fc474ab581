package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lottolens/lottolens/internal/domain"
	"github.com/lottolens/lottolens/internal/engine"
	"github.com/lottolens/lottolens/internal/rules"
	"github.com/lottolens/lottolens/internal/worker"
)

// AnalysisService computes and caches per-game frequency analyses.
type AnalysisService struct {
	draws  domain.DrawStore
	rules  *rules.Table
	cache  domain.AnalysisCache
	bus    domain.EventBus
	bridge *worker.Bridge
	logger *slog.Logger
	now    func() time.Time
}

// NewAnalysisService creates an AnalysisService. cache and bus may be nil.
func NewAnalysisService(
	draws domain.DrawStore,
	table *rules.Table,
	cache domain.AnalysisCache,
	bus domain.EventBus,
	bridge *worker.Bridge,
	logger *slog.Logger,
) *AnalysisService {
	return &AnalysisService{
		draws:  draws,
		rules:  table,
		cache:  cache,
		bus:    bus,
		bridge: bridge,
		logger: logger.With(slog.String("component", "analysis_service")),
		now:    time.Now,
	}
}

// Games returns the configured game ids, sorted.
func (s *AnalysisService) Games() []domain.GameID {
	return s.rules.Games()
}

// Analyze returns the GameAnalysis bundle for game, serving from cache when
// fresh. An unknown game returns ErrUnknownGame; a game with no stored rows
// still analyzes (zero counts, uniform recommendations) per the engine's
// degradation rules.
func (s *AnalysisService) Analyze(ctx context.Context, game domain.GameID) (domain.GameAnalysis, error) {
	if !s.rules.Known(game) {
		return domain.GameAnalysis{}, fmt.Errorf("analysis_service: game %q: %w", game, domain.ErrUnknownGame)
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, game)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.WarnContext(ctx, "analysis cache read failed",
				slog.String("game", string(game)),
				slog.String("error", err.Error()),
			)
		}
	}

	asOf := s.now().UTC()
	era := s.rules.ConfigFor(game, asOf)

	rows, err := s.draws.ListSince(ctx, game, era.Start)
	if err != nil {
		return domain.GameAnalysis{}, fmt.Errorf("analysis_service: list draws for %s: %w", game, err)
	}
	// The store query is era-bounded already; the filter guards against
	// stores that ignore the since bound.
	rows = s.rules.FilterCurrentEra(rows, game, asOf)

	analysis, err := offload(ctx, s.bridge, func() domain.GameAnalysis {
		return engine.AnalyzeGame(rows, game, era, asOf)
	})
	if err != nil {
		return domain.GameAnalysis{}, fmt.Errorf("analysis_service: analyze %s: %w", game, err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, analysis); err != nil {
			s.logger.WarnContext(ctx, "analysis cache write failed",
				slog.String("game", string(game)),
				slog.String("error", err.Error()),
			)
		}
	}
	if s.bus != nil {
		if err := s.bus.Publish(ctx, "analysis", map[string]any{
			"kind": "analysis_refreshed", "game": string(game), "draws": analysis.Stats.Draws,
		}); err != nil {
			s.logger.WarnContext(ctx, "analysis event publish failed",
				slog.String("error", err.Error()))
		}
	}

	s.logger.InfoContext(ctx, "computed analysis",
		slog.String("game", string(game)),
		slog.Int("draws", analysis.Stats.Draws),
		slog.String("main_mode", string(analysis.MainRec.Mode)),
		slog.Float64("main_alpha", analysis.MainRec.Alpha),
	)
	return analysis, nil
}

// Invalidate drops the cached analysis for game, forcing the next Analyze
// to recompute. Used after an ingest pass.
func (s *AnalysisService) Invalidate(ctx context.Context, game domain.GameID) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Invalidate(ctx, game); err != nil {
		return fmt.Errorf("analysis_service: invalidate %s: %w", game, err)
	}
	return nil
}
