package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/lottolens/lottolens/internal/domain"
	"github.com/lottolens/lottolens/internal/engine"
	"github.com/lottolens/lottolens/internal/rules"
	"github.com/lottolens/lottolens/internal/worker"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// memDrawStore serves a fixed row set for one game.
type memDrawStore struct {
	domain.DrawStore
	rows  map[domain.GameID][]domain.DrawRecord
	calls int
}

func (s *memDrawStore) ListSince(ctx context.Context, game domain.GameID, since time.Time) ([]domain.DrawRecord, error) {
	s.calls++
	var out []domain.DrawRecord
	for _, r := range s.rows[game] {
		if since.IsZero() || !r.Date.Before(since) {
			out = append(out, r)
		}
	}
	return out, nil
}

// memAnalysisCache is a map-backed AnalysisCache.
type memAnalysisCache struct {
	entries map[domain.GameID]domain.GameAnalysis
}

func newMemAnalysisCache() *memAnalysisCache {
	return &memAnalysisCache{entries: make(map[domain.GameID]domain.GameAnalysis)}
}

func (c *memAnalysisCache) Get(ctx context.Context, game domain.GameID) (domain.GameAnalysis, error) {
	a, ok := c.entries[game]
	if !ok {
		return domain.GameAnalysis{}, domain.ErrNotFound
	}
	return a, nil
}

func (c *memAnalysisCache) Set(ctx context.Context, a domain.GameAnalysis) error {
	c.entries[a.Game] = a
	return nil
}

func (c *memAnalysisCache) Invalidate(ctx context.Context, game domain.GameID) error {
	delete(c.entries, game)
	return nil
}

func take5Rows(n int) []domain.DrawRecord {
	rows := make([]domain.DrawRecord, n)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range rows {
		rows[i] = domain.DrawRecord{
			Date:  base.AddDate(0, 0, i),
			Mains: []int{1 + i%39, 1 + (i*7)%39, 1 + (i*11)%39, 1 + (i*17)%39, 1 + (i*23)%39},
		}
	}
	return rows
}

func newAnalysisFixture(t *testing.T, cache domain.AnalysisCache) (*AnalysisService, *memDrawStore) {
	t.Helper()
	store := &memDrawStore{rows: map[domain.GameID][]domain.DrawRecord{
		domain.GameTake5: take5Rows(40),
	}}
	svc := NewAnalysisService(store, rules.Default(), cache, nil, nil, testLogger())
	return svc, store
}

func TestAnalyzeUnknownGame(t *testing.T) {
	svc, _ := newAnalysisFixture(t, nil)

	_, err := svc.Analyze(context.Background(), "euromillions")
	require.ErrorIs(t, err, domain.ErrUnknownGame)
}

func TestAnalyzeComputesBundle(t *testing.T) {
	svc, _ := newAnalysisFixture(t, nil)

	a, err := svc.Analyze(context.Background(), domain.GameTake5)
	require.NoError(t, err)

	assert.Equal(t, domain.GameTake5, a.Game)
	assert.Equal(t, 40, a.Stats.Draws)
	assert.True(t, a.MainRec.Mode.Valid())
	assert.GreaterOrEqual(t, a.MainRec.Alpha, 0.0)
	assert.LessOrEqual(t, a.MainRec.Alpha, 1.0)
	assert.False(t, a.Era.HasSpecial())
	assert.False(t, a.GeneratedAt.IsZero())
}

func TestAnalyzeServesFromCache(t *testing.T) {
	cache := newMemAnalysisCache()
	svc, store := newAnalysisFixture(t, cache)
	ctx := context.Background()

	_, err := svc.Analyze(ctx, domain.GameTake5)
	require.NoError(t, err)
	require.Equal(t, 1, store.calls)

	_, err = svc.Analyze(ctx, domain.GameTake5)
	require.NoError(t, err)
	assert.Equal(t, 1, store.calls, "second call should hit the cache")

	require.NoError(t, svc.Invalidate(ctx, domain.GameTake5))
	_, err = svc.Analyze(ctx, domain.GameTake5)
	require.NoError(t, err)
	assert.Equal(t, 2, store.calls)
}

func TestAnalyzeEmptyHistoryDegrades(t *testing.T) {
	store := &memDrawStore{rows: map[domain.GameID][]domain.DrawRecord{}}
	svc := NewAnalysisService(store, rules.Default(), nil, nil, nil, testLogger())

	a, err := svc.Analyze(context.Background(), domain.GamePowerball)
	require.NoError(t, err)
	assert.Zero(t, a.Stats.Draws)
	assert.Zero(t, a.MainRec.Alpha)
}

func newTicketFixture(t *testing.T) *TicketService {
	t.Helper()
	svc, _ := newAnalysisFixture(t, nil)
	return NewTicketService(svc, nil, 25, 50, testLogger())
}

func TestGenerateTickets(t *testing.T) {
	ts := newTicketFixture(t)

	tickets, err := ts.Generate(context.Background(), TicketRequest{
		Game:  domain.GameTake5,
		Count: 5,
	})
	require.NoError(t, err)
	require.Len(t, tickets, 5)
	for _, tk := range tickets {
		assert.Len(t, tk.Mains, 5)
		assert.Zero(t, tk.Special)
		for _, v := range tk.Mains {
			assert.GreaterOrEqual(t, v, 1)
			assert.LessOrEqual(t, v, 39)
		}
	}
}

func TestGenerateRejectsInvalidMode(t *testing.T) {
	ts := newTicketFixture(t)

	_, err := ts.Generate(context.Background(), TicketRequest{
		Game: domain.GameTake5,
		Mode: "lukewarm",
	})
	require.ErrorIs(t, err, domain.ErrInvalidMode)
}

func TestGenerateRejectsOutOfRangeAlpha(t *testing.T) {
	ts := newTicketFixture(t)
	alpha := 1.5

	_, err := ts.Generate(context.Background(), TicketRequest{
		Game:  domain.GameTake5,
		Alpha: &alpha,
	})
	require.ErrorIs(t, err, domain.ErrInvalidMode)
}

func TestGenerateClampsCount(t *testing.T) {
	ts := newTicketFixture(t)

	tickets, err := ts.Generate(context.Background(), TicketRequest{
		Game:  domain.GameTake5,
		Count: 1000,
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(tickets), 25)

	one, err := ts.Generate(context.Background(), TicketRequest{Game: domain.GameTake5})
	require.NoError(t, err)
	assert.Len(t, one, 1)
}

func TestGenerateKenoSizePickSkipsAvoidance(t *testing.T) {
	store := &memDrawStore{rows: map[domain.GameID][]domain.DrawRecord{}}
	analysis := NewAnalysisService(store, rules.Default(), nil, nil, nil, testLogger())
	ts := NewTicketService(analysis, nil, 25, 50, testLogger())

	// 20-of-80 draws trip the common-shape filter on nearly every ticket;
	// avoidance must be a no-op here instead of churning the retry budget.
	tickets, err := ts.Generate(context.Background(), TicketRequest{
		Game:        domain.GamePick10,
		Count:       5,
		AvoidCommon: true,
	})
	require.NoError(t, err)
	require.Len(t, tickets, 5)
	for _, tk := range tickets {
		assert.Len(t, tk.Mains, 20)
		for _, v := range tk.Mains {
			assert.GreaterOrEqual(t, v, 1)
			assert.LessOrEqual(t, v, 80)
		}
	}
}

func TestGenerateThroughBridge(t *testing.T) {
	analysis, _ := newAnalysisFixture(t, nil)
	bridge := worker.New(8, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	g, runCtx := errgroup.WithContext(ctx)
	g.Go(func() error { return bridge.Run(runCtx, 2) })

	ts := NewTicketService(analysis, bridge, 25, 50, testLogger())
	tickets, err := ts.Generate(ctx, TicketRequest{Game: domain.GameTake5, Count: 3})
	require.NoError(t, err)
	assert.Len(t, tickets, 3)

	cancel()
	require.NoError(t, g.Wait())
}

func scratcherFixture() []domain.ScratcherGame {
	return []domain.ScratcherGame{
		{GameNumber: 1612, Name: "Loteria Grande", Price: 10, TopPrizeValue: 1_000_000,
			TopPrizesOriginal: 10, TopPrizesRemaining: 8, OverallOdds: 3.1, AdjustedOdds: 3.4,
			Lifecycle: domain.LifecycleNew},
		{GameNumber: 1540, Name: "Cashword Bonus", Price: 5, TopPrizeValue: 75_000,
			TopPrizesOriginal: 20, TopPrizesRemaining: 2, OverallOdds: 3.9, AdjustedOdds: 4.8,
			Lifecycle: domain.LifecycleContinuing},
		{GameNumber: 1499, Name: "Lucky 7s", Price: 1, TopPrizeValue: 7_000,
			TopPrizesOriginal: 50, TopPrizesRemaining: 40, OverallOdds: 4.6, AdjustedOdds: 4.5,
			Lifecycle: domain.LifecycleContinuing},
	}
}

// memScratcherStore serves a fixed snapshot list.
type memScratcherStore struct {
	domain.ScratcherStore
	games []domain.ScratcherGame
	calls int
}

func (s *memScratcherStore) List(ctx context.Context) ([]domain.ScratcherGame, error) {
	s.calls++
	out := make([]domain.ScratcherGame, len(s.games))
	copy(out, s.games)
	return out, nil
}

// memRankingCache is a map-backed RankingCache.
type memRankingCache struct {
	ranked []domain.RankedScratcher
	set    bool
}

func (c *memRankingCache) Get(ctx context.Context) ([]domain.RankedScratcher, error) {
	if !c.set {
		return nil, domain.ErrNotFound
	}
	return c.ranked, nil
}

func (c *memRankingCache) Set(ctx context.Context, ranked []domain.RankedScratcher) error {
	c.ranked, c.set = ranked, true
	return nil
}

func (c *memRankingCache) Invalidate(ctx context.Context) error {
	c.ranked, c.set = nil, false
	return nil
}

func newScratcherFixture(cache domain.RankingCache) (*ScratcherService, *memScratcherStore) {
	store := &memScratcherStore{games: scratcherFixture()}
	svc := NewScratcherService(store, cache, nil, engine.DefaultScoreWeights(), testLogger())
	return svc, store
}

func TestScratcherListFiltersAndSorts(t *testing.T) {
	svc, _ := newScratcherFixture(nil)

	games, err := svc.List(context.Background(), ListQuery{
		MinPrice: 2,
		Sort:     engine.SortByPrice,
	})
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, 1540, games[0].GameNumber)
	assert.Equal(t, 1612, games[1].GameNumber)
}

func TestScratcherListDefaultsToPriceSort(t *testing.T) {
	svc, _ := newScratcherFixture(nil)

	games, err := svc.List(context.Background(), ListQuery{})
	require.NoError(t, err)
	require.Len(t, games, 3)
	assert.Equal(t, 1499, games[0].GameNumber)
}

func TestScratcherListRejectsBadSortKey(t *testing.T) {
	svc, _ := newScratcherFixture(nil)

	_, err := svc.List(context.Background(), ListQuery{Sort: "luckiness"})
	require.ErrorIs(t, err, domain.ErrInvalidMode)
}

func TestScratcherListScoreOrder(t *testing.T) {
	svc, _ := newScratcherFixture(nil)

	games, err := svc.List(context.Background(), ListQuery{Sort: engine.SortByScore})
	require.NoError(t, err)
	require.Len(t, games, 3)

	ranked, err := svc.Ranked(context.Background())
	require.NoError(t, err)
	for i := range ranked {
		assert.Equal(t, ranked[i].Game.GameNumber, games[i].GameNumber)
	}
}

func TestScratcherRankedCaches(t *testing.T) {
	cache := &memRankingCache{}
	svc, store := newScratcherFixture(cache)
	ctx := context.Background()

	first, err := svc.Ranked(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, store.calls)

	// Scores strictly descend (ties would be broken by game number).
	for i := 1; i < len(first); i++ {
		assert.GreaterOrEqual(t, first[i-1].Score, first[i].Score)
	}

	second, err := svc.Ranked(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, store.calls, "second call should hit the cache")
	assert.Equal(t, first, second)

	require.NoError(t, svc.Invalidate(ctx))
	_, err = svc.Ranked(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, store.calls)
}

func TestScratcherListQueryFilter(t *testing.T) {
	svc, _ := newScratcherFixture(nil)

	games, err := svc.List(context.Background(), ListQuery{Query: "cashword"})
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, 1540, games[0].GameNumber)

	games, err = svc.List(context.Background(), ListQuery{Lifecycle: domain.LifecycleNew})
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, 1612, games[0].GameNumber)
}
