package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/lottolens/lottolens/internal/domain"
)

// ScratcherFetcher downloads the scratch-off index and reconciles the
// scratcher store against it: present games are upserted, vanished games
// are marked retired.
type ScratcherFetcher struct {
	client *http.Client
	url    string
	store  domain.ScratcherStore
	logger *slog.Logger
	now    func() time.Time
}

// NewScratcherFetcher creates a ScratcherFetcher for the given index URL.
func NewScratcherFetcher(client *http.Client, url string, store domain.ScratcherStore, logger *slog.Logger) *ScratcherFetcher {
	return &ScratcherFetcher{
		client: client,
		url:    url,
		store:  store,
		logger: logger.With(slog.String("component", "scratcher_fetcher")),
		now:    time.Now,
	}
}

// scratcherEntry mirrors one game in the published index JSON. Odds come as
// "1 in X" strings; dates as "2006-01-02".
type scratcherEntry struct {
	GameNumber         int     `json:"gameNumber"`
	Name               string  `json:"name"`
	Price              float64 `json:"price"`
	TopPrizeValue      float64 `json:"topPrizeValue"`
	TopPrizesOriginal  int     `json:"topPrizesOriginal"`
	TopPrizesRemaining int     `json:"topPrizesRemaining"`
	OverallOdds        string  `json:"overallOdds"`
	AdjustedOdds       string  `json:"adjustedOdds"`
	StartDate          string  `json:"startDate"`
	Lifecycle          string  `json:"lifecycle"`
}

// Fetch downloads the index, upserts every listed game, and retires the
// rest. It returns the number of games upserted.
func (f *ScratcherFetcher) Fetch(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return 0, fmt.Errorf("ingest: build scratcher request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("ingest: fetch scratcher index: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("ingest: fetch scratcher index: unexpected status %d", resp.StatusCode)
	}

	var entries []scratcherEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return 0, fmt.Errorf("ingest: decode scratcher index: %w", err)
	}

	now := f.now().UTC()
	games := make([]domain.ScratcherGame, 0, len(entries))
	active := make([]int, 0, len(entries))
	for _, e := range entries {
		game, err := e.toDomain(now)
		if err != nil {
			f.logger.WarnContext(ctx, "skipping malformed scratcher entry",
				slog.Int("game_number", e.GameNumber),
				slog.String("error", err.Error()),
			)
			continue
		}
		games = append(games, game)
		active = append(active, game.GameNumber)
	}
	if len(games) == 0 {
		return 0, fmt.Errorf("ingest: scratcher index yielded no usable games")
	}

	if err := f.store.UpsertBatch(ctx, games); err != nil {
		return 0, fmt.Errorf("ingest: upsert scratchers: %w", err)
	}

	retired, err := f.store.MarkRetired(ctx, active)
	if err != nil {
		return 0, fmt.Errorf("ingest: retire vanished scratchers: %w", err)
	}

	f.logger.InfoContext(ctx, "ingested scratcher index",
		slog.Int("games", len(games)),
		slog.Int64("retired", retired),
	)
	return len(games), nil
}

func (e scratcherEntry) toDomain(now time.Time) (domain.ScratcherGame, error) {
	if e.GameNumber <= 0 {
		return domain.ScratcherGame{}, fmt.Errorf("missing game number")
	}
	if strings.TrimSpace(e.Name) == "" {
		return domain.ScratcherGame{}, fmt.Errorf("missing name")
	}

	game := domain.ScratcherGame{
		GameNumber:         e.GameNumber,
		Name:               strings.TrimSpace(e.Name),
		Price:              e.Price,
		TopPrizeValue:      e.TopPrizeValue,
		TopPrizesOriginal:  e.TopPrizesOriginal,
		TopPrizesRemaining: e.TopPrizesRemaining,
		Lifecycle:          parseLifecycle(e.Lifecycle),
		UpdatedAt:          now,
	}

	// Odds and dates are best-effort: a game with an unparseable figure
	// keeps the zero value, which downstream scoring treats as "not
	// published".
	game.OverallOdds = ParseOdds(e.OverallOdds)
	game.AdjustedOdds = ParseOdds(e.AdjustedOdds)
	if e.StartDate != "" {
		if t, err := time.Parse("2006-01-02", e.StartDate); err == nil {
			game.StartDate = t
		}
	}
	return game, nil
}

func parseLifecycle(s string) domain.ScratcherLifecycle {
	if strings.EqualFold(strings.TrimSpace(s), string(domain.LifecycleNew)) {
		return domain.LifecycleNew
	}
	return domain.LifecycleContinuing
}

// ParseOdds extracts X from a published "1 in X" odds string. It also
// accepts a bare number. Anything else yields 0 (figure not published).
func ParseOdds(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	lower := strings.ToLower(s)
	if i := strings.Index(lower, "in"); i >= 0 {
		s = strings.TrimSpace(s[i+2:])
	}
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
