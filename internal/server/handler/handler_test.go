package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lottolens/lottolens/internal/domain"
	"github.com/lottolens/lottolens/internal/engine"
	"github.com/lottolens/lottolens/internal/rules"
	"github.com/lottolens/lottolens/internal/service"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// stubDrawStore serves a fixed history for every game.
type stubDrawStore struct {
	domain.DrawStore
	rows []domain.DrawRecord
}

func (s *stubDrawStore) ListSince(ctx context.Context, game domain.GameID, since time.Time) ([]domain.DrawRecord, error) {
	return s.rows, nil
}

// stubScratcherStore serves a fixed snapshot list.
type stubScratcherStore struct {
	domain.ScratcherStore
	games []domain.ScratcherGame
}

func (s *stubScratcherStore) List(ctx context.Context) ([]domain.ScratcherGame, error) {
	return s.games, nil
}

func (s *stubScratcherStore) GetByNumber(ctx context.Context, n int) (domain.ScratcherGame, error) {
	for _, g := range s.games {
		if g.GameNumber == n {
			return g, nil
		}
	}
	return domain.ScratcherGame{}, domain.ErrNotFound
}

func fixtureRows() []domain.DrawRecord {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := make([]domain.DrawRecord, 30)
	for i := range rows {
		rows[i] = domain.DrawRecord{
			Date:  base.AddDate(0, 0, i),
			Mains: []int{1 + i%39, 2 + i%37, 3 + i%31, 4 + i%29, 5 + i%23},
		}
	}
	return rows
}

func newTestMux(t *testing.T) *http.ServeMux {
	t.Helper()
	table := rules.Default()
	analysis := service.NewAnalysisService(&stubDrawStore{rows: fixtureRows()}, table, nil, nil, nil, testLogger())
	tickets := service.NewTicketService(analysis, nil, 25, 50, testLogger())
	scratchers := service.NewScratcherService(&stubScratcherStore{games: []domain.ScratcherGame{
		{GameNumber: 1612, Name: "Big Money", Price: 10, TopPrizeValue: 1_000_000,
			TopPrizesOriginal: 10, TopPrizesRemaining: 5, OverallOdds: 3.2, AdjustedOdds: 3.5,
			Lifecycle: domain.LifecycleNew},
		{GameNumber: 1540, Name: "Lucky 7s", Price: 1, TopPrizeValue: 7_000,
			TopPrizesOriginal: 40, TopPrizesRemaining: 30, OverallOdds: 4.5, AdjustedOdds: 4.4,
			Lifecycle: domain.LifecycleContinuing},
	}}, nil, nil, engine.DefaultScoreWeights(), testLogger())

	games := NewGameHandler(analysis, tickets, table, testLogger())
	scratcherH := NewScratcherHandler(scratchers, testLogger())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", NewHealthHandler(testLogger()).HealthCheck)
	mux.HandleFunc("GET /api/status", NewStatusHandler("full", table.Games(), time.Now()).GetStatus)
	mux.HandleFunc("GET /api/games", games.ListGames)
	mux.HandleFunc("GET /api/games/{id}/analysis", games.GetAnalysis)
	mux.HandleFunc("GET /api/games/{id}/tickets", games.GenerateTickets)
	mux.HandleFunc("GET /api/scratchers", scratcherH.ListScratchers)
	mux.HandleFunc("GET /api/scratchers/ranked", scratcherH.ListRanked)
	mux.HandleFunc("GET /api/scratchers/{number}", scratcherH.GetScratcher)
	mux.HandleFunc("POST /api/ingest/trigger", NewIngestHandler(testLogger()).TriggerIngest)
	return mux
}

func doGET(t *testing.T, mux *http.ServeMux, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	var body map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestHealthEndpoint(t *testing.T) {
	rec, body := doGET(t, newTestMux(t), "/api/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestStatusEndpoint(t *testing.T) {
	rec, body := doGET(t, newTestMux(t), "/api/status")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "full", body["mode"])
	assert.NotEmpty(t, body["games"])
}

func TestListGamesEndpoint(t *testing.T) {
	rec, body := doGET(t, newTestMux(t), "/api/games")
	assert.Equal(t, http.StatusOK, rec.Code)

	games, ok := body["games"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, games)
	first := games[0].(map[string]any)
	assert.NotEmpty(t, first["id"])
	assert.NotEmpty(t, first["era"])
}

func TestAnalysisEndpoint(t *testing.T) {
	rec, body := doGET(t, newTestMux(t), "/api/games/take5/analysis")
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "take5", body["game"])
	assert.EqualValues(t, 30, body["draws"])
	rec2 := body["main_recommendation"].(map[string]any)
	assert.Contains(t, []string{"hot", "cold"}, rec2["mode"])
}

func TestAnalysisUnknownGameReturns404(t *testing.T) {
	rec, body := doGET(t, newTestMux(t), "/api/games/euromillions/analysis")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotEmpty(t, body["error"])
}

func TestTicketsEndpoint(t *testing.T) {
	rec, body := doGET(t, newTestMux(t), "/api/games/take5/tickets?count=3&mode=hot&alpha=0.4")
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.EqualValues(t, 3, body["count"])
	tickets := body["tickets"].([]any)
	require.Len(t, tickets, 3)
	mains := tickets[0].(map[string]any)["mains"].([]any)
	assert.Len(t, mains, 5)
}

func TestTicketsRejectsBadMode(t *testing.T) {
	rec, _ := doGET(t, newTestMux(t), "/api/games/take5/tickets?mode=lukewarm")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTicketsRejectsBadAlpha(t *testing.T) {
	rec, _ := doGET(t, newTestMux(t), "/api/games/take5/tickets?alpha=banana")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = doGET(t, newTestMux(t), "/api/games/take5/tickets?alpha=1.5")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScratchersEndpointFilters(t *testing.T) {
	rec, body := doGET(t, newTestMux(t), "/api/scratchers?min_price=5")
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.EqualValues(t, 1, body["count"])
	list := body["scratchers"].([]any)
	first := list[0].(map[string]any)
	assert.EqualValues(t, 1612, first["game_number"])
	assert.Equal(t, 0.5, first["top_prize_ratio"])
}

func TestScratchersRejectsBadSortKey(t *testing.T) {
	rec, _ := doGET(t, newTestMux(t), "/api/scratchers?sort=luckiness")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRankedEndpoint(t *testing.T) {
	rec, body := doGET(t, newTestMux(t), "/api/scratchers/ranked")
	assert.Equal(t, http.StatusOK, rec.Code)

	list := body["scratchers"].([]any)
	require.Len(t, list, 2)
	first := list[0].(map[string]any)
	second := list[1].(map[string]any)
	assert.GreaterOrEqual(t, first["score"].(float64), second["score"].(float64))
	assert.Contains(t, first, "parts")
}

func TestGetScratcherByNumber(t *testing.T) {
	rec, body := doGET(t, newTestMux(t), "/api/scratchers/1540")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Lucky 7s", body["name"])

	rec, _ = doGET(t, newTestMux(t), "/api/scratchers/9999")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestIngestTrigger(t *testing.T) {
	trigger := make(chan struct{}, 1)
	h := NewIngestHandler(testLogger()).WithTriggerChannel(trigger)

	req := httptest.NewRequest(http.MethodPost, "/api/ingest/trigger", nil)
	rec := httptest.NewRecorder()
	h.TriggerIngest(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	select {
	case <-trigger:
	default:
		t.Fatal("trigger channel did not receive")
	}
}

func TestIngestTriggerWithoutPipeline(t *testing.T) {
	h := NewIngestHandler(testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/ingest/trigger", nil)
	rec := httptest.NewRecorder()
	h.TriggerIngest(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}
