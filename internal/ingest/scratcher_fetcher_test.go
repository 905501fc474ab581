package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lottolens/lottolens/internal/domain"
)

func TestParseOdds(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"1 in 3.52", 3.52},
		{"1 IN 4", 4},
		{"1 in 2,984.00", 2984},
		{"3.52", 3.52},
		{"", 0},
		{"n/a", 0},
		{"1 in -5", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseOdds(tt.in), "input %q", tt.in)
	}
}

// fakeScratcherStore records the reconciliation calls.
type fakeScratcherStore struct {
	domain.ScratcherStore
	upserted []domain.ScratcherGame
	active   []int
	retired  int64
}

func (s *fakeScratcherStore) UpsertBatch(ctx context.Context, games []domain.ScratcherGame) error {
	s.upserted = append(s.upserted, games...)
	return nil
}

func (s *fakeScratcherStore) MarkRetired(ctx context.Context, activeNumbers []int) (int64, error) {
	s.active = activeNumbers
	return s.retired, nil
}

const scratcherIndexJSON = `[
  {
    "gameNumber": 1612,
    "name": "Win $1,000 A Week For Life",
    "price": 2,
    "topPrizeValue": 1000000,
    "topPrizesOriginal": 10,
    "topPrizesRemaining": 4,
    "overallOdds": "1 in 4.20",
    "adjustedOdds": "1 in 4.85",
    "startDate": "2025-03-10",
    "lifecycle": "NEW"
  },
  {
    "gameNumber": 1540,
    "name": "Cashword Bonus",
    "price": 5,
    "topPrizeValue": 75000,
    "topPrizesOriginal": 20,
    "topPrizesRemaining": 11,
    "overallOdds": "1 in 3.61",
    "adjustedOdds": "",
    "startDate": "2024-06-01",
    "lifecycle": "continuing"
  },
  {
    "gameNumber": 0,
    "name": "broken entry",
    "price": 1
  }
]`

func TestScratcherFetcherReconciles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(scratcherIndexJSON))
	}))
	defer srv.Close()

	store := &fakeScratcherStore{retired: 2}
	f := NewScratcherFetcher(srv.Client(), srv.URL, store, testLogger())
	fixed := time.Date(2025, 9, 27, 12, 0, 0, 0, time.UTC)
	f.now = func() time.Time { return fixed }

	n, err := f.Fetch(context.Background())
	require.NoError(t, err)

	// The broken entry is skipped; the two valid games are upserted and
	// listed as active for retirement reconciliation.
	assert.Equal(t, 2, n)
	require.Len(t, store.upserted, 2)
	assert.Equal(t, []int{1612, 1540}, store.active)

	first := store.upserted[0]
	assert.Equal(t, 1612, first.GameNumber)
	assert.Equal(t, "Win $1,000 A Week For Life", first.Name)
	assert.Equal(t, domain.LifecycleNew, first.Lifecycle)
	assert.Equal(t, 4.20, first.OverallOdds)
	assert.Equal(t, 4.85, first.AdjustedOdds)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), first.StartDate)
	assert.Equal(t, fixed, first.UpdatedAt)

	second := store.upserted[1]
	assert.Equal(t, domain.LifecycleContinuing, second.Lifecycle)
	assert.Zero(t, second.AdjustedOdds)
}

func TestScratcherFetcherEmptyIndexFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	store := &fakeScratcherStore{}
	f := NewScratcherFetcher(srv.Client(), srv.URL, store, testLogger())

	_, err := f.Fetch(context.Background())
	require.Error(t, err)
	assert.Empty(t, store.upserted)
	assert.Nil(t, store.active)
}

func TestScratcherFetcherUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := NewScratcherFetcher(srv.Client(), srv.URL, &fakeScratcherStore{}, testLogger())

	_, err := f.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
}
