package ingest

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lottolens/lottolens/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestParseDrawCSV(t *testing.T) {
	input := strings.Join([]string{
		"Draw Date,Winning Numbers,Mega Ball",
		"09/26/2025,08 14 23 41 60,12",
		"09/23/2025,03 19 27 33 51,07",
	}, "\n")

	rows, skipped, err := ParseDrawCSV(strings.NewReader(input), nil)
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, rows, 2)

	assert.Equal(t, time.Date(2025, 9, 26, 0, 0, 0, 0, time.UTC), rows[0].Date)
	assert.Equal(t, []int{8, 14, 23, 41, 60}, rows[0].Mains)
	assert.Equal(t, 12, rows[0].Special)
	assert.Equal(t, 7, rows[1].Special)
}

func TestParseDrawCSVNoSpecialColumn(t *testing.T) {
	input := "Draw Date,Winning Numbers\n2025-09-26,05 11 17 24 31\n"

	rows, skipped, err := ParseDrawCSV(strings.NewReader(input), nil)
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, rows, 1)
	assert.Equal(t, []int{5, 11, 17, 24, 31}, rows[0].Mains)
	assert.Zero(t, rows[0].Special)
}

func TestParseDrawCSVSkipsMalformedRows(t *testing.T) {
	input := strings.Join([]string{
		"Draw Date,Winning Numbers,Special",
		"09/26/2025,08 14 23 41 60,12",
		"not-a-date,08 14 23 41 60,12",
		"09/23/2025,08 14 XX 41 60,12",
		"09/20/2025,,",
		"09/19/2025,01 02 03 04 05,09",
	}, "\n")

	var reported int
	rows, skipped, err := ParseDrawCSV(strings.NewReader(input), func(record []string, line int, err error) {
		reported++
		assert.Error(t, err)
		assert.Greater(t, line, 1)
	})
	require.NoError(t, err)

	assert.Equal(t, 3, skipped)
	assert.Equal(t, 3, reported)
	require.Len(t, rows, 2)
	assert.Equal(t, []int{8, 14, 23, 41, 60}, rows[0].Mains)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, rows[1].Mains)
}

func TestParseDrawCSVEmptySpecialField(t *testing.T) {
	input := "Draw Date,Winning Numbers,Bonus\n09/26/2025,01 02 03,\n"

	rows, skipped, err := ParseDrawCSV(strings.NewReader(input), nil)
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, rows, 1)
	assert.Zero(t, rows[0].Special)
}

// fakeDrawStore records upserts and serves a fixed last-draw date.
type fakeDrawStore struct {
	domain.DrawStore
	last     time.Time
	lastErr  error
	upserted []domain.DrawRecord
	game     domain.GameID
}

func (s *fakeDrawStore) LastDrawDate(ctx context.Context, game domain.GameID) (time.Time, error) {
	return s.last, s.lastErr
}

func (s *fakeDrawStore) UpsertBatch(ctx context.Context, game domain.GameID, rows []domain.DrawRecord) error {
	s.game = game
	s.upserted = append(s.upserted, rows...)
	return nil
}

func TestDrawFetcherIncremental(t *testing.T) {
	csvBody := strings.Join([]string{
		"Draw Date,Winning Numbers,Powerball",
		"09/26/2025,08 14 23 41 60,12",
		"09/23/2025,03 19 27 33 51,07",
		"09/20/2025,01 02 03 04 05,09",
	}, "\n")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/d6yy-54nr/rows.csv", r.URL.Path)
		_, _ = w.Write([]byte(csvBody))
	}))
	defer srv.Close()

	store := &fakeDrawStore{last: time.Date(2025, 9, 23, 0, 0, 0, 0, time.UTC)}
	f := NewDrawFetcher(srv.Client(), srv.URL,
		map[string]string{"powerball": "d6yy-54nr/rows.csv"},
		store, testLogger())

	n, err := f.FetchGame(context.Background(), domain.GamePowerball)
	require.NoError(t, err)

	// Only the row dated after the store's last draw date is upserted.
	assert.Equal(t, 1, n)
	require.Len(t, store.upserted, 1)
	assert.Equal(t, domain.GamePowerball, store.game)
	assert.Equal(t, []int{8, 14, 23, 41, 60}, store.upserted[0].Mains)
}

func TestDrawFetcherEmptyStoreIngestsAll(t *testing.T) {
	csvBody := "Draw Date,Winning Numbers\n09/26/2025,05 11 17 24 31\n09/23/2025,02 09 16 28 35\n"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(csvBody))
	}))
	defer srv.Close()

	store := &fakeDrawStore{lastErr: domain.ErrNotFound}
	f := NewDrawFetcher(srv.Client(), srv.URL,
		map[string]string{"take5": "dg63-4siq/rows.csv"},
		store, testLogger())

	n, err := f.FetchGame(context.Background(), domain.GameTake5)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, store.upserted, 2)
}

func TestDrawFetcherUnknownGame(t *testing.T) {
	f := NewDrawFetcher(http.DefaultClient, "http://example.invalid", nil, &fakeDrawStore{}, testLogger())

	_, err := f.FetchGame(context.Background(), domain.GamePowerball)
	require.ErrorIs(t, err, domain.ErrUnknownGame)
}

func TestDrawFetcherUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	store := &fakeDrawStore{lastErr: domain.ErrNotFound}
	f := NewDrawFetcher(srv.Client(), srv.URL,
		map[string]string{"take5": "dg63-4siq/rows.csv"},
		store, testLogger())

	_, err := f.FetchGame(context.Background(), domain.GameTake5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
	assert.Empty(t, store.upserted)
}
