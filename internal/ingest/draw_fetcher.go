// Package ingest pulls draw histories and scratch-off snapshots from the
// jurisdiction's open-data endpoints and keeps the primary store current.
package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/lottolens/lottolens/internal/domain"
)

// DrawFetcher downloads per-game CSV draw histories and upserts them into
// the draw store. Fetches are incremental: rows at or before the store's
// last known draw date are skipped.
type DrawFetcher struct {
	client  *http.Client
	baseURL string
	paths   map[string]string // game id -> CSV path under baseURL
	store   domain.DrawStore
	logger  *slog.Logger
}

// NewDrawFetcher creates a DrawFetcher. paths maps game ids to their CSV
// export paths under baseURL.
func NewDrawFetcher(client *http.Client, baseURL string, paths map[string]string, store domain.DrawStore, logger *slog.Logger) *DrawFetcher {
	return &DrawFetcher{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		paths:   paths,
		store:   store,
		logger:  logger.With(slog.String("component", "draw_fetcher")),
	}
}

// FetchGame downloads and ingests the history for one game. It returns the
// number of new rows upserted.
func (f *DrawFetcher) FetchGame(ctx context.Context, game domain.GameID) (int, error) {
	path, ok := f.paths[string(game)]
	if !ok {
		return 0, fmt.Errorf("ingest: no draw path configured for %s: %w", game, domain.ErrUnknownGame)
	}

	since, err := f.store.LastDrawDate(ctx, game)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return 0, fmt.Errorf("ingest: last draw date for %s: %w", game, err)
	}

	url := f.baseURL + "/" + strings.TrimLeft(path, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("ingest: build request for %s: %w", game, err)
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("ingest: fetch draws for %s: %w", game, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("ingest: fetch draws for %s: unexpected status %d", game, resp.StatusCode)
	}

	rows, skipped, err := ParseDrawCSV(resp.Body, func(record []string, line int, parseErr error) {
		f.logger.WarnContext(ctx, "skipping malformed draw row",
			slog.String("game", string(game)),
			slog.Int("line", line),
			slog.String("error", parseErr.Error()),
		)
	})
	if err != nil {
		return 0, fmt.Errorf("ingest: parse draws for %s: %w", game, err)
	}

	fresh := rows[:0]
	for _, r := range rows {
		if !since.IsZero() && !r.Date.After(since) {
			continue
		}
		fresh = append(fresh, r)
	}
	if len(fresh) == 0 {
		f.logger.DebugContext(ctx, "no new draw rows", slog.String("game", string(game)))
		return 0, nil
	}

	if err := f.store.UpsertBatch(ctx, game, fresh); err != nil {
		return 0, fmt.Errorf("ingest: upsert draws for %s: %w", game, err)
	}

	f.logger.InfoContext(ctx, "ingested draw rows",
		slog.String("game", string(game)),
		slog.Int("rows", len(fresh)),
		slog.Int("skipped", skipped),
	)
	return len(fresh), nil
}

// FetchAll runs FetchGame for every configured game, continuing past
// per-game failures. It returns the first error encountered, if any.
func (f *DrawFetcher) FetchAll(ctx context.Context) error {
	var firstErr error
	for game := range f.paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := f.FetchGame(ctx, domain.GameID(game)); err != nil {
			f.logger.ErrorContext(ctx, "draw fetch failed",
				slog.String("game", game),
				slog.String("error", err.Error()),
			)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// MalformedRowFunc is called once per skipped CSV row.
type MalformedRowFunc func(record []string, line int, err error)

// ParseDrawCSV decodes the open-data CSV layout: a header row, then one row
// per drawing with the draw date in the first column and the winning
// numbers as a space-separated list in the second. A third numeric column,
// when present, is the separately drawn ball. Malformed rows are skipped
// and reported via onBad; they never fail the parse.
func ParseDrawCSV(r io.Reader, onBad MalformedRowFunc) ([]domain.DrawRecord, int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // layouts vary per game

	if _, err := cr.Read(); err != nil {
		return nil, 0, fmt.Errorf("read header: %w", err)
	}

	var (
		rows    []domain.DrawRecord
		skipped int
		line    = 1
	)
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			skipped++
			if onBad != nil {
				onBad(record, line, err)
			}
			continue
		}

		row, err := parseDrawRow(record)
		if err != nil {
			skipped++
			if onBad != nil {
				onBad(record, line, err)
			}
			continue
		}
		rows = append(rows, row)
	}
	return rows, skipped, nil
}

// drawDateLayouts are the date formats the open-data exports have used.
var drawDateLayouts = []string{"01/02/2006", "2006-01-02", "2006-01-02T15:04:05.000"}

func parseDrawRow(record []string) (domain.DrawRecord, error) {
	if len(record) < 2 {
		return domain.DrawRecord{}, fmt.Errorf("want at least 2 columns, got %d", len(record))
	}

	date, err := parseDrawDate(strings.TrimSpace(record[0]))
	if err != nil {
		return domain.DrawRecord{}, err
	}

	mains, err := parseNumberList(record[1])
	if err != nil {
		return domain.DrawRecord{}, err
	}
	if len(mains) == 0 {
		return domain.DrawRecord{}, fmt.Errorf("empty winning numbers")
	}

	row := domain.DrawRecord{Date: date, Mains: mains}
	if len(record) >= 3 {
		if s := strings.TrimSpace(record[2]); s != "" {
			special, err := strconv.Atoi(s)
			if err != nil {
				return domain.DrawRecord{}, fmt.Errorf("special ball %q: %w", s, err)
			}
			row.Special = special
		}
	}
	return row, nil
}

func parseDrawDate(s string) (time.Time, error) {
	for _, layout := range drawDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized draw date %q", s)
}

func parseNumberList(s string) ([]int, error) {
	fields := strings.Fields(s)
	nums := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("winning number %q: %w", f, err)
		}
		nums = append(nums, n)
	}
	return nums, nil
}
