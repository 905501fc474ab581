package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lottolens/lottolens/internal/domain"
)

// ScratcherStore implements domain.ScratcherStore using PostgreSQL.
type ScratcherStore struct {
	pool *pgxpool.Pool
}

// NewScratcherStore creates a ScratcherStore backed by the given pool.
func NewScratcherStore(pool *pgxpool.Pool) *ScratcherStore {
	return &ScratcherStore{pool: pool}
}

// UpsertBatch inserts or refreshes a batch of snapshots. A game reappearing
// in the index is un-retired.
func (s *ScratcherStore) UpsertBatch(ctx context.Context, games []domain.ScratcherGame) error {
	if len(games) == 0 {
		return nil
	}

	const query = `
		INSERT INTO scratchers (
			game_number, name, price, top_prize_value,
			top_prizes_original, top_prizes_remaining,
			overall_odds, adjusted_odds, start_date, lifecycle,
			retired, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, FALSE, NOW())
		ON CONFLICT (game_number) DO UPDATE SET
			name                 = EXCLUDED.name,
			price                = EXCLUDED.price,
			top_prize_value      = EXCLUDED.top_prize_value,
			top_prizes_original  = EXCLUDED.top_prizes_original,
			top_prizes_remaining = EXCLUDED.top_prizes_remaining,
			overall_odds         = EXCLUDED.overall_odds,
			adjusted_odds        = EXCLUDED.adjusted_odds,
			start_date           = EXCLUDED.start_date,
			lifecycle            = EXCLUDED.lifecycle,
			retired              = FALSE,
			updated_at           = NOW()`

	batch := &pgx.Batch{}
	for _, g := range games {
		batch.Queue(query,
			g.GameNumber, g.Name, g.Price, g.TopPrizeValue,
			g.TopPrizesOriginal, g.TopPrizesRemaining,
			g.OverallOdds, g.AdjustedOdds, g.StartDate, string(g.Lifecycle),
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()
	for range games {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("postgres: upsert scratchers: %w", err)
		}
	}
	return nil
}

// List returns all non-retired snapshots, ascending by game number.
func (s *ScratcherStore) List(ctx context.Context) ([]domain.ScratcherGame, error) {
	const query = `
		SELECT game_number, name, price, top_prize_value,
		       top_prizes_original, top_prizes_remaining,
		       overall_odds, adjusted_odds, start_date, lifecycle, updated_at
		FROM scratchers
		WHERE NOT retired
		ORDER BY game_number ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres: list scratchers: %w", err)
	}
	defer rows.Close()

	var out []domain.ScratcherGame
	for rows.Next() {
		g, err := scanScratcher(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate scratchers: %w", err)
	}
	return out, nil
}

// GetByNumber returns one snapshot or domain.ErrNotFound.
func (s *ScratcherStore) GetByNumber(ctx context.Context, gameNumber int) (domain.ScratcherGame, error) {
	const query = `
		SELECT game_number, name, price, top_prize_value,
		       top_prizes_original, top_prizes_remaining,
		       overall_odds, adjusted_odds, start_date, lifecycle, updated_at
		FROM scratchers
		WHERE game_number = $1`

	row := s.pool.QueryRow(ctx, query, gameNumber)
	g, err := scanScratcher(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ScratcherGame{}, domain.ErrNotFound
		}
		return domain.ScratcherGame{}, fmt.Errorf("postgres: get scratcher %d: %w", gameNumber, err)
	}
	return g, nil
}

// MarkRetired flags every game absent from activeNumbers as retired and
// returns how many were flagged.
func (s *ScratcherStore) MarkRetired(ctx context.Context, activeNumbers []int) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE scratchers SET retired = TRUE, updated_at = NOW()
		 WHERE NOT retired AND NOT (game_number = ANY($1))`,
		activeNumbers,
	)
	if err != nil {
		return 0, fmt.Errorf("postgres: mark retired scratchers: %w", err)
	}
	return tag.RowsAffected(), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScratcher(row rowScanner) (domain.ScratcherGame, error) {
	var g domain.ScratcherGame
	var lifecycle string
	err := row.Scan(
		&g.GameNumber, &g.Name, &g.Price, &g.TopPrizeValue,
		&g.TopPrizesOriginal, &g.TopPrizesRemaining,
		&g.OverallOdds, &g.AdjustedOdds, &g.StartDate, &lifecycle, &g.UpdatedAt,
	)
	if err != nil {
		return domain.ScratcherGame{}, err
	}
	g.Lifecycle = domain.ScratcherLifecycle(lifecycle)
	return g, nil
}
