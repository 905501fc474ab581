package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lottolens/lottolens/internal/domain"
)

// DrawStore implements domain.DrawStore using PostgreSQL. One row per
// drawing, keyed on (game, draw_date); re-ingesting a history is an upsert.
type DrawStore struct {
	pool *pgxpool.Pool
}

// NewDrawStore creates a DrawStore backed by the given connection pool.
func NewDrawStore(pool *pgxpool.Pool) *DrawStore {
	return &DrawStore{pool: pool}
}

// UpsertBatch inserts or refreshes a batch of draw rows for one game.
func (s *DrawStore) UpsertBatch(ctx context.Context, game domain.GameID, rows []domain.DrawRecord) error {
	if len(rows) == 0 {
		return nil
	}

	const query = `
		INSERT INTO draws (game, draw_date, mains, special)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (game, draw_date) DO UPDATE SET
			mains   = EXCLUDED.mains,
			special = EXCLUDED.special`

	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(query, string(game), r.Date, r.Mains, r.Special)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()
	for range rows {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("postgres: upsert draws for %s: %w", game, err)
		}
	}
	return nil
}

// ListSince returns rows for game dated on/after since, ascending by date.
func (s *DrawStore) ListSince(ctx context.Context, game domain.GameID, since time.Time) ([]domain.DrawRecord, error) {
	const query = `
		SELECT draw_date, mains, special
		FROM draws
		WHERE game = $1 AND draw_date >= $2
		ORDER BY draw_date ASC`

	rows, err := s.pool.Query(ctx, query, string(game), since)
	if err != nil {
		return nil, fmt.Errorf("postgres: list draws for %s: %w", game, err)
	}
	defer rows.Close()

	var out []domain.DrawRecord
	for rows.Next() {
		var r domain.DrawRecord
		if err := rows.Scan(&r.Date, &r.Mains, &r.Special); err != nil {
			return nil, fmt.Errorf("postgres: scan draw row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate draws for %s: %w", game, err)
	}
	return out, nil
}

// LastDrawDate returns the most recent drawing date stored for game, or
// domain.ErrNotFound when no rows exist yet.
func (s *DrawStore) LastDrawDate(ctx context.Context, game domain.GameID) (time.Time, error) {
	const query = `SELECT MAX(draw_date) FROM draws WHERE game = $1`

	var last *time.Time
	if err := s.pool.QueryRow(ctx, query, string(game)).Scan(&last); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, domain.ErrNotFound
		}
		return time.Time{}, fmt.Errorf("postgres: last draw date for %s: %w", game, err)
	}
	if last == nil {
		return time.Time{}, domain.ErrNotFound
	}
	return *last, nil
}

// ListBefore returns rows dated strictly before the cutoff, for archival.
func (s *DrawStore) ListBefore(ctx context.Context, game domain.GameID, before time.Time) ([]domain.DrawRecord, error) {
	const query = `
		SELECT draw_date, mains, special
		FROM draws
		WHERE game = $1 AND draw_date < $2
		ORDER BY draw_date ASC`

	rows, err := s.pool.Query(ctx, query, string(game), before)
	if err != nil {
		return nil, fmt.Errorf("postgres: list draws before cutoff for %s: %w", game, err)
	}
	defer rows.Close()

	var out []domain.DrawRecord
	for rows.Next() {
		var r domain.DrawRecord
		if err := rows.Scan(&r.Date, &r.Mains, &r.Special); err != nil {
			return nil, fmt.Errorf("postgres: scan draw row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate archival draws for %s: %w", game, err)
	}
	return out, nil
}

// DeleteBefore removes rows dated strictly before the cutoff and reports
// how many were deleted. Callers run it only after the archive upload has
// been verified.
func (s *DrawStore) DeleteBefore(ctx context.Context, game domain.GameID, before time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM draws WHERE game = $1 AND draw_date < $2`,
		string(game), before,
	)
	if err != nil {
		return 0, fmt.Errorf("postgres: delete draws before cutoff for %s: %w", game, err)
	}
	return tag.RowsAffected(), nil
}

// Count returns the number of stored rows for game.
func (s *DrawStore) Count(ctx context.Context, game domain.GameID) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM draws WHERE game = $1`, string(game),
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: count draws for %s: %w", game, err)
	}
	return n, nil
}
