package domain

import (
	"context"
	"time"
)

// ListOpts provides pagination for list queries.
type ListOpts struct {
	Limit  int
	Offset int
}

// DrawStore persists historical draw records, one row per drawing.
type DrawStore interface {
	UpsertBatch(ctx context.Context, game GameID, rows []DrawRecord) error
	// ListSince returns rows for game dated on/after since, ascending by
	// date. A zero since returns the full history.
	ListSince(ctx context.Context, game GameID, since time.Time) ([]DrawRecord, error)
	LastDrawDate(ctx context.Context, game GameID) (time.Time, error)
	// ListBefore returns rows dated strictly before the cutoff, for
	// archival.
	ListBefore(ctx context.Context, game GameID, before time.Time) ([]DrawRecord, error)
	DeleteBefore(ctx context.Context, game GameID, before time.Time) (int64, error)
	Count(ctx context.Context, game GameID) (int64, error)
}

// ScratcherStore persists scratch-off game snapshots.
type ScratcherStore interface {
	UpsertBatch(ctx context.Context, games []ScratcherGame) error
	List(ctx context.Context) ([]ScratcherGame, error)
	GetByNumber(ctx context.Context, gameNumber int) (ScratcherGame, error)
	// MarkRetired flags games absent from the latest index so they stop
	// appearing in listings. Returns the number of games retired.
	MarkRetired(ctx context.Context, activeNumbers []int) (int64, error)
}

// AuditStore persists an append-only log of ingest and admin events.
type AuditStore interface {
	Log(ctx context.Context, event string, detail map[string]any) error
}
