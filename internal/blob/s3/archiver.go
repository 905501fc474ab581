package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/lottolens/lottolens/internal/domain"
)

// Archiver serializes aged draw rows to JSONL and uploads them to cold
// storage. Deletion of the archived rows from the primary store is a
// separate, explicit step executed only after the upload succeeded.
type Archiver struct {
	writer domain.BlobWriter
	draws  domain.DrawStore
	audit  domain.AuditStore
	logger *slog.Logger
}

// NewArchiver creates an Archiver over the given writer and stores.
func NewArchiver(writer domain.BlobWriter, draws domain.DrawStore, audit domain.AuditStore, logger *slog.Logger) *Archiver {
	return &Archiver{
		writer: writer,
		draws:  draws,
		audit:  audit,
		logger: logger.With(slog.String("component", "archiver")),
	}
}

type archivedDraw struct {
	Game    string `json:"game"`
	Date    string `json:"date"`
	Mains   []int  `json:"mains"`
	Special int    `json:"special,omitempty"`
}

// ArchiveDraws uploads all rows of game dated before the cutoff as one
// JSONL object and then deletes them from the primary store. A game with
// nothing to archive is a no-op.
func (a *Archiver) ArchiveDraws(ctx context.Context, game domain.GameID, before time.Time) error {
	rows, err := a.draws.ListBefore(ctx, game, before)
	if err != nil {
		return fmt.Errorf("archiver: list draws for %s: %w", game, err)
	}
	if len(rows) == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, r := range rows {
		rec := archivedDraw{
			Game:    string(game),
			Date:    r.Date.Format("2006-01-02"),
			Mains:   r.Mains,
			Special: r.Special,
		}
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("archiver: encode draw row: %w", err)
		}
	}

	key := fmt.Sprintf("draws/%s/%s.jsonl", game, before.Format("2006-01-02"))
	if err := a.writer.Write(ctx, key, "application/x-ndjson", buf.Bytes()); err != nil {
		return fmt.Errorf("archiver: upload %s: %w", key, err)
	}

	deleted, err := a.draws.DeleteBefore(ctx, game, before)
	if err != nil {
		return fmt.Errorf("archiver: delete archived draws for %s: %w", game, err)
	}

	a.logger.InfoContext(ctx, "archived draw rows",
		slog.String("game", string(game)),
		slog.String("key", key),
		slog.Int("rows", len(rows)),
		slog.Int64("deleted", deleted),
	)
	if a.audit != nil {
		_ = a.audit.Log(ctx, "draws_archived", map[string]any{
			"game": string(game), "key": key, "rows": len(rows),
		})
	}
	return nil
}
