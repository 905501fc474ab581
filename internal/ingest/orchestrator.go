package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lottolens/lottolens/internal/domain"
)

// DrawArchiver moves aged draw rows to cold storage.
type DrawArchiver interface {
	ArchiveDraws(ctx context.Context, game domain.GameID, before time.Time) error
}

// Orchestrator manages the ingest goroutines: draw fetching, scratcher
// fetching, and cold-storage archival, each on its own ticker.
type Orchestrator struct {
	draws      *DrawFetcher
	scratchers *ScratcherFetcher
	archiver   DrawArchiver
	bus        domain.EventBus
	games      []domain.GameID

	fetchInterval   time.Duration
	archiveInterval time.Duration
	retention       time.Duration
	trigger         chan struct{}

	logger *slog.Logger
}

// OrchestratorConfig bundles the knobs for NewOrchestrator.
type OrchestratorConfig struct {
	FetchInterval   time.Duration
	ArchiveInterval time.Duration
	RetentionYears  int
}

// NewOrchestrator creates an Orchestrator. scratchers, archiver, and bus
// may be nil to disable the corresponding work.
func NewOrchestrator(
	draws *DrawFetcher,
	scratchers *ScratcherFetcher,
	archiver DrawArchiver,
	bus domain.EventBus,
	games []domain.GameID,
	cfg OrchestratorConfig,
	logger *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		draws:           draws,
		scratchers:      scratchers,
		archiver:        archiver,
		bus:             bus,
		games:           games,
		fetchInterval:   cfg.FetchInterval,
		archiveInterval: cfg.ArchiveInterval,
		retention:       time.Duration(cfg.RetentionYears) * 365 * 24 * time.Hour,
		trigger:         make(chan struct{}, 1),
		logger:          logger.With(slog.String("component", "orchestrator")),
	}
}

// Trigger returns the channel a non-blocking send on which runs one fetch
// pass out of schedule. Wired to the ingest trigger endpoint.
func (o *Orchestrator) Trigger() chan<- struct{} { return o.trigger }

// Run starts the ingest loops under an errgroup and blocks until ctx is
// cancelled or a loop fails with a non-context error.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.logger.InfoContext(ctx, "ingest orchestrator starting",
		slog.Duration("fetch_interval", o.fetchInterval),
		slog.Duration("archive_interval", o.archiveInterval),
	)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := o.runLoop(ctx, o.fetchInterval, "draw fetch", o.fetchDraws)
		if ctx.Err() != nil {
			return nil // clean shutdown
		}
		return fmt.Errorf("draw fetch loop: %w", err)
	})

	if o.scratchers != nil {
		g.Go(func() error {
			err := o.runLoop(ctx, o.fetchInterval, "scratcher fetch", o.fetchScratchers)
			if ctx.Err() != nil {
				return nil // clean shutdown
			}
			return fmt.Errorf("scratcher fetch loop: %w", err)
		})
	}

	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-o.trigger:
				o.logger.InfoContext(ctx, "manual fetch pass triggered")
				if err := o.fetchDraws(ctx); err != nil && ctx.Err() == nil {
					o.logger.ErrorContext(ctx, "triggered draw fetch failed", slog.String("error", err.Error()))
				}
				if o.scratchers != nil {
					if err := o.fetchScratchers(ctx); err != nil && ctx.Err() == nil {
						o.logger.ErrorContext(ctx, "triggered scratcher fetch failed", slog.String("error", err.Error()))
					}
				}
			}
		}
	})

	if o.archiver != nil && o.retention > 0 {
		g.Go(func() error {
			err := o.runLoop(ctx, o.archiveInterval, "archival", o.archive)
			if ctx.Err() != nil {
				return nil // clean shutdown
			}
			return fmt.Errorf("archival loop: %w", err)
		})
	}

	if err := g.Wait(); err != nil {
		o.logger.ErrorContext(ctx, "ingest orchestrator stopped with error",
			slog.String("error", err.Error()))
		return err
	}
	o.logger.InfoContext(ctx, "ingest orchestrator stopped cleanly")
	return nil
}

// runLoop runs pass immediately, then on every tick until ctx is cancelled.
// Pass failures are logged and do not stop the loop.
func (o *Orchestrator) runLoop(ctx context.Context, interval time.Duration, name string, pass func(context.Context) error) error {
	if err := pass(ctx); err != nil && ctx.Err() == nil {
		o.logger.ErrorContext(ctx, name+" pass failed", slog.String("error", err.Error()))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			o.logger.InfoContext(ctx, name+" loop stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := pass(ctx); err != nil && ctx.Err() == nil {
				o.logger.ErrorContext(ctx, name+" pass failed", slog.String("error", err.Error()))
			}
		}
	}
}

func (o *Orchestrator) fetchDraws(ctx context.Context) error {
	if err := o.draws.FetchAll(ctx); err != nil {
		return err
	}
	o.publish(ctx, "draws", map[string]any{"kind": "draws_updated", "at": time.Now().UTC()})
	return nil
}

func (o *Orchestrator) fetchScratchers(ctx context.Context) error {
	n, err := o.scratchers.Fetch(ctx)
	if err != nil {
		return err
	}
	o.publish(ctx, "scratchers", map[string]any{"kind": "scratchers_updated", "games": n, "at": time.Now().UTC()})
	return nil
}

func (o *Orchestrator) archive(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-o.retention)
	var firstErr error
	for _, game := range o.games {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := o.archiver.ArchiveDraws(ctx, game, cutoff); err != nil {
			o.logger.ErrorContext(ctx, "archive pass failed for game",
				slog.String("game", string(game)),
				slog.String("error", err.Error()),
			)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (o *Orchestrator) publish(ctx context.Context, channel string, payload any) {
	if o.bus == nil {
		return
	}
	if err := o.bus.Publish(ctx, channel, payload); err != nil {
		o.logger.WarnContext(ctx, "event publish failed",
			slog.String("channel", channel),
			slog.String("error", err.Error()),
		)
	}
}
