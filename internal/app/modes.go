package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	s3blob "github.com/lottolens/lottolens/internal/blob/s3"
	"github.com/lottolens/lottolens/internal/engine"
	"github.com/lottolens/lottolens/internal/ingest"
	"github.com/lottolens/lottolens/internal/server"
	"github.com/lottolens/lottolens/internal/server/handler"
	"github.com/lottolens/lottolens/internal/server/ws"
	"github.com/lottolens/lottolens/internal/service"
	"github.com/lottolens/lottolens/internal/worker"
)

// defaultDrawPaths maps game ids to their open-data CSV export paths, used
// when the configuration does not override them.
var defaultDrawPaths = map[string]string{
	"powerball":    "d6yy-54nr/rows.csv",
	"megamillions": "5xaw-6ayf/rows.csv",
	"cash4life":    "kwxv-fwze/rows.csv",
	"nylotto":      "6nbc-h7bj/rows.csv",
	"take5":        "dg63-4siq/rows.csv",
	"pick10":       "bycu-cw7c/rows.csv",
	"quickdraw":    "7sqk-ycpk/rows.csv",
	"numbers":      "hsys-3def/rows.csv",
	"win4":         "44nn-hy2j/rows.csv",
}

// services bundles the API-facing service layer.
type services struct {
	analysis   *service.AnalysisService
	tickets    *service.TicketService
	scratchers *service.ScratcherService
}

// ServeMode runs the worker bridge and the HTTP/WebSocket API without the
// ingest pipeline.
func (a *App) ServeMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting serve mode")

	g, ctx := errgroup.WithContext(ctx)

	bridge := a.startBridge(ctx, g)
	svcs := a.buildServices(deps, bridge)
	a.startHTTPServer(ctx, g, deps, svcs, nil)

	return g.Wait()
}

// IngestMode runs the ingest pipeline without the API: fetch loops,
// archival, event publication.
func (a *App) IngestMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting ingest mode")

	orch := a.buildOrchestrator(deps)
	return orch.Run(ctx)
}

// FullMode runs everything: worker bridge, ingest pipeline, cache
// invalidation on ingest events, and the HTTP/WebSocket API with the manual
// ingest trigger wired through.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting full mode")

	g, ctx := errgroup.WithContext(ctx)

	bridge := a.startBridge(ctx, g)
	svcs := a.buildServices(deps, bridge)

	orch := a.buildOrchestrator(deps)
	g.Go(func() error {
		err := orch.Run(ctx)
		if ctx.Err() != nil {
			return nil
		}
		return err
	})

	g.Go(func() error {
		a.invalidateOnIngest(ctx, deps, svcs)
		return nil
	})

	a.startHTTPServer(ctx, g, deps, svcs, orch.Trigger())

	return g.Wait()
}

// startBridge launches the worker pool under the errgroup and returns the
// bridge.
func (a *App) startBridge(ctx context.Context, g *errgroup.Group) *worker.Bridge {
	bridge := worker.New(a.cfg.Engine.WorkerQueueDepth, a.logger)
	g.Go(func() error {
		err := bridge.Run(ctx, a.cfg.Engine.WorkerPoolSize)
		if ctx.Err() != nil {
			return nil
		}
		return err
	})
	return bridge
}

func (a *App) buildServices(deps *Dependencies, bridge *worker.Bridge) *services {
	analysis := service.NewAnalysisService(
		deps.DrawStore, deps.Rules, deps.AnalysisCache, deps.EventBus, bridge, a.logger,
	)
	tickets := service.NewTicketService(
		analysis, bridge,
		a.cfg.Engine.MaxTicketsPerCall, a.cfg.Engine.AttemptsPerTicket,
		a.logger,
	)
	scratchers := service.NewScratcherService(
		deps.ScratcherStore, deps.RankingCache, bridge,
		engine.ScoreWeights{
			Jackpot: a.cfg.Engine.ScoreJackpot,
			Prizes:  a.cfg.Engine.ScorePrizes,
			Odds:    a.cfg.Engine.ScoreOdds,
			Price:   a.cfg.Engine.ScorePrice,
		},
		a.logger,
	)
	return &services{analysis: analysis, tickets: tickets, scratchers: scratchers}
}

func (a *App) buildOrchestrator(deps *Dependencies) *ingest.Orchestrator {
	httpClient := &http.Client{Timeout: a.cfg.Ingest.RequestTimeout.Duration}

	paths := a.cfg.Ingest.DrawPaths
	if len(paths) == 0 {
		paths = defaultDrawPaths
	}
	drawFetcher := ingest.NewDrawFetcher(
		httpClient, a.cfg.Ingest.DrawBaseURL, paths, deps.DrawStore, a.logger,
	)

	var scratcherFetcher *ingest.ScratcherFetcher
	if !a.cfg.Ingest.DisableScratcher && a.cfg.Ingest.ScratcherURL != "" {
		scratcherFetcher = ingest.NewScratcherFetcher(
			httpClient, a.cfg.Ingest.ScratcherURL, deps.ScratcherStore, a.logger,
		)
	}

	var archiver ingest.DrawArchiver
	if deps.BlobWriter != nil {
		archiver = s3blob.NewArchiver(deps.BlobWriter, deps.DrawStore, deps.AuditStore, a.logger)
	}

	return ingest.NewOrchestrator(
		drawFetcher, scratcherFetcher, archiver, deps.EventBus, deps.Rules.Games(),
		ingest.OrchestratorConfig{
			FetchInterval:   a.cfg.Ingest.FetchInterval.Duration,
			ArchiveInterval: a.cfg.Ingest.ArchiveInterval.Duration,
			RetentionYears:  a.cfg.Ingest.RetentionYears,
		},
		a.logger,
	)
}

// invalidateOnIngest drops the affected caches whenever the pipeline
// publishes a refresh, so the next read recomputes against fresh rows.
func (a *App) invalidateOnIngest(ctx context.Context, deps *Dependencies, svcs *services) {
	msgs, err := deps.EventBus.Subscribe(ctx, "draws", "scratchers")
	if err != nil {
		a.logger.ErrorContext(ctx, "ingest event subscribe failed", slog.String("error", err.Error()))
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			switch msg.Channel {
			case "draws":
				for _, game := range deps.Rules.Games() {
					if err := svcs.analysis.Invalidate(ctx, game); err != nil {
						a.logger.WarnContext(ctx, "analysis invalidation failed",
							slog.String("game", string(game)),
							slog.String("error", err.Error()),
						)
					}
				}
			case "scratchers":
				if err := svcs.scratchers.Invalidate(ctx); err != nil {
					a.logger.WarnContext(ctx, "ranking invalidation failed",
						slog.String("error", err.Error()))
				}
			}
		}
	}
}

// startHTTPServer builds the handler set, attaches the WebSocket hub, and
// runs the server under the errgroup with graceful shutdown on ctx
// cancellation. trigger may be nil when no ingest pipeline is running.
func (a *App) startHTTPServer(ctx context.Context, g *errgroup.Group, deps *Dependencies, svcs *services, trigger chan<- struct{}) {
	ingestHandler := handler.NewIngestHandler(a.logger)
	if trigger != nil {
		ingestHandler = ingestHandler.WithTriggerChannel(trigger)
	}

	handlers := server.Handlers{
		Health:     handler.NewHealthHandler(a.logger),
		Status:     handler.NewStatusHandler(a.cfg.Mode, deps.Rules.Games(), time.Now().UTC()),
		Games:      handler.NewGameHandler(svcs.analysis, svcs.tickets, deps.Rules, a.logger),
		Scratchers: handler.NewScratcherHandler(svcs.scratchers, a.logger),
		Ingest:     ingestHandler,
	}

	var hub *ws.Hub
	if a.cfg.Server.EnableWS {
		hub = ws.NewHub(deps.EventBus, a.logger)
		g.Go(func() error {
			err := hub.Run(ctx)
			if ctx.Err() != nil {
				return nil
			}
			return err
		})
	}

	srv := server.New(server.Config{
		Port:         a.cfg.Server.Port,
		CORSOrigins:  a.cfg.Server.CORSOrigins,
		APIKey:       a.cfg.Server.APIKey,
		RateLimit:    a.cfg.Server.RateLimit,
		RateWindow:   a.cfg.Server.RateWindow.Duration,
		ReadTimeout:  a.cfg.Server.ReadTimeout.Duration,
		WriteTimeout: a.cfg.Server.WriteTimeout.Duration,
	}, handlers, hub, deps.RateLimiter, a.logger)

	g.Go(func() error {
		if err := srv.Start(); err != nil && ctx.Err() == nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			a.logger.Warn("server shutdown error", slog.String("error", err.Error()))
		}
		return nil
	})
}
