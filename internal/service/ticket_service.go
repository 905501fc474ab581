package service

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/lottolens/lottolens/internal/domain"
	"github.com/lottolens/lottolens/internal/engine"
	"github.com/lottolens/lottolens/internal/worker"
)

// TicketRequest is one generation call. Zero-value Mode and nil Alpha mean
// "use the recommendation" for both number classes; an explicit Mode or
// Alpha overrides both classes at once.
type TicketRequest struct {
	Game        domain.GameID
	Count       int
	Mode        domain.SampleMode
	Alpha       *float64
	AvoidCommon bool
}

// TicketService produces quick-pick tickets from the analysis-recommended
// (or caller-overridden) weighting.
type TicketService struct {
	analysis *AnalysisService
	bridge   *worker.Bridge
	logger   *slog.Logger

	maxPerCall        int
	attemptsPerTicket int
	newRand           func() *rand.Rand
}

// NewTicketService creates a TicketService. maxPerCall caps Count;
// attemptsPerTicket scales the distinct-N retry budget.
func NewTicketService(analysis *AnalysisService, bridge *worker.Bridge, maxPerCall, attemptsPerTicket int, logger *slog.Logger) *TicketService {
	if maxPerCall <= 0 {
		maxPerCall = 25
	}
	if attemptsPerTicket <= 0 {
		attemptsPerTicket = engine.DefaultAttemptsPerTicket
	}
	return &TicketService{
		analysis:          analysis,
		bridge:            bridge,
		logger:            logger.With(slog.String("component", "ticket_service")),
		maxPerCall:        maxPerCall,
		attemptsPerTicket: attemptsPerTicket,
		newRand:           seededRand,
	}
}

// Generate produces up to req.Count distinct tickets. Fewer than requested
// is not an error: the distinct budget can run out on small domains or
// under the common-pattern filter. An invalid mode or alpha is rejected.
func (s *TicketService) Generate(ctx context.Context, req TicketRequest) ([]domain.GeneratedTicket, error) {
	if req.Mode != "" && !req.Mode.Valid() {
		return nil, fmt.Errorf("ticket_service: mode %q: %w", req.Mode, domain.ErrInvalidMode)
	}
	if req.Alpha != nil && (*req.Alpha < 0 || *req.Alpha > 1) {
		return nil, fmt.Errorf("ticket_service: alpha %v out of [0,1]: %w", *req.Alpha, domain.ErrInvalidMode)
	}

	count := req.Count
	if count <= 0 {
		count = 1
	}
	if count > s.maxPerCall {
		count = s.maxPerCall
	}

	analysis, err := s.analysis.Analyze(ctx, req.Game)
	if err != nil {
		return nil, err
	}

	opts := engine.TicketOptions{
		MainMode:     analysis.MainRec.Mode,
		SpecialMode:  analysis.SpecialRec.Mode,
		MainAlpha:    analysis.MainRec.Alpha,
		SpecialAlpha: analysis.SpecialRec.Alpha,
		// Position-drawn digit games have no "too common" shape to avoid,
		// and keno-size picks flag nearly every draw, so avoidance only
		// applies where the filter is satisfiable.
		AvoidCommon: req.AvoidCommon && !analysis.Era.Replacement &&
			analysis.Era.MainPick <= engine.AvoidCommonMaxPick,
	}
	if req.Mode != "" {
		opts.MainMode = req.Mode
		opts.SpecialMode = req.Mode
	}
	if req.Alpha != nil {
		opts.MainAlpha = *req.Alpha
		opts.SpecialAlpha = *req.Alpha
	}

	rng := s.newRand()
	budget := count * s.attemptsPerTicket
	tickets, err := offload(ctx, s.bridge, func() []domain.GeneratedTicket {
		return engine.GenerateTickets(rng, analysis.Stats, analysis.Era, opts, count, budget)
	})
	if err != nil {
		return nil, fmt.Errorf("ticket_service: generate for %s: %w", req.Game, err)
	}

	if len(tickets) < count {
		s.logger.InfoContext(ctx, "distinct budget exhausted",
			slog.String("game", string(req.Game)),
			slog.Int("requested", count),
			slog.Int("produced", len(tickets)),
		)
	}
	return tickets, nil
}

// seededRand builds a PCG source seeded from the OS entropy pool. Engine
// sampling needs speed and independence per call, not crypto strength.
func seededRand() *rand.Rand {
	var buf [16]byte
	if _, err := crand.Read(buf[:]); err != nil {
		// The entropy pool failing is effectively fatal elsewhere; a
		// constant seed here only affects pick variety.
		return rand.New(rand.NewPCG(1, 2))
	}
	return rand.New(rand.NewPCG(
		binary.LittleEndian.Uint64(buf[0:8]),
		binary.LittleEndian.Uint64(buf[8:16]),
	))
}
