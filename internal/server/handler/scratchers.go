package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/lottolens/lottolens/internal/domain"
	"github.com/lottolens/lottolens/internal/engine"
	"github.com/lottolens/lottolens/internal/service"
)

// ScratcherHandler serves the scratch-off listing and ranking endpoints.
type ScratcherHandler struct {
	svc    *service.ScratcherService
	logger *slog.Logger
}

// NewScratcherHandler creates a ScratcherHandler.
func NewScratcherHandler(svc *service.ScratcherService, logger *slog.Logger) *ScratcherHandler {
	return &ScratcherHandler{svc: svc, logger: logger}
}

type scratcherDTO struct {
	GameNumber         int     `json:"game_number"`
	Name               string  `json:"name"`
	Price              float64 `json:"price"`
	TopPrizeValue      float64 `json:"top_prize_value"`
	TopPrizesOriginal  int     `json:"top_prizes_original"`
	TopPrizesRemaining int     `json:"top_prizes_remaining"`
	TopPrizeRatio      float64 `json:"top_prize_ratio"`
	OverallOdds        float64 `json:"overall_odds,omitempty"`
	AdjustedOdds       float64 `json:"adjusted_odds,omitempty"`
	StartDate          string  `json:"start_date,omitempty"`
	Lifecycle          string  `json:"lifecycle"`
}

type scorePartsDTO struct {
	Jackpot float64 `json:"jackpot"`
	Prizes  float64 `json:"prizes"`
	Odds    float64 `json:"odds"`
	Price   float64 `json:"price"`
}

type rankedDTO struct {
	scratcherDTO
	Score float64       `json:"score"`
	Parts scorePartsDTO `json:"parts"`
}

// ListScratchers responds with the active snapshots matching the query
// filters, in the requested order.
// GET /api/scratchers?min_price=&max_price=&q=&lifecycle=&min_prizes=&min_prize_ratio=&sort=
func (h *ScratcherHandler) ListScratchers(w http.ResponseWriter, r *http.Request) {
	q := service.ListQuery{
		MinPrice:      queryFloat(r, "min_price", 0),
		MaxPrice:      queryFloat(r, "max_price", 0),
		Query:         r.URL.Query().Get("q"),
		Lifecycle:     domain.ScratcherLifecycle(r.URL.Query().Get("lifecycle")),
		MinPrizes:     queryInt(r, "min_prizes", 0),
		MinPrizeRatio: queryFloat(r, "min_prize_ratio", 0),
		Sort:          engine.SortKey(r.URL.Query().Get("sort")),
	}

	games, err := h.svc.List(r.Context(), q)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]scratcherDTO, len(games))
	for i, g := range games {
		out[i] = toScratcherDTO(g)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":      len(out),
		"scratchers": out,
	})
}

// ListRanked responds with every active snapshot scored and ordered
// best-first, parts included.
// GET /api/scratchers/ranked
func (h *ScratcherHandler) ListRanked(w http.ResponseWriter, r *http.Request) {
	ranked, err := h.svc.Ranked(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]rankedDTO, len(ranked))
	for i, rs := range ranked {
		out[i] = rankedDTO{
			scratcherDTO: toScratcherDTO(rs.Game),
			Score:        rs.Score,
			Parts: scorePartsDTO{
				Jackpot: rs.Parts.Jackpot,
				Prizes:  rs.Parts.Prizes,
				Odds:    rs.Parts.Odds,
				Price:   rs.Parts.Price,
			},
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":      len(out),
		"scratchers": out,
	})
}

// GetScratcher responds with one snapshot by game number.
// GET /api/scratchers/{number}
func (h *ScratcherHandler) GetScratcher(w http.ResponseWriter, r *http.Request) {
	number := queryPathInt(r, "number")
	if number <= 0 {
		writeError(w, http.StatusBadRequest, "game number must be a positive integer")
		return
	}

	g, err := h.svc.Get(r.Context(), number)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toScratcherDTO(g))
}

func toScratcherDTO(g domain.ScratcherGame) scratcherDTO {
	dto := scratcherDTO{
		GameNumber:         g.GameNumber,
		Name:               g.Name,
		Price:              g.Price,
		TopPrizeValue:      g.TopPrizeValue,
		TopPrizesOriginal:  g.TopPrizesOriginal,
		TopPrizesRemaining: g.TopPrizesRemaining,
		TopPrizeRatio:      g.TopPrizeRatio(),
		OverallOdds:        g.OverallOdds,
		AdjustedOdds:       g.AdjustedOdds,
		Lifecycle:          string(g.Lifecycle),
	}
	if !g.StartDate.IsZero() {
		dto.StartDate = g.StartDate.Format(time.DateOnly)
	}
	return dto
}
