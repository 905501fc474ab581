package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/lottolens/lottolens/internal/domain"
	"github.com/lottolens/lottolens/internal/rules"
	"github.com/lottolens/lottolens/internal/service"
)

// GameHandler serves the draw-game endpoints: listing, analysis, and ticket
// generation.
type GameHandler struct {
	analysis *service.AnalysisService
	tickets  *service.TicketService
	rules    *rules.Table
	logger   *slog.Logger
}

// NewGameHandler creates a GameHandler.
func NewGameHandler(analysis *service.AnalysisService, tickets *service.TicketService, table *rules.Table, logger *slog.Logger) *GameHandler {
	return &GameHandler{analysis: analysis, tickets: tickets, rules: table, logger: logger}
}

type gameInfo struct {
	ID           string `json:"id"`
	Era          string `json:"era"`
	EraStart     string `json:"era_start"`
	MainMin      int    `json:"main_min"`
	MainMax      int    `json:"main_max"`
	MainPick     int    `json:"main_pick"`
	SpecialMax   int    `json:"special_max,omitempty"`
	SpecialLabel string `json:"special_label,omitempty"`
	Replacement  bool   `json:"replacement,omitempty"`
}

// ListGames responds with every configured game and its current-era rules.
// GET /api/games
func (h *GameHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	games := h.rules.Games()
	out := make([]gameInfo, 0, len(games))
	for _, g := range games {
		era := h.rules.ConfigFor(g, now)
		out = append(out, gameInfo{
			ID:           string(g),
			Era:          era.Label,
			EraStart:     era.Start.Format("2006-01-02"),
			MainMin:      era.MainMin,
			MainMax:      era.MainMax,
			MainPick:     era.MainPick,
			SpecialMax:   era.SpecialMax,
			SpecialLabel: era.SpecialLabel,
			Replacement:  era.Replacement,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"games": out})
}

type recommendationDTO struct {
	Mode  string  `json:"mode"`
	Alpha float64 `json:"alpha"`
}

type analysisResponse struct {
	Game          string            `json:"game"`
	Era           string            `json:"era"`
	Draws         int               `json:"draws"`
	MainCounts    map[string]int    `json:"main_counts"`
	SpecialCounts map[string]int    `json:"special_counts,omitempty"`
	MainCV        float64           `json:"main_cv"`
	SpecialCV     float64           `json:"special_cv,omitempty"`
	MainRec       recommendationDTO `json:"main_recommendation"`
	SpecialRec    recommendationDTO `json:"special_recommendation,omitempty"`
	GeneratedAt   string            `json:"generated_at"`
}

// GetAnalysis responds with the frequency analysis and weighting
// recommendations for one game.
// GET /api/games/{id}/analysis
func (h *GameHandler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	game := domain.GameID(r.PathValue("id"))

	a, err := h.analysis.Analyze(r.Context(), game)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := analysisResponse{
		Game:        string(a.Game),
		Era:         a.Era.Label,
		Draws:       a.Stats.Draws,
		MainCounts:  countsDTO(a.Stats.MainCounts),
		MainCV:      a.Stats.MainCV,
		MainRec:     recommendationDTO{Mode: string(a.MainRec.Mode), Alpha: a.MainRec.Alpha},
		GeneratedAt: a.GeneratedAt.UTC().Format(time.RFC3339),
	}
	if a.Era.HasSpecial() {
		resp.SpecialCounts = countsDTO(a.Stats.SpecialCounts)
		resp.SpecialCV = a.Stats.SpecialCV
		resp.SpecialRec = recommendationDTO{Mode: string(a.SpecialRec.Mode), Alpha: a.SpecialRec.Alpha}
	}
	writeJSON(w, http.StatusOK, resp)
}

type ticketDTO struct {
	Mains   []int `json:"mains"`
	Special int   `json:"special,omitempty"`
}

// GenerateTickets produces quick-pick tickets for one game.
// GET /api/games/{id}/tickets?count=&mode=&alpha=&avoid=
func (h *GameHandler) GenerateTickets(w http.ResponseWriter, r *http.Request) {
	req := service.TicketRequest{
		Game:        domain.GameID(r.PathValue("id")),
		Count:       queryInt(r, "count", 1),
		Mode:        domain.SampleMode(r.URL.Query().Get("mode")),
		AvoidCommon: queryBool(r, "avoid"),
	}
	if v := r.URL.Query().Get("alpha"); v != "" {
		alpha, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "alpha must be a number in [0,1]")
			return
		}
		req.Alpha = &alpha
	}

	tickets, err := h.tickets.Generate(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]ticketDTO, len(tickets))
	for i, t := range tickets {
		out[i] = ticketDTO{Mains: t.Mains, Special: t.Special}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"game":    string(req.Game),
		"count":   len(out),
		"tickets": out,
	})
}

func countsDTO(counts map[int]int) map[string]int {
	out := make(map[string]int, len(counts))
	for k, v := range counts {
		out[strconv.Itoa(k)] = v
	}
	return out
}
