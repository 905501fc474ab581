package handler

import (
	"net/http"
	"time"

	"github.com/lottolens/lottolens/internal/domain"
)

// StatusHandler serves the backend status (mode, uptime, configured games).
type StatusHandler struct {
	mode      string
	games     []domain.GameID
	startedAt time.Time
}

// NewStatusHandler creates a StatusHandler for the given runtime mode and
// game set.
func NewStatusHandler(mode string, games []domain.GameID, startedAt time.Time) *StatusHandler {
	if startedAt.IsZero() {
		startedAt = time.Now().UTC()
	}
	return &StatusHandler{mode: mode, games: games, startedAt: startedAt}
}

// GetStatus responds with the runtime mode, uptime, and game ids.
// GET /api/status
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	uptime := int64(time.Since(h.startedAt).Seconds())
	if uptime < 0 {
		uptime = 0
	}
	ids := make([]string, len(h.games))
	for i, g := range h.games {
		ids[i] = string(g)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"mode":           h.mode,
		"uptime_seconds": uptime,
		"games":          ids,
	})
}
