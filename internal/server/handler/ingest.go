package handler

import (
	"log/slog"
	"net/http"
	"time"
)

// IngestHandler serves the manual ingest trigger endpoint.
type IngestHandler struct {
	logger    *slog.Logger
	triggerCh chan<- struct{} // when non-nil, sending runs one fetch pass
}

// NewIngestHandler creates an IngestHandler with the given logger.
func NewIngestHandler(logger *slog.Logger) *IngestHandler {
	return &IngestHandler{logger: logger}
}

// WithTriggerChannel sets the channel to send on when a trigger is
// requested. The ingest orchestrator must receive from this channel.
func (h *IngestHandler) WithTriggerChannel(ch chan<- struct{}) *IngestHandler {
	h.triggerCh = ch
	return h
}

// TriggerIngest enqueues one out-of-schedule fetch pass. The send is
// non-blocking: a pass already pending absorbs the request.
// POST /api/ingest/trigger
func (h *IngestHandler) TriggerIngest(w http.ResponseWriter, r *http.Request) {
	h.logger.InfoContext(r.Context(), "ingest trigger requested")

	if h.triggerCh == nil {
		writeError(w, http.StatusConflict, "ingest pipeline is not running in this mode")
		return
	}

	select {
	case h.triggerCh <- struct{}{}:
	default:
		// already triggered and not yet consumed
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"status":       "accepted",
		"requested_at": time.Now().UTC().Format(time.RFC3339),
	})
}
