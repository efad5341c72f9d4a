package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cideldill/cideldill/internal/breakpoint"
	"github.com/cideldill/cideldill/internal/telemetry"
	"github.com/cideldill/cideldill/pkg/metrics"
)

// PausedHandler serves the operator-facing view of paused executions and
// the long-poll / resume endpoints of the Pause Scheduler.
type PausedHandler struct {
	manager *breakpoint.Manager
}

// NewPausedHandler returns a handler bound to manager.
func NewPausedHandler(manager *breakpoint.Manager) *PausedHandler {
	return &PausedHandler{manager: manager}
}

// List handles GET /api/paused.
func (h *PausedHandler) List(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{"paused": h.manager.GetPausedExecutions()})
}

// Poll handles GET /api/poll/{pause_id}: the debuggee-side poll loop. The
// server never blocks here — it answers immediately with whatever resume
// action is on file, or none, and the proxy client is responsible for the
// interval/timeout-driven retry loop described in spec.md §5. The resume
// action is keyed independently of the paused set: ResumeExecution clears
// pause_id from paused the moment it records a resume action, so checking
// GetPausedExecution first would race every successful resume into a
// pause_not_found. An unknown pause_id (never existed, or already
// consumed by call/complete) is not an error either — it returns
// "waiting" per spec.md §5 ("the server rejects polls for unknown
// pause_ids with waiting, not an error").
func (h *PausedHandler) Poll(w http.ResponseWriter, r *http.Request) {
	pauseID := chi.URLParam(r, "pause_id")
	metrics.RecordPoll()

	_, span := telemetry.StartPauseSpan(r.Context(), telemetry.SpanPausePoll, pauseID)
	defer span.End()

	if action, ok := h.manager.PeekResumeAction(pauseID); ok {
		WriteJSON(w, http.StatusOK, map[string]any{"status": "ready", "action": action})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"status": "waiting"})
}

// Continue handles POST /api/paused/{pause_id}/continue: an operator
// supplies a ResumeAction to end the pause. Repeating the call after the
// pause has already been cleared returns pause_already_resumed.
func (h *PausedHandler) Continue(w http.ResponseWriter, r *http.Request) {
	pauseID := chi.URLParam(r, "pause_id")

	var action breakpoint.ResumeAction
	if !DecodeJSON(w, r, &action) {
		return
	}

	_, span := telemetry.StartPauseSpan(r.Context(), telemetry.SpanPauseContinue, pauseID, telemetry.Action(string(action.Action)))
	defer span.End()

	if err := h.manager.ResumeExecution(pauseID, action); err != nil {
		WriteDomainError(w, err)
		return
	}
	metrics.RecordResumeAction(string(action.Action))
	metrics.SetActivePauses(len(h.manager.GetPausedExecutions()))
	WriteJSON(w, http.StatusOK, map[string]bool{"resumed": true})
}
