package handlers

import (
	"net/http"
	"time"

	"github.com/cideldill/cideldill/internal/breakpoint"
)

// ComErrorsHandler serves the debuggee-side transport-failure reporting
// endpoint described in spec.md §4.I: a debuggee whose proxy could not
// reach the control plane (or got a malformed response) self-reports here
// once connectivity is restored, so an operator can correlate a gap in a
// process's call history with a transport outage rather than silence.
type ComErrorsHandler struct {
	manager *breakpoint.Manager
}

// NewComErrorsHandler returns a handler bound to manager.
func NewComErrorsHandler(manager *breakpoint.Manager) *ComErrorsHandler {
	return &ComErrorsHandler{manager: manager}
}

type reportComErrorRequest struct {
	Message   string `json:"message"`
	ProcessID int    `json:"process_id,omitempty"`
}

// Report handles POST /api/report-com-error.
func (h *ComErrorsHandler) Report(w http.ResponseWriter, r *http.Request) {
	var req reportComErrorRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	h.manager.RecordComError(breakpoint.ComError{
		Timestamp: time.Now().UTC(),
		Message:   req.Message,
		ProcessID: req.ProcessID,
	})
	WriteJSON(w, http.StatusAccepted, map[string]bool{"recorded": true})
}

// List handles GET /api/com-errors.
func (h *ComErrorsHandler) List(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{"com_errors": h.manager.ComErrors()})
}
