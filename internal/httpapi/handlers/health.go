package handlers

import (
	"net/http"

	"github.com/cideldill/cideldill/internal/cidstore"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	store *cidstore.Store
}

// NewHealthHandler returns a handler bound to store.
func NewHealthHandler(store *cidstore.Store) *HealthHandler {
	return &HealthHandler{store: store}
}

// Live handles GET /health: the process is up and serving requests.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready handles GET /health/ready: the CID store is reachable.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Healthcheck(r.Context()); err != nil {
		WriteError(w, http.StatusServiceUnavailable, "not_ready", err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
