package handlers

import (
	"net/http"

	"github.com/cideldill/cideldill/internal/breakpoint"
)

// FunctionsHandler serves the /api/functions registry endpoints.
type FunctionsHandler struct {
	manager *breakpoint.Manager
}

// NewFunctionsHandler returns a handler bound to manager.
func NewFunctionsHandler(manager *breakpoint.Manager) *FunctionsHandler {
	return &FunctionsHandler{manager: manager}
}

// List handles GET /api/functions.
func (h *FunctionsHandler) List(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{"functions": h.manager.RegisteredFunctions()})
}

type registerFunctionRequest struct {
	Name      string `json:"name"`
	Signature string `json:"signature,omitempty"`
}

// Register handles POST /api/functions.
func (h *FunctionsHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerFunctionRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		WriteError(w, http.StatusBadRequest, "invalid_request", "name is required")
		return
	}
	h.manager.RegisterFunction(req.Name, req.Signature)
	WriteJSON(w, http.StatusCreated, map[string]string{"name": req.Name})
}
