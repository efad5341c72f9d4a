package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cideldill/cideldill/internal/breakpoint"
)

// BreakpointsHandler groups the /api/breakpoints* and /api/behavior
// endpoints.
type BreakpointsHandler struct {
	manager *breakpoint.Manager
}

// NewBreakpointsHandler returns a handler bound to manager.
func NewBreakpointsHandler(manager *breakpoint.Manager) *BreakpointsHandler {
	return &BreakpointsHandler{manager: manager}
}

type breakpointsListResponse struct {
	Breakpoints     []string                     `json:"breakpoints"`
	Behaviors       map[string]breakpoint.Behavior `json:"behaviors"`
	AfterBehaviors  map[string]breakpoint.Behavior `json:"after_behaviors"`
	Replacements    map[string]string               `json:"replacements"`
}

// List handles GET /api/breakpoints.
func (h *BreakpointsHandler) List(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, breakpointsListResponse{
		Breakpoints:    h.manager.Breakpoints(),
		Behaviors:      h.manager.BreakpointBehaviors(),
		AfterBehaviors: h.manager.AfterBreakpointBehaviors(),
		Replacements:   h.manager.BreakpointReplacements(),
	})
}

type addBreakpointRequest struct {
	FunctionName string              `json:"function_name"`
	Behavior     breakpoint.Behavior `json:"behavior,omitempty"`
	Signature    string              `json:"signature,omitempty"`
}

// Add handles POST /api/breakpoints.
func (h *BreakpointsHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req addBreakpointRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.FunctionName == "" {
		WriteError(w, http.StatusBadRequest, "invalid_request", "function_name is required")
		return
	}
	if req.Signature != "" {
		h.manager.RegisterFunction(req.FunctionName, req.Signature)
	}
	h.manager.AddBreakpoint(req.FunctionName, req.Behavior)
	WriteJSON(w, http.StatusCreated, map[string]string{"function_name": req.FunctionName})
}

// Remove handles DELETE /api/breakpoints/{name}.
func (h *BreakpointsHandler) Remove(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	h.manager.RemoveBreakpoint(name)
	WriteJSON(w, http.StatusOK, map[string]bool{"removed": true})
}

type behaviorRequest struct {
	Behavior breakpoint.Behavior `json:"behavior"`
}

// SetBehavior handles POST /api/breakpoints/{name}/behavior.
func (h *BreakpointsHandler) SetBehavior(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var req behaviorRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := h.manager.SetBreakpointBehavior(name, req.Behavior); err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"function_name": name, "behavior": string(req.Behavior)})
}

// SetAfterBehavior handles POST /api/breakpoints/{name}/after_behavior.
func (h *BreakpointsHandler) SetAfterBehavior(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var req behaviorRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := h.manager.SetAfterBreakpointBehavior(name, req.Behavior); err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"function_name": name, "after_behavior": string(req.Behavior)})
}

type replacementRequest struct {
	ReplacementFunction string `json:"replacement_function"`
}

// SetReplacement handles POST /api/breakpoints/{name}/replacement.
//
// Signature validation happens here rather than in the Manager: the
// server-side function registry (advisory signatures reported at
// registration time) is the only place that knows both signatures, so
// the handler checks them before calling in, matching the split between
// the debuggee-local registry (internal/registry) and this advisory one.
func (h *BreakpointsHandler) SetReplacement(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var req replacementRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	if req.ReplacementFunction != "" && req.ReplacementFunction != name {
		sigA, okA := h.manager.FunctionSignature(name)
		sigB, okB := h.manager.FunctionSignature(req.ReplacementFunction)
		if !okA || !okB || sigA != sigB {
			WriteDomainError(w, breakpoint.ErrSignatureMismatch)
			return
		}
	}

	if err := h.manager.SetBreakpointReplacement(name, req.ReplacementFunction); err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"function_name": name, "replacement_function": req.ReplacementFunction})
}

// History handles GET /api/breakpoints/{name}/history?limit=N.
func (h *BreakpointsHandler) History(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	WriteJSON(w, http.StatusOK, map[string]any{"history": h.manager.History(name, limit)})
}

// GetDefaultBehavior handles GET /api/behavior.
func (h *BreakpointsHandler) GetDefaultBehavior(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]breakpoint.Behavior{"default_behavior": h.manager.DefaultBehavior()})
}

// SetDefaultBehavior handles POST /api/behavior.
func (h *BreakpointsHandler) SetDefaultBehavior(w http.ResponseWriter, r *http.Request) {
	var req behaviorRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := h.manager.SetDefaultBehavior(req.Behavior); err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]breakpoint.Behavior{"default_behavior": req.Behavior})
}
