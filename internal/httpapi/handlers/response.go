// Package handlers implements the per-resource HTTP handlers for
// Component F, one file per resource group as in the teacher's
// pkg/controlplane/api/handlers layout.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cideldill/cideldill/internal/breakpoint"
	"github.com/cideldill/cideldill/internal/cidstore"
	"github.com/cideldill/cideldill/internal/logger"
)

// errorBody is the wire shape for a failed request: spec.md §6/§7 name
// discriminants directly rather than the RFC 7807 problem+json shape the
// teacher uses, so the response here is {"error": "...", ...} instead.
type errorBody struct {
	Error       string   `json:"error"`
	MissingCIDs []string `json:"missing_cids,omitempty"`
	Detail      string   `json:"detail,omitempty"`
}

// WriteJSON writes data as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			logger.Error("failed to encode JSON response", "error", err)
		}
	}
}

// WriteError writes discriminant as the body's "error" field at status.
func WriteError(w http.ResponseWriter, status int, discriminant, detail string) {
	WriteJSON(w, status, errorBody{Error: discriminant, Detail: detail})
}

// WriteCIDNotFound writes the 400 cid_not_found response the protocol
// uses to ask a client to retransmit inline data for the listed CIDs.
func WriteCIDNotFound(w http.ResponseWriter, missing []string) {
	WriteJSON(w, http.StatusBadRequest, errorBody{Error: "cid_not_found", MissingCIDs: missing})
}

// WriteDomainError maps a sentinel error from cidstore or breakpoint to
// the wire discriminant and status code spec.md §7 assigns it. Unmapped
// errors become a 500 with a generic discriminant.
func WriteDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cidstore.ErrCIDNotFound):
		WriteError(w, http.StatusBadRequest, "cid_not_found", err.Error())
	case errors.Is(err, cidstore.ErrCIDMismatch):
		WriteError(w, http.StatusBadRequest, "cid_mismatch", err.Error())
	case errors.Is(err, breakpoint.ErrBreakpointNotFound):
		WriteError(w, http.StatusNotFound, "breakpoint_not_found", err.Error())
	case errors.Is(err, breakpoint.ErrSignatureMismatch):
		WriteError(w, http.StatusBadRequest, "signature_mismatch", err.Error())
	case errors.Is(err, breakpoint.ErrPauseNotFound):
		WriteError(w, http.StatusNotFound, "pause_not_found", err.Error())
	case errors.Is(err, breakpoint.ErrPauseAlreadyResumed):
		WriteError(w, http.StatusConflict, "pause_already_resumed", err.Error())
	case errors.Is(err, breakpoint.ErrInvalidBehavior):
		WriteError(w, http.StatusBadRequest, "invalid_behavior", err.Error())
	case errors.Is(err, breakpoint.ErrCallNotFound):
		WriteError(w, http.StatusNotFound, "call_not_found", err.Error())
	default:
		logger.Error("unmapped domain error", "error", err)
		WriteError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

// DecodeJSON decodes the request body into dst, writing a 400 malformed
// response and returning false on failure.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteError(w, http.StatusBadRequest, "malformed_request", err.Error())
		return false
	}
	return true
}
