package apiclient

import "fmt"

// APIError represents an error response from cideldilld, matching the
// {"error": discriminant, "detail": ...} wire shape from
// internal/httpapi/handlers.
type APIError struct {
	Discriminant string   `json:"error"`
	MissingCIDs  []string `json:"missing_cids,omitempty"`
	Detail       string   `json:"detail,omitempty"`
	StatusCode   int      `json:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Discriminant, e.Detail)
	}
	return e.Discriminant
}

// IsNotFound returns true for the *_not_found discriminants.
func (e *APIError) IsNotFound() bool {
	switch e.Discriminant {
	case "breakpoint_not_found", "pause_not_found", "call_not_found", "cid_not_found":
		return true
	default:
		return false
	}
}

// IsConflict returns true if this is a conflict error (e.g. a pause
// that was already resumed).
func (e *APIError) IsConflict() bool {
	return e.Discriminant == "pause_already_resumed"
}
