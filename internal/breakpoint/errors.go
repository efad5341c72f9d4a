package breakpoint

import "errors"

// Sentinel errors the HTTP control plane maps to the wire discriminants
// in spec.md §6/§7 via errors.Is.
var (
	ErrBreakpointNotFound  = errors.New("breakpoint not found")
	ErrSignatureMismatch   = errors.New("replacement signature mismatch")
	ErrPauseNotFound       = errors.New("pause not found")
	ErrPauseAlreadyResumed = errors.New("pause already resumed")
	ErrInvalidBehavior     = errors.New("invalid behavior")
	ErrCallNotFound        = errors.New("call not found")
)
