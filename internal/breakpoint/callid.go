package breakpoint

import (
	"fmt"
	"time"
)

// formatCallID renders the "{unix_time:.6f}-{3-digit-seq}" call id format
// from §6, wrapping seq into a 3-digit field (matching the 000-999 range
// the source format implies; beyond 999 the field simply widens, which
// keeps call ids strictly increasing rather than ambiguous).
func formatCallID(now time.Time, seq int) string {
	unix := float64(now.UnixNano()) / 1e9
	return fmt.Sprintf("%.6f-%03d", unix, seq)
}
