package apiclient

import "time"

// ComError is a transport failure a debuggee self-reported against the
// control plane, mirroring internal/breakpoint.ComError's wire shape.
type ComError struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	ProcessID int       `json:"process_id,omitempty"`
}

// ComErrorsList is the decoded response of GET /api/com-errors.
type ComErrorsList struct {
	ComErrors []ComError `json:"com_errors"`
}

// ListComErrors fetches the reported communication-error log.
func (c *Client) ListComErrors() (*ComErrorsList, error) {
	return getResource[ComErrorsList](c, "/api/com-errors")
}
