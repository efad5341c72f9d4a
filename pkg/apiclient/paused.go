package apiclient

import "time"

// CallRecord mirrors internal/breakpoint.CallRecord's wire shape: enough
// of a paused call's data to identify and display it.
type CallRecord struct {
	CallID     string    `json:"call_id"`
	MethodName string    `json:"method_name"`
	Signature  string    `json:"signature,omitempty"`
	Status     string    `json:"status"`
	StartedAt  time.Time `json:"started_at"`
}

// PausedExecution describes one in-flight paused call as the server
// reports it over GET /api/paused.
type PausedExecution struct {
	PauseID  string      `json:"pause_id"`
	CallData *CallRecord `json:"call_data"`
	PausedAt time.Time   `json:"paused_at"`
}

// PausedList is the decoded response of GET /api/paused.
type PausedList struct {
	Paused []PausedExecution `json:"paused"`
}

// ListPaused fetches every execution currently paused waiting on an
// operator decision.
func (c *Client) ListPaused() (*PausedList, error) {
	return getResource[PausedList](c, "/api/paused")
}

// PollResult is the decoded response of GET /api/poll/{pause_id}.
type PollResult struct {
	Status string         `json:"status"`
	Action map[string]any `json:"action,omitempty"`
}

// Poll checks whether pauseID has a resume action queued, without
// blocking — mirroring the debuggee-side poll loop.
func (c *Client) Poll(pauseID string) (*PollResult, error) {
	return getResource[PollResult](c, resourcePath("/api/poll/%s", pauseID))
}

// ResumeAction is an operator-supplied directive that ends a pause,
// mirroring internal/breakpoint.ResumeAction's wire shape. Only the
// fields relevant to Action need be populated.
type ResumeAction struct {
	Action string `json:"action"`

	// replace
	FunctionName string `json:"function_name,omitempty"`

	// skip
	FakeResultCID string `json:"fake_result_cid,omitempty"`

	// raise
	ExceptionType    string `json:"exception_type,omitempty"`
	ExceptionMessage string `json:"exception_message,omitempty"`
}

// Continue queues a resume action for pauseID, unblocking the
// debuggee's next poll.
func (c *Client) Continue(pauseID string, action ResumeAction) error {
	return c.post(resourcePath("/api/paused/%s/continue", pauseID), action, nil)
}
