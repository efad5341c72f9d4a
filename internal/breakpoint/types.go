package breakpoint

import (
	"fmt"
	"time"
)

// Behavior is one of stop, go, or yield — see the GLOSSARY in spec.md.
type Behavior string

const (
	BehaviorStop  Behavior = "stop"
	BehaviorGo    Behavior = "go"
	BehaviorYield Behavior = "yield"
)

// Valid reports whether b is one of the three recognized behaviors.
func (b Behavior) Valid() bool {
	switch b {
	case BehaviorStop, BehaviorGo, BehaviorYield:
		return true
	}
	return false
}

// DefaultBehaviorValid reports whether b is valid as a *default* behavior,
// which may never be yield (resolve(yield, default) would be circular).
func (b Behavior) DefaultBehaviorValid() bool {
	return b == BehaviorStop || b == BehaviorGo
}

// ActionKind names the outcome of a start or complete request.
type ActionKind string

const (
	ActionContinue ActionKind = "continue"
	ActionReplace  ActionKind = "replace"
	ActionModify   ActionKind = "modify"
	ActionSkip     ActionKind = "skip"
	ActionRaise    ActionKind = "raise"
	ActionPoll     ActionKind = "poll"
)

// SerializedItem is the wire format for any value exchanged over the
// protocol: {cid, data?}. Go's encoding/json marshals a []byte field as
// standard base64 automatically, matching §6's wire format exactly.
type SerializedItem struct {
	CID  string `json:"cid"`
	Data []byte `json:"data,omitempty"`
}

// Frame is one entry of a captured call_site stack trace.
type Frame struct {
	Filename    string `json:"filename"`
	Lineno      int    `json:"lineno"`
	Function    string `json:"function"`
	CodeContext string `json:"code_context,omitempty"`
}

// CallSite captures where and when a call was intercepted.
type CallSite struct {
	Timestamp  float64 `json:"timestamp"`
	StackTrace []Frame `json:"stack_trace"`
}

// ProcessIdentity identifies the debuggee process that issued a call.
type ProcessIdentity struct {
	PID              int     `json:"pid"`
	ProcessStartTime float64 `json:"process_start_time"`
}

// ProcessKey groups records from one debuggee run: "{start_time:.6f}+{pid}".
func (p ProcessIdentity) ProcessKey() string {
	return fmt.Sprintf("%.6f+%d", p.ProcessStartTime, p.PID)
}

// CallStatus is the lifecycle status of a CallRecord.
type CallStatus string

const (
	StatusStarted   CallStatus = "started"
	StatusSuccess   CallStatus = "success"
	StatusException CallStatus = "exception"
)

// CallRecord is the server-side, per-invocation record described in
// spec.md §3. It is created at call/start and mutated only by the
// matching call/complete; it is never deleted while the server runs.
type CallRecord struct {
	CallID          string                    `json:"call_id"`
	MethodName      string                    `json:"method_name"`
	Target          *SerializedItem           `json:"target,omitempty"`
	Args            []SerializedItem          `json:"args"`
	Kwargs          map[string]SerializedItem `json:"kwargs"`
	CallSite        CallSite                  `json:"call_site"`
	Signature       string                    `json:"signature,omitempty"`
	ProcessIdentity ProcessIdentity           `json:"process_identity"`

	Status CallStatus `json:"status"`

	Result             *SerializedItem `json:"result,omitempty"`
	ExceptionType       string          `json:"exception_type,omitempty"`
	ExceptionMessage    string          `json:"exception_message,omitempty"`
	ExceptionTraceback  string          `json:"exception_traceback,omitempty"`
	ExceptionCID        string          `json:"exception_cid,omitempty"`

	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at,omitempty"`
}

// CallRecord carries no pretty-printed form of its args or result
// ("pretty_args" / "pretty_result" in §8), and nothing in the control
// plane composes one.

// Breakpoint is a policy entry keyed by method_name.
type Breakpoint struct {
	MethodName     string
	BeforeBehavior Behavior // absent => yield, represented as BehaviorYield
	AfterBehavior  Behavior
	Replacement    string // empty => none
}

// PausedExecution is a debuggee thread suspended awaiting a resume
// action.
type PausedExecution struct {
	PauseID  string      `json:"pause_id"`
	CallData *CallRecord `json:"call_data"`
	PausedAt time.Time   `json:"paused_at"`
}

// ResumeAction is an operator-supplied directive that ends a pause. Only
// the fields relevant to Action are populated; JSON (de)serialization
// tolerates the others being absent.
type ResumeAction struct {
	Action ActionKind `json:"action"`

	// replace
	FunctionName string `json:"function_name,omitempty"`

	// modify
	ModifiedArgs   []SerializedItem          `json:"modified_args,omitempty"`
	ModifiedKwargs map[string]SerializedItem `json:"modified_kwargs,omitempty"`

	// skip
	FakeResult     any             `json:"fake_result,omitempty"`
	FakeResultCID  string          `json:"fake_result_cid,omitempty"`
	FakeResultData *SerializedItem `json:"fake_result_data,omitempty"`

	// raise
	ExceptionType    string `json:"exception_type,omitempty"`
	ExceptionMessage string `json:"exception_message,omitempty"`
}

// ReplSession is inert metadata tracking an optional in-frame evaluation
// session; the core treats eval execution itself as out of scope (see
// spec.md §9 Open Questions).
type ReplSession struct {
	SessionID  string     `json:"session_id"`
	PauseID    string     `json:"pause_id"`
	PID        int        `json:"pid"`
	StartedAt  time.Time  `json:"started_at"`
	ClosedAt   *time.Time `json:"closed_at,omitempty"`
	Transcript []string   `json:"transcript"`
}

// FunctionRegistration is advisory metadata about a debuggee-registered
// function, consulted for replacement validation and UI display.
type FunctionRegistration struct {
	Name      string            `json:"name"`
	Signature string            `json:"signature,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// ComError records one transport failure the debuggee self-reported via
// /api/report-com-error, for post-hoc diagnosis.
type ComError struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	ProcessID int       `json:"process_id,omitempty"`
}
