// Package breakpoint implements Component E: the server's in-memory
// breakpoint, pause, and call-record state machine, guarded by a single
// coarse mutex, grounded on the networked BreakpointManager (the
// canonical implementation per spec.md §9's Open Questions — the
// in-process legacy variant is not reproduced).
package breakpoint

import (
	"container/ring"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event names fanned out to observers, matching the MCP adapter's
// notification names 1:1.
const (
	EventExecutionPaused  = "execution_paused"
	EventExecutionResumed = "execution_resumed"
	EventCallCompleted    = "call_completed"
)

// Observer receives lifecycle notifications. The MCP adapter (Component
// H) registers one to translate these into JSON-RPC notifications.
type Observer interface {
	Notify(event string, params map[string]any)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(event string, params map[string]any)

func (f ObserverFunc) Notify(event string, params map[string]any) { f(event, params) }

// Manager holds all server-side state for the call interception
// protocol. Every exported method acquires mu itself and releases it
// before returning; no exported method calls another while holding the
// lock, so the non-reentrant sync.Mutex the spec calls for never
// deadlocks against itself.
type Manager struct {
	mu sync.Mutex

	breakpoints map[string]*Breakpoint // method_name -> policy
	defaultBehavior Behavior

	paused       map[string]*PausedExecution // pause_id -> ...
	resume       map[string]*ResumeAction    // pause_id -> ...
	callToPause  map[string]string           // call_id -> pause_id

	callIndex   map[string]*CallRecord   // call_id -> pending record
	history     map[string][]*CallRecord // method_name -> completed records
	callRecords []*CallRecord            // every completed call, in order

	comErrors *ring.Ring // cap 500

	replSessions      map[string]*ReplSession // session_id -> ...
	replByPause       map[string][]string     // pause_id -> session_ids

	registeredFunctions map[string]*FunctionRegistration

	callSeq int

	observers []Observer
}

// New returns a Manager with default_behavior = go, matching the
// original server's bias toward not pausing until an operator opts in.
func New() *Manager {
	return &Manager{
		breakpoints:         make(map[string]*Breakpoint),
		defaultBehavior:     BehaviorGo,
		paused:              make(map[string]*PausedExecution),
		resume:              make(map[string]*ResumeAction),
		callToPause:         make(map[string]string),
		callIndex:           make(map[string]*CallRecord),
		history:             make(map[string][]*CallRecord),
		comErrors:           ring.New(500),
		replSessions:        make(map[string]*ReplSession),
		replByPause:         make(map[string][]string),
		registeredFunctions: make(map[string]*FunctionRegistration),
	}
}

// AddObserver registers o to receive lifecycle notifications.
func (m *Manager) AddObserver(o Observer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, o)
}

// RemoveObserver unregisters o.
func (m *Manager) RemoveObserver(o Observer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.observers {
		if existing == o {
			m.observers = append(m.observers[:i], m.observers[i+1:]...)
			return
		}
	}
}

// notify must be called without m.mu held: observers may call back into
// the Manager.
func (m *Manager) notify(event string, params map[string]any) {
	for _, o := range m.observers {
		o.Notify(event, params)
	}
}

// --- Function registry (server-side, advisory) -----------------------

// RegisterFunction records a debuggee-advertised function and its
// signature, making it selectable as a replacement target.
func (m *Manager) RegisterFunction(name, signature string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	reg, ok := m.registeredFunctions[name]
	if !ok {
		reg = &FunctionRegistration{Name: name}
		m.registeredFunctions[name] = reg
	}
	reg.Signature = signature
}

// RegisteredFunctions lists every advertised function.
func (m *Manager) RegisteredFunctions() []FunctionRegistration {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]FunctionRegistration, 0, len(m.registeredFunctions))
	for _, reg := range m.registeredFunctions {
		out = append(out, *reg)
	}
	return out
}

// FunctionSignature returns the signature recorded for name.
func (m *Manager) FunctionSignature(name string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	reg, ok := m.registeredFunctions[name]
	if !ok {
		return "", false
	}
	return reg.Signature, true
}

// UpdateFunctionMetadata merges kv into the advisory metadata recorded
// for an already-registered function name.
func (m *Manager) UpdateFunctionMetadata(name string, kv map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	reg, ok := m.registeredFunctions[name]
	if !ok {
		return
	}
	if reg.Metadata == nil {
		reg.Metadata = make(map[string]string, len(kv))
	}
	for k, v := range kv {
		reg.Metadata[k] = v
	}
}

// --- Breakpoints -------------------------------------------------------

// AddBreakpoint registers name as a breakpoint with before_behavior
// (default yield if empty) and leaves after_behavior/replacement unset.
func (m *Manager) AddBreakpoint(name string, before Behavior) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if before == "" {
		before = BehaviorYield
	}
	m.breakpoints[name] = &Breakpoint{MethodName: name, BeforeBehavior: before, AfterBehavior: BehaviorYield}
}

// RemoveBreakpoint deletes name's policy entirely.
func (m *Manager) RemoveBreakpoint(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.breakpoints, name)
}

// ClearBreakpoints removes every breakpoint.
func (m *Manager) ClearBreakpoints() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.breakpoints = make(map[string]*Breakpoint)
}

// Breakpoints lists every breakpoint's method name.
func (m *Manager) Breakpoints() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.breakpoints))
	for name := range m.breakpoints {
		out = append(out, name)
	}
	return out
}

// HasBreakpoint reports whether name has a breakpoint entry.
func (m *Manager) HasBreakpoint(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.breakpoints[name]
	return ok
}

// BreakpointBehavior returns name's before_behavior (yield if unset).
func (m *Manager) BreakpointBehavior(name string) Behavior {
	m.mu.Lock()
	defer m.mu.Unlock()
	bp, ok := m.breakpoints[name]
	if !ok {
		return BehaviorYield
	}
	return bp.BeforeBehavior
}

// BreakpointBehaviors returns the before_behavior of every breakpoint.
func (m *Manager) BreakpointBehaviors() map[string]Behavior {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]Behavior, len(m.breakpoints))
	for name, bp := range m.breakpoints {
		out[name] = bp.BeforeBehavior
	}
	return out
}

// AfterBreakpointBehavior returns name's after_behavior (yield if unset).
func (m *Manager) AfterBreakpointBehavior(name string) Behavior {
	m.mu.Lock()
	defer m.mu.Unlock()
	bp, ok := m.breakpoints[name]
	if !ok {
		return BehaviorYield
	}
	return bp.AfterBehavior
}

// AfterBreakpointBehaviors returns the after_behavior of every breakpoint.
func (m *Manager) AfterBreakpointBehaviors() map[string]Behavior {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]Behavior, len(m.breakpoints))
	for name, bp := range m.breakpoints {
		out[name] = bp.AfterBehavior
	}
	return out
}

// BreakpointReplacement returns name's replacement function, if any.
func (m *Manager) BreakpointReplacement(name string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	bp, ok := m.breakpoints[name]
	if !ok || bp.Replacement == "" {
		return "", false
	}
	return bp.Replacement, true
}

// BreakpointReplacements returns every breakpoint's replacement mapping.
func (m *Manager) BreakpointReplacements() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.breakpoints))
	for name, bp := range m.breakpoints {
		if bp.Replacement != "" {
			out[name] = bp.Replacement
		}
	}
	return out
}

// SetBreakpointBehavior sets name's before_behavior. Setting yield clears
// the stored override (absent means yield). name must already have a
// breakpoint entry.
func (m *Manager) SetBreakpointBehavior(name string, behavior Behavior) error {
	if !behavior.Valid() {
		return ErrInvalidBehavior
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	bp, ok := m.breakpoints[name]
	if !ok {
		return ErrBreakpointNotFound
	}
	bp.BeforeBehavior = behavior
	return nil
}

// SetAfterBreakpointBehavior is SetBreakpointBehavior for after_behavior.
func (m *Manager) SetAfterBreakpointBehavior(name string, behavior Behavior) error {
	if !behavior.Valid() {
		return ErrInvalidBehavior
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	bp, ok := m.breakpoints[name]
	if !ok {
		return ErrBreakpointNotFound
	}
	bp.AfterBehavior = behavior
	return nil
}

// SetBreakpointReplacement sets name's replacement to replacement. An
// empty or self-referential replacement clears it instead. The caller is
// responsible for having already validated signature equality (see
// internal/registry.SignaturesMatch) — the Manager itself holds no
// callables to check against, only the server-reported signature
// strings, so the HTTP layer performs that check before calling in,
// matching the split between the debuggee-local registry and the
// server-side advisory one.
func (m *Manager) SetBreakpointReplacement(name, replacement string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	bp, ok := m.breakpoints[name]
	if !ok {
		return ErrBreakpointNotFound
	}
	if replacement == "" || replacement == name {
		bp.Replacement = ""
		return nil
	}
	bp.Replacement = replacement
	return nil
}

// SetDefaultBehavior sets the server-wide default (stop or go; never
// yield).
func (m *Manager) SetDefaultBehavior(behavior Behavior) error {
	if !behavior.DefaultBehaviorValid() {
		return ErrInvalidBehavior
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultBehavior = behavior
	return nil
}

// DefaultBehavior returns the server-wide default.
func (m *Manager) DefaultBehavior() Behavior {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.defaultBehavior
}

// resolveLocked implements resolve(b) = default_behavior if b == yield else b.
// Callers must hold m.mu.
func (m *Manager) resolveLocked(b Behavior) Behavior {
	if b == BehaviorYield {
		return m.defaultBehavior
	}
	return b
}

// ShouldPauseBefore reports whether a call to name should pause on
// entry.
func (m *Manager) ShouldPauseBefore(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	bp, ok := m.breakpoints[name]
	if !ok {
		return false
	}
	return m.resolveLocked(bp.BeforeBehavior) == BehaviorStop
}

// ShouldPauseAfter reports whether a successful call to name should
// pause on completion.
func (m *Manager) ShouldPauseAfter(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	bp, ok := m.breakpoints[name]
	if !ok {
		return false
	}
	return m.resolveLocked(bp.AfterBehavior) == BehaviorStop
}

// EffectiveReplacement returns name's replacement, if it has a
// breakpoint entry and a replacement is set.
func (m *Manager) EffectiveReplacement(name string) (string, bool) {
	return m.BreakpointReplacement(name)
}

// --- Calls, pauses, and resume actions ---------------------------------

// RegisterCall stores rec, pending, under rec.CallID.
func (m *Manager) RegisterCall(rec *CallRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callIndex[rec.CallID] = rec
}

// AddPausedExecution mints a fresh pause_id, stores callData under it,
// associates it with callID so a subsequent call/complete can clean it
// up, and fans out execution_paused.
func (m *Manager) AddPausedExecution(callID string, callData *CallRecord) string {
	m.mu.Lock()
	pauseID := uuid.NewString()
	m.paused[pauseID] = &PausedExecution{PauseID: pauseID, CallData: callData, PausedAt: time.Now().UTC()}
	m.callToPause[callID] = pauseID
	m.mu.Unlock()

	m.notify(EventExecutionPaused, map[string]any{"pause_id": pauseID, "call_id": callID})
	return pauseID
}

// GetPausedExecution returns the pause entry for pauseID.
func (m *Manager) GetPausedExecution(pauseID string) (*PausedExecution, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.paused[pauseID]
	return p, ok
}

// GetPausedExecutions lists every currently paused execution.
func (m *Manager) GetPausedExecutions() []*PausedExecution {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*PausedExecution, 0, len(m.paused))
	for _, p := range m.paused {
		out = append(out, p)
	}
	return out
}

// PeekResumeAction returns the resume action recorded for pauseID without
// consuming it — the poll handler's read, since resume entries are
// retained until call/complete observes them.
func (m *Manager) PeekResumeAction(pauseID string) (*ResumeAction, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.resume[pauseID]
	return a, ok
}

// ResumeExecution records a resume action for pauseID, removes the pause
// from the paused set (it is no longer "paused" in the listing sense, but
// the resume record lives on for idempotent polling), closes any REPL
// sessions bound to it, and fans out execution_resumed.
func (m *Manager) ResumeExecution(pauseID string, action ResumeAction) error {
	m.mu.Lock()
	_, known := m.paused[pauseID]
	_, alreadyResumed := m.resume[pauseID]
	if !known && !alreadyResumed {
		m.mu.Unlock()
		return ErrPauseNotFound
	}
	if alreadyResumed {
		m.mu.Unlock()
		return ErrPauseAlreadyResumed
	}

	m.resume[pauseID] = &action
	delete(m.paused, pauseID)

	for _, sessionID := range m.replByPause[pauseID] {
		m.closeReplSessionLocked(sessionID)
	}
	m.mu.Unlock()

	m.notify(EventExecutionResumed, map[string]any{"pause_id": pauseID, "action": action.Action})
	return nil
}

// PopCall removes callID's pending record, along with any associated
// pause_id and resume entry, and returns the record so the caller can
// build the completed CallRecord.
func (m *Manager) PopCall(callID string) (*CallRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.callIndex[callID]
	if !ok {
		return nil, false
	}
	delete(m.callIndex, callID)

	if pauseID, ok := m.callToPause[callID]; ok {
		delete(m.callToPause, callID)
		delete(m.paused, pauseID)
		delete(m.resume, pauseID)
	}
	return rec, true
}

// RecordCompletion appends rec to the full call history and, if name has
// an active breakpoint, to its per-method history. It fans out
// call_completed.
func (m *Manager) RecordCompletion(rec *CallRecord) {
	m.mu.Lock()
	m.callRecords = append(m.callRecords, rec)
	if m.HasBreakpointLocked(rec.MethodName) {
		m.history[rec.MethodName] = append(m.history[rec.MethodName], rec)
	}
	m.mu.Unlock()

	m.notify(EventCallCompleted, map[string]any{"call_id": rec.CallID, "method_name": rec.MethodName, "status": rec.Status})
}

// HasBreakpointLocked is HasBreakpoint for callers already holding m.mu.
func (m *Manager) HasBreakpointLocked(name string) bool {
	_, ok := m.breakpoints[name]
	return ok
}

// CallRecords returns every completed call record, most recent last.
func (m *Manager) CallRecords(limit int) []*CallRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 || limit > len(m.callRecords) {
		limit = len(m.callRecords)
	}
	start := len(m.callRecords) - limit
	out := make([]*CallRecord, limit)
	copy(out, m.callRecords[start:])
	return out
}

// History returns the completed call records for one breakpointed
// method, most recent last, bounded by limit (0 = all).
func (m *Manager) History(name string, limit int) []*CallRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	records := m.history[name]
	if limit <= 0 || limit > len(records) {
		limit = len(records)
	}
	start := len(records) - limit
	out := make([]*CallRecord, limit)
	copy(out, records[start:])
	return out
}

// NextCallID mints the next "{unix_time:.6f}-{3-digit-seq}" call id,
// unique per server process via an in-memory sequence counter.
func (m *Manager) NextCallID(now time.Time) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callSeq++
	return formatCallID(now, m.callSeq)
}

// --- Communication errors -----------------------------------------------

// RecordComError appends e to the 500-entry ring buffer, evicting the
// oldest entry once full.
func (m *Manager) RecordComError(e ComError) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.comErrors.Value = e
	m.comErrors = m.comErrors.Next()
}

// ComErrors returns every recorded communication error, oldest first.
func (m *Manager) ComErrors() []ComError {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []ComError
	m.comErrors.Do(func(v any) {
		if e, ok := v.(ComError); ok {
			out = append(out, e)
		}
	})
	return out
}

// --- REPL sessions (inert metadata) -------------------------------------

// OpenReplSession opens a new session bound to pauseID.
func (m *Manager) OpenReplSession(pauseID string, pid int) *ReplSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := &ReplSession{SessionID: uuid.NewString(), PauseID: pauseID, PID: pid, StartedAt: time.Now().UTC()}
	m.replSessions[s.SessionID] = s
	m.replByPause[pauseID] = append(m.replByPause[pauseID], s.SessionID)
	return s
}

// AppendReplTranscript appends a line to sessionID's transcript.
func (m *Manager) AppendReplTranscript(sessionID, line string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.replSessions[sessionID]; ok {
		s.Transcript = append(s.Transcript, line)
	}
}

// CloseReplSession closes sessionID explicitly.
func (m *Manager) CloseReplSession(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeReplSessionLocked(sessionID)
}

func (m *Manager) closeReplSessionLocked(sessionID string) {
	s, ok := m.replSessions[sessionID]
	if !ok || s.ClosedAt != nil {
		return
	}
	now := time.Now().UTC()
	s.ClosedAt = &now
}

// ReplSessionsForPause returns the sessions bound to pauseID.
func (m *Manager) ReplSessionsForPause(pauseID string) []*ReplSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := m.replByPause[pauseID]
	out := make([]*ReplSession, 0, len(ids))
	for _, id := range ids {
		if s, ok := m.replSessions[id]; ok {
			out = append(out, s)
		}
	}
	return out
}
