package breakpoint

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveYieldUsesDefault(t *testing.T) {
	m := New()
	require.NoError(t, m.SetDefaultBehavior(BehaviorStop))
	m.AddBreakpoint("add", BehaviorYield)

	assert.True(t, m.ShouldPauseBefore("add"))
}

func TestEmptyBreakpointSetNeverPauses(t *testing.T) {
	m := New()
	assert.False(t, m.ShouldPauseBefore("anything"))
	assert.False(t, m.ShouldPauseAfter("anything"))
}

func TestSetBreakpointBehaviorRequiresExistingBreakpoint(t *testing.T) {
	m := New()
	err := m.SetBreakpointBehavior("add", BehaviorStop)
	assert.ErrorIs(t, err, ErrBreakpointNotFound)
}

func TestSetBreakpointBehaviorValidatesBehavior(t *testing.T) {
	m := New()
	m.AddBreakpoint("add", BehaviorGo)
	err := m.SetBreakpointBehavior("add", "bogus")
	assert.ErrorIs(t, err, ErrInvalidBehavior)
}

func TestSetDefaultBehaviorRejectsYield(t *testing.T) {
	m := New()
	err := m.SetDefaultBehavior(BehaviorYield)
	assert.ErrorIs(t, err, ErrInvalidBehavior)
}

func TestPauseAndResumeLifecycle(t *testing.T) {
	m := New()
	m.AddBreakpoint("add", BehaviorStop)
	assert.True(t, m.ShouldPauseBefore("add"))

	rec := &CallRecord{CallID: "1-000", MethodName: "add", Status: StatusStarted}
	m.RegisterCall(rec)
	pauseID := m.AddPausedExecution(rec.CallID, rec)

	paused := m.GetPausedExecutions()
	require.Len(t, paused, 1)
	assert.Equal(t, pauseID, paused[0].PauseID)

	_, ok := m.PeekResumeAction(pauseID)
	assert.False(t, ok, "a paused call with no resume action never proceeds")

	require.NoError(t, m.ResumeExecution(pauseID, ResumeAction{Action: ActionContinue}))

	action, ok := m.PeekResumeAction(pauseID)
	require.True(t, ok)
	assert.Equal(t, ActionContinue, action.Action)

	// Repeated polls return the same action until call/complete clears it.
	action2, ok := m.PeekResumeAction(pauseID)
	require.True(t, ok)
	assert.Equal(t, action.Action, action2.Action)

	popped, ok := m.PopCall(rec.CallID)
	require.True(t, ok)
	assert.Equal(t, rec, popped)

	_, ok = m.PeekResumeAction(pauseID)
	assert.False(t, ok, "call/complete must clear the resume entry")
}

func TestResumeBeforePollIsStillDelivered(t *testing.T) {
	m := New()
	m.AddBreakpoint("add", BehaviorStop)
	rec := &CallRecord{CallID: "1-001", MethodName: "add"}
	m.RegisterCall(rec)
	pauseID := m.AddPausedExecution(rec.CallID, rec)

	require.NoError(t, m.ResumeExecution(pauseID, ResumeAction{Action: ActionSkip, FakeResult: 42}))

	action, ok := m.PeekResumeAction(pauseID)
	require.True(t, ok)
	assert.Equal(t, ActionSkip, action.Action)
	assert.Equal(t, 42, action.FakeResult)
}

func TestResumeUnknownPauseNotFound(t *testing.T) {
	m := New()
	err := m.ResumeExecution("does-not-exist", ResumeAction{Action: ActionContinue})
	assert.ErrorIs(t, err, ErrPauseNotFound)
}

func TestResumeAlreadyResumed(t *testing.T) {
	m := New()
	m.AddBreakpoint("add", BehaviorStop)
	rec := &CallRecord{CallID: "1-002", MethodName: "add"}
	m.RegisterCall(rec)
	pauseID := m.AddPausedExecution(rec.CallID, rec)

	require.NoError(t, m.ResumeExecution(pauseID, ResumeAction{Action: ActionContinue}))
	err := m.ResumeExecution(pauseID, ResumeAction{Action: ActionContinue})
	assert.ErrorIs(t, err, ErrPauseAlreadyResumed)
}

func TestSetBreakpointReplacementClearsOnSelfReference(t *testing.T) {
	m := New()
	m.AddBreakpoint("add", BehaviorGo)
	require.NoError(t, m.SetBreakpointReplacement("add", "add_alt"))

	repl, ok := m.BreakpointReplacement("add")
	require.True(t, ok)
	assert.Equal(t, "add_alt", repl)

	require.NoError(t, m.SetBreakpointReplacement("add", "add"))
	_, ok = m.BreakpointReplacement("add")
	assert.False(t, ok)
}

func TestHistoryOnlyRecordsBreakpointedMethods(t *testing.T) {
	m := New()
	m.AddBreakpoint("add", BehaviorGo)

	rec1 := &CallRecord{CallID: "1", MethodName: "add", CompletedAt: time.Now()}
	rec2 := &CallRecord{CallID: "2", MethodName: "untracked", CompletedAt: time.Now()}

	m.RecordCompletion(rec1)
	m.RecordCompletion(rec2)

	assert.Len(t, m.History("add", 0), 1)
	assert.Empty(t, m.History("untracked", 0))
	assert.Len(t, m.CallRecords(0), 2)
}

func TestComErrorRingBufferCaps(t *testing.T) {
	m := New()
	for i := 0; i < 505; i++ {
		m.RecordComError(ComError{Message: "err"})
	}
	assert.Len(t, m.ComErrors(), 500)
}

func TestAddPausedExecutionNotifiesObservers(t *testing.T) {
	m := New()
	var events []string
	m.AddObserver(ObserverFunc(func(event string, params map[string]any) {
		events = append(events, event)
	}))

	m.AddBreakpoint("add", BehaviorStop)
	rec := &CallRecord{CallID: "1-004", MethodName: "add"}
	m.RegisterCall(rec)
	pauseID := m.AddPausedExecution(rec.CallID, rec)
	require.NoError(t, m.ResumeExecution(pauseID, ResumeAction{Action: ActionContinue}))

	assert.Equal(t, []string{EventExecutionPaused, EventExecutionResumed}, events)
}

func TestPopCallCleansUpAssociatedPause(t *testing.T) {
	m := New()
	m.AddBreakpoint("add", BehaviorStop)
	rec := &CallRecord{CallID: "1-003", MethodName: "add"}
	m.RegisterCall(rec)
	pauseID := m.AddPausedExecution(rec.CallID, rec)

	_, ok := m.PopCall(rec.CallID)
	require.True(t, ok)

	_, ok = m.GetPausedExecution(pauseID)
	assert.False(t, ok, "abandoned pause must be cleaned up on complete")
}
