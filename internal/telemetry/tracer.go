package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys for call-interception spans, following OpenTelemetry
// semantic convention style (dot-separated namespaces).
const (
	// ========================================================================
	// Call lifecycle attributes
	// ========================================================================
	AttrCallID       = "call.id"
	AttrMethodName   = "call.method_name"
	AttrCallStatus   = "call.status"
	AttrProcessID    = "call.process_id"
	AttrProcessName  = "call.process_name"

	// ========================================================================
	// Breakpoint / pause attributes
	// ========================================================================
	AttrPauseID   = "breakpoint.pause_id"
	AttrBehavior  = "breakpoint.behavior"
	AttrAction    = "breakpoint.action"

	// ========================================================================
	// CID store attributes
	// ========================================================================
	AttrContentID = "cidstore.cid"
	AttrStoreOp   = "cidstore.operation"

	// ========================================================================
	// Client attributes
	// ========================================================================
	AttrClientAddr = "client.address"
)

// Span names for control-plane operations.
const (
	SpanCallStart    = "call.start"
	SpanCallComplete = "call.complete"
	SpanCallEvent    = "call.event"

	SpanPausePoll     = "pause.poll"
	SpanPauseContinue = "pause.continue"

	SpanCIDStoreGet   = "cidstore.get"
	SpanCIDStorePut   = "cidstore.put"
	SpanCIDStoreStats = "cidstore.stats"
)

// CallID returns an attribute for a Call Record identifier.
func CallID(id string) attribute.KeyValue {
	return attribute.String(AttrCallID, id)
}

// MethodName returns an attribute for the intercepted function name.
func MethodName(name string) attribute.KeyValue {
	return attribute.String(AttrMethodName, name)
}

// CallStatus returns an attribute for a call completion status.
func CallStatus(status string) attribute.KeyValue {
	return attribute.String(AttrCallStatus, status)
}

// ProcessID returns an attribute for the debuggee process ID.
func ProcessID(pid int) attribute.KeyValue {
	return attribute.Int(AttrProcessID, pid)
}

// ProcessName returns an attribute for the debuggee process name.
func ProcessName(name string) attribute.KeyValue {
	return attribute.String(AttrProcessName, name)
}

// PauseID returns an attribute for a Paused Execution identifier.
func PauseID(id string) attribute.KeyValue {
	return attribute.String(AttrPauseID, id)
}

// Behavior returns an attribute for a breakpoint behavior (stop/go/yield).
func Behavior(behavior string) attribute.KeyValue {
	return attribute.String(AttrBehavior, behavior)
}

// Action returns an attribute for a resume action kind.
func Action(action string) attribute.KeyValue {
	return attribute.String(AttrAction, action)
}

// ContentID returns an attribute for a content identifier.
func ContentID(cid string) attribute.KeyValue {
	return attribute.String(AttrContentID, cid)
}

// StoreOp returns an attribute for a CID store operation name.
func StoreOp(op string) attribute.KeyValue {
	return attribute.String(AttrStoreOp, op)
}

// ClientAddr returns an attribute for the remote client address.
func ClientAddr(addr string) attribute.KeyValue {
	return attribute.String(AttrClientAddr, addr)
}

// StartCallSpan starts a span for a call lifecycle operation
// (call/start, call/complete, call/event), tagged with the call ID and
// method name.
func StartCallSpan(ctx context.Context, spanName, callID, methodName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		CallID(callID),
		MethodName(methodName),
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, spanName, trace.WithAttributes(allAttrs...))
}

// StartPauseSpan starts a span for a pause-scheduler operation (poll,
// continue), tagged with the pause ID.
func StartPauseSpan(ctx context.Context, spanName, pauseID string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		PauseID(pauseID),
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, spanName, trace.WithAttributes(allAttrs...))
}

// StartCIDStoreSpan starts a span for a CID store operation.
func StartCIDStoreSpan(ctx context.Context, spanName, cid string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		ContentID(cid),
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, spanName, trace.WithAttributes(allAttrs...))
}
