package logger

import (
	"log/slog"
)

// Standard field keys for structured logging. Use these keys
// consistently across all log statements for log aggregation and
// querying.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID = "trace_id" // OpenTelemetry trace ID for request correlation
	KeySpanID  = "span_id"  // OpenTelemetry span ID for operation tracking

	// ========================================================================
	// Call lifecycle
	// ========================================================================
	KeyCallID       = "call_id"       // Call Record identifier
	KeyMethodName   = "method_name"   // Intercepted function name
	KeyPauseID      = "pause_id"      // Paused Execution identifier
	KeyAction       = "action"        // Resume action kind: continue, replace, modify, skip, raise
	KeyBehavior     = "behavior"      // Breakpoint behavior: stop, go, yield
	KeyCallStatus   = "call_status"   // Call status: started, success, exception
	KeyCID          = "cid"           // Content identifier
	KeyProcessID    = "process_id"    // Debuggee process ID
	KeyProcessName  = "process_name"  // Debuggee process name

	// ========================================================================
	// Session & Connection
	// ========================================================================
	KeyRequestID = "request_id" // chi middleware request ID

	// ========================================================================
	// Operation Metadata
	// ========================================================================
	KeyDurationMs = "duration_ms" // Operation duration in milliseconds
	KeyError      = "error"       // Error message
	KeySource     = "source"      // Data source: config, cid_store, manager
)

// TraceID returns a slog.Attr for OpenTelemetry trace ID
func TraceID(id string) slog.Attr {
	return slog.String(KeyTraceID, id)
}

// SpanID returns a slog.Attr for OpenTelemetry span ID
func SpanID(id string) slog.Attr {
	return slog.String(KeySpanID, id)
}

// CallID returns a slog.Attr for the Call Record identifier.
func CallID(id string) slog.Attr {
	return slog.String(KeyCallID, id)
}

// MethodName returns a slog.Attr for the intercepted function name.
func MethodName(name string) slog.Attr {
	return slog.String(KeyMethodName, name)
}

// PauseID returns a slog.Attr for the Paused Execution identifier.
func PauseID(id string) slog.Attr {
	return slog.String(KeyPauseID, id)
}

// Action returns a slog.Attr for a resume action kind.
func Action(action string) slog.Attr {
	return slog.String(KeyAction, action)
}

// Behavior returns a slog.Attr for a breakpoint behavior.
func Behavior(behavior string) slog.Attr {
	return slog.String(KeyBehavior, behavior)
}

// CallStatus returns a slog.Attr for a call completion status.
func CallStatus(status string) slog.Attr {
	return slog.String(KeyCallStatus, status)
}

// CID returns a slog.Attr for a content identifier.
func CID(cid string) slog.Attr {
	return slog.String(KeyCID, cid)
}

// ProcessID returns a slog.Attr for the debuggee process ID.
func ProcessID(pid int) slog.Attr {
	return slog.Int(KeyProcessID, pid)
}

// ProcessName returns a slog.Attr for the debuggee process name.
func ProcessName(name string) slog.Attr {
	return slog.String(KeyProcessName, name)
}

// RequestID returns a slog.Attr for the chi middleware request ID.
func RequestID(id string) slog.Attr {
	return slog.String(KeyRequestID, id)
}

// DurationMs returns a slog.Attr for duration in milliseconds
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Source returns a slog.Attr for a data source
func Source(src string) slog.Attr {
	return slog.String(KeySource, src)
}
