package logger

import (
	"context"
	"time"
)

// contextKey is a private type for context keys to avoid collisions
type contextKey struct{}

// logContextKey is the key for LogContext in context.Context
var logContextKey = contextKey{}

// LogContext holds request-scoped logging context threaded through the
// HTTP control plane: which call and pause a log line belongs to, and
// the trace/span ids correlating it with OpenTelemetry.
type LogContext struct {
	TraceID    string    // OpenTelemetry trace ID
	SpanID     string    // OpenTelemetry span ID
	CallID     string    // Call Record identifier
	MethodName string    // Intercepted function name
	PauseID    string    // Paused Execution identifier, if any
	StartTime  time.Time // For duration calculation
}

// WithContext returns a new context with the given LogContext
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext retrieves the LogContext from context, or nil if not present
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// NewLogContext creates a new LogContext for a freshly started call.
func NewLogContext(callID string) *LogContext {
	return &LogContext{
		CallID:    callID,
		StartTime: time.Now(),
	}
}

// Clone creates a copy of the LogContext
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	return &LogContext{
		TraceID:    lc.TraceID,
		SpanID:     lc.SpanID,
		CallID:     lc.CallID,
		MethodName: lc.MethodName,
		PauseID:    lc.PauseID,
		StartTime:  lc.StartTime,
	}
}

// WithMethodName returns a copy with the intercepted method name set
func (lc *LogContext) WithMethodName(methodName string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.MethodName = methodName
	}
	return clone
}

// WithPauseID returns a copy with the pause id set
func (lc *LogContext) WithPauseID(pauseID string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.PauseID = pauseID
	}
	return clone
}

// WithTrace returns a copy with trace info set
func (lc *LogContext) WithTrace(traceID, spanID string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.TraceID = traceID
		clone.SpanID = spanID
	}
	return clone
}

// DurationMs returns the duration since StartTime in milliseconds
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return float64(time.Since(lc.StartTime).Microseconds()) / 1000.0
}
