// Package metrics exposes the control plane's Prometheus instrumentation:
// calls started/completed, active pauses, poll volume, and CID store size.
package metrics

import (
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	mu       sync.Mutex
	registry *prometheus.Registry
	enabled  atomic.Bool

	callsStarted    *prometheus.CounterVec
	callsCompleted  *prometheus.CounterVec
	activePauses    prometheus.Gauge
	pollRequests    prometheus.Counter
	resumeActions   *prometheus.CounterVec
	cidStoreObjects prometheus.Gauge
	cidStoreBytes   prometheus.Gauge
)

// InitRegistry creates and registers the control plane's metric
// collectors, returning the registry for mounting at /metrics. Calling
// it more than once is a no-op after the first call.
func InitRegistry() *prometheus.Registry {
	mu.Lock()
	defer mu.Unlock()

	if registry != nil {
		return registry
	}

	reg := prometheus.NewRegistry()

	callsStarted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cideldill_calls_started_total",
		Help: "Total number of intercepted calls that reached call/start",
	}, []string{"method_name"})

	callsCompleted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cideldill_calls_completed_total",
		Help: "Total number of intercepted calls that reached call/complete, by status",
	}, []string{"method_name", "status"})

	activePauses = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cideldill_active_pauses",
		Help: "Number of executions currently paused awaiting an operator decision",
	})

	pollRequests = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cideldill_poll_requests_total",
		Help: "Total number of poll requests against paused executions",
	})

	resumeActions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cideldill_resume_actions_total",
		Help: "Total number of resume actions applied to paused executions, by action",
	}, []string{"action"})

	cidStoreObjects = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cideldill_cid_store_objects",
		Help: "Number of distinct CIDs currently held in the content store",
	})

	cidStoreBytes = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cideldill_cid_store_bytes",
		Help: "Total bytes of payload currently held in the content store",
	})

	reg.MustRegister(callsStarted, callsCompleted, activePauses, pollRequests, resumeActions, cidStoreObjects, cidStoreBytes)

	registry = reg
	enabled.Store(true)
	return registry
}

// IsEnabled reports whether InitRegistry has run.
func IsEnabled() bool {
	return enabled.Load()
}

// GetRegistry returns the process registry, initializing it with no
// collectors registered yet if InitRegistry hasn't run.
func GetRegistry() *prometheus.Registry {
	mu.Lock()
	defer mu.Unlock()
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	return registry
}

// RecordCallStarted increments the started counter for methodName.
func RecordCallStarted(methodName string) {
	if !IsEnabled() {
		return
	}
	callsStarted.WithLabelValues(methodName).Inc()
}

// RecordCallCompleted increments the completed counter for methodName/status.
func RecordCallCompleted(methodName, status string) {
	if !IsEnabled() {
		return
	}
	callsCompleted.WithLabelValues(methodName, status).Inc()
}

// SetActivePauses sets the current count of paused executions.
func SetActivePauses(n int) {
	if !IsEnabled() {
		return
	}
	activePauses.Set(float64(n))
}

// RecordPoll increments the poll request counter.
func RecordPoll() {
	if !IsEnabled() {
		return
	}
	pollRequests.Inc()
}

// RecordResumeAction increments the resume action counter for action.
func RecordResumeAction(action string) {
	if !IsEnabled() {
		return
	}
	resumeActions.WithLabelValues(action).Inc()
}

// SetCIDStoreStats sets the current object count and byte total held by
// the content store.
func SetCIDStoreStats(objects int64, bytes int64) {
	if !IsEnabled() {
		return
	}
	cidStoreObjects.Set(float64(objects))
	cidStoreBytes.Set(float64(bytes))
}
