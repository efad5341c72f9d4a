package handlers

import (
	"net/http"
	"time"

	"github.com/cideldill/cideldill/internal/breakpoint"
	"github.com/cideldill/cideldill/internal/cidstore"
	"github.com/cideldill/cideldill/internal/telemetry"
	"github.com/cideldill/cideldill/pkg/metrics"
)

// CallsHandler implements the Pause Scheduler's start/complete flows
// (spec.md §4.G) over Manager (E) and Store (B).
type CallsHandler struct {
	manager *breakpoint.Manager
	store   *cidstore.Store
}

// NewCallsHandler returns a handler bound to manager and store.
func NewCallsHandler(manager *breakpoint.Manager, store *cidstore.Store) *CallsHandler {
	return &CallsHandler{manager: manager, store: store}
}

const (
	defaultPollIntervalMS = 100
	defaultPollTimeoutMS  = 60000
)

type callStartRequest struct {
	MethodName      string                               `json:"method_name"`
	Target          *breakpoint.SerializedItem          `json:"target,omitempty"`
	Args            []breakpoint.SerializedItem          `json:"args"`
	Kwargs          map[string]breakpoint.SerializedItem `json:"kwargs"`
	CallSite        breakpoint.CallSite                  `json:"call_site"`
	Signature       string                               `json:"signature,omitempty"`
	ProcessIdentity breakpoint.ProcessIdentity           `json:"process_identity"`
}

type callStartResponse struct {
	CallID         string `json:"call_id"`
	Action         string `json:"action"`
	PollURL        string `json:"poll_url,omitempty"`
	PollIntervalMS int    `json:"poll_interval_ms,omitempty"`
	TimeoutMS      int    `json:"timeout_ms,omitempty"`
	FunctionName   string `json:"function_name,omitempty"`
}

// Start handles POST /api/call/start.
func (h *CallsHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req callStartRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	var missing []string

	if m, err := resolveOptionalItem(ctx, h.store, req.Target); err != nil {
		WriteDomainError(w, err)
		return
	} else {
		missing = append(missing, m...)
	}
	if m, err := resolveItems(ctx, h.store, req.Args); err != nil {
		WriteDomainError(w, err)
		return
	} else {
		missing = append(missing, m...)
	}
	kwItems := make([]breakpoint.SerializedItem, 0, len(req.Kwargs))
	for _, item := range req.Kwargs {
		kwItems = append(kwItems, item)
	}
	if m, err := resolveItems(ctx, h.store, kwItems); err != nil {
		WriteDomainError(w, err)
		return
	} else {
		missing = append(missing, m...)
	}

	if len(missing) > 0 {
		WriteCIDNotFound(w, missing)
		return
	}

	callID := h.manager.NextCallID(time.Now())

	_, span := telemetry.StartCallSpan(ctx, telemetry.SpanCallStart, callID, req.MethodName)
	defer span.End()

	rec := &breakpoint.CallRecord{
		CallID:          callID,
		MethodName:      req.MethodName,
		Target:          req.Target,
		Args:            req.Args,
		Kwargs:          req.Kwargs,
		CallSite:        req.CallSite,
		Signature:       req.Signature,
		ProcessIdentity: req.ProcessIdentity,
		Status:          breakpoint.StatusStarted,
		StartedAt:       time.Now().UTC(),
	}
	h.manager.RegisterCall(rec)
	metrics.RecordCallStarted(req.MethodName)

	if h.manager.ShouldPauseBefore(req.MethodName) {
		pauseID := h.manager.AddPausedExecution(callID, rec)
		metrics.SetActivePauses(len(h.manager.GetPausedExecutions()))
		WriteJSON(w, http.StatusOK, callStartResponse{
			CallID:         callID,
			Action:         string(breakpoint.ActionPoll),
			PollURL:        "/api/poll/" + pauseID,
			PollIntervalMS: defaultPollIntervalMS,
			TimeoutMS:      defaultPollTimeoutMS,
		})
		return
	}

	if replacement, ok := h.manager.EffectiveReplacement(req.MethodName); ok {
		WriteJSON(w, http.StatusOK, callStartResponse{
			CallID:       callID,
			Action:       string(breakpoint.ActionReplace),
			FunctionName: replacement,
		})
		return
	}

	WriteJSON(w, http.StatusOK, callStartResponse{CallID: callID, Action: string(breakpoint.ActionContinue)})
}

type callCompleteRequest struct {
	CallID             string                     `json:"call_id"`
	Timestamp          float64                    `json:"timestamp"`
	Status             breakpoint.CallStatus      `json:"status"`
	Result             *breakpoint.SerializedItem `json:"result,omitempty"`
	ExceptionType      string                     `json:"exception_type,omitempty"`
	ExceptionMessage   string                     `json:"exception_message,omitempty"`
	ExceptionTraceback string                     `json:"exception_traceback,omitempty"`
	ExceptionCID       string                     `json:"exception_cid,omitempty"`
	ProcessIdentity    breakpoint.ProcessIdentity `json:"process_identity"`
}

type callCompleteResponse struct {
	Status         string `json:"status,omitempty"`
	Action         string `json:"action,omitempty"`
	PollURL        string `json:"poll_url,omitempty"`
	PollIntervalMS int    `json:"poll_interval_ms,omitempty"`
	TimeoutMS      int    `json:"timeout_ms,omitempty"`
}

// Complete handles POST /api/call/complete.
func (h *CallsHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var req callCompleteRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	if m, err := resolveOptionalItem(ctx, h.store, req.Result); err != nil {
		WriteDomainError(w, err)
		return
	} else if len(m) > 0 {
		WriteCIDNotFound(w, m)
		return
	}

	rec, ok := h.manager.PopCall(req.CallID)
	if !ok {
		WriteDomainError(w, breakpoint.ErrCallNotFound)
		return
	}

	rec.Status = req.Status
	rec.Result = req.Result
	rec.ExceptionType = req.ExceptionType
	rec.ExceptionMessage = req.ExceptionMessage
	rec.ExceptionTraceback = req.ExceptionTraceback
	rec.ExceptionCID = req.ExceptionCID
	rec.CompletedAt = time.Now().UTC()

	_, span := telemetry.StartCallSpan(ctx, telemetry.SpanCallComplete, rec.CallID, rec.MethodName, telemetry.CallStatus(string(rec.Status)))
	defer span.End()

	h.manager.RecordCompletion(rec)
	metrics.RecordCallCompleted(rec.MethodName, string(rec.Status))

	if req.Status == breakpoint.StatusSuccess && h.manager.ShouldPauseAfter(rec.MethodName) {
		pauseID := h.manager.AddPausedExecution(rec.CallID, rec)
		metrics.SetActivePauses(len(h.manager.GetPausedExecutions()))
		WriteJSON(w, http.StatusOK, callCompleteResponse{
			Action:         string(breakpoint.ActionPoll),
			PollURL:        "/api/poll/" + pauseID,
			PollIntervalMS: defaultPollIntervalMS,
			TimeoutMS:      defaultPollTimeoutMS,
		})
		return
	}

	WriteJSON(w, http.StatusOK, callCompleteResponse{Status: "ok"})
}

type callEventRequest struct {
	Timestamp float64        `json:"timestamp"`
	Kind      string         `json:"kind"`
	Detail    map[string]any `json:"detail,omitempty"`
}

// Event handles POST /api/call/event: a non-call event logged for the
// operator-facing timeline. The core spec treats this as inert,
// UI-consumed metadata, so the handler just accepts and discards it
// (there is no UI here to consume it, and no queryable timeline exists
// outside that out-of-scope collaborator).
func (h *CallsHandler) Event(w http.ResponseWriter, r *http.Request) {
	var req callEventRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	WriteJSON(w, http.StatusAccepted, map[string]bool{"accepted": true})
}
