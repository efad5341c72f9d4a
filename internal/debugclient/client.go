// Package debugclient implements Component D: the debuggee-side transport
// and call-interception proxy that talks to cideldilld's control plane.
// Its HTTP transport is grounded directly on pkg/apiclient/client.go's
// do/get/post pattern; its retry and fatal-exit semantics mirror the
// original debug_client.py.
package debugclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/cideldill/cideldill/internal/breakpoint"
	"github.com/cideldill/cideldill/internal/codec"
	"github.com/cideldill/cideldill/pkg/apiclient"
)

const (
	defaultRequestTimeout = 5 * time.Second
	defaultRetryTimeout   = 60 * time.Second
	defaultRetrySleep     = 250 * time.Millisecond
)

// Client is the debuggee-side client for one control-plane server. It is
// safe for concurrent use by multiple proxy-wrapped call sites.
type Client struct {
	serverURL    string
	httpClient   *http.Client
	cache        *objectCache
	retryTimeout time.Duration
	retrySleep   time.Duration
	process      breakpoint.ProcessIdentity
}

// Option configures a Client.
type Option func(*Client)

// WithRequestTimeout overrides the per-request HTTP client timeout.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithRetryTimeout overrides how long a request is retried against a
// merely-slow-to-respond server before the process exits fatally.
func WithRetryTimeout(d time.Duration) Option {
	return func(c *Client) { c.retryTimeout = d }
}

// WithRetrySleep overrides the pause between retries.
func WithRetrySleep(d time.Duration) Option {
	return func(c *Client) { c.retrySleep = d }
}

// WithCacheCapacity overrides the object cache's entry capacity.
func WithCacheCapacity(n int) Option {
	return func(c *Client) { c.cache = newObjectCache(n) }
}

// New returns a Client bound to serverURL (e.g. "http://127.0.0.1:8080")
// for the calling process, identified by pid and startTime (seconds since
// the epoch, matching ProcessIdentity.ProcessStartTime's unit). An empty
// serverURL is taken from the CIDELDILL_SERVER_URL environment variable.
func New(serverURL string, pid int, startTime float64, opts ...Option) *Client {
	if serverURL == "" {
		serverURL = os.Getenv("CIDELDILL_SERVER_URL")
	}
	c := &Client{
		serverURL:    serverURL,
		httpClient:   &http.Client{Timeout: defaultRequestTimeout},
		cache:        newObjectCache(defaultCacheCapacity),
		retryTimeout: defaultRetryTimeout,
		retrySleep:   defaultRetrySleep,
		process:      breakpoint.ProcessIdentity{PID: pid, ProcessStartTime: startTime},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewForCurrentProcess returns a Client identified by the current
// process's PID and start time.
func NewForCurrentProcess(serverURL string, opts ...Option) *Client {
	return New(serverURL, os.Getpid(), processStartTime(), opts...)
}

func nowSeconds() float64 {
	return float64(time.Now().UnixNano()) / 1e9
}

var processStartedAt = nowSeconds()

func processStartTime() float64 { return processStartedAt }

// doOnce performs a single HTTP round trip without retrying.
func (c *Client) doOnce(ctx context.Context, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("debugclient: marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.serverURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("debugclient: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("debugclient: read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr apiclient.APIError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Discriminant != "" {
			apiErr.StatusCode = resp.StatusCode
			return &apiErr
		}
		return &apiclient.APIError{StatusCode: resp.StatusCode, Discriminant: "unknown_error", Detail: string(respBody)}
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("debugclient: decode response: %w", err)
		}
	}
	return nil
}

// do retries doOnce on timeouts only, up to retryTimeout, then exits the
// process fatally: a debuggee that cannot reach its control plane at all
// has no safe way to continue silently. Any non-timeout transport error
// (connection refused, DNS failure, ...) also exits fatally — only a
// well-formed *apiclient.APIError response is returned to the caller, so
// callers can handle protocol-level conditions like cid_not_found.
func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	deadline := time.Now().Add(c.retryTimeout)
	for {
		err := c.doOnce(ctx, method, path, body, result)
		if err == nil {
			return nil
		}

		var apiErr *apiclient.APIError
		if errors.As(err, &apiErr) {
			return err
		}

		if !isTimeout(err) {
			exitWithServerFailure("request failed", c.serverURL, err)
		}
		if time.Now().After(deadline) {
			exitWithServerFailure("server did not respond within the retry timeout", c.serverURL, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.retrySleep):
		}
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}

// CheckConnection verifies the control plane is reachable, via GET /health.
func (c *Client) CheckConnection(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

// RegisterFunction advertises a debuggee-local callable's name and
// advisory signature to the server's function registry.
func (c *Client) RegisterFunction(ctx context.Context, name, signature string) error {
	body := map[string]string{"name": name, "signature": signature}
	return c.do(ctx, http.MethodPost, "/api/functions", body, nil)
}

// RegisterBreakpoint creates or updates a breakpoint for methodName.
func (c *Client) RegisterBreakpoint(ctx context.Context, methodName string, behavior breakpoint.Behavior, signature string) error {
	body := map[string]any{"function_name": methodName, "behavior": behavior, "signature": signature}
	return c.do(ctx, http.MethodPost, "/api/breakpoints", body, nil)
}

// ReportComError self-reports a transport failure observed elsewhere
// (e.g. a proxy call that gave up after exhausting its own retries
// outside this Client) once connectivity has been restored.
func (c *Client) ReportComError(ctx context.Context, message string) error {
	body := map[string]any{"message": message, "process_id": c.process.PID}
	return c.do(ctx, http.MethodPost, "/api/report-com-error", body, nil)
}

// StartResult is the decoded response of a call/start or a
// poll-triggering call/complete request.
type StartResult struct {
	CallID         string
	Action         breakpoint.ActionKind
	PollURL        string
	PollIntervalMS int
	TimeoutMS      int
	FunctionName   string
}

type callStartWire struct {
	MethodName      string                               `json:"method_name"`
	Target          *breakpoint.SerializedItem          `json:"target,omitempty"`
	Args            []breakpoint.SerializedItem          `json:"args"`
	Kwargs          map[string]breakpoint.SerializedItem `json:"kwargs"`
	CallSite        breakpoint.CallSite                  `json:"call_site"`
	Signature       string                               `json:"signature,omitempty"`
	ProcessIdentity breakpoint.ProcessIdentity           `json:"process_identity"`
}

type callStartResponseWire struct {
	CallID         string `json:"call_id"`
	Action         string `json:"action"`
	PollURL        string `json:"poll_url,omitempty"`
	PollIntervalMS int    `json:"poll_interval_ms,omitempty"`
	TimeoutMS      int    `json:"timeout_ms,omitempty"`
	FunctionName   string `json:"function_name,omitempty"`
}

// RecordCallStart reports the start of an intercepted call and returns the
// server's initial decision: continue, replace, or poll. target may be
// nil when the intercepted call has no bound receiver.
func (c *Client) RecordCallStart(ctx context.Context, methodName string, target any, args []any, kwargs map[string]any, callSite breakpoint.CallSite, signature string) (*StartResult, error) {
	force := map[string]bool{}
	for attempt := 0; attempt < 2; attempt++ {
		wire, err := c.buildCallStartWire(methodName, target, args, kwargs, callSite, signature, force)
		if err != nil {
			return nil, err
		}

		var resp callStartResponseWire
		err = c.do(ctx, http.MethodPost, "/api/call/start", wire, &resp)
		if err == nil {
			return &StartResult{
				CallID:         resp.CallID,
				Action:         breakpoint.ActionKind(resp.Action),
				PollURL:        resp.PollURL,
				PollIntervalMS: resp.PollIntervalMS,
				TimeoutMS:      resp.TimeoutMS,
				FunctionName:   resp.FunctionName,
			}, nil
		}

		var apiErr *apiclient.APIError
		if attempt == 0 && errors.As(err, &apiErr) && apiErr.Discriminant == "cid_not_found" {
			for _, cid := range apiErr.MissingCIDs {
				force[cid] = true
			}
			continue
		}
		return nil, err
	}
	return nil, ErrUnknownAction
}

func (c *Client) buildCallStartWire(methodName string, target any, args []any, kwargs map[string]any, callSite breakpoint.CallSite, signature string, force map[string]bool) (*callStartWire, error) {
	targetItem, err := c.serializeOptional(target, force)
	if err != nil {
		return nil, err
	}
	argItems, err := c.serializeAll(args, force)
	if err != nil {
		return nil, err
	}
	kwItems, err := c.serializeKwargs(kwargs, force)
	if err != nil {
		return nil, err
	}
	return &callStartWire{
		MethodName:      methodName,
		Target:          targetItem,
		Args:            argItems,
		Kwargs:          kwItems,
		CallSite:        callSite,
		Signature:       signature,
		ProcessIdentity: c.process,
	}, nil
}

type callCompleteWire struct {
	CallID             string                     `json:"call_id"`
	Timestamp          float64                    `json:"timestamp"`
	Status             breakpoint.CallStatus      `json:"status"`
	Result             *breakpoint.SerializedItem `json:"result,omitempty"`
	ExceptionType      string                     `json:"exception_type,omitempty"`
	ExceptionMessage   string                     `json:"exception_message,omitempty"`
	ExceptionTraceback string                     `json:"exception_traceback,omitempty"`
	ProcessIdentity    breakpoint.ProcessIdentity `json:"process_identity"`
}

type callCompleteResponseWire struct {
	Status         string `json:"status,omitempty"`
	Action         string `json:"action,omitempty"`
	PollURL        string `json:"poll_url,omitempty"`
	PollIntervalMS int    `json:"poll_interval_ms,omitempty"`
	TimeoutMS      int    `json:"timeout_ms,omitempty"`
}

// RecordCallComplete reports a call's outcome. On success it returns a
// non-nil *StartResult only when the server wants to pause after the
// call (Action == breakpoint.ActionPoll); otherwise it returns nil.
func (c *Client) RecordCallComplete(ctx context.Context, callID string, status breakpoint.CallStatus, result any, callErr error) (*StartResult, error) {
	force := map[string]bool{}
	for attempt := 0; attempt < 2; attempt++ {
		wire := callCompleteWire{
			CallID:          callID,
			Timestamp:       nowSeconds(),
			Status:          status,
			ProcessIdentity: c.process,
		}
		if status == breakpoint.StatusSuccess {
			item, err := c.serializeOptional(result, force)
			if err != nil {
				return nil, err
			}
			wire.Result = item
		} else if callErr != nil {
			wire.ExceptionType = fmt.Sprintf("%T", callErr)
			wire.ExceptionMessage = callErr.Error()
		}

		var resp callCompleteResponseWire
		err := c.do(ctx, http.MethodPost, "/api/call/complete", wire, &resp)
		if err == nil {
			if resp.Action != string(breakpoint.ActionPoll) {
				return nil, nil
			}
			return &StartResult{
				Action:         breakpoint.ActionKind(resp.Action),
				PollURL:        resp.PollURL,
				PollIntervalMS: resp.PollIntervalMS,
				TimeoutMS:      resp.TimeoutMS,
			}, nil
		}

		var apiErr *apiclient.APIError
		if attempt == 0 && errors.As(err, &apiErr) && apiErr.Discriminant == "cid_not_found" {
			for _, cid := range apiErr.MissingCIDs {
				force[cid] = true
			}
			continue
		}
		return nil, err
	}
	return nil, ErrUnknownAction
}

type pollResponseWire struct {
	Status string                   `json:"status"`
	Action *breakpoint.ResumeAction `json:"action,omitempty"`
}

// Poll answers one poll tick against pollURL (falling back to
// /api/poll/{pauseID} when pollURL is empty), blocking via interval
// between ticks until a resume action is ready, the timeout elapses, or
// ctx is cancelled. The server itself never blocks (spec.md §5); all
// waiting happens client-side.
func (c *Client) Poll(ctx context.Context, pauseID, pollURL string, intervalMS, timeoutMS int) (*breakpoint.ResumeAction, error) {
	if pollURL == "" {
		pollURL = "/api/poll/" + pauseID
	}
	interval := time.Duration(intervalMS) * time.Millisecond
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	deadline := time.Now().Add(time.Duration(timeoutMS) * time.Millisecond)

	for {
		var resp pollResponseWire
		if err := c.do(ctx, http.MethodGet, pollURL, nil, &resp); err != nil {
			return nil, err
		}
		if resp.Status == "ready" && resp.Action != nil {
			return resp.Action, nil
		}
		if timeoutMS > 0 && time.Now().After(deadline) {
			return nil, ErrPollTimeout
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}
	}
}

// --- serialization helpers --------------------------------------------

func (c *Client) serializeItem(v any, force map[string]bool) (breakpoint.SerializedItem, error) {
	data, err := codec.Encode(v)
	if err != nil {
		return breakpoint.SerializedItem{}, fmt.Errorf("debugclient: encode value: %w", err)
	}
	cid := codec.Sum(data)
	item := breakpoint.SerializedItem{CID: cid.String()}
	if force[item.CID] || !c.cache.Has(item.CID) {
		item.Data = data
		c.cache.Put(item.CID, v)
	}
	return item, nil
}

func (c *Client) serializeOptional(v any, force map[string]bool) (*breakpoint.SerializedItem, error) {
	if v == nil {
		return nil, nil
	}
	item, err := c.serializeItem(v, force)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) serializeAll(values []any, force map[string]bool) ([]breakpoint.SerializedItem, error) {
	items := make([]breakpoint.SerializedItem, 0, len(values))
	for _, v := range values {
		item, err := c.serializeItem(v, force)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (c *Client) serializeKwargs(kwargs map[string]any, force map[string]bool) (map[string]breakpoint.SerializedItem, error) {
	items := make(map[string]breakpoint.SerializedItem, len(kwargs))
	for k, v := range kwargs {
		item, err := c.serializeItem(v, force)
		if err != nil {
			return nil, err
		}
		items[k] = item
	}
	return items, nil
}

func (c *Client) deserializeItem(item breakpoint.SerializedItem) (any, error) {
	if len(item.Data) > 0 {
		v, err := codec.Decode(item.Data)
		if err != nil {
			return nil, fmt.Errorf("debugclient: decode value: %w", err)
		}
		c.cache.Put(item.CID, v)
		return v, nil
	}
	if v, ok := c.cache.Get(item.CID); ok {
		return v, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrObjectNotCached, item.CID)
}

func (c *Client) deserializeItems(items []breakpoint.SerializedItem) ([]any, error) {
	values := make([]any, 0, len(items))
	for _, item := range items {
		v, err := c.deserializeItem(item)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

func (c *Client) deserializeKwargs(items map[string]breakpoint.SerializedItem) (map[string]any, error) {
	values := make(map[string]any, len(items))
	for k, item := range items {
		v, err := c.deserializeItem(item)
		if err != nil {
			return nil, err
		}
		values[k] = v
	}
	return values, nil
}
