package debugclient

import (
	"context"
	"fmt"
	"runtime"

	"github.com/cideldill/cideldill/internal/breakpoint"
	"github.com/cideldill/cideldill/internal/registry"
)

// Invocation is the real call a Proxy wraps: it receives the (possibly
// modified) positional and keyword-style arguments and performs the
// actual work, exactly as the original callable would.
type Invocation func(args []any, kwargs map[string]any) (any, error)

// Proxy implements the debuggee-side half of the call interception
// protocol (spec.md §4.D/§5): it reports a call's start, executes
// whatever action the server decides (continue/replace/modify/skip/
// raise), polling as needed, then reports completion. Grounded on the
// original DebugProxy._wrap_method/_execute_action/_wait_for_post_completion.
type Proxy struct {
	client    *Client
	registry  *registry.Registry
	isEnabled func() bool
}

// NewProxy returns a Proxy that reports through client, resolves "replace"
// actions against reg, and consults isEnabled (if non-nil) before
// intercepting each call — a nil isEnabled always intercepts.
func NewProxy(client *Client, reg *registry.Registry, isEnabled func() bool) *Proxy {
	return &Proxy{client: client, registry: reg, isEnabled: isEnabled}
}

// Call intercepts one invocation of methodName on target (nil if the
// call has no bound receiver). fn performs the real work when the
// outcome is "continue" or "modify"; a "replace" naming a function that
// is not in the registry returns ErrUnknownReplacement.
func (p *Proxy) Call(ctx context.Context, methodName string, target any, args []any, kwargs map[string]any, signature string, fn Invocation) (any, error) {
	if p.isEnabled != nil && !p.isEnabled() {
		return fn(args, kwargs)
	}

	callSite := breakpoint.CallSite{
		Timestamp:  nowSeconds(),
		StackTrace: captureStackTrace(2),
	}

	start, err := p.client.RecordCallStart(ctx, methodName, target, args, kwargs, callSite, signature)
	if err != nil {
		return nil, err
	}
	if start.CallID == "" {
		return nil, ErrMissingCallID
	}

	result, callErr := p.executeAction(ctx, start, args, kwargs, fn)

	if callErr != nil {
		// Best-effort: a failure reporting the exception must never mask
		// the original error from the caller.
		_, _ = p.client.RecordCallComplete(ctx, start.CallID, breakpoint.StatusException, nil, callErr)
		return nil, callErr
	}

	postAction, err := p.client.RecordCallComplete(ctx, start.CallID, breakpoint.StatusSuccess, result, nil)
	if err != nil {
		return result, err
	}
	if postAction != nil {
		if err := p.waitForPostCompletion(ctx, postAction); err != nil {
			return result, err
		}
	}
	return result, nil
}

func (p *Proxy) executeAction(ctx context.Context, start *StartResult, args []any, kwargs map[string]any, fn Invocation) (any, error) {
	action := start.Action
	pollURL, interval, timeout := start.PollURL, start.PollIntervalMS, start.TimeoutMS
	replacementName := start.FunctionName
	var resumed *breakpoint.ResumeAction

	for action == breakpoint.ActionPoll {
		ra, err := p.client.Poll(ctx, "", pollURL, interval, timeout)
		if err != nil {
			return nil, err
		}
		resumed = ra
		action = ra.Action
		if ra.FunctionName != "" {
			replacementName = ra.FunctionName
		}
	}

	return p.dispatch(action, resumed, replacementName, args, kwargs, fn)
}

func (p *Proxy) dispatch(action breakpoint.ActionKind, resumed *breakpoint.ResumeAction, replacementName string, args []any, kwargs map[string]any, fn Invocation) (any, error) {
	switch action {
	case breakpoint.ActionContinue:
		return fn(args, kwargs)

	case breakpoint.ActionReplace:
		replacement, ok := p.registry.Lookup(replacementName)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownReplacement, replacementName)
		}
		return replacement(args, kwargs)

	case breakpoint.ActionModify:
		newArgs, newKwargs, err := p.deserializeModified(resumed)
		if err != nil {
			return nil, err
		}
		return fn(newArgs, newKwargs)

	case breakpoint.ActionSkip:
		return p.deserializeFakeResult(resumed)

	case breakpoint.ActionRaise:
		return nil, p.deserializeException(resumed)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
}

func (p *Proxy) waitForPostCompletion(ctx context.Context, action *StartResult) error {
	pollURL, interval, timeout := action.PollURL, action.PollIntervalMS, action.TimeoutMS
	current := action.Action
	for current == breakpoint.ActionPoll {
		ra, err := p.client.Poll(ctx, "", pollURL, interval, timeout)
		if err != nil {
			return err
		}
		current = ra.Action
	}
	if current != "" && current != breakpoint.ActionContinue {
		return fmt.Errorf("%w: unsupported post-completion action %q", ErrUnknownAction, current)
	}
	return nil
}

func (p *Proxy) deserializeModified(action *breakpoint.ResumeAction) ([]any, map[string]any, error) {
	if action == nil {
		return nil, nil, nil
	}
	args, err := p.client.deserializeItems(action.ModifiedArgs)
	if err != nil {
		return nil, nil, err
	}
	kwargs, err := p.client.deserializeKwargs(action.ModifiedKwargs)
	if err != nil {
		return nil, nil, err
	}
	return args, kwargs, nil
}

func (p *Proxy) deserializeFakeResult(action *breakpoint.ResumeAction) (any, error) {
	if action == nil {
		return nil, nil
	}
	if action.FakeResultData != nil {
		return p.client.deserializeItem(*action.FakeResultData)
	}
	if action.FakeResult != nil {
		return action.FakeResult, nil
	}
	if action.FakeResultCID != "" {
		return p.client.deserializeItem(breakpoint.SerializedItem{CID: action.FakeResultCID})
	}
	return nil, nil
}

func (p *Proxy) deserializeException(action *breakpoint.ResumeAction) error {
	if action == nil {
		return fmt.Errorf("raised by breakpoint")
	}
	msg := action.ExceptionMessage
	if action.ExceptionType != "" {
		return fmt.Errorf("%s: %s", action.ExceptionType, msg)
	}
	return fmt.Errorf("%s", msg)
}

// captureStackTrace walks the call stack starting skip frames above its
// own caller, matching the original's inspect.stack()[skip:] convention.
func captureStackTrace(skip int) []breakpoint.Frame {
	const maxFrames = 32
	pcs := make([]uintptr, maxFrames)
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return nil
	}
	frames := runtime.CallersFrames(pcs[:n])

	var out []breakpoint.Frame
	for {
		frame, more := frames.Next()
		out = append(out, breakpoint.Frame{
			Filename: frame.File,
			Lineno:   frame.Line,
			Function: frame.Function,
		})
		if !more {
			break
		}
	}
	return out
}
