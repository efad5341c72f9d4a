package mcpadapter

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/cideldill/cideldill/internal/breakpoint"
	"github.com/cideldill/cideldill/internal/codec"
)

// toolDef mirrors an MCP Tool descriptor: name, human-readable
// description, and a JSON-schema input shape.
type toolDef struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

func schema(required []string, props map[string]any) map[string]any {
	if props == nil {
		props = map[string]any{}
	}
	s := map[string]any{"type": "object", "properties": props}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

func stringProp(desc string) map[string]any { return map[string]any{"type": "string", "description": desc} }

// toolDefinitions enumerates the 14 tools this adapter exposes, grounded
// on BreakpointMCPServer._tools in the original mcp_server.py.
var toolDefinitions = []toolDef{
	{"breakpoint_list_breakpoints", "List every configured breakpoint, its behaviors, and any replacement.", schema(nil, nil)},
	{"breakpoint_add", "Add a breakpoint on a function.", schema([]string{"function_name"}, map[string]any{
		"function_name": stringProp("fully qualified function name"),
		"behavior":      stringProp("stop, go, or yield (default yield)"),
	})},
	{"breakpoint_remove", "Remove a breakpoint from a function.", schema([]string{"function_name"}, map[string]any{
		"function_name": stringProp("fully qualified function name"),
	})},
	{"breakpoint_set_behavior", "Set a breakpoint's before-call behavior.", schema([]string{"function_name", "behavior"}, map[string]any{
		"function_name": stringProp("fully qualified function name"),
		"behavior":      stringProp("stop, go, or yield"),
	})},
	{"breakpoint_set_after_behavior", "Set a breakpoint's after-call behavior.", schema([]string{"function_name", "behavior"}, map[string]any{
		"function_name": stringProp("fully qualified function name"),
		"behavior":      stringProp("stop, go, or yield"),
	})},
	{"breakpoint_set_replacement", "Set (or clear) the replacement function called instead of the original.", schema([]string{"function_name"}, map[string]any{
		"function_name":       stringProp("fully qualified function name"),
		"replacement_function": stringProp("replacement function name, empty to clear"),
	})},
	{"breakpoint_get_default_behavior", "Get the server-wide default behavior.", schema(nil, nil)},
	{"breakpoint_set_default_behavior", "Set the server-wide default behavior (stop or go).", schema([]string{"behavior"}, map[string]any{
		"behavior": stringProp("stop or go"),
	})},
	{"breakpoint_list_paused", "List every execution currently paused.", schema(nil, nil)},
	{"breakpoint_continue", "Resume a paused execution with an action.", schema([]string{"pause_id"}, map[string]any{
		"pause_id":             stringProp("pause identifier"),
		"action":               stringProp("continue, replace, modify, skip, or raise (default continue)"),
		"replacement_function": stringProp("shorthand for action=replace"),
		"modified_args":        map[string]any{"type": "array", "description": "positional argument overrides for action=modify"},
		"modified_kwargs":      map[string]any{"type": "object", "description": "keyword argument overrides for action=modify"},
		"fake_result":          map[string]any{"description": "result value to return for action=skip"},
		"exception_type":       stringProp("exception type name for action=raise"),
		"exception_message":    stringProp("exception message for action=raise"),
	})},
	{"breakpoint_list_functions", "List every function the debuggee has registered.", schema(nil, nil)},
	{"breakpoint_get_call_records", "List recorded calls, optionally filtered by function name.", schema(nil, map[string]any{
		"function_name": stringProp("restrict to this function"),
		"limit":         map[string]any{"type": "integer", "description": "max records to return (default 100)"},
	})},
	{"breakpoint_repl_eval", "Evaluate an expression in a paused call's frame.", schema([]string{"pause_id", "expression"}, map[string]any{
		"pause_id":   stringProp("pause identifier"),
		"expression": stringProp("expression to evaluate"),
		"session_id": stringProp("existing REPL session id, to continue a transcript"),
	})},
	{"breakpoint_inspect_object", "Inspect a stored object by its content identifier.", schema([]string{"cid"}, map[string]any{
		"cid": stringProp("content identifier"),
	})},
}

// callTool dispatches one tools/call invocation. Every handler returns a
// plain payload map — errors are values in that payload ({"error": ...}),
// not JSON-RPC protocol errors, matching _tool_result's convention in the
// original: a failed lookup or validation is a normal, displayable tool
// result, not a transport failure.
func (s *Server) callTool(ctx context.Context, name string, args map[string]any) map[string]any {
	switch name {
	case "breakpoint_list_breakpoints":
		return s.listBreakpointsPayload()
	case "breakpoint_add":
		return s.toolAddBreakpoint(args)
	case "breakpoint_remove":
		return s.toolRemoveBreakpoint(args)
	case "breakpoint_set_behavior":
		return s.toolSetBehavior(args)
	case "breakpoint_set_after_behavior":
		return s.toolSetAfterBehavior(args)
	case "breakpoint_set_replacement":
		return s.toolSetReplacement(args)
	case "breakpoint_get_default_behavior":
		return map[string]any{"behavior": string(s.manager.DefaultBehavior())}
	case "breakpoint_set_default_behavior":
		return s.toolSetDefaultBehavior(args)
	case "breakpoint_list_paused":
		return s.listPausedPayload()
	case "breakpoint_continue":
		return s.toolContinue(args)
	case "breakpoint_list_functions":
		return s.toolListFunctions()
	case "breakpoint_get_call_records":
		return s.toolGetCallRecords(args)
	case "breakpoint_repl_eval":
		return s.toolReplEval(args)
	case "breakpoint_inspect_object":
		return s.toolInspectObject(ctx, args)
	default:
		return map[string]any{"error": "unknown_tool", "tool": name}
	}
}

func requireString(args map[string]any, key string) (string, map[string]any) {
	v, ok := args[key]
	if !ok {
		return "", map[string]any{"error": "missing_parameter", "parameter": key}
	}
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", map[string]any{"error": "missing_parameter", "parameter": key}
	}
	return s, nil
}

func optionalString(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func (s *Server) listBreakpointsPayload() map[string]any {
	return map[string]any{
		"breakpoints":     s.manager.Breakpoints(),
		"behaviors":       behaviorMap(s.manager.BreakpointBehaviors()),
		"after_behaviors": behaviorMap(s.manager.AfterBreakpointBehaviors()),
		"replacements":    s.manager.BreakpointReplacements(),
	}
}

func behaviorMap(m map[string]breakpoint.Behavior) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = string(v)
	}
	return out
}

func (s *Server) toolAddBreakpoint(args map[string]any) map[string]any {
	name, errPayload := requireString(args, "function_name")
	if errPayload != nil {
		return errPayload
	}
	behavior := breakpoint.BehaviorYield
	if b := optionalString(args, "behavior"); b != "" {
		behavior = breakpoint.Behavior(b)
		if !behavior.Valid() {
			return map[string]any{"error": "invalid_behavior"}
		}
	}
	s.manager.AddBreakpoint(name, behavior)
	return map[string]any{"status": "ok", "function_name": name}
}

func (s *Server) toolRemoveBreakpoint(args map[string]any) map[string]any {
	name, errPayload := requireString(args, "function_name")
	if errPayload != nil {
		return errPayload
	}
	s.manager.RemoveBreakpoint(name)
	return map[string]any{"status": "ok", "function_name": name}
}

func (s *Server) toolSetBehavior(args map[string]any) map[string]any {
	name, errPayload := requireString(args, "function_name")
	if errPayload != nil {
		return errPayload
	}
	behaviorStr, errPayload := requireString(args, "behavior")
	if errPayload != nil {
		return errPayload
	}
	if err := s.manager.SetBreakpointBehavior(name, breakpoint.Behavior(behaviorStr)); err != nil {
		return map[string]any{"error": mapManagerError(err)}
	}
	return map[string]any{"status": "ok", "function_name": name, "behavior": behaviorStr}
}

func (s *Server) toolSetAfterBehavior(args map[string]any) map[string]any {
	name, errPayload := requireString(args, "function_name")
	if errPayload != nil {
		return errPayload
	}
	behaviorStr, errPayload := requireString(args, "behavior")
	if errPayload != nil {
		return errPayload
	}
	if err := s.manager.SetAfterBreakpointBehavior(name, breakpoint.Behavior(behaviorStr)); err != nil {
		return map[string]any{"error": mapManagerError(err)}
	}
	return map[string]any{"status": "ok", "function_name": name, "after_behavior": behaviorStr}
}

func (s *Server) toolSetReplacement(args map[string]any) map[string]any {
	name, errPayload := requireString(args, "function_name")
	if errPayload != nil {
		return errPayload
	}
	if !s.manager.HasBreakpoint(name) {
		return map[string]any{"error": "breakpoint_not_found"}
	}
	replacement := optionalString(args, "replacement_function")
	if replacement != "" && replacement != name {
		origSig, _ := s.manager.FunctionSignature(name)
		replSig, _ := s.manager.FunctionSignature(replacement)
		if origSig != "" && replSig != "" && origSig != replSig {
			return map[string]any{"error": "signature_mismatch"}
		}
	}
	if err := s.manager.SetBreakpointReplacement(name, replacement); err != nil {
		return map[string]any{"error": mapManagerError(err)}
	}
	return map[string]any{"status": "ok", "function_name": name, "replacement_function": replacement}
}

func (s *Server) toolSetDefaultBehavior(args map[string]any) map[string]any {
	behaviorStr, errPayload := requireString(args, "behavior")
	if errPayload != nil {
		return errPayload
	}
	if behaviorStr == "continue" {
		behaviorStr = string(breakpoint.BehaviorGo)
	}
	if err := s.manager.SetDefaultBehavior(breakpoint.Behavior(behaviorStr)); err != nil {
		return map[string]any{"error": mapManagerError(err)}
	}
	return map[string]any{"status": "ok", "behavior": behaviorStr}
}

func (s *Server) listPausedPayload() map[string]any {
	paused := s.manager.GetPausedExecutions()
	out := make([]map[string]any, 0, len(paused))
	for _, p := range paused {
		sessions := s.manager.ReplSessionsForPause(p.PauseID)
		sessionIDs := make([]string, 0, len(sessions))
		for _, sess := range sessions {
			sessionIDs = append(sessionIDs, sess.SessionID)
		}
		out = append(out, map[string]any{
			"pause_id":      p.PauseID,
			"call_data":     p.CallData,
			"paused_at":     p.PausedAt,
			"repl_sessions": sessionIDs,
		})
	}
	return map[string]any{"paused": out}
}

func mapManagerError(err error) string {
	switch {
	case errors.Is(err, breakpoint.ErrBreakpointNotFound):
		return "breakpoint_not_found"
	case errors.Is(err, breakpoint.ErrInvalidBehavior):
		return "invalid_behavior"
	case errors.Is(err, breakpoint.ErrPauseNotFound):
		return "pause_not_found"
	case errors.Is(err, breakpoint.ErrPauseAlreadyResumed):
		return "pause_already_resumed"
	default:
		return err.Error()
	}
}

func (s *Server) toolContinue(args map[string]any) map[string]any {
	pauseID, errPayload := requireString(args, "pause_id")
	if errPayload != nil {
		return errPayload
	}

	action := breakpoint.ActionContinue
	if v := optionalString(args, "action"); v != "" {
		action = breakpoint.ActionKind(v)
	}
	replacement := optionalString(args, "replacement_function")
	if replacement != "" {
		action = breakpoint.ActionReplace
	}

	resume := breakpoint.ResumeAction{Action: action}
	if replacement != "" {
		resume.FunctionName = replacement
	}
	if v, ok := args["modified_args"].([]any); ok {
		items := make([]breakpoint.SerializedItem, 0, len(v))
		for _, raw := range v {
			item, err := toSerializedItem(raw)
			if err != nil {
				return map[string]any{"error": "invalid_value", "detail": err.Error()}
			}
			items = append(items, item)
		}
		resume.ModifiedArgs = items
	}
	if v, ok := args["modified_kwargs"].(map[string]any); ok {
		kwargs := make(map[string]breakpoint.SerializedItem, len(v))
		for k, raw := range v {
			item, err := toSerializedItem(raw)
			if err != nil {
				return map[string]any{"error": "invalid_value", "detail": err.Error()}
			}
			kwargs[k] = item
		}
		resume.ModifiedKwargs = kwargs
	}
	if v, ok := args["fake_result"]; ok {
		item, err := toSerializedItem(v)
		if err != nil {
			return map[string]any{"error": "invalid_value", "detail": err.Error()}
		}
		resume.FakeResultData = &item
	}
	resume.ExceptionType = optionalString(args, "exception_type")
	resume.ExceptionMessage = optionalString(args, "exception_message")

	if err := s.manager.ResumeExecution(pauseID, resume); err != nil {
		return map[string]any{"error": mapManagerError(err)}
	}
	return map[string]any{"status": "ok", "pause_id": pauseID}
}

// toSerializedItem accepts either an already-wire-shaped
// {"cid": "...", "data": "<base64>"} value, or a raw JSON-ish value to be
// content-addressed fresh via the structural codec.
func toSerializedItem(v any) (breakpoint.SerializedItem, error) {
	if m, ok := v.(map[string]any); ok {
		if cid, ok := m["cid"].(string); ok {
			item := breakpoint.SerializedItem{CID: cid}
			if encoded, ok := m["data"].(string); ok && encoded != "" {
				data, err := base64.StdEncoding.DecodeString(encoded)
				if err != nil {
					return breakpoint.SerializedItem{}, fmt.Errorf("decode data: %w", err)
				}
				item.Data = data
			}
			return item, nil
		}
	}
	data, err := codec.Encode(v)
	if err != nil {
		return breakpoint.SerializedItem{}, err
	}
	return breakpoint.SerializedItem{CID: codec.Sum(data).String(), Data: data}, nil
}

func (s *Server) toolListFunctions() map[string]any {
	regs := s.manager.RegisteredFunctions()
	names := make([]string, 0, len(regs))
	signatures := make(map[string]string, len(regs))
	metadata := make(map[string]map[string]string, len(regs))
	for _, r := range regs {
		names = append(names, r.Name)
		signatures[r.Name] = r.Signature
		if r.Metadata != nil {
			metadata[r.Name] = r.Metadata
		}
	}
	return map[string]any{"functions": names, "signatures": signatures, "metadata": metadata}
}

const defaultCallRecordsLimit = 100

func (s *Server) toolGetCallRecords(args map[string]any) map[string]any {
	limit := defaultCallRecordsLimit
	if v, ok := args["limit"].(float64); ok {
		limit = int(v)
		if limit < 1 {
			return map[string]any{"error": "invalid_limit"}
		}
	}

	records := s.manager.CallRecords(0)
	if fn := optionalString(args, "function_name"); fn != "" {
		filtered := make([]*breakpoint.CallRecord, 0, len(records))
		for _, r := range records {
			if r.MethodName == fn {
				filtered = append(filtered, r)
			}
		}
		records = filtered
	}

	total := len(records)
	truncated := total > limit
	if truncated {
		records = records[total-limit:]
	}
	return map[string]any{"calls": records, "total_count": total, "truncated": truncated}
}

// toolReplEval records an evaluation request against a paused call's
// transcript without executing anything — see DESIGN.md's Open Question
// resolution for REPL/eval sessions.
func (s *Server) toolReplEval(args map[string]any) map[string]any {
	pauseID, errPayload := requireString(args, "pause_id")
	if errPayload != nil {
		return errPayload
	}
	expression, errPayload := requireString(args, "expression")
	if errPayload != nil {
		return errPayload
	}
	if _, ok := s.manager.GetPausedExecution(pauseID); !ok {
		return map[string]any{"error": "pause_not_found", "pause_id": pauseID}
	}

	sessionID := optionalString(args, "session_id")
	if sessionID == "" {
		session := s.manager.OpenReplSession(pauseID, 0)
		sessionID = session.SessionID
	}
	s.manager.AppendReplTranscript(sessionID, expression)
	return map[string]any{"error": "repl_backend_unavailable", "session_id": sessionID}
}

const (
	inspectAttributeLimit = 50
	inspectReprLimit      = 2000
)

func (s *Server) toolInspectObject(ctx context.Context, args map[string]any) map[string]any {
	cid, errPayload := requireString(args, "cid")
	if errPayload != nil {
		return errPayload
	}

	data, err := s.store.Get(ctx, codec.CID(cid))
	if err != nil {
		return map[string]any{"error": "cid_not_found", "cid": cid}
	}

	value, err := codec.Decode(data)
	if err != nil {
		return map[string]any{"error": "decode_failed", "cid": cid, "detail": err.Error()}
	}

	payload := map[string]any{
		"cid":  cid,
		"type": fmt.Sprintf("%T", value),
		"repr": truncateRepr(fmt.Sprintf("%#v", value)),
	}
	if attrs := inspectAttributes(value); attrs != nil {
		payload["attributes"] = attrs
	}
	return payload
}

func truncateRepr(s string) string {
	if len(s) <= inspectReprLimit {
		return s
	}
	return s[:inspectReprLimit] + "...(truncated)"
}

// inspectAttributes renders a shallow, display-only view of value's
// fields, matching _tool_inspect_object's attribute summary in the
// original. Only a map[string]any is rendered (one entry per key); any
// other value, structs included, yields nil.
func inspectAttributes(value any) map[string]string {
	m, ok := value.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(m))
	n := 0
	for k, v := range m {
		if n >= inspectAttributeLimit {
			break
		}
		out[k] = fmt.Sprintf("%v", v)
		n++
	}
	return out
}
