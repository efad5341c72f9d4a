package mcpadapter

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cideldill/cideldill/internal/breakpoint"
	"github.com/cideldill/cideldill/internal/cidstore"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store, err := cidstore.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	manager := breakpoint.New()
	return NewServer(manager, store)
}

func rpcCall(t *testing.T, s *Server, method string, params any) map[string]any {
	t.Helper()
	paramsJSON, err := json.Marshal(params)
	require.NoError(t, err)

	req := map[string]any{"jsonrpc": "2.0", "id": 1, "method": method, "params": json.RawMessage(paramsJSON)}
	raw, err := json.Marshal(req)
	require.NoError(t, err)

	resp := s.HandleMessage(context.Background(), raw)
	require.NotNil(t, resp)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(resp, &decoded))
	require.Nil(t, decoded["error"], "unexpected rpc error: %v", decoded["error"])
	result, _ := decoded["result"].(map[string]any)
	return result
}

func toolCallResult(t *testing.T, s *Server, name string, args map[string]any) map[string]any {
	t.Helper()
	result := rpcCall(t, s, "tools/call", map[string]any{"name": name, "arguments": args})
	content := result["content"].([]any)
	require.Len(t, content, 1)
	text := content[0].(map[string]any)["text"].(string)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(text), &payload))
	return payload
}

func TestToolsListReturnsAllFourteen(t *testing.T) {
	s := newTestServer(t)
	result := rpcCall(t, s, "tools/list", nil)
	tools := result["tools"].([]any)
	assert.Len(t, tools, 14)
}

func TestResourcesAndPromptsListed(t *testing.T) {
	s := newTestServer(t)
	resources := rpcCall(t, s, "resources/list", nil)
	assert.Len(t, resources["resources"].([]any), 5)

	prompts := rpcCall(t, s, "prompts/list", nil)
	assert.Len(t, prompts["prompts"].([]any), 2)
}

func TestToolAddBreakpointAndList(t *testing.T) {
	s := newTestServer(t)

	added := toolCallResult(t, s, "breakpoint_add", map[string]any{"function_name": "orders.charge", "behavior": "stop"})
	assert.Equal(t, "ok", added["status"])

	listed := toolCallResult(t, s, "breakpoint_list_breakpoints", nil)
	breakpoints := listed["breakpoints"].([]any)
	assert.Contains(t, breakpoints, "orders.charge")
}

func TestToolContinueDeliversResumeAction(t *testing.T) {
	s := newTestServer(t)
	s.manager.AddBreakpoint("orders.charge", breakpoint.BehaviorStop)
	rec := &breakpoint.CallRecord{CallID: "1-001", MethodName: "orders.charge"}
	s.manager.RegisterCall(rec)
	pauseID := s.manager.AddPausedExecution(rec.CallID, rec)

	result := toolCallResult(t, s, "breakpoint_continue", map[string]any{"pause_id": pauseID, "action": "continue"})
	assert.Equal(t, "ok", result["status"])

	action, ok := s.manager.PeekResumeAction(pauseID)
	require.True(t, ok)
	assert.Equal(t, breakpoint.ActionContinue, action.Action)
}

func TestToolContinueUnknownPause(t *testing.T) {
	s := newTestServer(t)
	result := toolCallResult(t, s, "breakpoint_continue", map[string]any{"pause_id": "does-not-exist"})
	assert.Equal(t, "pause_not_found", result["error"])
}

func TestResourceReadStatus(t *testing.T) {
	s := newTestServer(t)
	s.manager.AddBreakpoint("orders.charge", breakpoint.BehaviorGo)

	result := rpcCall(t, s, "resources/read", map[string]any{"uri": "breakpoint://status"})
	contents := result["contents"].([]any)
	require.Len(t, contents, 1)
	text := contents[0].(map[string]any)["text"].(string)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(text), &payload))
	assert.Equal(t, float64(1), payload["breakpoints"])
}

func TestPromptInspectPausedCallRequiresPauseID(t *testing.T) {
	s := newTestServer(t)
	paramsJSON, err := json.Marshal(map[string]any{"name": "inspect-paused-call", "arguments": map[string]any{}})
	require.NoError(t, err)
	req := map[string]any{"jsonrpc": "2.0", "id": 1, "method": "prompts/get", "params": json.RawMessage(paramsJSON)}
	raw, err := json.Marshal(req)
	require.NoError(t, err)

	resp := s.HandleMessage(context.Background(), raw)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(resp, &decoded))
	assert.NotNil(t, decoded["error"])
}

func TestNotifyBroadcastsToConnectedSessions(t *testing.T) {
	s := newTestServer(t)
	session := newSSESession()
	s.sessions.add(session)

	s.Notify(breakpoint.EventExecutionPaused, map[string]any{"pause_id": "p1"})

	select {
	case data := <-session.events:
		var note map[string]any
		require.NoError(t, json.Unmarshal(data, &note))
		assert.Equal(t, "notifications/execution_paused", note["method"])
	case <-time.After(time.Second):
		t.Fatal("expected a broadcast notification")
	}
}

func TestHandleMessageIgnoresNotifications(t *testing.T) {
	s := newTestServer(t)
	raw := []byte(`{"jsonrpc":"2.0","method":"notifications/initialized"}`)
	resp := s.HandleMessage(context.Background(), raw)
	assert.Nil(t, resp)
}

func TestHandleMessageUnknownMethod(t *testing.T) {
	s := newTestServer(t)
	raw := []byte(`{"jsonrpc":"2.0","id":1,"method":"bogus"}`)
	resp := s.HandleMessage(context.Background(), raw)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(resp, &decoded))
	errObj := decoded["error"].(map[string]any)
	assert.Equal(t, float64(codeMethodNotFound), errObj["code"])
}
