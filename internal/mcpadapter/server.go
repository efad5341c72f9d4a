package mcpadapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cideldill/cideldill/internal/breakpoint"
	"github.com/cideldill/cideldill/internal/cidstore"
	"github.com/cideldill/cideldill/internal/logger"
)

// Server answers JSON-RPC requests over both the stdio and SSE
// transports and fans Manager lifecycle events out to every connected
// SSE session as notifications. One Server is shared by both transports;
// it holds no per-connection state of its own beyond the session
// manager.
type Server struct {
	manager  *breakpoint.Manager
	store    *cidstore.Store
	sessions *sessionManager
}

// NewServer builds an adapter over manager and store. Callers that want
// event notifications delivered over SSE must also call
// manager.AddObserver(srv).
func NewServer(manager *breakpoint.Manager, store *cidstore.Store) *Server {
	return &Server{manager: manager, store: store, sessions: newSessionManager()}
}

// Notify implements breakpoint.Observer: every lifecycle event becomes a
// JSON-RPC notification broadcast to all connected SSE sessions. Sessions
// are the only consumer — the stdio transport is request/response only,
// matching genai-toolbox's stdio session, which never pushes unsolicited
// messages.
func (s *Server) Notify(event string, params map[string]any) {
	note := rpcNotification{JSONRPC: jsonRPCVersion, Method: "notifications/" + event, Params: params}
	data, err := json.Marshal(note)
	if err != nil {
		logger.Warn("mcpadapter: failed to marshal notification", "event", event, "error", err)
		return
	}
	s.sessions.broadcast(data)
}

// HandleMessage decodes one JSON-RPC message and returns the encoded
// response, or nil for a notification (no response expected). Malformed
// JSON and malformed envelopes still get a JSON-RPC error response, per
// spec: a client can always expect a reply to anything bearing an id.
func (s *Server) HandleMessage(ctx context.Context, raw []byte) []byte {
	var req rpcRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return encodeResponse(errorResponse(nil, codeParseError, err.Error()))
	}
	if req.JSONRPC != jsonRPCVersion || req.Method == "" {
		return encodeResponse(errorResponse(req.ID, codeInvalidRequest, "invalid JSON-RPC request"))
	}
	if req.isNotification() {
		return nil
	}

	result, rpcErr := s.dispatch(ctx, req.Method, req.Params)
	if rpcErr != nil {
		return encodeResponse(errorResponse(req.ID, rpcErr.Code, rpcErr.Message))
	}
	return encodeResponse(resultResponse(req.ID, result))
}

func encodeResponse(resp rpcResponse) []byte {
	data, err := json.Marshal(resp)
	if err != nil {
		// Marshaling a plain rpcResponse built from our own values never
		// fails in practice; fall back to a minimal, always-encodable
		// error rather than propagating a marshal failure to the caller.
		data, _ = json.Marshal(errorResponse(resp.ID, codeInvalidRequest, "failed to encode response"))
	}
	return data
}

func (s *Server) dispatch(ctx context.Context, method string, params json.RawMessage) (any, *rpcError) {
	switch method {
	case "initialize":
		return map[string]any{
			"protocolVersion": protocolVersion,
			"serverInfo":      map[string]string{"name": "cideldill-breakpoint-server", "version": "1.0"},
			"capabilities": map[string]any{
				"tools":     map[string]any{},
				"resources": map[string]any{},
				"prompts":   map[string]any{},
			},
		}, nil

	case "tools/list":
		return map[string]any{"tools": toolDefinitions}, nil

	case "tools/call":
		var p struct {
			Name      string         `json:"name"`
			Arguments map[string]any `json:"arguments"`
		}
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, &rpcError{Code: codeInvalidParams, Message: err.Error()}
		}
		payload := s.callTool(ctx, p.Name, p.Arguments)
		return toolResult(payload), nil

	case "resources/list":
		return map[string]any{"resources": resourceDefinitions}, nil

	case "resources/read":
		var p struct {
			URI string `json:"uri"`
		}
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, &rpcError{Code: codeInvalidParams, Message: err.Error()}
		}
		payload, err := s.readResource(ctx, p.URI)
		if err != nil {
			return nil, &rpcError{Code: codeInvalidParams, Message: err.Error()}
		}
		return resourceResult(p.URI, payload), nil

	case "prompts/list":
		return map[string]any{"prompts": promptDefinitions}, nil

	case "prompts/get":
		var p struct {
			Name      string         `json:"name"`
			Arguments map[string]any `json:"arguments"`
		}
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, &rpcError{Code: codeInvalidParams, Message: err.Error()}
		}
		payload, err := s.getPrompt(p.Name, p.Arguments)
		if err != nil {
			return nil, &rpcError{Code: codeInvalidParams, Message: err.Error()}
		}
		return promptResult(payload), nil

	default:
		return nil, &rpcError{Code: codeMethodNotFound, Message: fmt.Sprintf("unknown method %q", method)}
	}
}

// toolResult wraps a tool handler's payload the way every MCP tool
// result is carried: a single text content block holding the JSON
// payload, mirroring _tool_result in the original mcp_server.py.
func toolResult(payload map[string]any) map[string]any {
	text, _ := json.Marshal(payload)
	return map[string]any{"content": []map[string]any{{"type": "text", "text": string(text)}}}
}

func resourceResult(uri string, payload map[string]any) map[string]any {
	text, _ := json.Marshal(payload)
	return map[string]any{"contents": []map[string]any{{"uri": uri, "mimeType": "application/json", "text": string(text)}}}
}

func promptResult(payload map[string]any) map[string]any {
	text, _ := json.Marshal(payload)
	return map[string]any{
		"messages": []map[string]any{
			{"role": "user", "content": map[string]any{"type": "text", "text": string(text)}},
		},
	}
}
