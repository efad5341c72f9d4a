package mcpadapter

import (
	"context"
	"fmt"
	"strings"
)

type resourceDef struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description"`
	MimeType    string `json:"mimeType"`
}

// resourceDefinitions enumerates the 5 read-only resources this adapter
// exposes, grounded on BreakpointMCPServer.list_resources in the
// original mcp_server.py.
var resourceDefinitions = []resourceDef{
	{"breakpoint://status", "status", "Summary counts: breakpoints, paused executions, total calls.", "application/json"},
	{"breakpoint://breakpoints", "breakpoints", "Every breakpoint, its behaviors, and replacement.", "application/json"},
	{"breakpoint://paused", "paused", "Every execution currently paused.", "application/json"},
	{"breakpoint://call-history", "call-history", "The most recent completed calls.", "application/json"},
	{"breakpoint://functions", "functions", "Every function the debuggee has registered.", "application/json"},
}

const callHistoryResourceLimit = 50

func (s *Server) readResource(ctx context.Context, uri string) (map[string]any, error) {
	switch strings.TrimSuffix(uri, "/") {
	case "breakpoint://status":
		return map[string]any{
			"breakpoints": len(s.manager.Breakpoints()),
			"paused":      len(s.manager.GetPausedExecutions()),
			"total_calls": len(s.manager.CallRecords(0)),
		}, nil
	case "breakpoint://breakpoints":
		return s.listBreakpointsPayload(), nil
	case "breakpoint://paused":
		return s.listPausedPayload(), nil
	case "breakpoint://call-history":
		return s.toolGetCallRecords(map[string]any{"limit": float64(callHistoryResourceLimit)}), nil
	case "breakpoint://functions":
		return s.toolListFunctions(), nil
	default:
		return nil, fmt.Errorf("unknown resource: %s", uri)
	}
}
