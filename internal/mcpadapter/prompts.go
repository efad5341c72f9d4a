package mcpadapter

import "fmt"

type promptArg struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

type promptDef struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Arguments   []promptArg `json:"arguments,omitempty"`
}

// promptDefinitions enumerates the 2 prompts this adapter exposes,
// grounded on BreakpointMCPServer.list_prompts in the original
// mcp_server.py.
var promptDefinitions = []promptDef{
	{Name: "debug-session-start", Description: "Bundle current breakpoints, functions, recent calls, and paused executions into one briefing."},
	{
		Name:        "inspect-paused-call",
		Description: "Bundle one paused call's data and REPL sessions.",
		Arguments:   []promptArg{{Name: "pause_id", Description: "pause identifier", Required: true}},
	},
}

const recentCallsForBriefing = 10

func (s *Server) getPrompt(name string, args map[string]any) (map[string]any, error) {
	switch name {
	case "debug-session-start":
		return map[string]any{
			"breakpoints":  s.listBreakpointsPayload(),
			"functions":    s.toolListFunctions(),
			"recent_calls": s.toolGetCallRecords(map[string]any{"limit": float64(recentCallsForBriefing)}),
			"paused":       s.listPausedPayload(),
		}, nil

	case "inspect-paused-call":
		pauseID, _ := args["pause_id"].(string)
		if pauseID == "" {
			return nil, fmt.Errorf("pause_not_found")
		}
		callData, ok := s.manager.GetPausedExecution(pauseID)
		if !ok {
			return nil, fmt.Errorf("pause_not_found")
		}
		sessions := s.manager.ReplSessionsForPause(pauseID)
		return map[string]any{
			"pause_id":      pauseID,
			"call_data":     callData,
			"repl_sessions": sessions,
		}, nil

	default:
		return nil, fmt.Errorf("unknown prompt: %s", name)
	}
}
