package debugclient

import (
	"errors"
	"fmt"
	"os"
)

// Sentinel errors returned by Client/Proxy methods that the caller can
// recover from (as opposed to the fatal, process-exiting failures below,
// which are reserved for "the control plane is unreachable at all").
var (
	ErrMissingCallID  = errors.New("debugclient: server response is missing call_id")
	ErrUnknownAction  = errors.New("debugclient: server returned an unrecognized action")
	ErrPollTimeout    = errors.New("debugclient: poll loop exceeded its timeout without a resume action")
	ErrObjectNotCached = errors.New("debugclient: referenced object is not present locally and no data was attached")
	ErrUnknownReplacement = errors.New("debugclient: replacement function is not registered locally")
)

// exitWithServerFailure prints a diagnostic report and terminates the
// process immediately. A debuggee that cannot reach its control plane at
// all has no safe way to continue: it might silently skip a breakpoint
// the operator expects to fire. Mirrors the original exit_with_server_failure.
func exitWithServerFailure(summary, serverURL string, cause error) {
	lines := []string{
		"cideldill: failed to contact the breakpoint server.",
		"",
		"Details:",
		fmt.Sprintf("- Summary: %s", summary),
	}
	if serverURL != "" {
		lines = append(lines, fmt.Sprintf("- Server URL: %s", serverURL))
	}
	if cause != nil {
		lines = append(lines, fmt.Sprintf("- Error: %v", cause))
	}
	lines = append(lines,
		"",
		"Most likely causes:",
		"1. cideldilld is not running.",
		"2. The server is listening on a different host or port.",
		"3. The server is unreachable from this environment.",
		"",
		"Potential fixes:",
		"1. Start cideldilld and retry.",
		"2. Set CIDELDILL_SERVER_URL to the correct address.",
		"3. Check that the port is exposed and reachable.",
		"",
		"Exiting now.",
	)
	for _, line := range lines {
		fmt.Fprintln(os.Stderr, line)
	}
	os.Exit(1)
}

// exitWithBreakpointUnavailable reports that a callable could not be
// safely registered for breakpointing and halts, rather than letting the
// callable run with debug on but breakpoints silently unable to attach.
func exitWithBreakpointUnavailable(name string, targetType string, serverURL string, cause error) {
	lines := []string{
		"cideldill: breakpoint registration failed for a callable.",
		"",
		"Details:",
		fmt.Sprintf("- Callable name: %s", name),
		fmt.Sprintf("- Target type: %s", targetType),
	}
	if serverURL != "" {
		lines = append(lines, fmt.Sprintf("- Server URL: %s", serverURL))
	}
	if cause != nil {
		lines = append(lines, fmt.Sprintf("- Error: %v", cause))
	}
	lines = append(lines,
		"",
		"Impact:",
		"This callable can run when debug is off but cannot be reliably",
		"breakpointed with debug on. Execution has been halted to avoid",
		"silently missing breakpoints.",
		"",
		"Exiting now.",
	)
	for _, line := range lines {
		fmt.Fprintln(os.Stderr, line)
	}
	os.Exit(1)
}
