package apiclient

// BreakpointsList is the decoded response of GET /api/breakpoints.
type BreakpointsList struct {
	Breakpoints    []string          `json:"breakpoints"`
	Behaviors      map[string]string `json:"behaviors"`
	AfterBehaviors map[string]string `json:"after_behaviors"`
	Replacements   map[string]string `json:"replacements"`
}

// ListBreakpoints fetches every registered breakpoint and its behaviors.
func (c *Client) ListBreakpoints() (*BreakpointsList, error) {
	return getResource[BreakpointsList](c, "/api/breakpoints")
}

// AddBreakpoint registers a breakpoint on functionName with an optional
// initial behavior and advisory signature.
func (c *Client) AddBreakpoint(functionName, behavior, signature string) error {
	body := map[string]string{"function_name": functionName}
	if behavior != "" {
		body["behavior"] = behavior
	}
	if signature != "" {
		body["signature"] = signature
	}
	return c.post(resourcePath("/api/breakpoints"), body, nil)
}

// RemoveBreakpoint deletes the breakpoint on functionName.
func (c *Client) RemoveBreakpoint(functionName string) error {
	return deleteResource(c, resourcePath("/api/breakpoints/%s", functionName))
}

// SetBreakpointBehavior sets the before-call behavior for functionName.
func (c *Client) SetBreakpointBehavior(functionName, behavior string) error {
	return c.post(resourcePath("/api/breakpoints/%s/behavior", functionName),
		map[string]string{"behavior": behavior}, nil)
}

// SetAfterBreakpointBehavior sets the after-call behavior for functionName.
func (c *Client) SetAfterBreakpointBehavior(functionName, behavior string) error {
	return c.post(resourcePath("/api/breakpoints/%s/after_behavior", functionName),
		map[string]string{"behavior": behavior}, nil)
}

// SetBreakpointReplacement points functionName at a replacement function.
// Pass an empty replacement to clear it.
func (c *Client) SetBreakpointReplacement(functionName, replacement string) error {
	return c.post(resourcePath("/api/breakpoints/%s/replacement", functionName),
		map[string]string{"replacement_function": replacement}, nil)
}

// BreakpointHistory is one recorded call against a breakpointed function.
type BreakpointHistory struct {
	History []map[string]any `json:"history"`
}

// History fetches up to limit recent call records for functionName. A
// limit of 0 uses the server's default.
func (c *Client) History(functionName string, limit int) (*BreakpointHistory, error) {
	path := resourcePath("/api/breakpoints/%s/history", functionName)
	if limit > 0 {
		path = resourcePath("%s?limit=%d", path, limit)
	}
	return getResource[BreakpointHistory](c, path)
}

// GetDefaultBehavior fetches the fallback behavior used for functions
// with no breakpoint of their own.
func (c *Client) GetDefaultBehavior() (string, error) {
	resp, err := getResource[map[string]string](c, "/api/behavior")
	if err != nil {
		return "", err
	}
	return (*resp)["default_behavior"], nil
}

// SetDefaultBehavior sets the fallback behavior.
func (c *Client) SetDefaultBehavior(behavior string) error {
	return c.post("/api/behavior", map[string]string{"behavior": behavior}, nil)
}
