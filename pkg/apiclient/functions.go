package apiclient

// FunctionsList is the decoded response of GET /api/functions.
type FunctionsList struct {
	Functions map[string]string `json:"functions"`
}

// ListFunctions fetches the server's registry of advisory function
// signatures, reported by debuggees at startup.
func (c *Client) ListFunctions() (*FunctionsList, error) {
	return getResource[FunctionsList](c, "/api/functions")
}

// RegisterFunction records name's advisory signature with the server.
func (c *Client) RegisterFunction(name, signature string) error {
	return c.post("/api/functions", map[string]string{"name": name, "signature": signature}, nil)
}
