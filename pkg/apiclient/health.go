package apiclient

// Live checks GET /health: true if the process is up.
func (c *Client) Live() error {
	return c.get("/health", nil)
}

// Ready checks GET /health/ready: true if the CID store is reachable.
func (c *Client) Ready() error {
	return c.get("/health/ready", nil)
}
