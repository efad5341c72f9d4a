package httpapi

import "time"

// Config configures the HTTP control plane server (Component F).
//
// Unlike the teacher's control plane, there is no JWT section: the
// system's Non-goals explicitly rule out authentication (single-operator,
// localhost-only deployment), so nothing in SPEC_FULL.md exercises a JWT
// dependency the way dittofs's multi-tenant control plane does.
type Config struct {
	// Port is the HTTP port to listen on.
	// Default: 8080
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`

	// Host is the address to bind to.
	// Default: 127.0.0.1 (the localhost constraint is enforced on the
	// client side too; binding elsewhere is still the operator's choice).
	Host string `mapstructure:"host" yaml:"host"`

	ReadTimeout  time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`
}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.Host == "" {
		c.Host = "127.0.0.1"
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 10 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60 * time.Second
	}
}
