// Package config loads the rtlink HCL configuration file.
package config

import "time"

// Config is the top-level structure of rtlink.hcl. Every block is optional.
type Config struct {
	Log      *LogConfig      `hcl:"log,block" json:"log,omitempty"`
	Registry *RegistryConfig `hcl:"registry,block" json:"registry,omitempty"`
	Netlink  *NetlinkConfig  `hcl:"netlink,block" json:"netlink,omitempty"`
	Metrics  *MetricsConfig  `hcl:"metrics,block" json:"metrics,omitempty"`
}

// LogConfig controls logger construction.
type LogConfig struct {
	Level string `hcl:"level,optional" json:"level,omitempty"` // debug|info|warn|error
	JSON  bool   `hcl:"json,optional" json:"json,omitempty"`
}

// RegistryConfig tunes link creation.
type RegistryConfig struct {
	// CreateAttempts is how many index predictions a create makes before
	// giving up. Defaults to 1.
	CreateAttempts *int `hcl:"create_attempts,optional" json:"create_attempts,omitempty"`

	// RetryDelay is a Go duration string, e.g. "50ms".
	RetryDelay string `hcl:"retry_delay,optional" json:"retry_delay,omitempty"`
}

// NetlinkConfig holds socket options.
type NetlinkConfig struct {
	Strict        *bool `hcl:"strict,optional" json:"strict,omitempty"`
	ReceiveBuffer int   `hcl:"receive_buffer,optional" json:"receive_buffer,omitempty"`
}

// MetricsConfig controls the Prometheus endpoint of "rtlink monitor".
type MetricsConfig struct {
	Listen string `hcl:"listen,optional" json:"listen,omitempty"`
}

// Default returns a config with every block populated with its defaults.
func Default() *Config {
	strict := true
	attempts := 1
	return &Config{
		Log:      &LogConfig{Level: "info"},
		Registry: &RegistryConfig{CreateAttempts: &attempts, RetryDelay: "0s"},
		Netlink:  &NetlinkConfig{Strict: &strict},
		Metrics:  &MetricsConfig{},
	}
}

// applyDefaults fills missing blocks and zero fields.
func (c *Config) applyDefaults() {
	d := Default()
	if c.Log == nil {
		c.Log = d.Log
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Registry == nil {
		c.Registry = d.Registry
	}
	if c.Registry.CreateAttempts == nil {
		c.Registry.CreateAttempts = d.Registry.CreateAttempts
	}
	if c.Registry.RetryDelay == "" {
		c.Registry.RetryDelay = d.Registry.RetryDelay
	}
	if c.Netlink == nil {
		c.Netlink = d.Netlink
	}
	if c.Netlink.Strict == nil {
		c.Netlink.Strict = d.Netlink.Strict
	}
	if c.Metrics == nil {
		c.Metrics = d.Metrics
	}
}

// CreateAttempts returns the registry attempt budget.
func (c *Config) CreateAttempts() int {
	return *c.Registry.CreateAttempts
}

// RetryDelay returns the parsed registry retry delay. Call after Validate.
func (c *Config) RetryDelay() time.Duration {
	d, _ := time.ParseDuration(c.Registry.RetryDelay)
	return d
}

// StrictNetlink reports whether strict GET checking is requested.
func (c *Config) StrictNetlink() bool {
	return c.Netlink.Strict == nil || *c.Netlink.Strict
}
