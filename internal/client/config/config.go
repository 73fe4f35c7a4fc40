// Package config handles configuration for the followctl client:
// defaults, an optional JSON file and command-line flags, in that order.
package config

import "time"

// Config holds runtime settings for the followctl client.
//
// Fields:
//   - ServerEndpointAddr: host:port of the gRPC endpoint.
//   - SessionDBPath: SQLite file that keeps the session between runs.
//   - RequestTimeout: deadline applied to every call.
type Config struct {
	ServerEndpointAddr string
	SessionDBPath      string
	RequestTimeout     time.Duration
}

// KnownFlags are the flags consumed by the configuration loaders.
var KnownFlags = []string{"-a", "-f", "-w", "-c", "-config"}

// LoadDefaults populates c with defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.SessionDBPath = "followctl.db"
	c.RequestTimeout = 5 * time.Second
}

// LoadConfig applies defaults, then JSON, then flags. Later sources win.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
