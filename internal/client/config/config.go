package config

import "time"

// Config holds runtime settings for the notesum terminal client.
//
// Fields:
//   - ServerURL: base URL of the notesum REST API.
//   - RequestTimeout: upper bound for a single API call.
//   - OnlineCheckInterval: how often the client probes /health.
//   - StateFile: SQLite file keeping the session and the unsent draft.
//   - ExportDir: directory, relative to the working directory, for exports.
type Config struct {
	ServerURL           string
	RequestTimeout      time.Duration
	OnlineCheckInterval time.Duration
	StateFile           string
	ExportDir           string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:8080"
	c.RequestTimeout = 90 * time.Second
	c.OnlineCheckInterval = 5 * time.Second
	c.StateFile = "notesum.db"
	c.ExportDir = "exports"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present). Command-line flags are bound on top by the cobra root
// command.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	return cfg
}
