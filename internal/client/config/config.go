// Package config handles process configuration for the what-to-eat CLI:
// defaults, JSON file overlay, environment overlay, and command-line flags.
//
// Note this is distinct from the settings store: the store keeps the durable
// user-facing values (server address, credentials), while this package only
// configures the process itself.
package config

import "time"

// Config holds runtime settings for the client process.
type Config struct {
	// DatabasePath is the SQLite file backing the settings store.
	DatabasePath string `env:"WTE_DB_PATH"`
	// HTTPTimeout bounds every regular API request.
	HTTPTimeout time.Duration `env:"WTE_HTTP_TIMEOUT"`
	// ProbeTimeout bounds the health probe used to validate a candidate
	// server address.
	ProbeTimeout time.Duration `env:"WTE_PROBE_TIMEOUT"`
	// LogLevel is the minimum log level: debug, info, warn, error.
	LogLevel string `env:"WTE_LOG_LEVEL"`
	// LogPretty switches log output from JSON to a console format.
	LogPretty bool `env:"WTE_LOG_PRETTY"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabasePath = "whattoeat.db"
	c.HTTPTimeout = 30 * time.Second
	c.ProbeTimeout = 10 * time.Second
	c.LogLevel = "info"
	c.LogPretty = true
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if a config file was given), environment variables, and
// command-line flags. Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
