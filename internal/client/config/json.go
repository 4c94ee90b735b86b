package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/what-to-eat/client/internal/flagx"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Timeouts are
// plain integer seconds in the file; they are converted to time.Duration
// when copied into the runtime Config.
type JsonConfig struct {
	DatabasePath        *string `json:"database_path"`
	HTTPTimeoutSeconds  *int    `json:"http_timeout_seconds"`
	ProbeTimeoutSeconds *int    `json:"probe_timeout_seconds"`
	LogLevel            *string `json:"log_level"`
	LogPretty           *bool   `json:"log_pretty"`
}

// parseJson overlays Config with values loaded from a JSON file. The file
// path comes from the -c/-config flags; when absent, nothing is loaded.
// Fields missing from the file keep their current values. Read or unmarshal
// errors panic (the process cannot start with a broken explicit config).
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigFileFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.DatabasePath != nil {
		cfg.DatabasePath = *jc.DatabasePath
	}
	if jc.HTTPTimeoutSeconds != nil {
		cfg.HTTPTimeout = time.Duration(*jc.HTTPTimeoutSeconds) * time.Second
	}
	if jc.ProbeTimeoutSeconds != nil {
		cfg.ProbeTimeout = time.Duration(*jc.ProbeTimeoutSeconds) * time.Second
	}
	if jc.LogLevel != nil {
		cfg.LogLevel = *jc.LogLevel
	}
	if jc.LogPretty != nil {
		cfg.LogPretty = *jc.LogPretty
	}
}
