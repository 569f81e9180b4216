package config

import (
	"encoding/json"
	"os"

	"github.com/Tredoux555/whale-class-sub004/internal/flagx"
	"github.com/Tredoux555/whale-class-sub004/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations
// accept strings like "3s" or integer nanoseconds.
type JsonConfig struct {
	ServerURL           string           `json:"server_url"`
	AuthToken           string           `json:"auth_token"`
	DatabasePath        string           `json:"database_path"`
	InboxDir            string           `json:"inbox_dir"`
	LogLevel            string           `json:"log_level"`
	OnlineCheckInterval timex.Duration   `json:"online_check_interval"`
	SyncInterval        timex.Duration   `json:"sync_interval"`
	RequestTimeout      timex.Duration   `json:"request_timeout"`
	MaxAttempts         int              `json:"max_attempts"`
	RetryDelays         []timex.Duration `json:"retry_delays"`
	SyncedRetention     timex.Duration   `json:"synced_retention"`
}

// parseJson overlays Config with the values present in the JSON file named
// by -c or -config. Keys missing from the file keep their current value.
// Panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigFileFlag(os.Args[1:])
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.ServerURL, jc.ServerURL)
	setString(&cfg.AuthToken, jc.AuthToken)
	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.InboxDir, jc.InboxDir)
	setString(&cfg.LogLevel, jc.LogLevel)

	if jc.OnlineCheckInterval.Duration > 0 {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.SyncInterval.Duration > 0 {
		cfg.SyncInterval = jc.SyncInterval.Duration
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.MaxAttempts > 0 {
		cfg.MaxAttempts = jc.MaxAttempts
	}
	if len(jc.RetryDelays) > 0 {
		cfg.RetryDelays = timex.Durations(jc.RetryDelays)
	}
	if jc.SyncedRetention.Duration > 0 {
		cfg.SyncedRetention = jc.SyncedRetention.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
