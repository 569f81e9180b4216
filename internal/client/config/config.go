package config

import "time"

// Config holds runtime settings for the capture client.
//
// Units: all intervals and timeouts are time.Duration values.
type Config struct {
	ServerURL string
	AuthToken string

	DatabasePath string
	InboxDir     string
	LogLevel     string

	OnlineCheckInterval time.Duration
	SyncInterval        time.Duration
	RequestTimeout      time.Duration

	MaxAttempts int
	RetryDelays []time.Duration

	// SyncedRetention is how long uploaded content is kept locally; zero keeps it forever.
	SyncedRetention time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.AuthToken = ""
	c.DatabasePath = "capture.db"
	c.InboxDir = ""
	c.LogLevel = "info"
	c.OnlineCheckInterval = 3 * time.Second
	c.SyncInterval = 30 * time.Second
	c.RequestTimeout = 60 * time.Second
	c.MaxAttempts = 5
	c.RetryDelays = []time.Duration{
		1 * time.Second,
		5 * time.Second,
		15 * time.Second,
		60 * time.Second,
		300 * time.Second,
	}
	c.SyncedRetention = 30 * 24 * time.Hour
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
