// Package config loads runtime configuration for the capture client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// # JSON schema
//
// Durations use timex.Duration, so values can be strings like "3s" or
// integer nanoseconds:
//
//	{
//	  "server_url": "https://media.example.org",
//	  "auth_token": "eyJhbGciOi...",
//	  "database_path": "/var/lib/capture/capture.db",
//	  "inbox_dir": "/var/lib/capture/inbox",
//	  "online_check_interval": "3s",
//	  "sync_interval": "30s",
//	  "max_attempts": 5,
//	  "retry_delays": ["1s", "5s", "15s", "1m", "5m"],
//	  "synced_retention": "720h"
//	}
package config
