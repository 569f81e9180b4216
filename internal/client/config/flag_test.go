package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"cmd", "-a", "https://media.example.org", "-t", "tok", "-d", "/tmp/c.db",
				"-i", "10", "-s", "60", "-inbox", "/tmp/inbox", "-l", "debug"},
			expected: &Config{
				ServerURL:           "https://media.example.org",
				AuthToken:           "tok",
				DatabasePath:        "/tmp/c.db",
				InboxDir:            "/tmp/inbox",
				LogLevel:            "debug",
				OnlineCheckInterval: 10 * time.Second,
				SyncInterval:        60 * time.Second,
			},
		},
		{
			name:     "unknown flags are ignored",
			args:     []string{"cmd", "-c", "cfg.json", "-i", "7"},
			expected: &Config{OnlineCheckInterval: 7 * time.Second},
		},
		{
			name:        "incorrect check interval",
			args:        []string{"cmd", "-i", "abc"},
			expectPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args
			config := &Config{}

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(config) })
				return
			}
			require.NotPanics(t, func() { parseFlags(config) })
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}
