package config

import (
	"flag"
	"os"
	"time"

	"github.com/Tredoux555/whale-class-sub004/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the upload receiver
//	-t string   device auth token
//	-d string   path of the local database
//	-i int      online check interval in seconds
//	-s int      periodic sync interval in seconds
//	-inbox dir  directory to capture dropped files from
//	-l string   log level (debug, info, warn, error)
//
// Only these flags are taken from os.Args (see flagx.FilterArgs).
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-d", "-i", "-s", "-inbox", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the upload receiver")
	fs.StringVar(&cfg.AuthToken, "t", cfg.AuthToken, "device auth token")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path of the local database")
	fs.StringVar(&cfg.InboxDir, "inbox", cfg.InboxDir, "directory to capture dropped files from")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	syncInterval := fs.Int("s", int(cfg.SyncInterval.Seconds()), "periodic sync interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
	cfg.SyncInterval = time.Duration(*syncInterval) * time.Second
}
