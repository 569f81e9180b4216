package config

import (
	"flag"
	"os"
	"time"

	"github.com/Tredoux555/whale-class-sub004/internal/flagx"
)

// parseFlags populates selected receiver Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      issued token validity, hours
//	-storage    storage backend ("s3" or "supabase")
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   bucket name (both backends)
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-supabase-url string
//	-supabase-key string
//
// Only these flags are taken from os.Args (see flagx.FilterArgs); -issue
// and -c belong to other parsers.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-d", "-s", "-t", "-storage", "-u", "-p", "-b", "-g", "-e", "-supabase-url", "-supabase-key",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.ListenAddr, "a", config.ListenAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	tokenValidity := fs.Int("t", int(config.TokenValidity.Hours()), "issued token validity (in hours)")

	fs.StringVar(&config.StorageBackend, "storage", config.StorageBackend, "storage backend (s3 or supabase)")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	bucket := fs.String("b", "", "bucket name")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.SupabaseURL, "supabase-url", config.SupabaseURL, "Supabase project URL")
	fs.StringVar(&config.SupabaseKey, "supabase-key", config.SupabaseKey, "Supabase service role key")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.TokenValidity = time.Duration(*tokenValidity) * time.Hour
	if *bucket != "" {
		config.S3Bucket = *bucket
		config.SupabaseBucket = *bucket
	}
}
