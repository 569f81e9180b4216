package config

import (
	"encoding/json"
	"os"

	"github.com/Tredoux555/whale-class-sub004/internal/flagx"
	"github.com/Tredoux555/whale-class-sub004/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// TokenValidity accepts both strings such as "720h" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON configuration
// files. Present keys are copied into the runtime Config.
type JsonConfig struct {
	ListenAddr     string         `json:"listen_addr"`
	DatabaseDSN    string         `json:"database_dsn"`
	SecretKey      string         `json:"secret_key"`
	TokenValidity  timex.Duration `json:"token_validity"`
	StorageBackend string         `json:"storage_backend"`
	S3RootUser     string         `json:"s3_root_user"`
	S3RootPassword string         `json:"s3_root_password"`
	S3Bucket       string         `json:"s3_bucket"`
	S3Region       string         `json:"s3_region"`
	S3BaseEndpoint string         `json:"s3_base_endpoint"`
	SupabaseURL    string         `json:"supabase_url"`
	SupabaseKey    string         `json:"supabase_key"`
	SupabaseBucket string         `json:"supabase_bucket"`
	MaxUploadSize  int64          `json:"max_upload_size"`
}

// parseJson loads configuration values from the JSON file named by the
// -c or -config flag into cfg. Without the flag nothing is loaded.
// Panics if the file cannot be read or parsed.
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

	for dst, v := range map[*string]string{
		&cfg.ListenAddr:     jc.ListenAddr,
		&cfg.DatabaseDSN:    jc.DatabaseDSN,
		&cfg.SecretKey:      jc.SecretKey,
		&cfg.StorageBackend: jc.StorageBackend,
		&cfg.S3RootUser:     jc.S3RootUser,
		&cfg.S3RootPassword: jc.S3RootPassword,
		&cfg.S3Bucket:       jc.S3Bucket,
		&cfg.S3Region:       jc.S3Region,
		&cfg.S3BaseEndpoint: jc.S3BaseEndpoint,
		&cfg.SupabaseURL:    jc.SupabaseURL,
		&cfg.SupabaseKey:    jc.SupabaseKey,
		&cfg.SupabaseBucket: jc.SupabaseBucket,
	} {
		if v != "" {
			*dst = v
		}
	}

	if jc.TokenValidity.Duration > 0 {
		cfg.TokenValidity = jc.TokenValidity.Duration
	}
	if jc.MaxUploadSize > 0 {
		cfg.MaxUploadSize = jc.MaxUploadSize
	}
}
