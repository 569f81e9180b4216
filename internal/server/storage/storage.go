// Package storage puts uploaded media objects into the configured object
// store and removes them again. Two backends exist: any S3-compatible
// service (MinIO, AWS) and Supabase Storage.
package storage

import (
	"context"
	"fmt"

	"github.com/Tredoux555/whale-class-sub004/internal/server/config"
)

// BlobStore stores objects under a key and reports the URL they are
// publicly served from. Delete of a missing key is not an error.
type BlobStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) (publicURL string, err error)
	Delete(ctx context.Context, key string) error
}

// New returns the backend selected by cfg.StorageBackend.
func New(ctx context.Context, cfg *config.Config) (BlobStore, error) {
	switch cfg.StorageBackend {
	case config.BackendS3:
		return NewS3Store(ctx, cfg)
	case config.BackendSupabase:
		return NewSupabaseStore(cfg)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
