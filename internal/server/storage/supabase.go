package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Tredoux555/whale-class-sub004/internal/server/config"
	storagego "github.com/supabase-community/storage-go"
)

// supabaseAPI is the part of the storage-go client the store uses. The
// client calls take no context, so cancellation is checked before each call.
type supabaseAPI interface {
	upload(bucket, path string, data io.Reader, contentType string) error
	remove(bucket string, paths []string) error
}

type storageGoClient struct {
	c *storagego.Client
}

func (g storageGoClient) upload(bucket, path string, data io.Reader, contentType string) error {
	upsert := true
	_, err := g.c.UploadFile(bucket, path, data, storagego.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	return err
}

func (g storageGoClient) remove(bucket string, paths []string) error {
	_, err := g.c.RemoveFile(bucket, paths)
	return err
}

// SupabaseStore keeps objects in a Supabase Storage bucket.
type SupabaseStore struct {
	client  supabaseAPI
	bucket  string
	baseURL string
}

// NewSupabaseStore connects to the storage API of the project at cfg.SupabaseURL
// using the service role key.
func NewSupabaseStore(cfg *config.Config) (*SupabaseStore, error) {
	if cfg.SupabaseURL == "" || cfg.SupabaseKey == "" {
		return nil, errors.New("supabase url and key are required")
	}

	baseURL := strings.TrimRight(cfg.SupabaseURL, "/")
	client := storagego.NewClient(baseURL+"/storage/v1", cfg.SupabaseKey, nil)

	return &SupabaseStore{
		client:  storageGoClient{c: client},
		bucket:  cfg.SupabaseBucket,
		baseURL: baseURL,
	}, nil
}

func (s *SupabaseStore) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := s.client.upload(s.bucket, key, bytes.NewReader(data), contentType); err != nil {
		return "", fmt.Errorf("supabase upload error: %w", err)
	}
	return s.PublicURL(key), nil
}

func (s *SupabaseStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.client.remove(s.bucket, []string{key}); err != nil {
		return fmt.Errorf("supabase remove error: %w", err)
	}
	return nil
}

// PublicURL is where a public bucket serves key.
func (s *SupabaseStore) PublicURL(key string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, key)
}
