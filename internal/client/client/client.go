package client

import (
	"context"

	"github.com/Tredoux555/whale-class-sub004/internal/client/models"
)

// UploadResult is the receiver's acknowledgement of a stored upload.
type UploadResult struct {
	StoragePath string
	PublicURL   string
}

// Client talks to the upload receiver.
type Client interface {
	// Upload submits content with the record's metadata envelope. A nil
	// error means the receiver acknowledged success with a usable path.
	Upload(ctx context.Context, rec *models.MediaRecord, content []byte) (*UploadResult, error)
	// Delete removes the remote copy of a record. Unknown ids are not an error.
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}
