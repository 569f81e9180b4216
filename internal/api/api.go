// Package api holds the JSON shapes exchanged between the device client and
// the upload receiver.
package api

import (
	"encoding/hex"
	"time"

	"golang.org/x/crypto/blake2b"
)

// Paths of the receiver endpoints.
const (
	UploadPath = "/api/media/upload"
	MediaPath  = "/api/media/"
	HealthPath = "/health"
)

// Multipart field names of an upload request.
const (
	FieldFile     = "file"
	FieldMetadata = "metadata"
)

// UploadMetadata is the envelope sent next to the binary payload.
type UploadMetadata struct {
	ID         string    `json:"id"`
	SubjectID  string    `json:"subject_id"`
	MediaType  string    `json:"media_type"`
	CapturedAt time.Time `json:"captured_at"`
	WorkID     string    `json:"work_id,omitempty"`
	Caption    string    `json:"caption,omitempty"`
	Tags       []string  `json:"tags"`
	Width      int       `json:"width,omitempty"`
	Height     int       `json:"height,omitempty"`
	FileName   string    `json:"file_name,omitempty"`
	MimeType   string    `json:"mime_type,omitempty"`
	Checksum   string    `json:"checksum,omitempty"`
}

// Media describes where the receiver stored an upload.
type Media struct {
	ID          string `json:"id,omitempty"`
	StoragePath string `json:"storage_path"`
	PublicURL   string `json:"public_url"`
}

// UploadResponse is returned by the upload endpoint. Success is only
// acknowledged with Success set and a non-empty Media.StoragePath.
type UploadResponse struct {
	Success bool   `json:"success"`
	Media   *Media `json:"media,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Checksum is the content digest carried in UploadMetadata.Checksum:
// hex-encoded BLAKE2b-256.
func Checksum(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}
