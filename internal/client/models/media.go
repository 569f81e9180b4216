// Package models defines the records the capture-and-sync core persists
// locally and the snapshot it publishes to subscribers.
package models

import (
	"slices"
	"time"
)

// MediaType selects the preprocessing path of a capture.
type MediaType string

const (
	MediaTypePhoto    MediaType = "photo"
	MediaTypeDocument MediaType = "document"
)

// Valid reports whether t is one of the supported kinds.
func (t MediaType) Valid() bool {
	return t == MediaTypePhoto || t == MediaTypeDocument
}

// SyncStatus is the upload state of a MediaRecord.
type SyncStatus string

const (
	SyncStatusPending   SyncStatus = "pending"
	SyncStatusUploading SyncStatus = "uploading"
	SyncStatusSynced    SyncStatus = "synced"
	SyncStatusFailed    SyncStatus = "failed"
)

// Terminal reports whether no queue item may exist for a record in status s.
func (s SyncStatus) Terminal() bool {
	return s == SyncStatusSynced || s == SyncStatusFailed
}

// MediaRecord is the durable unit of work. It is created by the capture
// service in status pending and afterwards mutated only by the sync engine.
type MediaRecord struct {
	// ID is generated at capture time and never reused.
	ID string

	SubjectID string
	// SubjectName is denormalized for display only.
	SubjectName string

	MediaType MediaType

	// Preview is a small JPEG for instant display (photos only).
	Preview []byte
	// BlobRef is the key of the content in the blob store; empty once the
	// blob has been pruned after a successful upload.
	BlobRef string
	// RemotePath and RemoteURL are set only after the endpoint confirmed the upload.
	RemotePath string
	RemoteURL  string

	WorkID   string
	WorkName string
	Caption  string
	Tags     []string

	Width  int
	Height int
	Size   int64

	// OriginalFilename and MimeType describe documents; photos are always JPEG.
	OriginalFilename string
	MimeType         string

	// Checksum is the hex BLAKE2b-256 of the stored content.
	Checksum string

	CapturedAt time.Time
	UploadedAt *time.Time

	SyncStatus      SyncStatus
	SyncError       string
	SyncAttempts    int
	LastSyncAttempt *time.Time
}

// Clone returns a deep copy, so snapshots handed to callers never alias
// slices owned by the store or the engine.
func (m *MediaRecord) Clone() *MediaRecord {
	if m == nil {
		return nil
	}
	c := *m
	c.Preview = slices.Clone(m.Preview)
	c.Tags = slices.Clone(m.Tags)
	if m.UploadedAt != nil {
		t := *m.UploadedAt
		c.UploadedAt = &t
	}
	if m.LastSyncAttempt != nil {
		t := *m.LastSyncAttempt
		c.LastSyncAttempt = &t
	}
	return &c
}

// DisplayCaption is the caption sent with an upload: the explicit caption,
// else the work name, else a generic label per kind.
func (m *MediaRecord) DisplayCaption() string {
	switch {
	case m.Caption != "":
		return m.Caption
	case m.WorkName != "":
		return m.WorkName
	case m.MediaType == MediaTypeDocument:
		return "Document"
	default:
		return "Quick Capture"
	}
}
