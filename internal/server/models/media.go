// Package models defines receiver-side data models persisted in the database.
package models

import "time"

// Media is one uploaded capture. The content lives in object storage under
// StoragePath; this row carries the metadata the device sent with it.
type Media struct {
	ID          string
	SubjectID   string
	MediaType   string
	WorkID      string
	Caption     string
	Tags        []string
	Width       int
	Height      int
	FileName    string
	MimeType    string
	Checksum    string
	Size        int64
	StoragePath string
	PublicURL   string
	// DeviceID is the device the last upload came from.
	DeviceID   string
	CapturedAt time.Time
	UploadedAt time.Time
}
