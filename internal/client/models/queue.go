package models

import "time"

// Queue priorities. Lower numbers are serviced first.
const (
	PriorityHigh    = 1
	PriorityDefault = 3
	// PriorityLowest caps demotion after failed attempts.
	PriorityLowest = 5
)

// QueueItem is an upload work order for one MediaRecord. It exists exactly
// while the record is pending, uploading or waiting for a retry.
type QueueItem struct {
	// ID equals the MediaID: a record has at most one queue entry.
	ID      string
	MediaID string

	// Blob is the content to upload. It is loaded from the blob store when the
	// item is fetched and is nil when the blob is missing.
	Blob []byte

	Priority    int
	CreatedAt   time.Time
	Attempts    int
	LastAttempt *time.Time
	Error       string
}

// Demote lowers the urgency of an item after a failed attempt.
func (q *QueueItem) Demote() {
	q.Priority = min(q.Priority+1, PriorityLowest)
}
