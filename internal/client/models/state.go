package models

import "time"

// SyncState is the ephemeral snapshot published to subscribers. It is rebuilt
// from the local store after every queue mutation and never persisted.
type SyncState struct {
	IsOnline     bool
	IsSyncing    bool
	PendingCount int
	FailedCount  int
	LastSyncAt   *time.Time
}
