package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Tredoux555/whale-class-sub004/internal/client/models"
	"github.com/Tredoux555/whale-class-sub004/internal/logging"
)

// Listener receives sync state snapshots.
type Listener func(models.SyncState)

// Observer holds the current SyncState and pushes every change to its
// subscribers synchronously. Listeners always get the latest snapshot;
// intermediate ones may be skipped by a listener subscribing late.
//
// Listeners must not call SetOnline, SetSyncing, MarkSynced or Refresh: those
// hold the delivery lock while listeners run. Subscribe and State are safe.
type Observer struct {
	store Store
	log   logging.Logger

	// notifyMu serializes mutations with their delivery so that listeners
	// observe snapshots in the order they were produced.
	notifyMu sync.Mutex

	mu        sync.Mutex
	state     models.SyncState
	listeners map[int]Listener
	nextID    int
}

func NewObserver(store Store, log logging.Logger) *Observer {
	return &Observer{
		store:     store,
		log:       log,
		listeners: make(map[int]Listener),
	}
}

// Subscribe registers l and immediately delivers the current state to it.
// The returned function unregisters l; calling it more than once is harmless.
func (o *Observer) Subscribe(l Listener) (unsubscribe func()) {
	o.mu.Lock()
	id := o.nextID
	o.nextID++
	o.listeners[id] = l
	state := o.snapshotLocked()
	o.mu.Unlock()

	o.deliver(l, state)

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			delete(o.listeners, id)
			o.mu.Unlock()
		})
	}
}

// State returns the current snapshot.
func (o *Observer) State() models.SyncState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

func (o *Observer) SetOnline(online bool) {
	o.update(func(s *models.SyncState) { s.IsOnline = online })
}

func (o *Observer) SetSyncing(syncing bool) {
	o.update(func(s *models.SyncState) { s.IsSyncing = syncing })
}

// MarkSynced records the completion time of a drain that emptied the queue.
func (o *Observer) MarkSynced(at time.Time) {
	o.update(func(s *models.SyncState) { s.LastSyncAt = &at })
}

// Refresh recomputes the pending and failed counts from the Local Store and
// broadcasts the result.
func (o *Observer) Refresh(ctx context.Context) error {
	o.notifyMu.Lock()
	defer o.notifyMu.Unlock()

	repos := o.store.Repositories()
	pending, err := repos.Queue.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count queue: %w", err)
	}
	failed, err := repos.Media.CountByStatus(ctx, models.SyncStatusFailed)
	if err != nil {
		return fmt.Errorf("failed to count failed media: %w", err)
	}

	o.applyLocked(func(s *models.SyncState) {
		s.PendingCount = pending
		s.FailedCount = failed
	})
	return nil
}

func (o *Observer) update(fn func(s *models.SyncState)) {
	o.notifyMu.Lock()
	defer o.notifyMu.Unlock()
	o.applyLocked(fn)
}

// applyLocked must be called with notifyMu held.
func (o *Observer) applyLocked(fn func(s *models.SyncState)) {
	o.mu.Lock()
	fn(&o.state)
	state := o.snapshotLocked()
	listeners := make([]Listener, 0, len(o.listeners))
	for _, l := range o.listeners {
		listeners = append(listeners, l)
	}
	o.mu.Unlock()

	for _, l := range listeners {
		o.deliver(l, state)
	}
}

func (o *Observer) snapshotLocked() models.SyncState {
	s := o.state
	if s.LastSyncAt != nil {
		t := *s.LastSyncAt
		s.LastSyncAt = &t
	}
	return s
}

func (o *Observer) deliver(l Listener, state models.SyncState) {
	defer func() {
		if r := recover(); r != nil {
			o.log.Error(context.Background(), "sync state listener panicked", "panic", r)
		}
	}()
	l(state)
}
