package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Tredoux555/whale-class-sub004/internal/client/client"
	"github.com/Tredoux555/whale-class-sub004/internal/client/models"
	"github.com/Tredoux555/whale-class-sub004/internal/common"
	"github.com/Tredoux555/whale-class-sub004/internal/logging"
)

// RetryPolicy bounds automatic upload attempts.
type RetryPolicy struct {
	// MaxAttempts failed attempts make a record terminally failed.
	MaxAttempts int
	// Delays[n-1] is the pause after the n-th failed attempt. Attempts beyond
	// the schedule reuse the last value.
	Delays []time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 5,
		Delays: []time.Duration{
			1 * time.Second,
			5 * time.Second,
			15 * time.Second,
			60 * time.Second,
			300 * time.Second,
		},
	}
}

// Delay returns the backoff after the given (1-based) failed attempt.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if len(p.Delays) == 0 {
		return 0
	}
	i := min(max(attempt-1, 0), len(p.Delays)-1)
	return p.Delays[i]
}

// Uploader submits content to the receiver.
type Uploader interface {
	Upload(ctx context.Context, rec *models.MediaRecord, content []byte) (*client.UploadResult, error)
}

// Remover deletes the remote copy of a record.
type Remover interface {
	Delete(ctx context.Context, id string) error
}

// SyncEngine drains the upload queue. At most one drain runs at a time,
// however many triggers (captures, connectivity, timer, manual) fire.
type SyncEngine struct {
	store    Store
	uploader Uploader
	observer *Observer
	policy   RetryPolicy
	log      logging.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error

	online  atomic.Bool
	syncing atomic.Bool
	kick    chan struct{}
}

// NewSyncEngine returns an engine that starts offline.
func NewSyncEngine(store Store, uploader Uploader, observer *Observer, policy RetryPolicy, log logging.Logger) *SyncEngine {
	return &SyncEngine{
		store:    store,
		uploader: uploader,
		observer: observer,
		policy:   policy,
		log:      log,
		now:      time.Now,
		sleep:    sleepContext,
		kick:     make(chan struct{}, 1),
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (e *SyncEngine) Online() bool {
	return e.online.Load()
}

// SetOnline records a connectivity change. Going online wakes the worker.
// Going offline stops item pickup at the next check; an upload already in
// flight completes or fails on its own.
func (e *SyncEngine) SetOnline(online bool) {
	prev := e.online.Swap(online)
	if prev == online {
		return
	}
	e.observer.SetOnline(online)
	e.log.Info(context.Background(), "connectivity changed", "online", online)
	if online {
		e.Nudge()
	}
}

// Nudge asks the worker started by Run to attempt a drain. It never blocks.
func (e *SyncEngine) Nudge() {
	select {
	case e.kick <- struct{}{}:
	default:
	}
}

// Run is the background worker. It attempts a drain at start, on every
// Nudge and on every tick of interval, until ctx is cancelled.
func (e *SyncEngine) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		e.tryDrain(ctx)

		select {
		case <-ctx.Done():
			return
		case <-e.kick:
		case <-ticker.C:
		}
	}
}

func (e *SyncEngine) tryDrain(ctx context.Context) {
	err := e.Drain(ctx)
	switch {
	case err == nil:
	case errors.Is(err, common.ErrOffline), errors.Is(err, common.ErrAlreadySyncing):
		e.log.Debug(ctx, "drain skipped", "reason", err)
	case ctx.Err() != nil:
	default:
		e.log.Error(ctx, "drain aborted", "error", err)
	}
}

// Drain uploads queued items in (priority, age) order while online.
// Every drain that starts stamps the last sync time when it ends. It returns common.ErrOffline or common.ErrAlreadySyncing without doing
// anything when it cannot start. Upload failures are absorbed by the retry
// machinery; only Local Store errors and cancellation are returned.
func (e *SyncEngine) Drain(ctx context.Context) error {
	if !e.online.Load() {
		return common.ErrOffline
	}
	if !e.syncing.CompareAndSwap(false, true) {
		return common.ErrAlreadySyncing
	}
	e.observer.SetSyncing(true)
	defer func() {
		e.observer.MarkSynced(e.now())
		e.syncing.Store(false)
		e.observer.SetSyncing(false)
	}()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !e.online.Load() {
			e.log.Info(ctx, "went offline, drain stopped")
			return nil
		}

		item, err := e.store.Repositories().Queue.Next(ctx)
		if err != nil {
			return err
		}
		if item == nil {
			return nil
		}

		if err := e.process(ctx, item); err != nil {
			return err
		}

		if err := e.observer.Refresh(ctx); err != nil {
			e.log.Warn(ctx, "failed to refresh sync state", "error", err)
		}
	}
}

func (e *SyncEngine) process(ctx context.Context, item *models.QueueItem) error {
	log := e.log.With("media_id", item.MediaID, "attempt", item.Attempts+1)
	repos := e.store.Repositories()

	rec, err := repos.Media.Get(ctx, item.MediaID)
	if errors.Is(err, common.ErrorNotFound) {
		log.Warn(ctx, "dropping queue item without record")
		return repos.Queue.Delete(ctx, item.ID)
	}
	if err != nil {
		return err
	}

	if item.Blob == nil {
		log.Warn(ctx, "content missing from local store, marking failed")
		return e.fail(ctx, item, "content missing from local store", false)
	}

	now := e.now()
	err = repos.Media.SetStatus(ctx, rec.ID, models.SyncStatusUploading, &now)
	if errors.Is(err, common.ErrorNotFound) {
		log.Info(ctx, "record deleted before upload, skipping")
		return repos.Queue.Delete(ctx, item.ID)
	}
	if err != nil {
		return err
	}
	rec.SyncStatus = models.SyncStatusUploading
	rec.LastSyncAttempt = &now

	res, upErr := e.uploader.Upload(ctx, rec.Clone(), item.Blob)

	if upErr != nil && ctx.Err() != nil {
		// Shutdown, not a failed attempt: leave the item as it was.
		err := repos.Media.SetStatus(context.WithoutCancel(ctx), rec.ID, models.SyncStatusPending, &now)
		if err != nil && !errors.Is(err, common.ErrorNotFound) {
			log.Warn(ctx, "failed to reset interrupted upload", "error", err)
		}
		return ctx.Err()
	}

	if upErr == nil {
		return e.succeed(ctx, item, res, log)
	}
	return e.retry(ctx, item, upErr, log)
}

func (e *SyncEngine) succeed(ctx context.Context, item *models.QueueItem, res *client.UploadResult, log logging.Logger) error {
	discarded := false
	err := e.store.WithTx(ctx, func(ctx context.Context, r client.Repositories) error {
		if err := r.Queue.Delete(ctx, item.ID); err != nil {
			return err
		}
		// The user may have deleted the record while the upload was in flight.
		rec, err := r.Media.Get(ctx, item.MediaID)
		if errors.Is(err, common.ErrorNotFound) {
			discarded = true
			return nil
		}
		if err != nil {
			return err
		}

		now := e.now()
		rec.SyncStatus = models.SyncStatusSynced
		if rec.UploadedAt == nil {
			rec.UploadedAt = &now
		}
		rec.RemotePath = res.StoragePath
		rec.RemoteURL = res.PublicURL
		rec.SyncError = ""
		return r.Media.Put(ctx, rec)
	})
	if err != nil {
		return err
	}

	if discarded {
		log.Info(ctx, "record deleted during upload, result discarded")
		e.removeOrphan(ctx, item.MediaID, log)
		return nil
	}
	log.Info(ctx, "uploaded", "path", res.StoragePath)
	return nil
}

// removeOrphan deletes the remote copy of an upload whose record is gone.
func (e *SyncEngine) removeOrphan(ctx context.Context, id string, log logging.Logger) {
	rm, ok := e.uploader.(Remover)
	if !ok {
		return
	}
	if err := rm.Delete(ctx, id); err != nil {
		log.Warn(ctx, "failed to remove orphaned upload", "error", err)
	}
}

func (e *SyncEngine) retry(ctx context.Context, item *models.QueueItem, upErr error, log logging.Logger) error {
	now := e.now()
	item.Attempts++
	item.LastAttempt = &now
	item.Error = upErr.Error()

	if item.Attempts >= e.policy.MaxAttempts {
		log.Warn(ctx, "upload failed permanently", "error", upErr)
		return e.fail(ctx, item, item.Error, true)
	}

	item.Demote()
	gone := false
	err := e.store.WithTx(ctx, func(ctx context.Context, r client.Repositories) error {
		rec, err := r.Media.Get(ctx, item.MediaID)
		if errors.Is(err, common.ErrorNotFound) {
			gone = true
			return r.Queue.Delete(ctx, item.ID)
		}
		if err != nil {
			return err
		}
		rec.SyncStatus = models.SyncStatusPending
		rec.SyncAttempts++
		rec.SyncError = item.Error
		rec.LastSyncAttempt = &now
		if err := r.Media.Put(ctx, rec); err != nil {
			return err
		}
		return r.Queue.Put(ctx, item)
	})
	if err != nil {
		return err
	}
	if gone {
		log.Info(ctx, "record deleted during failed upload, not retrying")
		return nil
	}

	delay := e.policy.Delay(item.Attempts)
	log.Info(ctx, "upload failed, will retry", "error", upErr, "backoff", delay, "priority", item.Priority)

	if err := e.observer.Refresh(ctx); err != nil {
		log.Warn(ctx, "failed to refresh sync state", "error", err)
	}
	return e.sleep(ctx, delay)
}

// fail moves a record to the terminal failed status and removes its queue
// item. attempted tells whether an upload attempt preceded the failure.
func (e *SyncEngine) fail(ctx context.Context, item *models.QueueItem, reason string, attempted bool) error {
	now := e.now()
	return e.store.WithTx(ctx, func(ctx context.Context, r client.Repositories) error {
		if err := r.Queue.Delete(ctx, item.ID); err != nil {
			return err
		}
		rec, err := r.Media.Get(ctx, item.MediaID)
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		rec.SyncStatus = models.SyncStatusFailed
		if attempted {
			rec.SyncAttempts++
		}
		rec.SyncError = reason
		rec.LastSyncAttempt = &now
		return r.Media.Put(ctx, rec)
	})
}

// RetryFailed re-enqueues every failed record whose content is still stored,
// at high priority and with attempts reset. Records without content stay
// failed. It returns the number of records re-enqueued.
func (e *SyncEngine) RetryFailed(ctx context.Context) (int, error) {
	repos := e.store.Repositories()
	failed, err := repos.Media.ListByStatus(ctx, models.SyncStatusFailed)
	if err != nil {
		return 0, fmt.Errorf("failed to list failed media: %w", err)
	}

	n := 0
	for _, rec := range failed {
		if rec.BlobRef == "" {
			continue
		}
		if _, err := repos.Blobs.Get(ctx, rec.BlobRef); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				e.log.Warn(ctx, "cannot retry without content", "media_id", rec.ID)
				continue
			}
			return n, err
		}

		err := e.store.WithTx(ctx, func(ctx context.Context, r client.Repositories) error {
			rec.SyncStatus = models.SyncStatusPending
			rec.SyncAttempts = 0
			rec.SyncError = ""
			if err := r.Media.Put(ctx, rec); err != nil {
				return err
			}
			return r.Queue.Put(ctx, &models.QueueItem{
				ID:        rec.ID,
				MediaID:   rec.ID,
				Priority:  models.PriorityHigh,
				CreatedAt: e.now(),
			})
		})
		if err != nil {
			return n, fmt.Errorf("failed to re-enqueue %s: %w", rec.ID, err)
		}
		n++
	}

	if err := e.observer.Refresh(ctx); err != nil {
		e.log.Warn(ctx, "failed to refresh sync state", "error", err)
	}
	if n > 0 {
		e.Nudge()
	}
	return n, nil
}
