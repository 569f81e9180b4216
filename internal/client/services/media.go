package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Tredoux555/whale-class-sub004/internal/client/client"
	"github.com/Tredoux555/whale-class-sub004/internal/client/models"
	"github.com/Tredoux555/whale-class-sub004/internal/logging"
)

const defaultRemoteDeleteTimeout = 10 * time.Second

// MediaService is the surface the UI layers use.
type MediaService interface {
	Capture(ctx context.Context, blob []byte, opts CaptureOptions) (*models.MediaRecord, error)
	Subscribe(l Listener) (unsubscribe func())
	State() models.SyncState
	// RetryFailed re-enqueues failed records and returns how many were queued.
	RetryFailed(ctx context.Context) (int, error)
	// ForceSyncNow runs a drain in the calling goroutine.
	ForceSyncNow(ctx context.Context) error
	ListBySubject(ctx context.Context, subjectID string) ([]*models.MediaRecord, error)
	ListAll(ctx context.Context) ([]*models.MediaRecord, error)
	Get(ctx context.Context, id string) (*models.MediaRecord, error)
	DeleteByID(ctx context.Context, id string) error
	// Prune frees the local content of records synced before now-olderThan.
	// The records themselves are kept.
	Prune(ctx context.Context, olderThan time.Duration) (int, error)
}

type mediaService struct {
	store    Store
	capture  *CaptureService
	engine   *SyncEngine
	observer *Observer
	remote   Remover
	log      logging.Logger

	now                 func() time.Time
	remoteDeleteTimeout time.Duration
}

// NewMediaService wires the facade. remote may be nil, in which case deletes
// stay local.
func NewMediaService(store Store, capture *CaptureService, engine *SyncEngine, observer *Observer, remote Remover, log logging.Logger) MediaService {
	return &mediaService{
		store:               store,
		capture:             capture,
		engine:              engine,
		observer:            observer,
		remote:              remote,
		log:                 log,
		now:                 time.Now,
		remoteDeleteTimeout: defaultRemoteDeleteTimeout,
	}
}

func (s *mediaService) Capture(ctx context.Context, blob []byte, opts CaptureOptions) (*models.MediaRecord, error) {
	return s.capture.Capture(ctx, blob, opts)
}

func (s *mediaService) Subscribe(l Listener) func() {
	return s.observer.Subscribe(l)
}

func (s *mediaService) State() models.SyncState {
	return s.observer.State()
}

func (s *mediaService) RetryFailed(ctx context.Context) (int, error) {
	return s.engine.RetryFailed(ctx)
}

func (s *mediaService) ForceSyncNow(ctx context.Context) error {
	return s.engine.Drain(ctx)
}

func (s *mediaService) ListBySubject(ctx context.Context, subjectID string) ([]*models.MediaRecord, error) {
	recs, err := s.store.Repositories().Media.ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("error listing media: %w", err)
	}
	return recs, nil
}

func (s *mediaService) ListAll(ctx context.Context) ([]*models.MediaRecord, error) {
	recs, err := s.store.Repositories().Media.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing media: %w", err)
	}
	return recs, nil
}

func (s *mediaService) Get(ctx context.Context, id string) (*models.MediaRecord, error) {
	rec, err := s.store.Repositories().Media.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error retrieving media: %w", err)
	}
	return rec, nil
}

// DeleteByID removes the record, its content and its queue item locally,
// then asks the receiver to delete the uploaded copy. The remote delete is
// best-effort: its failure is logged and does not undo the local delete.
func (s *mediaService) DeleteByID(ctx context.Context, id string) error {
	rec, err := s.store.Repositories().Media.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("error deleting media: %w", err)
	}

	err = s.store.WithTx(ctx, func(ctx context.Context, r client.Repositories) error {
		if err := r.Queue.Delete(ctx, id); err != nil {
			return err
		}
		if rec.BlobRef != "" {
			if err := r.Blobs.Delete(ctx, rec.BlobRef); err != nil {
				return err
			}
		}
		return r.Media.Delete(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("error deleting media: %w", err)
	}

	if err := s.observer.Refresh(ctx); err != nil {
		s.log.Warn(ctx, "failed to refresh sync state", "error", err)
	}

	if rec.RemotePath != "" && s.remote != nil {
		rctx, cancel := context.WithTimeout(ctx, s.remoteDeleteTimeout)
		defer cancel()
		if err := s.remote.Delete(rctx, id); err != nil {
			s.log.Warn(ctx, "remote delete failed", "media_id", id, "error", err)
		}
	}
	return nil
}

func (s *mediaService) Prune(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := s.now().Add(-olderThan)

	synced, err := s.store.Repositories().Media.ListByStatus(ctx, models.SyncStatusSynced)
	if err != nil {
		return 0, fmt.Errorf("error listing synced media: %w", err)
	}

	n := 0
	for _, rec := range synced {
		if rec.BlobRef == "" || rec.UploadedAt == nil || !rec.UploadedAt.Before(cutoff) {
			continue
		}
		err := s.store.WithTx(ctx, func(ctx context.Context, r client.Repositories) error {
			if err := r.Blobs.Delete(ctx, rec.BlobRef); err != nil {
				return err
			}
			rec.BlobRef = ""
			return r.Media.Put(ctx, rec)
		})
		if err != nil {
			return n, fmt.Errorf("error pruning %s: %w", rec.ID, err)
		}
		n++
	}

	if n > 0 {
		s.log.Info(ctx, "pruned synced content", "count", n, "cutoff", cutoff)
	}
	return n, nil
}
