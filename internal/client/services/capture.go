package services

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/Tredoux555/whale-class-sub004/internal/api"
	"github.com/Tredoux555/whale-class-sub004/internal/client/client"
	"github.com/Tredoux555/whale-class-sub004/internal/client/imagex"
	"github.com/Tredoux555/whale-class-sub004/internal/client/models"
	"github.com/Tredoux555/whale-class-sub004/internal/common"
	"github.com/Tredoux555/whale-class-sub004/internal/logging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// CaptureOptions is the caller-supplied metadata of a capture.
type CaptureOptions struct {
	SubjectID   string
	SubjectName string
	WorkID      string
	WorkName    string
	Caption     string
	Tags        []string
	MediaType   models.MediaType

	// OriginalFilename and MimeType describe documents. An empty MimeType is
	// sniffed from the content.
	OriginalFilename string
	MimeType         string

	// Priority of the queue item; zero means models.PriorityDefault.
	Priority int
}

// Nudger wakes the sync worker.
type Nudger interface {
	Nudge()
}

// CaptureService turns raw captures into durable local records. It never
// touches the network.
type CaptureService struct {
	store    Store
	observer *Observer
	nudger   Nudger
	log      logging.Logger

	now   func() time.Time
	newID func() string
}

func NewCaptureService(store Store, observer *Observer, nudger Nudger, log logging.Logger) *CaptureService {
	return &CaptureService{
		store:    store,
		observer: observer,
		nudger:   nudger,
		log:      log,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Capture preprocesses blob according to opts.MediaType and stores the
// record, its content and its queue item in one transaction. It returns the
// pending record as soon as that transaction commits. On any error nothing
// is stored.
func (s *CaptureService) Capture(ctx context.Context, blob []byte, opts CaptureOptions) (*models.MediaRecord, error) {
	if opts.SubjectID == "" {
		return nil, common.ErrSubjectRequired
	}
	if !opts.MediaType.Valid() {
		return nil, fmt.Errorf("%w: %q", common.ErrUnsupportedMediaType, opts.MediaType)
	}

	rec := &models.MediaRecord{
		ID:          s.newID(),
		SubjectID:   opts.SubjectID,
		SubjectName: opts.SubjectName,
		MediaType:   opts.MediaType,
		WorkID:      opts.WorkID,
		WorkName:    opts.WorkName,
		Caption:     opts.Caption,
		Tags:        slices.Clone(opts.Tags),
		CapturedAt:  s.now().UTC(),
		SyncStatus:  models.SyncStatusPending,
	}

	content := blob
	switch opts.MediaType {
	case models.MediaTypePhoto:
		p, err := imagex.Process(blob)
		if err != nil {
			return nil, err
		}
		content = p.JPEG
		rec.Preview = p.Preview
		rec.Width = p.Width
		rec.Height = p.Height
		rec.MimeType = "image/jpeg"
	case models.MediaTypeDocument:
		rec.OriginalFilename = opts.OriginalFilename
		rec.MimeType = opts.MimeType
		if rec.MimeType == "" {
			rec.MimeType = mimetype.Detect(blob).String()
		}
	}

	if content == nil {
		content = []byte{}
	}
	rec.Checksum = api.Checksum(content)
	rec.Size = int64(len(content))
	rec.BlobRef = rec.ID

	priority := opts.Priority
	if priority == 0 {
		priority = models.PriorityDefault
	}
	item := &models.QueueItem{
		ID:        rec.ID,
		MediaID:   rec.ID,
		Priority:  priority,
		CreatedAt: rec.CapturedAt,
	}

	err := s.store.WithTx(ctx, func(ctx context.Context, r client.Repositories) error {
		if err := r.Media.Put(ctx, rec); err != nil {
			return err
		}
		if err := r.Blobs.Put(ctx, rec.BlobRef, content); err != nil {
			return err
		}
		return r.Queue.Put(ctx, item)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store capture: %w", err)
	}

	s.log.Info(ctx, "captured", "media_id", rec.ID, "subject_id", rec.SubjectID, "type", rec.MediaType, "size", rec.Size)

	if err := s.observer.Refresh(ctx); err != nil {
		s.log.Warn(ctx, "failed to refresh sync state", "error", err)
	}
	if s.nudger != nil {
		s.nudger.Nudge()
	}

	return rec.Clone(), nil
}
