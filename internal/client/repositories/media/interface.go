package media

import (
	"context"
	"time"

	"github.com/Tredoux555/whale-class-sub004/internal/client/models"
)

// Repository describes storage of MediaRecord metadata.
type Repository interface {
	// Put inserts or replaces the record with the same id.
	Put(ctx context.Context, rec *models.MediaRecord) error

	// Get returns the record or common.ErrorNotFound.
	Get(ctx context.Context, id string) (*models.MediaRecord, error)

	// SetStatus updates the sync status and last attempt time of an existing
	// record; common.ErrorNotFound when it does not exist.
	SetStatus(ctx context.Context, id string, status models.SyncStatus, lastAttempt *time.Time) error

	// Delete removes the record; common.ErrorNotFound when it does not exist.
	Delete(ctx context.Context, id string) error

	// ListAll returns every record, newest capture first.
	ListAll(ctx context.Context) ([]*models.MediaRecord, error)

	// ListBySubject returns the records of one subject, newest capture first.
	ListBySubject(ctx context.Context, subjectID string) ([]*models.MediaRecord, error)

	// ListByStatus returns the records in the given sync status, oldest capture first.
	ListByStatus(ctx context.Context, status models.SyncStatus) ([]*models.MediaRecord, error)

	// CountByStatus counts the records in the given sync status.
	CountByStatus(ctx context.Context, status models.SyncStatus) (int, error)
}
