package queue

import (
	"context"

	"github.com/Tredoux555/whale-class-sub004/internal/client/models"
)

type Repository interface {
	// Put upserts the item. The Blob field is not persisted here.
	Put(ctx context.Context, item *models.QueueItem) error

	// Get returns the item by id or common.ErrorNotFound.
	Get(ctx context.Context, id string) (*models.QueueItem, error)

	// Delete removes the item. Deleting a missing item is not an error.
	Delete(ctx context.Context, id string) error

	// Next returns the most urgent item, or nil when the queue is empty.
	Next(ctx context.Context) (*models.QueueItem, error)

	// ListPending returns all items in service order.
	ListPending(ctx context.Context) ([]*models.QueueItem, error)

	Count(ctx context.Context) (int, error)
}
