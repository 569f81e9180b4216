// Package blobs stores raw capture content in the on-device store, keyed by
// the owning record's blob reference.
package blobs

import "context"

// Repository stores raw content bytes.
type Repository interface {
	// Put writes (or replaces) the content stored under id.
	Put(ctx context.Context, id string, data []byte) error

	// Get returns the content or common.ErrorNotFound.
	Get(ctx context.Context, id string) ([]byte, error)

	// Delete removes the content. Deleting a missing blob is not an error.
	Delete(ctx context.Context, id string) error
}
