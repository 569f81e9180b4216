// Package media persists uploaded media rows in PostgreSQL.
package media

import (
	"context"

	"github.com/Tredoux555/whale-class-sub004/internal/server/models"
)

// Repository stores receiver media rows.
//
// Upsert is keyed by id so a re-sent upload overwrites the earlier row.
// Get and Delete return common.ErrorNotFound for unknown ids.
type Repository interface {
	Upsert(ctx context.Context, m *models.Media) error
	Get(ctx context.Context, id string) (*models.Media, error)
	Delete(ctx context.Context, id string) error
}
