package services

import (
	"context"

	"github.com/Tredoux555/whale-class-sub004/internal/client/client"
)

// Store is the Local Store as seen by the services: repositories outside a
// transaction plus an all-or-nothing unit of work. *client.Store implements it.
type Store interface {
	Repositories() client.Repositories
	WithTx(ctx context.Context, fn func(ctx context.Context, r client.Repositories) error) error
}
