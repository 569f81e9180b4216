package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Tredoux555/whale-class-sub004/internal/client/models"
	"github.com/Tredoux555/whale-class-sub004/internal/common"
	"github.com/Tredoux555/whale-class-sub004/internal/dbx"
)

const (
	selectItem = `SELECT q.id, q.media_id, b.data, q.priority, q.created_at, q.attempts, q.last_attempt, q.error
		FROM queue q LEFT JOIN blobs b ON b.id = q.media_id`
	serviceOrder = ` ORDER BY q.priority ASC, q.created_at ASC, q.rowid ASC`
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Put(ctx context.Context, item *models.QueueItem) error {
	query := `INSERT INTO queue (id, media_id, priority, created_at, attempts, last_attempt, error)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				media_id = excluded.media_id,
				priority = excluded.priority,
				created_at = excluded.created_at,
				attempts = excluded.attempts,
				last_attempt = excluded.last_attempt,
				error = excluded.error
	`
	_, err := r.db.ExecContext(ctx, query,
		item.ID, item.MediaID, item.Priority, dbx.UnixNano(item.CreatedAt), item.Attempts,
		dbx.NullUnixNano(item.LastAttempt), item.Error)
	if err != nil {
		return fmt.Errorf("failed to upsert queue item: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*models.QueueItem, error) {
	item, err := scanItem(r.db.QueryRowContext(ctx, selectItem+` WHERE q.id=?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get queue item %s: %w", id, err)
	}
	return item, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM queue WHERE id=?`, id); err != nil {
		return fmt.Errorf("failed to delete queue item: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Next(ctx context.Context) (*models.QueueItem, error) {
	item, err := scanItem(r.db.QueryRowContext(ctx, selectItem+serviceOrder+` LIMIT 1`))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get next queue item: %w", err)
	}
	return item, nil
}

func (r *SQLiteRepository) ListPending(ctx context.Context) ([]*models.QueueItem, error) {
	rows, err := r.db.QueryContext(ctx, selectItem+serviceOrder)
	if err != nil {
		return nil, fmt.Errorf("failed to list queue: %w", err)
	}
	defer rows.Close()

	var items []*models.QueueItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan queue item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM queue`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count queue: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner) (*models.QueueItem, error) {
	var (
		item        models.QueueItem
		createdAt   int64
		lastAttempt sql.NullInt64
	)
	if err := s.Scan(&item.ID, &item.MediaID, &item.Blob, &item.Priority, &createdAt,
		&item.Attempts, &lastAttempt, &item.Error); err != nil {
		return nil, err
	}
	item.CreatedAt = dbx.FromUnixNano(createdAt)
	item.LastAttempt = dbx.TimePtr(lastAttempt)
	return &item, nil
}
