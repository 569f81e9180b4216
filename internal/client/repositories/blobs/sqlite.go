package blobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Tredoux555/whale-class-sub004/internal/common"
	"github.com/Tredoux555/whale-class-sub004/internal/dbx"
)

type SQLiteRepository struct {
	db  dbx.DBTX
	now func() time.Time
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

func (r *SQLiteRepository) Put(ctx context.Context, id string, data []byte) error {
	if data == nil {
		data = []byte{}
	}
	query := `INSERT INTO blobs (id, data, saved_at) VALUES (?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET data = excluded.data, saved_at = excluded.saved_at`
	if _, err := r.db.ExecContext(ctx, query, id, data, dbx.UnixNano(r.now())); err != nil {
		return fmt.Errorf("failed to store blob: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) ([]byte, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx, `SELECT data FROM blobs WHERE id=?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get blob %s: %w", id, err)
	}
	return data, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM blobs WHERE id=?`, id); err != nil {
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	return nil
}
