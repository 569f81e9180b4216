package media

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Tredoux555/whale-class-sub004/internal/common"
	"github.com/Tredoux555/whale-class-sub004/internal/dbx"
	"github.com/Tredoux555/whale-class-sub004/internal/server/models"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, m *models.Media) error {
	tags := m.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("tags encode error: %w", err)
	}

	query := `
		INSERT INTO media (id, subject_id, media_type, work_id, caption, tags, width, height,
			file_name, mime_type, checksum, size, storage_path, public_url, device_id, captured_at, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (id)
		DO UPDATE SET
			subject_id = EXCLUDED.subject_id,
			media_type = EXCLUDED.media_type,
			work_id = EXCLUDED.work_id,
			caption = EXCLUDED.caption,
			tags = EXCLUDED.tags,
			width = EXCLUDED.width,
			height = EXCLUDED.height,
			file_name = EXCLUDED.file_name,
			mime_type = EXCLUDED.mime_type,
			checksum = EXCLUDED.checksum,
			size = EXCLUDED.size,
			storage_path = EXCLUDED.storage_path,
			public_url = EXCLUDED.public_url,
			device_id = EXCLUDED.device_id,
			captured_at = EXCLUDED.captured_at,
			uploaded_at = EXCLUDED.uploaded_at
	`
	_, err = r.db.ExecContext(ctx, query,
		m.ID, m.SubjectID, m.MediaType, m.WorkID, m.Caption, string(tagsJSON), m.Width, m.Height,
		m.FileName, m.MimeType, m.Checksum, m.Size, m.StoragePath, m.PublicURL, m.DeviceID, m.CapturedAt, m.UploadedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Media, error) {
	query := `SELECT id, subject_id, media_type, work_id, caption, tags, width, height,
		file_name, mime_type, checksum, size, storage_path, public_url, device_id, captured_at, uploaded_at
		FROM media WHERE id=$1`

	m := &models.Media{}
	var tags []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&m.ID, &m.SubjectID, &m.MediaType, &m.WorkID, &m.Caption, &tags, &m.Width, &m.Height,
		&m.FileName, &m.MimeType, &m.Checksum, &m.Size, &m.StoragePath, &m.PublicURL, &m.DeviceID,
		&m.CapturedAt, &m.UploadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &m.Tags); err != nil {
			return nil, fmt.Errorf("tags decode error: %w", err)
		}
	}
	return m, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM media WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
