package media

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Tredoux555/whale-class-sub004/internal/client/models"
	"github.com/Tredoux555/whale-class-sub004/internal/common"
	"github.com/Tredoux555/whale-class-sub004/internal/dbx"
)

const selectColumns = `id, subject_id, subject_name, media_type, preview, blob_ref, remote_path, remote_url,
	work_id, work_name, caption, tags, width, height, size, original_filename, mime_type, checksum,
	captured_at, uploaded_at, sync_status, sync_error, sync_attempts, last_sync_attempt`

// SQLiteRepository implements Repository over a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Put(ctx context.Context, m *models.MediaRecord) error {
	tags, err := json.Marshal(nonNilTags(m.Tags))
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}

	query := `INSERT INTO media (` + selectColumns + `)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				subject_id = excluded.subject_id,
				subject_name = excluded.subject_name,
				media_type = excluded.media_type,
				preview = excluded.preview,
				blob_ref = excluded.blob_ref,
				remote_path = excluded.remote_path,
				remote_url = excluded.remote_url,
				work_id = excluded.work_id,
				work_name = excluded.work_name,
				caption = excluded.caption,
				tags = excluded.tags,
				width = excluded.width,
				height = excluded.height,
				size = excluded.size,
				original_filename = excluded.original_filename,
				mime_type = excluded.mime_type,
				checksum = excluded.checksum,
				captured_at = excluded.captured_at,
				uploaded_at = excluded.uploaded_at,
				sync_status = excluded.sync_status,
				sync_error = excluded.sync_error,
				sync_attempts = excluded.sync_attempts,
				last_sync_attempt = excluded.last_sync_attempt
	`
	_, err = r.db.ExecContext(ctx, query,
		m.ID, m.SubjectID, m.SubjectName, string(m.MediaType), m.Preview, m.BlobRef, m.RemotePath, m.RemoteURL,
		m.WorkID, m.WorkName, m.Caption, string(tags), m.Width, m.Height, m.Size, m.OriginalFilename, m.MimeType, m.Checksum,
		dbx.UnixNano(m.CapturedAt), dbx.NullUnixNano(m.UploadedAt), string(m.SyncStatus), m.SyncError, m.SyncAttempts,
		dbx.NullUnixNano(m.LastSyncAttempt))
	if err != nil {
		return fmt.Errorf("failed to upsert media: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*models.MediaRecord, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM media WHERE id=?`, id)

	m, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get media %s: %w", id, err)
	}
	return m, nil
}

func (r *SQLiteRepository) SetStatus(ctx context.Context, id string, status models.SyncStatus, lastAttempt *time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE media SET sync_status=?, last_sync_attempt=? WHERE id=?`,
		string(status), dbx.NullUnixNano(lastAttempt), id)
	if err != nil {
		return fmt.Errorf("failed to update media status: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM media WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete media: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *SQLiteRepository) ListAll(ctx context.Context) ([]*models.MediaRecord, error) {
	return r.list(ctx, `SELECT `+selectColumns+` FROM media ORDER BY captured_at DESC`)
}

func (r *SQLiteRepository) ListBySubject(ctx context.Context, subjectID string) ([]*models.MediaRecord, error) {
	return r.list(ctx, `SELECT `+selectColumns+` FROM media WHERE subject_id=? ORDER BY captured_at DESC`, subjectID)
}

func (r *SQLiteRepository) ListByStatus(ctx context.Context, status models.SyncStatus) ([]*models.MediaRecord, error) {
	return r.list(ctx, `SELECT `+selectColumns+` FROM media WHERE sync_status=? ORDER BY captured_at ASC`, string(status))
}

func (r *SQLiteRepository) CountByStatus(ctx context.Context, status models.SyncStatus) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM media WHERE sync_status=?`, string(status)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count media: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) list(ctx context.Context, query string, args ...any) ([]*models.MediaRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select media: %w", err)
	}
	defer rows.Close()

	var result []*models.MediaRecord
	for rows.Next() {
		m, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*models.MediaRecord, error) {
	var (
		m                         models.MediaRecord
		mediaType, status, tags   string
		capturedAt                int64
		uploadedAt, lastAttemptAt sql.NullInt64
	)

	err := s.Scan(&m.ID, &m.SubjectID, &m.SubjectName, &mediaType, &m.Preview, &m.BlobRef, &m.RemotePath, &m.RemoteURL,
		&m.WorkID, &m.WorkName, &m.Caption, &tags, &m.Width, &m.Height, &m.Size, &m.OriginalFilename, &m.MimeType, &m.Checksum,
		&capturedAt, &uploadedAt, &status, &m.SyncError, &m.SyncAttempts, &lastAttemptAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(tags), &m.Tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags of %s: %w", m.ID, err)
	}
	if len(m.Tags) == 0 {
		m.Tags = nil
	}
	if len(m.Preview) == 0 {
		m.Preview = nil
	}

	m.MediaType = models.MediaType(mediaType)
	m.SyncStatus = models.SyncStatus(status)
	m.CapturedAt = dbx.FromUnixNano(capturedAt)
	m.UploadedAt = dbx.TimePtr(uploadedAt)
	m.LastSyncAttempt = dbx.TimePtr(lastAttemptAt)
	return &m, nil
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
