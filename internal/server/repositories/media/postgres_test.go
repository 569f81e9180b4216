package media

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Tredoux555/whale-class-sub004/internal/common"
	"github.com/Tredoux555/whale-class-sub004/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresRepository(db), mock, db
}

var (
	upsertQuery = `(?s)^\s*INSERT\s+INTO\s+media\b.*ON\s+CONFLICT\s*\(id\)\s*DO\s+UPDATE\s+SET\b.*$`
	selectQuery = `(?s)^SELECT\s+id,\s*subject_id.*FROM\s+media\s+WHERE\s+id=\$1$`
	deleteQuery = `^DELETE\s+FROM\s+media\s+WHERE\s+id=\$1$`
	columns     = []string{"id", "subject_id", "media_type", "work_id", "caption", "tags", "width", "height",
		"file_name", "mime_type", "checksum", "size", "storage_path", "public_url", "device_id", "captured_at", "uploaded_at"}
)

func sampleMedia() *models.Media {
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	return &models.Media{
		ID:          "m1",
		SubjectID:   "s1",
		MediaType:   "photo",
		Caption:     "Pink tower",
		Tags:        []string{"sensorial"},
		Width:       1920,
		Height:      1280,
		FileName:    "capture-m1.jpg",
		MimeType:    "image/jpeg",
		Checksum:    "abc",
		Size:        4,
		StoragePath: "media/s1/m1/capture-m1.jpg",
		PublicURL:   "http://store/media/s1/m1/capture-m1.jpg",
		DeviceID:    "tablet-1",
		CapturedAt:  at,
		UploadedAt:  at.Add(time.Minute),
	}
}

func TestUpsert_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	m := sampleMedia()
	mock.ExpectExec(upsertQuery).
		WithArgs("m1", "s1", "photo", "", "Pink tower", `["sensorial"]`, 1920, 1280,
			"capture-m1.jpg", "image/jpeg", "abc", int64(4), m.StoragePath, m.PublicURL, "tablet-1", m.CapturedAt, m.UploadedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Upsert(context.Background(), m))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsert_NilTagsStoredAsEmptyArray(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	m := sampleMedia()
	m.Tags = nil
	mock.ExpectExec(upsertQuery).
		WithArgs("m1", "s1", "photo", "", "Pink tower", `[]`, 1920, 1280,
			"capture-m1.jpg", "image/jpeg", "abc", int64(4), m.StoragePath, m.PublicURL, "tablet-1", m.CapturedAt, m.UploadedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Upsert(context.Background(), m))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsert_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(upsertQuery).WillReturnError(errors.New("db down"))

	err := repo.Upsert(context.Background(), sampleMedia())
	assert.ErrorContains(t, err, "db error: db down")
}

func TestGet_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	want := sampleMedia()
	mock.ExpectQuery(selectQuery).
		WithArgs("m1").
		WillReturnRows(sqlmock.NewRows(columns).AddRow(
			want.ID, want.SubjectID, want.MediaType, want.WorkID, want.Caption, []byte(`["sensorial"]`), want.Width, want.Height,
			want.FileName, want.MimeType, want.Checksum, want.Size, want.StoragePath, want.PublicURL, want.DeviceID,
			want.CapturedAt, want.UploadedAt))

	got, err := repo.Get(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, want, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(selectQuery).WithArgs("nope").WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGet_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(selectQuery).WithArgs("m1").WillReturnError(errors.New("conn reset"))

	_, err := repo.Get(context.Background(), "m1")
	assert.ErrorContains(t, err, "db error: conn reset")
	assert.NotErrorIs(t, err, common.ErrorNotFound)
}

func TestDelete(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectExec(deleteQuery).WithArgs("m1").WillReturnResult(sqlmock.NewResult(0, 1))
		require.NoError(t, repo.Delete(context.Background(), "m1"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown id", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectExec(deleteQuery).WithArgs("m1").WillReturnResult(sqlmock.NewResult(0, 0))
		assert.ErrorIs(t, repo.Delete(context.Background(), "m1"), common.ErrorNotFound)
	})

	t.Run("rows affected error", func(t *testing.T) {
		repo, mock, db := newRepoWithMock(t)
		defer db.Close()

		mock.ExpectExec(deleteQuery).WithArgs("m1").WillReturnResult(sqlmock.NewErrorResult(errors.New("rows-err")))
		assert.ErrorContains(t, repo.Delete(context.Background(), "m1"), "rows affected error: rows-err")
	})
}
