package client

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Tredoux555/whale-class-sub004/internal/client/migrations"
	"github.com/Tredoux555/whale-class-sub004/internal/client/repositories/blobs"
	"github.com/Tredoux555/whale-class-sub004/internal/client/repositories/media"
	"github.com/Tredoux555/whale-class-sub004/internal/client/repositories/queue"
	"github.com/Tredoux555/whale-class-sub004/internal/dbx"
	"github.com/Tredoux555/whale-class-sub004/internal/logging"
	"github.com/pressly/goose/v3"
)

// filePragmas are appended to plain file paths: WAL keeps readers unblocked
// while the sync worker writes, busy_timeout absorbs short lock contention.
const filePragmas = "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

var gooseUpContext = goose.UpContext

// Repositories groups the Local Store repositories bound to one handle.
type Repositories struct {
	Media media.Repository
	Blobs blobs.Repository
	Queue queue.Repository
}

func newRepositories(db dbx.DBTX) Repositories {
	return Repositories{
		Media: media.NewSQLiteRepository(db),
		Blobs: blobs.NewSQLiteRepository(db),
		Queue: queue.NewSQLiteRepository(db),
	}
}

// Store is the on-device SQLite database.
type Store struct {
	db    *sql.DB
	repos Repositories
}

func RunMigrations(ctx context.Context, db *sql.DB, log logging.Logger) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(logging.NewPrintfLogger(log.With("component", "migrations")))

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return gooseUpContext(ctx, db, ".")
}

// InitDatabase opens (creating if needed) the store at dsn and applies the
// embedded migrations.
func InitDatabase(ctx context.Context, dsn string, log logging.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", sqliteDSN(dsn))
	if err != nil {
		return nil, err
	}
	// SQLite allows one writer; a single connection serializes the capture
	// path and the sync worker instead of failing with SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db, log); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate local store: %w", err)
	}

	return &Store{db: db, repos: newRepositories(db)}, nil
}

func sqliteDSN(dsn string) string {
	if dsn == ":memory:" || strings.HasPrefix(dsn, "file:") || strings.Contains(dsn, "?") {
		return dsn
	}
	return dsn + "?" + filePragmas
}

func (s *Store) DB() *sql.DB {
	return s.db
}

// Repositories returns repositories bound to the database outside any transaction.
func (s *Store) Repositories() Repositories {
	return s.repos
}

// WithTx runs fn with repositories bound to a single transaction. Everything
// fn writes is committed together or not at all.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, r Repositories) error) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, newRepositories(tx))
	})
}

func (s *Store) Close() error {
	return s.db.Close()
}
