// Package server wires and runs the reference upload receiver: PostgreSQL
// for media rows, an object store for content, and the gin HTTP endpoints.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Tredoux555/whale-class-sub004/internal/logging"
	"github.com/Tredoux555/whale-class-sub004/internal/server/auth"
	"github.com/Tredoux555/whale-class-sub004/internal/server/config"
	"github.com/Tredoux555/whale-class-sub004/internal/server/handlers"
	"github.com/Tredoux555/whale-class-sub004/internal/server/metrics"
	"github.com/Tredoux555/whale-class-sub004/internal/server/migrations"
	"github.com/Tredoux555/whale-class-sub004/internal/server/repositories/media"
	"github.com/Tredoux555/whale-class-sub004/internal/server/storage"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

const shutdownTimeout = 10 * time.Second

var (
	openDB         = sql.Open
	gooseUpContext = goose.UpContext
	newBlobStore   = storage.New
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	handler *handlers.Handler
}

// NewApp opens and migrates the database and connects the object store
// selected in c.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, err := openDB("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	if err := RunMigrations(ctx, db, logger); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	store, err := newBlobStore(ctx, c)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	h := handlers.New(media.NewPostgresRepository(db), store, metrics.New(), c.MaxUploadSize, logger)

	return &App{config: c, logger: logger, db: db, handler: h}, nil
}

// RunMigrations applies the embedded receiver migrations.
func RunMigrations(ctx context.Context, db *sql.DB, logger logging.Logger) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(logging.NewPrintfLogger(logger.With("component", "migrations")))
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

// IssueToken signs a device token with the configured secret and validity.
func IssueToken(c *config.Config, deviceID string) (string, error) {
	return auth.GenerateToken(deviceID, []byte(c.SecretKey), c.TokenValidity)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) newHTTPServer() *http.Server {
	return &http.Server{
		Addr:              app.config.ListenAddr,
		Handler:           app.handler.Router([]byte(app.config.SecretKey)),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	srv := app.newHTTPServer()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "http shutdown", "error", err)
		}
	}()

	app.logger.Info(ctx, "listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// shuts the HTTP server down and closes the database.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "db close", "error", err)
		}
	}
	app.logger.Info(ctx, "stopped")
}
