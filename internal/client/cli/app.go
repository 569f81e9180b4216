package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Tredoux555/whale-class-sub004/internal/client/client"
	"github.com/Tredoux555/whale-class-sub004/internal/client/config"
	"github.com/Tredoux555/whale-class-sub004/internal/client/connectivity"
	"github.com/Tredoux555/whale-class-sub004/internal/client/inbox"
	"github.com/Tredoux555/whale-class-sub004/internal/client/models"
	"github.com/Tredoux555/whale-class-sub004/internal/client/services"
	"github.com/Tredoux555/whale-class-sub004/internal/filex"
	"github.com/Tredoux555/whale-class-sub004/internal/logging"
)

// remote is what the app needs from the receiver client.
type remote interface {
	services.Uploader
	services.Remover
	connectivity.Pinger
}

type App struct {
	config   *config.Config
	store    *client.Store
	media    services.MediaService
	observer *services.Observer
	engine   *services.SyncEngine
	monitor  *connectivity.Monitor
	inbox    *inbox.Watcher
	log      logging.Logger

	// bg tracks drains started by the sync command.
	bg sync.WaitGroup

	mu    sync.Mutex
	state models.SyncState
}

func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	if dir := filepath.Dir(c.DatabasePath); c.DatabasePath != ":memory:" && dir != "." {
		if err := filex.EnsureDir(dir); err != nil {
			return nil, err
		}
	}

	store, err := client.InitDatabase(ctx, c.DatabasePath, log)
	if err != nil {
		log.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	apiClient, err := client.NewHTTPClient(c.ServerURL, c.AuthToken, c.RequestTimeout)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return newApp(c, store, apiClient, log), nil
}

func newApp(c *config.Config, store *client.Store, r remote, log logging.Logger) *App {
	policy := services.RetryPolicy{MaxAttempts: c.MaxAttempts, Delays: c.RetryDelays}

	observer := services.NewObserver(store, log)
	engine := services.NewSyncEngine(store, r, observer, policy, log.With("component", "sync"))
	capture := services.NewCaptureService(store, observer, engine, log)

	a := &App{
		config:   c,
		store:    store,
		media:    services.NewMediaService(store, capture, engine, observer, r, log),
		observer: observer,
		engine:   engine,
		monitor:  connectivity.NewMonitor(r, engine, c.OnlineCheckInterval, c.RequestTimeout, log),
		log:      log,
	}
	if c.InboxDir != "" {
		a.inbox = inbox.NewWatcher(c.InboxDir, a.media, log.With("component", "inbox"))
	}
	return a
}

// Run starts the background workers, runs the REPL on stdin and stops the
// workers when the user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	defer a.store.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := a.observer.Refresh(ctx); err != nil {
		return fmt.Errorf("failed to read local store: %w", err)
	}
	if a.config.SyncedRetention > 0 {
		if _, err := a.media.Prune(ctx, a.config.SyncedRetention); err != nil {
			a.log.Warn(ctx, "failed to prune synced content", "error", err)
		}
	}

	unsubscribe := a.media.Subscribe(a.onState)
	defer unsubscribe()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		a.engine.Run(ctx, a.config.SyncInterval)
	}()
	go func() {
		defer wg.Done()
		a.monitor.Run(ctx)
	}()
	if a.inbox != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := a.inbox.Run(ctx); err != nil {
				a.log.Error(ctx, "inbox watcher stopped", "error", err)
			}
		}()
	}

	printlnFn("Capture client (type 'help' for commands)")
	runREPL(ctx, a, a.status, bufio.NewScanner(os.Stdin))

	cancel()
	wg.Wait()
	a.bg.Wait()
	return nil
}

// onState prints a notice when the aggregate counts change.
func (a *App) onState(s models.SyncState) {
	a.mu.Lock()
	prev := a.state
	a.state = s
	a.mu.Unlock()

	if prev.PendingCount == s.PendingCount && prev.FailedCount == s.FailedCount && prev.IsOnline == s.IsOnline {
		return
	}
	printlnFn(describe(s))
}

func (a *App) status() string {
	return describe(a.media.State())
}

func describe(s models.SyncState) string {
	mode := "offline"
	if s.IsOnline {
		mode = "online"
	}
	if s.IsSyncing {
		mode += ", syncing"
	}
	return fmt.Sprintf("%s, %d pending, %d failed", mode, s.PendingCount, s.FailedCount)
}
