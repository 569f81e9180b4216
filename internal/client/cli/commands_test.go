package cli

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Tredoux555/whale-class-sub004/internal/client/client"
	"github.com/Tredoux555/whale-class-sub004/internal/client/config"
	"github.com/Tredoux555/whale-class-sub004/internal/client/models"
	"github.com/Tredoux555/whale-class-sub004/internal/logging"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

type fakeRemote struct {
	reachable atomic.Bool
	deleted   atomic.Int32
	// hold, when set, blocks uploads until it is closed.
	hold chan struct{}
}

func (f *fakeRemote) Upload(ctx context.Context, rec *models.MediaRecord, _ []byte) (*client.UploadResult, error) {
	if f.hold != nil {
		select {
		case <-f.hold:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return &client.UploadResult{StoragePath: "media/" + rec.ID}, nil
}

func (f *fakeRemote) Delete(context.Context, string) error {
	f.deleted.Add(1)
	return nil
}

func (f *fakeRemote) Ping(context.Context) error {
	if f.reachable.Load() {
		return nil
	}
	return errors.New("unreachable")
}

func newTestApp(t *testing.T) (*App, *fakeRemote) {
	t.Helper()

	store, err := client.InitDatabase(context.Background(), ":memory:", logging.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.RetryDelays = []time.Duration{0}

	r := &fakeRemote{}
	return newApp(cfg, store, r, logging.Nop()), r
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func jpegFile(t *testing.T, w, h int) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, imaging.New(w, h, color.Black), imaging.JPEG))
	return writeFile(t, "photo.jpg", buf.Bytes())
}

func TestCommands_CaptureListSyncDelete(t *testing.T) {
	out := stubPrintln(t)
	app, remote := newTestApp(t)
	ctx := context.Background()

	require.NoError(t, app.Photo(ctx, []string{"child-1", jpegFile(t, 2400, 1200), "pink", "tower"}))
	require.NoError(t, app.Doc(ctx, []string{"child-2", writeFile(t, "notes.txt", []byte("hello\n"))}))

	recs, err := app.media.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, 2, app.media.State().PendingCount)

	require.NoError(t, app.Sync(ctx))
	assert.Contains(t, strings.Join(*out, ""), "offline, captures stay queued")

	remote.reachable.Store(true)
	require.NoError(t, app.SetOffline(ctx, false))
	require.NoError(t, app.Sync(ctx))
	app.bg.Wait()
	assert.Equal(t, 0, app.media.State().PendingCount)

	photos, err := app.media.ListBySubject(ctx, "child-1")
	require.NoError(t, err)
	require.Len(t, photos, 1)
	assert.Equal(t, models.SyncStatusSynced, photos[0].SyncStatus)
	assert.Equal(t, "pink tower", photos[0].Caption)
	assert.Equal(t, 1920, photos[0].Width)
	assert.Equal(t, 960, photos[0].Height)

	require.NoError(t, app.List(ctx, []string{"child-1"}))
	assert.Contains(t, strings.Join(*out, ""), photos[0].ID)

	require.NoError(t, app.Delete(ctx, []string{photos[0].ID}))
	assert.EqualValues(t, 1, remote.deleted.Load())
}

func TestCommands_SyncReturnsWhileUploading(t *testing.T) {
	out := stubPrintln(t)
	app, remote := newTestApp(t)
	ctx := context.Background()
	remote.hold = make(chan struct{})

	require.NoError(t, app.Photo(ctx, []string{"child-1", jpegFile(t, 64, 48)}))
	remote.reachable.Store(true)
	require.NoError(t, app.SetOffline(ctx, false))

	done := make(chan error, 1)
	go func() { done <- app.Sync(ctx) }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("sync command blocked on the upload")
	}

	require.Eventually(t, func() bool { return app.media.State().IsSyncing }, 5*time.Second, 10*time.Millisecond)
	require.NoError(t, app.Retry(ctx), "foreground commands run during a drain")

	close(remote.hold)
	app.bg.Wait()
	assert.Equal(t, 0, app.media.State().PendingCount)
	assert.Contains(t, strings.Join(*out, ""), "sync started")
}

func TestCommands_ForcedOffline(t *testing.T) {
	stubPrintln(t)
	app, remote := newTestApp(t)
	ctx := context.Background()
	remote.reachable.Store(true)

	require.NoError(t, app.SetOffline(ctx, true))
	assert.False(t, app.engine.Online())
	assert.False(t, app.media.State().IsOnline)

	require.NoError(t, app.SetOffline(ctx, false))
	assert.True(t, app.engine.Online())
}

func TestCommands_Usage(t *testing.T) {
	stubPrintln(t)
	app, _ := newTestApp(t)
	ctx := context.Background()

	require.ErrorIs(t, app.Photo(ctx, []string{"child-1"}), errUsage)
	require.ErrorIs(t, app.Doc(ctx, nil), errUsage)
	require.ErrorIs(t, app.Delete(ctx, nil), errUsage)
	require.ErrorIs(t, app.Prune(ctx, []string{"soon"}), errUsage)
}

func TestCommands_RetryAndStatus(t *testing.T) {
	out := stubPrintln(t)
	app, _ := newTestApp(t)
	ctx := context.Background()

	require.NoError(t, app.Retry(ctx))
	require.NoError(t, app.Status(ctx))
	require.NoError(t, app.Prune(ctx, []string{"30"}))

	joined := strings.Join(*out, "")
	assert.Contains(t, joined, "re-queued 0 failed capture(s)")
	assert.Contains(t, joined, "offline, 0 pending, 0 failed")
	assert.Contains(t, joined, "freed content of 0 synced capture(s)")
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "online, syncing, 2 pending, 1 failed",
		describe(models.SyncState{IsOnline: true, IsSyncing: true, PendingCount: 2, FailedCount: 1}))
}
