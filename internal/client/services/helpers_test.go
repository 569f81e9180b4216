package services

import (
	"bytes"
	"context"
	"image/color"
	"sync"
	"testing"
	"time"

	"github.com/Tredoux555/whale-class-sub004/internal/client/client"
	"github.com/Tredoux555/whale-class-sub004/internal/client/models"
	"github.com/Tredoux555/whale-class-sub004/internal/logging"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

type fakeUploader struct {
	mu       sync.Mutex
	uploads  []string
	deleted  []string
	uploadFn func(ctx context.Context, rec *models.MediaRecord, content []byte) (*client.UploadResult, error)
	deleteFn func(ctx context.Context, id string) error
}

func (f *fakeUploader) Upload(ctx context.Context, rec *models.MediaRecord, content []byte) (*client.UploadResult, error) {
	f.mu.Lock()
	f.uploads = append(f.uploads, rec.ID)
	fn := f.uploadFn
	f.mu.Unlock()

	if fn != nil {
		return fn(ctx, rec, content)
	}
	return &client.UploadResult{
		StoragePath: "media/" + rec.SubjectID + "/" + rec.ID,
		PublicURL:   "https://cdn.test/" + rec.ID,
	}, nil
}

func (f *fakeUploader) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	f.deleted = append(f.deleted, id)
	fn := f.deleteFn
	f.mu.Unlock()

	if fn != nil {
		return fn(ctx, id)
	}
	return nil
}

func (f *fakeUploader) uploadCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.uploads...)
}

func (f *fakeUploader) deleteCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

type testEnv struct {
	store    *client.Store
	observer *Observer
	engine   *SyncEngine
	capture  *CaptureService
	svc      MediaService
	up       *fakeUploader

	mu     sync.Mutex
	sleeps []time.Duration
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := client.InitDatabase(context.Background(), ":memory:", logging.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	log := logging.Nop()
	env := &testEnv{store: store, up: &fakeUploader{}}
	env.observer = NewObserver(store, log)
	env.engine = NewSyncEngine(store, env.up, env.observer, DefaultRetryPolicy(), log)
	env.engine.sleep = func(ctx context.Context, d time.Duration) error {
		env.mu.Lock()
		env.sleeps = append(env.sleeps, d)
		env.mu.Unlock()
		return ctx.Err()
	}
	env.capture = NewCaptureService(store, env.observer, env.engine, log)
	env.svc = NewMediaService(store, env.capture, env.engine, env.observer, env.up, log)
	return env
}

func (e *testEnv) recordedSleeps() []time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]time.Duration(nil), e.sleeps...)
}

func (e *testEnv) get(t *testing.T, id string) *models.MediaRecord {
	t.Helper()
	rec, err := e.store.Repositories().Media.Get(context.Background(), id)
	require.NoError(t, err)
	return rec
}

func (e *testEnv) queueLen(t *testing.T) int {
	t.Helper()
	n, err := e.store.Repositories().Queue.Count(context.Background())
	require.NoError(t, err)
	return n
}

func (e *testEnv) capturePhoto(t *testing.T, subject string) *models.MediaRecord {
	t.Helper()
	rec, err := e.capture.Capture(context.Background(), jpegOf(t, 64, 48), CaptureOptions{
		SubjectID: subject,
		MediaType: models.MediaTypePhoto,
	})
	require.NoError(t, err)
	return rec
}

func jpegOf(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := imaging.New(w, h, color.NRGBA{R: 30, G: 160, B: 90, A: 255})
	require.NoError(t, imaging.Encode(&buf, img, imaging.JPEG))
	return buf.Bytes()
}
