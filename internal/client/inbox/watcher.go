// Package inbox captures files dropped into a directory. A file named
// "<subjectId>__<anything>.<ext>" is captured for that subject: images as
// photos, everything else as a document. Captured files move to processed/,
// files that cannot be captured move to rejected/.
package inbox

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Tredoux555/whale-class-sub004/internal/client/models"
	"github.com/Tredoux555/whale-class-sub004/internal/client/services"
	"github.com/Tredoux555/whale-class-sub004/internal/common"
	"github.com/Tredoux555/whale-class-sub004/internal/filex"
	"github.com/Tredoux555/whale-class-sub004/internal/logging"
	"github.com/fsnotify/fsnotify"
	"github.com/gabriel-vasile/mimetype"
)

const (
	ProcessedDir = "processed"
	RejectedDir  = "rejected"

	separator = "__"
)

// Files must be quiet for settle before they are read, so that a copy still
// in progress is not captured half-written.
const (
	settle       = 300 * time.Millisecond
	pollInterval = 250 * time.Millisecond
)

// photoTypes are the image formats the photo pipeline decodes.
var photoTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/bmp":  true,
	"image/tiff": true,
}

type Capturer interface {
	Capture(ctx context.Context, blob []byte, opts services.CaptureOptions) (*models.MediaRecord, error)
}

type Watcher struct {
	dir      string
	capturer Capturer
	log      logging.Logger
}

func NewWatcher(dir string, capturer Capturer, log logging.Logger) *Watcher {
	return &Watcher{dir: dir, capturer: capturer, log: log.With("inbox", dir)}
}

// ParseName extracts the subject id from an inbox file name.
func ParseName(name string) (subjectID string, ok bool) {
	base := filepath.Base(name)
	subjectID, rest, found := strings.Cut(base, separator)
	if !found || subjectID == "" || rest == "" {
		return "", false
	}
	return subjectID, true
}

// Run captures files already present and then watches for new ones until
// ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	for _, d := range []string{w.dir, filepath.Join(w.dir, ProcessedDir), filepath.Join(w.dir, RejectedDir)} {
		if err := filex.EnsureDir(d); err != nil {
			return fmt.Errorf("failed to prepare inbox: %w", err)
		}
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()
	if err := fw.Add(w.dir); err != nil {
		return err
	}

	w.ScanExisting(ctx)
	w.log.Info(ctx, "watching inbox")

	pending := map[string]time.Time{}
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				pending[ev.Name] = time.Now()
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn(ctx, "watch error", "error", err)

		case now := <-ticker.C:
			for name, t := range pending {
				if now.Sub(t) < settle {
					continue
				}
				delete(pending, name)
				w.handle(ctx, name)
			}
		}
	}
}

// ScanExisting captures every regular file currently in the inbox.
func (w *Watcher) ScanExisting(ctx context.Context) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		w.log.Warn(ctx, "failed to scan inbox", "error", err)
		return
	}
	for _, e := range entries {
		if e.Type().IsRegular() {
			w.handle(ctx, filepath.Join(w.dir, e.Name()))
		}
	}
}

func (w *Watcher) handle(ctx context.Context, path string) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return
	}

	rec, err := w.ProcessFile(ctx, path)
	switch {
	case err == nil:
		w.log.Info(ctx, "captured from inbox", "file", filepath.Base(path), "media_id", rec.ID)
		w.move(ctx, path, ProcessedDir)
	case errors.Is(err, errSkipped):
		w.log.Warn(ctx, "skipping inbox file", "file", filepath.Base(path), "reason", err)
	case errors.Is(err, common.ErrDecode), errors.Is(err, common.ErrSubjectRequired):
		w.log.Warn(ctx, "rejected inbox file", "file", filepath.Base(path), "error", err)
		w.move(ctx, path, RejectedDir)
	default:
		// Local store failure: leave the file for the next scan.
		w.log.Error(ctx, "failed to capture inbox file", "file", filepath.Base(path), "error", err)
	}
}

var errSkipped = errors.New("name does not match <subject>__<name>")

// ProcessFile captures a single file. The file itself is left in place.
func (w *Watcher) ProcessFile(ctx context.Context, path string) (*models.MediaRecord, error) {
	subjectID, ok := ParseName(path)
	if !ok {
		return nil, errSkipped
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	_, filename, _ := strings.Cut(filepath.Base(path), separator)
	mime := mimetype.Detect(data)

	opts := services.CaptureOptions{
		SubjectID:        subjectID,
		MediaType:        models.MediaTypeDocument,
		OriginalFilename: filename,
		MimeType:         mime.String(),
	}
	if photoTypes[baseMime(mime.String())] {
		opts.MediaType = models.MediaTypePhoto
		opts.OriginalFilename = ""
		opts.MimeType = ""
	}

	return w.capturer.Capture(ctx, data, opts)
}

func baseMime(m string) string {
	base, _, _ := strings.Cut(m, ";")
	return strings.TrimSpace(base)
}

func (w *Watcher) move(ctx context.Context, path, sub string) {
	if _, err := filex.MoveInto(path, filepath.Join(w.dir, sub)); err != nil {
		w.log.Warn(ctx, "failed to move inbox file", "file", filepath.Base(path), "error", err)
	}
}
