package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Tredoux555/whale-class-sub004/internal/client/models"
	"github.com/Tredoux555/whale-class-sub004/internal/client/services"
	"github.com/Tredoux555/whale-class-sub004/internal/common"
)

var errUsage = errors.New("wrong arguments, see help")

func (a *App) Photo(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: photo <subject> <path> [caption]", errUsage)
	}
	data, err := os.ReadFile(args[1])
	if err != nil {
		return err
	}

	rec, err := a.media.Capture(ctx, data, services.CaptureOptions{
		SubjectID: args[0],
		MediaType: models.MediaTypePhoto,
		Caption:   strings.Join(args[2:], " "),
	})
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("captured %s (%dx%d, %s)", rec.ID, rec.Width, rec.Height, rec.SyncStatus))
	return nil
}

func (a *App) Doc(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: doc <subject> <path>", errUsage)
	}
	data, err := os.ReadFile(args[1])
	if err != nil {
		return err
	}

	rec, err := a.media.Capture(ctx, data, services.CaptureOptions{
		SubjectID:        args[0],
		MediaType:        models.MediaTypeDocument,
		OriginalFilename: filepath.Base(args[1]),
	})
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("captured %s (%s, %d bytes, %s)", rec.ID, rec.MimeType, rec.Size, rec.SyncStatus))
	return nil
}

func (a *App) List(ctx context.Context, args []string) error {
	var (
		recs []*models.MediaRecord
		err  error
	)
	if len(args) > 0 {
		recs, err = a.media.ListBySubject(ctx, args[0])
	} else {
		recs, err = a.media.ListAll(ctx)
	}
	if err != nil {
		return err
	}

	if len(recs) == 0 {
		printlnFn("no captures")
		return nil
	}
	for _, r := range recs {
		printlnFn(fmt.Sprintf("%s  %-12s %-8s %-9s %s  %s",
			r.ID, r.SubjectID, r.MediaType, r.SyncStatus, r.CapturedAt.Local().Format(time.DateTime), r.DisplayCaption()))
	}
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: delete <id>", errUsage)
	}
	if err := a.media.DeleteByID(ctx, args[0]); err != nil {
		return err
	}
	printlnFn("deleted", args[0])
	return nil
}

func (a *App) Retry(ctx context.Context) error {
	n, err := a.media.RetryFailed(ctx)
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("re-queued %d failed capture(s)", n))
	return nil
}

// Sync starts a drain in the background and returns at once, so retry
// backoff never holds the prompt. Progress shows through the state notices.
func (a *App) Sync(ctx context.Context) error {
	if !a.engine.Online() {
		printlnFn("offline, captures stay queued")
		return nil
	}

	printlnFn("sync started")
	a.bg.Add(1)
	go func() {
		defer a.bg.Done()
		err := a.media.ForceSyncNow(ctx)
		switch {
		case errors.Is(err, common.ErrAlreadySyncing):
			printlnFn("sync already running")
		case errors.Is(err, common.ErrOffline), ctx.Err() != nil:
		case err != nil:
			a.log.Error(ctx, "sync failed", "error", err)
		default:
			printlnFn(describe(a.media.State()))
		}
	}()
	return nil
}

func (a *App) Status(ctx context.Context) error {
	s := a.media.State()
	line := describe(s)
	if s.LastSyncAt != nil {
		line += ", last sync " + s.LastSyncAt.Local().Format(time.DateTime)
	}
	printlnFn(line)
	return nil
}

func (a *App) SetOffline(ctx context.Context, offline bool) error {
	a.monitor.ForceOffline(ctx, offline)
	if offline {
		printlnFn("offline mode")
	} else if a.engine.Online() {
		printlnFn("online")
	} else {
		printlnFn("server unreachable, staying offline")
	}
	return nil
}

func (a *App) Prune(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: prune <days>", errUsage)
	}
	days, err := strconv.Atoi(args[0])
	if err != nil || days < 0 {
		return fmt.Errorf("%w: days must be a non-negative number", errUsage)
	}
	n, err := a.media.Prune(ctx, time.Duration(days)*24*time.Hour)
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("freed content of %d synced capture(s)", n))
	return nil
}
