// Package media persists MediaRecord metadata in the on-device store.
//
// Records are keyed by id and indexed by subject, sync status and capture
// time. Content bytes live in the blobs package, so listing records never
// loads full-size images.
//
//	repo := media.NewSQLiteRepository(db)
//	_ = repo.Put(ctx, rec)
//	recs, _ := repo.ListBySubject(ctx, "child-1")
//	failed, _ := repo.CountByStatus(ctx, models.SyncStatusFailed)
package media
