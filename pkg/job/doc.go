// Package job runs background tasks on River, a Postgres-backed queue.
//
// A task is any type with Name and Handle methods. The payload type is
// inferred from Handle, so task packages never import job:
//
//	func (t *ThumbnailTask) Name() string { return imaging.ThumbnailTaskName }
//	func (t *ThumbnailTask) Handle(ctx context.Context, p ThumbnailPayload) error
//
// Scheduled tasks add a five-field cron Schedule and take no payload;
// cache.PurgeTask is one.
//
//	jobs, err := job.NewManager(pool,
//	    job.WithTask(imaging.NewThumbnailTask(store, 320, 240)),
//	    job.WithScheduledTask(cache.NewPurgeTask(pages)),
//	    job.WithQueue("images", 4),
//	)
//
// Controllers enqueue through the request context:
//
//	err := c.Enqueue(imaging.ThumbnailTaskName, imaging.ThumbnailPayload{Key: info.Key},
//	    job.InQueue("images"),
//	    job.UniqueFor(time.Minute),
//	)
//
// All tasks share one River job kind. A payload that no longer decodes, or
// a task name nobody registered, cancels the job instead of retrying it.
// River's tables must be migrated before a Manager starts.
package job
