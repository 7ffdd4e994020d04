package job

import "errors"

var (
	// ErrNotConfigured is returned by Context.Enqueue when the app has no job client.
	ErrNotConfigured = errors.New("job: not configured")
	// ErrUnknownTask is returned for a task name nobody registered.
	ErrUnknownTask       = errors.New("job: unknown task")
	ErrInvalidPayload    = errors.New("job: invalid payload")
	ErrInvalidSchedule   = errors.New("job: invalid schedule")
	ErrAlreadyStarted    = errors.New("job: already started")
	ErrNotStarted        = errors.New("job: not started")
	ErrPoolRequired      = errors.New("job: pool is required")
	ErrEnqueueFailed     = errors.New("job: enqueue failed")
	ErrHealthcheckFailed = errors.New("job: healthcheck failed")
	ErrMigrate           = errors.New("job: migration failed")
)
