// Package cache provides a generic key-value Cache with memory and Redis
// backends.
//
// Memory suits a single process and tests; Redis is shared between
// instances. Both honour the same TTL rules: zero takes the backend default
// (DefaultTTL unless configured), a negative TTL never expires.
//
//	pages := cache.NewMemory[middlewares.Page](cache.WithMaxEntries(500))
//	defer pages.Close()
//
//	client := redis.MustOpen(ctx, cfg.RedisURL)
//	shared := cache.NewRedis[middlewares.Page](client, nil, cache.WithPrefix("pages"))
//
// GetOrSet loads a value on a miss and collapses concurrent misses for the
// same key into one call:
//
//	tpl, err := cache.GetOrSet(ctx, templates, name, func(ctx context.Context) (*view.Template, time.Duration, error) {
//	    t, err := parse(name)
//	    return t, -1, err
//	})
//
// PurgeTask clears a cache on a cron schedule when registered with
// job.WithScheduledTask.
package cache
