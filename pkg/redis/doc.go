// Package redis opens go-redis clients from a URL or from Config.
//
// Open pings the server before returning and retries with a growing delay,
// so a process started alongside Redis waits for it:
//
//	var cfg redis.Config
//	_ = env.Parse(&cfg)
//	client, err := redis.Open(ctx, cfg.URL, cfg.Options()...)
//	if err != nil {
//	    return err
//	}
//	pages := cache.NewRedis[middlewares.Page](client, nil, cache.WithPrefix("pages"))
//
// Healthcheck plugs into readiness checks and Shutdown into the app's
// shutdown hooks.
package redis
