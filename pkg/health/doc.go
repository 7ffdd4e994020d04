// Package health serves liveness and readiness probes.
//
// LivenessHandler always answers OK. ReadinessHandler runs named Checks
// concurrently and answers 503 when any fails. Run executes the same checks
// once so the serve command can refuse to start without its dependencies.
//
//	checks := health.Checks{
//		"db":    db.Healthcheck(pool),
//		"redis": redis.Healthcheck(client),
//	}
//	r.Get("/health/ready", health.ReadinessHandler(checks, health.WithTimeout(3*time.Second)))
//
// Responses are plain text unless the client sends Accept: application/json
// or ?format=json, in which case the Report is encoded:
//
//	{"status":"unhealthy","checks":[{"name":"db","status":"healthy","duration_ms":1},
//	 {"name":"redis","status":"unhealthy","error":"connection refused","duration_ms":0}]}
package health
