// Package db connects to PostgreSQL through pgxpool and runs goose
// migrations.
//
// Config is read from the environment:
//
//	var cfg db.Config
//	if err := env.Parse(&cfg); err != nil {
//	    return err
//	}
//	pool, err := db.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
// The same pool backs model.FromPool for active records and job.NewManager
// for background work. WithTx wraps pgx transactions; pass its tx to
// Context.EnqueueTx so a job only appears once the writes commit.
//
// Migrator runs hand-written SQL migrations on any database/sql handle, so
// a SQLite database opened with model.Open migrates the same way:
//
//	m := db.NewMigrator(store.SQL(), "sqlite3", migrations, db.WithMigrationsDir("migrations"))
//	err := m.Up(ctx)
package db
