package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/trazamatic/analytics-cli/internal/store"
)

// initStore opens the configured run-history backend. Driver "none"
// disables run history and returns a nil store.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "none":
		return nil, nil
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "trazamatic.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}
