package cmd

import (
	"context"
	"log/slog"
	"time"

	"github.com/tejzpr/audience-inbox/internal/config"
	"github.com/tejzpr/audience-inbox/internal/db"
	"github.com/tejzpr/audience-inbox/internal/logging"
	"github.com/tejzpr/audience-inbox/internal/manager"
	"github.com/tejzpr/audience-inbox/internal/seed"
)

// openInbox opens the store, seeds it when enabled and wires a manager.
// The returned func closes the database.
func openInbox(ctx context.Context, cfg config.Config) (*manager.QueryManager, *manager.SSEBroker, func(), error) {
	d, err := db.Open(ctx, cfg.Database.DSN)
	if err != nil {
		return nil, nil, nil, err
	}
	closeDB := func() {
		if sqlDB, err := d.DB(); err == nil {
			sqlDB.Close()
		}
	}
	store := db.NewStore(d)

	if cfg.Seed.Enabled {
		data, err := seed.Read(cfg.Seed.Path)
		if err != nil {
			closeDB()
			return nil, nil, nil, err
		}
		n, err := seed.Load(ctx, store, data, time.Now())
		if err != nil {
			closeDB()
			return nil, nil, nil, err
		}
		logging.Debug(logging.WithAttrs(ctx, slog.String("component", "cmd")), "seeding finished", slog.Int("inserted", n))
	}

	broker := manager.NewSSEBroker()
	return manager.NewQueryManager(store, broker, cfg.Classify.AutoTagOnCreate), broker, closeDB, nil
}
