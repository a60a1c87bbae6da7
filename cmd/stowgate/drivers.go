package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sagarc03/stowgate"
	"github.com/sagarc03/stowgate/config"
	"github.com/sagarc03/stowgate/database"
	"github.com/sagarc03/stowgate/filesystem"
	"github.com/sagarc03/stowgate/s3store"
)

// drivers lists the storage backends compiled into this binary, keyed by the
// name used in a location's driver setting.
var drivers = map[string]stowgate.Driver{
	"filesystem": filesystem.Driver{},
	"s3":         s3store.Driver{},
	"database":   database.Driver{},
}

// openRegistry connects every pool referenced by an enabled location.
func openRegistry(ctx context.Context, cfg *config.Config) (*stowgate.Registry, error) {
	pools := cfg.PoolConfigs()
	if len(pools) == 0 {
		return nil, fmt.Errorf("open registry: no enabled locations configured")
	}

	registry, err := stowgate.NewRegistry(ctx, drivers, pools)
	if err != nil {
		return nil, err
	}

	slog.Info("storage pools connected", "pools", registry.Pools())
	return registry, nil
}
