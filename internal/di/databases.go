// Package di provides dependency injection for database connections.
package di

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/contestboard/arena/internal/config"
	"github.com/contestboard/arena/internal/database"
)

// InitializeDatabases opens the cache database and the contest store and
// applies schemas to the local ones
func InitializeDatabases(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	// 1. cache.db - Ephemeral data (persisted calendar feed)
	cacheDB, err := database.New(database.Config{
		Path:    cfg.CacheDBPath(),
		Profile: database.ProfileCache, // Maximum speed for ephemeral data
		Name:    "cache",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache database: %w", err)
	}
	container.CacheDB = cacheDB

	// 2. Contest store - Postgres when configured, local contest.db otherwise
	if cfg.DatabaseURL != "" {
		pg, err := database.OpenPostgres(ctx, database.PostgresConfig{URL: cfg.DatabaseURL})
		if err != nil {
			cacheDB.Close()
			return nil, fmt.Errorf("failed to initialize contest store: %w", err)
		}
		container.Postgres = pg
		container.ContestStore = pg
		log.Info().Msg("Contest store: postgres")
	} else {
		contestDB, err := database.New(database.Config{
			Path:    cfg.ContestDBPath(),
			Profile: database.ProfileStandard,
			Name:    "contest",
		})
		if err != nil {
			cacheDB.Close()
			return nil, fmt.Errorf("failed to initialize contest database: %w", err)
		}
		container.ContestDB = contestDB
		container.ContestStore = contestDB.X()
		log.Info().Str("path", contestDB.Path()).Msg("Contest store: local sqlite")
	}

	// Apply schemas to local databases (single source of truth). The remote
	// contest store is owned by the contest backend and never migrated here.
	for _, db := range container.LocalDatabases() {
		if err := db.Migrate(); err != nil {
			container.Close()
			return nil, fmt.Errorf("failed to migrate %s database: %w", db.Name(), err)
		}
	}

	log.Info().Int("local", len(container.LocalDatabases())).Msg("Databases initialized")
	return container, nil
}
