// Package di provides dependency injection for database connections.
package di

import (
	"fmt"

	"github.com/aristath/perfagent/internal/config"
	"github.com/aristath/perfagent/internal/database"
	"github.com/rs/zerolog"
)

// InitializeDatabases opens the performance database and applies its schema
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	performanceDB, err := database.New(database.Config{
		Path:    cfg.DatabasePath,
		Profile: database.ProfileStandard,
		Name:    "performance",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize performance database: %w", err)
	}

	if err := performanceDB.Migrate(); err != nil {
		performanceDB.Close()
		return nil, fmt.Errorf("failed to migrate performance database: %w", err)
	}
	container.PerformanceDB = performanceDB

	log.Info().Str("path", performanceDB.Path()).Msg("Performance database initialized")

	return container, nil
}
