// Package di provides dependency injection for repository implementations.
package di

import (
	"fmt"

	"github.com/aristath/perfagent/internal/modules/returns"
	"github.com/rs/zerolog"
)

// InitializeRepositories creates all repositories and stores them in the container
func InitializeRepositories(container *Container, log zerolog.Logger) error {
	if container == nil {
		return fmt.Errorf("container cannot be nil")
	}
	if container.PerformanceDB == nil {
		return fmt.Errorf("performance database not initialized")
	}

	container.ReturnsRepo = returns.NewRepository(container.PerformanceDB.Conn(), log)

	return nil
}
