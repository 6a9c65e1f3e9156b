/**
 * Package di provides dependency injection type definitions.
 *
 * The Container holds every long-lived component of the performance agent.
 * It is built by Wire() and handed to the HTTP server, which mounts the
 * handlers backed by these components.
 */
package di

import (
	"github.com/aristath/perfagent/internal/clients/analytics"
	"github.com/aristath/perfagent/internal/clients/dataapi"
	"github.com/aristath/perfagent/internal/database"
	"github.com/aristath/perfagent/internal/domain"
	"github.com/aristath/perfagent/internal/modules/agent"
	analyticsmod "github.com/aristath/perfagent/internal/modules/analytics"
	"github.com/aristath/perfagent/internal/modules/catalog"
	"github.com/aristath/perfagent/internal/modules/returns"
)

// Container holds all dependencies for the application.
//
// Collaborators with a remote and an in-process implementation are stored
// behind their interfaces; the concrete remote clients are kept alongside
// (nil when not configured) so callers can tell which one was selected.
type Container struct {
	// Storage
	PerformanceDB *database.DB
	ReturnsRepo   *returns.Repository

	// Remote collaborators (nil unless their URL is configured)
	DataAPIClient   *dataapi.Client
	AnalyticsClient *analytics.Client

	// Selected implementations
	CatalogSource    catalog.Source
	SeriesStore      analyticsmod.SeriesStore
	AnalyticsBackend domain.AnalyticsBackend
	Oracle           agent.Oracle

	// Services
	AnalyticsService *analyticsmod.Service
	Catalog          *catalog.Catalog
	Extractor        *agent.Extractor
	Composer         *agent.Composer
	AgentService     *agent.Service
}

// Close releases the resources owned by the container
func (c *Container) Close() error {
	if c == nil || c.PerformanceDB == nil {
		return nil
	}
	return c.PerformanceDB.Close()
}
