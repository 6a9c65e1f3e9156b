// Package di provides dependency injection for service implementations.
package di

import (
	"context"
	"fmt"

	"github.com/aristath/perfagent/internal/clients/analytics"
	"github.com/aristath/perfagent/internal/clients/dataapi"
	"github.com/aristath/perfagent/internal/clients/gemini"
	"github.com/aristath/perfagent/internal/clients/openai"
	"github.com/aristath/perfagent/internal/config"
	"github.com/aristath/perfagent/internal/modules/agent"
	analyticsmod "github.com/aristath/perfagent/internal/modules/analytics"
	"github.com/aristath/perfagent/internal/modules/catalog"
	"github.com/rs/zerolog"
)

// InitializeServices creates the clients and services and stores them in the container.
// Empty collaborator URLs select the in-process implementations backed by the database.
func InitializeServices(ctx context.Context, container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container == nil {
		return fmt.Errorf("container cannot be nil")
	}
	if container.ReturnsRepo == nil {
		return fmt.Errorf("returns repository not initialized")
	}

	// Return series and catalog names
	container.CatalogSource = container.ReturnsRepo
	container.SeriesStore = container.ReturnsRepo
	if cfg.DataAPIURL != "" {
		container.DataAPIClient = dataapi.NewClient(cfg.DataAPIURL, cfg.DataAPITimeout, log)
		container.CatalogSource = container.DataAPIClient
		container.SeriesStore = container.DataAPIClient
		log.Info().Str("url", cfg.DataAPIURL).Dur("timeout", container.DataAPIClient.Timeout()).Msg("Using remote data API")
	}

	// Analytics
	container.AnalyticsService = analyticsmod.NewService(container.SeriesStore, log)
	container.AnalyticsBackend = container.AnalyticsService
	if cfg.AnalyticsAPIURL != "" {
		container.AnalyticsClient = analytics.NewClient(cfg.AnalyticsAPIURL, cfg.AnalyticsTimeout, log)
		container.AnalyticsBackend = container.AnalyticsClient
		log.Info().Str("url", cfg.AnalyticsAPIURL).Msg("Using remote analytics API")
	}

	container.Catalog = catalog.New(catalog.Config{
		Source:             container.CatalogSource,
		FallbackPortfolios: cfg.FallbackPortfolios,
		FallbackBenchmarks: cfg.FallbackBenchmarks,
	}, log)

	// Language oracle
	oracle, err := newOracle(ctx, cfg, log)
	if err != nil {
		return err
	}
	container.Oracle = oracle

	// Agent
	container.Extractor = agent.NewExtractor(container.Oracle, cfg.OracleTimeout, log)
	container.Composer = agent.NewComposer(container.AnalyticsBackend, cfg.AnalyticsTimeout, log)
	container.AgentService = agent.NewService(container.Catalog, container.Extractor, container.Composer, log)

	return nil
}

func newOracle(ctx context.Context, cfg *config.Config, log zerolog.Logger) (agent.Oracle, error) {
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		log.Info().Str("model", cfg.OpenAIModel).Msg("Using OpenAI language oracle")
		return openai.NewOracle(openai.Config{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
			BaseURL: cfg.OpenAIBaseURL,
		}, log), nil
	case config.ProviderGemini:
		oracle, err := gemini.NewOracle(ctx, gemini.Config{
			APIKey: cfg.GeminiAPIKey,
			Model:  cfg.GeminiModel,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini oracle: %w", err)
		}
		log.Info().Str("model", cfg.GeminiModel).Msg("Using Gemini language oracle")
		return oracle, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", cfg.LLMProvider)
	}
}
