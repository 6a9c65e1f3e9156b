// Package catalog resolves the known portfolio and benchmark names, falling
// back to configured lists when the live source is unavailable.
package catalog

import (
	"context"

	"github.com/rs/zerolog"
)

// Source provides live entity names in catalog order
type Source interface {
	PortfolioNames(ctx context.Context) ([]string, error)
	BenchmarkNames(ctx context.Context) ([]string, error)
}

// Config holds catalog configuration
type Config struct {
	Source             Source // nil means fallback only
	FallbackPortfolios []string
	FallbackBenchmarks []string
}

// Catalog returns entity names. It never fails: source errors and empty
// results yield the fallback list.
type Catalog struct {
	source             Source
	fallbackPortfolios []string
	fallbackBenchmarks []string
	log                zerolog.Logger
}

// New creates a new catalog
func New(cfg Config, log zerolog.Logger) *Catalog {
	return &Catalog{
		source:             cfg.Source,
		fallbackPortfolios: append([]string(nil), cfg.FallbackPortfolios...),
		fallbackBenchmarks: append([]string(nil), cfg.FallbackBenchmarks...),
		log:                log.With().Str("component", "catalog").Logger(),
	}
}

// Portfolios returns the current portfolio names, queried fresh on every call
func (c *Catalog) Portfolios(ctx context.Context) []string {
	var fetch func(context.Context) ([]string, error)
	if c.source != nil {
		fetch = c.source.PortfolioNames
	}
	return c.resolve(ctx, "portfolios", fetch, c.fallbackPortfolios)
}

// Benchmarks returns the current benchmark names, queried fresh on every call
func (c *Catalog) Benchmarks(ctx context.Context) []string {
	var fetch func(context.Context) ([]string, error)
	if c.source != nil {
		fetch = c.source.BenchmarkNames
	}
	return c.resolve(ctx, "benchmarks", fetch, c.fallbackBenchmarks)
}

func (c *Catalog) resolve(ctx context.Context, kind string, fetch func(context.Context) ([]string, error), fallback []string) []string {
	if fetch == nil {
		return append([]string(nil), fallback...)
	}

	names, err := fetch(ctx)
	if err != nil {
		c.log.Warn().Err(err).Str("kind", kind).Msg("Catalog source unavailable, using fallback list")
		return append([]string(nil), fallback...)
	}
	if len(names) == 0 {
		c.log.Warn().Str("kind", kind).Msg("Catalog source returned no names, using fallback list")
		return append([]string(nil), fallback...)
	}
	return names
}
