// Package analytics computes performance metrics over stored return series.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/aristath/perfagent/internal/domain"
	"github.com/aristath/perfagent/internal/modules/returns"
	"github.com/aristath/perfagent/pkg/formulas"
	"github.com/rs/zerolog"
)

var (
	// ErrInvalidRequest is returned for queries missing required parameters
	ErrInvalidRequest = errors.New("invalid analytics request")
	// ErrNotFound is returned when a named portfolio or benchmark does not exist
	ErrNotFound = errors.New("not found")
	// ErrUnknownMetric is returned for identifiers outside the metric vocabulary
	ErrUnknownMetric = errors.New("unknown metric")
	// ErrMissingInput is returned when a formula is evaluated without its inputs
	ErrMissingInput = errors.New("missing input")
	// ErrComputation wraps formula failures (short or mismatched series)
	ErrComputation = errors.New("computation failed")
)

// SeriesStore provides named return series. Implemented by returns.Repository.
type SeriesStore interface {
	PortfolioSeries(ctx context.Context, name string, dr returns.DateRange) (returns.Series, bool, error)
	BenchmarkSeries(ctx context.Context, name string, dr returns.DateRange) (returns.Series, bool, error)
}

// FormulaInputs carries the raw inputs of a single formula evaluation
type FormulaInputs struct {
	Returns          []float64 `json:"returns,omitempty"`
	RiskFreeReturn   *float64  `json:"risk_free_return,omitempty"`
	PortfolioReturns []float64 `json:"portfolio_returns,omitempty"`
	BenchmarkReturns []float64 `json:"benchmark_returns,omitempty"`
}

// Service computes metrics for named portfolios. It implements domain.AnalyticsBackend.
type Service struct {
	store SeriesStore
	log   zerolog.Logger
}

var _ domain.AnalyticsBackend = (*Service)(nil)

// NewService creates a new analytics service
func NewService(store SeriesStore, log zerolog.Logger) *Service {
	return &Service{
		store: store,
		log:   log.With().Str("service", "analytics").Logger(),
	}
}

// Compute fetches the series named by query and evaluates the requested metrics.
// An empty metric list selects every metric.
func (s *Service) Compute(ctx context.Context, query domain.AnalyticsQuery) (*domain.AnalyticsReport, error) {
	if query.PortfolioName == "" {
		return nil, fmt.Errorf("%w: portfolio_name is required", ErrInvalidRequest)
	}

	metrics := query.Metrics
	if len(metrics) == 0 {
		metrics = domain.AllMetrics
	}
	for _, m := range metrics {
		if !domain.IsKnownMetric(m) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownMetric, m)
		}
	}

	dr := returns.DateRange{Start: query.StartDate, End: query.EndDate}

	portfolio, err := s.portfolioSeries(ctx, query.PortfolioName, dr)
	if err != nil {
		return nil, err
	}

	var benchmark returns.Series
	if query.BenchmarkName != "" {
		series, found, err := s.store.BenchmarkSeries(ctx, query.BenchmarkName, dr)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch benchmark returns: %w", err)
		}
		if !found {
			return nil, fmt.Errorf("%w: Benchmark '%s' not found", ErrNotFound, query.BenchmarkName)
		}
		benchmark = series
	}

	riskFree := 0.0
	if query.RiskFreePortfolioName != "" {
		series, err := s.portfolioSeries(ctx, query.RiskFreePortfolioName, dr)
		if err != nil {
			return nil, err
		}
		if len(series) > 0 {
			riskFree = formulas.Mean(series.Values())
		}
	}

	inputs := FormulaInputs{
		Returns:          portfolio.Values(),
		RiskFreeReturn:   &riskFree,
		PortfolioReturns: portfolio.Values(),
	}
	// Paired metrics need a named benchmark, even one with no data in range
	if query.BenchmarkName != "" {
		inputs.BenchmarkReturns = benchmark.Values()
	}

	results := make(map[string]any, len(metrics))
	for _, m := range metrics {
		value, err := Evaluate(m, inputs)
		if err != nil {
			s.log.Debug().Err(err).Str("metric", m).Str("portfolio", query.PortfolioName).Msg("Metric computation failed")
			return nil, err
		}
		results[m] = EncodeValue(value)
	}

	report := &domain.AnalyticsReport{
		Portfolio: query.PortfolioName,
		Results:   results,
	}
	if query.BenchmarkName != "" {
		name := query.BenchmarkName
		report.Benchmark = &name
	}

	s.log.Info().
		Str("portfolio", query.PortfolioName).
		Int("observations", len(portfolio)).
		Strs("metrics", metrics).
		Msg("Computed analytics")

	return report, nil
}

func (s *Service) portfolioSeries(ctx context.Context, name string, dr returns.DateRange) (returns.Series, error) {
	series, found, err := s.store.PortfolioSeries(ctx, name, dr)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch portfolio returns: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("%w: Portfolio '%s' not found", ErrNotFound, name)
	}
	return series, nil
}

// Evaluate runs a single formula over raw inputs
func Evaluate(metric string, in FormulaInputs) (float64, error) {
	var (
		value float64
		err   error
	)

	switch metric {
	case domain.MetricVolatility:
		if in.Returns == nil {
			return 0, fmt.Errorf("%w: returns", ErrMissingInput)
		}
		value, err = formulas.Volatility(in.Returns)
	case domain.MetricSharpeRatio:
		if in.Returns == nil {
			return 0, fmt.Errorf("%w: returns", ErrMissingInput)
		}
		if in.RiskFreeReturn == nil {
			return 0, fmt.Errorf("%w: risk_free_return", ErrMissingInput)
		}
		value, err = formulas.SharpeRatio(in.Returns, *in.RiskFreeReturn)
	case domain.MetricBeta, domain.MetricTrackingError, domain.MetricInformationRatio:
		if in.PortfolioReturns == nil {
			return 0, fmt.Errorf("%w: portfolio_returns", ErrMissingInput)
		}
		if in.BenchmarkReturns == nil {
			return 0, fmt.Errorf("%w: benchmark_returns", ErrMissingInput)
		}
		switch metric {
		case domain.MetricBeta:
			value, err = formulas.Beta(in.PortfolioReturns, in.BenchmarkReturns)
		case domain.MetricTrackingError:
			value, err = formulas.TrackingError(in.PortfolioReturns, in.BenchmarkReturns)
		default:
			value, err = formulas.InformationRatio(in.PortfolioReturns, in.BenchmarkReturns)
		}
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownMetric, metric)
	}

	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrComputation, err)
	}
	return value, nil
}

// EncodeValue converts non-finite results to strings so they survive JSON encoding
func EncodeValue(v float64) any {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	default:
		return v
	}
}
