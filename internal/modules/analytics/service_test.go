package analytics

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/aristath/perfagent/internal/domain"
	"github.com/aristath/perfagent/internal/modules/returns"
	testingpkg "github.com/aristath/perfagent/internal/testing"
	"github.com/aristath/perfagent/pkg/formulas"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, cleanup := testingpkg.NewPerformanceDB(t)
	t.Cleanup(cleanup)
	return NewService(returns.NewRepository(db.Conn(), zerolog.Nop()), zerolog.Nop())
}

func TestCompute_AllMetricsByDefault(t *testing.T) {
	svc := newTestService(t)

	report, err := svc.Compute(context.Background(), domain.AnalyticsQuery{
		PortfolioName:         "Growth Plus",
		BenchmarkName:         "MSCI World",
		RiskFreePortfolioName: "Secure Income",
	})
	require.NoError(t, err)

	assert.Equal(t, "Growth Plus", report.Portfolio)
	require.NotNil(t, report.Benchmark)
	assert.Equal(t, "MSCI World", *report.Benchmark)
	assert.Len(t, report.Results, len(domain.AllMetrics))

	p := testingpkg.FixturePortfolioReturns["Growth Plus"]
	b := testingpkg.FixtureBenchmarkReturns["MSCI World"]
	rf := formulas.Mean(testingpkg.FixturePortfolioReturns["Secure Income"])

	vol, _ := formulas.Volatility(p)
	beta, _ := formulas.Beta(p, b)
	sharpe, _ := formulas.SharpeRatio(p, rf)
	te, _ := formulas.TrackingError(p, b)
	ir, _ := formulas.InformationRatio(p, b)

	assert.InDelta(t, vol, report.Results[domain.MetricVolatility], 1e-12)
	assert.InDelta(t, beta, report.Results[domain.MetricBeta], 1e-12)
	assert.InDelta(t, sharpe, report.Results[domain.MetricSharpeRatio], 1e-12)
	assert.InDelta(t, te, report.Results[domain.MetricTrackingError], 1e-12)
	assert.InDelta(t, ir, report.Results[domain.MetricInformationRatio], 1e-12)
}

func TestCompute_DateRangeAndNoBenchmark(t *testing.T) {
	svc := newTestService(t)

	report, err := svc.Compute(context.Background(), domain.AnalyticsQuery{
		PortfolioName: "Growth Plus",
		StartDate:     "2023-01-31",
		EndDate:       "2023-03-31",
		Metrics:       []string{domain.MetricVolatility, domain.MetricSharpeRatio},
	})
	require.NoError(t, err)

	assert.Nil(t, report.Benchmark)
	require.Len(t, report.Results, 2)

	first := []float64{0.02, -0.01, 0.03}
	vol, _ := formulas.Volatility(first)
	// No risk-free portfolio means a zero risk-free rate
	sharpe, _ := formulas.SharpeRatio(first, 0)
	assert.InDelta(t, vol, report.Results[domain.MetricVolatility], 1e-12)
	assert.InDelta(t, sharpe, report.Results[domain.MetricSharpeRatio], 1e-12)
}

func TestCompute_Errors(t *testing.T) {
	svc := newTestService(t)

	tests := []struct {
		name    string
		query   domain.AnalyticsQuery
		wantErr error
		wantMsg string
	}{
		{
			name:    "missing portfolio",
			query:   domain.AnalyticsQuery{Metrics: []string{"volatility"}},
			wantErr: ErrInvalidRequest,
		},
		{
			name:    "unknown metric",
			query:   domain.AnalyticsQuery{PortfolioName: "Growth Plus", Metrics: []string{"alpha"}},
			wantErr: ErrUnknownMetric,
			wantMsg: "alpha",
		},
		{
			name:    "unknown portfolio",
			query:   domain.AnalyticsQuery{PortfolioName: "Nope"},
			wantErr: ErrNotFound,
			wantMsg: "Portfolio 'Nope' not found",
		},
		{
			name:    "unknown benchmark",
			query:   domain.AnalyticsQuery{PortfolioName: "Growth Plus", BenchmarkName: "Nope"},
			wantErr: ErrNotFound,
			wantMsg: "Benchmark 'Nope' not found",
		},
		{
			name:    "unknown risk-free portfolio",
			query:   domain.AnalyticsQuery{PortfolioName: "Growth Plus", RiskFreePortfolioName: "Nope"},
			wantErr: ErrNotFound,
		},
		{
			name:    "beta without benchmark",
			query:   domain.AnalyticsQuery{PortfolioName: "Growth Plus", Metrics: []string{"beta"}},
			wantErr: ErrMissingInput,
			wantMsg: "benchmark_returns",
		},
		{
			name:    "all metrics without benchmark",
			query:   domain.AnalyticsQuery{PortfolioName: "Growth Plus"},
			wantErr: ErrMissingInput,
		},
		{
			name: "benchmark without data in range",
			query: domain.AnalyticsQuery{
				PortfolioName: "Growth Plus",
				BenchmarkName: "MSCI World",
				StartDate:     "2024-01-31",
				Metrics:       []string{"beta"},
			},
			wantErr: ErrComputation,
		},
		{
			name: "mismatched series are not truncated",
			query: domain.AnalyticsQuery{
				PortfolioName: "Global Dividend",
				BenchmarkName: "MSCI World",
				Metrics:       []string{"tracking_error"},
			},
			wantErr: formulas.ErrLengthMismatch,
		},
		{
			name: "single observation",
			query: domain.AnalyticsQuery{
				PortfolioName: "Growth Plus",
				StartDate:     "2023-06-30",
				Metrics:       []string{"volatility"},
			},
			wantErr: formulas.ErrInsufficientData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := svc.Compute(context.Background(), tt.query)
			require.Error(t, err)
			assert.Nil(t, report)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestEvaluate(t *testing.T) {
	rf := 0.0

	t.Run("missing inputs", func(t *testing.T) {
		_, err := Evaluate(domain.MetricVolatility, FormulaInputs{})
		assert.ErrorIs(t, err, ErrMissingInput)

		_, err = Evaluate(domain.MetricSharpeRatio, FormulaInputs{Returns: []float64{0.1, 0.2}})
		assert.ErrorIs(t, err, ErrMissingInput)

		_, err = Evaluate(domain.MetricBeta, FormulaInputs{PortfolioReturns: []float64{0.1, 0.2}})
		assert.ErrorIs(t, err, ErrMissingInput)
	})

	t.Run("unknown metric", func(t *testing.T) {
		_, err := Evaluate("sortino", FormulaInputs{})
		assert.ErrorIs(t, err, ErrUnknownMetric)
	})

	t.Run("zero volatility yields infinity", func(t *testing.T) {
		v, err := Evaluate(domain.MetricSharpeRatio, FormulaInputs{Returns: []float64{0.01, 0.01}, RiskFreeReturn: &rf})
		require.NoError(t, err)
		assert.True(t, math.IsInf(v, 1))
	})

	t.Run("volatility", func(t *testing.T) {
		v, err := Evaluate(domain.MetricVolatility, FormulaInputs{Returns: []float64{0.01, 0.02, 0.03}})
		require.NoError(t, err)
		assert.InDelta(t, 0.01, v, 1e-12)
	})
}

func TestEncodeValue(t *testing.T) {
	assert.Equal(t, 0.5, EncodeValue(0.5))
	assert.Equal(t, "NaN", EncodeValue(math.NaN()))
	assert.Equal(t, "+Inf", EncodeValue(math.Inf(1)))
	assert.Equal(t, "-Inf", EncodeValue(math.Inf(-1)))
}
