package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/aristath/perfagent/internal/domain"
	testingpkg "github.com/aristath/perfagent/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockingBackend struct{}

func (blockingBackend) Compute(ctx context.Context, query domain.AnalyticsQuery) (*domain.AnalyticsReport, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func completeParams() ParameterRecord {
	return ParameterRecord{
		PortfolioName: strPtr("Growth Plus"),
		BenchmarkName: strPtr("MSCI World"),
		StartDate:     strPtr("2023-01-15"),
		EndDate:       strPtr("2023-03-31"),
		Metrics:       []string{"beta", "volatility"},
	}
}

func TestCompose_Clarification(t *testing.T) {
	portfolios := []string{"Growth Plus", "Global Dividend"}
	benchmarks := []string{"MSCI World", "S&P 500"}

	tests := []struct {
		name   string
		params ParameterRecord
		want   string
	}{
		{
			name:   "metrics only",
			params: ParameterRecord{},
			want:   "I need the following information to compute: Metrics.",
		},
		{
			name: "portfolio typo gets suggestions",
			params: ParameterRecord{
				PortfolioName: strPtr("Growth Plu"),
				StartDate:     strPtr("2023-01-31"),
				EndDate:       strPtr("2023-03-31"),
				Metrics:       []string{"volatility"},
			},
			want: "I need the following information to compute: Portfolio Name. Did you mean one of these portfolios: Growth Plus?",
		},
		{
			name: "no suggestion lists the catalog",
			params: ParameterRecord{
				PortfolioName: strPtr("Zzz"),
				Metrics:       []string{"volatility"},
			},
			want: "I need the following information to compute: Start Date, End Date, Portfolio Name. Available portfolios: Growth Plus, Global Dividend.",
		},
		{
			name: "benchmark suggestions",
			params: ParameterRecord{
				PortfolioName: strPtr("Growth Plus"),
				BenchmarkName: strPtr("MSCI Wrld"),
				StartDate:     strPtr("2023-01-31"),
				EndDate:       strPtr("2023-03-31"),
				Metrics:       []string{"tracking_error"},
			},
			want: "I need the following information to compute: Benchmark Name. Did you mean one of these benchmarks: MSCI World?",
		},
		{
			name: "risk-free suggestions",
			params: ParameterRecord{
				PortfolioName:         strPtr("Growth Plus"),
				RiskFreePortfolioName: strPtr("Global Dividnd"),
				StartDate:             strPtr("2023-01-31"),
				EndDate:               strPtr("2023-03-31"),
				Metrics:               []string{"sharpe_ratio"},
			},
			want: "I need the following information to compute: Risk Free Portfolio Name. Did you mean one of these risk-free portfolios: Global Dividend?",
		},
		{
			name: "missing required name gets no suggestions",
			params: ParameterRecord{
				Metrics: []string{"beta"},
			},
			want: "I need the following information to compute: Portfolio Name, Benchmark Name, Start Date, End Date.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &testingpkg.MockAnalyticsBackend{}
			composer := NewComposer(backend, time.Second, zerolog.Nop())

			missing := Check(tt.params, portfolios, benchmarks)
			require.NotEmpty(t, missing)

			got := composer.Compose(context.Background(), tt.params, missing, portfolios, benchmarks)
			assert.Equal(t, tt.want, got.Text)
			assert.Nil(t, got.Report)
			assert.False(t, got.ResetHistory)
			assert.Equal(t, 0, backend.Calls())
		})
	}
}

func TestCompose_Success(t *testing.T) {
	benchmark := "MSCI World"
	report := &domain.AnalyticsReport{
		Portfolio: "Growth Plus",
		Benchmark: &benchmark,
		Results: map[string]any{
			"volatility":        0.0125,
			"beta":              1.2,
			"information_ratio": "NaN",
		},
	}
	backend := &testingpkg.MockAnalyticsBackend{Report: report}
	composer := NewComposer(backend, time.Second, zerolog.Nop())

	got := composer.Compose(context.Background(), completeParams(), nil, nil, nil)

	assert.Equal(t, "Beta is 1.200000; Volatility is 0.012500; Information Ratio is NaN", got.Text)
	assert.Same(t, report, got.Report)
	assert.True(t, got.ResetHistory)

	require.Len(t, backend.Queries, 1)
	query := backend.Queries[0]
	assert.Equal(t, "Growth Plus", query.PortfolioName)
	assert.Equal(t, "MSCI World", query.BenchmarkName)
	assert.Empty(t, query.RiskFreePortfolioName)
	assert.Equal(t, "2023-01-31", query.StartDate, "start date snaps to month end")
	assert.Equal(t, "2023-03-31", query.EndDate)
	assert.Equal(t, []string{"beta", "volatility"}, query.Metrics)
}

func TestCompose_InvalidDate(t *testing.T) {
	backend := &testingpkg.MockAnalyticsBackend{}
	composer := NewComposer(backend, time.Second, zerolog.Nop())

	params := completeParams()
	params.EndDate = strPtr("2023-13-01")

	got := composer.Compose(context.Background(), params, nil, nil, nil)
	assert.Equal(t, `Error: invalid end_date "2023-13-01" (expected YYYY-MM-DD)`, got.Text)
	assert.False(t, got.ResetHistory)
	assert.Equal(t, 0, backend.Calls())
}

func TestCompose_BackendFailures(t *testing.T) {
	tests := []struct {
		name    string
		backend domain.AnalyticsBackend
		want    string
	}{
		{
			name:    "non-success status",
			backend: &testingpkg.MockAnalyticsBackend{Err: &domain.BackendError{StatusCode: 404, Body: `{"detail":"Portfolio 'Growth Plus' not found"}`}},
			want:    `Error computing analytics: {"detail":"Portfolio 'Growth Plus' not found"}`,
		},
		{
			name:    "wrapped status error",
			backend: &testingpkg.MockAnalyticsBackend{Err: errors.Join(errors.New("request failed"), &domain.BackendError{StatusCode: 500, Body: "boom"})},
			want:    "Error computing analytics: boom",
		},
		{
			name:    "network error",
			backend: &testingpkg.MockAnalyticsBackend{Err: errors.New("dial tcp: connection refused")},
			want:    "Error: dial tcp: connection refused",
		},
		{
			name:    "no report",
			backend: &testingpkg.MockAnalyticsBackend{},
			want:    "Error: analytics backend returned no results",
		},
		{
			name:    "timeout",
			backend: blockingBackend{},
			want:    "Error: analytics backend timed out after 20ms",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			composer := NewComposer(tt.backend, 20*time.Millisecond, zerolog.Nop())
			got := composer.Compose(context.Background(), completeParams(), nil, nil, nil)

			assert.Equal(t, tt.want, got.Text)
			assert.Nil(t, got.Report)
			assert.False(t, got.ResetHistory)
		})
	}
}

func TestCompose_TimeoutReportsRequestDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	composer := NewComposer(blockingBackend{}, time.Hour, zerolog.Nop())
	got := composer.Compose(ctx, completeParams(), nil, nil, nil)

	assert.True(t, strings.HasPrefix(got.Text, "Error: analytics backend timed out after "), got.Text)
	assert.Contains(t, got.Text, "(request deadline reached)")
	assert.NotContains(t, got.Text, "1h0m0s")
	assert.False(t, got.ResetHistory)
}

func TestCompose_ExpiredRequestDeadline(t *testing.T) {
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	composer := NewComposer(blockingBackend{}, time.Second, zerolog.Nop())
	got := composer.Compose(ctx, completeParams(), nil, nil, nil)

	assert.Equal(t, "Error: analytics backend timed out after 0s (request deadline reached)", got.Text)
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"float", 0.1234567, "0.123457"},
		{"below shortest-digit tie", 0.1234565, "0.123456"},
		{"exact binary tie rounds to even", 1.0 / 128, "0.007812"},
		{"negative", -0.05, "-0.050000"},
		{"negative rounds to zero", -0.0000001, "-0.000000"},
		{"large", 12345.6789, "12345.678900"},
		{"integer", 2, "2.000000"},
		{"json number", json.Number("0.5"), "0.500000"},
		{"string", "NaN", "NaN"},
		{"infinity", math.Inf(1), "+Inf"},
		{"nil", nil, "<nil>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatValue(tt.value))
		})
	}
}

func TestFormatValue_MatchesPrintfRounding(t *testing.T) {
	values := []float64{
		0.1234565, 0.0000005, 0.0000015, 1.0000005, 2.5e-7, -0.1234565,
		0.015, 0.0125, 1.0 / 3, 2.0 / 3, 0.9999995, 1e-12, 123456.1234565, 5e-324,
	}
	for _, v := range values {
		assert.Equal(t, fmt.Sprintf("%.6f", v), formatValue(v), "value %v", v)
	}
}
