package agent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aristath/perfagent/internal/domain"
	"github.com/aristath/perfagent/internal/modules/analytics"
	"github.com/aristath/perfagent/internal/modules/catalog"
	"github.com/aristath/perfagent/internal/modules/returns"
	testingpkg "github.com/aristath/perfagent/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(oracle Oracle, backend domain.AnalyticsBackend, source catalog.Source) *Service {
	log := zerolog.Nop()
	cat := catalog.New(catalog.Config{
		Source:             source,
		FallbackPortfolios: []string{"Growth Plus", "Global Dividend", "Secure Income", "Global Macro Opportunities"},
		FallbackBenchmarks: []string{"Secure Income Benchmark", "MSCI World", "S&P 500"},
	}, log)
	return NewService(cat, NewExtractor(oracle, time.Second, log), NewComposer(backend, time.Second, log), log)
}

func TestChat_AsksForClarification(t *testing.T) {
	oracle := testingpkg.NewMockOracle(`{"portfolio_name":"Growth Plu","benchmark_name":null,"risk_free_portfolio_name":null,"start_date":"2023-01-15","end_date":"2023-03-31","metrics":["volatility"]}`)
	backend := &testingpkg.MockAnalyticsBackend{}
	svc := newTestService(oracle, backend, nil)

	resp := svc.Chat(context.Background(), ChatRequest{Message: "volatility of growth plu for Q1 2023"})

	assert.Contains(t, resp.Response, "Portfolio Name")
	assert.Contains(t, resp.Response, "Did you mean one of these portfolios: Growth Plus?")
	require.NotNil(t, resp.Parameters)
	assert.Equal(t, "Growth Plu", *resp.Parameters.PortfolioName)
	assert.Nil(t, resp.Results)
	assert.False(t, resp.ResetHistory)
	assert.Equal(t, 0, backend.Calls())
}

func TestChat_OracleFailureAsksForMetrics(t *testing.T) {
	oracle := &testingpkg.MockOracle{Err: errors.New("rate limited")}
	svc := newTestService(oracle, &testingpkg.MockAnalyticsBackend{}, nil)

	resp := svc.Chat(context.Background(), ChatRequest{Message: "hello"})

	assert.Equal(t, "I need the following information to compute: Metrics.", resp.Response)
	require.NotNil(t, resp.Parameters)
	assert.Equal(t, ParameterRecord{}, *resp.Parameters)
}

func TestChat_CompletesAndResets(t *testing.T) {
	oracle := testingpkg.NewMockOracle(`{"portfolio_name":"Growth Plus","start_date":"2023-01-15","end_date":"2023-03-31","metrics":["volatility"]}`)
	report := &domain.AnalyticsReport{Portfolio: "Growth Plus", Results: map[string]any{"volatility": 0.0125}}
	backend := &testingpkg.MockAnalyticsBackend{Report: report}
	// The live source is down, so the fallback catalog validates the name
	svc := newTestService(oracle, backend, &testingpkg.MockCatalogSource{Err: errors.New("unreachable")})

	resp := svc.Chat(context.Background(), ChatRequest{
		Message: "From January to March 2023",
		ConversationHistory: []ChatTurn{
			{Role: "user", Content: "Volatility of Growth Plus?"},
			{Role: "assistant", Content: "I need the following information to compute: Start Date, End Date."},
		},
	})

	assert.Equal(t, "Volatility is 0.012500", resp.Response)
	assert.Nil(t, resp.Parameters)
	assert.Same(t, report, resp.Results)
	assert.True(t, resp.ResetHistory)

	require.Equal(t, 1, backend.Calls())
	assert.Equal(t, "2023-01-31", backend.Queries[0].StartDate)
}

func TestChat_EndToEndWithLocalAnalytics(t *testing.T) {
	db, cleanup := testingpkg.NewPerformanceDB(t)
	defer cleanup()
	repo := returns.NewRepository(db.Conn(), zerolog.Nop())

	oracle := testingpkg.NewMockOracle(`{"portfolio_name":"Growth Plus","benchmark_name":"MSCI World","risk_free_portfolio_name":"Secure Income","start_date":"2023-01-01","end_date":"2023-06-15","metrics":["sharpe_ratio","beta"]}`)
	svc := newTestService(oracle, analytics.NewService(repo, zerolog.Nop()), repo)

	resp := svc.Chat(context.Background(), ChatRequest{Message: "sharpe and beta for growth plus vs msci world in H1 2023"})

	require.NotNil(t, resp.Results, resp.Response)
	assert.True(t, resp.ResetHistory)
	assert.Regexp(t, `^Sharpe Ratio is -?\d+\.\d{6}; Beta is -?\d+\.\d{6}$`, resp.Response)
	assert.Len(t, resp.Results.Results, 2)
}

func TestChat_BackendErrorKeepsHistory(t *testing.T) {
	db, cleanup := testingpkg.NewPerformanceDB(t)
	defer cleanup()
	repo := returns.NewRepository(db.Conn(), zerolog.Nop())

	// Global Dividend only has three months, so tracking error over six fails
	oracle := testingpkg.NewMockOracle(`{"portfolio_name":"Global Dividend","benchmark_name":"MSCI World","start_date":"2023-01-31","end_date":"2023-06-30","metrics":["tracking_error"]}`)
	svc := newTestService(oracle, analytics.NewService(repo, zerolog.Nop()), repo)

	resp := svc.Chat(context.Background(), ChatRequest{Message: "tracking error"})

	assert.Contains(t, resp.Response, "Error: ")
	assert.Contains(t, resp.Response, "series lengths do not match")
	assert.Nil(t, resp.Results)
	assert.Nil(t, resp.Parameters)
	assert.False(t, resp.ResetHistory)
}
