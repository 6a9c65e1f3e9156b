package testing

import (
	"context"
	"sync"

	"github.com/aristath/perfagent/internal/domain"
)

// MockOracle is a scripted language oracle. It returns Reply/Err and records
// every prompt pair it receives.
type MockOracle struct {
	mu          sync.Mutex
	Reply       string
	Err         error
	SystemCalls []string
	UserCalls   []string
}

// NewMockOracle creates an oracle that always answers with reply
func NewMockOracle(reply string) *MockOracle {
	return &MockOracle{Reply: reply}
}

// Complete returns the scripted reply
func (m *MockOracle) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SystemCalls = append(m.SystemCalls, systemPrompt)
	m.UserCalls = append(m.UserCalls, userPrompt)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Reply, nil
}

// Calls returns how many times Complete was invoked
func (m *MockOracle) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.UserCalls)
}

// MockCatalogSource serves fixed name lists or a fixed error
type MockCatalogSource struct {
	Portfolios []string
	Benchmarks []string
	Err        error
}

// PortfolioNames returns the configured portfolios
func (m *MockCatalogSource) PortfolioNames(ctx context.Context) ([]string, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Portfolios, nil
}

// BenchmarkNames returns the configured benchmarks
func (m *MockCatalogSource) BenchmarkNames(ctx context.Context) ([]string, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Benchmarks, nil
}

// MockAnalyticsBackend is a mock implementation of domain.AnalyticsBackend
type MockAnalyticsBackend struct {
	mu      sync.Mutex
	Report  *domain.AnalyticsReport
	Err     error
	Queries []domain.AnalyticsQuery
}

// Compute records the query and returns the configured report or error
func (m *MockAnalyticsBackend) Compute(ctx context.Context, query domain.AnalyticsQuery) (*domain.AnalyticsReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Queries = append(m.Queries, query)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Report, nil
}

// Calls returns how many times Compute was invoked
func (m *MockAnalyticsBackend) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Queries)
}
