// Package agent turns conversational requests into validated analytics
// parameters and composes the reply for each chat turn.
package agent

import "strings"

// Parameter field names, as exchanged with the oracle and reported as missing
const (
	FieldPortfolioName         = "portfolio_name"
	FieldBenchmarkName         = "benchmark_name"
	FieldRiskFreePortfolioName = "risk_free_portfolio_name"
	FieldStartDate             = "start_date"
	FieldEndDate               = "end_date"
	FieldMetrics               = "metrics"
)

// ParameterRecord is the possibly-partial set of parameters extracted from a
// conversation. Nil fields are not yet known.
type ParameterRecord struct {
	PortfolioName         *string  `json:"portfolio_name"`
	BenchmarkName         *string  `json:"benchmark_name"`
	RiskFreePortfolioName *string  `json:"risk_free_portfolio_name"`
	StartDate             *string  `json:"start_date"`
	EndDate               *string  `json:"end_date"`
	Metrics               []string `json:"metrics"`
}

// Value returns the named string field, or nil for unknown names and metrics
func (p ParameterRecord) Value(field string) *string {
	switch field {
	case FieldPortfolioName:
		return p.PortfolioName
	case FieldBenchmarkName:
		return p.BenchmarkName
	case FieldRiskFreePortfolioName:
		return p.RiskFreePortfolioName
	case FieldStartDate:
		return p.StartDate
	case FieldEndDate:
		return p.EndDate
	}
	return nil
}

// Has reports whether field is present
func (p ParameterRecord) Has(field string) bool {
	if field == FieldMetrics {
		return len(p.Metrics) > 0
	}
	return p.Value(field) != nil
}

// Normalized returns a copy with blank strings cleared and duplicate metrics
// removed (first occurrence wins).
func (p ParameterRecord) Normalized() ParameterRecord {
	out := ParameterRecord{
		PortfolioName:         nonBlank(p.PortfolioName),
		BenchmarkName:         nonBlank(p.BenchmarkName),
		RiskFreePortfolioName: nonBlank(p.RiskFreePortfolioName),
		StartDate:             nonBlank(p.StartDate),
		EndDate:               nonBlank(p.EndDate),
	}

	seen := make(map[string]bool, len(p.Metrics))
	for _, m := range p.Metrics {
		m = strings.TrimSpace(m)
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		out.Metrics = append(out.Metrics, m)
	}
	return out
}

func nonBlank(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
