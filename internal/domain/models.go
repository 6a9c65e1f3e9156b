// Package domain provides the metric vocabulary and the analytics contract
// shared by the chat agent, the analytics service and the HTTP clients.
package domain

import (
	"fmt"
	"strings"
)

// Metric identifiers. This is the full vocabulary understood by the
// analytics service.
const (
	MetricVolatility       = "volatility"
	MetricBeta             = "beta"
	MetricSharpeRatio      = "sharpe_ratio"
	MetricTrackingError    = "tracking_error"
	MetricInformationRatio = "information_ratio"
)

// AllMetrics lists every metric identifier in canonical order.
var AllMetrics = []string{
	MetricVolatility,
	MetricBeta,
	MetricSharpeRatio,
	MetricTrackingError,
	MetricInformationRatio,
}

// MetricInfo describes a metric for the metric catalog endpoint.
type MetricInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

var metricDescriptions = map[string]string{
	MetricVolatility:       "Standard deviation of realized portfolio returns",
	MetricBeta:             "Sensitivity of portfolio returns to benchmark returns",
	MetricSharpeRatio:      "Ex-post Sharpe ratio: realized excess return per unit of total risk",
	MetricTrackingError:    "Ex-post tracking error: volatility of active returns vs benchmark",
	MetricInformationRatio: "Ex-post information ratio: mean active return per unit of tracking error",
}

// IsKnownMetric reports whether name is part of the metric vocabulary.
func IsKnownMetric(name string) bool {
	_, ok := metricDescriptions[name]
	return ok
}

// MetricCatalog returns the metric vocabulary with descriptions.
func MetricCatalog() []MetricInfo {
	infos := make([]MetricInfo, 0, len(AllMetrics))
	for _, m := range AllMetrics {
		infos = append(infos, MetricInfo{Name: m, Description: metricDescriptions[m]})
	}
	return infos
}

// AnalyticsQuery is a validated request for metric computation.
// Empty strings mean "not supplied".
type AnalyticsQuery struct {
	PortfolioName         string   `json:"portfolio_name"`
	BenchmarkName         string   `json:"benchmark_name,omitempty"`
	RiskFreePortfolioName string   `json:"risk_free_portfolio_name,omitempty"`
	StartDate             string   `json:"start_date,omitempty"`
	EndDate               string   `json:"end_date,omitempty"`
	Metrics               []string `json:"metrics"`
}

// AnalyticsReport is the result of a metric computation. Result values are
// float64 for finite numbers; anything else (e.g. "NaN") is carried as-is.
type AnalyticsReport struct {
	Portfolio string         `json:"portfolio"`
	Benchmark *string        `json:"benchmark"`
	Results   map[string]any `json:"results"`
}

// BackendError is returned by a remote analytics backend that answered with
// a non-success status.
type BackendError struct {
	StatusCode int
	Body       string
}

func (e *BackendError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("analytics backend returned status %d", e.StatusCode)
	}
	return body
}
