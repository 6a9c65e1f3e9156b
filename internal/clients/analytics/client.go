// Package analytics provides a client for a remote analytics API.
package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/aristath/perfagent/internal/domain"
	"github.com/rs/zerolog"
)

const defaultTimeout = 30 * time.Second

// maxErrorBody caps how much of an error response is kept
const maxErrorBody = 64 << 10

// Client computes metrics by calling GET <baseURL>?portfolio_name=...&metrics=...
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

var _ domain.AnalyticsBackend = (*Client)(nil)

// NewClient creates a new analytics API client. baseURL is the full
// analytics endpoint, e.g. http://localhost:8002/analytics.
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log.With().Str("client", "analytics").Logger(),
	}
}

// Compute requests the metrics in query. Non-success responses are returned
// as *domain.BackendError carrying the response body.
func (c *Client) Compute(ctx context.Context, query domain.AnalyticsQuery) (*domain.AnalyticsReport, error) {
	endpoint, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid analytics URL: %w", err)
	}
	endpoint.RawQuery = encodeQuery(query).Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.log.Debug().Str("url", endpoint.String()).Msg("Requesting analytics")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("analytics request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.log.Warn().Int("status", resp.StatusCode).Msg("Analytics API returned error status")
		return nil, &domain.BackendError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var report domain.AnalyticsReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return nil, fmt.Errorf("failed to decode analytics response: %w", err)
	}
	return &report, nil
}

// encodeQuery omits empty parameters and repeats metrics
func encodeQuery(query domain.AnalyticsQuery) url.Values {
	values := url.Values{}
	set := func(key, value string) {
		if value != "" {
			values.Set(key, value)
		}
	}
	set("portfolio_name", query.PortfolioName)
	set("benchmark_name", query.BenchmarkName)
	set("risk_free_portfolio_name", query.RiskFreePortfolioName)
	set("start_date", query.StartDate)
	set("end_date", query.EndDate)
	for _, m := range query.Metrics {
		values.Add("metrics", m)
	}
	return values
}
