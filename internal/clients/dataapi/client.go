// Package dataapi provides a client for a remote portfolio data API.
package dataapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aristath/perfagent/internal/modules/returns"
	"github.com/rs/zerolog"
)

const defaultTimeout = 30 * time.Second

// Client reads portfolios, benchmarks and return series over HTTP
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a new data API client. baseURL is the data API root,
// e.g. http://localhost:8000 (serving /portfolios, /portfolio-returns, ...).
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log.With().Str("client", "dataapi").Logger(),
	}
}

// Timeout returns the per-call timeout
func (c *Client) Timeout() time.Duration {
	return c.httpClient.Timeout
}

// ListPortfolios returns all portfolios
func (c *Client) ListPortfolios(ctx context.Context) ([]returns.Portfolio, error) {
	var portfolios []returns.Portfolio
	if err := c.get(ctx, "/portfolios", nil, &portfolios); err != nil {
		return nil, err
	}
	return portfolios, nil
}

// ListBenchmarks returns all benchmarks
func (c *Client) ListBenchmarks(ctx context.Context) ([]returns.Benchmark, error) {
	var benchmarks []returns.Benchmark
	if err := c.get(ctx, "/benchmarks", nil, &benchmarks); err != nil {
		return nil, err
	}
	return benchmarks, nil
}

// PortfolioNames returns portfolio names in API order
func (c *Client) PortfolioNames(ctx context.Context) ([]string, error) {
	portfolios, err := c.ListPortfolios(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(portfolios))
	for _, p := range portfolios {
		names = append(names, p.Name)
	}
	return names, nil
}

// BenchmarkNames returns benchmark names in API order
func (c *Client) BenchmarkNames(ctx context.Context) ([]string, error) {
	benchmarks, err := c.ListBenchmarks(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(benchmarks))
	for _, b := range benchmarks {
		names = append(names, b.Name)
	}
	return names, nil
}

// PortfolioSeries resolves name to an id and fetches its returns. found is
// false when no portfolio has that exact name.
func (c *Client) PortfolioSeries(ctx context.Context, name string, dr returns.DateRange) (returns.Series, bool, error) {
	portfolios, err := c.ListPortfolios(ctx)
	if err != nil {
		return nil, false, err
	}
	for _, p := range portfolios {
		if p.Name != name {
			continue
		}
		var rows []returns.PortfolioReturn
		if err := c.get(ctx, "/portfolio-returns", rangeQuery("portfolio_id", p.ID, dr), &rows); err != nil {
			return nil, true, err
		}
		series := make(returns.Series, len(rows))
		for i, row := range rows {
			series[i] = returns.Point{Date: row.MonthEndDate, Value: row.Return}
		}
		return sortSeries(series), true, nil
	}
	return nil, false, nil
}

// BenchmarkSeries resolves name to an id and fetches its returns. found is
// false when no benchmark has that exact name.
func (c *Client) BenchmarkSeries(ctx context.Context, name string, dr returns.DateRange) (returns.Series, bool, error) {
	benchmarks, err := c.ListBenchmarks(ctx)
	if err != nil {
		return nil, false, err
	}
	for _, b := range benchmarks {
		if b.Name != name {
			continue
		}
		var rows []returns.BenchmarkReturn
		if err := c.get(ctx, "/benchmark-returns", rangeQuery("benchmark_id", b.ID, dr), &rows); err != nil {
			return nil, true, err
		}
		series := make(returns.Series, len(rows))
		for i, row := range rows {
			series[i] = returns.Point{Date: row.MonthEndDate, Value: row.Return}
		}
		return sortSeries(series), true, nil
	}
	return nil, false, nil
}

func rangeQuery(idKey string, id int64, dr returns.DateRange) url.Values {
	q := url.Values{}
	q.Set(idKey, strconv.FormatInt(id, 10))
	if dr.Start != "" {
		q.Set("start_date", dr.Start)
	}
	if dr.End != "" {
		q.Set("end_date", dr.End)
	}
	return q
}

// sortSeries orders points by date; remote stores do not guarantee order
func sortSeries(s returns.Series) returns.Series {
	sort.SliceStable(s, func(i, j int) bool { return s[i].Date < s[j].Date })
	return s
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("data API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.log.Warn().Int("status", resp.StatusCode).Str("path", path).Msg("Data API returned error status")
		return fmt.Errorf("data API %s returned status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}
