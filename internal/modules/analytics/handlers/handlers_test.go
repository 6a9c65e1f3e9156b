package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aristath/perfagent/internal/domain"
	"github.com/aristath/perfagent/internal/modules/analytics"
	"github.com/aristath/perfagent/internal/modules/returns"
	testingpkg "github.com/aristath/perfagent/internal/testing"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) *chi.Mux {
	t.Helper()
	db, cleanup := testingpkg.NewPerformanceDB(t)
	t.Cleanup(cleanup)

	repo := returns.NewRepository(db.Conn(), zerolog.Nop())
	handler := NewHandler(analytics.NewService(repo, zerolog.Nop()), zerolog.Nop())

	router := chi.NewRouter()
	handler.RegisterRoutes(router)
	return router
}

func TestHandleGetAnalytics(t *testing.T) {
	router := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet,
		"/analytics?portfolio_name=Growth+Plus&benchmark_name=MSCI+World&metrics=beta&metrics=volatility,tracking_error", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var report domain.AnalyticsReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, "Growth Plus", report.Portfolio)
	require.NotNil(t, report.Benchmark)
	assert.Equal(t, "MSCI World", *report.Benchmark)
	assert.Len(t, report.Results, 3)
	assert.Contains(t, report.Results, "beta")
	assert.Contains(t, report.Results, "volatility")
	assert.Contains(t, report.Results, "tracking_error")
}

func TestHandleGetAnalytics_ErrorStatuses(t *testing.T) {
	router := setupRouter(t)

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantDetail string
	}{
		{"missing portfolio", "", http.StatusBadRequest, "portfolio_name is required"},
		{"unknown metric", "portfolio_name=Growth+Plus&metrics=alpha", http.StatusBadRequest, "unknown metric: alpha"},
		{"unknown portfolio", "portfolio_name=Ghost", http.StatusNotFound, "Portfolio 'Ghost' not found"},
		{"unknown benchmark", "portfolio_name=Growth+Plus&benchmark_name=Ghost", http.StatusNotFound, "Benchmark 'Ghost' not found"},
		{"missing benchmark", "portfolio_name=Growth+Plus&metrics=beta", http.StatusBadRequest, "missing input: benchmark_returns"},
		{"computation error", "portfolio_name=Global+Dividend&benchmark_name=MSCI+World&metrics=tracking_error", http.StatusUnprocessableEntity, "computation failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/analytics?"+tt.query, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Contains(t, body["detail"], tt.wantDetail)
		})
	}
}

func TestHandleListMetrics(t *testing.T) {
	router := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var metrics []domain.MetricInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &metrics))
	require.Len(t, metrics, 5)
	assert.Equal(t, "volatility", metrics[0].Name)
	assert.Equal(t, "information_ratio", metrics[4].Name)
}

func TestHandleCompute(t *testing.T) {
	router := setupRouter(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		check      func(t *testing.T, body string)
	}{
		{
			name:       "volatility",
			body:       `{"metric":"volatility","inputs":{"returns":[0.01,0.02,0.03]}}`,
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body string) {
				var resp struct {
					Metric string  `json:"metric"`
					Value  float64 `json:"value"`
				}
				require.NoError(t, json.Unmarshal([]byte(body), &resp))
				assert.Equal(t, "volatility", resp.Metric)
				assert.InDelta(t, 0.01, resp.Value, 1e-12)
			},
		},
		{
			name:       "beta",
			body:       `{"metric":"beta","inputs":{"portfolio_returns":[0.02,0.04,0.06],"benchmark_returns":[0.01,0.02,0.03]}}`,
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body string) {
				var resp ComputeResponse
				require.NoError(t, json.Unmarshal([]byte(body), &resp))
				assert.InDelta(t, 2.0, resp.Value, 1e-9)
			},
		},
		{
			name:       "non-finite value",
			body:       `{"metric":"sharpe_ratio","inputs":{"returns":[0.01,0.01],"risk_free_return":0}}`,
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body string) {
				assert.Contains(t, body, `"value":"+Inf"`)
			},
		},
		{"unknown metric", `{"metric":"sortino","inputs":{}}`, http.StatusNotFound, func(t *testing.T, body string) {
			assert.Contains(t, body, "Metric 'sortino' not implemented")
		}},
		{"missing input", `{"metric":"volatility","inputs":{}}`, http.StatusBadRequest, func(t *testing.T, body string) {
			assert.Contains(t, body, "missing input: returns")
		}},
		{"unexpected input", `{"metric":"volatility","inputs":{"prices":[1,2]}}`, http.StatusBadRequest, nil},
		{"mismatched lengths", `{"metric":"tracking_error","inputs":{"portfolio_returns":[0.1,0.2,0.3],"benchmark_returns":[0.1,0.2]}}`, http.StatusBadRequest, nil},
		{"malformed json", `{"metric":`, http.StatusBadRequest, nil},
		{"missing metric", `{"inputs":{}}`, http.StatusBadRequest, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/compute", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.check != nil {
				tt.check(t, w.Body.String())
			}
		})
	}
}

func TestParseMetrics(t *testing.T) {
	assert.Nil(t, parseMetrics(nil))
	assert.Equal(t, []string{"beta", "volatility", "sharpe_ratio"}, parseMetrics([]string{"beta", " volatility , ,sharpe_ratio"}))
}
