// Package handlers provides HTTP handlers for analytics and formula evaluation.
package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/aristath/perfagent/internal/domain"
	"github.com/aristath/perfagent/internal/modules/analytics"
	"github.com/rs/zerolog"
)

// Handler handles analytics HTTP requests
type Handler struct {
	service *analytics.Service
	log     zerolog.Logger
}

// NewHandler creates a new analytics handler
func NewHandler(service *analytics.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "analytics").Logger(),
	}
}

// ComputeRequest is the body of POST /api/compute
type ComputeRequest struct {
	Metric string          `json:"metric"`
	Inputs json.RawMessage `json:"inputs"`
}

// ComputeResponse is the result of POST /api/compute
type ComputeResponse struct {
	Metric string `json:"metric"`
	Value  any    `json:"value"`
}

// HandleGetAnalytics handles GET /api/analytics
func (h *Handler) HandleGetAnalytics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := domain.AnalyticsQuery{
		PortfolioName:         q.Get("portfolio_name"),
		BenchmarkName:         q.Get("benchmark_name"),
		RiskFreePortfolioName: q.Get("risk_free_portfolio_name"),
		StartDate:             q.Get("start_date"),
		EndDate:               q.Get("end_date"),
		Metrics:               parseMetrics(q["metrics"]),
	}

	report, err := h.service.Compute(r.Context(), query)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			h.log.Error().Err(err).Str("portfolio", query.PortfolioName).Msg("Failed to compute analytics")
		}
		h.writeError(w, status, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, report)
}

// HandleListMetrics handles GET /api/metrics
func (h *Handler) HandleListMetrics(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, domain.MetricCatalog())
}

// HandleCompute handles POST /api/compute
func (h *Handler) HandleCompute(w http.ResponseWriter, r *http.Request) {
	var req ComputeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Metric == "" {
		h.writeError(w, http.StatusBadRequest, "metric is required")
		return
	}
	if !domain.IsKnownMetric(req.Metric) {
		h.writeError(w, http.StatusNotFound, fmt.Sprintf("Metric '%s' not implemented", req.Metric))
		return
	}

	var inputs analytics.FormulaInputs
	if len(req.Inputs) > 0 {
		dec := json.NewDecoder(bytes.NewReader(req.Inputs))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&inputs); err != nil {
			h.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid inputs: %v", err))
			return
		}
	}

	value, err := analytics.Evaluate(req.Metric, inputs)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, ComputeResponse{Metric: req.Metric, Value: analytics.EncodeValue(value)})
}

// parseMetrics accepts repeated parameters and comma-separated lists
func parseMetrics(values []string) []string {
	var metrics []string
	for _, v := range values {
		for _, m := range strings.Split(v, ",") {
			if m = strings.TrimSpace(m); m != "" {
				metrics = append(metrics, m)
			}
		}
	}
	return metrics
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, analytics.ErrInvalidRequest), errors.Is(err, analytics.ErrUnknownMetric),
		errors.Is(err, analytics.ErrMissingInput):
		return http.StatusBadRequest
	case errors.Is(err, analytics.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, analytics.ErrComputation):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, detail string) {
	h.writeJSON(w, status, map[string]string{"detail": detail})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
