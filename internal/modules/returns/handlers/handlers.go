// Package handlers provides HTTP handlers for the portfolio and benchmark data API.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/aristath/perfagent/internal/modules/returns"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles data API HTTP requests
type Handler struct {
	repo *returns.Repository
	log  zerolog.Logger
}

// NewHandler creates a new data API handler
func NewHandler(repo *returns.Repository, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		log:  log.With().Str("handler", "returns").Logger(),
	}
}

// HandleListPortfolios handles GET /api/data/portfolios
func (h *Handler) HandleListPortfolios(w http.ResponseWriter, r *http.Request) {
	portfolios, err := h.repo.ListPortfolios(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list portfolios")
		h.writeError(w, http.StatusInternalServerError, "Failed to list portfolios")
		return
	}
	if portfolios == nil {
		portfolios = []returns.Portfolio{}
	}
	h.writeJSON(w, http.StatusOK, portfolios)
}

// HandleGetPortfolio handles GET /api/data/portfolios/{id}
func (h *Handler) HandleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	portfolio, err := h.repo.GetPortfolio(r.Context(), id)
	if err != nil {
		h.log.Error().Err(err).Int64("portfolio_id", id).Msg("Failed to get portfolio")
		h.writeError(w, http.StatusInternalServerError, "Failed to get portfolio")
		return
	}
	if portfolio == nil {
		h.writeError(w, http.StatusNotFound, "Portfolio not found.")
		return
	}
	h.writeJSON(w, http.StatusOK, portfolio)
}

// HandleGetPortfolioReturns handles GET /api/data/portfolio-returns
func (h *Handler) HandleGetPortfolioReturns(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r.URL.Query().Get("portfolio_id"))
	if !ok {
		return
	}

	rows, err := h.repo.GetPortfolioReturns(r.Context(), id, dateRange(r))
	if err != nil {
		h.log.Error().Err(err).Int64("portfolio_id", id).Msg("Failed to get portfolio returns")
		h.writeError(w, http.StatusInternalServerError, "Failed to get portfolio returns")
		return
	}
	if rows == nil {
		rows = []returns.PortfolioReturn{}
	}
	h.writeJSON(w, http.StatusOK, rows)
}

// HandleListBenchmarks handles GET /api/data/benchmarks
func (h *Handler) HandleListBenchmarks(w http.ResponseWriter, r *http.Request) {
	benchmarks, err := h.repo.ListBenchmarks(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list benchmarks")
		h.writeError(w, http.StatusInternalServerError, "Failed to list benchmarks")
		return
	}
	if benchmarks == nil {
		benchmarks = []returns.Benchmark{}
	}
	h.writeJSON(w, http.StatusOK, benchmarks)
}

// HandleGetBenchmark handles GET /api/data/benchmarks/{id}
func (h *Handler) HandleGetBenchmark(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	benchmark, err := h.repo.GetBenchmark(r.Context(), id)
	if err != nil {
		h.log.Error().Err(err).Int64("benchmark_id", id).Msg("Failed to get benchmark")
		h.writeError(w, http.StatusInternalServerError, "Failed to get benchmark")
		return
	}
	if benchmark == nil {
		h.writeError(w, http.StatusNotFound, "Benchmark not found.")
		return
	}
	h.writeJSON(w, http.StatusOK, benchmark)
}

// HandleGetBenchmarkReturns handles GET /api/data/benchmark-returns
func (h *Handler) HandleGetBenchmarkReturns(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r.URL.Query().Get("benchmark_id"))
	if !ok {
		return
	}

	rows, err := h.repo.GetBenchmarkReturns(r.Context(), id, dateRange(r))
	if err != nil {
		h.log.Error().Err(err).Int64("benchmark_id", id).Msg("Failed to get benchmark returns")
		h.writeError(w, http.StatusInternalServerError, "Failed to get benchmark returns")
		return
	}
	if rows == nil {
		rows = []returns.BenchmarkReturn{}
	}
	h.writeJSON(w, http.StatusOK, rows)
}

func dateRange(r *http.Request) returns.DateRange {
	q := r.URL.Query()
	return returns.DateRange{Start: q.Get("start_date"), End: q.Get("end_date")}
}

func (h *Handler) parseID(w http.ResponseWriter, raw string) (int64, bool) {
	if raw == "" {
		h.writeError(w, http.StatusBadRequest, "id is required")
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "id must be an integer")
		return 0, false
	}
	return id, true
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
