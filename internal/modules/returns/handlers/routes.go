package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all data API routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/data", func(r chi.Router) {
		r.Get("/portfolios", h.HandleListPortfolios)
		r.Get("/portfolios/{id}", h.HandleGetPortfolio)
		r.Get("/portfolio-returns", h.HandleGetPortfolioReturns)

		r.Get("/benchmarks", h.HandleListBenchmarks)
		r.Get("/benchmarks/{id}", h.HandleGetBenchmark)
		r.Get("/benchmark-returns", h.HandleGetBenchmarkReturns)
	})
}
