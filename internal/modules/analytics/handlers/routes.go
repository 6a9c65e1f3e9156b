package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers the analytics and formula routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/analytics", h.HandleGetAnalytics)

	// Formula API
	r.Get("/metrics", h.HandleListMetrics)
	r.Post("/compute", h.HandleCompute)
}
