// Package server provides the HTTP server and routing for the performance agent.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

type statsFunc func() (cpuPercent float64, ramPercent float64)

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status     string  `json:"status"`
	Version    string  `json:"version"`
	Service    string  `json:"service"`
	Database   string  `json:"database"`
	CPUPercent float64 `json:"cpu_percent"`
	RAMPercent float64 `json:"ram_percent"`
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:   "healthy",
		Version:  "1.0.0",
		Service:  "perfagent",
		Database: "unconfigured",
	}

	if s.container != nil && s.container.PerformanceDB != nil {
		if err := s.container.PerformanceDB.QuickCheck(r.Context()); err != nil {
			s.log.Warn().Err(err).Msg("Database health check failed")
			response.Status = "degraded"
			response.Database = "error"
		} else {
			response.Database = "ok"
		}
	}

	response.CPUPercent, response.RAMPercent = s.stats()

	status := http.StatusOK
	if response.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, status, response)
}

// getSystemStats returns CPU and RAM usage percentages.
// CPU is sampled over 100ms to keep health checks fast.
func (s *Server) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
