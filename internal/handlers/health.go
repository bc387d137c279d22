package handlers

import (
	"net/http"
	"runtime"
	"time"

	"video-renditions/internal/startup"
)

const (
	statusHealthy  = "healthy"
	statusDraining = "draining"
)

// HealthResponse contains the health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Ready   bool   `json:"ready"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`

	// Queue state
	PendingGroups int `json:"pendingGroups"`
	PendingJobs   int `json:"pendingJobs"`
	ActiveJobs    int `json:"activeJobs"`
	CachedProbes  int `json:"cachedProbes"`
	Presets       int `json:"presets"`

	// System info
	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`
}

// HealthCheck returns the health status of the service
func (h *Handlers) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	ready := !h.shuttingDown.Load()

	response := HealthResponse{
		Status:       statusHealthy,
		Ready:        ready,
		Version:      startup.Version,
		Uptime:       time.Since(h.startTime).Round(time.Second).String(),
		Presets:      len(h.presets.All()),
		GoVersion:    runtime.Version(),
		NumCPU:       runtime.NumCPU(),
		NumGoroutine: runtime.NumGoroutine(),
	}
	if h.stats != nil {
		stats := h.stats.GetStats()
		response.PendingGroups = stats.PendingGroups
		response.PendingJobs = stats.PendingJobs
		response.ActiveJobs = stats.ActiveJobs
		response.CachedProbes = stats.CachedProbes
	}

	w.Header().Set("Content-Type", "application/json")
	if !ready {
		response.Status = statusDraining
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	writeJSON(w, response)
}

// LivenessCheck is a simple liveness probe (always returns 200 if server is running)
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	// For HEAD requests, only send headers (no body)
	if r.Method != http.MethodHead {
		writeJSON(w, map[string]string{"status": "alive"})
	}
}

// ReadinessCheck returns 200 only when the service accepts new transcodes
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, _ *http.Request) {
	if h.shuttingDown.Load() {
		writeJSONStatus(w, http.StatusServiceUnavailable, "not_ready")
		return
	}
	writeJSONStatus(w, http.StatusOK, "ready")
}
