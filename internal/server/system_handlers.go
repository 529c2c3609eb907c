package server

import (
	"net/http"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// systemStatus is the /api/system/status response
type systemStatus struct {
	Status        string   `json:"status"`
	UptimeSeconds float64  `json:"uptime_seconds"`
	ModelFitted   bool     `json:"model_fitted"`
	FeatureCount  int      `json:"feature_count"`
	CPUPercent    *float64 `json:"cpu_percent,omitempty"`
	MemoryPercent *float64 `json:"memory_percent,omitempty"`
	MemoryUsedMB  *float64 `json:"memory_used_mb,omitempty"`
}

// handleSystemStatus reports process uptime, model state, and host resource
// usage.
// GET /api/system/status
func (s *Server) handleSystemStatus(w http.ResponseWriter, r *http.Request) {
	status := systemStatus{
		Status:        "ok",
		UptimeSeconds: time.Since(s.startedAt).Seconds(),
	}

	if model := s.snapshot.Current(); model != nil {
		status.ModelFitted = model.Fitted()
		status.FeatureCount = len(model.Schema())
	}

	if cpuPercent, err := cpu.Percent(100*time.Millisecond, false); err == nil && len(cpuPercent) > 0 {
		status.CPUPercent = &cpuPercent[0]
	} else if err != nil {
		s.log.Debug().Err(err).Msg("Failed to read CPU usage")
	}

	if memStat, err := mem.VirtualMemory(); err == nil {
		usedMB := float64(memStat.Used) / 1024 / 1024
		status.MemoryPercent = &memStat.UsedPercent
		status.MemoryUsedMB = &usedMB
	} else {
		s.log.Debug().Err(err).Msg("Failed to read memory usage")
	}

	s.respondJSON(w, http.StatusOK, status)
}
