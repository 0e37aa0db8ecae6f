// Package handler provides HTTP handlers for the health monitor's ops API.
package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/kmransom56/enhanced-network-api-corporate-sub001/internal/api/models"
	"github.com/kmransom56/enhanced-network-api-corporate-sub001/internal/api/response"
	"github.com/kmransom56/enhanced-network-api-corporate-sub001/internal/health"
)

// defaultHistoryLimit caps the history endpoint response.
const defaultHistoryLimit = 20

// OpsHandler serves the monitor's operational endpoints.
type OpsHandler struct {
	version string
	monitor *health.Monitor
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(version string, monitor *health.Monitor) *OpsHandler {
	return &OpsHandler{
		version: version,
		monitor: monitor,
	}
}

// Liveness handles GET /v1/ops/health - liveness of the monitor itself.
func (h *OpsHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.Liveness{
		Status:  "ok",
		Time:    time.Now(),
		Version: h.version,
	})
}

// Summary handles GET /v1/ops/status - latest snapshot, trend, and recent
// recovery events. Reports status "unknown" before the first round.
func (h *OpsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, h.monitor.HealthSummary())
}

// History handles GET /v1/ops/history - recent SystemHealth snapshots,
// oldest first. A "limit" query parameter bounds the count.
func (h *OpsHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	response.JSON(w, r, http.StatusOK, h.monitor.History().Recent(limit))
}

// RunCheck handles POST /v1/ops/check - one on-demand health round.
// Dependency failures are reported in the body, never as an HTTP error.
func (h *OpsHandler) RunCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, h.monitor.RunRound(r.Context()))
}

// Heal handles POST /v1/ops/heal - one on-demand auto-heal pass.
func (h *OpsHandler) Heal(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, h.monitor.AutoHeal(r.Context()))
}
