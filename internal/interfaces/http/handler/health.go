package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ordersync/backend/internal/infrastructure/scheduler"
	"github.com/ordersync/backend/internal/interfaces/http/dto"
)

// Pinger reports database connectivity
type Pinger interface {
	Ping() error
}

// HealthHandler serves the liveness endpoint.
type HealthHandler struct {
	db           Pinger
	orchestrator *scheduler.Orchestrator
}

// NewHealthHandler creates a health handler
func NewHealthHandler(db Pinger, orchestrator *scheduler.Orchestrator) *HealthHandler {
	return &HealthHandler{db: db, orchestrator: orchestrator}
}

// Check reports the service health. The database must answer; source health
// is informational and comes from the latest probe.
func (h *HealthHandler) Check(c *gin.Context) {
	resp := dto.HealthResponse{
		Status:   "ok",
		Database: "up",
	}

	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			resp.Status = "degraded"
			resp.Database = "down"
		}
	}
	if h.orchestrator != nil {
		resp.Scheduler = h.orchestrator.IsRunning()
		resp.Sources = make(map[string]string)
		for platform, state := range h.orchestrator.SourceStates() {
			switch {
			case !state.Enabled:
				resp.Sources[platform] = "disabled"
			case state.Healthy:
				resp.Sources[platform] = "up"
			default:
				resp.Sources[platform] = "down"
			}
		}
	}

	status := http.StatusOK
	if resp.Database == "down" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}
