package handler

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ordersync/backend/internal/domain/sync"
	"github.com/ordersync/backend/internal/infrastructure/scheduler"
	"github.com/ordersync/backend/internal/interfaces/http/dto"
)

const backfillDateLayout = "2006-01-02"

// SyncHandler exposes the sync orchestrator over HTTP.
type SyncHandler struct {
	BaseHandler
	orchestrator *scheduler.Orchestrator
	processor    scheduler.OrderProcessor
	sources      []sync.SourceAdapter
	pageSize     int
	logger       *zap.Logger
}

// NewSyncHandler creates a sync handler
func NewSyncHandler(
	orchestrator *scheduler.Orchestrator,
	processor scheduler.OrderProcessor,
	sources []sync.SourceAdapter,
	pageSize int,
	logger *zap.Logger,
) *SyncHandler {
	if pageSize <= 0 {
		pageSize = 50
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncHandler{
		orchestrator: orchestrator,
		processor:    processor,
		sources:      sources,
		pageSize:     pageSize,
		logger:       logger,
	}
}

// RegisterRoutes registers the sync endpoints on the given group
func (h *SyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/sync")
	group.POST("/trigger", h.Trigger)
	group.POST("/backfill", h.Backfill)
	group.GET("/stats", h.Stats)
	group.POST("/stats/reset", h.ResetStats)
	group.POST("/scheduler/enable", h.EnableScheduler)
	group.POST("/scheduler/disable", h.DisableScheduler)
	group.GET("/sources", h.Sources)
	group.POST("/sources/:platform/enable", h.EnableSource)
	group.POST("/sources/:platform/disable", h.DisableSource)
}

// Trigger runs one sync cycle synchronously
func (h *SyncHandler) Trigger(c *gin.Context) {
	result, err := h.orchestrator.TriggerCycle(c.Request.Context())
	if err != nil {
		if errors.Is(err, scheduler.ErrCycleInProgress) {
			h.Conflict(c, dto.ErrCodeCycleInProgress, "a sync cycle is already running")
			return
		}
		h.logger.Error("manual sync trigger failed", zap.Error(err))
		h.InternalError(c, "sync cycle failed to start")
		return
	}
	h.Success(c, result)
}

// Backfill re-imports one page of a historical date from a single source
func (h *SyncHandler) Backfill(c *gin.Context) {
	var req dto.BackfillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, bindingErrorMessage(err))
		return
	}
	date, err := time.Parse(backfillDateLayout, req.Date)
	if err != nil {
		h.BadRequest(c, "invalid date")
		return
	}
	if req.Page <= 0 {
		req.Page = 1
	}

	adapter := h.adapterFor(sync.Platform(req.Platform))
	if adapter == nil {
		h.NotFound(c, "source not configured: "+req.Platform)
		return
	}

	result, err := adapter.FetchForDate(c.Request.Context(), date, req.Page, h.pageSize)
	if err != nil {
		h.logger.Warn("backfill fetch failed",
			zap.String("platform", req.Platform),
			zap.String("date", req.Date),
			zap.Error(err))
		h.ServiceUnavailable(c, "source fetch failed")
		return
	}

	resp := dto.BackfillResponse{
		Platform:   req.Platform,
		Date:       req.Date,
		Page:       req.Page,
		Fetched:    len(result.Records),
		TotalCount: result.TotalCount,
		HasMore:    result.HasMore,
	}
	if result.HasMore {
		resp.NextPage = result.NextPage
	}
	for i := range result.Records {
		if _, err := h.processor.UpsertOrder(c.Request.Context(), &result.Records[i]); err != nil {
			resp.Failed++
			resp.FailedOrders = append(resp.FailedOrders, dto.FailedOrder{
				OrderID: result.Records[i].OrderID,
				Error:   err.Error(),
			})
			h.logger.Warn("backfill order failed",
				zap.String("platform", req.Platform),
				zap.String("order_id", result.Records[i].OrderID),
				zap.Error(err))
			continue
		}
		resp.Processed++
	}

	h.Success(c, resp)
}

// Stats returns the orchestrator statistics snapshot
func (h *SyncHandler) Stats(c *gin.Context) {
	h.Success(c, h.orchestrator.Statistics())
}

// ResetStats zeroes the orchestrator statistics
func (h *SyncHandler) ResetStats(c *gin.Context) {
	h.orchestrator.ResetStatistics()
	h.Success(c, gin.H{"reset": true})
}

// EnableScheduler resumes scheduled cycles
func (h *SyncHandler) EnableScheduler(c *gin.Context) {
	h.orchestrator.EnableScheduler()
	h.Success(c, dto.SchedulerStateResponse{Enabled: true})
}

// DisableScheduler pauses scheduled cycles
func (h *SyncHandler) DisableScheduler(c *gin.Context) {
	h.orchestrator.DisableScheduler()
	h.Success(c, dto.SchedulerStateResponse{Enabled: false})
}

// Sources returns the runtime state of every configured source
func (h *SyncHandler) Sources(c *gin.Context) {
	h.Success(c, h.orchestrator.SourceStates())
}

// EnableSource includes a source in upcoming cycles
func (h *SyncHandler) EnableSource(c *gin.Context) {
	h.toggleSource(c, true)
}

// DisableSource excludes a source from upcoming cycles
func (h *SyncHandler) DisableSource(c *gin.Context) {
	h.toggleSource(c, false)
}

func (h *SyncHandler) toggleSource(c *gin.Context, enabled bool) {
	platform := sync.Platform(c.Param("platform"))
	var err error
	if enabled {
		err = h.orchestrator.EnableSource(platform)
	} else {
		err = h.orchestrator.DisableSource(platform)
	}
	if err != nil {
		h.NotFound(c, "unknown platform: "+platform.String())
		return
	}
	h.Success(c, dto.SourceToggleResponse{Platform: platform.String(), Enabled: enabled})
}

// bindingErrorMessage flattens validator field errors into one readable line
func bindingErrorMessage(err error) string {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return "invalid request body"
	}
	parts := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		parts = append(parts, fe.Field()+" failed on '"+fe.Tag()+"'")
	}
	return strings.Join(parts, "; ")
}

func (h *SyncHandler) adapterFor(platform sync.Platform) sync.SourceAdapter {
	for _, src := range h.sources {
		if src.Platform() == platform {
			return src
		}
	}
	return nil
}
