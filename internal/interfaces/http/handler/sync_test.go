package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordersync/backend/internal/application/pipeline"
	"github.com/ordersync/backend/internal/domain/sync"
	"github.com/ordersync/backend/internal/infrastructure/config"
	"github.com/ordersync/backend/internal/infrastructure/scheduler"
	"github.com/ordersync/backend/internal/interfaces/http/dto"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubAdapter struct {
	platform   sync.Platform
	records    []sync.OrderRecord
	pageResult *sync.PagedResult
	fetchErr   error

	started chan struct{}
	release chan struct{}
}

func (a *stubAdapter) Platform() sync.Platform { return a.platform }

func (a *stubAdapter) FetchUpdated(context.Context) ([]sync.OrderRecord, error) {
	if a.started != nil {
		close(a.started)
	}
	if a.release != nil {
		<-a.release
	}
	return a.records, a.fetchErr
}

func (a *stubAdapter) FetchForDate(context.Context, time.Time, int, int) (*sync.PagedResult, error) {
	if a.fetchErr != nil {
		return nil, a.fetchErr
	}
	if a.pageResult != nil {
		return a.pageResult, nil
	}
	return &sync.PagedResult{Records: []sync.OrderRecord{}}, nil
}

func (a *stubAdapter) TestConnection(context.Context) bool { return true }

type stubProcessor struct {
	failOrders map[string]bool
	calls      int
}

func (p *stubProcessor) UpsertOrder(_ context.Context, record *sync.OrderRecord) (*pipeline.Outcome, error) {
	p.calls++
	if p.failOrders[record.OrderID] {
		return nil, errors.New("boom")
	}
	return &pipeline.Outcome{OrderID: record.OrderID}, nil
}

// ---------------------------------------------------------------------------
// Harness
// ---------------------------------------------------------------------------

type harness struct {
	engine    *gin.Engine
	processor *stubProcessor
	orch      *scheduler.Orchestrator
}

func newHarness(t *testing.T, adapters ...sync.SourceAdapter) *harness {
	t.Helper()

	processor := &stubProcessor{}
	orch, err := scheduler.NewOrchestrator(config.OrchestratorConfig{
		Enabled:       true,
		Interval:      time.Hour,
		GlobalTimeout: 2 * time.Second,
		Concurrent:    true,
	}, adapters, processor, nil, nil)
	require.NoError(t, err)

	engine := gin.New()
	h := NewSyncHandler(orch, processor, adapters, 50, nil)
	h.RegisterRoutes(engine.Group("/api/v1"))

	return &harness{engine: engine, processor: processor, orch: orch}
}

func (h *harness) do(method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// ---------------------------------------------------------------------------
// Trigger
// ---------------------------------------------------------------------------

func TestTriggerReturnsCycleResult(t *testing.T) {
	adapter := &stubAdapter{
		platform: sync.PlatformShopee,
		records:  []sync.OrderRecord{{OrderID: "S-1", Platform: sync.PlatformShopee}},
	}
	h := newHarness(t, adapter)

	w := h.do(http.MethodPost, "/api/v1/sync/trigger", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode(t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, 1, h.processor.calls)
}

func TestTriggerConflictsWhileCycleRuns(t *testing.T) {
	slow := &stubAdapter{
		platform: sync.PlatformShopee,
		started:  make(chan struct{}),
		release:  make(chan struct{}),
	}
	h := newHarness(t, slow)

	firstDone := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		firstDone <- h.do(http.MethodPost, "/api/v1/sync/trigger", nil)
	}()
	<-slow.started

	w := h.do(http.MethodPost, "/api/v1/sync/trigger", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	resp := decode(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeCycleInProgress, resp.Error.Code)

	close(slow.release)
	assert.Equal(t, http.StatusOK, (<-firstDone).Code)
}

// ---------------------------------------------------------------------------
// Backfill
// ---------------------------------------------------------------------------

func TestBackfillProcessesOnePage(t *testing.T) {
	adapter := &stubAdapter{
		platform: sync.PlatformLazada,
		pageResult: &sync.PagedResult{
			Records: []sync.OrderRecord{
				{OrderID: "L-1", Platform: sync.PlatformLazada},
				{OrderID: "L-2", Platform: sync.PlatformLazada},
			},
			TotalCount: 80,
			HasMore:    true,
			NextPage:   2,
		},
	}
	h := newHarness(t, adapter)
	h.processor.failOrders = map[string]bool{"L-2": true}

	w := h.do(http.MethodPost, "/api/v1/sync/backfill", dto.BackfillRequest{
		Platform: "LAZADA",
		Date:     "2026-08-15",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data dto.BackfillResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Data.Fetched)
	assert.Equal(t, 1, resp.Data.Processed)
	assert.Equal(t, 1, resp.Data.Failed)
	assert.Equal(t, []dto.FailedOrder{{OrderID: "L-2", Error: "boom"}}, resp.Data.FailedOrders)
	assert.True(t, resp.Data.HasMore)
	assert.Equal(t, 2, resp.Data.NextPage)
}

func TestBackfillValidation(t *testing.T) {
	h := newHarness(t, &stubAdapter{platform: sync.PlatformShopee})

	w := h.do(http.MethodPost, "/api/v1/sync/backfill", gin.H{"platform": "EBAY", "date": "2026-08-15"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(http.MethodPost, "/api/v1/sync/backfill", gin.H{"platform": "SHOPEE", "date": "15/08/2026"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// valid platform, but no adapter configured for it
	w = h.do(http.MethodPost, "/api/v1/sync/backfill", gin.H{"platform": "TIKTOK", "date": "2026-08-15"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBackfillSourceFailure(t *testing.T) {
	adapter := &stubAdapter{platform: sync.PlatformShopee, fetchErr: errors.New("api down")}
	h := newHarness(t, adapter)

	w := h.do(http.MethodPost, "/api/v1/sync/backfill", dto.BackfillRequest{
		Platform: "SHOPEE",
		Date:     "2026-08-15",
	})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

// ---------------------------------------------------------------------------
// Stats and Controls
// ---------------------------------------------------------------------------

func TestStatsAndReset(t *testing.T) {
	adapter := &stubAdapter{platform: sync.PlatformShopee}
	h := newHarness(t, adapter)

	require.Equal(t, http.StatusOK, h.do(http.MethodPost, "/api/v1/sync/trigger", nil).Code)

	w := h.do(http.MethodGet, "/api/v1/sync/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats struct {
		Data scheduler.Snapshot `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, int64(1), stats.Data.ExecutionCount)

	require.Equal(t, http.StatusOK, h.do(http.MethodPost, "/api/v1/sync/stats/reset", nil).Code)

	w = h.do(http.MethodGet, "/api/v1/sync/stats", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, int64(0), stats.Data.ExecutionCount)
}

func TestSchedulerToggle(t *testing.T) {
	h := newHarness(t, &stubAdapter{platform: sync.PlatformShopee})

	require.Equal(t, http.StatusOK, h.do(http.MethodPost, "/api/v1/sync/scheduler/disable", nil).Code)
	assert.False(t, h.orch.SchedulerEnabled())

	require.Equal(t, http.StatusOK, h.do(http.MethodPost, "/api/v1/sync/scheduler/enable", nil).Code)
	assert.True(t, h.orch.SchedulerEnabled())
}

func TestSourceToggle(t *testing.T) {
	h := newHarness(t, &stubAdapter{platform: sync.PlatformShopee})

	require.Equal(t, http.StatusOK, h.do(http.MethodPost, "/api/v1/sync/sources/SHOPEE/disable", nil).Code)

	w := h.do(http.MethodGet, "/api/v1/sync/sources", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var sources struct {
		Data map[string]scheduler.SourceState `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sources))
	assert.False(t, sources.Data["SHOPEE"].Enabled)

	require.Equal(t, http.StatusOK, h.do(http.MethodPost, "/api/v1/sync/sources/SHOPEE/enable", nil).Code)

	w = h.do(http.MethodPost, "/api/v1/sync/sources/AMAZON/disable", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
