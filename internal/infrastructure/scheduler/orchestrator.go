// Package scheduler runs the periodic multi-source sync cycle.
//
// One orchestrator owns the whole loop: it ticks on a fixed interval, pulls
// every enabled source (concurrently by default), pushes each fetched order
// through the upsert pipeline, and aggregates the outcome into cycle
// statistics. At most one cycle is ever in flight; scheduled ticks and manual
// triggers arriving while a cycle runs are rejected.
package scheduler

import (
	"context"
	"errors"
	stdsync "sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/ordersync/backend/internal/application/pipeline"
	"github.com/ordersync/backend/internal/domain/sync"
	"github.com/ordersync/backend/internal/infrastructure/config"
)

const healthProbeTimeout = 10 * time.Second

// OrderProcessor is what the orchestrator needs from the upsert pipeline
type OrderProcessor interface {
	UpsertOrder(ctx context.Context, record *sync.OrderRecord) (*pipeline.Outcome, error)
}

// ---------------------------------------------------------------------------
// Orchestrator
// ---------------------------------------------------------------------------

// Orchestrator coordinates scheduled and manual sync cycles across all
// configured marketplace sources.
type Orchestrator struct {
	config    config.OrchestratorConfig
	sources   []sync.SourceAdapter
	processor OrderProcessor
	logger    *zap.Logger
	metrics   *Metrics
	stats     *CycleStatistics

	// cycleInFlight enforces the single-cycle invariant
	cycleInFlight    atomic.Bool
	schedulerEnabled atomic.Bool
	sequence         atomic.Int64
	state            atomic.Value // CycleState

	mu        stdsync.Mutex
	isRunning bool
	cancel    context.CancelFunc
	wg        stdsync.WaitGroup

	sourceMu stdsync.RWMutex
	disabled map[sync.Platform]bool
	healthy  map[sync.Platform]bool
}

// NewOrchestrator creates an orchestrator over the given sources. The metrics
// argument may be nil when no prometheus surface is wanted.
func NewOrchestrator(
	cfg config.OrchestratorConfig,
	sources []sync.SourceAdapter,
	processor OrderProcessor,
	logger *zap.Logger,
	metrics *Metrics,
) (*Orchestrator, error) {
	if processor == nil {
		return nil, errors.New("scheduler: processor is required")
	}
	if cfg.Interval <= 0 || cfg.GlobalTimeout <= 0 {
		return nil, ErrInvalidConfig
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	o := &Orchestrator{
		config:    cfg,
		sources:   sources,
		processor: processor,
		logger:    logger,
		metrics:   metrics,
		stats:     NewCycleStatistics(cfg.CycleHistorySize),
		disabled:  make(map[sync.Platform]bool),
		healthy:   make(map[sync.Platform]bool),
	}
	o.state.Store(StateIdle)
	o.schedulerEnabled.Store(cfg.Enabled)
	return o, nil
}

// ---------------------------------------------------------------------------
// Lifecycle
// ---------------------------------------------------------------------------

// Start launches the scheduling and health-check loops
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.isRunning {
		return ErrAlreadyRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	o.isRunning = true

	o.wg.Add(1)
	go o.runLoop(runCtx)
	if o.config.HealthInterval > 0 {
		o.wg.Add(1)
		go o.healthLoop(runCtx)
	}

	o.logger.Info("sync orchestrator started",
		zap.Duration("interval", o.config.Interval),
		zap.Duration("startup_delay", o.config.StartupDelay),
		zap.Int("sources", len(o.sources)),
		zap.Bool("concurrent", o.config.Concurrent))
	return nil
}

// Stop halts the loops and waits for the in-flight cycle to drain, bounded
// by the given context.
func (o *Orchestrator) Stop(ctx context.Context) error {
	o.mu.Lock()
	if !o.isRunning {
		o.mu.Unlock()
		return ErrNotRunning
	}
	o.isRunning = false
	cancel := o.cancel
	o.mu.Unlock()

	cancel()
	done := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		o.logger.Info("sync orchestrator stopped")
		return nil
	case <-ctx.Done():
		o.logger.Warn("sync orchestrator stop timed out")
		return ctx.Err()
	}
}

// IsRunning reports whether the loops are active
func (o *Orchestrator) IsRunning() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.isRunning
}

func (o *Orchestrator) runLoop(ctx context.Context) {
	defer o.wg.Done()

	if o.config.StartupDelay > 0 {
		select {
		case <-time.After(o.config.StartupDelay):
		case <-ctx.Done():
			return
		}
	}

	ticker := time.NewTicker(o.config.Interval)
	defer ticker.Stop()

	o.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.tick(ctx)
		}
	}
}

func (o *Orchestrator) tick(ctx context.Context) {
	if !o.schedulerEnabled.Load() {
		return
	}
	if _, err := o.runCycle(ctx, "schedule"); err != nil && !errors.Is(err, ErrCycleInProgress) {
		o.logger.Error("scheduled sync cycle failed", zap.Error(err))
	}
}

// ---------------------------------------------------------------------------
// Cycle Execution
// ---------------------------------------------------------------------------

// TriggerCycle runs one cycle synchronously. It is subject to the same
// single-cycle guarantee as scheduled ticks.
func (o *Orchestrator) TriggerCycle(ctx context.Context) (*CycleResult, error) {
	return o.runCycle(ctx, "manual")
}

func (o *Orchestrator) runCycle(ctx context.Context, trigger string) (*CycleResult, error) {
	if !o.cycleInFlight.CompareAndSwap(false, true) {
		return nil, ErrCycleInProgress
	}
	defer o.cycleInFlight.Store(false)
	defer o.state.Store(StateIdle)

	sequence := o.sequence.Add(1)
	startedAt := time.Now()

	o.state.Store(StateFetching)
	sources := o.enabledSources()
	o.logger.Info("sync cycle started",
		zap.Int64("sequence", sequence),
		zap.String("triggered_by", trigger),
		zap.Int("sources", len(sources)))

	o.state.Store(StateDispatching)
	sourceResults := o.dispatch(ctx, sources)

	o.state.Store(StateAggregating)
	result := &CycleResult{
		Sequence:    sequence,
		TriggeredBy: trigger,
		StartedAt:   startedAt,
		Duration:    time.Since(startedAt),
		Sources:     sourceResults,
		Succeeded:   true,
	}
	for i := range sourceResults {
		src := &sourceResults[i]
		result.OrdersProcessed += src.Processed
		result.OrdersFailed += src.Failed
		if src.TimedOut {
			result.TimedOut = true
		}
		if !src.OK() {
			result.Succeeded = false
		}
	}

	streaks := o.stats.RecordCycle(result)
	o.metrics.observeCycle(result, streaks)

	if result.Succeeded {
		o.logger.Info("sync cycle completed",
			zap.Int64("sequence", sequence),
			zap.Int("orders_processed", result.OrdersProcessed),
			zap.Duration("duration", result.Duration))
	} else {
		o.logger.Warn("sync cycle completed with failures",
			zap.Int64("sequence", sequence),
			zap.Int("orders_processed", result.OrdersProcessed),
			zap.Int("orders_failed", result.OrdersFailed),
			zap.Bool("timed_out", result.TimedOut),
			zap.Duration("duration", result.Duration))
	}

	// Alerting is per source: only a single source failing repeatedly
	// crosses the threshold, not an accumulation of mixed failures.
	if o.config.AlertThreshold > 0 {
		for platform, streak := range streaks {
			if streak >= o.config.AlertThreshold {
				o.logger.Error("source failure streak crossed alert threshold",
					zap.Bool("alert", true),
					zap.String("platform", platform.String()),
					zap.Int("consecutive_failures", streak),
					zap.Int("threshold", o.config.AlertThreshold))
			}
		}
	}

	return result, nil
}

// dispatch runs every source and collects results. In concurrent mode all
// sources run in parallel under one global timeout; sources that miss it are
// marked timed out and their goroutines are left to finish in the background,
// late results land in a buffered channel and are dropped. Sequential mode
// processes sources one after another with no inter-source deadline.
func (o *Orchestrator) dispatch(ctx context.Context, sources []sync.SourceAdapter) []SourceResult {
	if len(sources) == 0 {
		return nil
	}

	if !o.config.Concurrent {
		results := make([]SourceResult, 0, len(sources))
		for _, src := range sources {
			results = append(results, o.runSource(ctx, src))
		}
		return results
	}

	type indexedResult struct {
		index  int
		result SourceResult
	}
	resultCh := make(chan indexedResult, len(sources))
	for i, src := range sources {
		go func(index int, src sync.SourceAdapter) {
			resultCh <- indexedResult{index: index, result: o.runSource(ctx, src)}
		}(i, src)
	}

	o.state.Store(StateAwaiting)
	timer := time.NewTimer(o.config.GlobalTimeout)
	defer timer.Stop()

	results := make([]SourceResult, len(sources))
	received := make([]bool, len(sources))
	for remaining := len(sources); remaining > 0; {
		select {
		case r := <-resultCh:
			results[r.index] = r.result
			received[r.index] = true
			remaining--
		case <-timer.C:
			for i, src := range sources {
				if !received[i] {
					results[i] = SourceResult{
						Platform: src.Platform(),
						TimedOut: true,
						Duration: o.config.GlobalTimeout,
						Err:      "global cycle timeout exceeded",
					}
					o.logger.Warn("source missed cycle timeout",
						zap.String("platform", src.Platform().String()),
						zap.Duration("timeout", o.config.GlobalTimeout))
				}
			}
			remaining = 0
		case <-ctx.Done():
			for i, src := range sources {
				if !received[i] {
					results[i] = SourceResult{
						Platform: src.Platform(),
						Err:      ctx.Err().Error(),
					}
				}
			}
			remaining = 0
		}
	}
	return results
}

// runSource pulls one source's updated orders and pushes each record through
// the pipeline. Records are processed sequentially, one transaction each, so
// a bad record only loses itself.
func (o *Orchestrator) runSource(ctx context.Context, src sync.SourceAdapter) SourceResult {
	startedAt := time.Now()
	result := SourceResult{Platform: src.Platform()}

	records, err := src.FetchUpdated(ctx)
	if err != nil {
		result.Err = err.Error()
		result.Duration = time.Since(startedAt)
		o.logger.Warn("source fetch failed",
			zap.String("platform", src.Platform().String()),
			zap.Error(err))
		return result
	}
	result.Fetched = len(records)

	for i := range records {
		if ctx.Err() != nil {
			result.Err = ctx.Err().Error()
			break
		}
		if _, err := o.processor.UpsertOrder(ctx, &records[i]); err != nil {
			result.Failed++
			result.FailedOrders = append(result.FailedOrders, FailedOrder{
				OrderID: records[i].OrderID,
				Error:   err.Error(),
			})
			o.logger.Warn("order processing failed",
				zap.String("platform", src.Platform().String()),
				zap.String("order_id", records[i].OrderID),
				zap.Error(err))
			continue
		}
		result.Processed++
	}

	result.Duration = time.Since(startedAt)
	return result
}

// ---------------------------------------------------------------------------
// Health Checks
// ---------------------------------------------------------------------------

func (o *Orchestrator) healthLoop(ctx context.Context) {
	defer o.wg.Done()

	ticker := time.NewTicker(o.config.HealthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.probeSources(ctx)
		}
	}
}

func (o *Orchestrator) probeSources(ctx context.Context) {
	for _, src := range o.sources {
		probeCtx, cancel := context.WithTimeout(ctx, healthProbeTimeout)
		reachable := src.TestConnection(probeCtx)
		cancel()

		platform := src.Platform()
		o.sourceMu.Lock()
		was, known := o.healthy[platform]
		o.healthy[platform] = reachable
		o.sourceMu.Unlock()

		o.metrics.observeHealth(platform.String(), reachable)
		switch {
		case reachable && known && !was:
			o.logger.Info("source recovered", zap.String("platform", platform.String()))
		case !reachable && (!known || was):
			o.logger.Warn("source degraded", zap.String("platform", platform.String()))
		}
	}
}

// ---------------------------------------------------------------------------
// Runtime Controls
// ---------------------------------------------------------------------------

// EnableScheduler resumes scheduled cycles
func (o *Orchestrator) EnableScheduler() {
	o.schedulerEnabled.Store(true)
	o.logger.Info("scheduler enabled")
}

// DisableScheduler pauses scheduled cycles. Manual triggers still work.
func (o *Orchestrator) DisableScheduler() {
	o.schedulerEnabled.Store(false)
	o.logger.Info("scheduler disabled")
}

// SchedulerEnabled reports whether scheduled cycles run
func (o *Orchestrator) SchedulerEnabled() bool {
	return o.schedulerEnabled.Load()
}

// EnableSource includes the platform in upcoming cycles
func (o *Orchestrator) EnableSource(platform sync.Platform) error {
	return o.setSourceEnabled(platform, true)
}

// DisableSource excludes the platform from upcoming cycles
func (o *Orchestrator) DisableSource(platform sync.Platform) error {
	return o.setSourceEnabled(platform, false)
}

func (o *Orchestrator) setSourceEnabled(platform sync.Platform, enabled bool) error {
	if o.adapterFor(platform) == nil {
		return ErrUnknownPlatform
	}
	o.sourceMu.Lock()
	o.disabled[platform] = !enabled
	o.sourceMu.Unlock()
	o.logger.Info("source toggled",
		zap.String("platform", platform.String()),
		zap.Bool("enabled", enabled))
	return nil
}

// SourceState describes one configured source's runtime state.
type SourceState struct {
	Enabled bool `json:"enabled"`
	Healthy bool `json:"healthy"`
}

// SourceStates returns the runtime state of every configured source
func (o *Orchestrator) SourceStates() map[string]SourceState {
	o.sourceMu.RLock()
	defer o.sourceMu.RUnlock()

	states := make(map[string]SourceState, len(o.sources))
	for _, src := range o.sources {
		platform := src.Platform()
		healthy, known := o.healthy[platform]
		states[platform.String()] = SourceState{
			Enabled: !o.disabled[platform],
			Healthy: healthy || !known,
		}
	}
	return states
}

// Statistics returns a snapshot of the counters plus the current cycle state
func (o *Orchestrator) Statistics() Snapshot {
	snap := o.stats.Snapshot()
	snap.State = o.State()
	return snap
}

// ResetStatistics zeroes the counters and history
func (o *Orchestrator) ResetStatistics() {
	o.stats.Reset()
	o.logger.Info("sync statistics reset")
}

// State returns the current cycle state
func (o *Orchestrator) State() CycleState {
	return o.state.Load().(CycleState)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (o *Orchestrator) enabledSources() []sync.SourceAdapter {
	o.sourceMu.RLock()
	defer o.sourceMu.RUnlock()

	enabled := make([]sync.SourceAdapter, 0, len(o.sources))
	for _, src := range o.sources {
		if !o.disabled[src.Platform()] {
			enabled = append(enabled, src)
		}
	}
	return enabled
}

func (o *Orchestrator) adapterFor(platform sync.Platform) sync.SourceAdapter {
	for _, src := range o.sources {
		if src.Platform() == platform {
			return src
		}
	}
	return nil
}
