package scheduler

import (
	stdsync "sync"
	"time"

	"github.com/ordersync/backend/internal/domain/sync"
)

// ---------------------------------------------------------------------------
// Cycle State
// ---------------------------------------------------------------------------

// CycleState describes where the orchestrator currently is in its cycle.
type CycleState string

const (
	// StateIdle means no cycle is in flight
	StateIdle CycleState = "IDLE"
	// StateFetching means the cycle is selecting the sources to pull from
	StateFetching CycleState = "FETCHING"
	// StateDispatching means per-source tasks are being launched
	StateDispatching CycleState = "DISPATCHING"
	// StateAwaiting means the cycle is waiting for source tasks to finish
	StateAwaiting CycleState = "AWAITING"
	// StateAggregating means source results are being folded into statistics
	StateAggregating CycleState = "AGGREGATING"
)

// ---------------------------------------------------------------------------
// Cycle Results
// ---------------------------------------------------------------------------

// FailedOrder identifies one order that could not be upserted, with the
// reason it failed.
type FailedOrder struct {
	OrderID string `json:"order_id"`
	Error   string `json:"error"`
}

// SourceResult is the outcome of pulling one source during a cycle.
type SourceResult struct {
	Platform sync.Platform `json:"platform"`
	// Fetched is the number of order records returned by the source
	Fetched int `json:"fetched"`
	// Processed is the number of records upserted successfully
	Processed int `json:"processed"`
	// Failed is the number of records that could not be upserted
	Failed int `json:"failed"`
	// FailedOrders lists the orders that failed and why
	FailedOrders []FailedOrder `json:"failed_orders,omitempty"`
	// TimedOut is true when the source did not finish inside the cycle's
	// global timeout. Its goroutine keeps running; the late result is dropped.
	TimedOut bool          `json:"timed_out,omitempty"`
	Duration time.Duration `json:"duration"`
	// Err is the fetch error message, empty on success
	Err string `json:"error,omitempty"`
}

// OK returns true when the source fetched and processed without error
func (r *SourceResult) OK() bool {
	return r.Err == "" && !r.TimedOut && r.Failed == 0
}

// CycleResult summarizes one completed sync cycle.
type CycleResult struct {
	Sequence    int64          `json:"sequence"`
	TriggeredBy string         `json:"triggered_by"`
	StartedAt   time.Time      `json:"started_at"`
	Duration    time.Duration  `json:"duration"`
	Sources     []SourceResult `json:"sources"`
	// OrdersProcessed and OrdersFailed aggregate the per-source counts
	OrdersProcessed int `json:"orders_processed"`
	OrdersFailed    int `json:"orders_failed"`
	// TimedOut is true when at least one source hit the global timeout
	TimedOut bool `json:"timed_out,omitempty"`
	// Succeeded is true when every source fetched and processed cleanly
	Succeeded bool `json:"succeeded"`
}

// ---------------------------------------------------------------------------
// Statistics
// ---------------------------------------------------------------------------

// SourceStats is the cumulative per-source tally across cycles.
type SourceStats struct {
	SuccessCount        int64 `json:"success_count"`
	FailureCount        int64 `json:"failure_count"`
	ConsecutiveFailures int   `json:"consecutive_failures"`
}

// Snapshot is a point-in-time copy of the orchestrator's statistics.
type Snapshot struct {
	State               CycleState             `json:"state"`
	ExecutionCount      int64                  `json:"execution_count"`
	SuccessfulCycles    int64                  `json:"successful_cycles"`
	FailedCycles        int64                  `json:"failed_cycles"`
	OrdersProcessed     int64                  `json:"orders_processed"`
	OrdersFailed        int64                  `json:"orders_failed"`
	ConsecutiveFailures int                    `json:"consecutive_failures"`
	LastSuccessAt       *time.Time             `json:"last_success_at,omitempty"`
	LastFailureAt       *time.Time             `json:"last_failure_at,omitempty"`
	LastCycle           *CycleResult           `json:"last_cycle,omitempty"`
	Sources             map[string]SourceStats `json:"sources"`
	History             []CycleResult          `json:"history"`
	SinceReset          time.Time              `json:"since_reset"`
}

// CycleStatistics owns the orchestrator's counters. It is mutated only at
// cycle boundaries, under its own mutex, so cycle goroutines never contend
// on it mid-flight.
type CycleStatistics struct {
	mu stdsync.Mutex

	executionCount      int64
	successfulCycles    int64
	failedCycles        int64
	ordersProcessed     int64
	ordersFailed        int64
	consecutiveFailures int
	lastSuccessAt       *time.Time
	lastFailureAt       *time.Time
	lastCycle           *CycleResult
	perSource           map[sync.Platform]*SourceStats

	history     []CycleResult
	historySize int
	sinceReset  time.Time
}

// NewCycleStatistics creates an empty statistics owner keeping the last
// historySize cycle summaries.
func NewCycleStatistics(historySize int) *CycleStatistics {
	if historySize <= 0 {
		historySize = 20
	}
	return &CycleStatistics{
		perSource:   make(map[sync.Platform]*SourceStats),
		historySize: historySize,
		sinceReset:  time.Now(),
	}
}

// RecordCycle folds one completed cycle into the counters and returns the
// consecutive-failure streak of every source seen in the cycle.
func (s *CycleStatistics) RecordCycle(result *CycleResult) map[sync.Platform]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := result.StartedAt.Add(result.Duration)
	s.executionCount++
	s.ordersProcessed += int64(result.OrdersProcessed)
	s.ordersFailed += int64(result.OrdersFailed)

	if result.Succeeded {
		s.successfulCycles++
		s.consecutiveFailures = 0
		s.lastSuccessAt = &now
	} else {
		s.failedCycles++
		s.consecutiveFailures++
		s.lastFailureAt = &now
	}

	streaks := make(map[sync.Platform]int, len(result.Sources))
	for i := range result.Sources {
		src := &result.Sources[i]
		stats := s.perSource[src.Platform]
		if stats == nil {
			stats = &SourceStats{}
			s.perSource[src.Platform] = stats
		}
		if src.OK() {
			stats.SuccessCount++
			stats.ConsecutiveFailures = 0
		} else {
			stats.FailureCount++
			stats.ConsecutiveFailures++
		}
		streaks[src.Platform] = stats.ConsecutiveFailures
	}

	s.lastCycle = result
	s.history = append(s.history, *result)
	if len(s.history) > s.historySize {
		s.history = s.history[len(s.history)-s.historySize:]
	}

	return streaks
}

// Snapshot returns a copy of the current statistics. The cycle state is
// filled in by the orchestrator.
func (s *CycleStatistics) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ExecutionCount:      s.executionCount,
		SuccessfulCycles:    s.successfulCycles,
		FailedCycles:        s.failedCycles,
		OrdersProcessed:     s.ordersProcessed,
		OrdersFailed:        s.ordersFailed,
		ConsecutiveFailures: s.consecutiveFailures,
		Sources:             make(map[string]SourceStats, len(s.perSource)),
		History:             make([]CycleResult, len(s.history)),
		SinceReset:          s.sinceReset,
	}
	if s.lastSuccessAt != nil {
		t := *s.lastSuccessAt
		snap.LastSuccessAt = &t
	}
	if s.lastFailureAt != nil {
		t := *s.lastFailureAt
		snap.LastFailureAt = &t
	}
	if s.lastCycle != nil {
		c := *s.lastCycle
		snap.LastCycle = &c
	}
	for platform, stats := range s.perSource {
		snap.Sources[platform.String()] = *stats
	}
	copy(snap.History, s.history)
	return snap
}

// Reset zeroes every counter and clears the cycle history
func (s *CycleStatistics) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.executionCount = 0
	s.successfulCycles = 0
	s.failedCycles = 0
	s.ordersProcessed = 0
	s.ordersFailed = 0
	s.consecutiveFailures = 0
	s.lastSuccessAt = nil
	s.lastFailureAt = nil
	s.lastCycle = nil
	s.perSource = make(map[sync.Platform]*SourceStats)
	s.history = nil
	s.sinceReset = time.Now()
}
