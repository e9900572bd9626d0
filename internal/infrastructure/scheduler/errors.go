package scheduler

import "errors"

var (
	// ErrAlreadyRunning indicates Start was called on a running orchestrator
	ErrAlreadyRunning = errors.New("scheduler: orchestrator already running")
	// ErrNotRunning indicates Stop was called on a stopped orchestrator
	ErrNotRunning = errors.New("scheduler: orchestrator not running")
	// ErrCycleInProgress indicates a sync cycle is already in flight.
	// Scheduled ticks and manual triggers are both rejected with it.
	ErrCycleInProgress = errors.New("scheduler: sync cycle already in progress")
	// ErrInvalidConfig indicates the orchestrator configuration is unusable
	ErrInvalidConfig = errors.New("scheduler: invalid configuration")
	// ErrUnknownPlatform indicates the platform is not among the configured sources
	ErrUnknownPlatform = errors.New("scheduler: unknown platform")
)
