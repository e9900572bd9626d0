package status

import (
	"context"
	"time"

	"github.com/ordersync/backend/internal/domain/sync"
)

// ---------------------------------------------------------------------------
// Status subsystem entities
// ---------------------------------------------------------------------------

// Status is the persisted (platform, raw code) -> standardized code mapping.
// One row is created on first sighting of each distinct pair; the generated
// surrogate key is referenced by transition events and details.
type Status struct {
	ID           int64
	Platform     sync.Platform
	RawCode      string
	StandardCode Code
	Category     Category
	CreatedAt    time.Time
}

// Transition is one status transition event for an order: a row per
// (status surrogate key, order id) occurrence.
type Transition struct {
	ID       int64
	StatusID int64
	OrderID  string
	// PreviousCode is the standardized code the order held before this event,
	// empty for the first observed transition
	PreviousCode Code
	// TransitionedAt is the order's update timestamp, falling back to the
	// processing time
	TransitionedAt time.Time
	// DurationInPreviousStatusHours is the hour difference between this
	// transition and the most recent prior transition for the same order,
	// 0 when none exists
	DurationInPreviousStatusHours float64
	// TriggeredBy records what produced the event (e.g. "sync")
	TriggeredBy string
	// IsExpectedTransition annotates whether the move followed the declared
	// state machine; informational only, never blocks the upsert
	IsExpectedTransition bool
	CreatedAt            time.Time
}

// Detail is the denormalized business-rule row per (status key, order id),
// derived purely from the standardized status for query convenience.
type Detail struct {
	ID                   int64
	StatusID             int64
	OrderID              string
	IsActiveOrder        bool
	IsCompletedOrder     bool
	IsRevenueRecognized  bool
	IsRefundable         bool
	IsCancellable        bool
	IsTrackable          bool
	NextPossibleStatuses string
	AutoTransitionHours  int
	DisplayLabel         string
	DisplayColor         string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// NewDetail builds the detail row for an order from a descriptor.
func NewDetail(statusID int64, orderID string, d Descriptor) *Detail {
	next := ""
	for i, c := range d.NextPossibleStatuses {
		if i > 0 {
			next += ","
		}
		next += string(c)
	}
	return &Detail{
		StatusID:             statusID,
		OrderID:              orderID,
		IsActiveOrder:        d.Flags.IsActiveOrder,
		IsCompletedOrder:     d.Flags.IsCompletedOrder,
		IsRevenueRecognized:  d.Flags.IsRevenueRecognized,
		IsRefundable:         d.Flags.IsRefundable,
		IsCancellable:        d.Flags.IsCancellable,
		IsTrackable:          d.Flags.IsTrackable,
		NextPossibleStatuses: next,
		AutoTransitionHours:  d.AutoTransitionHours,
		DisplayLabel:         d.Display.Label,
		DisplayColor:         d.Display.Color,
	}
}

// DurationHours computes the hour gap between a transition and the prior
// transition's timestamp. Negative gaps (out-of-order source timestamps)
// clamp to 0.
func DurationHours(prev, current time.Time) float64 {
	if prev.IsZero() || !current.After(prev) {
		return 0
	}
	return current.Sub(prev).Hours()
}

// ---------------------------------------------------------------------------
// Repository ports
// ---------------------------------------------------------------------------

// Repository persists status mapping rows.
type Repository interface {
	// FindByPlatformAndRawCode looks up the mapping row for a raw code
	FindByPlatformAndRawCode(ctx context.Context, platform sync.Platform, rawCode string) (*Status, error)

	// GetOrCreate returns the mapping row for the pair, creating it on first
	// sighting
	GetOrCreate(ctx context.Context, status *Status) (*Status, error)
}

// TransitionRepository persists transition events.
type TransitionRepository interface {
	// Save inserts a transition event
	Save(ctx context.Context, t *Transition) error

	// FindLatestByOrderID returns the most recent transition for an order,
	// or sync.ErrNotFound when none exists
	FindLatestByOrderID(ctx context.Context, orderID string) (*Transition, error)

	// FindByOrderID returns all transitions for an order, oldest first
	FindByOrderID(ctx context.Context, orderID string) ([]Transition, error)
}

// DetailRepository persists denormalized detail rows.
type DetailRepository interface {
	// Save creates or updates the detail row for (status key, order id)
	Save(ctx context.Context, d *Detail) error

	// FindByStatusAndOrder looks up a detail row
	FindByStatusAndOrder(ctx context.Context, statusID int64, orderID string) (*Detail, error)
}
