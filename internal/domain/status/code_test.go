package status

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCategoryOf(t *testing.T) {
	assert.Equal(t, CategoryInitial, CategoryOf(CodePending))
	assert.Equal(t, CategoryProcessing, CategoryOf(CodeProcessing))
	assert.Equal(t, CategoryProcessing, CategoryOf(CodeConfirmed))
	assert.Equal(t, CategoryFulfillment, CategoryOf(CodeReadyToShip))
	assert.Equal(t, CategoryFulfillment, CategoryOf(CodeShipping))
	assert.Equal(t, CategoryFinal, CategoryOf(CodeDelivered))
	assert.Equal(t, CategoryFinal, CategoryOf(CodeCancelled))
	assert.Equal(t, CategoryFinal, CategoryOf(CodeReturned))
	assert.Equal(t, CategoryOther, CategoryOf(CodeUnknown))
}

func TestFlagsOf(t *testing.T) {
	delivered := FlagsOf(CodeDelivered)
	assert.False(t, delivered.IsActiveOrder)
	assert.True(t, delivered.IsCompletedOrder)
	assert.True(t, delivered.IsRevenueRecognized)
	assert.True(t, delivered.IsRefundable)
	assert.False(t, delivered.IsCancellable)
	assert.True(t, delivered.IsTrackable)

	shipping := FlagsOf(CodeShipping)
	assert.True(t, shipping.IsActiveOrder)
	assert.False(t, shipping.IsCompletedOrder)
	assert.False(t, shipping.IsRevenueRecognized)
	// in transit: active but no longer cancellable
	assert.False(t, shipping.IsCancellable)
	assert.True(t, shipping.IsTrackable)

	pending := FlagsOf(CodePending)
	assert.True(t, pending.IsActiveOrder)
	assert.True(t, pending.IsCancellable)
	assert.False(t, pending.IsTrackable)

	unknown := FlagsOf(CodeUnknown)
	assert.False(t, unknown.IsActiveOrder)
	assert.False(t, unknown.IsCompletedOrder)
}

func TestDescriptorOf(t *testing.T) {
	d := DescriptorOf(CodeReadyToShip)
	assert.Equal(t, CodeReadyToShip, d.Code)
	assert.Equal(t, CategoryFulfillment, d.Category)
	assert.Equal(t, 48, d.AutoTransitionHours)
	assert.Equal(t, []Code{CodeShipping, CodeCancelled}, d.NextPossibleStatuses)
	assert.Equal(t, "Ready to ship", d.Display.Label)

	shipping := DescriptorOf(CodeShipping)
	assert.Equal(t, 168, shipping.AutoTransitionHours)

	// unrecognized codes collapse to the UNKNOWN descriptor
	bogus := DescriptorOf(Code("BOGUS"))
	assert.Equal(t, CodeUnknown, bogus.Code)
	assert.Empty(t, bogus.NextPossibleStatuses)
}

func TestIsExpectedTransition(t *testing.T) {
	// declared moves
	assert.True(t, IsExpectedTransition(CodeReadyToShip, CodeShipping))
	assert.True(t, IsExpectedTransition(CodeShipping, CodeDelivered))
	assert.True(t, IsExpectedTransition(CodePending, CodeCancelled))

	// skipping states is annotated as unexpected, never rejected
	assert.False(t, IsExpectedTransition(CodeReadyToShip, CodeDelivered))
	assert.False(t, IsExpectedTransition(CodeDelivered, CodeShipping))

	// first observation and repeats are always expected
	assert.True(t, IsExpectedTransition("", CodeDelivered))
	assert.True(t, IsExpectedTransition(CodeShipping, CodeShipping))
}

func TestNewDetail(t *testing.T) {
	d := NewDetail(7, "A-100", DescriptorOf(CodeReadyToShip))

	assert.Equal(t, int64(7), d.StatusID)
	assert.Equal(t, "A-100", d.OrderID)
	assert.True(t, d.IsActiveOrder)
	assert.True(t, d.IsCancellable)
	assert.Equal(t, "SHIPPING,CANCELLED", d.NextPossibleStatuses)
	assert.Equal(t, 48, d.AutoTransitionHours)
	assert.Equal(t, "Ready to ship", d.DisplayLabel)
}

func TestDurationHours(t *testing.T) {
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, 48.0, DurationHours(base, base.Add(48*time.Hour)))
	assert.Equal(t, 0.5, DurationHours(base, base.Add(30*time.Minute)))

	// zero prior timestamp and out-of-order timestamps clamp to zero
	assert.Equal(t, 0.0, DurationHours(time.Time{}, base))
	assert.Equal(t, 0.0, DurationHours(base, base.Add(-time.Hour)))
	assert.Equal(t, 0.0, DurationHours(base, base))
}
