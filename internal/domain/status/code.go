package status

// ---------------------------------------------------------------------------
// Standardized status codes
// ---------------------------------------------------------------------------

// Code is the platform-independent order lifecycle stage.
type Code string

const (
	// CodePending indicates the order is awaiting payment
	CodePending Code = "PENDING"
	// CodeProcessing indicates the order is being prepared
	CodeProcessing Code = "PROCESSING"
	// CodeConfirmed indicates payment is confirmed
	CodeConfirmed Code = "CONFIRMED"
	// CodeReadyToShip indicates the order awaits carrier pickup
	CodeReadyToShip Code = "READY_TO_SHIP"
	// CodeShipping indicates the order is in transit
	CodeShipping Code = "SHIPPING"
	// CodeDelivered indicates the order is delivered/completed
	CodeDelivered Code = "DELIVERED"
	// CodeCancelled indicates the order was cancelled
	CodeCancelled Code = "CANCELLED"
	// CodeReturned indicates the order was returned
	CodeReturned Code = "RETURNED"
	// CodeUnknown is the total-mapping fallback for unrecognized raw codes
	CodeUnknown Code = "UNKNOWN"
)

// IsValid returns true if the code belongs to the standardized enumeration
func (c Code) IsValid() bool {
	switch c {
	case CodePending, CodeProcessing, CodeConfirmed, CodeReadyToShip,
		CodeShipping, CodeDelivered, CodeCancelled, CodeReturned, CodeUnknown:
		return true
	default:
		return false
	}
}

// String returns the string representation of Code
func (c Code) String() string {
	return string(c)
}

// ---------------------------------------------------------------------------
// Status categories
// ---------------------------------------------------------------------------

// Category is the coarse grouping of a standardized status code.
type Category string

const (
	CategoryInitial     Category = "INITIAL"
	CategoryProcessing  Category = "PROCESSING"
	CategoryFulfillment Category = "FULFILLMENT"
	CategoryFinal       Category = "FINAL"
	CategoryOther       Category = "OTHER"
)

// CategoryOf maps a standardized status code to its category.
func CategoryOf(c Code) Category {
	switch c {
	case CodePending:
		return CategoryInitial
	case CodeProcessing, CodeConfirmed:
		return CategoryProcessing
	case CodeReadyToShip, CodeShipping:
		return CategoryFulfillment
	case CodeDelivered, CodeCancelled, CodeReturned:
		return CategoryFinal
	default:
		return CategoryOther
	}
}

// IsFinal returns true if the code is a terminal lifecycle stage
func (c Code) IsFinal() bool {
	return CategoryOf(c) == CategoryFinal
}

// ---------------------------------------------------------------------------
// Business flags
// ---------------------------------------------------------------------------

// Flags are the business-rule booleans derived purely from a standardized
// status code.
type Flags struct {
	// IsActiveOrder is true while the order is neither completed nor cancelled
	IsActiveOrder bool
	// IsCompletedOrder is true once the order is delivered
	IsCompletedOrder bool
	// IsRevenueRecognized is true only for completed orders
	IsRevenueRecognized bool
	// IsRefundable is true when a refund may still be requested
	IsRefundable bool
	// IsCancellable is true while the order is active and not yet shipped
	IsCancellable bool
	// IsTrackable is true while the shipment is in transit or delivered
	IsTrackable bool
}

// FlagsOf derives the business flags for a standardized status code.
func FlagsOf(c Code) Flags {
	active := c != CodeUnknown && !c.IsFinal()
	return Flags{
		IsActiveOrder:       active,
		IsCompletedOrder:    c == CodeDelivered,
		IsRevenueRecognized: c == CodeDelivered,
		IsRefundable:        c == CodeDelivered,
		IsCancellable:       active && c != CodeShipping,
		IsTrackable:         c == CodeShipping || c == CodeDelivered,
	}
}

// ---------------------------------------------------------------------------
// Descriptors
// ---------------------------------------------------------------------------

// Display holds presentation metadata for a standardized status.
type Display struct {
	Label string
	Color string
}

// Descriptor is the full classification result for one standardized status:
// the code, its category, the derived business flags, the declared follow-up
// statuses, the auto-transition SLA and display metadata.
type Descriptor struct {
	Code                Code
	Category            Category
	Flags               Flags
	Display             Display
	NextPossibleStatuses []Code
	AutoTransitionHours int
	Rank                int
}

// descriptor table: the declared state machine and display metadata per code.
var descriptors = map[Code]Descriptor{
	CodePending: {
		Display:              Display{Label: "Pending payment", Color: "#9e9e9e"},
		NextPossibleStatuses: []Code{CodeProcessing, CodeConfirmed, CodeCancelled},
		Rank:                 10,
	},
	CodeProcessing: {
		Display:              Display{Label: "Processing", Color: "#2196f3"},
		NextPossibleStatuses: []Code{CodeConfirmed, CodeReadyToShip, CodeCancelled},
		Rank:                 20,
	},
	CodeConfirmed: {
		Display:              Display{Label: "Confirmed", Color: "#3f51b5"},
		NextPossibleStatuses: []Code{CodeReadyToShip, CodeCancelled},
		Rank:                 30,
	},
	CodeReadyToShip: {
		Display:              Display{Label: "Ready to ship", Color: "#ff9800"},
		NextPossibleStatuses: []Code{CodeShipping, CodeCancelled},
		AutoTransitionHours:  48,
		Rank:                 40,
	},
	CodeShipping: {
		Display:              Display{Label: "Shipping", Color: "#ff5722"},
		NextPossibleStatuses: []Code{CodeDelivered, CodeReturned},
		AutoTransitionHours:  168,
		Rank:                 50,
	},
	CodeDelivered: {
		Display:              Display{Label: "Delivered", Color: "#4caf50"},
		NextPossibleStatuses: []Code{CodeReturned},
		Rank:                 60,
	},
	CodeCancelled: {
		Display: Display{Label: "Cancelled", Color: "#f44336"},
		Rank:    70,
	},
	CodeReturned: {
		Display: Display{Label: "Returned", Color: "#795548"},
		Rank:    80,
	},
	CodeUnknown: {
		Display: Display{Label: "Unknown", Color: "#607d8b"},
		Rank:    0,
	},
}

// DescriptorOf returns the full descriptor for a standardized status code.
// Unrecognized codes yield the UNKNOWN descriptor.
func DescriptorOf(c Code) Descriptor {
	d, ok := descriptors[c]
	if !ok {
		c = CodeUnknown
		d = descriptors[CodeUnknown]
	}
	d.Code = c
	d.Category = CategoryOf(c)
	d.Flags = FlagsOf(c)
	return d
}

// IsExpectedTransition reports whether moving from prev to next follows the
// declared state machine. It is informational only: source systems are
// authoritative and may skip states, so an unexpected transition is
// annotated, never rejected. A repeat of the same status and a first-ever
// status are both expected.
func IsExpectedTransition(prev, next Code) bool {
	if prev == "" || prev == next {
		return true
	}
	for _, c := range DescriptorOf(prev).NextPossibleStatuses {
		if c == next {
			return true
		}
	}
	return false
}
