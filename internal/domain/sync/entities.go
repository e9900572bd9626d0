package sync

import (
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Customer
// ---------------------------------------------------------------------------

// Customer is the reconciled buyer identity shared across orders.
// The ID is produced by the identity resolver and is stable for a given
// (platform, phone) pair or platform-native user id. Customers are never
// deleted.
type Customer struct {
	ID                 string
	Platform           Platform
	Phone              string
	Email              string
	TotalOrders        int
	TotalSpent         decimal.Decimal
	AverageOrderValue  decimal.Decimal
	AcquisitionChannel string
	FirstOrderAt       *time.Time
	LastOrderAt        *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewCustomer creates a customer on first sighting of an identity key.
func NewCustomer(id string, platform Platform, phone, email, channel string) *Customer {
	return &Customer{
		ID:                 id,
		Platform:           platform,
		Phone:              phone,
		Email:              email,
		TotalSpent:         decimal.Zero,
		AverageOrderValue:  decimal.Zero,
		AcquisitionChannel: channel,
	}
}

// RecordOrder applies one order's contribution to the customer's running
// totals and recomputes the average order value. The average is always
// derived, never trusted independently.
func (c *Customer) RecordOrder(netRevenue decimal.Decimal, orderedAt time.Time) {
	c.TotalOrders++
	c.TotalSpent = c.TotalSpent.Add(netRevenue)
	c.AverageOrderValue = c.TotalSpent.Div(decimal.NewFromInt(int64(c.TotalOrders)))

	if c.FirstOrderAt == nil || orderedAt.Before(*c.FirstOrderAt) {
		t := orderedAt
		c.FirstOrderAt = &t
	}
	if c.LastOrderAt == nil || orderedAt.After(*c.LastOrderAt) {
		t := orderedAt
		c.LastOrderAt = &t
	}
}

// ReplaceOrder adjusts the running totals when a previously counted order is
// re-processed with a different net revenue. The order count is unchanged.
func (c *Customer) ReplaceOrder(oldNetRevenue, newNetRevenue decimal.Decimal) {
	if c.TotalOrders == 0 {
		return
	}
	c.TotalSpent = c.TotalSpent.Sub(oldNetRevenue).Add(newNetRevenue)
	c.AverageOrderValue = c.TotalSpent.Div(decimal.NewFromInt(int64(c.TotalOrders)))
}

// RemoveOrder backs one previously counted order out of the running totals,
// used when a re-synced order resolves to a different customer. The first
// and last order timestamps stay as observed.
func (c *Customer) RemoveOrder(netRevenue decimal.Decimal) {
	if c.TotalOrders == 0 {
		return
	}
	c.TotalOrders--
	c.TotalSpent = c.TotalSpent.Sub(netRevenue)
	if c.TotalOrders == 0 {
		c.AverageOrderValue = decimal.Zero
		return
	}
	c.AverageOrderValue = c.TotalSpent.Div(decimal.NewFromInt(int64(c.TotalOrders)))
}

// ---------------------------------------------------------------------------
// Order
// ---------------------------------------------------------------------------

// Order is the reconciled order row. Exactly one row exists per source order
// id; re-processing the same id updates in place.
type Order struct {
	ID             string
	Platform       Platform
	CustomerID     string
	RawStatus      string
	StandardStatus string
	GrossAmount    decimal.Decimal
	ShippingFee    decimal.Decimal
	DiscountAmount decimal.Decimal
	NetRevenue     decimal.Decimal
	CashOnDelivery bool
	IsDelivered    bool
	IsCancelled    bool
	Province       string
	District       string
	Ward           string
	SourceCreated  time.Time
	SourceUpdated  time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Item is one persisted order line. The composite identity
// (order id, sku, platform product id, seq) supports multiple identical-SKU
// lines. Items are replaced wholesale on every re-sync so a partial item
// list never survives.
type Item struct {
	OrderID           string
	SKU               string
	PlatformProductID string
	Seq               int
	ProductName       string
	Quantity          int
	UnitPrice         decimal.Decimal
	Discount          decimal.Decimal
}

// ---------------------------------------------------------------------------
// Product
// ---------------------------------------------------------------------------

// Product is a catalog row shared across orders, identified by (sku, platform).
// Descriptive fields are first-write-wins; price fields are overwritten on
// every observation.
type Product struct {
	SKU        string
	Platform   Platform
	Name       string
	UnitPrice  decimal.Decimal
	Available  bool
	LastSeenAt time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ---------------------------------------------------------------------------
// Dimensional enrichment rows (one per order id)
// ---------------------------------------------------------------------------

// GeographyInfo is the per-order address dimension.
type GeographyInfo struct {
	OrderID  string
	Province string
	District string
	Ward     string
	Region   string
}

// PaymentInfo is the per-order payment dimension.
type PaymentInfo struct {
	OrderID        string
	Method         string
	CashOnDelivery bool
	GrossAmount    decimal.Decimal
	DiscountAmount decimal.Decimal
}

// ShippingInfo is the per-order shipping dimension.
type ShippingInfo struct {
	OrderID        string
	Carrier        string
	TrackingNumber string
	ShippingFee    decimal.Decimal
}

// ProcessingDateInfo is the per-order calendar dimension, derived from the
// order's source creation time.
type ProcessingDateInfo struct {
	OrderID   string
	Date      time.Time
	Day       int
	Week      int
	Month     int
	Quarter   int
	Year      int
	IsWeekend bool
}

// NewProcessingDateInfo derives the calendar dimension for an order.
func NewProcessingDateInfo(orderID string, t time.Time) *ProcessingDateInfo {
	_, week := t.ISOWeek()
	wd := t.Weekday()
	return &ProcessingDateInfo{
		OrderID:   orderID,
		Date:      t.Truncate(24 * time.Hour),
		Day:       t.Day(),
		Week:      week,
		Month:     int(t.Month()),
		Quarter:   (int(t.Month())-1)/3 + 1,
		Year:      t.Year(),
		IsWeekend: wd == time.Saturday || wd == time.Sunday,
	}
}
