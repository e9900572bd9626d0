package sync

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Source Errors
// ---------------------------------------------------------------------------

var (
	// ErrSourceNotConfigured indicates the source adapter has no usable configuration
	ErrSourceNotConfigured = errors.New("sync: source not configured")
	// ErrSourceUnavailable indicates the marketplace API is temporarily unreachable
	ErrSourceUnavailable = errors.New("sync: source temporarily unavailable")
	// ErrSourceRequestFailed indicates a marketplace API request failed
	ErrSourceRequestFailed = errors.New("sync: source request failed")
	// ErrSourceInvalidResponse indicates the marketplace returned an unparseable payload
	ErrSourceInvalidResponse = errors.New("sync: invalid source response")
	// ErrSourceRateLimited indicates the marketplace rejected the request due to rate limits
	ErrSourceRateLimited = errors.New("sync: source rate limited")
	// ErrSourceAuthFailed indicates credentials were rejected by the marketplace
	ErrSourceAuthFailed = errors.New("sync: source authentication failed")
)

// ---------------------------------------------------------------------------
// Platform
// ---------------------------------------------------------------------------

// Platform identifies a marketplace order source.
type Platform string

const (
	// PlatformShopee represents the Shopee marketplace
	PlatformShopee Platform = "SHOPEE"
	// PlatformLazada represents the Lazada marketplace
	PlatformLazada Platform = "LAZADA"
	// PlatformTikTok represents the TikTok Shop marketplace
	PlatformTikTok Platform = "TIKTOK"
)

// AllPlatforms lists every supported source platform.
func AllPlatforms() []Platform {
	return []Platform{PlatformShopee, PlatformLazada, PlatformTikTok}
}

// IsValid returns true if the platform is supported
func (p Platform) IsValid() bool {
	switch p {
	case PlatformShopee, PlatformLazada, PlatformTikTok:
		return true
	default:
		return false
	}
}

// String returns the string representation of Platform
func (p Platform) String() string {
	return string(p)
}

// DisplayName returns a human-readable name for the platform
func (p Platform) DisplayName() string {
	switch p {
	case PlatformShopee:
		return "Shopee"
	case PlatformLazada:
		return "Lazada"
	case PlatformTikTok:
		return "TikTok Shop"
	default:
		return string(p)
	}
}

// ---------------------------------------------------------------------------
// Normalized Order Record
// ---------------------------------------------------------------------------

// OrderRecord is the source-agnostic representation of one marketplace order.
// It is the sole input contract between a source adapter and the sync core.
type OrderRecord struct {
	// OrderID is the order identifier on the source platform.
	// Assumed globally unique across platforms by construction.
	OrderID string
	// Platform identifies which marketplace this order came from
	Platform Platform
	// RawStatus is the source-specific status code, untranslated
	RawStatus string

	// BuyerUserID is the platform-native customer id, when the platform exposes one
	BuyerUserID string
	// RecipientName is the recipient's name
	RecipientName string
	// RecipientPhone is the recipient's phone number
	RecipientPhone string
	// RecipientEmail is the recipient's email, optional
	RecipientEmail string

	// GrossAmount is the total amount the buyer paid
	GrossAmount decimal.Decimal
	// ShippingFee is the freight charged on the order
	ShippingFee decimal.Decimal
	// DiscountAmount is the total discount applied
	DiscountAmount decimal.Decimal
	// CashOnDelivery is true when the order is paid on delivery
	CashOnDelivery bool
	// PaymentMethod is the payment channel reported by the platform
	PaymentMethod string

	// Province, District and Ward are the delivery address components
	Province string
	District string
	Ward     string

	// Carrier is the shipping provider, when known
	Carrier string
	// TrackingNumber is the shipment tracking code, when known
	TrackingNumber string

	// Channel is the acquisition channel tag for new customers
	Channel string

	// CreatedAt is when the order was created on the platform
	CreatedAt time.Time
	// UpdatedAt is when the order was last modified on the platform
	UpdatedAt time.Time

	// Items contains the order line items
	Items []OrderLine
}

// OrderLine is one line item inside a normalized order record.
type OrderLine struct {
	// SKU is the seller SKU code
	SKU string
	// PlatformProductID is the product id on the source platform
	PlatformProductID string
	// ProductName is the product display name
	ProductName string
	// Quantity is the ordered quantity
	Quantity int
	// UnitPrice is the per-unit selling price
	UnitPrice decimal.Decimal
	// Discount is the discount applied to this line
	Discount decimal.Decimal
}

// NetRevenue returns the order's net revenue: gross amount minus shipping fee.
func (r *OrderRecord) NetRevenue() decimal.Decimal {
	return r.GrossAmount.Sub(r.ShippingFee)
}

// EffectiveTimestamp returns the order's update time, falling back to the
// creation time and finally to the supplied processing time.
func (r *OrderRecord) EffectiveTimestamp(processedAt time.Time) time.Time {
	if !r.UpdatedAt.IsZero() {
		return r.UpdatedAt
	}
	if !r.CreatedAt.IsZero() {
		return r.CreatedAt
	}
	return processedAt
}

// ---------------------------------------------------------------------------
// Paged Result
// ---------------------------------------------------------------------------

// PagedResult is one page of order records fetched from a source.
type PagedResult struct {
	// Records contains the fetched orders
	Records []OrderRecord
	// TotalCount is the total number of orders matching the query
	TotalCount int64
	// HasMore indicates if there are more pages
	HasMore bool
	// NextPage is the next page number when HasMore is true
	NextPage int
}

// ---------------------------------------------------------------------------
// SourceAdapter Port Interface
// ---------------------------------------------------------------------------

// SourceAdapter is the port interface a marketplace integration must satisfy.
// Implementations live in the infrastructure layer; the sync core only ever
// consumes normalized order records.
//
// Adapters must retry transient (5xx/timeout) failures with exponential
// backoff, must not retry 4xx client errors, and must return an empty result
// rather than an error when no data exists for a window.
type SourceAdapter interface {
	// Platform returns the platform this adapter pulls from
	Platform() Platform

	// FetchUpdated returns orders updated since the adapter's sync window
	FetchUpdated(ctx context.Context) ([]OrderRecord, error)

	// FetchForDate returns one page of orders for the given date
	FetchForDate(ctx context.Context, date time.Time, page, pageSize int) (*PagedResult, error)

	// TestConnection reports whether the source API is currently reachable
	TestConnection(ctx context.Context) bool
}
