package sync

import (
	"context"
	"errors"
)

// ErrNotFound is returned by repositories when no row matches the lookup.
var ErrNotFound = errors.New("sync: record not found")

// ---------------------------------------------------------------------------
// Tier-1 repository ports
// ---------------------------------------------------------------------------

// CustomerRepository persists reconciled customers.
type CustomerRepository interface {
	// FindByID finds a customer by its identity key
	FindByID(ctx context.Context, id string) (*Customer, error)

	// Save creates or updates a customer (upsert semantics)
	Save(ctx context.Context, customer *Customer) error
}

// OrderRepository persists reconciled orders.
type OrderRepository interface {
	// FindByID finds an order by its source order id
	FindByID(ctx context.Context, id string) (*Order, error)

	// Save creates or updates an order (upsert semantics)
	Save(ctx context.Context, order *Order) error
}

// ItemRepository persists order line items. Items for an order are replaced
// wholesale: DeleteByOrderID followed by SaveAll inside the same transaction.
type ItemRepository interface {
	// FindByOrderID returns all persisted items for an order
	FindByOrderID(ctx context.Context, orderID string) ([]Item, error)

	// DeleteByOrderID removes every item belonging to an order
	DeleteByOrderID(ctx context.Context, orderID string) error

	// SaveAll inserts the given items
	SaveAll(ctx context.Context, items []Item) error
}

// ProductRepository persists catalog products.
type ProductRepository interface {
	// FindBySKUAndPlatform finds a product by its composite identity
	FindBySKUAndPlatform(ctx context.Context, skuCode string, platform Platform) (*Product, error)

	// Save creates or updates a product (upsert semantics)
	Save(ctx context.Context, product *Product) error
}

// ---------------------------------------------------------------------------
// Tier-2 repository ports (dimensional enrichment)
// ---------------------------------------------------------------------------

// GeographyRepository persists the per-order geography dimension.
type GeographyRepository interface {
	Save(ctx context.Context, info *GeographyInfo) error
}

// PaymentRepository persists the per-order payment dimension.
type PaymentRepository interface {
	Save(ctx context.Context, info *PaymentInfo) error
}

// ShippingRepository persists the per-order shipping dimension.
type ShippingRepository interface {
	Save(ctx context.Context, info *ShippingInfo) error
}

// ProcessingDateRepository persists the per-order calendar dimension.
type ProcessingDateRepository interface {
	Save(ctx context.Context, info *ProcessingDateInfo) error
}

// ---------------------------------------------------------------------------
// Unit of work
// ---------------------------------------------------------------------------

// TxRepositories bundles the repositories that participate in one order's
// critical transaction.
type TxRepositories struct {
	Customers CustomerRepository
	Orders    OrderRepository
	Items     ItemRepository
	Products  ProductRepository
}

// UnitOfWork runs a function with repositories bound to a single database
// transaction. The transaction commits when fn returns nil and rolls back
// when it returns an error. Each order's upsert uses exactly one unit of
// work; no outer batch transaction exists.
type UnitOfWork interface {
	InTransaction(ctx context.Context, fn func(r TxRepositories) error) error
}
