package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/ordersync/backend/internal/domain/sync"
)

// GormUnitOfWork runs a function with repositories bound to one database
// transaction.
type GormUnitOfWork struct {
	db *gorm.DB
}

// NewGormUnitOfWork creates a unit of work over the given connection
func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

var _ sync.UnitOfWork = (*GormUnitOfWork)(nil)

// InTransaction executes fn with transaction-bound repositories. The
// transaction commits when fn returns nil and rolls back otherwise.
func (u *GormUnitOfWork) InTransaction(ctx context.Context, fn func(r sync.TxRepositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(sync.TxRepositories{
			Customers: NewGormCustomerRepository(tx),
			Orders:    NewGormOrderRepository(tx),
			Items:     NewGormItemRepository(tx),
			Products:  NewGormProductRepository(tx),
		})
	})
}
