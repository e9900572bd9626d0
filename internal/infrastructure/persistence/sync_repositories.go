package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ordersync/backend/internal/domain/sync"
	"github.com/ordersync/backend/internal/infrastructure/persistence/models"
)

// ---------------------------------------------------------------------------
// Customer repository
// ---------------------------------------------------------------------------

// GormCustomerRepository implements sync.CustomerRepository using GORM.
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GORM-based customer repository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

var _ sync.CustomerRepository = (*GormCustomerRepository)(nil)

// FindByID finds a customer by its identity key
func (r *GormCustomerRepository) FindByID(ctx context.Context, id string) (*sync.Customer, error) {
	var model models.CustomerModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, sync.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a customer
func (r *GormCustomerRepository) Save(ctx context.Context, customer *sync.Customer) error {
	model := models.CustomerModelFromDomain(customer)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(model).Error
}

// ---------------------------------------------------------------------------
// Order repository
// ---------------------------------------------------------------------------

// GormOrderRepository implements sync.OrderRepository using GORM.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GORM-based order repository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

var _ sync.OrderRepository = (*GormOrderRepository)(nil)

// FindByID finds an order by its source order id
func (r *GormOrderRepository) FindByID(ctx context.Context, id string) (*sync.Order, error) {
	var model models.OrderModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, sync.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates an order
func (r *GormOrderRepository) Save(ctx context.Context, order *sync.Order) error {
	model := models.OrderModelFromDomain(order)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(model).Error
}

// ---------------------------------------------------------------------------
// Order item repository
// ---------------------------------------------------------------------------

// GormItemRepository implements sync.ItemRepository using GORM.
type GormItemRepository struct {
	db *gorm.DB
}

// NewGormItemRepository creates a new GORM-based order item repository
func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

var _ sync.ItemRepository = (*GormItemRepository)(nil)

// FindByOrderID returns all persisted items for an order
func (r *GormItemRepository) FindByOrderID(ctx context.Context, orderID string) ([]sync.Item, error) {
	var rows []models.OrderItemModel
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("seq ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	items := make([]sync.Item, 0, len(rows))
	for i := range rows {
		items = append(items, rows[i].ToDomain())
	}
	return items, nil
}

// DeleteByOrderID removes every item belonging to an order
func (r *GormItemRepository) DeleteByOrderID(ctx context.Context, orderID string) error {
	return r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Delete(&models.OrderItemModel{}).Error
}

// SaveAll inserts the given items
func (r *GormItemRepository) SaveAll(ctx context.Context, items []sync.Item) error {
	if len(items) == 0 {
		return nil
	}
	rows := make([]models.OrderItemModel, 0, len(items))
	for i := range items {
		rows = append(rows, *models.OrderItemModelFromDomain(&items[i]))
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// ---------------------------------------------------------------------------
// Product repository
// ---------------------------------------------------------------------------

// GormProductRepository implements sync.ProductRepository using GORM.
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GORM-based product repository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

var _ sync.ProductRepository = (*GormProductRepository)(nil)

// FindBySKUAndPlatform finds a product by its composite identity
func (r *GormProductRepository) FindBySKUAndPlatform(ctx context.Context, skuCode string, platform sync.Platform) (*sync.Product, error) {
	var model models.ProductModel
	err := r.db.WithContext(ctx).
		Where("sku = ? AND platform = ?", skuCode, platform).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, sync.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, product *sync.Product) error {
	model := models.ProductModelFromDomain(product)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "sku"}, {Name: "platform"}},
			UpdateAll: true,
		}).
		Create(model).Error
}

// ---------------------------------------------------------------------------
// Dimensional repositories
// ---------------------------------------------------------------------------

// GormGeographyRepository implements sync.GeographyRepository using GORM.
type GormGeographyRepository struct {
	db *gorm.DB
}

// NewGormGeographyRepository creates a new GORM-based geography repository
func NewGormGeographyRepository(db *gorm.DB) *GormGeographyRepository {
	return &GormGeographyRepository{db: db}
}

var _ sync.GeographyRepository = (*GormGeographyRepository)(nil)

// Save creates or updates the geography row for an order
func (r *GormGeographyRepository) Save(ctx context.Context, info *sync.GeographyInfo) error {
	model := models.GeographyInfoModelFromDomain(info)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}},
			UpdateAll: true,
		}).
		Create(model).Error
}

// GormPaymentRepository implements sync.PaymentRepository using GORM.
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GORM-based payment repository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

var _ sync.PaymentRepository = (*GormPaymentRepository)(nil)

// Save creates or updates the payment row for an order
func (r *GormPaymentRepository) Save(ctx context.Context, info *sync.PaymentInfo) error {
	model := models.PaymentInfoModelFromDomain(info)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}},
			UpdateAll: true,
		}).
		Create(model).Error
}

// GormShippingRepository implements sync.ShippingRepository using GORM.
type GormShippingRepository struct {
	db *gorm.DB
}

// NewGormShippingRepository creates a new GORM-based shipping repository
func NewGormShippingRepository(db *gorm.DB) *GormShippingRepository {
	return &GormShippingRepository{db: db}
}

var _ sync.ShippingRepository = (*GormShippingRepository)(nil)

// Save creates or updates the shipping row for an order
func (r *GormShippingRepository) Save(ctx context.Context, info *sync.ShippingInfo) error {
	model := models.ShippingInfoModelFromDomain(info)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}},
			UpdateAll: true,
		}).
		Create(model).Error
}

// GormProcessingDateRepository implements sync.ProcessingDateRepository using GORM.
type GormProcessingDateRepository struct {
	db *gorm.DB
}

// NewGormProcessingDateRepository creates a new GORM-based processing date repository
func NewGormProcessingDateRepository(db *gorm.DB) *GormProcessingDateRepository {
	return &GormProcessingDateRepository{db: db}
}

var _ sync.ProcessingDateRepository = (*GormProcessingDateRepository)(nil)

// Save creates or updates the calendar row for an order
func (r *GormProcessingDateRepository) Save(ctx context.Context, info *sync.ProcessingDateInfo) error {
	model := models.ProcessingDateInfoModelFromDomain(info)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}},
			UpdateAll: true,
		}).
		Create(model).Error
}
