package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ordersync/backend/internal/domain/sync"
)

// CustomerModel is the persistence model for the Customer domain entity.
type CustomerModel struct {
	ID                 string          `gorm:"type:varchar(128);primary_key"`
	Platform           sync.Platform   `gorm:"type:varchar(20);not null;index"`
	Phone              string          `gorm:"type:varchar(32);index"`
	Email              string          `gorm:"type:varchar(255)"`
	TotalOrders        int             `gorm:"not null;default:0"`
	TotalSpent         decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	AverageOrderValue  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	AcquisitionChannel string          `gorm:"type:varchar(50)"`
	FirstOrderAt       *time.Time
	LastOrderAt        *time.Time
	CreatedAt          time.Time `gorm:"not null"`
	UpdatedAt          time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer entity.
func (m *CustomerModel) ToDomain() *sync.Customer {
	return &sync.Customer{
		ID:                 m.ID,
		Platform:           m.Platform,
		Phone:              m.Phone,
		Email:              m.Email,
		TotalOrders:        m.TotalOrders,
		TotalSpent:         m.TotalSpent,
		AverageOrderValue:  m.AverageOrderValue,
		AcquisitionChannel: m.AcquisitionChannel,
		FirstOrderAt:       m.FirstOrderAt,
		LastOrderAt:        m.LastOrderAt,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

// CustomerModelFromDomain creates a persistence model from a domain Customer.
func CustomerModelFromDomain(c *sync.Customer) *CustomerModel {
	return &CustomerModel{
		ID:                 c.ID,
		Platform:           c.Platform,
		Phone:              c.Phone,
		Email:              c.Email,
		TotalOrders:        c.TotalOrders,
		TotalSpent:         c.TotalSpent,
		AverageOrderValue:  c.AverageOrderValue,
		AcquisitionChannel: c.AcquisitionChannel,
		FirstOrderAt:       c.FirstOrderAt,
		LastOrderAt:        c.LastOrderAt,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}

// OrderModel is the persistence model for the Order domain entity.
type OrderModel struct {
	ID             string          `gorm:"type:varchar(64);primary_key"`
	Platform       sync.Platform   `gorm:"type:varchar(20);not null;index"`
	CustomerID     string          `gorm:"type:varchar(128);not null;index"`
	RawStatus      string          `gorm:"type:varchar(50);not null"`
	StandardStatus string          `gorm:"type:varchar(20);not null;index"`
	GrossAmount    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	ShippingFee    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	NetRevenue     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	CashOnDelivery bool            `gorm:"not null;default:false"`
	IsDelivered    bool            `gorm:"not null;default:false"`
	IsCancelled    bool            `gorm:"not null;default:false"`
	Province       string          `gorm:"type:varchar(100)"`
	District       string          `gorm:"type:varchar(100)"`
	Ward           string          `gorm:"type:varchar(100)"`
	SourceCreated  time.Time
	SourceUpdated  time.Time
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order entity.
func (m *OrderModel) ToDomain() *sync.Order {
	return &sync.Order{
		ID:             m.ID,
		Platform:       m.Platform,
		CustomerID:     m.CustomerID,
		RawStatus:      m.RawStatus,
		StandardStatus: m.StandardStatus,
		GrossAmount:    m.GrossAmount,
		ShippingFee:    m.ShippingFee,
		DiscountAmount: m.DiscountAmount,
		NetRevenue:     m.NetRevenue,
		CashOnDelivery: m.CashOnDelivery,
		IsDelivered:    m.IsDelivered,
		IsCancelled:    m.IsCancelled,
		Province:       m.Province,
		District:       m.District,
		Ward:           m.Ward,
		SourceCreated:  m.SourceCreated,
		SourceUpdated:  m.SourceUpdated,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// OrderModelFromDomain creates a persistence model from a domain Order.
func OrderModelFromDomain(o *sync.Order) *OrderModel {
	return &OrderModel{
		ID:             o.ID,
		Platform:       o.Platform,
		CustomerID:     o.CustomerID,
		RawStatus:      o.RawStatus,
		StandardStatus: o.StandardStatus,
		GrossAmount:    o.GrossAmount,
		ShippingFee:    o.ShippingFee,
		DiscountAmount: o.DiscountAmount,
		NetRevenue:     o.NetRevenue,
		CashOnDelivery: o.CashOnDelivery,
		IsDelivered:    o.IsDelivered,
		IsCancelled:    o.IsCancelled,
		Province:       o.Province,
		District:       o.District,
		Ward:           o.Ward,
		SourceCreated:  o.SourceCreated,
		SourceUpdated:  o.SourceUpdated,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
}

// OrderItemModel is the persistence model for an order line item.
// The unique index over (order id, sku, platform product id, seq) allows
// multiple identical-SKU lines via the sequence number.
type OrderItemModel struct {
	ID                int64           `gorm:"primary_key;autoIncrement"`
	OrderID           string          `gorm:"type:varchar(64);not null;uniqueIndex:idx_order_item_identity,priority:1;index"`
	SKU               string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_order_item_identity,priority:2"`
	PlatformProductID string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_order_item_identity,priority:3"`
	Seq               int             `gorm:"not null;default:0;uniqueIndex:idx_order_item_identity,priority:4"`
	ProductName       string          `gorm:"type:varchar(255)"`
	Quantity          int             `gorm:"not null;default:0"`
	UnitPrice         decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Discount          decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	CreatedAt         time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain Item.
func (m *OrderItemModel) ToDomain() sync.Item {
	return sync.Item{
		OrderID:           m.OrderID,
		SKU:               m.SKU,
		PlatformProductID: m.PlatformProductID,
		Seq:               m.Seq,
		ProductName:       m.ProductName,
		Quantity:          m.Quantity,
		UnitPrice:         m.UnitPrice,
		Discount:          m.Discount,
	}
}

// OrderItemModelFromDomain creates a persistence model from a domain Item.
func OrderItemModelFromDomain(i *sync.Item) *OrderItemModel {
	return &OrderItemModel{
		OrderID:           i.OrderID,
		SKU:               i.SKU,
		PlatformProductID: i.PlatformProductID,
		Seq:               i.Seq,
		ProductName:       i.ProductName,
		Quantity:          i.Quantity,
		UnitPrice:         i.UnitPrice,
		Discount:          i.Discount,
	}
}

// ProductModel is the persistence model for a catalog product, identified by
// (sku, platform).
type ProductModel struct {
	ID         int64           `gorm:"primary_key;autoIncrement"`
	SKU        string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_product_identity,priority:1"`
	Platform   sync.Platform   `gorm:"type:varchar(20);not null;uniqueIndex:idx_product_identity,priority:2"`
	Name       string          `gorm:"type:varchar(255)"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Available  bool            `gorm:"not null;default:true"`
	LastSeenAt time.Time
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product.
func (m *ProductModel) ToDomain() *sync.Product {
	return &sync.Product{
		SKU:        m.SKU,
		Platform:   m.Platform,
		Name:       m.Name,
		UnitPrice:  m.UnitPrice,
		Available:  m.Available,
		LastSeenAt: m.LastSeenAt,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

// ProductModelFromDomain creates a persistence model from a domain Product.
func ProductModelFromDomain(p *sync.Product) *ProductModel {
	return &ProductModel{
		SKU:        p.SKU,
		Platform:   p.Platform,
		Name:       p.Name,
		UnitPrice:  p.UnitPrice,
		Available:  p.Available,
		LastSeenAt: p.LastSeenAt,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

// GeographyInfoModel is the per-order geography dimension row.
type GeographyInfoModel struct {
	OrderID  string `gorm:"type:varchar(64);primary_key"`
	Province string `gorm:"type:varchar(100)"`
	District string `gorm:"type:varchar(100)"`
	Ward     string `gorm:"type:varchar(100)"`
	Region   string `gorm:"type:varchar(50)"`
}

// TableName returns the table name for GORM
func (GeographyInfoModel) TableName() string {
	return "geography_info"
}

// ToDomain converts the persistence model to a domain GeographyInfo.
func (m *GeographyInfoModel) ToDomain() *sync.GeographyInfo {
	return &sync.GeographyInfo{
		OrderID:  m.OrderID,
		Province: m.Province,
		District: m.District,
		Ward:     m.Ward,
		Region:   m.Region,
	}
}

// GeographyInfoModelFromDomain creates a persistence model from a GeographyInfo.
func GeographyInfoModelFromDomain(g *sync.GeographyInfo) *GeographyInfoModel {
	return &GeographyInfoModel{
		OrderID:  g.OrderID,
		Province: g.Province,
		District: g.District,
		Ward:     g.Ward,
		Region:   g.Region,
	}
}

// PaymentInfoModel is the per-order payment dimension row.
type PaymentInfoModel struct {
	OrderID        string          `gorm:"type:varchar(64);primary_key"`
	Method         string          `gorm:"type:varchar(50)"`
	CashOnDelivery bool            `gorm:"not null;default:false"`
	GrossAmount    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (PaymentInfoModel) TableName() string {
	return "payment_info"
}

// ToDomain converts the persistence model to a domain PaymentInfo.
func (m *PaymentInfoModel) ToDomain() *sync.PaymentInfo {
	return &sync.PaymentInfo{
		OrderID:        m.OrderID,
		Method:         m.Method,
		CashOnDelivery: m.CashOnDelivery,
		GrossAmount:    m.GrossAmount,
		DiscountAmount: m.DiscountAmount,
	}
}

// PaymentInfoModelFromDomain creates a persistence model from a PaymentInfo.
func PaymentInfoModelFromDomain(p *sync.PaymentInfo) *PaymentInfoModel {
	return &PaymentInfoModel{
		OrderID:        p.OrderID,
		Method:         p.Method,
		CashOnDelivery: p.CashOnDelivery,
		GrossAmount:    p.GrossAmount,
		DiscountAmount: p.DiscountAmount,
	}
}

// ShippingInfoModel is the per-order shipping dimension row.
type ShippingInfoModel struct {
	OrderID        string          `gorm:"type:varchar(64);primary_key"`
	Carrier        string          `gorm:"type:varchar(100)"`
	TrackingNumber string          `gorm:"type:varchar(100)"`
	ShippingFee    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (ShippingInfoModel) TableName() string {
	return "shipping_info"
}

// ToDomain converts the persistence model to a domain ShippingInfo.
func (m *ShippingInfoModel) ToDomain() *sync.ShippingInfo {
	return &sync.ShippingInfo{
		OrderID:        m.OrderID,
		Carrier:        m.Carrier,
		TrackingNumber: m.TrackingNumber,
		ShippingFee:    m.ShippingFee,
	}
}

// ShippingInfoModelFromDomain creates a persistence model from a ShippingInfo.
func ShippingInfoModelFromDomain(s *sync.ShippingInfo) *ShippingInfoModel {
	return &ShippingInfoModel{
		OrderID:        s.OrderID,
		Carrier:        s.Carrier,
		TrackingNumber: s.TrackingNumber,
		ShippingFee:    s.ShippingFee,
	}
}

// ProcessingDateInfoModel is the per-order calendar dimension row.
type ProcessingDateInfoModel struct {
	OrderID   string    `gorm:"type:varchar(64);primary_key"`
	Date      time.Time `gorm:"not null"`
	Day       int       `gorm:"not null"`
	Week      int       `gorm:"not null"`
	Month     int       `gorm:"not null;index"`
	Quarter   int       `gorm:"not null"`
	Year      int       `gorm:"not null;index"`
	IsWeekend bool      `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (ProcessingDateInfoModel) TableName() string {
	return "processing_date_info"
}

// ToDomain converts the persistence model to a domain ProcessingDateInfo.
func (m *ProcessingDateInfoModel) ToDomain() *sync.ProcessingDateInfo {
	return &sync.ProcessingDateInfo{
		OrderID:   m.OrderID,
		Date:      m.Date,
		Day:       m.Day,
		Week:      m.Week,
		Month:     m.Month,
		Quarter:   m.Quarter,
		Year:      m.Year,
		IsWeekend: m.IsWeekend,
	}
}

// ProcessingDateInfoModelFromDomain creates a persistence model from a ProcessingDateInfo.
func ProcessingDateInfoModelFromDomain(p *sync.ProcessingDateInfo) *ProcessingDateInfoModel {
	return &ProcessingDateInfoModel{
		OrderID:   p.OrderID,
		Date:      p.Date,
		Day:       p.Day,
		Week:      p.Week,
		Month:     p.Month,
		Quarter:   p.Quarter,
		Year:      p.Year,
		IsWeekend: p.IsWeekend,
	}
}
