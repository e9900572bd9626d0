package models

import (
	"time"

	"github.com/ordersync/backend/internal/domain/status"
	"github.com/ordersync/backend/internal/domain/sync"
)

// StatusModel is the persisted (platform, raw code) -> standard code mapping.
type StatusModel struct {
	ID           int64           `gorm:"primary_key;autoIncrement"`
	Platform     sync.Platform   `gorm:"type:varchar(20);not null;uniqueIndex:idx_status_identity,priority:1"`
	RawCode      string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_status_identity,priority:2"`
	StandardCode status.Code     `gorm:"type:varchar(20);not null"`
	Category     status.Category `gorm:"type:varchar(20);not null"`
	CreatedAt    time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StatusModel) TableName() string {
	return "statuses"
}

// ToDomain converts the persistence model to a domain Status.
func (m *StatusModel) ToDomain() *status.Status {
	return &status.Status{
		ID:           m.ID,
		Platform:     m.Platform,
		RawCode:      m.RawCode,
		StandardCode: m.StandardCode,
		Category:     m.Category,
		CreatedAt:    m.CreatedAt,
	}
}

// StatusModelFromDomain creates a persistence model from a domain Status.
func StatusModelFromDomain(s *status.Status) *StatusModel {
	return &StatusModel{
		ID:           s.ID,
		Platform:     s.Platform,
		RawCode:      s.RawCode,
		StandardCode: s.StandardCode,
		Category:     s.Category,
		CreatedAt:    s.CreatedAt,
	}
}

// OrderStatusModel is one transition event row.
type OrderStatusModel struct {
	ID                            int64       `gorm:"primary_key;autoIncrement"`
	StatusID                      int64       `gorm:"not null;index:idx_order_status_status"`
	OrderID                       string      `gorm:"type:varchar(64);not null;index:idx_order_status_order"`
	PreviousCode                  status.Code `gorm:"type:varchar(20)"`
	TransitionedAt                time.Time   `gorm:"not null;index"`
	DurationInPreviousStatusHours float64     `gorm:"not null;default:0"`
	TriggeredBy                   string      `gorm:"type:varchar(50)"`
	IsExpectedTransition          bool        `gorm:"not null;default:true"`
	CreatedAt                     time.Time   `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderStatusModel) TableName() string {
	return "order_statuses"
}

// ToDomain converts the persistence model to a domain Transition.
func (m *OrderStatusModel) ToDomain() *status.Transition {
	return &status.Transition{
		ID:                            m.ID,
		StatusID:                      m.StatusID,
		OrderID:                       m.OrderID,
		PreviousCode:                  m.PreviousCode,
		TransitionedAt:                m.TransitionedAt,
		DurationInPreviousStatusHours: m.DurationInPreviousStatusHours,
		TriggeredBy:                   m.TriggeredBy,
		IsExpectedTransition:          m.IsExpectedTransition,
		CreatedAt:                     m.CreatedAt,
	}
}

// OrderStatusModelFromDomain creates a persistence model from a Transition.
func OrderStatusModelFromDomain(t *status.Transition) *OrderStatusModel {
	return &OrderStatusModel{
		ID:                            t.ID,
		StatusID:                      t.StatusID,
		OrderID:                       t.OrderID,
		PreviousCode:                  t.PreviousCode,
		TransitionedAt:                t.TransitionedAt,
		DurationInPreviousStatusHours: t.DurationInPreviousStatusHours,
		TriggeredBy:                   t.TriggeredBy,
		IsExpectedTransition:          t.IsExpectedTransition,
		CreatedAt:                     t.CreatedAt,
	}
}

// OrderStatusDetailModel is the denormalized business-rule row per
// (status key, order id).
type OrderStatusDetailModel struct {
	ID                   int64     `gorm:"primary_key;autoIncrement"`
	StatusID             int64     `gorm:"not null;uniqueIndex:idx_status_detail_identity,priority:1"`
	OrderID              string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_status_detail_identity,priority:2"`
	IsActiveOrder        bool      `gorm:"not null;default:false"`
	IsCompletedOrder     bool      `gorm:"not null;default:false"`
	IsRevenueRecognized  bool      `gorm:"not null;default:false"`
	IsRefundable         bool      `gorm:"not null;default:false"`
	IsCancellable        bool      `gorm:"not null;default:false"`
	IsTrackable          bool      `gorm:"not null;default:false"`
	NextPossibleStatuses string    `gorm:"type:varchar(255)"`
	AutoTransitionHours  int       `gorm:"not null;default:0"`
	DisplayLabel         string    `gorm:"type:varchar(100)"`
	DisplayColor         string    `gorm:"type:varchar(20)"`
	CreatedAt            time.Time `gorm:"not null"`
	UpdatedAt            time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderStatusDetailModel) TableName() string {
	return "order_status_details"
}

// ToDomain converts the persistence model to a domain Detail.
func (m *OrderStatusDetailModel) ToDomain() *status.Detail {
	return &status.Detail{
		ID:                   m.ID,
		StatusID:             m.StatusID,
		OrderID:              m.OrderID,
		IsActiveOrder:        m.IsActiveOrder,
		IsCompletedOrder:     m.IsCompletedOrder,
		IsRevenueRecognized:  m.IsRevenueRecognized,
		IsRefundable:         m.IsRefundable,
		IsCancellable:        m.IsCancellable,
		IsTrackable:          m.IsTrackable,
		NextPossibleStatuses: m.NextPossibleStatuses,
		AutoTransitionHours:  m.AutoTransitionHours,
		DisplayLabel:         m.DisplayLabel,
		DisplayColor:         m.DisplayColor,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
}

// OrderStatusDetailModelFromDomain creates a persistence model from a Detail.
func OrderStatusDetailModelFromDomain(d *status.Detail) *OrderStatusDetailModel {
	return &OrderStatusDetailModel{
		ID:                   d.ID,
		StatusID:             d.StatusID,
		OrderID:              d.OrderID,
		IsActiveOrder:        d.IsActiveOrder,
		IsCompletedOrder:     d.IsCompletedOrder,
		IsRevenueRecognized:  d.IsRevenueRecognized,
		IsRefundable:         d.IsRefundable,
		IsCancellable:        d.IsCancellable,
		IsTrackable:          d.IsTrackable,
		NextPossibleStatuses: d.NextPossibleStatuses,
		AutoTransitionHours:  d.AutoTransitionHours,
		DisplayLabel:         d.DisplayLabel,
		DisplayColor:         d.DisplayColor,
		CreatedAt:            d.CreatedAt,
		UpdatedAt:            d.UpdatedAt,
	}
}

// AllModels lists every persistence model for schema migration.
func AllModels() []any {
	return []any{
		&CustomerModel{},
		&OrderModel{},
		&OrderItemModel{},
		&ProductModel{},
		&GeographyInfoModel{},
		&PaymentInfoModel{},
		&ShippingInfoModel{},
		&ProcessingDateInfoModel{},
		&StatusModel{},
		&OrderStatusModel{},
		&OrderStatusDetailModel{},
	}
}
