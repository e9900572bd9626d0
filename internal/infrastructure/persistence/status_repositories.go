package persistence

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ordersync/backend/internal/domain/status"
	"github.com/ordersync/backend/internal/domain/sync"
	"github.com/ordersync/backend/internal/infrastructure/persistence/models"
)

// ---------------------------------------------------------------------------
// Status mapping repository
// ---------------------------------------------------------------------------

// GormStatusRepository implements status.Repository using GORM.
type GormStatusRepository struct {
	db *gorm.DB
}

// NewGormStatusRepository creates a new GORM-based status repository
func NewGormStatusRepository(db *gorm.DB) *GormStatusRepository {
	return &GormStatusRepository{db: db}
}

var _ status.Repository = (*GormStatusRepository)(nil)

// FindByPlatformAndRawCode looks up the mapping row for a raw code
func (r *GormStatusRepository) FindByPlatformAndRawCode(ctx context.Context, platform sync.Platform, rawCode string) (*status.Status, error) {
	var model models.StatusModel
	err := r.db.WithContext(ctx).
		Where("platform = ? AND raw_code = ?", platform, rawCode).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, sync.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// GetOrCreate returns the mapping row for the pair, creating it on first
// sighting. The unique index on (platform, raw_code) guarantees a single
// surrogate key per pair even under concurrent creation.
func (r *GormStatusRepository) GetOrCreate(ctx context.Context, s *status.Status) (*status.Status, error) {
	model := models.StatusModel{}
	err := r.db.WithContext(ctx).
		Where("platform = ? AND raw_code = ?", s.Platform, s.RawCode).
		Attrs(models.StatusModel{
			Platform:     s.Platform,
			RawCode:      s.RawCode,
			StandardCode: s.StandardCode,
			Category:     s.Category,
			CreatedAt:    time.Now(),
		}).
		FirstOrCreate(&model).Error
	if err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// ---------------------------------------------------------------------------
// Transition event repository
// ---------------------------------------------------------------------------

// GormTransitionRepository implements status.TransitionRepository using GORM.
type GormTransitionRepository struct {
	db *gorm.DB
}

// NewGormTransitionRepository creates a new GORM-based transition repository
func NewGormTransitionRepository(db *gorm.DB) *GormTransitionRepository {
	return &GormTransitionRepository{db: db}
}

var _ status.TransitionRepository = (*GormTransitionRepository)(nil)

// Save inserts a transition event
func (r *GormTransitionRepository) Save(ctx context.Context, t *status.Transition) error {
	model := models.OrderStatusModelFromDomain(t)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	t.ID = model.ID
	return nil
}

// FindLatestByOrderID returns the most recent transition for an order
func (r *GormTransitionRepository) FindLatestByOrderID(ctx context.Context, orderID string) (*status.Transition, error) {
	var model models.OrderStatusModel
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("transitioned_at DESC, id DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, sync.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOrderID returns all transitions for an order, oldest first
func (r *GormTransitionRepository) FindByOrderID(ctx context.Context, orderID string) ([]status.Transition, error) {
	var rows []models.OrderStatusModel
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("transitioned_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]status.Transition, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].ToDomain())
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Status detail repository
// ---------------------------------------------------------------------------

// GormDetailRepository implements status.DetailRepository using GORM.
type GormDetailRepository struct {
	db *gorm.DB
}

// NewGormDetailRepository creates a new GORM-based status detail repository
func NewGormDetailRepository(db *gorm.DB) *GormDetailRepository {
	return &GormDetailRepository{db: db}
}

var _ status.DetailRepository = (*GormDetailRepository)(nil)

// Save creates or updates the detail row for (status key, order id)
func (r *GormDetailRepository) Save(ctx context.Context, d *status.Detail) error {
	model := models.OrderStatusDetailModelFromDomain(d)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "status_id"}, {Name: "order_id"}},
			UpdateAll: true,
		}).
		Create(model).Error
}

// FindByStatusAndOrder looks up a detail row
func (r *GormDetailRepository) FindByStatusAndOrder(ctx context.Context, statusID int64, orderID string) (*status.Detail, error) {
	var model models.OrderStatusDetailModel
	err := r.db.WithContext(ctx).
		Where("status_id = ? AND order_id = ?", statusID, orderID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, sync.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}
