// Package pipeline implements the order upsert pipeline: one normalized
// order record in, a reconciled set of database rows out.
//
// Writes are split into two tiers. Tier 1 (customer, order, line items) is
// the critical set and runs inside a single transaction; if any part fails
// the whole order is rejected. Tier 2 (geography, calendar, payment,
// shipping, status tracking) is best-effort enrichment that runs after the
// critical commit; each step fails independently without affecting the
// others or the committed core.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ordersync/backend/internal/domain/identity"
	"github.com/ordersync/backend/internal/domain/status"
	"github.com/ordersync/backend/internal/domain/sync"
)

// ErrInvalidRecord indicates the order record is missing required fields.
var ErrInvalidRecord = errors.New("pipeline: invalid order record")

// Outcome reports what one order upsert did.
type Outcome struct {
	OrderID        string
	Platform       sync.Platform
	CustomerID     string
	StandardStatus status.Code
	// Created is true when the order row did not exist before
	Created bool
	// EnrichmentErrors names the tier-2 steps that failed, if any
	EnrichmentErrors []string
}

// Repositories bundles the tier-2 repositories used outside the critical
// transaction.
type Repositories struct {
	Geography       sync.GeographyRepository
	Payments        sync.PaymentRepository
	Shipping        sync.ShippingRepository
	ProcessingDates sync.ProcessingDateRepository
	Statuses        status.Repository
	Transitions     status.TransitionRepository
	Details         status.DetailRepository
}

// Service is the order upsert pipeline.
type Service struct {
	uow        sync.UnitOfWork
	repos      Repositories
	classifier *status.Classifier
	resolver   *identity.Resolver

	triggeredBy string
	logger      *zap.Logger
	now         func() time.Time
}

// NewService creates a new upsert pipeline service
func NewService(uow sync.UnitOfWork, repos Repositories, classifier *status.Classifier, resolver *identity.Resolver, triggeredBy string, logger *zap.Logger) *Service {
	if triggeredBy == "" {
		triggeredBy = "sync"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		uow:         uow,
		repos:       repos,
		classifier:  classifier,
		resolver:    resolver,
		triggeredBy: triggeredBy,
		logger:      logger,
		now:         time.Now,
	}
}

// UpsertOrder processes one normalized order record. Re-processing the same
// record converges to the same database state.
func (s *Service) UpsertOrder(ctx context.Context, record *sync.OrderRecord) (*Outcome, error) {
	if record == nil || record.OrderID == "" || !record.Platform.IsValid() {
		return nil, ErrInvalidRecord
	}

	processedAt := s.now()
	code := s.classifier.Resolve(record.Platform, record.RawStatus)
	if code == status.CodeUnknown && record.RawStatus != "" {
		s.logger.Warn("unmapped raw status",
			zap.String("platform", record.Platform.String()),
			zap.String("raw_status", record.RawStatus),
			zap.String("order_id", record.OrderID))
	}

	outcome := &Outcome{
		OrderID:        record.OrderID,
		Platform:       record.Platform,
		StandardStatus: code,
	}

	var previousStatus status.Code
	err := s.uow.InTransaction(ctx, func(r sync.TxRepositories) error {
		existing, err := r.Orders.FindByID(ctx, record.OrderID)
		if err != nil && !errors.Is(err, sync.ErrNotFound) {
			return fmt.Errorf("load order: %w", err)
		}
		if existing != nil {
			previousStatus = status.Code(existing.StandardStatus)
		}
		outcome.Created = existing == nil

		customerID := s.resolver.ResolveCustomerID(record)
		outcome.CustomerID = customerID
		if err := s.upsertCustomer(ctx, r, record, customerID, existing, processedAt); err != nil {
			return err
		}
		if err := s.upsertOrder(ctx, r, record, customerID, code, existing); err != nil {
			return err
		}
		s.upsertProducts(ctx, r, record, processedAt)
		return s.replaceItems(ctx, r, record)
	})
	if err != nil {
		return nil, err
	}

	outcome.EnrichmentErrors = s.enrich(ctx, record, code, previousStatus, processedAt)
	return outcome, nil
}

// ---------------------------------------------------------------------------
// Tier 1: critical transaction
// ---------------------------------------------------------------------------

func (s *Service) upsertCustomer(ctx context.Context, r sync.TxRepositories, record *sync.OrderRecord, customerID string, existing *sync.Order, processedAt time.Time) error {
	customer, err := r.Customers.FindByID(ctx, customerID)
	if err != nil {
		if !errors.Is(err, sync.ErrNotFound) {
			return fmt.Errorf("load customer: %w", err)
		}
		customer = sync.NewCustomer(customerID, record.Platform,
			identity.NormalizePhone(record.RecipientPhone), record.RecipientEmail, record.Channel)
	}

	// Backfill contact details on repeat orders.
	if customer.Phone == "" {
		customer.Phone = identity.NormalizePhone(record.RecipientPhone)
	}
	if customer.Email == "" {
		customer.Email = record.RecipientEmail
	}

	net := record.NetRevenue()
	switch {
	case existing == nil:
		customer.RecordOrder(net, record.EffectiveTimestamp(processedAt))
	case existing.CustomerID != customerID:
		// The order changed hands: a corrected phone or a late-arriving
		// platform user id resolved it to a different customer. Move the
		// contribution instead of adjusting the wrong ledger.
		if err := s.releaseOrder(ctx, r, existing); err != nil {
			return err
		}
		customer.RecordOrder(net, record.EffectiveTimestamp(processedAt))
	default:
		customer.ReplaceOrder(existing.NetRevenue, net)
	}

	if err := r.Customers.Save(ctx, customer); err != nil {
		return fmt.Errorf("save customer: %w", err)
	}
	return nil
}

// releaseOrder backs the order's contribution out of the customer that
// previously owned it.
func (s *Service) releaseOrder(ctx context.Context, r sync.TxRepositories, existing *sync.Order) error {
	previous, err := r.Customers.FindByID(ctx, existing.CustomerID)
	if err != nil {
		if errors.Is(err, sync.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("load previous customer: %w", err)
	}
	previous.RemoveOrder(existing.NetRevenue)
	if err := r.Customers.Save(ctx, previous); err != nil {
		return fmt.Errorf("save previous customer: %w", err)
	}
	return nil
}

func (s *Service) upsertOrder(ctx context.Context, r sync.TxRepositories, record *sync.OrderRecord, customerID string, code status.Code, existing *sync.Order) error {
	order := &sync.Order{
		ID:             record.OrderID,
		Platform:       record.Platform,
		CustomerID:     customerID,
		RawStatus:      record.RawStatus,
		StandardStatus: string(code),
		GrossAmount:    record.GrossAmount,
		ShippingFee:    record.ShippingFee,
		DiscountAmount: record.DiscountAmount,
		NetRevenue:     record.NetRevenue(),
		CashOnDelivery: record.CashOnDelivery,
		IsDelivered:    code == status.CodeDelivered,
		IsCancelled:    code == status.CodeCancelled,
		Province:       record.Province,
		District:       record.District,
		Ward:           record.Ward,
		SourceCreated:  record.CreatedAt,
		SourceUpdated:  record.UpdatedAt,
	}
	if existing != nil {
		order.CreatedAt = existing.CreatedAt
	}

	if err := r.Orders.Save(ctx, order); err != nil {
		return fmt.Errorf("save order: %w", err)
	}
	return nil
}

// upsertProducts keeps the catalog current. A single product failing never
// fails the order.
func (s *Service) upsertProducts(ctx context.Context, r sync.TxRepositories, record *sync.OrderRecord, processedAt time.Time) {
	for _, line := range record.Items {
		if line.SKU == "" {
			continue
		}

		product, err := r.Products.FindBySKUAndPlatform(ctx, line.SKU, record.Platform)
		if err != nil {
			if !errors.Is(err, sync.ErrNotFound) {
				s.logger.Warn("product lookup failed",
					zap.String("sku", line.SKU), zap.Error(err))
				continue
			}
			product = &sync.Product{
				SKU:      line.SKU,
				Platform: record.Platform,
				Name:     line.ProductName,
			}
		}

		// Descriptive fields are first-write-wins; prices track the
		// latest observation.
		if product.Name == "" {
			product.Name = line.ProductName
		}
		product.UnitPrice = line.UnitPrice
		product.Available = true
		product.LastSeenAt = processedAt

		if err := r.Products.Save(ctx, product); err != nil {
			s.logger.Warn("product upsert failed",
				zap.String("sku", line.SKU), zap.Error(err))
		}
	}
}

// replaceItems swaps the order's line items wholesale so a partial item list
// never survives.
func (s *Service) replaceItems(ctx context.Context, r sync.TxRepositories, record *sync.OrderRecord) error {
	if err := r.Items.DeleteByOrderID(ctx, record.OrderID); err != nil {
		return fmt.Errorf("delete items: %w", err)
	}

	items := make([]sync.Item, 0, len(record.Items))
	for i, line := range record.Items {
		items = append(items, sync.Item{
			OrderID:           record.OrderID,
			SKU:               line.SKU,
			PlatformProductID: line.PlatformProductID,
			Seq:               i,
			ProductName:       line.ProductName,
			Quantity:          line.Quantity,
			UnitPrice:         line.UnitPrice,
			Discount:          line.Discount,
		})
	}
	if err := r.Items.SaveAll(ctx, items); err != nil {
		return fmt.Errorf("save items: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Tier 2: best-effort enrichment
// ---------------------------------------------------------------------------

func (s *Service) enrich(ctx context.Context, record *sync.OrderRecord, code status.Code, previousStatus status.Code, processedAt time.Time) []string {
	var failed []string
	fail := func(step string, err error) {
		failed = append(failed, step)
		s.logger.Warn("enrichment step failed",
			zap.String("step", step),
			zap.String("order_id", record.OrderID),
			zap.Error(err))
	}

	if err := s.repos.Geography.Save(ctx, &sync.GeographyInfo{
		OrderID:  record.OrderID,
		Province: record.Province,
		District: record.District,
		Ward:     record.Ward,
		Region:   regionOf(record.Province),
	}); err != nil {
		fail("geography", err)
	}

	if err := s.repos.ProcessingDates.Save(ctx,
		sync.NewProcessingDateInfo(record.OrderID, record.EffectiveTimestamp(processedAt))); err != nil {
		fail("processing_date", err)
	}

	if err := s.repos.Payments.Save(ctx, &sync.PaymentInfo{
		OrderID:        record.OrderID,
		Method:         record.PaymentMethod,
		CashOnDelivery: record.CashOnDelivery,
		GrossAmount:    record.GrossAmount,
		DiscountAmount: record.DiscountAmount,
	}); err != nil {
		fail("payment", err)
	}

	if err := s.repos.Shipping.Save(ctx, &sync.ShippingInfo{
		OrderID:        record.OrderID,
		Carrier:        record.Carrier,
		TrackingNumber: record.TrackingNumber,
		ShippingFee:    record.ShippingFee,
	}); err != nil {
		fail("shipping", err)
	}

	if err := s.trackStatus(ctx, record, code, previousStatus, processedAt); err != nil {
		fail("status", err)
	}

	return failed
}

// trackStatus maintains the status mapping row, the transition history and
// the denormalized detail row. The transition and detail depend on the
// mapping row's surrogate key, so a mapping failure skips both.
func (s *Service) trackStatus(ctx context.Context, record *sync.OrderRecord, code status.Code, previousStatus status.Code, processedAt time.Time) error {
	row, err := s.repos.Statuses.GetOrCreate(ctx, &status.Status{
		Platform:     record.Platform,
		RawCode:      record.RawStatus,
		StandardCode: code,
		Category:     status.CategoryOf(code),
	})
	if err != nil {
		return fmt.Errorf("status mapping: %w", err)
	}

	transitionedAt := record.EffectiveTimestamp(processedAt)

	latest, err := s.repos.Transitions.FindLatestByOrderID(ctx, record.OrderID)
	if err != nil && !errors.Is(err, sync.ErrNotFound) {
		return fmt.Errorf("latest transition: %w", err)
	}

	// Re-observing the same status is not a transition.
	if latest == nil || latest.StatusID != row.ID {
		var duration float64
		if latest != nil {
			duration = status.DurationHours(latest.TransitionedAt, transitionedAt)
		}
		if err := s.repos.Transitions.Save(ctx, &status.Transition{
			StatusID:                      row.ID,
			OrderID:                       record.OrderID,
			PreviousCode:                  previousStatus,
			TransitionedAt:                transitionedAt,
			DurationInPreviousStatusHours: duration,
			TriggeredBy:                   s.triggeredBy,
			IsExpectedTransition:          status.IsExpectedTransition(previousStatus, code),
		}); err != nil {
			return fmt.Errorf("save transition: %w", err)
		}
	}

	detail := status.NewDetail(row.ID, record.OrderID, status.DescriptorOf(code))
	if err := s.repos.Details.Save(ctx, detail); err != nil {
		return fmt.Errorf("save detail: %w", err)
	}
	return nil
}

// regionOf tags well-known provinces with a coarse region. Unrecognized
// provinces stay untagged.
func regionOf(province string) string {
	switch strings.ToUpper(strings.TrimSpace(province)) {
	case "HA NOI", "HANOI", "HAI PHONG", "QUANG NINH":
		return "NORTH"
	case "DA NANG", "HUE", "THUA THIEN HUE", "QUANG NAM":
		return "CENTRAL"
	case "HO CHI MINH", "HCMC", "HO CHI MINH CITY", "CAN THO", "BINH DUONG", "DONG NAI":
		return "SOUTH"
	default:
		return ""
	}
}
