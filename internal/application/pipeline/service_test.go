package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ordersync/backend/internal/domain/identity"
	"github.com/ordersync/backend/internal/domain/status"
	"github.com/ordersync/backend/internal/domain/sync"
	"github.com/ordersync/backend/internal/infrastructure/persistence"
	"github.com/ordersync/backend/internal/infrastructure/persistence/models"
)

type fixture struct {
	db      *gorm.DB
	service *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.AllModels()...))

	service := NewService(
		persistence.NewGormUnitOfWork(db),
		Repositories{
			Geography:       persistence.NewGormGeographyRepository(db),
			Payments:        persistence.NewGormPaymentRepository(db),
			Shipping:        persistence.NewGormShippingRepository(db),
			ProcessingDates: persistence.NewGormProcessingDateRepository(db),
			Statuses:        persistence.NewGormStatusRepository(db),
			Transitions:     persistence.NewGormTransitionRepository(db),
			Details:         persistence.NewGormDetailRepository(db),
		},
		status.NewDefaultClassifier(),
		identity.NewResolver(nil),
		"sync",
		nil,
	)
	return &fixture{db: db, service: service}
}

func orderRecord() *sync.OrderRecord {
	return &sync.OrderRecord{
		OrderID:        "A-100",
		Platform:       sync.PlatformShopee,
		RawStatus:      "TO_SHIP",
		RecipientName:  "Nguyen Van A",
		RecipientPhone: "090 123 4567",
		GrossAmount:    decimal.NewFromInt(120),
		ShippingFee:    decimal.NewFromInt(20),
		DiscountAmount: decimal.NewFromInt(5),
		CashOnDelivery: true,
		PaymentMethod:  "COD",
		Province:       "Ha Noi",
		District:       "Dong Da",
		Ward:           "O Cho Dua",
		Carrier:        "SPX",
		TrackingNumber: "TRK1",
		Channel:        "Shopee",
		CreatedAt:      time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
		UpdatedAt:      time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		Items: []sync.OrderLine{
			{SKU: "SKU-1", PlatformProductID: "p1", ProductName: "Widget", Quantity: 2, UnitPrice: decimal.NewFromInt(50)},
			{SKU: "SKU-2", PlatformProductID: "p2", ProductName: "Gadget", Quantity: 1, UnitPrice: decimal.NewFromInt(20)},
		},
	}
}

func TestUpsertOrder_CreatesEverything(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	outcome, err := f.service.UpsertOrder(ctx, orderRecord())
	require.NoError(t, err)
	assert.True(t, outcome.Created)
	assert.Equal(t, status.CodeReadyToShip, outcome.StandardStatus)
	assert.Empty(t, outcome.EnrichmentErrors)

	order, err := persistence.NewGormOrderRepository(f.db).FindByID(ctx, "A-100")
	require.NoError(t, err)
	assert.Equal(t, "READY_TO_SHIP", order.StandardStatus)
	assert.True(t, order.NetRevenue.Equal(decimal.NewFromInt(100)))
	assert.False(t, order.IsDelivered)

	customer, err := persistence.NewGormCustomerRepository(f.db).FindByID(ctx, outcome.CustomerID)
	require.NoError(t, err)
	assert.Equal(t, 1, customer.TotalOrders)
	assert.True(t, customer.TotalSpent.Equal(decimal.NewFromInt(100)))
	assert.True(t, customer.AverageOrderValue.Equal(decimal.NewFromInt(100)))

	items, err := persistence.NewGormItemRepository(f.db).FindByOrderID(ctx, "A-100")
	require.NoError(t, err)
	assert.Len(t, items, 2)

	product, err := persistence.NewGormProductRepository(f.db).FindBySKUAndPlatform(ctx, "SKU-1", sync.PlatformShopee)
	require.NoError(t, err)
	assert.Equal(t, "Widget", product.Name)

	transitions, err := persistence.NewGormTransitionRepository(f.db).FindByOrderID(ctx, "A-100")
	require.NoError(t, err)
	require.Len(t, transitions, 1)
	assert.Equal(t, status.Code(""), transitions[0].PreviousCode)
	assert.True(t, transitions[0].IsExpectedTransition)
	assert.Zero(t, transitions[0].DurationInPreviousStatusHours)

	var geoCount, dateCount, payCount, shipCount int64
	f.db.Model(&models.GeographyInfoModel{}).Count(&geoCount)
	f.db.Model(&models.ProcessingDateInfoModel{}).Count(&dateCount)
	f.db.Model(&models.PaymentInfoModel{}).Count(&payCount)
	f.db.Model(&models.ShippingInfoModel{}).Count(&shipCount)
	assert.Equal(t, int64(1), geoCount)
	assert.Equal(t, int64(1), dateCount)
	assert.Equal(t, int64(1), payCount)
	assert.Equal(t, int64(1), shipCount)

	var geo models.GeographyInfoModel
	require.NoError(t, f.db.First(&geo).Error)
	assert.Equal(t, "NORTH", geo.Region)
}

func TestUpsertOrder_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.UpsertOrder(ctx, orderRecord())
	require.NoError(t, err)
	outcome, err := f.service.UpsertOrder(ctx, orderRecord())
	require.NoError(t, err)
	assert.False(t, outcome.Created)

	customer, err := persistence.NewGormCustomerRepository(f.db).FindByID(ctx, outcome.CustomerID)
	require.NoError(t, err)
	assert.Equal(t, 1, customer.TotalOrders)
	assert.True(t, customer.TotalSpent.Equal(decimal.NewFromInt(100)))

	items, err := persistence.NewGormItemRepository(f.db).FindByOrderID(ctx, "A-100")
	require.NoError(t, err)
	assert.Len(t, items, 2)

	// Same status observed twice is not a second transition.
	transitions, err := persistence.NewGormTransitionRepository(f.db).FindByOrderID(ctx, "A-100")
	require.NoError(t, err)
	assert.Len(t, transitions, 1)
}

func TestUpsertOrder_StatusProgression(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.UpsertOrder(ctx, orderRecord())
	require.NoError(t, err)

	record := orderRecord()
	record.RawStatus = "COMPLETED"
	record.UpdatedAt = record.UpdatedAt.Add(48 * time.Hour)
	outcome, err := f.service.UpsertOrder(ctx, record)
	require.NoError(t, err)
	assert.Equal(t, status.CodeDelivered, outcome.StandardStatus)

	order, err := persistence.NewGormOrderRepository(f.db).FindByID(ctx, "A-100")
	require.NoError(t, err)
	assert.True(t, order.IsDelivered)
	assert.Equal(t, "DELIVERED", order.StandardStatus)

	// Replacing the counted order leaves the order count unchanged.
	customer, err := persistence.NewGormCustomerRepository(f.db).FindByID(ctx, outcome.CustomerID)
	require.NoError(t, err)
	assert.Equal(t, 1, customer.TotalOrders)
	assert.True(t, customer.TotalSpent.Equal(decimal.NewFromInt(100)))

	transitions, err := persistence.NewGormTransitionRepository(f.db).FindByOrderID(ctx, "A-100")
	require.NoError(t, err)
	require.Len(t, transitions, 2)
	last := transitions[1]
	assert.Equal(t, status.CodeReadyToShip, last.PreviousCode)
	assert.InDelta(t, 48.0, last.DurationInPreviousStatusHours, 0.001)
	// READY_TO_SHIP -> DELIVERED skips SHIPPING; annotated, not rejected.
	assert.False(t, last.IsExpectedTransition)
}

func TestUpsertOrder_ChangedAmountsConverge(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.UpsertOrder(ctx, orderRecord())
	require.NoError(t, err)

	record := orderRecord()
	record.GrossAmount = decimal.NewFromInt(220)
	record.Items = record.Items[:1]
	outcome, err := f.service.UpsertOrder(ctx, record)
	require.NoError(t, err)

	customer, err := persistence.NewGormCustomerRepository(f.db).FindByID(ctx, outcome.CustomerID)
	require.NoError(t, err)
	assert.Equal(t, 1, customer.TotalOrders)
	assert.True(t, customer.TotalSpent.Equal(decimal.NewFromInt(200)))

	items, err := persistence.NewGormItemRepository(f.db).FindByOrderID(ctx, "A-100")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestUpsertOrder_SharedCustomerAcrossOrders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.service.UpsertOrder(ctx, orderRecord())
	require.NoError(t, err)

	second := orderRecord()
	second.OrderID = "A-101"
	second.GrossAmount = decimal.NewFromInt(70)
	second.ShippingFee = decimal.NewFromInt(10)
	outcome, err := f.service.UpsertOrder(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, first.CustomerID, outcome.CustomerID)

	customer, err := persistence.NewGormCustomerRepository(f.db).FindByID(ctx, outcome.CustomerID)
	require.NoError(t, err)
	assert.Equal(t, 2, customer.TotalOrders)
	assert.True(t, customer.TotalSpent.Equal(decimal.NewFromInt(160)))
	assert.True(t, customer.AverageOrderValue.Equal(decimal.NewFromInt(80)))
}

func TestUpsertOrder_ReassignedOrderMovesCustomerTotals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// A customer with one order of their own: net 50.
	own := orderRecord()
	own.OrderID = "B-200"
	own.RecipientPhone = "0999999999"
	own.GrossAmount = decimal.NewFromInt(60)
	own.ShippingFee = decimal.NewFromInt(10)
	ownOutcome, err := f.service.UpsertOrder(ctx, own)
	require.NoError(t, err)

	// A-100 first resolves to a different customer, net 100.
	first, err := f.service.UpsertOrder(ctx, orderRecord())
	require.NoError(t, err)
	require.NotEqual(t, ownOutcome.CustomerID, first.CustomerID)

	// The corrected re-sync carries the other customer's phone and net 10.
	corrected := orderRecord()
	corrected.RecipientPhone = "0999999999"
	corrected.GrossAmount = decimal.NewFromInt(30)
	corrected.ShippingFee = decimal.NewFromInt(20)
	outcome, err := f.service.UpsertOrder(ctx, corrected)
	require.NoError(t, err)
	assert.Equal(t, ownOutcome.CustomerID, outcome.CustomerID)

	customers := persistence.NewGormCustomerRepository(f.db)
	gained, err := customers.FindByID(ctx, ownOutcome.CustomerID)
	require.NoError(t, err)
	assert.Equal(t, 2, gained.TotalOrders)
	assert.True(t, gained.TotalSpent.Equal(decimal.NewFromInt(60)))
	assert.True(t, gained.AverageOrderValue.Equal(decimal.NewFromInt(30)))

	lost, err := customers.FindByID(ctx, first.CustomerID)
	require.NoError(t, err)
	assert.Equal(t, 0, lost.TotalOrders)
	assert.True(t, lost.TotalSpent.IsZero())

	order, err := persistence.NewGormOrderRepository(f.db).FindByID(ctx, "A-100")
	require.NoError(t, err)
	assert.Equal(t, outcome.CustomerID, order.CustomerID)
}

func TestUpsertOrder_LateBuyerIDReassignsOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// First sighting resolves by phone hash.
	first, err := f.service.UpsertOrder(ctx, orderRecord())
	require.NoError(t, err)

	// A later fetch carries the platform-native buyer id, which the
	// resolver prefers.
	enriched := orderRecord()
	enriched.BuyerUserID = "777"
	outcome, err := f.service.UpsertOrder(ctx, enriched)
	require.NoError(t, err)
	assert.Equal(t, "SHOPEE:777", outcome.CustomerID)
	require.NotEqual(t, first.CustomerID, outcome.CustomerID)

	customers := persistence.NewGormCustomerRepository(f.db)
	old, err := customers.FindByID(ctx, first.CustomerID)
	require.NoError(t, err)
	assert.Equal(t, 0, old.TotalOrders)
	assert.True(t, old.TotalSpent.IsZero())

	owner, err := customers.FindByID(ctx, outcome.CustomerID)
	require.NoError(t, err)
	assert.Equal(t, 1, owner.TotalOrders)
	assert.True(t, owner.TotalSpent.Equal(decimal.NewFromInt(100)))
}

func TestUpsertOrder_SyntheticIdentityNeverMerges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := orderRecord()
	first.BuyerUserID = ""
	first.RecipientPhone = ""
	firstOutcome, err := f.service.UpsertOrder(ctx, first)
	require.NoError(t, err)
	assert.True(t, identity.IsSynthetic(firstOutcome.CustomerID))

	second := orderRecord()
	second.OrderID = "A-102"
	second.BuyerUserID = ""
	second.RecipientPhone = ""
	secondOutcome, err := f.service.UpsertOrder(ctx, second)
	require.NoError(t, err)

	assert.NotEqual(t, firstOutcome.CustomerID, secondOutcome.CustomerID)
}

func TestUpsertOrder_UnknownStatusStillPersists(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	record := orderRecord()
	record.RawStatus = "SOMETHING_NEW"
	outcome, err := f.service.UpsertOrder(ctx, record)
	require.NoError(t, err)
	assert.Equal(t, status.CodeUnknown, outcome.StandardStatus)

	order, err := persistence.NewGormOrderRepository(f.db).FindByID(ctx, "A-100")
	require.NoError(t, err)
	assert.Equal(t, "UNKNOWN", order.StandardStatus)
	assert.Equal(t, "SOMETHING_NEW", order.RawStatus)
}

func TestUpsertOrder_Tier1FailureRollsBackEverything(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.db.Migrator().DropTable(&models.OrderItemModel{}))

	_, err := f.service.UpsertOrder(ctx, orderRecord())
	require.Error(t, err)

	_, err = persistence.NewGormOrderRepository(f.db).FindByID(ctx, "A-100")
	assert.ErrorIs(t, err, sync.ErrNotFound)

	var count int64
	f.db.Model(&models.CustomerModel{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestUpsertOrder_Tier2FailureDoesNotAffectCore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.db.Migrator().DropTable(&models.GeographyInfoModel{}))

	outcome, err := f.service.UpsertOrder(ctx, orderRecord())
	require.NoError(t, err)
	assert.Contains(t, outcome.EnrichmentErrors, "geography")

	order, err := persistence.NewGormOrderRepository(f.db).FindByID(ctx, "A-100")
	require.NoError(t, err)
	assert.Equal(t, "READY_TO_SHIP", order.StandardStatus)

	// The other enrichment steps still ran.
	var payCount int64
	f.db.Model(&models.PaymentInfoModel{}).Count(&payCount)
	assert.Equal(t, int64(1), payCount)
}

func TestUpsertOrder_InvalidRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.UpsertOrder(ctx, nil)
	assert.ErrorIs(t, err, ErrInvalidRecord)

	_, err = f.service.UpsertOrder(ctx, &sync.OrderRecord{Platform: sync.PlatformShopee})
	assert.ErrorIs(t, err, ErrInvalidRecord)

	_, err = f.service.UpsertOrder(ctx, &sync.OrderRecord{OrderID: "X", Platform: sync.Platform("EBAY")})
	assert.ErrorIs(t, err, ErrInvalidRecord)
}
