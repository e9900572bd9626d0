package marketplace

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ordersync/backend/internal/domain/sync"
)

const shopeePageSize = 100

// ShopeeAdapter implements the source adapter port for Shopee.
type ShopeeAdapter struct {
	config *ShopeeConfig
	client *apiClient

	// lastSyncUnix holds the upper bound of the last successful update
	// window, as epoch seconds. Zero means no sync has happened yet.
	lastSyncUnix atomic.Int64
}

// NewShopeeAdapter creates a new Shopee adapter with the given configuration
func NewShopeeAdapter(config *ShopeeConfig) (*ShopeeAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &ShopeeAdapter{
		config: config,
		client: newAPIClient(config.Timeout, config.MaxRetries, config.RetryBaseDelay, config.UserAgent),
	}, nil
}

var _ sync.SourceAdapter = (*ShopeeAdapter)(nil)

// Platform returns the platform this adapter pulls from
func (a *ShopeeAdapter) Platform() sync.Platform {
	return sync.PlatformShopee
}

// FetchUpdated returns orders updated since the last successful fetch,
// paging through the full window. The window advances only on success.
func (a *ShopeeAdapter) FetchUpdated(ctx context.Context) ([]sync.OrderRecord, error) {
	to := time.Now()
	from := to.Add(-a.config.Lookback)
	if last := a.lastSyncUnix.Load(); last > 0 {
		from = time.Unix(last, 0)
	}

	var records []sync.OrderRecord
	for page := 1; ; page++ {
		resp, err := a.fetchWindow(ctx, from, to, page, shopeePageSize)
		if err != nil {
			return nil, err
		}
		records = append(records, resp.Records...)
		// An empty page cannot advance the window no matter what the
		// more flag claims.
		if !resp.HasMore || len(resp.Records) == 0 || page >= maxFetchPages {
			break
		}
	}

	a.lastSyncUnix.Store(to.Unix())
	return records, nil
}

// FetchForDate returns one page of orders created on the given date
func (a *ShopeeAdapter) FetchForDate(ctx context.Context, date time.Time, page, pageSize int) (*sync.PagedResult, error) {
	from := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	to := from.Add(24 * time.Hour)
	return a.fetchWindow(ctx, from, to, page, pageSize)
}

// TestConnection reports whether the Shopee API accepts our credentials
func (a *ShopeeAdapter) TestConnection(ctx context.Context) bool {
	respBody, err := a.client.get(ctx, a.signedURL("/api/v2/shop/get_shop_info", nil), nil)
	if err != nil {
		return false
	}
	var resp shopeeShopInfoResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return false
	}
	return resp.IsSuccess()
}

func (a *ShopeeAdapter) fetchWindow(ctx context.Context, from, to time.Time, page, pageSize int) (*sync.PagedResult, error) {
	params := url.Values{}
	params.Set("time_range_field", "update_time")
	params.Set("time_from", strconv.FormatInt(from.Unix(), 10))
	params.Set("time_to", strconv.FormatInt(to.Unix(), 10))
	params.Set("page_no", strconv.Itoa(page))
	params.Set("page_size", strconv.Itoa(pageSize))

	respBody, err := a.client.get(ctx, a.signedURL("/api/v2/order/get_order_list", params), nil)
	if err != nil {
		return nil, err
	}

	var resp shopeeOrderListResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: shopee: %v", sync.ErrSourceInvalidResponse, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: shopee: %s - %s", sync.ErrSourceRequestFailed, resp.Error, resp.Message)
	}
	if resp.Response == nil {
		// No payload means no orders in the window.
		return &sync.PagedResult{Records: []sync.OrderRecord{}}, nil
	}

	result := &sync.PagedResult{
		Records:    make([]sync.OrderRecord, 0, len(resp.Response.OrderList)),
		TotalCount: resp.Response.TotalCount,
		HasMore:    resp.Response.More,
		NextPage:   page + 1,
	}
	for i := range resp.Response.OrderList {
		result.Records = append(result.Records, a.toRecord(&resp.Response.OrderList[i]))
	}
	return result, nil
}

func (a *ShopeeAdapter) signedURL(path string, params url.Values) string {
	timestamp := time.Now().Unix()
	if params == nil {
		params = url.Values{}
	}
	params.Set("shop_id", a.config.ShopID)
	params.Set("timestamp", strconv.FormatInt(timestamp, 10))
	params.Set("sign", a.config.Sign(path, timestamp))
	return a.config.BaseURL + path + "?" + params.Encode()
}

func (a *ShopeeAdapter) toRecord(order *shopeeOrder) sync.OrderRecord {
	record := sync.OrderRecord{
		OrderID:        order.OrderSN,
		Platform:       sync.PlatformShopee,
		RawStatus:      order.OrderStatus,
		GrossAmount:    parseDecimal(order.TotalAmount),
		ShippingFee:    parseDecimal(order.ShippingFee),
		DiscountAmount: parseDecimal(order.TotalDiscount),
		CashOnDelivery: order.COD,
		PaymentMethod:  order.PaymentMethod,
		Carrier:        order.ShippingCarrier,
		TrackingNumber: order.TrackingNumber,
		Channel:        sync.PlatformShopee.DisplayName(),
	}

	if order.BuyerUserID > 0 {
		record.BuyerUserID = strconv.FormatInt(order.BuyerUserID, 10)
	}
	if order.CreateTime > 0 {
		record.CreatedAt = time.Unix(order.CreateTime, 0)
	}
	if order.UpdateTime > 0 {
		record.UpdatedAt = time.Unix(order.UpdateTime, 0)
	}
	if addr := order.RecipientAddr; addr != nil {
		record.RecipientName = addr.Name
		record.RecipientPhone = addr.Phone
		record.Province = addr.State
		record.District = addr.District
		record.Ward = addr.Town
	}

	record.Items = make([]sync.OrderLine, 0, len(order.ItemList))
	for _, item := range order.ItemList {
		unitPrice := parseDecimal(item.DiscountedPrice)
		discount := decimal.Zero
		if original := parseDecimal(item.OriginalPrice); original.GreaterThan(unitPrice) {
			discount = original.Sub(unitPrice).Mul(decimal.NewFromInt(int64(item.Quantity)))
		}
		record.Items = append(record.Items, sync.OrderLine{
			SKU:               item.ItemSKU,
			PlatformProductID: strconv.FormatInt(item.ItemID, 10),
			ProductName:       item.ItemName,
			Quantity:          item.Quantity,
			UnitPrice:         unitPrice,
			Discount:          discount,
		})
	}

	return record
}

// parseDecimal parses a decimal string, treating empty or malformed values
// as zero.
func parseDecimal(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
