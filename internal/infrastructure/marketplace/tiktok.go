package marketplace

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ordersync/backend/internal/domain/sync"
)

const (
	tiktokPageSize = 100
	// centsPerUnit converts TikTok Shop integer-cent amounts to currency units
	centsPerUnit = 100
)

// TikTokAdapter implements the source adapter port for TikTok Shop.
type TikTokAdapter struct {
	config *TikTokConfig
	client *apiClient

	// lastSyncUnix holds the upper bound of the last successful update
	// window, as epoch seconds. Zero means no sync has happened yet.
	lastSyncUnix atomic.Int64
}

// NewTikTokAdapter creates a new TikTok Shop adapter with the given configuration
func NewTikTokAdapter(config *TikTokConfig) (*TikTokAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &TikTokAdapter{
		config: config,
		client: newAPIClient(config.Timeout, config.MaxRetries, config.RetryBaseDelay, config.UserAgent),
	}, nil
}

var _ sync.SourceAdapter = (*TikTokAdapter)(nil)

// Platform returns the platform this adapter pulls from
func (a *TikTokAdapter) Platform() sync.Platform {
	return sync.PlatformTikTok
}

// FetchUpdated returns orders updated since the last successful fetch,
// paging through the full window. The window advances only on success.
func (a *TikTokAdapter) FetchUpdated(ctx context.Context) ([]sync.OrderRecord, error) {
	to := time.Now()
	from := to.Add(-a.config.Lookback)
	if last := a.lastSyncUnix.Load(); last > 0 {
		from = time.Unix(last, 0)
	}

	var records []sync.OrderRecord
	for page := 1; ; page++ {
		result, err := a.search(ctx, map[string]any{
			"update_time_from": from.UnixMilli(),
			"update_time_to":   to.UnixMilli(),
			"page_number":      page,
			"page_size":        tiktokPageSize,
		}, page)
		if err != nil {
			return nil, err
		}
		records = append(records, result.Records...)
		// An empty page cannot advance the window no matter what the
		// more flag claims.
		if !result.HasMore || len(result.Records) == 0 || page >= maxFetchPages {
			break
		}
	}

	a.lastSyncUnix.Store(to.Unix())
	return records, nil
}

// FetchForDate returns one page of orders created on the given date
func (a *TikTokAdapter) FetchForDate(ctx context.Context, date time.Time, page, pageSize int) (*sync.PagedResult, error) {
	from := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	to := from.Add(24 * time.Hour)
	return a.search(ctx, map[string]any{
		"create_time_from": from.UnixMilli(),
		"create_time_to":   to.UnixMilli(),
		"page_number":      page,
		"page_size":        pageSize,
	}, page)
}

// TestConnection reports whether the TikTok Shop API accepts our credentials
func (a *TikTokAdapter) TestConnection(ctx context.Context) bool {
	respBody, err := a.post(ctx, "/api/shop/get_authorized_shop", map[string]any{})
	if err != nil {
		return false
	}
	var resp tiktokShopResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return false
	}
	return resp.IsSuccess()
}

func (a *TikTokAdapter) search(ctx context.Context, params map[string]any, page int) (*sync.PagedResult, error) {
	respBody, err := a.post(ctx, "/api/orders/search", params)
	if err != nil {
		return nil, err
	}

	var resp tiktokOrderListResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: tiktok: %v", sync.ErrSourceInvalidResponse, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: tiktok: %d - %s", sync.ErrSourceRequestFailed, resp.Code, resp.Message)
	}
	if resp.Data == nil {
		return &sync.PagedResult{Records: []sync.OrderRecord{}}, nil
	}

	result := &sync.PagedResult{
		Records:    make([]sync.OrderRecord, 0, len(resp.Data.OrderList)),
		TotalCount: resp.Data.Total,
		HasMore:    resp.Data.More,
		NextPage:   page + 1,
	}
	for i := range resp.Data.OrderList {
		result.Records = append(result.Records, a.toRecord(&resp.Data.OrderList[i]))
	}
	return result, nil
}

func (a *TikTokAdapter) post(ctx context.Context, path string, params map[string]any) ([]byte, error) {
	body, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("%w: tiktok: %v", sync.ErrSourceRequestFailed, err)
	}

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	header := http.Header{}
	header.Set("x-tts-access-token", a.config.AccessToken)

	url := fmt.Sprintf("%s%s?app_key=%s&shop_id=%s&timestamp=%s&sign=%s",
		a.config.BaseURL, path, a.config.AppKey, a.config.ShopID,
		timestamp, a.config.Sign(path, string(body), timestamp))

	return a.client.postJSON(ctx, url, header, body)
}

func (a *TikTokAdapter) toRecord(order *tiktokOrder) sync.OrderRecord {
	record := sync.OrderRecord{
		OrderID:        order.OrderID,
		Platform:       sync.PlatformTikTok,
		RawStatus:      strconv.Itoa(order.OrderStatus),
		BuyerUserID:    order.BuyerUID,
		GrossAmount:    centsToDecimal(order.PaymentTotal),
		ShippingFee:    centsToDecimal(order.ShippingFee),
		DiscountAmount: centsToDecimal(order.DiscountTotal),
		CashOnDelivery: order.CashOnDelivery,
		PaymentMethod:  order.PaymentMethod,
		Carrier:        order.ShippingProvider,
		TrackingNumber: order.TrackingNumber,
		Channel:        sync.PlatformTikTok.DisplayName(),
	}

	if order.CreateTime > 0 {
		record.CreatedAt = time.UnixMilli(order.CreateTime)
	}
	if order.UpdateTime > 0 {
		record.UpdatedAt = time.UnixMilli(order.UpdateTime)
	}
	if addr := order.RecipientAddress; addr != nil {
		record.RecipientName = addr.Name
		record.RecipientPhone = addr.Phone
		record.Province = addr.Province
		record.District = addr.District
		record.Ward = addr.Ward
	}

	record.Items = make([]sync.OrderLine, 0, len(order.ItemList))
	for _, item := range order.ItemList {
		record.Items = append(record.Items, sync.OrderLine{
			SKU:               item.SellerSKU,
			PlatformProductID: item.ProductID,
			ProductName:       item.SKUName,
			Quantity:          item.Quantity,
			UnitPrice:         centsToDecimal(item.SalePrice),
			Discount:          centsToDecimal(item.SKUDiscount),
		})
	}

	return record
}

func centsToDecimal(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(centsPerUnit))
}
