package marketplace

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ordersync/backend/internal/domain/sync"
)

const (
	lazadaPageSize   = 100
	lazadaTimeLayout = "2006-01-02T15:04:05-0700"
)

// LazadaAdapter implements the source adapter port for Lazada.
type LazadaAdapter struct {
	config *LazadaConfig
	client *apiClient

	// lastSyncUnix holds the upper bound of the last successful update
	// window, as epoch seconds. Zero means no sync has happened yet.
	lastSyncUnix atomic.Int64
}

// NewLazadaAdapter creates a new Lazada adapter with the given configuration
func NewLazadaAdapter(config *LazadaConfig) (*LazadaAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &LazadaAdapter{
		config: config,
		client: newAPIClient(config.Timeout, config.MaxRetries, config.RetryBaseDelay, config.UserAgent),
	}, nil
}

var _ sync.SourceAdapter = (*LazadaAdapter)(nil)

// Platform returns the platform this adapter pulls from
func (a *LazadaAdapter) Platform() sync.Platform {
	return sync.PlatformLazada
}

// FetchUpdated returns orders updated since the last successful fetch,
// paging through the full window. The window advances only on success.
func (a *LazadaAdapter) FetchUpdated(ctx context.Context) ([]sync.OrderRecord, error) {
	to := time.Now()
	from := to.Add(-a.config.Lookback)
	if last := a.lastSyncUnix.Load(); last > 0 {
		from = time.Unix(last, 0)
	}

	var records []sync.OrderRecord
	for pageNo := 1; ; pageNo++ {
		page, err := a.fetchWindow(ctx, "update_after", from, "update_before", to, (pageNo-1)*lazadaPageSize, lazadaPageSize)
		if err != nil {
			return nil, err
		}
		records = append(records, page.Records...)
		// An empty page cannot advance the window no matter what the
		// reported total claims.
		if !page.HasMore || len(page.Records) == 0 || pageNo >= maxFetchPages {
			break
		}
	}

	a.lastSyncUnix.Store(to.Unix())
	return records, nil
}

// FetchForDate returns one page of orders created on the given date
func (a *LazadaAdapter) FetchForDate(ctx context.Context, date time.Time, page, pageSize int) (*sync.PagedResult, error) {
	from := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	to := from.Add(24 * time.Hour)
	if page < 1 {
		page = 1
	}
	result, err := a.fetchWindow(ctx, "created_after", from, "created_before", to, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, err
	}
	result.NextPage = page + 1
	return result, nil
}

// TestConnection reports whether the Lazada API accepts our credentials
func (a *LazadaAdapter) TestConnection(ctx context.Context) bool {
	respBody, err := a.client.get(ctx, a.signedURL("/seller/get", url.Values{}), nil)
	if err != nil {
		return false
	}
	var resp lazadaSellerResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return false
	}
	return resp.IsSuccess()
}

func (a *LazadaAdapter) fetchWindow(ctx context.Context, fromKey string, from time.Time, toKey string, to time.Time, offset, limit int) (*sync.PagedResult, error) {
	params := url.Values{}
	params.Set(fromKey, from.Format(lazadaTimeLayout))
	params.Set(toKey, to.Format(lazadaTimeLayout))
	params.Set("offset", strconv.Itoa(offset))
	params.Set("limit", strconv.Itoa(limit))
	params.Set("sort_by", "updated_at")

	respBody, err := a.client.get(ctx, a.signedURL("/orders/get", params), nil)
	if err != nil {
		return nil, err
	}

	var resp lazadaOrderListResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: lazada: %v", sync.ErrSourceInvalidResponse, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: lazada: %s - %s", sync.ErrSourceRequestFailed, resp.Code, resp.Message)
	}
	if resp.Data == nil {
		return &sync.PagedResult{Records: []sync.OrderRecord{}}, nil
	}

	result := &sync.PagedResult{
		Records:    make([]sync.OrderRecord, 0, len(resp.Data.Orders)),
		TotalCount: resp.Data.CountTotal,
		HasMore:    int64(offset+resp.Data.Count) < resp.Data.CountTotal,
	}
	for i := range resp.Data.Orders {
		result.Records = append(result.Records, a.toRecord(&resp.Data.Orders[i]))
	}
	return result, nil
}

func (a *LazadaAdapter) signedURL(path string, params url.Values) string {
	params.Set("app_key", a.config.AppKey)
	params.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))
	params.Set("sign_method", "sha256")
	params.Set("sign", a.config.Sign(path, params))
	return a.config.BaseURL + path + "?" + params.Encode()
}

func (a *LazadaAdapter) toRecord(order *lazadaOrder) sync.OrderRecord {
	record := sync.OrderRecord{
		OrderID:        order.OrderNumber,
		Platform:       sync.PlatformLazada,
		RawStatus:      order.Status,
		BuyerUserID:    order.CustomerID,
		GrossAmount:    parseDecimal(order.Price),
		ShippingFee:    parseDecimal(order.ShippingFee),
		DiscountAmount: parseDecimal(order.VoucherTotal),
		CashOnDelivery: strings.EqualFold(order.PaymentMethod, "COD"),
		PaymentMethod:  order.PaymentMethod,
		Carrier:        order.ShippingProvider,
		TrackingNumber: order.TrackingCode,
		Channel:        sync.PlatformLazada.DisplayName(),
		CreatedAt:      parseLazadaTime(order.CreatedAt),
		UpdatedAt:      parseLazadaTime(order.UpdatedAt),
	}

	if addr := order.AddressShipping; addr != nil {
		record.RecipientName = strings.TrimSpace(addr.FirstName + " " + addr.LastName)
		record.RecipientPhone = addr.Phone
		record.Province = addr.Address3
		record.District = addr.Address4
		record.Ward = addr.Address5
	}
	if record.RecipientName == "" {
		record.RecipientName = strings.TrimSpace(order.CustomerFirstName + " " + order.CustomerLastName)
	}

	record.Items = make([]sync.OrderLine, 0, len(order.Items))
	for _, item := range order.Items {
		quantity := item.Quantity
		if quantity == 0 {
			quantity = 1
		}
		record.Items = append(record.Items, sync.OrderLine{
			SKU:               item.SKU,
			PlatformProductID: strconv.FormatInt(item.ProductID, 10),
			ProductName:       item.Name,
			Quantity:          quantity,
			UnitPrice:         parseDecimal(item.ItemPrice),
			Discount:          parseDecimal(item.VoucherTotal),
		})
	}

	return record
}

func parseLazadaTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{lazadaTimeLayout, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
