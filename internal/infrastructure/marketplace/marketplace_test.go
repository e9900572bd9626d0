package marketplace

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordersync/backend/internal/domain/sync"
)

func newShopeeAdapter(t *testing.T, baseURL string) *ShopeeAdapter {
	t.Helper()
	adapter, err := NewShopeeAdapter(&ShopeeConfig{
		PartnerKey:     "test-key",
		ShopID:         "12345",
		BaseURL:        baseURL,
		Timeout:        2 * time.Second,
		MaxRetries:     3,
		RetryBaseDelay: time.Millisecond,
	})
	require.NoError(t, err)
	return adapter
}

func TestShopeeConfigValidate(t *testing.T) {
	err := (&ShopeeConfig{ShopID: "1"}).Validate()
	assert.ErrorIs(t, err, ErrShopeeConfigMissingPartnerKey)

	err = (&ShopeeConfig{PartnerKey: "k"}).Validate()
	assert.ErrorIs(t, err, ErrShopeeConfigMissingShopID)

	cfg := &ShopeeConfig{PartnerKey: "k", ShopID: "1"}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ShopeeProductionAPIURL, cfg.BaseURL)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 24*time.Hour, cfg.Lookback)
}

func TestShopeeAdapter_FetchForDate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/order/get_order_list", r.URL.Path)
		assert.Equal(t, "12345", r.URL.Query().Get("shop_id"))
		assert.NotEmpty(t, r.URL.Query().Get("sign"))
		assert.Equal(t, "1", r.URL.Query().Get("page_no"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"error": "",
			"response": {
				"total_count": 1,
				"more": false,
				"order_list": [{
					"order_sn": "A-100",
					"order_status": "TO_SHIP",
					"buyer_user_id": 777,
					"total_amount": "120.00",
					"actual_shipping_fee": "20.00",
					"total_discount": "5.00",
					"cod": true,
					"payment_method": "COD",
					"shipping_carrier": "SPX",
					"tracking_number": "TRK1",
					"create_time": 1767225600,
					"update_time": 1767312000,
					"recipient_address": {
						"name": "Nguyen Van A",
						"phone": "090 123-4567",
						"state": "Ha Noi",
						"district": "Dong Da",
						"town": "O Cho Dua"
					},
					"item_list": [{
						"item_id": 42,
						"item_sku": "SKU-1",
						"item_name": "Widget",
						"model_quantity_purchased": 2,
						"model_discounted_price": "50.00",
						"model_original_price": "55.00"
					}]
				}]
			}
		}`))
	}))
	defer server.Close()

	adapter := newShopeeAdapter(t, server.URL)
	result, err := adapter.FetchForDate(context.Background(), time.Now(), 1, 50)
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.False(t, result.HasMore)

	record := result.Records[0]
	assert.Equal(t, "A-100", record.OrderID)
	assert.Equal(t, sync.PlatformShopee, record.Platform)
	assert.Equal(t, "TO_SHIP", record.RawStatus)
	assert.Equal(t, "777", record.BuyerUserID)
	assert.True(t, record.GrossAmount.Equal(decimal.NewFromInt(120)))
	assert.True(t, record.ShippingFee.Equal(decimal.NewFromInt(20)))
	assert.True(t, record.NetRevenue().Equal(decimal.NewFromInt(100)))
	assert.True(t, record.CashOnDelivery)
	assert.Equal(t, "Ha Noi", record.Province)
	assert.Equal(t, "090 123-4567", record.RecipientPhone)
	assert.Equal(t, time.Unix(1767312000, 0).Unix(), record.UpdatedAt.Unix())

	require.Len(t, record.Items, 1)
	item := record.Items[0]
	assert.Equal(t, "SKU-1", item.SKU)
	assert.Equal(t, "42", item.PlatformProductID)
	assert.Equal(t, 2, item.Quantity)
	assert.True(t, item.UnitPrice.Equal(decimal.NewFromInt(50)))
	assert.True(t, item.Discount.Equal(decimal.NewFromInt(10)))
}

func TestShopeeAdapter_EmptyWindowReturnsEmptySlice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": "", "response": {"total_count": 0, "more": false, "order_list": []}}`))
	}))
	defer server.Close()

	adapter := newShopeeAdapter(t, server.URL)
	records, err := adapter.FetchUpdated(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestShopeeAdapter_StopsPagingOnEmptyPage(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		// claims another page but never delivers one
		w.Write([]byte(`{"error": "", "response": {"total_count": 500, "more": true, "order_list": []}}`))
	}))
	defer server.Close()

	adapter := newShopeeAdapter(t, server.URL)
	records, err := adapter.FetchUpdated(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, int32(1), calls.Load())
}

func TestLazadaAdapter_StopsPagingOnEmptyPage(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		// countTotal promises more than the source ever returns
		w.Write([]byte(`{"code": "0", "data": {"countTotal": 500, "count": 0, "orders": []}}`))
	}))
	defer server.Close()

	adapter, err := NewLazadaAdapter(&LazadaConfig{
		AppKey: "k", AppSecret: "s", BaseURL: server.URL,
		MaxRetries: 1, RetryBaseDelay: time.Millisecond,
	})
	require.NoError(t, err)

	records, err := adapter.FetchUpdated(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, int32(1), calls.Load())
}

func TestTikTokAdapter_StopsPagingOnEmptyPage(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"code": 0, "data": {"total": 500, "more": true, "order_list": []}}`))
	}))
	defer server.Close()

	adapter, err := NewTikTokAdapter(&TikTokConfig{
		AppKey: "k", AppSecret: "s", AccessToken: "t", ShopID: "shop-1",
		BaseURL: server.URL, MaxRetries: 1, RetryBaseDelay: time.Millisecond,
	})
	require.NoError(t, err)

	records, err := adapter.FetchUpdated(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, int32(1), calls.Load())
}

func TestShopeeAdapter_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"error": "", "response": {"total_count": 0, "more": false, "order_list": []}}`))
	}))
	defer server.Close()

	adapter := newShopeeAdapter(t, server.URL)
	_, err := adapter.FetchForDate(context.Background(), time.Now(), 1, 50)
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestShopeeAdapter_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	adapter := newShopeeAdapter(t, server.URL)
	_, err := adapter.FetchForDate(context.Background(), time.Now(), 1, 50)
	assert.ErrorIs(t, err, sync.ErrSourceRequestFailed)
	assert.Equal(t, int32(1), calls.Load())
}

func TestShopeeAdapter_AuthFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	adapter := newShopeeAdapter(t, server.URL)
	_, err := adapter.FetchForDate(context.Background(), time.Now(), 1, 50)
	assert.ErrorIs(t, err, sync.ErrSourceAuthFailed)
}

func TestShopeeAdapter_TestConnection(t *testing.T) {
	t.Run("reachable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v2/shop/get_shop_info", r.URL.Path)
			w.Write([]byte(`{"error": "", "response": {"shop_name": "test", "status": "NORMAL"}}`))
		}))
		defer server.Close()

		adapter := newShopeeAdapter(t, server.URL)
		assert.True(t, adapter.TestConnection(context.Background()))
	})

	t.Run("api error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"error": "error_auth", "message": "invalid token"}`))
		}))
		defer server.Close()

		adapter := newShopeeAdapter(t, server.URL)
		assert.False(t, adapter.TestConnection(context.Background()))
	})

	t.Run("unreachable", func(t *testing.T) {
		adapter := newShopeeAdapter(t, "http://127.0.0.1:1")
		adapter.client.retries = 1
		assert.False(t, adapter.TestConnection(context.Background()))
	})
}

func TestLazadaAdapter_FetchForDate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders/get", r.URL.Path)
		assert.Equal(t, "app-key", r.URL.Query().Get("app_key"))
		assert.NotEmpty(t, r.URL.Query().Get("sign"))

		w.Write([]byte(`{
			"code": "0",
			"data": {
				"countTotal": 120,
				"count": 1,
				"orders": [{
					"order_number": "L-200",
					"status": "ready_to_ship",
					"customer_id": "laz-9",
					"price": "340.50",
					"shipping_fee": "15.50",
					"voucher": "10.00",
					"payment_method": "COD",
					"created_at": "2026-03-01T10:00:00+0700",
					"updated_at": "2026-03-02T08:30:00+0700",
					"shipping_provider": "LEX",
					"tracking_code": "LZTRK",
					"address_shipping": {
						"first_name": "Tran",
						"last_name": "B",
						"phone": "0912345678",
						"address3": "HCMC",
						"address4": "District 1",
						"address5": "Ben Nghe"
					},
					"items": [{
						"product_id": 900,
						"sku": "SKU-L1",
						"name": "Gadget",
						"quantity": 3,
						"item_price": "110.00",
						"voucher_amount": "5.00"
					}]
				}]
			}
		}`))
	}))
	defer server.Close()

	adapter, err := NewLazadaAdapter(&LazadaConfig{
		AppKey:         "app-key",
		AppSecret:      "secret",
		BaseURL:        server.URL,
		Timeout:        2 * time.Second,
		MaxRetries:     1,
		RetryBaseDelay: time.Millisecond,
	})
	require.NoError(t, err)

	result, err := adapter.FetchForDate(context.Background(), time.Now(), 1, 100)
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, int64(120), result.TotalCount)
	assert.True(t, result.HasMore)

	record := result.Records[0]
	assert.Equal(t, "L-200", record.OrderID)
	assert.Equal(t, sync.PlatformLazada, record.Platform)
	assert.Equal(t, "ready_to_ship", record.RawStatus)
	assert.Equal(t, "laz-9", record.BuyerUserID)
	assert.Equal(t, "Tran B", record.RecipientName)
	assert.Equal(t, "HCMC", record.Province)
	assert.True(t, record.GrossAmount.Equal(decimal.NewFromFloat(340.50)))
	assert.True(t, record.CashOnDelivery)
	assert.Equal(t, 2026, record.CreatedAt.Year())
	require.Len(t, record.Items, 1)
	assert.Equal(t, "900", record.Items[0].PlatformProductID)
	assert.Equal(t, 3, record.Items[0].Quantity)
}

func TestLazadaAdapter_APIErrorSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code": "500", "message": "internal error"}`))
	}))
	defer server.Close()

	adapter, err := NewLazadaAdapter(&LazadaConfig{
		AppKey: "k", AppSecret: "s", BaseURL: server.URL,
		MaxRetries: 1, RetryBaseDelay: time.Millisecond,
	})
	require.NoError(t, err)

	_, err = adapter.FetchForDate(context.Background(), time.Now(), 1, 50)
	assert.ErrorIs(t, err, sync.ErrSourceRequestFailed)
}

func TestTikTokAdapter_FetchForDate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/orders/search", r.URL.Path)
		assert.Equal(t, "tt-key", r.URL.Query().Get("app_key"))
		assert.NotEmpty(t, r.URL.Query().Get("sign"))
		assert.Equal(t, "tok", r.Header.Get("x-tts-access-token"))

		w.Write([]byte(`{
			"code": 0,
			"data": {
				"total": 1,
				"more": false,
				"order_list": [{
					"order_id": "T-300",
					"order_status": 112,
					"buyer_uid": "tt-buyer",
					"payment_total": 25000,
					"shipping_fee": 3000,
					"discount_total": 1000,
					"is_cod": false,
					"payment_method": "WALLET",
					"create_time": 1767225600000,
					"update_time": 1767229200000,
					"recipient_address": {
						"name": "Le C",
						"phone": "+84 90 999 8877",
						"province": "Da Nang",
						"district": "Hai Chau",
						"ward": "Thach Thang"
					},
					"item_list": [{
						"product_id": "p-55",
						"seller_sku": "SKU-T1",
						"sku_name": "Gizmo",
						"quantity": 1,
						"sale_price": 22000,
						"sku_platform_discount": 1000
					}]
				}]
			}
		}`))
	}))
	defer server.Close()

	adapter, err := NewTikTokAdapter(&TikTokConfig{
		AppKey:         "tt-key",
		AppSecret:      "tt-secret",
		AccessToken:    "tok",
		ShopID:         "shop-1",
		BaseURL:        server.URL,
		Timeout:        2 * time.Second,
		MaxRetries:     1,
		RetryBaseDelay: time.Millisecond,
	})
	require.NoError(t, err)

	result, err := adapter.FetchForDate(context.Background(), time.Now(), 1, 50)
	require.NoError(t, err)
	require.Len(t, result.Records, 1)

	record := result.Records[0]
	assert.Equal(t, "T-300", record.OrderID)
	assert.Equal(t, sync.PlatformTikTok, record.Platform)
	assert.Equal(t, "112", record.RawStatus)
	assert.True(t, record.GrossAmount.Equal(decimal.NewFromInt(250)))
	assert.True(t, record.ShippingFee.Equal(decimal.NewFromInt(30)))
	assert.True(t, record.DiscountAmount.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, time.UnixMilli(1767225600000).Unix(), record.CreatedAt.Unix())
	assert.Equal(t, "Da Nang", record.Province)
	require.Len(t, record.Items, 1)
	assert.True(t, record.Items[0].UnitPrice.Equal(decimal.NewFromInt(220)))
}

func TestTikTokConfigValidate(t *testing.T) {
	err := (&TikTokConfig{AppSecret: "s", AccessToken: "t"}).Validate()
	assert.ErrorIs(t, err, ErrTikTokConfigMissingAppKey)

	err = (&TikTokConfig{AppKey: "k", AccessToken: "t"}).Validate()
	assert.ErrorIs(t, err, ErrTikTokConfigMissingAppSecret)

	err = (&TikTokConfig{AppKey: "k", AppSecret: "s"}).Validate()
	assert.ErrorIs(t, err, ErrTikTokConfigMissingAccessToken)
}

func TestAPIClientBackoff(t *testing.T) {
	c := newAPIClient(time.Second, 5, 100*time.Millisecond, "")
	assert.Equal(t, 100*time.Millisecond, c.backoff(1))
	assert.Equal(t, 200*time.Millisecond, c.backoff(2))
	assert.Equal(t, 400*time.Millisecond, c.backoff(3))

	long := newAPIClient(time.Second, 20, 10*time.Second, "")
	assert.Equal(t, maxBackoffDelay, long.backoff(10))
}

func TestParseDecimal(t *testing.T) {
	assert.True(t, parseDecimal("").IsZero())
	assert.True(t, parseDecimal("garbage").IsZero())
	assert.True(t, parseDecimal("12.34").Equal(decimal.NewFromFloat(12.34)))
}
