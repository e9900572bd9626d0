package marketplace

// tiktokEnvelope is the common response wrapper for TikTok Shop API calls.
// Code 0 means success.
type tiktokEnvelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// IsSuccess returns true when the API reported no error
func (e *tiktokEnvelope) IsSuccess() bool {
	return e.Code == 0
}

// tiktokOrderListResponse is the payload of /order/search
type tiktokOrderListResponse struct {
	tiktokEnvelope
	Data *struct {
		Total     int64         `json:"total"`
		More      bool          `json:"more"`
		OrderList []tiktokOrder `json:"order_list"`
	} `json:"data"`
}

// tiktokShopResponse is the payload of /shop/get_authorized_shop
type tiktokShopResponse struct {
	tiktokEnvelope
	Data *struct {
		ShopName string `json:"shop_name"`
	} `json:"data"`
}

// tiktokOrder is one order as returned by the TikTok Shop order API.
// Timestamps are epoch milliseconds; amounts are integer cents.
type tiktokOrder struct {
	OrderID          string       `json:"order_id"`
	OrderStatus      int          `json:"order_status"`
	BuyerUID         string       `json:"buyer_uid"`
	PaymentTotal     int64        `json:"payment_total"`
	ShippingFee      int64        `json:"shipping_fee"`
	DiscountTotal    int64        `json:"discount_total"`
	CashOnDelivery   bool         `json:"is_cod"`
	PaymentMethod    string       `json:"payment_method"`
	CreateTime       int64        `json:"create_time"`
	UpdateTime       int64        `json:"update_time"`
	RecipientAddress *tiktokAddr  `json:"recipient_address"`
	ShippingProvider string       `json:"shipping_provider"`
	TrackingNumber   string       `json:"tracking_number"`
	ItemList         []tiktokItem `json:"item_list"`
}

// tiktokAddr is the recipient address block on a TikTok Shop order
type tiktokAddr struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Province string `json:"province"`
	District string `json:"district"`
	Ward     string `json:"ward"`
}

// tiktokItem is one line item on a TikTok Shop order
type tiktokItem struct {
	ProductID  string `json:"product_id"`
	SellerSKU  string `json:"seller_sku"`
	SKUName    string `json:"sku_name"`
	Quantity   int    `json:"quantity"`
	SalePrice  int64  `json:"sale_price"`
	SKUDiscount int64  `json:"sku_platform_discount"`
}
