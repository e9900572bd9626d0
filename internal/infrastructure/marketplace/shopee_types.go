package marketplace

// shopeeEnvelope is the common response wrapper for Shopee API calls
type shopeeEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// IsSuccess returns true when the API reported no error
func (e *shopeeEnvelope) IsSuccess() bool {
	return e.Error == ""
}

// shopeeOrderListResponse is the payload of /api/v2/order/get_order_list
type shopeeOrderListResponse struct {
	shopeeEnvelope
	Response *struct {
		TotalCount int64         `json:"total_count"`
		More       bool          `json:"more"`
		OrderList  []shopeeOrder `json:"order_list"`
	} `json:"response"`
}

// shopeeShopInfoResponse is the payload of /api/v2/shop/get_shop_info
type shopeeShopInfoResponse struct {
	shopeeEnvelope
	Response *struct {
		ShopName string `json:"shop_name"`
		Status   string `json:"status"`
	} `json:"response"`
}

// shopeeOrder is one order as returned by the Shopee order list API.
// Timestamps are epoch seconds; amounts are decimal strings.
type shopeeOrder struct {
	OrderSN         string         `json:"order_sn"`
	OrderStatus     string         `json:"order_status"`
	BuyerUserID     int64          `json:"buyer_user_id"`
	TotalAmount     string         `json:"total_amount"`
	ShippingFee     string         `json:"actual_shipping_fee"`
	TotalDiscount   string         `json:"total_discount"`
	COD             bool           `json:"cod"`
	PaymentMethod   string         `json:"payment_method"`
	ShippingCarrier string         `json:"shipping_carrier"`
	TrackingNumber  string         `json:"tracking_number"`
	CreateTime      int64          `json:"create_time"`
	UpdateTime      int64          `json:"update_time"`
	RecipientAddr   *shopeeAddress `json:"recipient_address"`
	ItemList        []shopeeItem   `json:"item_list"`
}

// shopeeAddress is the recipient address block on a Shopee order
type shopeeAddress struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	State    string `json:"state"`
	City     string `json:"city"`
	District string `json:"district"`
	Town     string `json:"town"`
}

// shopeeItem is one line item on a Shopee order
type shopeeItem struct {
	ItemID          int64  `json:"item_id"`
	ItemSKU         string `json:"item_sku"`
	ItemName        string `json:"item_name"`
	Quantity        int    `json:"model_quantity_purchased"`
	DiscountedPrice string `json:"model_discounted_price"`
	OriginalPrice   string `json:"model_original_price"`
}
