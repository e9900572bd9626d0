package marketplace

// lazadaEnvelope is the common response wrapper for Lazada API calls.
// Code "0" means success.
type lazadaEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// IsSuccess returns true when the API reported no error
func (e *lazadaEnvelope) IsSuccess() bool {
	return e.Code == "0" || e.Code == ""
}

// lazadaOrderListResponse is the payload of /orders/get
type lazadaOrderListResponse struct {
	lazadaEnvelope
	Data *struct {
		CountTotal int64         `json:"countTotal"`
		Count      int           `json:"count"`
		Orders     []lazadaOrder `json:"orders"`
	} `json:"data"`
}

// lazadaSellerResponse is the payload of /seller/get
type lazadaSellerResponse struct {
	lazadaEnvelope
	Data *struct {
		SellerID string `json:"seller_id"`
		Status   string `json:"status"`
	} `json:"data"`
}

// lazadaOrder is one order as returned by the Lazada orders API.
// Timestamps are ISO-8601 strings; amounts are decimal strings.
type lazadaOrder struct {
	OrderNumber       string       `json:"order_number"`
	Status            string       `json:"status"`
	CustomerID        string       `json:"customer_id"`
	Price             string       `json:"price"`
	ShippingFee       string       `json:"shipping_fee"`
	VoucherTotal      string       `json:"voucher"`
	PaymentMethod     string       `json:"payment_method"`
	CreatedAt         string       `json:"created_at"`
	UpdatedAt         string       `json:"updated_at"`
	AddressShipping   *lazadaAddr  `json:"address_shipping"`
	ShippingProvider  string       `json:"shipping_provider"`
	TrackingCode      string       `json:"tracking_code"`
	Items             []lazadaItem `json:"items"`
	GiftOption        bool         `json:"gift_option"`
	CustomerFirstName string       `json:"customer_first_name"`
	CustomerLastName  string       `json:"customer_last_name"`
}

// lazadaAddr is the shipping address block on a Lazada order
type lazadaAddr struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Address3  string `json:"address3"` // province
	Address4  string `json:"address4"` // district
	Address5  string `json:"address5"` // ward
}

// lazadaItem is one line item on a Lazada order
type lazadaItem struct {
	ProductID    int64  `json:"product_id"`
	SKU          string `json:"sku"`
	Name         string `json:"name"`
	Quantity     int    `json:"quantity"`
	ItemPrice    string `json:"item_price"`
	VoucherTotal string `json:"voucher_amount"`
}
