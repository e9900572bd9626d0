package marketplace

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// ShopeeConfig holds configuration for the Shopee Open Platform API
type ShopeeConfig struct {
	// PartnerKey is the signing secret issued by the Shopee open platform
	PartnerKey string
	// ShopID is the shop identifier on Shopee
	ShopID string
	// BaseURL is the API endpoint
	BaseURL string
	// Timeout is the HTTP request timeout
	Timeout time.Duration
	// UserAgent is sent on every request
	UserAgent string
	// MaxRetries is the number of attempts per API call
	MaxRetries int
	// RetryBaseDelay is the base delay for exponential backoff
	RetryBaseDelay time.Duration
	// Lookback bounds the first update window when no prior sync exists
	Lookback time.Duration
}

// ShopeeProductionAPIURL is the production API endpoint
const ShopeeProductionAPIURL = "https://partner.shopeemobile.com"

// Errors for Shopee configuration
var (
	ErrShopeeConfigMissingPartnerKey = errors.New("shopee: partner key is required")
	ErrShopeeConfigMissingShopID     = errors.New("shopee: shop ID is required")
)

// Validate validates the Shopee configuration and fills defaults
func (c *ShopeeConfig) Validate() error {
	if c.PartnerKey == "" {
		return ErrShopeeConfigMissingPartnerKey
	}
	if c.ShopID == "" {
		return ErrShopeeConfigMissingShopID
	}
	if c.BaseURL == "" {
		c.BaseURL = ShopeeProductionAPIURL
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.RetryBaseDelay <= 0 {
		c.RetryBaseDelay = time.Second
	}
	if c.Lookback <= 0 {
		c.Lookback = 24 * time.Hour
	}
	return nil
}

// Sign generates the request signature: HMAC-SHA256 over
// path + shop_id + timestamp, keyed by the partner key.
func (c *ShopeeConfig) Sign(path string, timestamp int64) string {
	h := hmac.New(sha256.New, []byte(c.PartnerKey))
	h.Write([]byte(fmt.Sprintf("%s%s%d", path, c.ShopID, timestamp)))
	return hex.EncodeToString(h.Sum(nil))
}
