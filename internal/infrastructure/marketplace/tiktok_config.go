package marketplace

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"
)

// TikTokConfig holds configuration for the TikTok Shop Open API
type TikTokConfig struct {
	// AppKey identifies the application on the TikTok Shop open platform
	AppKey string
	// AppSecret is the signing secret
	AppSecret string
	// AccessToken authorizes API calls for the shop
	AccessToken string
	// ShopID is the shop identifier on TikTok Shop
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

// TikTokProductionAPIURL is the production API endpoint
const TikTokProductionAPIURL = "https://open-api.tiktokglobalshop.com"

// Errors for TikTok Shop configuration
var (
	ErrTikTokConfigMissingAppKey      = errors.New("tiktok: app key is required")
	ErrTikTokConfigMissingAppSecret   = errors.New("tiktok: app secret is required")
	ErrTikTokConfigMissingAccessToken = errors.New("tiktok: access token is required")
)

// Validate validates the TikTok Shop configuration and fills defaults
func (c *TikTokConfig) Validate() error {
	if c.AppKey == "" {
		return ErrTikTokConfigMissingAppKey
	}
	if c.AppSecret == "" {
		return ErrTikTokConfigMissingAppSecret
	}
	if c.AccessToken == "" {
		return ErrTikTokConfigMissingAccessToken
	}
	if c.BaseURL == "" {
		c.BaseURL = TikTokProductionAPIURL
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
// app_secret + path + body + timestamp + app_secret.
func (c *TikTokConfig) Sign(path, body, timestamp string) string {
	var builder strings.Builder
	builder.WriteString(c.AppSecret)
	builder.WriteString(path)
	builder.WriteString(body)
	builder.WriteString(timestamp)
	builder.WriteString(c.AppSecret)

	h := hmac.New(sha256.New, []byte(c.AppSecret))
	h.Write([]byte(builder.String()))
	return hex.EncodeToString(h.Sum(nil))
}
