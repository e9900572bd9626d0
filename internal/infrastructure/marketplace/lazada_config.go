package marketplace

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/url"
	"sort"
	"strings"
	"time"
)

// LazadaConfig holds configuration for the Lazada Open Platform API
type LazadaConfig struct {
	// AppKey identifies the application on the Lazada open platform
	AppKey string
	// AppSecret is the signing secret
	AppSecret string
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

// LazadaProductionAPIURL is the production API endpoint
const LazadaProductionAPIURL = "https://api.lazada.com/rest"

// Errors for Lazada configuration
var (
	ErrLazadaConfigMissingAppKey    = errors.New("lazada: app key is required")
	ErrLazadaConfigMissingAppSecret = errors.New("lazada: app secret is required")
)

// Validate validates the Lazada configuration and fills defaults
func (c *LazadaConfig) Validate() error {
	if c.AppKey == "" {
		return ErrLazadaConfigMissingAppKey
	}
	if c.AppSecret == "" {
		return ErrLazadaConfigMissingAppSecret
	}
	if c.BaseURL == "" {
		c.BaseURL = LazadaProductionAPIURL
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

// Sign generates the request signature: HMAC-SHA256 over the API path
// followed by the sorted, concatenated query parameters.
func (c *LazadaConfig) Sign(path string, params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == "sign" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var builder strings.Builder
	builder.WriteString(path)
	for _, k := range keys {
		builder.WriteString(k)
		builder.WriteString(params.Get(k))
	}

	h := hmac.New(sha256.New, []byte(c.AppSecret))
	h.Write([]byte(builder.String()))
	return strings.ToUpper(hex.EncodeToString(h.Sum(nil)))
}
