package status

import (
	"strings"

	"github.com/ordersync/backend/internal/domain/sync"
)

// ---------------------------------------------------------------------------
// Classifier
// ---------------------------------------------------------------------------

// Mapping is one (platform, raw code) -> standardized code entry.
type Mapping struct {
	Platform sync.Platform
	RawCode  string
	Code     Code
}

// Classifier translates platform-specific raw status codes into standardized
// descriptors. The mapping is data loaded at startup, not branching logic:
// adding a platform is a data change. The mapping is total: any raw code
// absent from the table classifies as UNKNOWN, never an error.
type Classifier struct {
	table map[sync.Platform]map[string]Code
}

// NewClassifier builds a classifier from mapping entries.
func NewClassifier(mappings []Mapping) *Classifier {
	table := make(map[sync.Platform]map[string]Code)
	for _, m := range mappings {
		byRaw, ok := table[m.Platform]
		if !ok {
			byRaw = make(map[string]Code)
			table[m.Platform] = byRaw
		}
		byRaw[normalizeRaw(m.RawCode)] = m.Code
	}
	return &Classifier{table: table}
}

// Classify returns the full descriptor for a platform's raw status code.
// It never fails; unmapped codes yield the UNKNOWN descriptor.
func (c *Classifier) Classify(platform sync.Platform, rawCode string) Descriptor {
	return DescriptorOf(c.Resolve(platform, rawCode))
}

// Resolve returns just the standardized code for a platform's raw code.
func (c *Classifier) Resolve(platform sync.Platform, rawCode string) Code {
	byRaw, ok := c.table[platform]
	if !ok {
		return CodeUnknown
	}
	code, ok := byRaw[normalizeRaw(rawCode)]
	if !ok {
		return CodeUnknown
	}
	return code
}

// Knows reports whether the platform declares the given raw code.
func (c *Classifier) Knows(platform sync.Platform, rawCode string) bool {
	byRaw, ok := c.table[platform]
	if !ok {
		return false
	}
	_, ok = byRaw[normalizeRaw(rawCode)]
	return ok
}

func normalizeRaw(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// ---------------------------------------------------------------------------
// Default mapping tables
// ---------------------------------------------------------------------------

// DefaultMappings returns the built-in status tables for the three supported
// marketplaces. Raw codes are matched case-insensitively.
func DefaultMappings() []Mapping {
	return []Mapping{
		// Shopee
		{sync.PlatformShopee, "UNPAID", CodePending},
		{sync.PlatformShopee, "PROCESSED", CodeProcessing},
		{sync.PlatformShopee, "TO_CONFIRM", CodeConfirmed},
		{sync.PlatformShopee, "TO_SHIP", CodeReadyToShip},
		{sync.PlatformShopee, "SHIPPED", CodeShipping},
		{sync.PlatformShopee, "TO_CONFIRM_RECEIVE", CodeShipping},
		{sync.PlatformShopee, "COMPLETED", CodeDelivered},
		{sync.PlatformShopee, "IN_CANCEL", CodeCancelled},
		{sync.PlatformShopee, "CANCELLED", CodeCancelled},
		{sync.PlatformShopee, "TO_RETURN", CodeReturned},

		// Lazada
		{sync.PlatformLazada, "UNPAID", CodePending},
		{sync.PlatformLazada, "PENDING", CodeProcessing},
		{sync.PlatformLazada, "PACKED", CodeConfirmed},
		{sync.PlatformLazada, "READY_TO_SHIP", CodeReadyToShip},
		{sync.PlatformLazada, "SHIPPED", CodeShipping},
		{sync.PlatformLazada, "DELIVERED", CodeDelivered},
		{sync.PlatformLazada, "CANCELED", CodeCancelled},
		{sync.PlatformLazada, "RETURNED", CodeReturned},
		{sync.PlatformLazada, "FAILED", CodeCancelled},

		// TikTok Shop (numeric status codes)
		{sync.PlatformTikTok, "100", CodePending},
		{sync.PlatformTikTok, "111", CodeConfirmed},
		{sync.PlatformTikTok, "112", CodeReadyToShip},
		{sync.PlatformTikTok, "114", CodeReadyToShip},
		{sync.PlatformTikTok, "121", CodeShipping},
		{sync.PlatformTikTok, "122", CodeShipping},
		{sync.PlatformTikTok, "130", CodeDelivered},
		{sync.PlatformTikTok, "140", CodeCancelled},
	}
}

// NewDefaultClassifier builds a classifier preloaded with the built-in
// mapping tables.
func NewDefaultClassifier() *Classifier {
	return NewClassifier(DefaultMappings())
}
