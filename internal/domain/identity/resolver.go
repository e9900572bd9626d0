// Package identity resolves marketplace order records to stable customer
// identity keys. Resolution is a pure function over the record and a
// configured hash: it never fails and never touches storage.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/ordersync/backend/internal/domain/sync"
)

// syntheticMarker tags last-resort ids derived from the order id. Callers
// must treat synthetic ids as non-mergeable: the same unidentified customer
// appearing twice yields two rows by design.
const syntheticMarker = ":anon:"

// HashFunc hashes a salted identity string into a stable key.
type HashFunc func(s string) string

// Resolver derives customer identity keys from normalized order records.
type Resolver struct {
	hash HashFunc
}

// NewResolver creates a resolver with the given hash function. A nil hash
// falls back to hex-encoded SHA-256.
func NewResolver(hash HashFunc) *Resolver {
	if hash == nil {
		hash = defaultHash
	}
	return &Resolver{hash: hash}
}

// ResolveCustomerID returns the identity key for the buyer of a record.
// Priority: platform-native user id, then a platform-salted hash of the
// normalized phone number, then a synthetic id derived from the order id.
// It always returns a value.
func (r *Resolver) ResolveCustomerID(record *sync.OrderRecord) string {
	if uid := strings.TrimSpace(record.BuyerUserID); uid != "" {
		return string(record.Platform) + ":" + uid
	}

	if phone := NormalizePhone(record.RecipientPhone); phone != "" {
		return r.hash(string(record.Platform) + "|" + phone)
	}

	return string(record.Platform) + syntheticMarker + record.OrderID
}

// IsSynthetic reports whether an identity key is a non-mergeable fallback id.
func IsSynthetic(id string) bool {
	return strings.Contains(id, syntheticMarker)
}

// NormalizePhone strips formatting from a phone number: surrounding space,
// separators and parentheses are removed and the result is lower-cased.
// Returns empty when nothing usable remains.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}
	var b strings.Builder
	for _, c := range phone {
		switch c {
		case ' ', '-', '.', '(', ')', '/':
			continue
		}
		b.WriteRune(c)
	}
	return strings.ToLower(b.String())
}

func defaultHash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
