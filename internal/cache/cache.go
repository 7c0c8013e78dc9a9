// Package cache provides the read-through cache used by expensive read
// queries. The cache is never authoritative: every entry must be
// reconstructable from the database, and callers never branch on whether a
// cache backend is actually available.
package cache

import (
	"context"
	"sort"
	"strings"
	"time"
)

// Store is the cache capability injected into services. Implementations
// swallow backend errors at this boundary: Get reports a miss, Set and
// Delete silently succeed. The rest of the system stays correct without a
// working cache, merely slower.
type Store interface {
	// Get returns the cached payload for key, or false on miss.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores value under key with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)

	// Delete removes the named keys.
	Delete(ctx context.Context, keys ...string)

	// DeletePrefix removes every key starting with prefix.
	DeletePrefix(ctx context.Context, prefix string)
}

// BuildKey derives a deterministic cache key from a resource name and the
// effective query parameters. Parameters are sorted by name, so logically
// identical queries always map to the same key regardless of argument order.
func BuildKey(resource string, params map[string]string) string {
	if len(params) == 0 {
		return resource
	}

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(resource)
	b.WriteByte(':')
	for i, name := range names {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(params[name])
	}
	return b.String()
}

// Key layouts for the resources this subsystem caches. Writes invalidate
// the keys they can name; list caches they cannot name age out by TTL.
const (
	ResourceOrderDetails = "order:details"
	ResourceMyOrders     = "orders:my"
	ResourceAdminOrders  = "orders:admin"
	ResourceProducts     = "products:list"
)

// OrderDetailsKey names the cache entry for a single order.
func OrderDetailsKey(orderID string) string {
	return ResourceOrderDetails + ":" + orderID
}

// MyOrdersPrefix names every cached page of a user's order listing.
func MyOrdersPrefix(userID string) string {
	return ResourceMyOrders + ":" + userID + ":"
}
