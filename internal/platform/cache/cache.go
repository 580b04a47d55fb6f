// Package cache provides the short-TTL result cache used by the availability
// resolver. The staleness window is an explicit property of the store, not
// ambient state: callers construct a store with a TTL and inject it.
package cache

import (
	"context"
	"strings"
)

// Store is a byte-value cache with a fixed TTL chosen at construction.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
	Delete(ctx context.Context, key string)
}

// Key canonicalizes cache key parts into a single stable key.
func Key(parts ...string) string {
	return strings.Join(parts, "|")
}
