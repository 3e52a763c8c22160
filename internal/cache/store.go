// Package cache provides the key-value stores backing the read-through
// weather caches. Keys are namespaced strings (<dataClass>:<key>); values
// are serialized normalized results, never raw upstream payloads.
package cache

import (
	"context"
	"time"
)

// Store is the cache capability the weather service consumes. Get reports
// absence via the bool, reserving the error for store-level failures.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}
