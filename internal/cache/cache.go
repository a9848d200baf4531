// Package cache stores classification results so that identical task text is
// not sent to the generation endpoint twice within the TTL.
package cache

import (
	"context"
	"time"
)

// Cache defines a minimal byte-oriented key-value cache with per-entry TTL.
// Implementations are safe for concurrent use.
type Cache interface {
	// Get returns the value and whether it was present and not expired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores the value. If ttl <= 0, the entry does not expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key if present.
	Delete(ctx context.Context, key string) error

	// Close releases any underlying connection.
	Close() error
}

// Purger is implemented by caches that need explicit cleanup of expired
// entries. It returns the number of entries removed.
type Purger interface {
	PurgeExpired() int
}
