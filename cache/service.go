package cache

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable signals that the cache store could not be reached. Callers
// recover locally by falling back to the source of truth; the error is never
// surfaced to end users.
var ErrUnavailable = errors.New("cache: store unavailable")

// Store is the key/value contract every cache backend implements. Values are
// opaque byte payloads owned exclusively by the store.
type Store interface {
	// Get returns the payload for key and whether a live entry was found.
	// Expired entries are reported as absent.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// SetWithTTL stores the payload under key for the given duration.
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes the entry for the exact key. Deleting an absent key is
	// not an error.
	Delete(ctx context.Context, key string) error
}

// PatternDeleter is implemented by stores that can purge every key sharing a
// prefix in one operation. Backends without this capability rely on the
// invalidation engine's key registry instead.
type PatternDeleter interface {
	// DeletePattern removes all entries whose key starts with prefix and
	// returns how many were deleted.
	DeletePattern(ctx context.Context, prefix string) (int, error)
}
