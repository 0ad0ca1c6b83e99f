// Package cache provides a small time-bounded key-value store used for
// short-lived tokens such as contract acceptance codes. Implementations
// are injected, never reached through package state, so callers stay
// testable and survive process restarts when backed by redis.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a key is absent or has expired.
var ErrNotFound = errors.New("cache: key not found")

// Cache is a TTL-bounded string store. Every Set carries an explicit
// expiry; there are no unbounded entries.
type Cache interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}
