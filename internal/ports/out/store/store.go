package store

import (
	"context"
	"errors"
	"time"
)

// ErrBackendExhausted is returned by persistent operations once every attempt in the
// retry budget has failed. It is never user-correctable.
var ErrBackendExhausted = errors.New("store: backend exhausted after retries")

// Store is the two-tier access layer used by business handlers.
//
// Get/Set go to the remote backend with bounded retry. CacheGet/CacheSet are
// process-local and best-effort: they never fail on backend trouble.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error

	CacheGet(ctx context.Context, key string) ([]byte, bool)
	// CacheSet stores value for ttl; ttl <= 0 selects the store's default TTL.
	CacheSet(ctx context.Context, key string, value []byte, ttl time.Duration)
}
