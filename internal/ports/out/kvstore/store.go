package kvstore

import (
	"context"
	"errors"
)

// ErrUnavailable marks a backend call that failed for transport reasons
// (connection refused, timeout, closed pool). Adapters wrap driver errors with it.
var ErrUnavailable = errors.New("kv backend unavailable")

// Backend is the remote key-value service the resilient store retries against.
//
// Get returns (nil, false, nil) for a missing key; a non-nil error always means the
// backend could not answer.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Pinger is implemented by backends that can check connectivity at startup.
type Pinger interface {
	Ping(ctx context.Context) error
}
