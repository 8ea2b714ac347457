// Package cache is the process-local TTL cache that sits in front of the backend.
package cache

import (
	"sync"
	"time"

	"github.com/Overland-East-Bay/scoring-api/internal/ports/out/clock"
)

// Policy sets the TTL applied when a caller passes none.
type Policy struct {
	DefaultTTL time.Duration
}

// EffectiveTTL returns override when positive, otherwise the default.
func (p Policy) EffectiveTTL(override time.Duration) time.Duration {
	if override > 0 {
		return override
	}
	return p.DefaultTTL
}

type entry struct {
	value    []byte
	storedAt time.Time
	ttl      time.Duration
}

// Memory is an unbounded map of entries. Expiry is judged on read and expired
// entries are never removed.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	policy  Policy
	clock   clock.Clock
}

func NewMemory(policy Policy, clk clock.Clock) *Memory {
	return &Memory{
		entries: make(map[string]entry),
		policy:  policy,
		clock:   clk,
	}
}

// Get returns a copy of the value iff now - storedAt <= ttl.
func (c *Memory) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.clock.Now().Sub(e.storedAt) > e.ttl {
		return nil, false
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, true
}

// Set stores a copy of value. A non-positive ttl uses the policy default.
// Concurrent sets of one key are last-write-wins.
func (c *Memory) Set(key string, value []byte, ttl time.Duration) {
	v := make([]byte, len(value))
	copy(v, value)

	c.mu.Lock()
	c.entries[key] = entry{
		value:    v,
		storedAt: c.clock.Now(),
		ttl:      c.policy.EffectiveTTL(ttl),
	}
	c.mu.Unlock()
}

// Len counts stored entries, live or expired.
func (c *Memory) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
