package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/Overland-East-Bay/scoring-api/internal/domain"
	"github.com/Overland-East-Bay/scoring-api/internal/ports/out/kvstore"
)

// Store is an in-memory implementation of kvstore.Backend.
// It is safe for concurrent use.
type Store struct {
	mu sync.RWMutex
	m  map[string][]byte

	// failures left to inject before calls start succeeding again; negative means forever.
	failures int
	failErr  error
	calls    int
}

func NewStore() *Store {
	return &Store{
		m: make(map[string][]byte),
	}
}

var _ kvstore.Backend = (*Store)(nil)

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := s.injected(ctx); err != nil {
		return nil, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := s.injected(ctx); err != nil {
		return err
	}
	v := make([]byte, len(value))
	copy(v, value)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = v
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// FailNext makes the next n calls fail with kvstore.ErrUnavailable. n < 0 fails every call.
func (s *Store) FailNext(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = n
	s.failErr = fmt.Errorf("%w: injected failure", kvstore.ErrUnavailable)
}

// Calls counts Get and Set calls, failed ones included.
func (s *Store) Calls() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calls
}

// SetInterests seeds the interest list of a client under the key the scoring service reads.
// Seeding bypasses failure injection.
func (s *Store) SetInterests(id domain.ClientID, interests []string) error {
	b, err := json.Marshal(interests)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[domain.InterestsKey(id)] = b
	return nil
}

func (s *Store) injected(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.failures == 0 {
		return nil
	}
	if s.failures > 0 {
		s.failures--
	}
	return s.failErr
}
