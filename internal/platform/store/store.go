// Package store implements the resilient two-tier store: a local TTL cache in front of
// a key-value backend reached with bounded, per-call retry.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Overland-East-Bay/scoring-api/internal/platform/cache"
	"github.com/Overland-East-Bay/scoring-api/internal/platform/metrics"
	"github.com/Overland-East-Bay/scoring-api/internal/platform/resilience"
	"github.com/Overland-East-Bay/scoring-api/internal/ports/out/clock"
	"github.com/Overland-East-Bay/scoring-api/internal/ports/out/kvstore"
	storeport "github.com/Overland-East-Bay/scoring-api/internal/ports/out/store"
)

const (
	DefaultRetries    = 5
	DefaultRetryDelay = time.Second
	DefaultCacheTTL   = 60 * time.Second
)

type Options struct {
	Retry    resilience.Policy
	CacheTTL time.Duration
	// Timeout bounds each backend call. Zero leaves the caller's context alone.
	Timeout time.Duration

	Logger  *logrus.Logger
	Metrics *metrics.Metrics
}

// DefaultOptions mirror the CLI defaults: 5 retries one second apart and a 60s cache.
func DefaultOptions() Options {
	return Options{
		Retry:    resilience.Policy{Retries: DefaultRetries, Delay: DefaultRetryDelay},
		CacheTTL: DefaultCacheTTL,
	}
}

type Resilient struct {
	backend kvstore.Backend
	cache   *cache.Memory
	retry   resilience.Policy
	timeout time.Duration
	log     *logrus.Logger
	metrics *metrics.Metrics
}

func New(backend kvstore.Backend, clk clock.Clock, opts Options) *Resilient {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Resilient{
		backend: backend,
		cache:   cache.NewMemory(cache.Policy{DefaultTTL: opts.CacheTTL}, clk),
		retry:   opts.Retry,
		timeout: opts.Timeout,
		log:     log,
		metrics: opts.Metrics,
	}
}

var _ storeport.Store = (*Resilient)(nil)

func (s *Resilient) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var (
		value []byte
		found bool
	)
	err := s.do(ctx, "get", key, func(ctx context.Context) error {
		v, ok, err := s.backend.Get(ctx, key)
		if err != nil {
			return err
		}
		value, found = v, ok
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return value, found, nil
}

func (s *Resilient) Set(ctx context.Context, key string, value []byte) error {
	return s.do(ctx, "set", key, func(ctx context.Context) error {
		return s.backend.Set(ctx, key, value)
	})
}

func (s *Resilient) CacheGet(_ context.Context, key string) ([]byte, bool) {
	v, ok := s.cache.Get(key)
	s.metrics.CacheLookup(ok)
	return v, ok
}

func (s *Resilient) CacheSet(_ context.Context, key string, value []byte, ttl time.Duration) {
	s.cache.Set(key, value, ttl)
}

// do runs one logical backend call. Attempt state lives on this stack frame only.
func (s *Resilient) do(ctx context.Context, op, key string, call func(context.Context) error) error {
	policy := s.retry
	policy.OnRetry = func(attempt int, err error, delay time.Duration) {
		s.log.WithFields(logrus.Fields{
			"op":      op,
			"key":     key,
			"attempt": attempt,
			"delay":   delay,
			"err":     err,
		}).Warn("store: backend call failed, retrying")
	}

	res, err := policy.Do(ctx, func(ctx context.Context) error {
		if s.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.timeout)
			defer cancel()
		}
		err := call(ctx)
		s.metrics.BackendAttempt(op, err)
		return err
	})
	if err == nil {
		return nil
	}

	s.metrics.BackendExhausted(op)
	s.log.WithFields(logrus.Fields{
		"op":       op,
		"key":      key,
		"attempts": res.Attempts,
		"err":      err,
	}).Error("store: backend exhausted")
	return fmt.Errorf("%w: %s %q after %d attempts: %w", storeport.ErrBackendExhausted, op, key, res.Attempts, err)
}
