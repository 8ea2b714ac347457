// Package kvstore is the Valkey implementation of the key-value backend.
package kvstore

import (
	"context"
	"fmt"
	"time"

	valkeylib "github.com/valkey-io/valkey-go"

	"github.com/Overland-East-Bay/scoring-api/internal/ports/out/kvstore"
)

// DefaultConnectTimeout bounds the initial connection and ping.
const DefaultConnectTimeout = 5 * time.Second

type Options struct {
	Addr           string
	Password       string
	DB             int
	ConnectTimeout time.Duration
}

// Store is a Valkey implementation of kvstore.Backend.
type Store struct {
	inner valkeylib.Client
}

// NewStore connects and pings. The caller closes the store when done.
func NewStore(opts Options) (*Store, error) {
	co := valkeylib.ClientOption{
		InitAddress: []string{opts.Addr},
		SelectDB:    opts.DB,
	}
	if opts.Password != "" {
		co.Password = opts.Password
	}
	inner, err := valkeylib.NewClient(co)
	if err != nil {
		return nil, fmt.Errorf("%w: create valkey client: %w", kvstore.ErrUnavailable, err)
	}

	timeout := opts.ConnectTimeout
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s := &Store{inner: inner}
	if err := s.Ping(ctx); err != nil {
		inner.Close()
		return nil, err
	}
	return s, nil
}

var _ kvstore.Backend = (*Store)(nil)

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := s.inner.Do(ctx, s.inner.B().Get().Key(key).Build()).AsBytes()
	if err != nil {
		if valkeylib.IsValkeyNil(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%w: valkey get: %w", kvstore.ErrUnavailable, err)
	}
	return b, true, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	cmd := s.inner.B().Set().Key(key).Value(string(value)).Build()
	if err := s.inner.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("%w: valkey set: %w", kvstore.ErrUnavailable, err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.inner.Do(ctx, s.inner.B().Ping().Build()).Error(); err != nil {
		return fmt.Errorf("%w: valkey ping: %w", kvstore.ErrUnavailable, err)
	}
	return nil
}

func (s *Store) Close() error {
	s.inner.Close()
	return nil
}
