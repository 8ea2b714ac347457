package kvstore

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/Overland-East-Bay/scoring-api/internal/adapters/contracttest"
	kvstoreport "github.com/Overland-East-Bay/scoring-api/internal/ports/out/kvstore"
)

func TestContract_RedisBackend(t *testing.T) {
	addr := os.Getenv("SCORING_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("SCORING_TEST_REDIS_ADDR not set; skipping Redis contract test")
	}

	contracttest.RunBackend(t, func(t *testing.T) (kvstoreport.Backend, func()) {
		t.Helper()
		s := NewStore(Options{Addr: addr, Timeout: 2 * time.Second})
		return s, func() { _ = s.Close() }
	})
}

func TestStore_UnreachableIsUnavailable(t *testing.T) {
	t.Parallel()

	s := NewStore(Options{Addr: "127.0.0.1:1", Timeout: 200 * time.Millisecond})
	t.Cleanup(func() { _ = s.Close() })

	_, _, err := s.Get(context.Background(), "k")
	if !errors.Is(err, kvstoreport.ErrUnavailable) {
		t.Fatalf("Get err=%v, want ErrUnavailable", err)
	}
	if err := s.Set(context.Background(), "k", []byte("v")); !errors.Is(err, kvstoreport.ErrUnavailable) {
		t.Fatalf("Set err=%v, want ErrUnavailable", err)
	}
}
