package contracttest

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/Overland-East-Bay/scoring-api/internal/ports/out/kvstore"
)

type CleanupFunc = func()

type BackendFactory func(t *testing.T) (kvstore.Backend, CleanupFunc)

// RunBackend checks the behaviour every kvstore.Backend adapter must share.
// Keys are namespaced per run so suites can share a live server.
func RunBackend(t *testing.T, newBackend BackendFactory) {
	t.Helper()
	ctx := context.Background()

	backend, cleanup := newBackend(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}
	ns := "contract:" + uuid.NewString() + ":"

	// Missing key is not an error.
	got, ok, err := backend.Get(ctx, ns+"missing")
	if err != nil {
		t.Fatalf("Get missing: %v", err)
	}
	if ok || got != nil {
		t.Fatalf("Get missing: ok=%v value=%q, want miss", ok, got)
	}

	key := ns + "i:1"
	if err := backend.Set(ctx, key, []byte(`["cars","pets"]`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err = backend.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok || string(got) != `["cars","pets"]` {
		t.Fatalf("Get: ok=%v value=%q", ok, got)
	}

	// Overwrite semantics.
	if err := backend.Set(ctx, key, []byte(`["travel"]`)); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	got, ok, err = backend.Get(ctx, key)
	if err != nil || !ok || string(got) != `["travel"]` {
		t.Fatalf("expected overwritten value, got ok=%v err=%v value=%q", ok, err, got)
	}

	// Values are opaque bytes.
	bin := []byte{0x00, 0xff, 0x10, '\n', 0x00}
	if err := backend.Set(ctx, ns+"bin", bin); err != nil {
		t.Fatalf("Set binary: %v", err)
	}
	got, ok, err = backend.Get(ctx, ns+"bin")
	if err != nil || !ok || !bytes.Equal(got, bin) {
		t.Fatalf("binary round trip: ok=%v err=%v value=%v", ok, err, got)
	}

	// Empty value is distinct from a missing key.
	if err := backend.Set(ctx, ns+"empty", []byte{}); err != nil {
		t.Fatalf("Set empty: %v", err)
	}
	got, ok, err = backend.Get(ctx, ns+"empty")
	if err != nil || !ok || len(got) != 0 {
		t.Fatalf("empty value: ok=%v err=%v value=%q", ok, err, got)
	}

	// Concurrent writers to distinct keys.
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := backend.Set(ctx, fmt.Sprintf("%sc:%d", ns, i), []byte(fmt.Sprint(i))); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent Set: %v", err)
	}
	for i := 0; i < 8; i++ {
		got, ok, err := backend.Get(ctx, fmt.Sprintf("%sc:%d", ns, i))
		if err != nil || !ok || string(got) != fmt.Sprint(i) {
			t.Fatalf("concurrent key %d: ok=%v err=%v value=%q", i, ok, err, got)
		}
	}

	if p, ok := backend.(kvstore.Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			t.Fatalf("Ping: %v", err)
		}
	}
}
