package main

import (
	"context"
	"testing"

	memkv "github.com/Overland-East-Bay/scoring-api/internal/adapters/memory/kvstore"
	"github.com/Overland-East-Bay/scoring-api/internal/platform/config"
)

func TestOpenBackend_Memory(t *testing.T) {
	b, cleanup, err := openBackend(context.Background(), config.StoreConfig{Backend: config.BackendMemory})
	if err != nil {
		t.Fatalf("openBackend: %v", err)
	}
	defer cleanup()
	if _, ok := b.(*memkv.Store); !ok {
		t.Fatalf("backend=%T want *memkv.Store", b)
	}
}

func TestOpenBackend_Unknown(t *testing.T) {
	_, cleanup, err := openBackend(context.Background(), config.StoreConfig{Backend: "etcd"})
	if err == nil {
		t.Fatalf("expected error for unknown backend")
	}
	cleanup()
}

func TestOpenBackend_RedisUnreachable(t *testing.T) {
	_, cleanup, err := openBackend(context.Background(), config.StoreConfig{
		Backend: config.BackendRedis,
		Addr:    "127.0.0.1:1",
	})
	if err == nil {
		t.Fatalf("expected ping failure against a closed port")
	}
	cleanup()
}

func TestRootCmd_RejectsInvalidConfig(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--store-backend", "redis"})
	if err := cmd.Execute(); err == nil {
		t.Fatalf("redis backend without --store-addr must fail validation")
	}
}
