package cacheinfra

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/goliatone/go-catalog-cache/cache"
)

func testConfig() cache.Config {
	cfg := cache.DefaultConfig()
	cfg.Capacity = 100
	cfg.NumShards = 2
	cfg.TTL = time.Minute
	return cfg
}

func TestNewSturdycStore_RejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Capacity = 0

	if _, err := NewSturdycStore(cfg); err == nil {
		t.Errorf("expected invalid config to be rejected")
	}
}

func TestSturdycStore_SetGetDelete(t *testing.T) {
	store, err := NewSturdycStore(testConfig())
	if err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}
	ctx := context.Background()

	if err := store.SetWithTTL(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}

	value, found, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}
	if !found || string(value) != "v" {
		t.Errorf("expected ('v', true) but got (%q, %v)", value, found)
	}

	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}
	if _, found, _ := store.Get(ctx, "k"); found {
		t.Errorf("expected entry to be gone after delete")
	}
}

func TestSturdycStore_DeletePattern(t *testing.T) {
	store, err := NewSturdycStore(testConfig())
	if err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}
	ctx := context.Background()

	keys := []string{
		cache.SearchKeyPrefix() + "a",
		cache.SearchKeyPrefix() + "b",
		cache.SearchKeyPrefix() + "c",
	}
	for _, key := range keys {
		store.SetWithTTL(ctx, key, []byte("x"), time.Minute)
	}
	store.SetWithTTL(ctx, cache.KeyLatestProducts, []byte("keep"), time.Minute)

	deleted, err := store.DeletePattern(ctx, cache.SearchKeyPrefix())
	if err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}
	if deleted != len(keys) {
		t.Errorf("expected %d deletions but got: %d", len(keys), deleted)
	}

	for _, key := range keys {
		if _, found, _ := store.Get(ctx, key); found {
			t.Errorf("expected %q to be purged", key)
		}
	}
	if _, found, _ := store.Get(ctx, cache.KeyLatestProducts); !found {
		t.Errorf("expected non-matching key to survive the pattern delete")
	}
}

func TestSturdycStore_WarnsOnTTLDrift(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	store, err := NewSturdycStore(testConfig(), WithStoreLogger(zap.New(core)))
	if err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}
	ctx := context.Background()

	// The configured TTL passes silently.
	if err := store.SetWithTTL(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}
	if logs.Len() != 0 {
		t.Errorf("expected no warning for a matching ttl but got: %v", logs.All())
	}

	// A different TTL cannot be honored and must be surfaced.
	if err := store.SetWithTTL(ctx, "k", []byte("v"), time.Hour); err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}
	if logs.Len() != 1 {
		t.Fatalf("expected one warning for a mismatched ttl but got: %d", logs.Len())
	}
}

func TestSturdycStore_ImplementsPatternDeleter(t *testing.T) {
	store, err := NewSturdycStore(testConfig())
	if err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}
	var asStore cache.Store = store
	if _, ok := asStore.(cache.PatternDeleter); !ok {
		t.Errorf("SturdycStore must advertise pattern deletion")
	}
}
