package cacheinfra

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"

	"github.com/goliatone/go-catalog-cache/cache"
)

// failingStore fails every operation until healed.
type failingStore struct {
	healed bool
}

func (s *failingStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if !s.healed {
		return nil, false, errors.New("connection refused")
	}
	return nil, false, nil
}

func (s *failingStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if !s.healed {
		return errors.New("connection refused")
	}
	return nil
}

func (s *failingStore) Delete(ctx context.Context, key string) error {
	if !s.healed {
		return errors.New("connection refused")
	}
	return nil
}

func quickTripSettings() gobreaker.Settings {
	return gobreaker.Settings{
		Name:    "test",
		Timeout: 50 * time.Millisecond,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 2
		},
	}
}

func TestBreakerStore_PassThrough(t *testing.T) {
	inner := NewMemoryStore()
	store := NewBreakerStore(inner, DefaultBreakerSettings("test"))
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
}

func TestBreakerStore_OpensAndReportsUnavailable(t *testing.T) {
	inner := &failingStore{}
	store := NewBreakerStore(inner, quickTripSettings())
	ctx := context.Background()

	// Two consecutive failures trip the breaker.
	for i := 0; i < 2; i++ {
		if _, _, err := store.Get(ctx, "k"); err == nil {
			t.Fatalf("expected failure %d to propagate", i)
		}
	}

	_, _, err := store.Get(ctx, "k")
	if !errors.Is(err, cache.ErrUnavailable) {
		t.Errorf("expected cache.ErrUnavailable once the breaker is open but got: %v", err)
	}
}

func TestBreakerStore_RecoversAfterTimeout(t *testing.T) {
	inner := &failingStore{}
	store := NewBreakerStore(inner, quickTripSettings())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		store.Get(ctx, "k")
	}
	inner.healed = true

	time.Sleep(70 * time.Millisecond)

	if _, _, err := store.Get(ctx, "k"); err != nil {
		t.Errorf("expected half-open probe to succeed after recovery but got: %v", err)
	}
}

func TestBreakerStore_PreservesPatternCapability(t *testing.T) {
	sturdy, err := NewSturdycStore(testConfig())
	if err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}

	wrapped := NewBreakerStore(sturdy, DefaultBreakerSettings("test"))
	if _, ok := wrapped.(cache.PatternDeleter); !ok {
		t.Errorf("expected breaker over a pattern-capable store to keep the capability")
	}

	plain := NewBreakerStore(NewMemoryStore(), DefaultBreakerSettings("test"))
	if _, ok := plain.(cache.PatternDeleter); ok {
		t.Errorf("expected breaker over a plain store not to invent the capability")
	}
}
