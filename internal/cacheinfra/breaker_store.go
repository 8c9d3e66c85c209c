package cacheinfra

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"

	"github.com/goliatone/go-catalog-cache/cache"
)

// BreakerStore wraps a cache.Store with a circuit breaker so a misbehaving
// cache backend cannot drag every request through its timeout. Once the
// breaker opens, operations return cache.ErrUnavailable immediately and the
// read-through layer fails open to the source of truth.
type BreakerStore struct {
	inner cache.Store
	cb    *gobreaker.CircuitBreaker
}

var _ cache.Store = (*BreakerStore)(nil)

// DefaultBreakerSettings trips after five consecutive failures and probes
// again after ten seconds.
func DefaultBreakerSettings(name string) gobreaker.Settings {
	return gobreaker.Settings{
		Name:    name,
		Timeout: 10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
}

// NewBreakerStore wraps inner with the given breaker settings. The returned
// store implements cache.PatternDeleter exactly when inner does, so
// capability probing through the wrapper keeps working.
func NewBreakerStore(inner cache.Store, settings gobreaker.Settings) cache.Store {
	b := &BreakerStore{
		inner: inner,
		cb:    gobreaker.NewCircuitBreaker(settings),
	}
	if pd, ok := inner.(cache.PatternDeleter); ok {
		return &breakerPatternStore{BreakerStore: b, pd: pd}
	}
	return b
}

// Get implements cache.Store.
func (s *BreakerStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	type result struct {
		value []byte
		found bool
	}
	res, err := s.cb.Execute(func() (any, error) {
		value, found, err := s.inner.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		return result{value: value, found: found}, nil
	})
	if err != nil {
		return nil, false, mapBreakerErr(err)
	}
	r := res.(result)
	return r.value, r.found, nil
}

// SetWithTTL implements cache.Store.
func (s *BreakerStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := s.cb.Execute(func() (any, error) {
		return nil, s.inner.SetWithTTL(ctx, key, value, ttl)
	})
	return mapBreakerErr(err)
}

// Delete implements cache.Store.
func (s *BreakerStore) Delete(ctx context.Context, key string) error {
	_, err := s.cb.Execute(func() (any, error) {
		return nil, s.inner.Delete(ctx, key)
	})
	return mapBreakerErr(err)
}

// breakerPatternStore adds pattern deletion pass-through for inner stores
// that support it.
type breakerPatternStore struct {
	*BreakerStore
	pd cache.PatternDeleter
}

var _ cache.PatternDeleter = (*breakerPatternStore)(nil)

func (s *breakerPatternStore) DeletePattern(ctx context.Context, prefix string) (int, error) {
	res, err := s.cb.Execute(func() (any, error) {
		return s.pd.DeletePattern(ctx, prefix)
	})
	if err != nil {
		return 0, mapBreakerErr(err)
	}
	return res.(int), nil
}

func mapBreakerErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return cache.ErrUnavailable
	}
	return err
}
