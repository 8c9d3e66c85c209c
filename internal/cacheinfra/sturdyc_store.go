// Package cacheinfra provides the cache.Store backends: a sturdyc-backed
// store for production use and an in-memory store for tests and small
// deployments, plus a circuit-breaker wrapper shared by both.
package cacheinfra

import (
	"context"
	"strings"
	"time"

	"github.com/viccon/sturdyc"
	"go.uber.org/zap"

	"github.com/goliatone/go-catalog-cache/cache"
)

// SturdycStore adapts a sturdyc client to the cache.Store contract. sturdyc
// owns entry lifetimes: expiry, sharded storage, and capacity eviction all
// happen inside the client.
//
// sturdyc applies one TTL per client, configured at construction. The ttl
// argument of SetWithTTL therefore has to match the configured TTL; the store
// is always built from the same Config the Reader takes its TTL from, so the
// two cannot drift in practice.
type SturdycStore struct {
	client *sturdyc.Client[[]byte]
	ttl    time.Duration
	logger *zap.Logger
}

var _ cache.Store = (*SturdycStore)(nil)
var _ cache.PatternDeleter = (*SturdycStore)(nil)

// StoreOption customizes a SturdycStore.
type StoreOption func(*SturdycStore)

// WithStoreLogger attaches a logger for store-level diagnostics.
func WithStoreLogger(logger *zap.Logger) StoreOption {
	return func(s *SturdycStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSturdycStore validates the configuration and builds the backing client.
func NewSturdycStore(cfg cache.Config, opts ...StoreOption) (*SturdycStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var clientOpts []sturdyc.Option
	if cfg.EvictionInterval > 0 {
		clientOpts = append(clientOpts, sturdyc.WithEvictionInterval(cfg.EvictionInterval))
	}

	client := sturdyc.New[[]byte](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
		clientOpts...,
	)

	s := &SturdycStore{client: client, ttl: cfg.TTL, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Get implements cache.Store. Expired entries read as absent.
func (s *SturdycStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, ok := s.client.Get(key)
	if !ok {
		return nil, false, nil
	}
	return value, true, nil
}

// SetWithTTL implements cache.Store. The entry expires after the client TTL
// regardless of the ttl argument; a mismatch is logged so drift between the
// caller's TTL and the store's does not go unnoticed.
func (s *SturdycStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl != s.ttl {
		s.logger.Warn("requested ttl differs from the configured client ttl, using the client ttl",
			zap.String("key", key),
			zap.Duration("requested_ttl", ttl),
			zap.Duration("client_ttl", s.ttl),
		)
	}
	s.client.Set(key, value)
	return nil
}

// Delete implements cache.Store.
func (s *SturdycStore) Delete(ctx context.Context, key string) error {
	s.client.Delete(key)
	return nil
}

// DeletePattern implements cache.PatternDeleter by scanning live keys and
// deleting every one that shares the prefix. Cost is proportional to the
// number of live entries, which capacity bounds.
func (s *SturdycStore) DeletePattern(ctx context.Context, prefix string) (int, error) {
	deleted := 0
	for _, key := range s.client.ScanKeys() {
		if strings.HasPrefix(key, prefix) {
			s.client.Delete(key)
			deleted++
		}
	}
	return deleted, nil
}
