package cache

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// LoaderFn computes a value from the source of truth on a cache miss.
type LoaderFn[T any] func(ctx context.Context) (T, error)

// Reader bundles a Store with the policy shared by every read-through call:
// the TTL for populated entries, miss collapsing, and diagnostics.
type Reader struct {
	store   Store
	ttl     time.Duration
	logger  *zap.Logger
	metrics *Metrics
	group   singleflight.Group
}

// ReaderOption customizes a Reader.
type ReaderOption func(*Reader)

// WithLogger attaches a logger for cache-layer diagnostics.
func WithLogger(logger *zap.Logger) ReaderOption {
	return func(r *Reader) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics attaches hit/miss instrumentation.
func WithMetrics(m *Metrics) ReaderOption {
	return func(r *Reader) {
		r.metrics = m
	}
}

// NewReader creates a Reader that populates entries with the given TTL.
func NewReader(store Store, ttl time.Duration, opts ...ReaderOption) *Reader {
	r := &Reader{
		store:  store,
		ttl:    ttl,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Store returns the underlying store.
func (r *Reader) Store() Store {
	return r.store
}

// TTL returns the entry time-to-live the Reader populates with.
func (r *Reader) TTL() time.Duration {
	return r.ttl
}

// ReadThrough returns the cached value for key, or invokes loader against the
// source of truth, populates the cache, and returns the fresh value. The
// boolean reports hit versus miss.
//
// A Store error is treated as a miss: the cache must never make a read fail
// that the source of truth could serve. A loader error propagates unchanged
// and leaves the cache untouched, so failures (including not-found) are never
// cached. Concurrent calls for the same key share one loader invocation.
func ReadThrough[T any](ctx context.Context, r *Reader, key string, loader LoaderFn[T]) (T, bool, error) {
	payload, ok, err := r.store.Get(ctx, key)
	switch {
	case err != nil:
		r.logger.Debug("cache read failed, falling back to source",
			zap.String("key", key), zap.Error(err))
	case ok:
		v, derr := Decode[T](payload)
		if derr == nil {
			r.metrics.hit()
			return v, true, nil
		}
		// An undecodable entry is unusable no matter how fresh it is.
		r.logger.Warn("dropping undecodable cache entry",
			zap.String("key", key), zap.Error(derr))
		if delErr := r.store.Delete(ctx, key); delErr != nil {
			r.logger.Debug("failed to drop undecodable cache entry",
				zap.String("key", key), zap.Error(delErr))
		}
	}

	r.metrics.miss()

	res, err, _ := r.group.Do(key, func() (any, error) {
		v, lerr := loader(ctx)
		if lerr != nil {
			return nil, lerr
		}

		payload, eerr := Encode(v)
		if eerr != nil {
			r.logger.Warn("cache encode failed, returning uncached value",
				zap.String("key", key), zap.Error(eerr))
			return v, nil
		}

		if serr := r.store.SetWithTTL(ctx, key, payload, r.ttl); serr != nil {
			r.logger.Debug("cache populate failed",
				zap.String("key", key), zap.Error(serr))
		} else {
			r.metrics.set()
		}
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, false, err
	}
	return res.(T), false, nil
}
