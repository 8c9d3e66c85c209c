// Package di wires the cache engine's components together: store backend,
// circuit breaker, metrics, and the engine itself. Applications that do not
// want to assemble the pieces by hand build a Container and pull the engine
// from it.
package di

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/goliatone/go-catalog-cache/cache"
	"github.com/goliatone/go-catalog-cache/catalogcache"
	"github.com/goliatone/go-catalog-cache/internal/cacheinfra"
)

// Container holds the singleton cache components built from one
// configuration.
type Container struct {
	store   cache.Store
	engine  *catalogcache.Service
	metrics *cache.Metrics
	config  cache.Config
}

// Options customize container construction.
type Options struct {
	// Logger is attached to the engine. Defaults to a no-op logger.
	Logger *zap.Logger

	// Registerer receives the cache metrics. Nil disables metrics.
	Registerer prometheus.Registerer

	// DisableBreaker skips the circuit-breaker wrapper around the store.
	DisableBreaker bool

	// Store overrides the sturdyc backend, for tests and in-process setups.
	Store cache.Store
}

// NewContainer builds the cache stack over the given source of truth: a
// sturdyc store wrapped in a circuit breaker, feeding the caching engine.
func NewContainer(source catalogcache.Source, cfg cache.Config, opts Options) (*Container, error) {
	store := opts.Store
	if store == nil {
		sturdyc, err := cacheinfra.NewSturdycStore(cfg, cacheinfra.WithStoreLogger(opts.Logger))
		if err != nil {
			return nil, err
		}
		store = sturdyc
	}

	if !opts.DisableBreaker {
		store = cacheinfra.NewBreakerStore(store, cacheinfra.DefaultBreakerSettings("catalog-cache"))
	}

	var metrics *cache.Metrics
	if opts.Registerer != nil {
		metrics = cache.NewMetrics(opts.Registerer)
	}

	engineOpts := []catalogcache.Option{
		catalogcache.WithLogger(opts.Logger),
	}
	if metrics != nil {
		engineOpts = append(engineOpts, catalogcache.WithMetrics(metrics))
	}

	return &Container{
		store:   store,
		engine:  catalogcache.New(source, store, cfg, engineOpts...),
		metrics: metrics,
		config:  cfg,
	}, nil
}

// NewContainerWithDefaults builds the stack with the default cache
// configuration, no metrics, and a no-op logger.
func NewContainerWithDefaults(source catalogcache.Source) (*Container, error) {
	return NewContainer(source, cache.DefaultConfig(), Options{})
}

// Engine returns the caching engine.
func (c *Container) Engine() *catalogcache.Service {
	return c.engine
}

// Store returns the cache store, breaker wrapper included when enabled.
func (c *Container) Store() cache.Store {
	return c.store
}

// Metrics returns the registered metrics, or nil when disabled.
func (c *Container) Metrics() *cache.Metrics {
	return c.metrics
}

// Config returns a copy of the cache configuration the container was built
// with.
func (c *Container) Config() cache.Config {
	return c.config
}
