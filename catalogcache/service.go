package catalogcache

import (
	"context"
	"errors"
	"fmt"

	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/zap"

	"github.com/goliatone/go-catalog-cache/cache"
	"github.com/goliatone/go-catalog-cache/catalog"
)

// ErrInvalidation reports that a purge could not complete even after a
// retry. The mutation has already committed by then, so callers log it and
// rely on the entry TTL instead of failing the user-visible response.
var ErrInvalidation = errors.New("catalogcache: invalidation incomplete")

// Source is the catalog store contract the engine reads from and mirrors.
// *catalog.Store satisfies it; tests substitute fakes.
type Source interface {
	FindLatest(ctx context.Context, limit int) ([]*catalog.Product, error)
	FindAll(ctx context.Context) ([]*catalog.Product, error)
	FindByID(ctx context.Context, id string) (*catalog.Product, error)
	DistinctCategories(ctx context.Context) ([]string, error)
	Search(ctx context.Context, q catalog.Query) ([]*catalog.Product, int, error)
}

var _ Source = (*catalog.Store)(nil)

// SearchResult is the cached payload for one search key: a result page plus
// the page count over the whole match set.
type SearchResult struct {
	Products   []*catalog.Product `json:"products"`
	TotalPages int                `json:"totalPage"`
}

// Service is the caching engine: read accessors over the catalog store plus
// the invalidation hook mutations call.
type Service struct {
	source      Source
	store       cache.Store
	reader      *cache.Reader
	patterns    cache.PatternDeleter
	searchKeys  *xsync.MapOf[string, struct{}]
	pageSize    int
	latestLimit int
	logger      *zap.Logger
	metrics     *cache.Metrics
}

// Option customizes a Service.
type Option func(*Service)

// WithLogger attaches a logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics attaches cache instrumentation.
func WithMetrics(m *cache.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New builds the engine over an injected source of truth and cache store.
// When the store implements cache.PatternDeleter the search namespace is
// purged by prefix; otherwise the engine tracks live search keys in a
// registry and deletes them one by one on invalidation.
func New(source Source, store cache.Store, cfg cache.Config, opts ...Option) *Service {
	s := &Service{
		source:      source,
		store:       store,
		searchKeys:  xsync.NewMapOf[string, struct{}](),
		pageSize:    cfg.PageSize,
		latestLimit: cfg.LatestLimit,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.reader = cache.NewReader(store, cfg.TTL,
		cache.WithLogger(s.logger),
		cache.WithMetrics(s.metrics),
	)

	if pd, ok := store.(cache.PatternDeleter); ok {
		s.patterns = pd
	}

	return s
}

// LatestProducts returns the most recently created products. The boolean
// reports whether the cache served the read.
func (s *Service) LatestProducts(ctx context.Context) ([]*catalog.Product, bool, error) {
	return cache.ReadThrough(ctx, s.reader, cache.KeyLatestProducts,
		func(ctx context.Context) ([]*catalog.Product, error) {
			return s.source.FindLatest(ctx, s.latestLimit)
		})
}

// Categories returns the distinct category values in use.
func (s *Service) Categories(ctx context.Context) ([]string, bool, error) {
	return cache.ReadThrough(ctx, s.reader, cache.KeyCategories,
		func(ctx context.Context) ([]string, error) {
			return s.source.DistinctCategories(ctx)
		})
}

// AdminProducts returns the unfiltered product listing.
func (s *Service) AdminProducts(ctx context.Context) ([]*catalog.Product, bool, error) {
	return cache.ReadThrough(ctx, s.reader, cache.KeyAllProducts,
		func(ctx context.Context) ([]*catalog.Product, error) {
			return s.source.FindAll(ctx)
		})
}

// SingleProduct returns one product snapshot. A missing id surfaces
// catalog.ErrNotFound and is never cached as a negative result.
func (s *Service) SingleProduct(ctx context.Context, id string) (*catalog.Product, bool, error) {
	return cache.ReadThrough(ctx, s.reader, cache.ProductKey(id),
		func(ctx context.Context) (*catalog.Product, error) {
			return s.source.FindByID(ctx, id)
		})
}

// Search serves one page of filtered, sorted results plus the total page
// count, cached under the canonical key of the normalized parameters.
func (s *Service) Search(ctx context.Context, params SearchParams) (*SearchResult, bool, error) {
	compiled := compileSearch(params, s.pageSize)
	key := cache.SearchKey(compiled.keyParams)

	// Register before the read: the registry may briefly hold keys that
	// never made it into the cache, which costs a no-op delete later.
	// The reverse (a cached search key missing from the registry) would
	// leave stale entries alive.
	s.searchKeys.Store(key, struct{}{})

	return cache.ReadThrough(ctx, s.reader, key,
		func(ctx context.Context) (*SearchResult, error) {
			items, total, err := s.source.Search(ctx, compiled.query)
			if err != nil {
				return nil, err
			}
			if items == nil {
				items = []*catalog.Product{}
			}
			return &SearchResult{
				Products:   items,
				TotalPages: totalPages(total, s.pageSize),
			}, nil
		})
}

// OnProductChanged purges every cache entry the given scope declares stale.
// It runs synchronously: route handlers call it after the source-of-truth
// write and before responding, so a subsequent read cannot observe a
// pre-mutation value for any purged key.
//
// Each purge is retried once. Keys that still fail are reported via
// ErrInvalidation and left to expire by TTL; the error is diagnostic and
// must not fail the mutation response.
func (s *Service) OnProductChanged(ctx context.Context, scope Scope) error {
	purged := 0
	var stale []string

	purge := func(key string) {
		if err := s.deleteWithRetry(ctx, key); err != nil {
			stale = append(stale, key)
			return
		}
		purged++
	}

	if scope.Product {
		purge(cache.KeyLatestProducts)
		purge(cache.KeyCategories)
	}
	if scope.Admin {
		purge(cache.KeyAllProducts)
	}
	for _, id := range scope.ProductIDs {
		purge(cache.ProductKey(id))
	}
	if scope.SearchSpace {
		n, err := s.purgeSearchSpace(ctx)
		purged += n
		if err != nil {
			stale = append(stale, cache.SearchKeyPrefix()+"*")
		}
	}

	s.metrics.Invalidated(purged)

	if len(stale) > 0 {
		s.logger.Warn("cache invalidation incomplete, relying on TTL expiry",
			zap.Strings("keys", stale))
		return fmt.Errorf("%w: %d key(s) left to TTL expiry", ErrInvalidation, len(stale))
	}
	return nil
}

// purgeSearchSpace removes every cached entry under the search namespace,
// returning how many keys were deleted.
func (s *Service) purgeSearchSpace(ctx context.Context) (int, error) {
	if s.patterns != nil {
		n, err := s.patterns.DeletePattern(ctx, cache.SearchKeyPrefix())
		if err != nil {
			s.logger.Warn("search namespace pattern delete failed, retrying", zap.Error(err))
			n, err = s.patterns.DeletePattern(ctx, cache.SearchKeyPrefix())
			if err != nil {
				return n, err
			}
		}
		s.searchKeys.Clear()
		return n, nil
	}

	// Registry fallback: delete each live search key individually. Keys
	// stay registered until their delete succeeds so a failed purge is
	// retried by the next invalidation.
	deleted := 0
	var firstErr error
	s.searchKeys.Range(func(key string, _ struct{}) bool {
		if err := s.deleteWithRetry(ctx, key); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			return true
		}
		s.searchKeys.Delete(key)
		deleted++
		return true
	})
	return deleted, firstErr
}

func (s *Service) deleteWithRetry(ctx context.Context, key string) error {
	err := s.store.Delete(ctx, key)
	if err == nil {
		return nil
	}
	s.logger.Warn("cache purge failed, retrying once",
		zap.String("key", key), zap.Error(err))
	return s.store.Delete(ctx, key)
}
