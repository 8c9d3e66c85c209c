// Package catalogcache implements the product read-cache with
// write-triggered invalidation.
//
// # Overview
//
// Service fronts the catalog store with five cached read accessors (latest
// products, categories, admin listing, single product, search) and one
// mutation hook, OnProductChanged, that purges every entry a product write
// could have made stale.
//
// Reads are cache-aside: the query compiler normalizes raw search parameters,
// the key scheme derives a deterministic cache key, and the read-through
// accessor serves from the cache or recomputes from the catalog store. Writes
// follow write-then-invalidate ordering: the caller mutates the catalog
// store first, then invokes OnProductChanged with the mutation's scope, and
// only responds once the purge completes.
//
// # Invalidating the search namespace
//
// Search keys are derived from an open combination of parameters (term,
// category, price ceiling, sort, page), so there is no way to compute which
// cached search pages a given product change affects. The engine treats the
// whole search namespace as one invalidation unit: when the store supports
// prefix deletion it purges every key under the search prefix; otherwise it
// maintains a registry of live search keys, appended on every search-cache
// write and drained on invalidation. Purging too much costs a few recomputes;
// purging too little would serve stale results, so the policy is deliberately
// over-inclusive.
//
// Failed purges are retried once and then logged as warnings; the entry TTL
// is the safety net after that. A failed invalidation never blocks the
// mutation response.
//
// # Consistency
//
// A read that misses while a concurrent write invalidates can repopulate the
// cache with the pre-write value; the entry then lives until the TTL or the
// next invalidation. This weak-consistency window is an accepted trade-off
// inherited from the system this engine replaces, not a bug to lock away.
package catalogcache
