// Package cache provides the storage contract, key scheme, and read-through
// accessor for the catalog cache.
//
// # Overview
//
// The package exports three building blocks:
//
//   - Store: a key/value store with per-key expiry. Implementations live in
//     internal/cacheinfra (sturdyc-backed and in-memory).
//   - Key scheme: deterministic mapping from catalog namespaces and normalized
//     search parameters to cache keys, plus the prefix used for bulk
//     invalidation of the search namespace.
//   - ReadThrough: a generic "check cache, else load and populate" operation
//     used by every read accessor.
//
// # Key scheme
//
// Fixed namespaces use their literal tag as the key (latest-products,
// categories, all-products). Single products use "product:<id>". Search keys
// encode the normalized parameter tuple {term, category, price ceiling, sort,
// page} behind the "search::" prefix. The encoding is injective: absent
// fields encode distinctly from empty or zero values, field text is escaped
// so it cannot forge the segment separator, and oversized terms are replaced
// by an xxhash digest to bound key length.
//
// # Read-through semantics
//
// ReadThrough treats any Store error as a miss and falls through to the
// loader, so an unavailable cache degrades to source-of-truth latency rather
// than failing reads. Loader errors propagate unchanged and never populate
// the cache; there is no negative caching. Concurrent identical misses are
// collapsed with singleflight so a popular key produces a single source
// query.
//
// Cached payloads are encoded with msgpack. Hit versus miss is reported as a
// normal boolean return, not an error.
package cache
