package cache

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config exposes the cache policy knobs shared by the store backends and the
// catalog engine.
type Config struct {
	// TTL is the time-to-live applied to every cached entry. It doubles as
	// the safety net when an invalidation cannot complete.
	TTL time.Duration

	// PageSize is the fixed number of products per search result page.
	PageSize int

	// LatestLimit caps the latest-products listing.
	LatestLimit int

	// Capacity is the maximum number of entries the backing store keeps.
	Capacity int

	// NumShards controls concurrent access in the sturdyc backend.
	NumShards int

	// EvictionPercentage is the share of entries evicted when the store
	// reaches capacity. Between 1 and 100.
	EvictionPercentage int

	// EvictionInterval sets how often the store sweeps expired entries.
	// Zero uses the backend default.
	EvictionInterval time.Duration
}

// DefaultConfig mirrors the production defaults: a four hour TTL and nine
// products per page.
func DefaultConfig() Config {
	return Config{
		TTL:                4 * time.Hour,
		PageSize:           9,
		LatestLimit:        8,
		Capacity:           10000,
		NumShards:          64,
		EvictionPercentage: 10,
	}
}

// Validate checks whether the configuration values are usable.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.TTL, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.PageSize, validation.Required, validation.Min(1)),
		validation.Field(&c.LatestLimit, validation.Required, validation.Min(1)),
		validation.Field(&c.Capacity, validation.Required, validation.Min(1)),
		validation.Field(&c.NumShards, validation.Required, validation.Min(1)),
		validation.Field(&c.EvictionPercentage, validation.Required, validation.Min(1), validation.Max(100)),
		validation.Field(&c.EvictionInterval, validation.Min(time.Duration(0))),
	)
}
