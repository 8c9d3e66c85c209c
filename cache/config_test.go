package cache

import (
	"testing"
	"time"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected default config to validate but got: %v", err)
	}
	if cfg.TTL != 4*time.Hour {
		t.Errorf("expected default TTL of 4h but got: %v", cfg.TTL)
	}
	if cfg.PageSize != 9 {
		t.Errorf("expected default page size of 9 but got: %d", cfg.PageSize)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"zero ttl", func(c *Config) { c.TTL = 0 }, true},
		{"sub-second ttl", func(c *Config) { c.TTL = 100 * time.Millisecond }, true},
		{"zero page size", func(c *Config) { c.PageSize = 0 }, true},
		{"zero latest limit", func(c *Config) { c.LatestLimit = 0 }, true},
		{"zero capacity", func(c *Config) { c.Capacity = 0 }, true},
		{"zero shards", func(c *Config) { c.NumShards = 0 }, true},
		{"eviction percentage too high", func(c *Config) { c.EvictionPercentage = 101 }, true},
		{"eviction interval optional", func(c *Config) { c.EvictionInterval = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Errorf("expected validation error but got none")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("expected no error but got: %v", err)
			}
		})
	}
}
