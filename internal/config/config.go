// Package config loads the application configuration from defaults, an
// optional YAML file, and environment variable overrides, in that order of
// precedence.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-catalog-cache/cache"
)

// Duration is a time.Duration that unmarshals from YAML strings like "4h"
// or "30s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("config: invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the standard library representation.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Server holds the HTTP listener settings.
type Server struct {
	Addr            string   `yaml:"addr"`
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
}

// Database holds the Postgres connection settings.
type Database struct {
	DSN string `yaml:"dsn"`
}

// Cache holds the cache engine settings. Zero values fall back to the
// engine defaults.
type Cache struct {
	TTL                Duration `yaml:"ttl"`
	PageSize           int      `yaml:"page_size"`
	LatestLimit        int      `yaml:"latest_limit"`
	Capacity           int      `yaml:"capacity"`
	NumShards          int      `yaml:"num_shards"`
	EvictionPercentage int      `yaml:"eviction_percentage"`
}

// Logging holds the zap logger settings.
type Logging struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Config is the full application configuration.
type Config struct {
	Server   Server   `yaml:"server"`
	Database Database `yaml:"database"`
	Cache    Cache    `yaml:"cache"`
	Logging  Logging  `yaml:"logging"`
}

// Default returns the configuration the application runs with when no file
// and no environment overrides are present, except for the database DSN
// which has no usable default.
func Default() *Config {
	return &Config{
		Server: Server{
			Addr:            ":4000",
			ReadTimeout:     Duration(15 * time.Second),
			WriteTimeout:    Duration(30 * time.Second),
			ShutdownTimeout: Duration(10 * time.Second),
			AllowedOrigins:  []string{"*"},
		},
		Logging: Logging{
			Level: "info",
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at path when
// it exists, then environment variables. A missing file is not an error; a
// malformed one is.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// Defaults plus environment only.
		default:
			return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays environment variables, the highest-priority source.
func (c *Config) applyEnv() {
	if v := os.Getenv("ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Addr = ":" + v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			c.Cache.TTL = Duration(parsed)
		}
	}
	if v := os.Getenv("CACHE_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Cache.PageSize = n
		}
	}
	if v := os.Getenv("CACHE_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Cache.Capacity = n
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks the fields the application cannot run without. Cache
// settings are validated separately by cache.Config.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(&c.Server,
		validation.Field(&c.Server.Addr, validation.Required),
	); err != nil {
		return fmt.Errorf("config: server: %w", err)
	}
	if err := validation.ValidateStruct(&c.Database,
		validation.Field(&c.Database.DSN, validation.Required),
	); err != nil {
		return fmt.Errorf("config: database: %w", err)
	}
	if err := validation.ValidateStruct(&c.Logging,
		validation.Field(&c.Logging.Level,
			validation.Required,
			validation.In("debug", "info", "warn", "error"),
		),
	); err != nil {
		return fmt.Errorf("config: logging: %w", err)
	}
	return c.CacheConfig().Validate()
}

// CacheConfig translates the cache section into the engine configuration,
// filling unset fields with the engine defaults.
func (c *Config) CacheConfig() cache.Config {
	out := cache.DefaultConfig()
	if c.Cache.TTL > 0 {
		out.TTL = c.Cache.TTL.Std()
	}
	if c.Cache.PageSize > 0 {
		out.PageSize = c.Cache.PageSize
	}
	if c.Cache.LatestLimit > 0 {
		out.LatestLimit = c.Cache.LatestLimit
	}
	if c.Cache.Capacity > 0 {
		out.Capacity = c.Cache.Capacity
	}
	if c.Cache.NumShards > 0 {
		out.NumShards = c.Cache.NumShards
	}
	if c.Cache.EvictionPercentage > 0 {
		out.EvictionPercentage = c.Cache.EvictionPercentage
	}
	return out
}
