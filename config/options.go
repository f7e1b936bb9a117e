package config

import (
	"errors"
	"fmt"
	"time"
)

const (
	DefaultMaxCacheSize      = 100
	DefaultCacheHitThreshold = 0
	DefaultHotCacheTTL       = time.Second
	DefaultShards            = 1

	minCompressionLevel = 1
	maxCompressionLevel = 4
)

var ErrInvalidConfiguration = errors.New("invalid configuration")

// Options is the normalized, immutable configuration an engine runs with.
type Options struct {
	MaxCacheSize           int           `yaml:"max_cache_size" json:"maxCacheSize"`
	CacheHitThreshold      int64         `yaml:"cache_hit_threshold" json:"cacheHitThreshold"`
	StoreObjectsSerialized bool          `yaml:"store_objects_serialized" json:"storeObjectsSerialized"`
	HotCacheTTL            time.Duration `yaml:"hot_cache_ttl,omitempty" json:"hotCacheTTL,omitempty"`
	IsolationMode          IsolationMode `yaml:"isolation_mode" json:"isolationMode"`
	CompressionLevel       int           `yaml:"compression_level,omitempty" json:"compressionLevel,omitempty"`
	Shards                 int           `yaml:"shards" json:"shards"`
	TelemetryInterval      time.Duration `yaml:"telemetry_interval,omitempty" json:"telemetryInterval,omitempty"`
}

// IsCompressed reports whether serialized payloads are zstd compressed.
func (o Options) IsCompressed() bool {
	return o.StoreObjectsSerialized && o.CompressionLevel > 0
}

// Normalize validates the provided options and fills the missing ones with defaults.
// Any invalid value fails the whole call with an error wrapping ErrInvalidConfiguration.
// A nil config yields the defaults.
func (cfg *Cache) Normalize() (Options, error) {
	opts := Options{
		MaxCacheSize:      DefaultMaxCacheSize,
		CacheHitThreshold: DefaultCacheHitThreshold,
		IsolationMode:     IsolationNone,
		Shards:            DefaultShards,
	}
	if cfg == nil {
		return opts, nil
	}

	if cfg.MaxCacheSize != nil {
		if *cfg.MaxCacheSize <= 0 {
			return Options{}, invalid("max_cache_size", "must be positive", *cfg.MaxCacheSize)
		}
		opts.MaxCacheSize = *cfg.MaxCacheSize
	}

	// An explicit zero is a valid threshold: admit on the first attempt.
	if cfg.CacheHitThreshold != nil {
		if *cfg.CacheHitThreshold < 0 {
			return Options{}, invalid("cache_hit_threshold", "must not be negative", *cfg.CacheHitThreshold)
		}
		opts.CacheHitThreshold = *cfg.CacheHitThreshold
	}

	opts.StoreObjectsSerialized = cfg.StoreObjectsSerialized
	if opts.StoreObjectsSerialized {
		opts.HotCacheTTL = DefaultHotCacheTTL
		if cfg.HotCacheTTL != nil {
			if *cfg.HotCacheTTL <= 0 {
				return Options{}, invalid("hot_cache_ttl", "must be positive", *cfg.HotCacheTTL)
			}
			opts.HotCacheTTL = *cfg.HotCacheTTL
		}

		if cfg.Compression.Enabled() {
			lvl := cfg.Compression.Level
			if lvl < minCompressionLevel || lvl > maxCompressionLevel {
				return Options{}, invalid("compression.level", "must be within [1..4]", lvl)
			}
			opts.CompressionLevel = lvl
		}
	}

	if cfg.IsolationMode != "" {
		if !cfg.IsolationMode.IsValid() {
			return Options{}, invalid("isolation_mode", "unknown mode", cfg.IsolationMode)
		}
		opts.IsolationMode = cfg.IsolationMode
	}

	if cfg.Shards < 0 {
		return Options{}, invalid("shards", "must not be negative", cfg.Shards)
	} else if cfg.Shards > 0 {
		opts.Shards = nextPow2(cfg.Shards)
	}
	// every shard owns at least one slot: shards never outnumber max_cache_size
	for opts.Shards > opts.MaxCacheSize {
		opts.Shards >>= 1
	}

	if cfg.Telemetry.Enabled() {
		if cfg.Telemetry.Interval <= 0 {
			return Options{}, invalid("telemetry.interval", "must be positive", cfg.Telemetry.Interval)
		}
		opts.TelemetryInterval = cfg.Telemetry.Interval
	}

	return opts, nil
}

func invalid(field, reason string, value any) error {
	return fmt.Errorf("%w: %s %s, got %v", ErrInvalidConfiguration, field, reason, value)
}

// nextPow2 returns the smallest power-of-two >= x.
func nextPow2(x int) int {
	p := 1
	for p < x {
		p <<= 1
	}
	return p
}
