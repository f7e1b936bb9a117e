package config

import "time"

// Cache is the raw configuration of a context cache as read from YAML or built in code.
// Optional numeric options are pointers so that an explicit zero stays distinguishable from "unset".
// Use Normalize to obtain the validated Options the engine runs with.
type Cache struct {
	// MaxCacheSize is the maximum number of contexts for which data is kept.
	// Defaults to 100.
	MaxCacheSize *int `yaml:"max_cache_size"`

	// CacheHitThreshold is the number of Get calls a context must have received before Set may admit it.
	// It keeps one-off contexts out of the cache right after startup. Defaults to 0.
	CacheHitThreshold *int64 `yaml:"cache_hit_threshold"`

	// StoreObjectsSerialized stores payloads serialized and enables the hot tier of deserialized values.
	StoreObjectsSerialized bool `yaml:"store_objects_serialized"`

	// HotCacheTTL is how long a deserialized value stays in the hot tier since its last access.
	// Only read when StoreObjectsSerialized is enabled. Defaults to 1s.
	// In YAML it is a duration string ("1500ms", "1s"); bare integers are rejected.
	HotCacheTTL *time.Duration `yaml:"hot_cache_ttl"`

	// IsolationMode selects the copy protection applied to values returned by Get.
	IsolationMode IsolationMode `yaml:"isolation_mode"`

	// Compression configures zstd compression of serialized payloads.
	// If nil, payloads are stored as plain JSON. Only read when StoreObjectsSerialized is enabled.
	Compression *CompressionCfg `yaml:"compression"`

	// Shards is the number of independent engines behind a Sharded cache (rounded up to a power of two).
	// Ignored by a plain Cache. Defaults to 1.
	Shards int `yaml:"shards"`

	// Telemetry configures periodic stats logs of a Sharded cache.
	// If nil, no telemetry goroutine is started.
	Telemetry *TelemetryCfg `yaml:"telemetry"`
}

// Ptr is a helper for filling optional fields in code.
func Ptr[T any](v T) *T { return &v }
