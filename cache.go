// Package ctxcache caches computed data per request context, but only for the most requested contexts.
//
// The number of request contexts (combinations of environment, language, device, partner,
// experiment...) is often huge while a small fraction of them serves almost all the traffic.
// Caching everything bloats the heap and the GC pauses with it, so a Cache keeps a bounded number of
// slots and hands them to the contexts with the most hits. Optionally, payloads are kept serialized
// (fewer live objects) behind a short-lived hot tier of deserialized values, and values returned by Get
// can be isolated from caller mutation.
//
// A Cache is meant to be driven by a single owner and does no locking. Use Sharded when several
// goroutines share a cache.
package ctxcache

import (
	"errors"
	"fmt"
	"github.com/Borislavv/go-ctx-cache/config"
	"github.com/Borislavv/go-ctx-cache/internal/admission"
	"github.com/Borislavv/go-ctx-cache/internal/codec"
	"github.com/Borislavv/go-ctx-cache/internal/hottier"
	"github.com/Borislavv/go-ctx-cache/isolation"
	"github.com/Borislavv/go-ctx-cache/model"
	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
)

// ErrInvalidArgument is returned by Set when the data cannot be serialized in a mode that requires it.
var ErrInvalidArgument = errors.New("invalid argument")

type entry struct {
	raw     any         // plain storage
	payload []byte      // serialized storage
	shape   codec.Shape // Go types to decode payload into
}

// Cache is the context cache engine. It is not safe for concurrent use.
type Cache struct {
	opts     config.Options
	logger   zerolog.Logger
	clock    clock.Clock
	codec    codec.Codec
	admitter *admission.Controller
	entries  map[string]entry
	hot      *hottier.Tier // nil unless payloads are stored serialized
	isolator isolation.Isolator
	counters *counters
}

// Option customizes a Cache built by New or NewSharded.
type Option func(*Cache)

// WithClock overrides the clock driving hot tier expiry.
func WithClock(clk clock.Clock) Option {
	return func(c *Cache) { c.clock = clk }
}

func withCodec(cd codec.Codec) Option {
	return func(c *Cache) { c.codec = cd }
}

// New validates cfg and builds a cache. A nil cfg means defaults.
// Invalid configuration fails with an error wrapping config.ErrInvalidConfiguration.
func New(cfg *config.Cache, logger zerolog.Logger, opts ...Option) (*Cache, error) {
	normalized, err := cfg.Normalize()
	if err != nil {
		return nil, err
	}
	return newCache(normalized, logger, opts...)
}

func newCache(opts config.Options, logger zerolog.Logger, options ...Option) (*Cache, error) {
	c := &Cache{
		opts:     opts,
		logger:   logger,
		entries:  make(map[string]entry, opts.MaxCacheSize),
		admitter: admission.New(opts.MaxCacheSize, opts.CacheHitThreshold),
		counters: newCounters(),
	}
	for _, option := range options {
		option(c)
	}

	if c.clock == nil {
		c.clock = clock.New()
	}
	if c.codec == nil {
		cd, err := codec.New(opts)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", config.ErrInvalidConfiguration, err)
		}
		c.codec = cd
	}
	if opts.StoreObjectsSerialized {
		c.hot = hottier.New(opts.HotCacheTTL, c.clock)
	}
	c.isolator = isolation.New(opts.IsolationMode, c.codec)

	return c, nil
}

// Set offers data computed for a context. It returns true when the data is stored (now or before)
// and false when the admission policy keeps the context out.
func (c *Cache) Set(key string, data any) (bool, error) {
	if c.admitter.Contains(key) {
		return true, nil
	}

	res := c.admitter.Decide(key)
	if !res.Decision.Allowed() {
		c.admitter.Observe(key)
		c.counters.rejected.Add(1)
		c.logger.Debug().Str("context", key).Str("decision", res.Decision.String()).Msg("admission rejected")
		return false, nil
	}

	e, err := c.makeEntry(data)
	if err != nil {
		return false, fmt.Errorf("%w: data of context %q: %w", ErrInvalidArgument, key, err)
	}

	c.admitter.Commit(key, res)
	if res.Decision == admission.Replace {
		c.evict(res.Victim)
	}
	c.store(key, e, data)

	c.logger.Debug().Str("context", key).Str("decision", res.Decision.String()).Str("victim", res.Victim).Msg("context admitted")
	return true, nil
}

// Get returns the data of an admitted context. found is false for contexts that never made it
// into the cache. Every call counts as a hit for the context, found or not.
func (c *Cache) Get(key string) (value any, found bool, err error) {
	c.counters.accesses.Add(1)
	value, found, err = c.retrieve(key)
	c.admitter.Hit(key)

	if err != nil || !found {
		return nil, false, err
	}

	if value, err = c.isolator.Isolate(value); err != nil {
		return nil, false, fmt.Errorf("isolate context %q: %w", key, err)
	}
	return value, true, nil
}

// HitRate returns the share of Get calls that found their context admitted, 0 before any Get.
func (c *Cache) HitRate() float64 {
	return c.Stats().HitRate()
}

// Info returns the configuration and the state of every observed context.
func (c *Cache) Info() model.Info {
	info := model.Info{
		Config:   c.opts,
		Contexts: make(map[string]model.ContextInfo, c.admitter.Observed()),
	}
	c.admitter.Walk(func(key string, hits int64, cached bool) {
		info.Contexts[key] = model.ContextInfo{Hits: hits, Cached: cached}
	})
	return info
}

// Stats is safe to call concurrently with the owner.
func (c *Cache) Stats() model.Stats {
	return c.counters.snapshot()
}

// Contains reports whether the context is admitted.
func (c *Cache) Contains(key string) bool { return c.admitter.Contains(key) }

func (c *Cache) Len() int                { return len(c.entries) }
func (c *Cache) Options() config.Options { return c.opts }

/**
 * Private API.
 */

func (c *Cache) makeEntry(data any) (entry, error) {
	if c.opts.StoreObjectsSerialized {
		payload, err := c.codec.Marshal(data)
		if err != nil {
			return entry{}, err
		}
		return entry{payload: payload, shape: codec.ShapeOf(data)}, nil
	}

	if c.opts.IsolationMode == config.IsolationSerializeRoundtrip {
		// every read will round trip, refuse what cannot be read back
		if _, err := c.codec.Marshal(data); err != nil {
			return entry{}, err
		}
	}
	return entry{raw: data}, nil
}

func (c *Cache) store(key string, e entry, data any) {
	c.entries[key] = e
	c.counters.admitted.Add(1)
	c.counters.entries.Store(int64(len(c.entries)))

	if c.hot != nil {
		c.counters.payloadBytes.Add(int64(len(e.payload)))
		// likely to be read soon while handling the same request
		c.putHot(key, data)
	}
}

func (c *Cache) retrieve(key string) (any, bool, error) {
	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	c.counters.hits.Add(1)

	if c.hot == nil {
		return e.raw, true, nil
	}

	if v, hot := c.hot.Get(key); hot {
		c.counters.hotHits.Add(1)
		return v, true, nil
	}

	c.counters.hotMisses.Add(1)
	v, err := c.codec.Unmarshal(e.payload, e.shape)
	if err != nil {
		return nil, false, fmt.Errorf("decode context %q: %w", key, err)
	}
	c.putHot(key, v)

	return v, true, nil
}

func (c *Cache) putHot(key string, v any) {
	if purged := c.hot.Put(key, v); purged > 0 {
		c.counters.hotPurged.Add(int64(purged))
		c.logger.Debug().Int("purged", purged).Int("remaining", c.hot.Len()).Msg("hot tier purged")
	}
	c.counters.hotEntries.Store(int64(c.hot.Len()))
}

func (c *Cache) evict(victim string) {
	e := c.entries[victim]
	delete(c.entries, victim)
	c.counters.evictions.Add(1)
	c.counters.entries.Store(int64(len(c.entries)))

	if c.hot != nil {
		c.counters.payloadBytes.Add(-int64(len(e.payload)))
		c.hot.Remove(victim)
		c.counters.hotEntries.Store(int64(c.hot.Len()))
	}
}
