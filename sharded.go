package ctxcache

import (
	"context"
	"fmt"
	"github.com/Borislavv/go-ctx-cache/config"
	"github.com/Borislavv/go-ctx-cache/internal/codec"
	"github.com/Borislavv/go-ctx-cache/internal/telemetry"
	"github.com/Borislavv/go-ctx-cache/model"
	"github.com/rs/zerolog"
	"github.com/zeebo/xxh3"
	"io"
	"sync"
)

type ContextCache interface {
	Set(key string, data any) (bool, error)
	Get(key string) (value any, found bool, err error)
	HitRate() float64
	Info() model.Info
	Stats() model.Stats
}

var (
	_ ContextCache = (*Cache)(nil)
	_ ContextCache = (*Sharded)(nil)
)

// Sharded spreads contexts over independent caches, each guarded by its own lock,
// so it can be shared between goroutines. MaxCacheSize is split between shards (the first ones
// take the remainder), so the shards together never hold more than MaxCacheSize contexts.
// Admission and eviction decisions are taken per shard.
type Sharded struct {
	opts      config.Options
	mask      uint64
	shards    []*shard
	telemetry telemetry.Logger
	cancel    context.CancelFunc
}

var _ io.Closer = (*Sharded)(nil)

type shard struct {
	sync.Mutex
	cache *Cache
	_     [64]byte // cacheline padding
}

// NewSharded builds cfg.Shards caches and starts the telemetry logs when cfg.Telemetry is set.
// The logs stop when ctx is done or Close is called.
func NewSharded(ctx context.Context, cfg *config.Cache, logger zerolog.Logger, opts ...Option) (*Sharded, error) {
	normalized, err := cfg.Normalize()
	if err != nil {
		return nil, err
	}

	// One codec is shared by all shards.
	cd, err := codec.New(normalized)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalidConfiguration, err)
	}

	s := &Sharded{
		opts:   normalized,
		mask:   uint64(normalized.Shards - 1),
		shards: make([]*shard, normalized.Shards),
	}
	for i := range s.shards {
		perShard := normalized
		perShard.MaxCacheSize = shardCapacity(normalized.MaxCacheSize, normalized.Shards, i)

		c, err := newCache(perShard, logger.With().Int("shard", i).Logger(), append([]Option{withCodec(cd)}, opts...)...)
		if err != nil {
			return nil, err
		}
		s.shards[i] = &shard{cache: c}
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.telemetry = telemetry.New(ctx, normalized, logger, s)

	return s, nil
}

func (s *Sharded) Set(key string, data any) (bool, error) {
	sh := s.shard(key)
	sh.Lock()
	defer sh.Unlock()
	return sh.cache.Set(key, data)
}

func (s *Sharded) Get(key string) (any, bool, error) {
	sh := s.shard(key)
	sh.Lock()
	defer sh.Unlock()
	return sh.cache.Get(key)
}

func (s *Sharded) HitRate() float64 {
	return s.Stats().HitRate()
}

// Stats sums the shard counters without taking the shard locks.
func (s *Sharded) Stats() model.Stats {
	var total model.Stats
	for _, sh := range s.shards {
		total = total.Add(sh.cache.Stats())
	}
	return total
}

// Info merges the contexts of all shards. Shards are locked one at a time,
// so the result is not an atomic view of the whole cache.
func (s *Sharded) Info() model.Info {
	info := model.Info{Config: s.opts, Contexts: make(map[string]model.ContextInfo)}
	for _, sh := range s.shards {
		sh.Lock()
		for key, ctx := range sh.cache.Info().Contexts {
			info.Contexts[key] = ctx
		}
		sh.Unlock()
	}
	return info
}

func (s *Sharded) Len() int {
	var n int
	for _, sh := range s.shards {
		sh.Lock()
		n += sh.cache.Len()
		sh.Unlock()
	}
	return n
}

func (s *Sharded) Options() config.Options { return s.opts }

func (s *Sharded) Close() error {
	s.cancel()
	return s.telemetry.Close()
}

func (s *Sharded) shard(key string) *shard {
	return s.shards[xxh3.HashString(key)&s.mask]
}

// shardCapacity returns the slots of shard i when size slots are split between n shards.
func shardCapacity(size, n, i int) int {
	c := size / n
	if i < size%n {
		c++
	}
	return c
}
