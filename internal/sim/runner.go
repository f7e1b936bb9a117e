package sim

import (
	"context"
	"errors"
	"fmt"
	"github.com/Borislavv/go-ctx-cache/internal/shared/rate"
	"github.com/Borislavv/go-ctx-cache/model"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"sync/atomic"
	"time"
)

var ErrInvalidRun = errors.New("invalid run")

// Target is the cache under load. It must be safe for concurrent use.
type Target interface {
	Set(key string, data any) (bool, error)
	Get(key string) (any, bool, error)
	Stats() model.Stats
}

// ComputeFunc produces the data of a context on a cache miss.
type ComputeFunc func(key string) any

type Config struct {
	Requests int
	Workers  int
	// Rate is the total number of requests per second; 0 means unlimited.
	Rate    int
	Skew    float64
	Seed    int64
	Compute ComputeFunc
}

type Summary struct {
	Requests  int64         `json:"requests"`
	Hits      int64         `json:"hits"`
	Computed  int64         `json:"computed"`
	Admitted  int64         `json:"admitted"`
	Rejected  int64         `json:"rejected"`
	Evictions int64         `json:"evictions"`
	Entries   int64         `json:"entries"`
	HitRate   float64       `json:"hitRate"`
	Elapsed   time.Duration `json:"elapsed"`
}

func (s Summary) MarshalZerologObject(e *zerolog.Event) {
	e.Int64("requests", s.Requests).
		Int64("hits", s.Hits).
		Int64("computed", s.Computed).
		Int64("admitted", s.Admitted).
		Int64("rejected", s.Rejected).
		Int64("evictions", s.Evictions).
		Int64("entries", s.Entries).
		Float64("hit_rate", s.HitRate).
		Dur("elapsed", s.Elapsed)
}

// DefaultCompute builds the metadata a request handler would derive from its context.
func DefaultCompute(key string) any {
	return map[string]any{
		"context": key,
		"routing": map[string]any{"backend": "default", "weight": 1.0},
		"flags":   []any{"a", "b"},
	}
}

// Run replays cfg.Requests get/compute/set cycles against target using cfg.Workers goroutines.
// It stops at the first cache error or when ctx is done.
func Run(ctx context.Context, target Target, dims Dimensions, cfg Config, logger zerolog.Logger) (Summary, error) {
	if cfg.Requests <= 0 || cfg.Workers <= 0 {
		return Summary{}, fmt.Errorf("%w: requests and workers must be positive", ErrInvalidRun)
	}
	if err := dims.Validate(); err != nil {
		return Summary{}, err
	}
	if cfg.Compute == nil {
		cfg.Compute = DefaultCompute
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pacer := rate.NewPacer(ctx, cfg.Rate)
	before := target.Stats()
	start := time.Now()

	var computed atomic.Int64
	var issued atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < cfg.Workers; w++ {
		gen := NewGenerator(dims, cfg.Skew, cfg.Seed+int64(w))
		g.Go(func() error {
			for issued.Add(1) <= int64(cfg.Requests) {
				if !pacer.Take(gctx) {
					return gctx.Err()
				}

				key := gen.Next()
				_, found, err := target.Get(key)
				if err != nil {
					return err
				}
				if found {
					continue
				}

				computed.Add(1)
				if _, err = target.Set(key, cfg.Compute(key)); err != nil {
					return err
				}
			}
			return nil
		})
	}

	err := g.Wait()
	after := target.Stats()

	summary := Summary{
		Requests:  after.Accesses - before.Accesses,
		Hits:      after.Hits - before.Hits,
		Computed:  computed.Load(),
		Admitted:  after.Admitted - before.Admitted,
		Rejected:  after.Rejected - before.Rejected,
		Evictions: after.Evictions - before.Evictions,
		Entries:   after.Entries,
		Elapsed:   time.Since(start),
	}
	if summary.Requests > 0 {
		summary.HitRate = float64(summary.Hits) / float64(summary.Requests)
	}

	logger.Debug().Int("workers", cfg.Workers).Int("rate", cfg.Rate).Float64("skew", cfg.Skew).Msg("simulation finished")
	return summary, err
}
