package telemetry

import (
	"context"
	"github.com/Borislavv/go-ctx-cache/config"
	"github.com/Borislavv/go-ctx-cache/internal/shared/bytes"
	"github.com/Borislavv/go-ctx-cache/model"
	"github.com/rs/zerolog"
	"time"
)

type Source interface {
	Stats() model.Stats
}

type Logger interface {
	Interval() time.Duration
	Close() error
}

type Logs struct {
	ctx      context.Context
	cancel   context.CancelFunc
	opts     config.Options
	logger   zerolog.Logger
	source   Source
	interval time.Duration
}

// New starts a loop logging per-interval deltas of source when opts.TelemetryInterval is set.
func New(ctx context.Context, opts config.Options, logger zerolog.Logger, source Source) *Logs {
	ctx, cancel := context.WithCancel(ctx)
	return (&Logs{
		ctx:      ctx,
		cancel:   cancel,
		opts:     opts,
		logger:   logger,
		source:   source,
		interval: opts.TelemetryInterval,
	}).run()
}

func (l *Logs) Interval() time.Duration {
	return l.interval
}

func (l *Logs) Close() error {
	l.cancel()
	return nil
}

func (l *Logs) run() *Logs {
	if l.interval > 0 {
		go l.loop()
	}
	return l
}

func (l *Logs) loop() {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	prev := l.source.Stats()

	for {
		select {
		case <-l.ctx.Done():
			return

		case <-ticker.C:
			cur := l.source.Stats()
			d := deltaSnapshot(prev, cur)
			prev = cur

			interval := l.interval.String()

			l.logger.Info().
				Str("interval", interval).
				Int64("accesses", d.Accesses).
				Int64("hits", d.Hits).
				Float64("hit_rate", d.HitRate()).
				Float64("total_hit_rate", cur.HitRate()).
				Msg("reads")

			l.logger.Info().
				Str("interval", interval).
				Int64("admitted", d.Admitted).
				Int64("rejected", d.Rejected).
				Int64("evictions", d.Evictions).
				Msg("admission_controller")

			if l.opts.StoreObjectsSerialized {
				l.logger.Info().
					Str("interval", interval).
					Int64("hits", d.HotHits).
					Int64("misses", d.HotMisses).
					Int64("purged", d.HotPurged).
					Int64("entries", cur.HotEntries).
					Msg("hot_tier")
			}

			l.logger.Info().
				Str("interval", interval).
				Int64("entries", cur.Entries).
				Int("capacity", l.opts.MaxCacheSize).
				Str("payload", bytes.FmtMem(uint64(max(cur.PayloadBytes, 0)))).
				Msg("storage")
		}
	}
}

// deltaSnapshot converts cumulative counters to per-interval deltas; gauges are taken from cur.
// If counters reset (cur < prev), it treats cur as the delta.
func deltaSnapshot(prev, cur model.Stats) model.Stats {
	return model.Stats{
		Accesses:  delta(prev.Accesses, cur.Accesses),
		Hits:      delta(prev.Hits, cur.Hits),
		Admitted:  delta(prev.Admitted, cur.Admitted),
		Rejected:  delta(prev.Rejected, cur.Rejected),
		Evictions: delta(prev.Evictions, cur.Evictions),

		HotHits:   delta(prev.HotHits, cur.HotHits),
		HotMisses: delta(prev.HotMisses, cur.HotMisses),
		HotPurged: delta(prev.HotPurged, cur.HotPurged),

		Entries:      cur.Entries,
		HotEntries:   cur.HotEntries,
		PayloadBytes: cur.PayloadBytes,
	}
}

func delta(prev, cur int64) int64 {
	if cur >= prev {
		return cur - prev
	}
	return cur
}
