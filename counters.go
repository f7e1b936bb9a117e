package ctxcache

import (
	"github.com/Borislavv/go-ctx-cache/model"
	"sync/atomic"
)

// counters are atomics so that stats readers (telemetry, metrics) never need the owner's lock.
type counters struct {
	accesses  atomic.Int64
	hits      atomic.Int64
	admitted  atomic.Int64
	rejected  atomic.Int64
	evictions atomic.Int64

	hotHits   atomic.Int64
	hotMisses atomic.Int64
	hotPurged atomic.Int64

	entries      atomic.Int64
	hotEntries   atomic.Int64
	payloadBytes atomic.Int64
}

func newCounters() *counters {
	return &counters{}
}

func (c *counters) snapshot() model.Stats {
	return model.Stats{
		Accesses:     c.accesses.Load(),
		Hits:         c.hits.Load(),
		Admitted:     c.admitted.Load(),
		Rejected:     c.rejected.Load(),
		Evictions:    c.evictions.Load(),
		HotHits:      c.hotHits.Load(),
		HotMisses:    c.hotMisses.Load(),
		HotPurged:    c.hotPurged.Load(),
		Entries:      c.entries.Load(),
		HotEntries:   c.hotEntries.Load(),
		PayloadBytes: c.payloadBytes.Load(),
	}
}
