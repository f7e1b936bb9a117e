package model

// Stats is a point-in-time snapshot of an engine's counters.
// Counters are cumulative (monotonic), gauges reflect the current size.
type Stats struct {
	Accesses  int64 // Get calls
	Hits      int64 // Get calls that found the key admitted
	Admitted  int64 // Set calls that stored data
	Rejected  int64 // Set calls refused by the warm-up guard or the eviction policy
	Evictions int64 // admitted contexts replaced by hotter ones

	HotHits   int64 // reads served by the hot tier
	HotMisses int64 // reads that had to deserialize the stored payload
	HotPurged int64 // hot tier entries dropped by purge sweeps

	Entries      int64 // gauge: admitted contexts
	HotEntries   int64 // gauge: hot tier entries
	PayloadBytes int64 // gauge: serialized payload bytes
}

// HitRate returns Hits/Accesses, or 0 when nothing was read yet.
func (s Stats) HitRate() float64 {
	if s.Accesses == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Accesses)
}

// Add sums two snapshots (used to aggregate shards).
func (s Stats) Add(o Stats) Stats {
	return Stats{
		Accesses:     s.Accesses + o.Accesses,
		Hits:         s.Hits + o.Hits,
		Admitted:     s.Admitted + o.Admitted,
		Rejected:     s.Rejected + o.Rejected,
		Evictions:    s.Evictions + o.Evictions,
		HotHits:      s.HotHits + o.HotHits,
		HotMisses:    s.HotMisses + o.HotMisses,
		HotPurged:    s.HotPurged + o.HotPurged,
		Entries:      s.Entries + o.Entries,
		HotEntries:   s.HotEntries + o.HotEntries,
		PayloadBytes: s.PayloadBytes + o.PayloadBytes,
	}
}
