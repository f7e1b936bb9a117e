package metrics

import (
	"github.com/Borislavv/go-ctx-cache/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"strings"
	"testing"
)

type source struct {
	stats model.Stats
}

func (s *source) Stats() model.Stats { return s.stats }

// TestCollector_Values verifies that counters and gauges mirror the stats snapshot.
func TestCollector_Values(t *testing.T) {
	src := &source{stats: model.Stats{Accesses: 4, Hits: 3, Evictions: 1, Entries: 2}}
	c := NewCollector("", src, nil)

	expected := `
# HELP ctxcache_accesses_total Number of Get calls.
# TYPE ctxcache_accesses_total counter
ctxcache_accesses_total 4
# HELP ctxcache_entries Number of admitted contexts.
# TYPE ctxcache_entries gauge
ctxcache_entries 2
# HELP ctxcache_evictions_total Number of contexts evicted to make room.
# TYPE ctxcache_evictions_total counter
ctxcache_evictions_total 1
# HELP ctxcache_hit_ratio Ratio of hits to accesses since start.
# TYPE ctxcache_hit_ratio gauge
ctxcache_hit_ratio 0.75
`
	require.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected),
		"ctxcache_accesses_total", "ctxcache_entries", "ctxcache_evictions_total", "ctxcache_hit_ratio"))
}

// TestCollector_ReadsOnEveryScrape verifies that a scrape sees the current snapshot.
func TestCollector_ReadsOnEveryScrape(t *testing.T) {
	src := &source{}
	c := NewCollector("app", src, prometheus.Labels{"cache": "contexts"})

	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(c))
	require.Equal(t, 12, testutil.CollectAndCount(c))

	src.stats.Hits = 9
	expected := `
# HELP app_hits_total Number of Get calls served from the cache.
# TYPE app_hits_total counter
app_hits_total{cache="contexts"} 9
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "app_hits_total"))
}
