// Package metrics exposes context cache statistics as Prometheus metrics.
package metrics

import (
	"github.com/Borislavv/go-ctx-cache/model"
	"github.com/prometheus/client_golang/prometheus"
)

const DefaultNamespace = "ctxcache"

type Source interface {
	Stats() model.Stats
}

type metric struct {
	desc  *prometheus.Desc
	typ   prometheus.ValueType
	value func(s model.Stats) float64
}

// Collector reads a fresh Stats snapshot on every scrape.
type Collector struct {
	source  Source
	metrics []metric
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector describes the metrics of source under namespace (DefaultNamespace when empty).
func NewCollector(namespace string, source Source, labels prometheus.Labels) *Collector {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	def := func(name, help string, typ prometheus.ValueType, value func(s model.Stats) float64) metric {
		return metric{
			desc:  prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, nil, labels),
			typ:   typ,
			value: value,
		}
	}
	counter := func(name, help string, value func(s model.Stats) int64) metric {
		return def(name, help, prometheus.CounterValue, func(s model.Stats) float64 { return float64(value(s)) })
	}
	gauge := func(name, help string, value func(s model.Stats) int64) metric {
		return def(name, help, prometheus.GaugeValue, func(s model.Stats) float64 { return float64(value(s)) })
	}

	return &Collector{
		source: source,
		metrics: []metric{
			counter("accesses_total", "Number of Get calls.", func(s model.Stats) int64 { return s.Accesses }),
			counter("hits_total", "Number of Get calls served from the cache.", func(s model.Stats) int64 { return s.Hits }),
			counter("admitted_total", "Number of contexts admitted into the cache.", func(s model.Stats) int64 { return s.Admitted }),
			counter("rejected_total", "Number of Set calls refused by admission control.", func(s model.Stats) int64 { return s.Rejected }),
			counter("evictions_total", "Number of contexts evicted to make room.", func(s model.Stats) int64 { return s.Evictions }),
			counter("hot_hits_total", "Number of reads served by the hot tier.", func(s model.Stats) int64 { return s.HotHits }),
			counter("hot_misses_total", "Number of reads that decoded a serialized entry.", func(s model.Stats) int64 { return s.HotMisses }),
			counter("hot_purged_total", "Number of hot tier entries expired by TTL.", func(s model.Stats) int64 { return s.HotPurged }),
			gauge("entries", "Number of admitted contexts.", func(s model.Stats) int64 { return s.Entries }),
			gauge("hot_entries", "Number of decoded values held by the hot tier.", func(s model.Stats) int64 { return s.HotEntries }),
			gauge("payload_bytes", "Size of stored serialized payloads.", func(s model.Stats) int64 { return s.PayloadBytes }),
			def("hit_ratio", "Ratio of hits to accesses since start.", prometheus.GaugeValue, model.Stats.HitRate),
		},
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, m := range c.metrics {
		ch <- m.desc
	}
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.source.Stats()
	for _, m := range c.metrics {
		ch <- prometheus.MustNewConstMetric(m.desc, m.typ, m.value(s))
	}
}
