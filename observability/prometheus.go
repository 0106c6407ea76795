package observability

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ttcache/ttcache"
)

// PrometheusCollector exports a single ttcache instance's counters to
// Prometheus.
type PrometheusCollector struct {
	cache     ttcache.Observable
	name      string
	hits      *prometheus.Desc
	misses    *prometheus.Desc
	rotations *prometheus.Desc
	readonly  *prometheus.Desc
}

// NewPrometheusCollector creates a collector for cache, labeled name
// under the given namespace/subsystem (e.g. "myapp", "ttcache").
func NewPrometheusCollector(cache ttcache.Observable, namespace, subsystem, name string) *PrometheusCollector {
	labels := []string{"ttcache"}

	return &PrometheusCollector{
		cache: cache,
		name:  name,
		hits: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, subsystem, "hits_total"),
			"Total tagged-store reads that returned a still-valid value",
			labels, nil,
		),
		misses: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, subsystem, "misses_total"),
			"Total tagged-store reads that found nothing valid",
			labels, nil,
		),
		rotations: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, subsystem, "tag_rotations_total"),
			"Total tag fingerprints rotated by ClearTags",
			labels, nil,
		),
		readonly: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, subsystem, "readonly_fallback_total"),
			"Total FetchOrMakeTagHashes calls that degraded to ephemeral fingerprints because the store was unavailable",
			labels, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *PrometheusCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.hits
	ch <- c.misses
	ch <- c.rotations
	ch <- c.readonly
}

// Collect implements prometheus.Collector.
func (c *PrometheusCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.cache.Stats()
	labelValues := []string{c.name}

	ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(stats.Hits), labelValues...)
	ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(stats.Misses), labelValues...)
	ch <- prometheus.MustNewConstMetric(c.rotations, prometheus.CounterValue, float64(stats.Rotations), labelValues...)
	ch <- prometheus.MustNewConstMetric(c.readonly, prometheus.CounterValue, float64(stats.ReadonlyFallback), labelValues...)
}
