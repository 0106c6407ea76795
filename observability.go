package ttcache

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/ttcache/ttcache"

// Observable exposes cumulative counters, for metrics export. *TTCache
// and *TaggedStore both implement it.
type Observable interface {
	Stats() Stats
}

// MetricsRegistrar registers named Observable caches with
// OpenTelemetry, mirroring how many instances of ttcache may coexist
// in one process (e.g. one per tenant, or one per upstream store).
type MetricsRegistrar struct {
	mu     sync.RWMutex
	caches map[string]Observable

	hits, misses, rotations, readonlyFallback metric.Int64ObservableCounter
}

// NewMetricsRegistrar returns an empty registrar. Call Register for
// each cache instance to export, then Start once to wire the callback.
func NewMetricsRegistrar() *MetricsRegistrar {
	return &MetricsRegistrar{caches: make(map[string]Observable)}
}

// Register adds (or replaces) a named Observable to export.
func (r *MetricsRegistrar) Register(name string, c Observable) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.caches[name] = c
}

// Start registers the OpenTelemetry instruments and callback. Call it
// once after every cache instance of interest has been Registered.
func (r *MetricsRegistrar) Start() error {
	meter := otel.GetMeterProvider().Meter(instrumentationName)

	var err error
	r.hits, err = meter.Int64ObservableCounter(
		"ttcache.hits",
		metric.WithDescription("Total tagged-store reads that returned a still-valid value"),
	)
	if err != nil {
		return err
	}

	r.misses, err = meter.Int64ObservableCounter(
		"ttcache.misses",
		metric.WithDescription("Total tagged-store reads that found nothing valid"),
	)
	if err != nil {
		return err
	}

	r.rotations, err = meter.Int64ObservableCounter(
		"ttcache.tag_rotations",
		metric.WithDescription("Total tag fingerprints rotated by ClearTags"),
	)
	if err != nil {
		return err
	}

	r.readonlyFallback, err = meter.Int64ObservableCounter(
		"ttcache.readonly_fallback",
		metric.WithDescription("Total FetchOrMakeTagHashes calls that degraded to ephemeral fingerprints because the store was unavailable"),
	)
	if err != nil {
		return err
	}

	_, err = meter.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
		r.mu.RLock()
		defer r.mu.RUnlock()

		for name, c := range r.caches {
			stats := c.Stats()
			attrs := metric.WithAttributes(attribute.String("ttcache.name", name))

			o.ObserveInt64(r.hits, stats.Hits, attrs)
			o.ObserveInt64(r.misses, stats.Misses, attrs)
			o.ObserveInt64(r.rotations, stats.Rotations, attrs)
			o.ObserveInt64(r.readonlyFallback, stats.ReadonlyFallback, attrs)
		}
		return nil
	}, r.hits, r.misses, r.rotations, r.readonlyFallback)

	return err
}
