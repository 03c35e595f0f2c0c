package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Price lookup passes.
const (
	PassExact = "exact"
	PassFuzzy = "fuzzy"
)

// Price lookup outcomes.
const (
	OutcomeResolved  = "resolved"
	OutcomeAmbiguous = "ambiguous"
	OutcomeNotFound  = "not_found"
	OutcomeRejected  = "rejected"
	OutcomeUpstream  = "upstream_error"
)

// PricingMetrics records price cache and catalog lookup activity.
type PricingMetrics struct {
	cacheHits     prometheus.Counter
	cacheMisses   prometheus.Counter
	lookups       *prometheus.CounterVec
	batchDuration *prometheus.HistogramVec
}

// NewPricingMetrics registers the pricing metrics on the provided registerer.
func NewPricingMetrics(reg prometheus.Registerer) *PricingMetrics {
	if reg == nil {
		return &PricingMetrics{}
	}
	hits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "price_cache_hits_total",
		Help: "Price cache reads served from a fresh entry.",
	})
	misses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "price_cache_misses_total",
		Help: "Price cache reads that required resolution.",
	})
	lookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "price_catalog_lookups_total",
		Help: "Catalog price lookups by pass and outcome.",
	}, []string{"pass", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "price_resolve_batch_duration_seconds",
		Help:    "Duration of price resolution batches in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"result"})
	reg.MustRegister(hits, misses, lookups, duration)
	return &PricingMetrics{
		cacheHits:     hits,
		cacheMisses:   misses,
		lookups:       lookups,
		batchDuration: duration,
	}
}

// CacheHit increments the hit counter.
func (m *PricingMetrics) CacheHit() {
	if m == nil || m.cacheHits == nil {
		return
	}
	m.cacheHits.Inc()
}

// CacheMiss increments the miss counter.
func (m *PricingMetrics) CacheMiss() {
	if m == nil || m.cacheMisses == nil {
		return
	}
	m.cacheMisses.Inc()
}

// Lookup records one catalog lookup for the pass with its outcome.
func (m *PricingMetrics) Lookup(pass, outcome string) {
	if m == nil || m.lookups == nil {
		return
	}
	m.lookups.WithLabelValues(normalizeLabel(pass), normalizeLabel(outcome)).Inc()
}

// ObserveBatch records the duration of one resolution batch.
func (m *PricingMetrics) ObserveBatch(duration time.Duration, err error) {
	if m == nil || m.batchDuration == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.batchDuration.WithLabelValues(result).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
