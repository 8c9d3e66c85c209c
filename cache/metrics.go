package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks cache effectiveness. A nil *Metrics is a valid no-op, so
// instrumentation stays optional.
type Metrics struct {
	hits        prometheus.Counter
	misses      prometheus.Counter
	sets        prometheus.Counter
	invalidated prometheus.Counter
}

// NewMetrics registers the cache counters with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		hits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "catalog_cache",
			Name:      "hits_total",
			Help:      "Reads served from the cache.",
		}),
		misses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "catalog_cache",
			Name:      "misses_total",
			Help:      "Reads that fell through to the source of truth.",
		}),
		sets: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "catalog_cache",
			Name:      "sets_total",
			Help:      "Entries populated after a miss.",
		}),
		invalidated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "catalog_cache",
			Name:      "invalidated_keys_total",
			Help:      "Keys purged by write-triggered invalidation.",
		}),
	}
}

func (m *Metrics) hit() {
	if m != nil {
		m.hits.Inc()
	}
}

func (m *Metrics) miss() {
	if m != nil {
		m.misses.Inc()
	}
}

func (m *Metrics) set() {
	if m != nil {
		m.sets.Inc()
	}
}

// Invalidated records n keys purged by the invalidation engine.
func (m *Metrics) Invalidated(n int) {
	if m != nil && n > 0 {
		m.invalidated.Add(float64(n))
	}
}
