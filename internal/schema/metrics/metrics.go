package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the field schema registry.
type Metrics struct {
	// Registry mutations by operation: "create", "update", "delete"
	FieldMutations *prometheus.CounterVec

	// Definitions cache effectiveness
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter
}

// New creates a new Metrics instance with all schema registry metrics registered.
func New() *Metrics {
	return &Metrics{
		FieldMutations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "siteguard_schema_field_mutations_total",
			Help: "Total field definition mutations by operation",
		}, []string{"operation"}),

		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "siteguard_schema_cache_hits_total",
			Help: "Definition snapshot reads served from cache",
		}),

		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "siteguard_schema_cache_misses_total",
			Help: "Definition snapshot reads that fell through to the store",
		}),
	}
}

// IncrementMutation records a registry mutation.
func (m *Metrics) IncrementMutation(operation string) {
	if m != nil {
		m.FieldMutations.WithLabelValues(operation).Inc()
	}
}

// IncrementCacheHit records a snapshot read served from cache.
func (m *Metrics) IncrementCacheHit() {
	if m != nil {
		m.CacheHits.Inc()
	}
}

// IncrementCacheMiss records a snapshot read that missed the cache.
func (m *Metrics) IncrementCacheMiss() {
	if m != nil {
		m.CacheMisses.Inc()
	}
}
