package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inkwell_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// SidebarRecomputes counts full sidebar aggregate recomputations
	// (cache misses on the sidebar key).
	SidebarRecomputes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inkwell_sidebar_recomputes_total",
		Help: "Total number of sidebar aggregate recomputations",
	})

	// TokensIssued counts bearer tokens issued by the API login endpoint.
	TokensIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inkwell_tokens_issued_total",
		Help: "Total number of bearer tokens issued",
	})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
