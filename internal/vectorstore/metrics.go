package vectorstore

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DocumentsAdded counts chunks persisted to the index.
	// Labels: backend (chromem, qdrant)
	DocumentsAdded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "policyd",
			Subsystem: "vectorstore",
			Name:      "documents_added_total",
			Help:      "Total number of chunks persisted to the index",
		},
		[]string{"backend"},
	)

	// SearchesTotal counts similarity queries.
	// Labels: backend, result (success, error)
	SearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "policyd",
			Subsystem: "vectorstore",
			Name:      "searches_total",
			Help:      "Total number of similarity queries",
		},
		[]string{"backend", "result"},
	)

	// SearchDuration tracks similarity query latency.
	SearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "policyd",
			Subsystem: "vectorstore",
			Name:      "search_duration_seconds",
			Help:      "Duration of similarity queries in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"backend"},
	)
)

// recordAdd records persisted chunks for a backend.
func recordAdd(backend string, count int) {
	DocumentsAdded.WithLabelValues(backend).Add(float64(count))
}

// recordSearch records the outcome and latency of one query.
func recordSearch(backend string, start time.Time, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	SearchesTotal.WithLabelValues(backend, result).Inc()
	SearchDuration.WithLabelValues(backend).Observe(time.Since(start).Seconds())
}
