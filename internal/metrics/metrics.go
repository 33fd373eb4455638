// Package metrics holds the Prometheus collectors shared by the storefront packages.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "path", "status"},
	)

	collectionMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_collection_mutations_total",
			Help: "Total number of collection mutations by outcome",
		},
		[]string{"collection", "action", "outcome"},
	)

	snapshotFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_snapshot_failures_total",
			Help: "Total number of snapshot save or load failures",
		},
		[]string{"key", "op"},
	)

	catalogFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_catalog_fetches_total",
			Help: "Total number of catalog fetches by outcome",
		},
		[]string{"operation", "status"},
	)
)

// RecordMutation counts a collection mutation. outcome is "applied", "noop" or "rejected".
func RecordMutation(collection, action, outcome string) {
	collectionMutations.WithLabelValues(collection, action, outcome).Inc()
}

// RecordSnapshotFailure counts a swallowed persistence failure.
func RecordSnapshotFailure(key, op string) {
	snapshotFailures.WithLabelValues(key, op).Inc()
}

// RecordCatalogFetch counts a catalog fetch.
func RecordCatalogFetch(operation string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	catalogFetches.WithLabelValues(operation, status).Inc()
}
