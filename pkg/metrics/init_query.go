package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initQueryMetrics() {
	r.QueriesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "crosscheck_queries_total",
			Help: "Total number of GraphQL queries sent to the endpoints",
		},
		[]string{"role", "status"}, // reference|sample, ok|graphql_error|transport_error
	)

	r.QueryDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crosscheck_query_duration_seconds",
			Help:    "GraphQL query round trip duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 10.0, 30.0},
		},
		[]string{"role"},
	)
}
