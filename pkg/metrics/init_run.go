package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initRunMetrics() {
	r.Entities = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "crosscheck_entities",
			Help: "Number of entities discovered on each endpoint",
		},
		[]string{"role"},
	)

	r.SafeEntities = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "crosscheck_safe_entities",
			Help: "Number of entities that passed the schema comparison",
		},
	)

	r.IssuesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "crosscheck_issues_total",
			Help: "Number of issues found, by comparison phase",
		},
		[]string{"phase"},
	)

	r.RunDuration = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "crosscheck_run_duration_seconds",
			Help: "Duration of the last comparison run in seconds",
		},
	)

	r.LastRunSuccess = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "crosscheck_last_run_success",
			Help: "Whether the last run found no issues (1=yes, 0=no)",
		},
	)

	r.LastRunUnixTime = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "crosscheck_last_run_timestamp_seconds",
			Help: "Unix time the last run started",
		},
	)
}
