package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dd0wney/cluso-crosscheck/pkg/crosscheck"
)

// ObserveQuery records one query round trip; it satisfies client.Observer
func (r *Registry) ObserveQuery(role, status string, elapsed time.Duration) {
	r.QueriesTotal.WithLabelValues(role, status).Inc()
	r.QueryDuration.WithLabelValues(role).Observe(elapsed.Seconds())
}

// RecordReport records the outcome of a finished run
func (r *Registry) RecordReport(rep *crosscheck.Report) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Entities.WithLabelValues("reference").Set(float64(len(rep.Reference.Entities)))
	r.Entities.WithLabelValues("sample").Set(float64(len(rep.Sample.Entities)))
	r.SafeEntities.Set(float64(len(rep.TemporalEntities) + len(rep.NonTemporalEntities)))
	for phase, n := range rep.IssueCounts() {
		r.IssuesTotal.WithLabelValues(phase).Add(float64(n))
	}
	r.RunDuration.Set(rep.Duration.Seconds())
	if rep.HasIssues() {
		r.LastRunSuccess.Set(0)
	} else {
		r.LastRunSuccess.Set(1)
	}
	r.LastRunUnixTime.Set(float64(rep.StartedAt.Unix()))
}

// WriteToTextfile writes every metric in the node exporter textfile format
func (r *Registry) WriteToTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
