package crosscheck

import (
	"time"

	"github.com/dd0wney/cluso-crosscheck/pkg/compare"
)

// EndpointSummary describes what was discovered on one endpoint
type EndpointSummary struct {
	URL          string   `json:"url"`
	Dialect      string   `json:"dialect"`
	Entities     []string `json:"entities"`
	StrayQueries []string `json:"stray_queries"`
	Incomplete   []string `json:"incomplete_candidates,omitempty"`
}

// Report is the outcome of one comparison run
type Report struct {
	RunID     string          `json:"run_id"`
	StartedAt time.Time       `json:"started_at"`
	Duration  time.Duration   `json:"duration_ns"`
	Reference EndpointSummary `json:"reference"`
	Sample    EndpointSummary `json:"sample"`

	StrayQueries *compare.Result `json:"stray_queries"`
	Schema       *compare.Result `json:"schema"`

	TemporalEntities    []string `json:"temporal_entities"`
	NonTemporalEntities []string `json:"non_temporal_entities"`
	// OrderedRecords is false when every safe entity went through cross-inclusion
	OrderedRecords bool `json:"ordered_records"`

	// Temporal is nil unless OrderedRecords is set
	Temporal    *compare.Result `json:"temporal,omitempty"`
	NonTemporal *compare.Result `json:"non_temporal"`
}

// Phases returns the phase results that ran, in execution order
func (r *Report) Phases() []*compare.Result {
	out := []*compare.Result{r.StrayQueries, r.Schema}
	if r.Temporal != nil {
		out = append(out, r.Temporal)
	}
	if r.NonTemporal != nil {
		out = append(out, r.NonTemporal)
	}
	return out
}

// HasIssues reports whether any phase found issues
func (r *Report) HasIssues() bool {
	for _, p := range r.Phases() {
		if p.HasIssues() {
			return true
		}
	}
	return false
}

// IssueCounts maps phase name to its number of issues
func (r *Report) IssueCounts() map[string]int {
	counts := make(map[string]int)
	for _, p := range r.Phases() {
		if p != nil {
			counts[p.Phase] = p.IssueCount()
		}
	}
	return counts
}
