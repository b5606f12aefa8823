// Package history keeps a record of comparison runs.
package history

import (
	"errors"
	"time"

	"github.com/dd0wney/cluso-crosscheck/pkg/crosscheck"
)

// ErrRunNotFound is returned when a run id is unknown
var ErrRunNotFound = errors.New("run not found")

// Run is the stored summary of one comparison
type Run struct {
	ID               string         `json:"id"`
	StartedAt        time.Time      `json:"started_at"`
	Duration         time.Duration  `json:"duration_ns"`
	ReferenceURL     string         `json:"reference_url"`
	ReferenceDialect string         `json:"reference_dialect"`
	SampleURL        string         `json:"sample_url"`
	SampleDialect    string         `json:"sample_dialect"`
	Entities         int            `json:"entities"`
	SafeEntities     int            `json:"safe_entities"`
	Issues           map[string]int `json:"issues"`
	HasIssues        bool           `json:"has_issues"`
}

// FromReport summarizes a finished report
func FromReport(rep *crosscheck.Report) *Run {
	return &Run{
		ID:               rep.RunID,
		StartedAt:        rep.StartedAt.UTC(),
		Duration:         rep.Duration,
		ReferenceURL:     rep.Reference.URL,
		ReferenceDialect: rep.Reference.Dialect,
		SampleURL:        rep.Sample.URL,
		SampleDialect:    rep.Sample.Dialect,
		Entities:         len(rep.Reference.Entities),
		SafeEntities:     len(rep.TemporalEntities) + len(rep.NonTemporalEntities),
		Issues:           rep.IssueCounts(),
		HasIssues:        rep.HasIssues(),
	}
}
