// Package compare reconciles two inferred entity models and checks the
// data behind them for consistency.
package compare

import (
	"fmt"
	"strings"

	"github.com/dd0wney/cluso-crosscheck/pkg/client"
	"github.com/dd0wney/cluso-crosscheck/pkg/dialect"
	"github.com/dd0wney/cluso-crosscheck/pkg/entities"
)

// Phases of a comparison run
const (
	PhaseStrayQueries = "stray_queries"
	PhaseSchema       = "schema"
	PhaseTemporal     = "temporal"
	PhaseNonTemporal  = "non_temporal"
)

// Side is one API's inferred schema
type Side struct {
	Dialect      *dialect.Dialect
	Entities     *entities.Model
	StrayQueries []string
}

// Endpoint is a Side that can be queried for data
type Endpoint struct {
	Side
	URL     string
	Querier client.Querier
}

// Finding lists the issues found for one entity
type Finding struct {
	Entity string   `json:"entity,omitempty"`
	Issues []string `json:"issues"`

	// set by the inclusion check
	Forward  []string `json:"forward,omitempty"`
	Backward []string `json:"backward,omitempty"`

	// set by the ordered check
	ReferenceQuery string `json:"reference_query,omitempty"`
	SampleQuery    string `json:"sample_query,omitempty"`

	// Text is the rendered paragraph
	Text string `json:"text"`
}

// Skip records an entity a check could not run on
type Skip struct {
	Entity string `json:"entity"`
	Reason string `json:"reason"`
}

// Result is the outcome of one comparison phase
type Result struct {
	Phase    string    `json:"phase"`
	Findings []Finding `json:"findings"`
	// Safe lists entities without findings, in reference order. Only set by the schema check.
	Safe    []string `json:"safe,omitempty"`
	Skipped []Skip   `json:"skipped,omitempty"`
}

func newResult(phase string) *Result {
	return &Result{Phase: phase, Findings: []Finding{}}
}

// HasIssues reports whether any finding was recorded
func (r *Result) HasIssues() bool {
	return r != nil && len(r.Findings) > 0
}

// IssueCount is the number of individual issues across findings
func (r *Result) IssueCount() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, f := range r.Findings {
		n += len(f.Issues)
	}
	return n
}

// Description renders every finding as a paragraph separated by blank lines.
// It is empty when there are no issues.
func (r *Result) Description() string {
	if !r.HasIssues() {
		return ""
	}
	paragraphs := make([]string, len(r.Findings))
	for i, f := range r.Findings {
		paragraphs[i] = f.Text
	}
	return strings.Join(paragraphs, "\n\n")
}

// IsSafe reports whether name passed the schema check
func (r *Result) IsSafe(name string) bool {
	for _, s := range r.Safe {
		if s == name {
			return true
		}
	}
	return false
}

func indent(lines []string, prefix string) string {
	var b strings.Builder
	for i, l := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(prefix)
		b.WriteString(l)
	}
	return b.String()
}

// queryFields is id followed by every other scalar field, in declaration order
func queryFields(fields []entities.Field) []string {
	out := []string{"id"}
	for _, f := range fields {
		if f.Name != "id" && isScalarField(f) {
			out = append(out, f.Name)
		}
	}
	return out
}

func resolveSample(sample Side, name string) (string, error) {
	native, ok := sample.Entities.FindFold(name)
	if !ok {
		return "", fmt.Errorf("entity %q not found in the sample", name)
	}
	return native, nil
}
