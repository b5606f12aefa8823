// Package report renders comparison reports for people and machines.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/cluso-crosscheck/pkg/compare"
	"github.com/dd0wney/cluso-crosscheck/pkg/crosscheck"
)

// Separator follows every diagnostic block in the text report
const Separator = "---------------------"

// Reporter writes a report to w
type Reporter interface {
	Report(w io.Writer, r *crosscheck.Report) error
}

// New returns the reporter for a format name, "text" or "json"
func New(format string, color bool) (Reporter, error) {
	switch format {
	case "", "text":
		return &TextReporter{Color: color}, nil
	case "json":
		return &JSONReporter{Indent: true}, nil
	default:
		return nil, fmt.Errorf("unknown report format %q (supported: text, json)", format)
	}
}

// TextReporter prints one section per phase: the diagnostic block followed
// by a separator, or a fixed sentence when the phase found nothing.
// Output carries no run id or timestamps, so equal inputs give equal bytes.
type TextReporter struct {
	// Color styles headings and verdicts when w is a color terminal
	Color bool
}

type render func(string) string

type styles struct {
	heading, ok, info render
}

func plain(s string) string { return s }

func (t *TextReporter) styles(w io.Writer) styles {
	if !t.Color {
		return styles{plain, plain, plain}
	}
	r := lipgloss.NewRenderer(w)
	return styles{
		heading: styled(r.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF5F5F"))),
		ok:      styled(r.NewStyle().Foreground(lipgloss.Color("#5FD75F"))),
		info:    styled(r.NewStyle().Faint(true)),
	}
}

func styled(st lipgloss.Style) render {
	return func(s string) string { return st.Render(s) }
}

func (t *TextReporter) Report(w io.Writer, rep *crosscheck.Report) error {
	st := t.styles(w)
	var b strings.Builder

	section := func(res *compare.Result, success string) {
		if !res.HasIssues() {
			b.WriteString(st.ok(success))
			b.WriteString("\n")
			return
		}
		for _, line := range strings.Split(res.Description(), "\n") {
			if strings.HasPrefix(line, "Issues with entity") || strings.HasPrefix(line, "Found queries") {
				line = st.heading(line)
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n" + Separator + "\n\n")
	}
	info := func(format string, args ...any) {
		b.WriteString(st.info(fmt.Sprintf(format, args...)))
		b.WriteString("\n")
	}

	section(rep.StrayQueries, "Did not find any queries not associated with entities")
	info("Comparing %d entities of the reference API to %d entities of the sample API",
		len(rep.Reference.Entities), len(rep.Sample.Entities))
	info("Reference entities: %s", jsonList(rep.Reference.Entities))
	section(rep.Schema, "No issues found during the schema comparison")
	info("Detected %d temporal entities and %d non-temporal entities",
		len(rep.TemporalEntities), len(rep.NonTemporalEntities))
	if rep.OrderedRecords {
		section(rep.Temporal, "No issues found with temporal entities")
	} else {
		info("Testing all entities as non-temporal")
	}
	section(rep.NonTemporal, "No issues found with non-temporal entities")

	_, err := io.WriteString(w, b.String())
	return err
}

// JSONReporter writes the report as one JSON document
type JSONReporter struct {
	Indent bool
}

func (j *JSONReporter) Report(w io.Writer, rep *crosscheck.Report) error {
	enc := json.NewEncoder(w)
	if j.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(rep)
}

func jsonList(items []string) string {
	if items == nil {
		items = []string{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(b)
}
