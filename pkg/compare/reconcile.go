package compare

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dd0wney/cluso-crosscheck/pkg/entities"
)

// CompareEntities matches every reference entity to a sample entity by
// case-insensitive name and compares their fields position by position.
// Entities without issues are returned in Result.Safe.
func CompareEntities(reference, sample Side) *Result {
	res := newResult(PhaseSchema)
	res.Safe = []string{}

	for _, name := range reference.Entities.Names() {
		refFields, _ := reference.Entities.Fields(name)

		sampleName, found := sample.Entities.FindFold(name)
		if !found {
			issues := []string{"entity not found in the sample"}
			res.Findings = append(res.Findings, Finding{
				Entity: name,
				Issues: issues,
				Text:   entityBlock(name, issues),
			})
			continue
		}

		smpFields, _ := sample.Entities.Fields(sampleName)
		issues := fieldIssues(reference, sample, refFields, smpFields)
		if len(issues) == 0 {
			res.Safe = append(res.Safe, name)
			continue
		}

		text := entityBlock(name, issues) + fmt.Sprintf("\nEntity fields:\n  in reference : %s\n  in sample    : %s",
			strings.Join(fieldNames(refFields), ","), strings.Join(fieldNames(smpFields), ","))
		res.Findings = append(res.Findings, Finding{Entity: name, Issues: issues, Text: text})
	}
	return res
}

func fieldIssues(reference, sample Side, ref, smp []entities.Field) []string {
	var issues []string
	if len(ref) != len(smp) {
		issues = append(issues, "number of entity fields is different")
	}

	renamed := false
	for i, f := range ref {
		if i >= len(smp) {
			issues = append(issues, fmt.Sprintf("for field %q: field not found in sample", f.Name))
			continue
		}
		s := smp[i]
		var diffs []string
		if f.Name != s.Name {
			renamed = true
			diffs = append(diffs, fmt.Sprintf("name diff %q!==%q", f.Name, s.Name))
		}
		if f.Type != s.Type && !equivalentIDs(reference, sample, f, s) {
			diffs = append(diffs, fmt.Sprintf("type diff %q!==%q", f.Type, s.Type))
		}
		if len(diffs) > 0 {
			issues = append(issues, fmt.Sprintf("for field %q: %s", f.Name, strings.Join(diffs, ", ")))
		}
	}

	if renamed && sameNameSet(ref, smp) {
		issues = append(issues, "same fields in a different order")
	}
	return issues
}

// equivalentIDs tolerates id fields typed with each dialect's own id scalar
func equivalentIDs(reference, sample Side, ref, smp entities.Field) bool {
	if ref.Name != "id" || smp.Name != "id" || reference.Dialect == nil || sample.Dialect == nil {
		return false
	}
	return ref.Type == reference.Dialect.IDScalar() && smp.Type == sample.Dialect.IDScalar()
}

func sameNameSet(a, b []entities.Field) bool {
	if len(a) != len(b) {
		return false
	}
	an, bn := fieldNames(a), fieldNames(b)
	sort.Strings(an)
	sort.Strings(bn)
	for i := range an {
		if an[i] != bn[i] {
			return false
		}
	}
	return true
}

func fieldNames(fields []entities.Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Name
	}
	return out
}

func entityBlock(name string, issues []string) string {
	return fmt.Sprintf("Issues with entity %q:\n%s", name, indent(issues, "  "))
}
