package compare

import (
	"encoding/json"
	"fmt"
)

// CompareStrayQueries reports root queries that belong to no entity on
// either side, after dropping each dialect's ignored queries.
func CompareStrayQueries(reference, sample Side) *Result {
	res := newResult(PhaseStrayQueries)
	ref := filterIgnored(reference)
	smp := filterIgnored(sample)
	if len(ref) == 0 && len(smp) == 0 {
		return res
	}

	issues := []string{
		"sample    : " + jsonList(smp),
		"reference : " + jsonList(ref),
	}
	res.Findings = append(res.Findings, Finding{
		Issues: issues,
		Text:   fmt.Sprintf("Found queries not related to any entities:\n%s", indent(issues, "  ")),
	})
	return res
}

func filterIgnored(s Side) []string {
	out := []string{}
	for _, q := range s.StrayQueries {
		if s.Dialect == nil || !s.Dialect.IsIgnored(q) {
			out = append(out, q)
		}
	}
	return out
}

func jsonList(items []string) string {
	b, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(b)
}
