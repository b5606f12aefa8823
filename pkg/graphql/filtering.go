package graphql

import (
	"fmt"
)

// IDFilter is the subset of where-clauses the fixture understands
type IDFilter struct {
	ID  *string
	IDs map[string]bool
}

// parseWhere parses where: {id: ..., id_eq: ..., id_in: [...]}
func parseWhere(args map[string]any) *IDFilter {
	whereMap, ok := args["where"].(map[string]any)
	if !ok {
		return nil
	}
	filter := &IDFilter{}
	for _, key := range []string{"id", "id_eq"} {
		if v, ok := whereMap[key]; ok && v != nil {
			id := fmt.Sprint(v)
			filter.ID = &id
		}
	}
	if in, ok := whereMap["id_in"].([]any); ok {
		filter.IDs = make(map[string]bool, len(in))
		for _, v := range in {
			filter.IDs[fmt.Sprint(v)] = true
		}
	}
	return filter
}

func (f *IDFilter) matches(r Record) bool {
	if f == nil {
		return true
	}
	id := fmt.Sprint(r["id"])
	if f.ID != nil && *f.ID != id {
		return false
	}
	if f.IDs != nil && !f.IDs[id] {
		return false
	}
	return true
}

func filterRecords(records []Record, f *IDFilter) []Record {
	if f == nil {
		return records
	}
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if f.matches(r) {
			out = append(out, r)
		}
	}
	return out
}
