package graphql

import (
	"context"
	"sort"

	"github.com/graphql-go/graphql"
)

// ExecuteQuery executes a GraphQL query against a schema
func ExecuteQuery(ctx context.Context, schema graphql.Schema, query string, variables map[string]any) *graphql.Result {
	result := graphql.Do(graphql.Params{
		Schema:         schema,
		RequestString:  query,
		VariableValues: variables,
		Context:        ctx,
	})
	if data, ok := result.Data.(map[string]any); ok {
		if s, ok := data["__schema"].(map[string]any); ok {
			sortIntrospection(s)
		}
	}
	return result
}

// sortIntrospection orders types and their fields by name so that two
// introspections of the same schema are identical
func sortIntrospection(schema map[string]any) {
	types, ok := schema["types"].([]any)
	if !ok {
		return
	}
	sortByName(types)
	for _, t := range types {
		m, ok := t.(map[string]any)
		if !ok {
			continue
		}
		for _, key := range []string{"fields", "inputFields", "enumValues"} {
			if list, ok := m[key].([]any); ok {
				sortByName(list)
			}
		}
	}
}

func sortByName(items []any) {
	name := func(i int) string {
		if m, ok := items[i].(map[string]any); ok {
			s, _ := m["name"].(string)
			return s
		}
		return ""
	}
	sort.SliceStable(items, func(i, j int) bool { return name(i) < name(j) })
}
