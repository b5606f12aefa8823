package dialect

import (
	"encoding/json"
	"strings"
)

// Squid is the connection-style dialect: Es, EById, EByUniqueInput, EsConnection
var Squid = register(&Dialect{
	kind:     KindSquid,
	idScalar: "String",
	ignored:  []string{"squidStatus"},
	irregular: []pluralRule{
		{"factory", "factories"},
		{"Factory", "Factories"},
		{"data", "data"},
		{"Data", "Data"},
		{"flash", "flashes"},
		{"Flash", "Flashes"},
	},
	pageArg: "limit",
	requiredQueries: func(d *Dialect, e string) []string {
		plural := d.Pluralize(e)
		return []string{plural, e + "ById", e + "ByUniqueInput", plural + "Connection"}
	},
	candidates: func(d *Dialect, q string) []string {
		var out []string
		for _, suffix := range []string{"ById", "ByUniqueInput"} {
			if stem, ok := strings.CutSuffix(q, suffix); ok && stem != "" {
				out = append(out, stem)
			}
		}
		if stem, ok := strings.CutSuffix(q, "Connection"); ok {
			if e, ok := d.Singularize(stem); ok {
				out = append(out, e)
			}
		}
		if e, ok := d.Singularize(q); ok {
			out = append(out, e)
		}
		return out
	},
	orderClause: func(key string) string {
		if key == "id" {
			return "orderBy: [id_ASC]"
		}
		return "orderBy: [" + key + "_ASC, id_ASC]"
	},
})

// Subgraph is the thegraph-style dialect: e and es
var Subgraph = register(&Dialect{
	kind:     KindSubgraph,
	idScalar: "ID",
	ignored:  []string{"_meta"},
	irregular: []pluralRule{
		{"factory", "factories"},
		{"Factory", "Factories"},
		{"flash", "flashes"},
		{"Flash", "Flashes"},
	},
	pageArg: "first",
	requiredQueries: func(d *Dialect, e string) []string {
		return []string{e, d.Pluralize(e)}
	},
	candidates: func(d *Dialect, q string) []string {
		if e, ok := d.Singularize(q); ok {
			return []string{e}
		}
		return nil
	},
	orderClause: func(key string) string {
		return "orderBy: " + key + ", orderDirection: asc"
	},
})

// quoteString renders a GraphQL string literal; JSON string escapes are valid GraphQL
func quoteString(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		return `""`
	}
	return string(b)
}
