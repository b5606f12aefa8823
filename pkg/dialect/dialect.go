package dialect

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind names an API dialect
type Kind string

const (
	// KindSquid is the connection-style dialect
	KindSquid Kind = "squid"
	// KindSubgraph is the thegraph-style dialect
	KindSubgraph Kind = "subgraph"
)

// ErrUnknownDialect is returned when a dialect tag is not registered
var ErrUnknownDialect = errors.New("unknown API dialect")

type pluralRule struct {
	singular string
	plural   string
}

// Dialect is the capability table of one API naming and pagination convention.
// Every component asks the dialect instead of branching on its name.
type Dialect struct {
	kind      Kind
	idScalar  string
	ignored   []string
	irregular []pluralRule
	pageArg   string

	requiredQueries func(d *Dialect, entity string) []string
	candidates      func(d *Dialect, query string) []string
	orderClause     func(key string) string
}

var registry = map[Kind]*Dialect{}

func register(d *Dialect) *Dialect {
	registry[d.kind] = d
	return d
}

// Parse resolves a dialect tag, failing on anything unregistered
func Parse(name string) (*Dialect, error) {
	d, ok := registry[Kind(strings.ToLower(strings.TrimSpace(name)))]
	if !ok {
		return nil, fmt.Errorf("%w %q (supported: %s)", ErrUnknownDialect, name, strings.Join(Names(), ", "))
	}
	return d, nil
}

// Names returns the registered dialect tags, sorted
func Names() []string {
	names := make([]string, 0, len(registry))
	for k := range registry {
		names = append(names, string(k))
	}
	sort.Strings(names)
	return names
}

// Kind returns the dialect tag
func (d *Dialect) Kind() Kind { return d.kind }

func (d *Dialect) String() string { return string(d.kind) }

// IDScalar is the scalar the dialect reports for entity id fields
func (d *Dialect) IDScalar() string { return d.idScalar }

// IsIgnored reports whether a root query is on the dialect's ignore-list
func (d *Dialect) IsIgnored(query string) bool {
	for _, q := range d.ignored {
		if q == query {
			return true
		}
	}
	return false
}

// Pluralize applies the dialect's irregular suffix table, first match wins,
// and falls back to appending "s".
func (d *Dialect) Pluralize(name string) string {
	for _, r := range d.irregular {
		if strings.HasSuffix(name, r.singular) {
			return name[:len(name)-len(r.singular)] + r.plural
		}
	}
	return name + "s"
}

// Singularize inverts Pluralize. It only returns names whose plural is exactly query.
func (d *Dialect) Singularize(query string) (string, bool) {
	for _, r := range d.irregular {
		if strings.HasSuffix(query, r.plural) {
			candidate := query[:len(query)-len(r.plural)] + r.singular
			if candidate != "" && d.Pluralize(candidate) == query {
				return candidate, true
			}
		}
	}
	if len(query) > 1 && strings.HasSuffix(query, "s") {
		candidate := query[:len(query)-1]
		if d.Pluralize(candidate) == query {
			return candidate, true
		}
	}
	return "", false
}

// ListQuery is the root query returning a page of entity records
func (d *Dialect) ListQuery(entity string) string {
	return d.Pluralize(entity)
}

// RequiredQueries lists every root query that must exist for entity to be confirmed
func (d *Dialect) RequiredQueries(entity string) []string {
	return d.requiredQueries(d, entity)
}

// Candidates derives the entity names a root query may belong to
func (d *Dialect) Candidates(query string) []string {
	if d.IsIgnored(query) {
		return nil
	}
	return d.candidates(d, query)
}

// SampleQuery fetches the first n records, unordered
func (d *Dialect) SampleQuery(entity string, fields []string, n int) string {
	return fmt.Sprintf("{ %s(%s: %d) { %s } }", d.ListQuery(entity), d.pageArg, n, strings.Join(fields, " "))
}

// OrderedQuery fetches the first n records ordered ascending by key, then id where supported
func (d *Dialect) OrderedQuery(entity string, fields []string, key string, n int) string {
	return fmt.Sprintf("{ %s(%s: %d, %s) { %s } }",
		d.ListQuery(entity), d.pageArg, n, d.orderClause(key), strings.Join(fields, " "))
}

// InclusionQuery fetches the records whose id is in ids
func (d *Dialect) InclusionQuery(entity string, fields []string, ids []string) string {
	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = quoteString(id)
	}
	return fmt.Sprintf("{ %s(where: {id_in: [%s]}, %s: %d) { %s } }",
		d.ListQuery(entity), strings.Join(quoted, ", "), d.pageArg, len(ids), strings.Join(fields, " "))
}

// SortsByID reports whether ordered queries carry id as a secondary sort key
func (d *Dialect) SortsByID() bool {
	return d.kind == KindSquid
}
