package graphql

import (
	"fmt"

	"github.com/dd0wney/cluso-crosscheck/pkg/dialect"
	"github.com/graphql-go/graphql"
)

// table is the in-memory store of one entity
type table struct {
	spec    *EntitySpec
	records []Record
	byID    map[string]Record
	fields  map[string]*typeExpr
}

func (t *table) get(id string) (Record, bool) {
	r, ok := t.byID[id]
	return r, ok
}

type schemaBuilder struct {
	ds      *Dataset
	d       *dialect.Dialect
	limits  LimitConfig
	tables  map[string]*table
	objects map[string]*graphql.Object
	query   graphql.Fields
	profile profile

	pageInfoType       *graphql.Object
	orderDirectionType *graphql.Enum
}

// GenerateSchema builds a schema exposing ds the way an indexer of dialect d does
func GenerateSchema(ds *Dataset, d *dialect.Dialect) (graphql.Schema, error) {
	return GenerateSchemaWithLimits(ds, d, DefaultLimits)
}

// GenerateSchemaWithLimits is GenerateSchema with explicit page size limits
func GenerateSchemaWithLimits(ds *Dataset, d *dialect.Dialect, limits LimitConfig) (graphql.Schema, error) {
	if err := ValidateLimitConfig(&limits); err != nil {
		return graphql.Schema{}, err
	}
	if err := ds.Validate(); err != nil {
		return graphql.Schema{}, err
	}
	prof, ok := profiles[d.Kind()]
	if !ok {
		return graphql.Schema{}, fmt.Errorf("fixture cannot serve dialect %s", d)
	}
	b := &schemaBuilder{
		ds:      ds,
		d:       d,
		limits:  limits,
		tables:  make(map[string]*table),
		objects: make(map[string]*graphql.Object),
		query:   graphql.Fields{},
		profile: prof,
	}
	if err := b.loadTables(); err != nil {
		return graphql.Schema{}, err
	}
	for i := range ds.Entities {
		e := &ds.Entities[i]
		b.objects[e.Type()] = b.createEntityType(b.tables[e.Type()])
	}
	for i := range ds.Entities {
		if err := prof.addQueries(b, b.tables[ds.Entities[i].Type()]); err != nil {
			return graphql.Schema{}, err
		}
	}
	if err := b.addServiceQueries(); err != nil {
		return graphql.Schema{}, err
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name:   "Query",
		Fields: b.query,
	})
	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("failed to create schema: %w", err)
	}
	return schema, nil
}

// loadTables indexes records and checks that every field type resolves
func (b *schemaBuilder) loadTables() error {
	for i := range b.ds.Entities {
		e := &b.ds.Entities[i]
		tbl := &table{
			spec:    e,
			records: e.Records,
			byID:    make(map[string]Record, len(e.Records)),
			fields:  make(map[string]*typeExpr, len(e.Fields)),
		}
		for _, r := range e.Records {
			tbl.byID[fmt.Sprint(r["id"])] = r
		}
		b.tables[e.Type()] = tbl
	}
	for _, tbl := range b.tables {
		for _, f := range tbl.spec.Fields {
			t, err := parseTypeExpr(f.Type)
			if err != nil {
				return fmt.Errorf("entity %s field %s: %w", tbl.spec.Name, f.Name, err)
			}
			name := t.named()
			if _, ok := builtinScalars[name]; !ok {
				if _, ok := b.tables[name]; !ok {
					return fmt.Errorf("entity %s field %s: unknown type %s", tbl.spec.Name, f.Name, name)
				}
			}
			tbl.fields[f.Name] = t
		}
	}
	return nil
}

func (t *typeExpr) named() string {
	for t.list != nil {
		t = t.list
	}
	return t.name
}

// outputType maps a parsed expression onto the schema; names were checked in loadTables
func (b *schemaBuilder) outputType(t *typeExpr) graphql.Output {
	var out graphql.Output
	if t.list != nil {
		out = graphql.NewList(b.outputType(t.list))
	} else if s, ok := builtinScalars[t.name]; ok {
		out = s
	} else {
		out = b.objects[t.name]
	}
	if t.nonNull {
		return graphql.NewNonNull(out)
	}
	return out
}

func (b *schemaBuilder) idType() graphql.Output {
	return builtinScalars[b.d.IDScalar()]
}

// createEntityType declares the object type. The id field always uses the
// dialect's id scalar so one dataset serves both dialects.
func (b *schemaBuilder) createEntityType(tbl *table) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: tbl.spec.Type(),
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			fields := graphql.Fields{
				"id": &graphql.Field{
					Type: graphql.NewNonNull(b.idType()),
					Resolve: func(p graphql.ResolveParams) (any, error) {
						if r, ok := p.Source.(Record); ok {
							return fmt.Sprint(r["id"]), nil
						}
						return nil, nil
					},
				},
			}
			for _, f := range tbl.spec.Fields {
				if f.Name == "id" {
					continue
				}
				t := tbl.fields[f.Name]
				fields[f.Name] = &graphql.Field{
					Type:    b.outputType(t),
					Resolve: b.fieldResolver(f.Name, t),
				}
			}
			return fields
		}),
	})
}

func (b *schemaBuilder) fieldResolver(name string, t *typeExpr) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		r, ok := p.Source.(Record)
		if !ok {
			return nil, nil
		}
		return b.resolveValue(t, r[name]), nil
	}
}

// resolveValue follows references: object-typed values hold ids of the target entity
func (b *schemaBuilder) resolveValue(t *typeExpr, v any) any {
	if v == nil {
		return nil
	}
	if t.list != nil {
		items, ok := v.([]any)
		if !ok {
			return nil
		}
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = b.resolveValue(t.list, item)
		}
		return out
	}
	if tbl, ok := b.tables[t.name]; ok {
		if r, ok := tbl.get(fmt.Sprint(v)); ok {
			return r
		}
		return nil
	}
	return v
}

// scalarFields lists sortable fields in declaration order, id included
func (tbl *table) scalarFields() []string {
	names := []string{"id"}
	for _, f := range tbl.spec.Fields {
		t := tbl.fields[f.Name]
		if f.Name == "id" || t.list != nil {
			continue
		}
		if _, ok := builtinScalars[t.name]; ok {
			names = append(names, f.Name)
		}
	}
	return names
}

func (b *schemaBuilder) addQuery(name string, field *graphql.Field) error {
	if _, ok := b.query[name]; ok {
		return fmt.Errorf("query %s declared twice", name)
	}
	b.query[name] = field
	return nil
}

func (b *schemaBuilder) listOf(tbl *table) graphql.Output {
	return graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(b.objects[tbl.spec.Type()])))
}

// listResolver serves the plural query of either dialect
func (b *schemaBuilder) listResolver(tbl *table) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		records := filterRecords(tbl.records, parseWhere(p.Args))
		keys, err := b.profile.orderBy(p.Args)
		if err != nil {
			return nil, err
		}
		records = sortRecords(records, keys)
		offset := intArg(p.Args, b.profile.offsetArg)
		limit := applyLimit(intArg(p.Args, b.profile.limitArg), b.limits)
		return page(records, offset, limit), nil
	}
}

func (b *schemaBuilder) byIDResolver(tbl *table, lookup func(args map[string]any) any) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		id := lookup(p.Args)
		if id == nil {
			return nil, nil
		}
		if r, ok := tbl.get(fmt.Sprint(id)); ok {
			return r, nil
		}
		return nil, nil
	}
}

// addServiceQueries declares the extra queries and the dialect's status query
func (b *schemaBuilder) addServiceQueries() error {
	for _, name := range b.ds.ExtraQueries {
		if err := b.addQuery(name, &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return name, nil
			},
		}); err != nil {
			return err
		}
	}
	return b.profile.addService(b)
}
