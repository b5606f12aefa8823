package graphql

import (
	"github.com/dd0wney/cluso-crosscheck/pkg/dialect"
	"github.com/graphql-go/graphql"
)

// profile is how the fixture imitates one indexer dialect
type profile struct {
	addQueries func(b *schemaBuilder, tbl *table) error
	addService func(b *schemaBuilder) error
	orderBy    func(args map[string]any) ([]OrderBy, error)
	offsetArg  string
	limitArg   string
}

var profiles = map[dialect.Kind]profile{
	dialect.KindSquid: {
		addQueries: (*schemaBuilder).addSquidQueries,
		addService: (*schemaBuilder).addSquidStatus,
		orderBy:    parseSquidOrderBy,
		offsetArg:  "offset",
		limitArg:   "limit",
	},
	dialect.KindSubgraph: {
		addQueries: (*schemaBuilder).addSubgraphQueries,
		addService: (*schemaBuilder).addSubgraphMeta,
		orderBy: func(args map[string]any) ([]OrderBy, error) {
			return parseSubgraphOrderBy(args), nil
		},
		offsetArg: "skip",
		limitArg:  "first",
	},
}

// addSquidQueries declares Es, EById, EByUniqueInput and EsConnection
func (b *schemaBuilder) addSquidQueries(tbl *table) error {
	typeName := tbl.spec.Type()
	entity := tbl.spec.Name
	plural := b.d.Pluralize(entity)

	values := graphql.EnumValueConfigMap{}
	for _, f := range tbl.scalarFields() {
		for _, dir := range []string{"_ASC", "_DESC"} {
			values[f+dir] = &graphql.EnumValueConfig{Value: f + dir}
		}
	}
	orderBy := graphql.NewEnum(graphql.EnumConfig{
		Name:   typeName + "OrderByInput",
		Values: values,
	})
	where := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: typeName + "WhereInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"id_eq": &graphql.InputObjectFieldConfig{Type: graphql.String},
			"id_in": &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.NewNonNull(graphql.String))},
		},
	})
	whereID := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: typeName + "WhereIdInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"id": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		},
	})
	connectionType := createConnectionTypes(typeName, b.d.Pluralize(typeName)+"Connection", b.objects[typeName], b.pageInfo())

	if err := b.addQuery(plural, &graphql.Field{
		Type: b.listOf(tbl),
		Args: graphql.FieldConfigArgument{
			"where":   &graphql.ArgumentConfig{Type: where},
			"orderBy": &graphql.ArgumentConfig{Type: graphql.NewList(graphql.NewNonNull(orderBy))},
			"offset":  &graphql.ArgumentConfig{Type: graphql.Int},
			"limit":   &graphql.ArgumentConfig{Type: graphql.Int},
		},
		Resolve: b.listResolver(tbl),
	}); err != nil {
		return err
	}
	if err := b.addQuery(entity+"ById", &graphql.Field{
		Type: b.objects[typeName],
		Args: graphql.FieldConfigArgument{
			"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
		},
		Resolve: b.byIDResolver(tbl, func(args map[string]any) any { return args["id"] }),
	}); err != nil {
		return err
	}
	if err := b.addQuery(entity+"ByUniqueInput", &graphql.Field{
		Type: b.objects[typeName],
		Args: graphql.FieldConfigArgument{
			"where": &graphql.ArgumentConfig{Type: graphql.NewNonNull(whereID)},
		},
		Resolve: b.byIDResolver(tbl, func(args map[string]any) any {
			if w, ok := args["where"].(map[string]any); ok {
				return w["id"]
			}
			return nil
		}),
	}); err != nil {
		return err
	}
	return b.addQuery(plural+"Connection", &graphql.Field{
		Type: graphql.NewNonNull(connectionType),
		Args: graphql.FieldConfigArgument{
			"orderBy": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(orderBy)))},
			"after":   &graphql.ArgumentConfig{Type: graphql.String},
			"first":   &graphql.ArgumentConfig{Type: graphql.Int},
			"where":   &graphql.ArgumentConfig{Type: where},
		},
		Resolve: func(p graphql.ResolveParams) (any, error) {
			records := filterRecords(tbl.records, parseWhere(p.Args))
			keys, err := parseSquidOrderBy(p.Args)
			if err != nil {
				return nil, err
			}
			records = sortRecords(records, keys)
			start := 0
			if after, ok := p.Args["after"].(string); ok && after != "" {
				if start, err = decodeCursor(after); err != nil {
					return nil, err
				}
			}
			return newConnection(records, start, applyLimit(intArg(p.Args, "first"), b.limits)), nil
		},
	})
}

// addSubgraphQueries declares e(id) and es(first, skip, orderBy, orderDirection, where)
func (b *schemaBuilder) addSubgraphQueries(tbl *table) error {
	typeName := tbl.spec.Type()
	entity := tbl.spec.Name

	values := graphql.EnumValueConfigMap{}
	for _, f := range tbl.scalarFields() {
		values[f] = &graphql.EnumValueConfig{Value: f}
	}
	orderBy := graphql.NewEnum(graphql.EnumConfig{
		Name:   typeName + "_orderBy",
		Values: values,
	})
	filter := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: typeName + "_filter",
		Fields: graphql.InputObjectConfigFieldMap{
			"id":    &graphql.InputObjectFieldConfig{Type: graphql.ID},
			"id_in": &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.NewNonNull(graphql.ID))},
		},
	})

	if err := b.addQuery(entity, &graphql.Field{
		Type: b.objects[typeName],
		Args: graphql.FieldConfigArgument{
			"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
		},
		Resolve: b.byIDResolver(tbl, func(args map[string]any) any { return args["id"] }),
	}); err != nil {
		return err
	}
	return b.addQuery(b.d.Pluralize(entity), &graphql.Field{
		Type: b.listOf(tbl),
		Args: graphql.FieldConfigArgument{
			"first":          &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: b.limits.DefaultLimit},
			"skip":           &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
			"orderBy":        &graphql.ArgumentConfig{Type: orderBy},
			"orderDirection": &graphql.ArgumentConfig{Type: b.orderDirection()},
			"where":          &graphql.ArgumentConfig{Type: filter},
		},
		Resolve: b.listResolver(tbl),
	})
}

func (b *schemaBuilder) addSquidStatus() error {
	status := graphql.NewObject(graphql.ObjectConfig{
		Name: "SquidStatus",
		Fields: graphql.Fields{
			"height": &graphql.Field{Type: graphql.Int},
		},
	})
	return b.addQuery("squidStatus", &graphql.Field{
		Type: status,
		Resolve: func(p graphql.ResolveParams) (any, error) {
			return map[string]any{"height": b.ds.BlockHeight}, nil
		},
	})
}

func (b *schemaBuilder) addSubgraphMeta() error {
	block := graphql.NewObject(graphql.ObjectConfig{
		Name: "_Block_",
		Fields: graphql.Fields{
			"number": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		},
	})
	meta := graphql.NewObject(graphql.ObjectConfig{
		Name: "_Meta_",
		Fields: graphql.Fields{
			"block":             &graphql.Field{Type: graphql.NewNonNull(block)},
			"deployment":        &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"hasIndexingErrors": &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		},
	})
	return b.addQuery("_meta", &graphql.Field{
		Type: meta,
		Resolve: func(p graphql.ResolveParams) (any, error) {
			return map[string]any{
				"block":             map[string]any{"number": b.ds.BlockHeight},
				"deployment":        "fixture",
				"hasIndexingErrors": false,
			}, nil
		},
	})
}

// pageInfo and orderDirection are shared by every entity of the schema
func (b *schemaBuilder) pageInfo() *graphql.Object {
	if b.pageInfoType == nil {
		b.pageInfoType = createPageInfoType()
	}
	return b.pageInfoType
}

func (b *schemaBuilder) orderDirection() *graphql.Enum {
	if b.orderDirectionType == nil {
		b.orderDirectionType = graphql.NewEnum(graphql.EnumConfig{
			Name: "OrderDirection",
			Values: graphql.EnumValueConfigMap{
				"asc":  &graphql.EnumValueConfig{Value: "asc"},
				"desc": &graphql.EnumValueConfig{Value: "desc"},
			},
		})
	}
	return b.orderDirectionType
}
