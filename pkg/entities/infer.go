// Package entities discovers the entity model behind a GraphQL schema by
// matching root query names against a dialect's naming convention.
package entities

import (
	"fmt"

	"github.com/dd0wney/cluso-crosscheck/pkg/dialect"
	"github.com/dd0wney/cluso-crosscheck/pkg/introspection"
	"github.com/dd0wney/cluso-crosscheck/pkg/logging"
)

// listQueryDepth is the unwrap depth of a list query's return type, [Entity!]!
const listQueryDepth = 3

// Result is the outcome of entity inference for one schema
type Result struct {
	Dialect          *dialect.Dialect
	Entities         *Model
	NonEntityQueries []string
	// Incomplete lists candidates that had some but not all required queries
	Incomplete []string
}

// ParseSchema resolves the dialect tag and infers the entity model.
// An unknown tag fails before the schema is inspected.
func ParseSchema(schema *introspection.Schema, dialectName string, logger logging.Logger) (*Result, error) {
	d, err := dialect.Parse(dialectName)
	if err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	return Infer(schema, d, logger)
}

// Infer discovers entities in schema according to d.
func Infer(schema *introspection.Schema, d *dialect.Dialect, logger logging.Logger) (*Result, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	logger = logger.With(logging.Component("entities"), logging.Dialect(d.String()))

	if schema == nil {
		return nil, fmt.Errorf("infer entities: %w", introspection.ErrNoQueryType)
	}
	queryFields, err := schema.QueryFields()
	if err != nil {
		return nil, fmt.Errorf("infer entities: %w", err)
	}

	present := make(map[string]introspection.Field, len(queryFields))
	for _, f := range queryFields {
		present[f.Name] = f
	}

	var candidates []string
	seen := make(map[string]bool)
	for _, f := range queryFields {
		for _, c := range d.Candidates(f.Name) {
			if !seen[c] {
				seen[c] = true
				candidates = append(candidates, c)
			}
		}
	}

	res := &Result{Dialect: d}
	consumed := make(map[string]bool)
	var confirmed []Entity

	for _, c := range candidates {
		required := distinct(d.RequiredQueries(c))
		found := 0
		for _, q := range required.names {
			if _, ok := present[q]; ok {
				found++
			}
		}
		if found != len(required.names) || required.duplicated {
			res.Incomplete = append(res.Incomplete, c)
			continue
		}

		fields, err := entityFields(schema, present[d.ListQuery(c)])
		if err != nil {
			logger.Warn("dropping entity with unexpected list query type",
				logging.Entity(c), logging.Query(d.ListQuery(c)), logging.Error(err))
			continue
		}
		for _, q := range required.names {
			consumed[q] = true
		}
		confirmed = append(confirmed, Entity{Name: c, Fields: fields})
	}

	if len(res.Incomplete) > 0 {
		logger.Warn("some entity candidates did not have all the required queries and were discarded",
			logging.Strings("candidates", res.Incomplete))
	}

	res.Entities = NewModel(confirmed...)
	for _, pair := range res.Entities.Collisions() {
		logger.Warn("entity names collide case-insensitively, first one wins", logging.String("names", pair))
	}

	for _, f := range queryFields {
		if !consumed[f.Name] {
			res.NonEntityQueries = append(res.NonEntityQueries, f.Name)
		}
	}

	logger.Debug("entities inferred",
		logging.Count(res.Entities.Len()),
		logging.Strings("entities", res.Entities.Names()),
		logging.Strings("non_entity_queries", res.NonEntityQueries))

	return res, nil
}

func entityFields(schema *introspection.Schema, listQuery introspection.Field) ([]Field, error) {
	leaf, err := listQuery.Type.Unwrap(listQueryDepth)
	if err != nil {
		return nil, err
	}
	if leaf.Name == nil {
		return nil, fmt.Errorf("list query %q returns an unnamed type", listQuery.Name)
	}
	obj, ok := schema.ObjectType(*leaf.Name)
	if !ok {
		return nil, fmt.Errorf("type %q is not an object or interface", *leaf.Name)
	}

	out := make([]Field, len(obj.Fields))
	for i, f := range obj.Fields {
		out[i] = Field{
			Name: f.Name,
			Type: introspection.DescribeType(f.Type, introspection.DescribeOptions{IgnoreNonNulls: true}),
		}
	}
	return out, nil
}

type requiredSet struct {
	names      []string
	duplicated bool
}

// distinct drops repeated names. A repeat means one query would have to
// stand in for two signals, which never confirms a candidate.
func distinct(names []string) requiredSet {
	set := requiredSet{}
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			set.duplicated = true
			continue
		}
		seen[n] = true
		set.names = append(set.names, n)
	}
	return set
}
