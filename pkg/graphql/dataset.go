package graphql

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// Record is one entity instance as decoded from the dataset
type Record = map[string]any

// FieldSpec declares one field of a fixture entity.
// Type uses GraphQL type syntax: String, Int!, [Pool!]!, BigInt.
type FieldSpec struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// EntitySpec declares a fixture entity and its records.
// Name is the dialect-native entity name used to derive root queries;
// TypeName defaults to Name with its first letter upper-cased.
type EntitySpec struct {
	Name     string      `yaml:"name"`
	TypeName string      `yaml:"type,omitempty"`
	Fields   []FieldSpec `yaml:"fields"`
	Records  []Record    `yaml:"records"`
}

// Dataset is the content served by a fixture endpoint
type Dataset struct {
	Entities []EntitySpec `yaml:"entities"`
	// ExtraQueries are String-typed root queries unrelated to any entity
	ExtraQueries []string `yaml:"extra_queries,omitempty"`
	// BlockHeight is reported by squidStatus and _meta
	BlockHeight int `yaml:"block_height,omitempty"`
}

var ErrEmptyDataset = errors.New("dataset declares no entities")

// LoadDataset reads a YAML dataset from path
func LoadDataset(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	return ParseDataset(data)
}

// ParseDataset decodes and validates a YAML dataset
func ParseDataset(data []byte) (*Dataset, error) {
	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("failed to parse dataset: %w", err)
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return &ds, nil
}

// Validate checks names and record ids. Records without an id are rejected
// because every lookup in the fixture goes through it.
func (ds *Dataset) Validate() error {
	if len(ds.Entities) == 0 {
		return ErrEmptyDataset
	}
	names := make(map[string]bool)
	types := make(map[string]bool)
	for i := range ds.Entities {
		e := &ds.Entities[i]
		if e.Name == "" {
			return fmt.Errorf("entity %d has no name", i)
		}
		if names[e.Name] {
			return fmt.Errorf("entity %s declared twice", e.Name)
		}
		names[e.Name] = true
		if types[e.Type()] {
			return fmt.Errorf("entity %s: type %s declared twice", e.Name, e.Type())
		}
		types[e.Type()] = true

		seen := make(map[string]bool)
		for _, f := range e.Fields {
			if f.Name == "" || f.Type == "" {
				return fmt.Errorf("entity %s: field needs a name and a type", e.Name)
			}
			if seen[f.Name] {
				return fmt.Errorf("entity %s: field %s declared twice", e.Name, f.Name)
			}
			seen[f.Name] = true
		}
		ids := make(map[string]bool)
		for j, r := range e.Records {
			id, ok := r["id"]
			if !ok || id == nil {
				return fmt.Errorf("entity %s: record %d has no id", e.Name, j)
			}
			key := fmt.Sprint(id)
			if ids[key] {
				return fmt.Errorf("entity %s: duplicate id %s", e.Name, key)
			}
			ids[key] = true
		}
	}
	return nil
}

// Type returns the GraphQL object type name of the entity
func (e *EntitySpec) Type() string {
	if e.TypeName != "" {
		return e.TypeName
	}
	r := []rune(e.Name)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// typeExpr is a parsed GraphQL type reference
type typeExpr struct {
	name    string
	list    *typeExpr
	nonNull bool
}

func parseTypeExpr(s string) (*typeExpr, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("empty type")
	}
	if inner, ok := strings.CutSuffix(s, "!"); ok {
		t, err := parseTypeExpr(inner)
		if err != nil {
			return nil, err
		}
		if t.nonNull {
			return nil, fmt.Errorf("type %q has a doubled !", s)
		}
		t.nonNull = true
		return t, nil
	}
	if strings.HasPrefix(s, "[") {
		if !strings.HasSuffix(s, "]") {
			return nil, fmt.Errorf("unbalanced brackets in %q", s)
		}
		elem, err := parseTypeExpr(s[1 : len(s)-1])
		if err != nil {
			return nil, err
		}
		return &typeExpr{list: elem}, nil
	}
	for _, r := range s {
		if !(r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return nil, fmt.Errorf("invalid type name %q", s)
		}
	}
	return &typeExpr{name: s}, nil
}
