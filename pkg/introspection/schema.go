package introspection

import (
	"errors"
	"fmt"
)

var (
	// ErrNoQueryType is returned when a schema lacks the root Query object
	ErrNoQueryType = errors.New("schema has no Query object type")
	// ErrShallowType is returned when a type reference is shorter than the requested unwrap depth
	ErrShallowType = errors.New("type reference is not wrapped deeply enough")
)

// QueryFields returns the root query operations in declaration order
func (s *Schema) QueryFields() ([]Field, error) {
	name := QueryTypeName
	if s.QueryType != nil && s.QueryType.Name != "" {
		name = s.QueryType.Name
	}
	for i := range s.Types {
		if s.Types[i].Kind == KindObject && s.Types[i].Name == name {
			return s.Types[i].Fields, nil
		}
	}
	return nil, ErrNoQueryType
}

// QueryNames returns the names of the root query operations in declaration order
func (s *Schema) QueryNames() ([]string, error) {
	fields, err := s.QueryFields()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names, nil
}

// ObjectType looks up an OBJECT or INTERFACE type by name, excluding the root query type
func (s *Schema) ObjectType(name string) (*FullType, bool) {
	if name == QueryTypeName {
		return nil, false
	}
	for i := range s.Types {
		t := &s.Types[i]
		if t.Name == name && (t.Kind == KindObject || t.Kind == KindInterface) {
			return t, true
		}
	}
	return nil, false
}

// Unwrap follows OfType exactly depth times
func (t TypeRef) Unwrap(depth int) (TypeRef, error) {
	cur := t
	for i := 0; i < depth; i++ {
		if cur.OfType == nil {
			return TypeRef{}, fmt.Errorf("%w: %q has %d levels, need %d",
				ErrShallowType, DescribeType(t, DescribeOptions{}), i, depth)
		}
		cur = *cur.OfType
	}
	return cur, nil
}
