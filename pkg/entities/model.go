package entities

import "strings"

// Field is one entity field with its rendered type
type Field struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Entity is a named, ordered field list
type Entity struct {
	Name   string  `json:"name"`
	Fields []Field `json:"fields"`
}

// Model is an ordered, read-only mapping of entity names to their fields.
// Entity order is insertion order. Case-insensitive lookups resolve to the
// first inserted name.
type Model struct {
	names      []string
	fields     map[string][]Field
	fold       map[string]string
	collisions []string
}

// NewModel builds a model from entities in the given order. A name inserted
// twice keeps its first field list.
func NewModel(list ...Entity) *Model {
	m := &Model{
		fields: make(map[string][]Field, len(list)),
		fold:   make(map[string]string, len(list)),
	}
	for _, e := range list {
		m.add(e.Name, e.Fields)
	}
	return m
}

func (m *Model) add(name string, fields []Field) {
	if _, exists := m.fields[name]; exists {
		return
	}
	copied := make([]Field, len(fields))
	copy(copied, fields)
	m.names = append(m.names, name)
	m.fields[name] = copied

	key := strings.ToLower(name)
	if first, ok := m.fold[key]; ok {
		m.collisions = append(m.collisions, first+"/"+name)
		return
	}
	m.fold[key] = name
}

// Len returns the number of entities
func (m *Model) Len() int {
	if m == nil {
		return 0
	}
	return len(m.names)
}

// Names returns entity names in model order
func (m *Model) Names() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}

// Fields returns the fields of an entity by exact name
func (m *Model) Fields(name string) ([]Field, bool) {
	if m == nil {
		return nil, false
	}
	f, ok := m.fields[name]
	return f, ok
}

// FieldNames returns the field names of an entity in declaration order
func (m *Model) FieldNames(name string) []string {
	fields, _ := m.Fields(name)
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Name
	}
	return out
}

// FindFold resolves a name case-insensitively to this model's native casing
func (m *Model) FindFold(name string) (string, bool) {
	if m == nil {
		return "", false
	}
	native, ok := m.fold[strings.ToLower(name)]
	return native, ok
}

// Collisions lists "first/shadowed" pairs of names equal under case folding
func (m *Model) Collisions() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.collisions))
	copy(out, m.collisions)
	return out
}

// Filter returns a new model holding the entities keep accepts, order preserved
func (m *Model) Filter(keep func(name string) bool) *Model {
	out := NewModel()
	for _, name := range m.Names() {
		if keep(name) {
			out.add(name, m.fields[name])
		}
	}
	return out
}
