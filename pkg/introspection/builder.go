package introspection

// Builder assembles a Schema in memory, in declaration order
type Builder struct {
	types []FullType
	query []Field
}

// NewBuilder returns an empty schema builder
func NewBuilder() *Builder {
	return &Builder{}
}

// Object declares an OBJECT type with fields in the given order
func (b *Builder) Object(name string, fields ...Field) *Builder {
	b.types = append(b.types, FullType{Kind: KindObject, Name: name, Fields: fields})
	return b
}

// Root declares a root query operation
func (b *Builder) Root(name string, t TypeRef) *Builder {
	b.query = append(b.query, Field{Name: name, Type: t})
	return b
}

// Build returns the schema with the Query type appended after declared types
func (b *Builder) Build() *Schema {
	types := make([]FullType, 0, len(b.types)+1)
	types = append(types, b.types...)
	query := make([]Field, len(b.query))
	copy(query, b.query)
	types = append(types, FullType{Kind: KindObject, Name: QueryTypeName, Fields: query})
	return &Schema{QueryType: &NamedRef{Name: QueryTypeName}, Types: types}
}

// NewField builds a field declaration
func NewField(name string, t TypeRef) Field {
	return Field{Name: name, Type: t}
}

// Scalar is a nullable named scalar reference
func Scalar(name string) TypeRef {
	return Named(KindScalar, name)
}

// Object is a nullable named object reference
func Object(name string) TypeRef {
	return Named(KindObject, name)
}

// ListOf is the [name!]! return type of list queries
func ListOf(name string) TypeRef {
	return NonNull(List(NonNull(Object(name))))
}
