package introspection

// Type kinds reported by GraphQL introspection
const (
	KindScalar      = "SCALAR"
	KindObject      = "OBJECT"
	KindInterface   = "INTERFACE"
	KindUnion       = "UNION"
	KindEnum        = "ENUM"
	KindInputObject = "INPUT_OBJECT"
	KindList        = "LIST"
	KindNonNull     = "NON_NULL"
)

// QueryTypeName is the name of the root query type
const QueryTypeName = "Query"

// Schema is the __schema payload of an introspection response
type Schema struct {
	QueryType *NamedRef  `json:"queryType"`
	Types     []FullType `json:"types"`
}

// NamedRef references a type by name only
type NamedRef struct {
	Name string `json:"name"`
}

// FullType is a named type with its fields (objects and interfaces only)
type FullType struct {
	Kind   string  `json:"kind"`
	Name   string  `json:"name"`
	Fields []Field `json:"fields"`
}

// Field is a field of an object or interface type
type Field struct {
	Name string  `json:"name"`
	Type TypeRef `json:"type"`
}

// TypeRef is a wrapper chain around a named type.
// Name is nil for LIST and NON_NULL wrappers.
type TypeRef struct {
	Kind   string   `json:"kind"`
	Name   *string  `json:"name"`
	OfType *TypeRef `json:"ofType"`
}

// Named builds a TypeRef for a named type
func Named(kind, name string) TypeRef {
	return TypeRef{Kind: kind, Name: &name}
}

// NonNull wraps a type reference in NON_NULL
func NonNull(of TypeRef) TypeRef {
	return TypeRef{Kind: KindNonNull, OfType: &of}
}

// List wraps a type reference in LIST
func List(of TypeRef) TypeRef {
	return TypeRef{Kind: KindList, OfType: &of}
}
