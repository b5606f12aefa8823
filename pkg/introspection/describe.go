package introspection

import "strings"

// DescribeOptions controls how type references are rendered
type DescribeOptions struct {
	// IgnoreNonNulls drops NON_NULL wrappers from the rendering
	IgnoreNonNulls bool
}

var scalarTypes = map[string]bool{
	"String":     true,
	"Int":        true,
	"Bytes":      true,
	"Boolean":    true,
	"BigInt":     true,
	"BigDecimal": true,
}

// DescribeType renders a type reference into its canonical string form,
// e.g. "list String" or "non_null list non_null String".
func DescribeType(ref TypeRef, opts DescribeOptions) string {
	if ref.Name != nil {
		return *ref.Name
	}
	if ref.OfType == nil {
		return strings.ToLower(ref.Kind)
	}
	if opts.IgnoreNonNulls && ref.Kind == KindNonNull {
		return DescribeType(*ref.OfType, opts)
	}
	return strings.ToLower(ref.Kind) + " " + DescribeType(*ref.OfType, opts)
}

// IsScalar reports whether a type description is one of the plain scalars
// that can be requested and compared directly. Wrapped descriptions never match.
func IsScalar(desc string) bool {
	return scalarTypes[desc]
}
