package graphql

import (
	"fmt"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
)

// Indexer scalars serialized as strings so large values survive JSON
var (
	BigInt     = stringScalar("BigInt", "Arbitrary precision integer")
	BigDecimal = stringScalar("BigDecimal", "Arbitrary precision decimal")
	Bytes      = stringScalar("Bytes", "Hex encoded byte array")
)

func stringScalar(name, description string) *graphql.Scalar {
	return graphql.NewScalar(graphql.ScalarConfig{
		Name:        name,
		Description: description,
		Serialize: func(value any) any {
			if value == nil {
				return nil
			}
			return fmt.Sprint(value)
		},
		ParseValue: func(value any) any {
			return fmt.Sprint(value)
		},
		ParseLiteral: func(valueAST ast.Value) any {
			switch v := valueAST.(type) {
			case *ast.StringValue:
				return v.Value
			case *ast.IntValue:
				return v.Value
			case *ast.FloatValue:
				return v.Value
			}
			return nil
		},
	})
}

var builtinScalars = map[string]graphql.Output{
	"ID":         graphql.ID,
	"String":     graphql.String,
	"Int":        graphql.Int,
	"Float":      graphql.Float,
	"Boolean":    graphql.Boolean,
	"BigInt":     BigInt,
	"BigDecimal": BigDecimal,
	"Bytes":      Bytes,
}
