package compare

import (
	"encoding/json"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/dd0wney/cluso-crosscheck/pkg/entities"
	"github.com/dd0wney/cluso-crosscheck/pkg/introspection"
)

func isScalarField(f entities.Field) bool {
	return introspection.IsScalar(f.Type)
}

// formatValue renders a decoded JSON value for issue messages
func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return "?"
		}
		return string(b)
	}
}

// looseEqual compares decoded JSON scalars. Two strings compare exactly;
// otherwise numbers and numeric strings compare by value, so 1000 equals "1000".
func looseEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	as, aStr := a.(string)
	bs, bStr := b.(string)
	if aStr && bStr {
		return as == bs
	}

	an, aNum := numeric(a)
	bn, bNum := numeric(b)
	if aNum && bNum {
		return an.Cmp(bn) == 0
	}
	return reflect.DeepEqual(a, b)
}

func numeric(v any) (*big.Float, bool) {
	var s string
	switch t := v.(type) {
	case json.Number:
		s = t.String()
	case string:
		s = strings.TrimSpace(t)
		if s == "" {
			return nil, false
		}
	case float64:
		return new(big.Float).SetFloat64(t), true
	case int:
		return new(big.Float).SetInt64(int64(t)), true
	case int64:
		return new(big.Float).SetInt64(t), true
	case bool:
		if t {
			return big.NewFloat(1), true
		}
		return big.NewFloat(0), true
	default:
		return nil, false
	}
	f, _, err := big.ParseFloat(s, 10, 256, big.ToNearestEven)
	if err != nil {
		return nil, false
	}
	return f, true
}
