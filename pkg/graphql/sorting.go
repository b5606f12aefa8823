package graphql

import (
	"fmt"
	"math/big"
	"sort"
	"strings"
)

// OrderBy is one sort key
type OrderBy struct {
	Field string
	Desc  bool
}

// parseSquidOrderBy reads orderBy: [field_ASC, other_DESC]
func parseSquidOrderBy(args map[string]any) ([]OrderBy, error) {
	raw, ok := args["orderBy"]
	if !ok || raw == nil {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		items = []any{raw}
	}
	keys := make([]OrderBy, 0, len(items))
	for _, item := range items {
		s, _ := item.(string)
		if field, ok := strings.CutSuffix(s, "_ASC"); ok {
			keys = append(keys, OrderBy{Field: field})
		} else if field, ok := strings.CutSuffix(s, "_DESC"); ok {
			keys = append(keys, OrderBy{Field: field, Desc: true})
		} else {
			return nil, fmt.Errorf("invalid orderBy value %v", item)
		}
	}
	return keys, nil
}

// parseSubgraphOrderBy reads orderBy: field, orderDirection: asc|desc
func parseSubgraphOrderBy(args map[string]any) []OrderBy {
	field, _ := args["orderBy"].(string)
	if field == "" {
		return nil
	}
	direction, _ := args["orderDirection"].(string)
	return []OrderBy{{Field: field, Desc: direction == "desc"}}
}

// sortRecords orders records by keys, stable with respect to dataset order
func sortRecords(records []Record, keys []OrderBy) []Record {
	if len(keys) == 0 {
		return records
	}
	sorted := make([]Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		for _, k := range keys {
			c := compareValues(sorted[i][k.Field], sorted[j][k.Field])
			if c == 0 {
				continue
			}
			if k.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
	return sorted
}

// compareValues compares two values for sorting.
// Nulls sort first; numbers and numeric strings compare by value.
func compareValues(a, b any) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}
	if x, ok := toNumber(a); ok {
		if y, ok := toNumber(b); ok {
			return x.Cmp(y)
		}
	}
	if x, ok := a.(bool); ok {
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0
			case !x:
				return -1
			default:
				return 1
			}
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func toNumber(v any) (*big.Float, bool) {
	switch n := v.(type) {
	case int:
		return new(big.Float).SetInt64(int64(n)), true
	case int64:
		return new(big.Float).SetInt64(n), true
	case uint64:
		return new(big.Float).SetUint64(n), true
	case float64:
		return big.NewFloat(n), true
	case string:
		f, _, err := big.ParseFloat(n, 10, 256, big.ToNearestEven)
		if err != nil {
			return nil, false
		}
		return f, true
	}
	return nil, false
}
