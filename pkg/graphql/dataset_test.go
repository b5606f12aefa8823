package graphql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDataset(t *testing.T) {
	ds, err := ParseDataset([]byte(`
entities:
  - name: liquidityPosition
    fields:
      - {name: owner, type: "Bytes!"}
    records:
      - {id: "1", owner: "0x01"}
`))
	require.NoError(t, err)
	require.Len(t, ds.Entities, 1)
	assert.Equal(t, "LiquidityPosition", ds.Entities[0].Type())

	ds.Entities[0].TypeName = "Position"
	assert.Equal(t, "Position", ds.Entities[0].Type())
}

func TestParseDatasetRejects(t *testing.T) {
	tests := map[string]string{
		"empty":           `entities: []`,
		"no name":         `entities: [{fields: []}]`,
		"duplicate name":  `entities: [{name: a}, {name: a}]`,
		"duplicate type":  `entities: [{name: a}, {name: b, type: A}]`,
		"untyped field":   `entities: [{name: a, fields: [{name: x}]}]`,
		"duplicate field": `entities: [{name: a, fields: [{name: x, type: Int}, {name: x, type: Int}]}]`,
		"missing id":      `entities: [{name: a, records: [{x: 1}]}]`,
		"duplicate id":    `entities: [{name: a, records: [{id: "1"}, {id: "1"}]}]`,
		"not yaml":        `entities: [`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseDataset([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestParseTypeExpr(t *testing.T) {
	te, err := parseTypeExpr("[Pool!]!")
	require.NoError(t, err)
	assert.True(t, te.nonNull)
	require.NotNil(t, te.list)
	assert.True(t, te.list.nonNull)
	assert.Equal(t, "Pool", te.named())

	for _, bad := range []string{"", "Int!!", "[Int", "a-b"} {
		_, err := parseTypeExpr(bad)
		assert.Error(t, err, bad)
	}
}

func TestSortRecords(t *testing.T) {
	records := []Record{
		{"id": "b", "n": "10"},
		{"id": "a", "n": 9},
		{"id": "c", "n": nil},
		{"id": "d", "n": "10"},
	}
	sorted := sortRecords(records, []OrderBy{{Field: "n"}, {Field: "id", Desc: true}})
	ids := make([]string, len(sorted))
	for i, r := range sorted {
		ids[i] = r["id"].(string)
	}
	assert.Equal(t, []string{"c", "a", "d", "b"}, ids)
	assert.Equal(t, "b", records[0]["id"], "input is not reordered")
}

func TestPageAndCursor(t *testing.T) {
	records := []Record{{"id": "1"}, {"id": "2"}, {"id": "3"}}
	assert.Len(t, page(records, 1, 5), 2)
	assert.Empty(t, page(records, 9, 1))
	assert.Len(t, page(records, -1, applyLimit(-1, DefaultLimits)), 3)
	assert.Equal(t, DefaultLimits.MaxLimit, applyLimit(5000, DefaultLimits))

	c := newConnection(records, 1, 1)
	require.Len(t, c.Edges, 1)
	idx, err := decodeCursor(c.PageInfo.EndCursor)
	require.NoError(t, err)
	assert.Equal(t, 2, idx)
	assert.True(t, c.PageInfo.HasNextPage)
	assert.True(t, c.PageInfo.HasPreviousPage)

	_, err = decodeCursor("!!")
	assert.Error(t, err)
}
