package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModelOrderAndFilter(t *testing.T) {
	m := NewModel(
		Entity{Name: "swap", Fields: []Field{{"id", "ID"}, {"timestamp", "BigInt"}}},
		Entity{Name: "pool", Fields: []Field{{"id", "ID"}}},
		Entity{Name: "token", Fields: []Field{{"id", "ID"}, {"symbol", "String"}}},
	)

	assert.Equal(t, 3, m.Len())
	assert.Equal(t, []string{"swap", "pool", "token"}, m.Names())

	filtered := m.Filter(func(name string) bool { return name != "pool" })
	assert.Equal(t, []string{"swap", "token"}, filtered.Names())
	assert.Equal(t, 3, m.Len(), "filter must not mutate the source model")

	names := m.Names()
	names[0] = "mutated"
	assert.Equal(t, "swap", m.Names()[0])
}

func TestModelFindFold(t *testing.T) {
	m := NewModel(Entity{Name: "LiquidityPosition"}, Entity{Name: "liquidityposition"})

	native, ok := m.FindFold("liquidityPosition")
	assert.True(t, ok)
	assert.Equal(t, "LiquidityPosition", native)
	assert.Equal(t, []string{"LiquidityPosition/liquidityposition"}, m.Collisions())

	_, ok = m.FindFold("missing")
	assert.False(t, ok)
}

func TestModelDuplicateNameKeepsFirst(t *testing.T) {
	m := NewModel(
		Entity{Name: "token", Fields: []Field{{"id", "ID"}}},
		Entity{Name: "token", Fields: []Field{{"id", "ID"}, {"name", "String"}}},
	)
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, []string{"id"}, m.FieldNames("token"))
}

func TestNilModel(t *testing.T) {
	var m *Model
	assert.Equal(t, 0, m.Len())
	assert.Nil(t, m.Names())
	_, ok := m.FindFold("x")
	assert.False(t, ok)
}
