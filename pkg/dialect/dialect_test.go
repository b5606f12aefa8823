package dialect

import (
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	d, err := Parse("squid")
	require.NoError(t, err)
	assert.Same(t, Squid, d)

	d, err = Parse(" Subgraph ")
	require.NoError(t, err)
	assert.Same(t, Subgraph, d)

	_, err = Parse("hasura")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownDialect))
	assert.Contains(t, err.Error(), `"hasura"`)
	assert.Contains(t, err.Error(), "squid, subgraph")
}

func TestPluralize(t *testing.T) {
	tests := []struct {
		d        *Dialect
		in, want string
	}{
		{Squid, "token", "tokens"},
		{Squid, "factory", "factories"},
		{Squid, "PoolFactory", "PoolFactories"},
		{Squid, "data", "data"},
		{Squid, "MarketData", "MarketData"},
		{Squid, "flash", "flashes"},
		{Subgraph, "flash", "flashes"},
		{Subgraph, "Factory", "Factories"},
		{Subgraph, "data", "datas"},
		{Subgraph, "swap", "swaps"},
	}
	for _, tt := range tests {
		t.Run(tt.d.String()+"/"+tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.d.Pluralize(tt.in))
		})
	}
}

func TestSingularize(t *testing.T) {
	tests := []struct {
		d      *Dialect
		in     string
		want   string
		wantOK bool
	}{
		{Squid, "tokens", "token", true},
		{Squid, "factories", "factory", true},
		{Squid, "data", "data", true},
		{Squid, "flashes", "flash", true},
		{Squid, "tokenById", "", false},
		{Subgraph, "data", "", false},
		{Subgraph, "datas", "data", true},
		{Subgraph, "s", "", false},
		{Subgraph, "_meta", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.d.String()+"/"+tt.in, func(t *testing.T) {
			got, ok := tt.d.Singularize(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCandidates(t *testing.T) {
	assert.Equal(t, []string{"token"}, Squid.Candidates("tokenById"))
	assert.Equal(t, []string{"token"}, Squid.Candidates("tokenByUniqueInput"))
	assert.Equal(t, []string{"token"}, Squid.Candidates("tokensConnection"))
	assert.Equal(t, []string{"token"}, Squid.Candidates("tokens"))
	assert.Empty(t, Squid.Candidates("squidStatus"))
	assert.Equal(t, []string{"token"}, Subgraph.Candidates("tokens"))
	assert.Empty(t, Subgraph.Candidates("token"))
	assert.Empty(t, Subgraph.Candidates("_meta"))
}

func TestRequiredQueries(t *testing.T) {
	assert.Equal(t,
		[]string{"factories", "factoryById", "factoryByUniqueInput", "factoriesConnection"},
		Squid.RequiredQueries("factory"))
	assert.Equal(t, []string{"swap", "swaps"}, Subgraph.RequiredQueries("swap"))
}

func TestQueryBuilders(t *testing.T) {
	fields := []string{"id", "timestamp", "amount"}

	assert.Equal(t, "{ tokens(limit: 10) { id timestamp amount } }", Squid.SampleQuery("token", fields, 10))
	assert.Equal(t, "{ tokens(first: 10) { id timestamp amount } }", Subgraph.SampleQuery("token", fields, 10))

	assert.Equal(t,
		"{ tokens(limit: 3, orderBy: [timestamp_ASC, id_ASC]) { id timestamp amount } }",
		Squid.OrderedQuery("token", fields, "timestamp", 3))
	assert.Equal(t,
		"{ tokens(first: 3, orderBy: timestamp, orderDirection: asc) { id timestamp amount } }",
		Subgraph.OrderedQuery("token", fields, "timestamp", 3))

	assert.Equal(t,
		`{ tokens(where: {id_in: ["1", "a\"b"]}, first: 2) { id } }`,
		Subgraph.InclusionQuery("token", []string{"id"}, []string{"1", `a"b`}))
	assert.Equal(t,
		`{ factories(where: {id_in: ["x"]}, limit: 1) { id } }`,
		Squid.InclusionQuery("factory", []string{"id"}, []string{"x"}))
}

func TestIDScalarAndIgnoreList(t *testing.T) {
	assert.Equal(t, "String", Squid.IDScalar())
	assert.Equal(t, "ID", Subgraph.IDScalar())
	assert.True(t, Squid.IsIgnored("squidStatus"))
	assert.False(t, Squid.IsIgnored("_meta"))
	assert.True(t, Subgraph.IsIgnored("_meta"))
	assert.True(t, Squid.SortsByID())
	assert.False(t, Subgraph.SortsByID())
}

func TestPluralizationProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	properties := gopter.NewProperties(parameters)

	for _, d := range []*Dialect{Squid, Subgraph} {
		d := d
		properties.Property(d.String()+": pluralize is deterministic", prop.ForAll(
			func(name string) bool {
				return d.Pluralize(name) == d.Pluralize(name)
			},
			gen.Identifier(),
		))

		properties.Property(d.String()+": singularize inverts pluralize", prop.ForAll(
			func(name string) bool {
				plural := d.Pluralize(name)
				singular, ok := d.Singularize(plural)
				return ok && d.Pluralize(singular) == plural
			},
			gen.Identifier(),
		))
	}

	properties.TestingRun(t)
}
