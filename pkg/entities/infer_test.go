package entities

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-crosscheck/pkg/dialect"
	is "github.com/dd0wney/cluso-crosscheck/pkg/introspection"
	"github.com/dd0wney/cluso-crosscheck/pkg/logging"
)

func tokenType() []is.Field {
	return []is.Field{
		is.NewField("id", is.NonNull(is.Scalar("String"))),
		is.NewField("symbol", is.NonNull(is.Scalar("String"))),
		is.NewField("holders", is.NonNull(is.List(is.NonNull(is.Object("Holder"))))),
	}
}

func TestInferSquid(t *testing.T) {
	s := is.NewBuilder().
		Object("Token", tokenType()...).
		Root("tokens", is.ListOf("Token")).
		Root("tokenById", is.Object("Token")).
		Root("tokenByUniqueInput", is.Object("Token")).
		Root("tokensConnection", is.NonNull(is.Object("TokensConnection"))).
		Root("squidStatus", is.Object("SquidStatus")).
		Build()

	res, err := Infer(s, dialect.Squid, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"token"}, res.Entities.Names())
	fields, ok := res.Entities.Fields("token")
	require.True(t, ok)
	assert.Equal(t, []Field{
		{Name: "id", Type: "String"},
		{Name: "symbol", Type: "String"},
		{Name: "holders", Type: "list Holder"},
	}, fields)
	assert.Equal(t, []string{"squidStatus"}, res.NonEntityQueries)
	assert.Empty(t, res.Incomplete)
}

func TestInferSquidIncompleteCandidate(t *testing.T) {
	mem := logging.NewMemoryLogger()
	s := is.NewBuilder().
		Object("Pool", is.NewField("id", is.Scalar("String"))).
		Root("pools", is.ListOf("Pool")).
		Root("poolById", is.Object("Pool")).
		Build()

	res, err := Infer(s, dialect.Squid, mem)
	require.NoError(t, err)

	assert.Equal(t, 0, res.Entities.Len())
	assert.Equal(t, []string{"pool"}, res.Incomplete)
	assert.Equal(t, []string{"pools", "poolById"}, res.NonEntityQueries)

	warnings := mem.Warnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, []string{"pool"}, warnings[0].Fields["candidates"])
}

func TestInferSquidIrregularPlurals(t *testing.T) {
	b := is.NewBuilder().
		Object("Factory", is.NewField("id", is.Scalar("String"))).
		Object("Data", is.NewField("id", is.Scalar("String")), is.NewField("value", is.Scalar("BigInt")))
	for _, e := range []struct{ name, plural, typ string }{
		{"factory", "factories", "Factory"},
		{"data", "data", "Data"},
	} {
		b.Root(e.plural, is.ListOf(e.typ)).
			Root(e.name+"ById", is.Object(e.typ)).
			Root(e.name+"ByUniqueInput", is.Object(e.typ)).
			Root(e.plural+"Connection", is.Object(e.typ+"Connection"))
	}

	res, err := Infer(b.Build(), dialect.Squid, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"factory", "data"}, res.Entities.Names())
	assert.Empty(t, res.NonEntityQueries)
	assert.Empty(t, res.Incomplete)
}

func TestInferSquidSelfPluralNeedsAllSignals(t *testing.T) {
	// "data" is its own plural; the list query alone must not confirm it
	s := is.NewBuilder().
		Object("Data", is.NewField("id", is.Scalar("String"))).
		Root("data", is.ListOf("Data")).
		Root("dataById", is.Object("Data")).
		Build()

	res, err := Infer(s, dialect.Squid, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Entities.Len())
	assert.Equal(t, []string{"data"}, res.Incomplete)
}

func TestInferSubgraph(t *testing.T) {
	s := is.NewBuilder().
		Object("Token", is.NewField("id", is.NonNull(is.Scalar("ID"))), is.NewField("decimals", is.Scalar("Int"))).
		Object("Pool", is.NewField("id", is.NonNull(is.Scalar("ID")))).
		Root("token", is.Object("Token")).
		Root("tokens", is.ListOf("Token")).
		Root("pools", is.ListOf("Pool")).
		Root("_meta", is.Object("_Meta_")).
		Build()

	res, err := Infer(s, dialect.Subgraph, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"token"}, res.Entities.Names())
	assert.Equal(t, []string{"id", "decimals"}, res.Entities.FieldNames("token"))
	assert.Equal(t, []string{"pools", "_meta"}, res.NonEntityQueries)
	assert.Equal(t, []string{"pool"}, res.Incomplete)
}

func TestInferDropsEntityWithUnexpectedListType(t *testing.T) {
	mem := logging.NewMemoryLogger()
	s := is.NewBuilder().
		Object("Swap", is.NewField("id", is.Scalar("ID"))).
		Root("swap", is.Object("Swap")).
		Root("swaps", is.Object("Swap")).
		Build()

	res, err := Infer(s, dialect.Subgraph, mem)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Entities.Len())
	assert.Equal(t, []string{"swap", "swaps"}, res.NonEntityQueries)
	require.Len(t, mem.Warnings(), 1)
	assert.Equal(t, "swap", mem.Warnings()[0].Fields["entity"])
}

func TestInferCaseCollision(t *testing.T) {
	mem := logging.NewMemoryLogger()
	s := is.NewBuilder().
		Object("token", is.NewField("id", is.Scalar("ID"))).
		Object("Token", is.NewField("id", is.Scalar("ID")), is.NewField("name", is.Scalar("String"))).
		Root("token", is.Object("token")).
		Root("tokens", is.ListOf("token")).
		Root("Token", is.Object("Token")).
		Root("Tokens", is.ListOf("Token")).
		Build()

	res, err := Infer(s, dialect.Subgraph, mem)
	require.NoError(t, err)

	assert.Equal(t, []string{"token", "Token"}, res.Entities.Names())
	native, ok := res.Entities.FindFold("TOKEN")
	require.True(t, ok)
	assert.Equal(t, "token", native)
	require.Len(t, mem.Warnings(), 1)
	assert.Contains(t, mem.Warnings()[0].Message, "collide")
}

func TestParseSchemaErrors(t *testing.T) {
	_, err := ParseSchema(is.NewBuilder().Build(), "hasura", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, dialect.ErrUnknownDialect)
	assert.Contains(t, err.Error(), `"hasura"`)

	_, err = ParseSchema(&is.Schema{}, "subgraph", nil)
	assert.ErrorIs(t, err, is.ErrNoQueryType)

	_, err = ParseSchema(nil, "squid", nil)
	assert.ErrorIs(t, err, is.ErrNoQueryType)
}

var stems = []string{"token", "pool", "factory", "data", "flash", "swap"}

// dialectQueries lists every root query a stem contributes in d and names the list query
func dialectQueries(d *dialect.Dialect, stem string) (names []string, list string) {
	return d.RequiredQueries(stem), d.ListQuery(stem)
}

func typeName(stem string) string {
	return strings.ToUpper(stem[:1]) + stem[1:]
}

func buildRandomSchema(d *dialect.Dialect, mask []bool) *is.Schema {
	b := is.NewBuilder()
	for _, s := range stems {
		b.Object(typeName(s), is.NewField("id", is.Scalar(d.IDScalar())))
	}
	i := 0
	for _, s := range stems {
		names, list := dialectQueries(d, s)
		for _, q := range names {
			if i < len(mask) && mask[i] {
				if q == list {
					b.Root(q, is.ListOf(typeName(s)))
				} else {
					b.Root(q, is.Object(typeName(s)))
				}
			}
			i++
		}
	}
	return b.Build()
}

func TestPropertyOnlyFullSignalEntities(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	for _, d := range []*dialect.Dialect{dialect.Squid, dialect.Subgraph} {
		d := d
		total := 0
		for _, s := range stems {
			names, _ := dialectQueries(d, s)
			total += len(names)
		}

		properties.Property(d.String()+" entities carry every required query", prop.ForAll(
			func(mask []bool) bool {
				schema := buildRandomSchema(d, mask)
				res, err := Infer(schema, d, nil)
				if err != nil {
					return false
				}
				queries, _ := schema.QueryNames()
				present := make(map[string]bool)
				for _, q := range queries {
					present[q] = true
				}
				for _, e := range res.Entities.Names() {
					for _, q := range d.RequiredQueries(e) {
						if !present[q] {
							return false
						}
					}
				}
				// every query is either consumed or reported as stray, never both
				consumed := 0
				for _, e := range res.Entities.Names() {
					consumed += len(d.RequiredQueries(e))
				}
				return consumed+len(res.NonEntityQueries) == len(queries)
			},
			gen.SliceOfN(total, gen.Bool()),
		))
	}

	properties.TestingRun(t)
}
