package crosscheck_test

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-crosscheck/pkg/client"
	"github.com/dd0wney/cluso-crosscheck/pkg/compare"
	"github.com/dd0wney/cluso-crosscheck/pkg/crosscheck"
	"github.com/dd0wney/cluso-crosscheck/pkg/dialect"
	"github.com/dd0wney/cluso-crosscheck/pkg/graphql"
	"github.com/dd0wney/cluso-crosscheck/pkg/logging"
	"github.com/dd0wney/cluso-crosscheck/pkg/report"
)

const dex = `
entities:
  - name: token
    fields:
      - {name: symbol, type: "String!"}
      - {name: decimals, type: "Int!"}
    records:
      - {id: "0xAA", symbol: "WETH", decimals: 18}
      - {id: "0xbb", symbol: "USDC", decimals: 6}
  - name: pool
    fields:
      - {name: token0, type: "Token!"}
      - {name: liquidity, type: "BigDecimal!"}
    records:
      - {id: "0xp1", token0: "0xAA", liquidity: "1234.5"}
  - name: swap
    fields:
      - {name: pool, type: "Pool!"}
      - {name: timestamp, type: "BigInt!"}
      - {name: amount, type: "BigDecimal!"}
    records:
      - {id: "s3", pool: "0xp1", timestamp: "300", amount: "3"}
      - {id: "s1", pool: "0xp1", timestamp: "100", amount: "1"}
      - {id: "s2b", pool: "0xp1", timestamp: "200", amount: "2.5"}
      - {id: "s2a", pool: "0xp1", timestamp: "200", amount: "2"}
`

func dataset(t *testing.T) *graphql.Dataset {
	t.Helper()
	ds, err := graphql.ParseDataset([]byte(dex))
	require.NoError(t, err)
	return ds
}

func target(t *testing.T, ds *graphql.Dataset, d *dialect.Dialect) crosscheck.Target {
	t.Helper()
	h, err := graphql.NewFixtureHandler(ds, d, nil)
	require.NoError(t, err)
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return crosscheck.Target{URL: srv.URL, Dialect: d, Querier: client.NewHTTPClient(client.Options{})}
}

func render(t *testing.T, rep *crosscheck.Report) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, (&report.TextReporter{}).Report(&buf, rep))
	return buf.String()
}

func TestRunCleanSquidToSubgraph(t *testing.T) {
	ref := target(t, dataset(t), dialect.Subgraph)
	smp := target(t, dataset(t), dialect.Squid)

	rep, err := crosscheck.NewRunner(crosscheck.DefaultOptions(), nil).Run(context.Background(), ref, smp)
	require.NoError(t, err)
	assert.False(t, rep.HasIssues())
	assert.Equal(t, []string{"swap"}, rep.TemporalEntities)
	assert.Equal(t, []string{"pool", "token"}, rep.NonTemporalEntities)
	assert.Nil(t, rep.Temporal)
	assert.NotEmpty(t, rep.RunID)

	want := `Did not find any queries not associated with entities
Comparing 3 entities of the reference API to 3 entities of the sample API
Reference entities: ["pool","swap","token"]
No issues found during the schema comparison
Detected 1 temporal entities and 2 non-temporal entities
Testing all entities as non-temporal
No issues found with non-temporal entities
`
	assert.Equal(t, want, render(t, rep))
}

func TestRunIsIdempotent(t *testing.T) {
	sampleData := dataset(t)
	sampleData.Entities[2].Records[1]["amount"] = "1.5"
	ref := target(t, dataset(t), dialect.Subgraph)
	smp := target(t, sampleData, dialect.Squid)

	opts := crosscheck.DefaultOptions()
	opts.OrderedRecords = true
	runner := crosscheck.NewRunner(opts, nil)

	first, err := runner.Run(context.Background(), ref, smp)
	require.NoError(t, err)
	second, err := runner.Run(context.Background(), ref, smp)
	require.NoError(t, err)

	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, render(t, first), render(t, second))
}

func TestRunReportsDivergence(t *testing.T) {
	sampleData := dataset(t)
	// token 0xbb is missing and swap s1 has another amount
	sampleData.Entities[0].Records = sampleData.Entities[0].Records[:1]
	sampleData.Entities[2].Records[1]["amount"] = "1.5"
	sampleData.ExtraQueries = []string{"debug"}

	ref := target(t, dataset(t), dialect.Subgraph)
	smp := target(t, sampleData, dialect.Squid)

	opts := crosscheck.DefaultOptions()
	opts.OrderedRecords = true
	logger := logging.NewMemoryLogger()
	rep, err := crosscheck.NewRunner(opts, logger).Run(context.Background(), ref, smp)
	require.NoError(t, err)
	require.True(t, rep.HasIssues())

	assert.Equal(t, map[string]int{
		compare.PhaseStrayQueries: 2,
		compare.PhaseSchema:       0,
		compare.PhaseTemporal:     rep.Temporal.IssueCount(),
		compare.PhaseNonTemporal:  rep.NonTemporal.IssueCount(),
	}, rep.IssueCounts())

	text := render(t, rep)
	assert.Contains(t, text, "Found queries not related to any entities:\n  sample    : [\"debug\"]\n  reference : []\n")
	assert.Contains(t, text, "Issues with entity swap on queries:")
	assert.Contains(t, text, `for record 0 field amount differs: "1" in reference vs "1.5" in sample`)
	assert.Contains(t, text, "Issues with entity token:\n  reference -> sample:\n")
	assert.Contains(t, text, `record "0xbb" was not found by the sample`)
	assert.Contains(t, text, "number of same id records found in sample (1) is different from the size of the sample retrieved from reference (2)")
	assert.NotContains(t, text, "Testing all entities as non-temporal")
	assert.Contains(t, text, "No issues found during the schema comparison")
	assert.NotEmpty(t, logger.Entries())
}

func TestRunSchemaDivergenceExcludesEntity(t *testing.T) {
	sampleData := dataset(t)
	sampleData.Entities[0].Fields[1].Type = "String!"

	ref := target(t, dataset(t), dialect.Subgraph)
	smp := target(t, sampleData, dialect.Squid)

	rep, err := crosscheck.NewRunner(crosscheck.DefaultOptions(), nil).Run(context.Background(), ref, smp)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Schema.IssueCount())
	assert.Equal(t, []string{"pool"}, rep.NonTemporalEntities)
	assert.Contains(t, render(t, rep), `for field "decimals": type diff "Int"!=="String"`)
}

func TestRunFailsWhenEndpointIsDown(t *testing.T) {
	ref := target(t, dataset(t), dialect.Subgraph)
	down := crosscheck.Target{
		URL:     "http://sample.invalid",
		Dialect: dialect.Squid,
		Querier: client.QuerierFunc(func(ctx context.Context, url, query string) (*client.Response, error) {
			return nil, &client.TransportError{URL: url, Err: errors.New("connection refused")}
		}),
	}
	_, err := crosscheck.NewRunner(crosscheck.DefaultOptions(), nil).Run(context.Background(), ref, down)
	require.Error(t, err)
	assert.True(t, client.IsTransportError(err))
	assert.Contains(t, err.Error(), "sample")
}

func TestRunHonoursCancellation(t *testing.T) {
	ref := target(t, dataset(t), dialect.Subgraph)
	smp := target(t, dataset(t), dialect.Squid)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := crosscheck.NewRunner(crosscheck.DefaultOptions(), nil).Run(ctx, ref, smp)
	require.Error(t, err)
}
