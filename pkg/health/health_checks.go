package health

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/dd0wney/cluso-crosscheck/pkg/client"
	"github.com/dd0wney/cluso-crosscheck/pkg/dialect"
)

// probeQuery asks for the root query type name only
const probeQuery = "query { __schema { queryType { name } } }"

// Static is a check that always reports healthy with message
func Static(message string) CheckFunc {
	return func(ctx context.Context) Check {
		return Check{Status: StatusHealthy, Message: message}
	}
}

// EndpointCheck probes a GraphQL endpoint with a minimal introspection
// query. A transport failure is unhealthy; a GraphQL errors payload or a
// missing query type is degraded.
func EndpointCheck(q client.Querier, url string, d *dialect.Dialect) CheckFunc {
	return func(ctx context.Context) Check {
		check := Check{Details: map[string]any{"url": url}}
		if d != nil {
			check.Details["dialect"] = d.String()
		}

		resp, err := q.Query(ctx, url, probeQuery)
		switch {
		case err != nil:
			check.Status = StatusUnhealthy
			check.Message = err.Error()
		case len(resp.Errors) > 0:
			msgs := make([]string, len(resp.Errors))
			for i, e := range resp.Errors {
				msgs[i] = e.Message
			}
			check.Status = StatusDegraded
			check.Message = strings.Join(msgs, "; ")
		case !hasQueryType(resp.Data):
			check.Status = StatusDegraded
			check.Message = "schema has no query type"
		default:
			check.Status = StatusHealthy
			check.Message = "introspection answered"
		}
		return check
	}
}

func hasQueryType(data json.RawMessage) bool {
	var probe struct {
		Schema struct {
			QueryType *struct {
				Name string `json:"name"`
			} `json:"queryType"`
		} `json:"__schema"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return false
	}
	return probe.Schema.QueryType != nil && probe.Schema.QueryType.Name != ""
}

// PingCheck reports a store unhealthy when ping fails
func PingCheck(ping func(ctx context.Context) error) CheckFunc {
	return func(ctx context.Context) Check {
		if err := ping(ctx); err != nil {
			return Check{Status: StatusUnhealthy, Message: err.Error()}
		}
		return Check{Status: StatusHealthy, Message: "Connected"}
	}
}
