package compare

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/dd0wney/cluso-crosscheck/pkg/client"
	"github.com/dd0wney/cluso-crosscheck/pkg/dialect"
	"github.com/dd0wney/cluso-crosscheck/pkg/entities"
)

var (
	rootField = regexp.MustCompile(`^\{ (\w+)\(`)
	pageArg   = regexp.MustCompile(`(?:limit|first): (\d+)`)
	idIn      = regexp.MustCompile(`id_in: \[([^\]]*)\]`)
)

// fakeAPI answers the query shapes the comparators build from in-memory records.
// Records are returned in stored order.
type fakeAPI struct {
	records map[string][]client.Record
	// foldIDs matches id_in case-insensitively
	foldIDs bool
	// fail makes every query return a GraphQL error
	fail    bool
	queries []string
}

func (f *fakeAPI) Query(_ context.Context, url, query string) (*client.Response, error) {
	f.queries = append(f.queries, query)
	if f.fail {
		return &client.Response{Errors: []client.GraphQLError{{Message: "Type Query has no field orderBy"}}}, nil
	}
	m := rootField.FindStringSubmatch(query)
	if m == nil {
		return nil, errors.New("fake: cannot parse " + query)
	}
	field := m[1]
	all := f.records[field]

	var out []client.Record
	if ids := idIn.FindStringSubmatch(query); ids != nil {
		want := map[string]bool{}
		for _, raw := range strings.Split(ids[1], ", ") {
			id, _ := strconv.Unquote(raw)
			if f.foldIDs {
				id = strings.ToLower(id)
			}
			want[id] = true
		}
		for _, r := range all {
			id, _ := r["id"].(string)
			if f.foldIDs {
				id = strings.ToLower(id)
			}
			if want[id] {
				out = append(out, r)
			}
		}
	} else {
		out = all
	}
	if p := pageArg.FindStringSubmatch(query); p != nil {
		n, _ := strconv.Atoi(p[1])
		if n < len(out) {
			out = out[:n]
		}
	}
	if out == nil {
		out = []client.Record{}
	}

	data, err := json.Marshal(map[string]any{field: out})
	if err != nil {
		return nil, err
	}
	return &client.Response{Data: data}, nil
}

func tokenEntity(name string) entities.Entity {
	return entities.Entity{Name: name, Fields: []entities.Field{
		{Name: "id", Type: "ID"},
		{Name: "timestamp", Type: "BigInt"},
	}}
}

func endpoint(d *dialect.Dialect, api *fakeAPI, list ...entities.Entity) Endpoint {
	return Endpoint{
		Side:    Side{Dialect: d, Entities: entities.NewModel(list...)},
		URL:     "http://" + d.String() + ".test/graphql",
		Querier: api,
	}
}

func recs(pairs ...string) []client.Record {
	var out []client.Record
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, client.Record{"id": pairs[i], "timestamp": json.Number(pairs[i+1])})
	}
	return out
}
