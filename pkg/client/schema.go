package client

import (
	"context"
	"fmt"

	"github.com/dd0wney/cluso-crosscheck/pkg/introspection"
)

type introspectionData struct {
	Schema *introspection.Schema `json:"__schema"`
}

// GetEndpointSchema runs the introspection query and returns the __schema payload
func GetEndpointSchema(ctx context.Context, q Querier, url string) (*introspection.Schema, error) {
	resp, err := q.Query(ctx, url, introspection.IntrospectionQuery)
	if err != nil {
		return nil, fmt.Errorf("introspect %s: %w", url, err)
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("introspect %s: %w", url,
			&TransportError{URL: url, Query: "IntrospectionQuery", Errors: resp.Errors})
	}

	var data introspectionData
	if err := decodeNumbers(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("introspect %s: decode schema: %w", url, err)
	}
	if data.Schema == nil {
		return nil, fmt.Errorf("introspect %s: response has no __schema", url)
	}
	return data.Schema, nil
}
