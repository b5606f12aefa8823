// Package client is the transport used to query GraphQL endpoints.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMissingField is returned when a response has no data for the requested root field
var ErrMissingField = errors.New("response has no such root field")

// Querier sends one GraphQL query document to an endpoint
type Querier interface {
	Query(ctx context.Context, url, query string) (*Response, error)
}

// QuerierFunc adapts a function to Querier
type QuerierFunc func(ctx context.Context, url, query string) (*Response, error)

func (f QuerierFunc) Query(ctx context.Context, url, query string) (*Response, error) {
	return f(ctx, url, query)
}

// Request is the POST body of a GraphQL query
type Request struct {
	Query string `json:"query"`
}

// Response is a decoded GraphQL response
type Response struct {
	Data   json.RawMessage `json:"data,omitempty"`
	Errors []GraphQLError  `json:"errors,omitempty"`
}

// GraphQLError is one entry of a response's errors array
type GraphQLError struct {
	Message string `json:"message"`
	Path    []any  `json:"path,omitempty"`
}

// Record is one entity record. Numbers decode as json.Number.
type Record map[string]any

// TransportError reports an endpoint that failed to answer a query:
// network failure, non-200 status or a GraphQL errors payload.
type TransportError struct {
	URL        string
	Query      string
	StatusCode int
	Errors     []GraphQLError
	Err        error
}

func (e *TransportError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "query to %s failed", e.URL)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " with status %d", e.StatusCode)
	}
	if len(e.Errors) > 0 {
		msgs := make([]string, len(e.Errors))
		for i, ge := range e.Errors {
			msgs[i] = ge.Message
		}
		fmt.Fprintf(&b, ": %s", strings.Join(msgs, "; "))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	fmt.Fprintf(&b, " (query: %s)", e.Query)
	return b.String()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransportError reports whether err carries a *TransportError
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

func decodeNumbers(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

// Records decodes the list under a root field. A null list yields no records.
func (r *Response) Records(field string) ([]Record, error) {
	if len(r.Data) == 0 {
		return nil, fmt.Errorf("%w %q: empty data", ErrMissingField, field)
	}
	var data map[string]json.RawMessage
	if err := decodeNumbers(r.Data, &data); err != nil {
		return nil, fmt.Errorf("decode data: %w", err)
	}
	raw, ok := data[field]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrMissingField, field)
	}
	var records []Record
	if err := decodeNumbers(raw, &records); err != nil {
		return nil, fmt.Errorf("decode %q records: %w", field, err)
	}
	return records, nil
}

// FetchRecords queries an endpoint and decodes the records under field.
// A GraphQL errors payload is returned as a *TransportError.
func FetchRecords(ctx context.Context, q Querier, url, query, field string) ([]Record, error) {
	resp, err := q.Query(ctx, url, query)
	if err != nil {
		return nil, err
	}
	if len(resp.Errors) > 0 {
		return nil, &TransportError{URL: url, Query: query, Errors: resp.Errors}
	}
	records, err := resp.Records(field)
	if err != nil {
		return nil, &TransportError{URL: url, Query: query, Err: err}
	}
	return records, nil
}
