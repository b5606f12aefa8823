package client

import (
	"context"
	"time"
)

// Observer receives one observation per query
type Observer interface {
	ObserveQuery(role, status string, elapsed time.Duration)
}

// Query statuses passed to Observer
const (
	StatusOK            = "ok"
	StatusGraphQLErrors = "graphql_error"
	StatusFailed        = "transport_error"
)

type instrumented struct {
	next     Querier
	role     string
	observer Observer
}

// Instrument reports every query made through next to observer under role
func Instrument(next Querier, role string, observer Observer) Querier {
	if observer == nil {
		return next
	}
	return &instrumented{next: next, role: role, observer: observer}
}

func (i *instrumented) Query(ctx context.Context, url, query string) (*Response, error) {
	start := time.Now()
	resp, err := i.next.Query(ctx, url, query)
	status := StatusOK
	switch {
	case err != nil:
		status = StatusFailed
	case len(resp.Errors) > 0:
		status = StatusGraphQLErrors
	}
	i.observer.ObserveQuery(i.role, status, time.Since(start))
	return resp, err
}
