package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/dd0wney/cluso-crosscheck/pkg/logging"
)

const (
	// DefaultTimeout bounds a single query round trip
	DefaultTimeout = 60 * time.Second

	maxErrorBody = 512
)

// Options configures an HTTPClient
type Options struct {
	Timeout time.Duration
	Headers map[string]string
	Token   TokenSource
	// RateLimit is queries per second; zero disables limiting
	RateLimit float64
	Burst     int
	Logger    logging.Logger
}

// HTTPClient posts queries as JSON and decodes the responses
type HTTPClient struct {
	httpClient *http.Client
	headers    map[string]string
	token      TokenSource
	limiter    *rate.Limiter
	logger     logging.Logger
}

// NewHTTPClient creates a client with the given options
func NewHTTPClient(opts Options) *HTTPClient {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}

	c := &HTTPClient{
		httpClient: &http.Client{Timeout: opts.Timeout},
		headers:    opts.Headers,
		token:      opts.Token,
		logger:     opts.Logger.With(logging.Component("client")),
	}
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	return c
}

// Query posts query to url. Network failures and non-200 statuses are
// returned as *TransportError; a GraphQL errors payload is left in the Response.
func (c *HTTPClient) Query(ctx context.Context, url, query string) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &TransportError{URL: url, Query: query, Err: err}
		}
	}

	timer := logging.StartTimer(c.logger, "graphql query", logging.Endpoint(url), logging.Query(query))

	body, err := json.Marshal(Request{Query: query})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{URL: url, Query: query, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	if c.token != nil {
		token, err := c.token.Token()
		if err != nil {
			return nil, &TransportError{URL: url, Query: query, Err: err}
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		timer.EndError(err)
		return nil, &TransportError{URL: url, Query: query, Err: fmt.Errorf("http request: %w", err)}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		timer.EndError(err)
		return nil, &TransportError{URL: url, Query: query, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		snippet := data
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		err := fmt.Errorf("unexpected status: %s", bytes.TrimSpace(snippet))
		timer.EndError(err)
		return nil, &TransportError{URL: url, Query: query, StatusCode: resp.StatusCode, Err: err}
	}

	var out Response
	if err := decodeNumbers(data, &out); err != nil {
		timer.EndError(err)
		return nil, &TransportError{URL: url, Query: query, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}

	timer.End()
	return &out, nil
}
