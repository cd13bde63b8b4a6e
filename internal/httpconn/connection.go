// Package httpconn implements the HTTP connection capability (spec §4.6):
// a mockable request/response exchange, backed in production by one
// persistent client per HTTP-affinity worker thread (spec §4.3/§4.6
// connection affinity — each HTTP worker's Executor owns exactly one
// Connection, handed to jobs via executor.ConnectionAware's
// SetConnection).
package httpconn

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/urlofmar/cradle-sub001/internal/cerr"
	"github.com/urlofmar/cradle-sub001/internal/progress"
)

// Request describes an outbound HTTP exchange.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
}

// Response is the result of a successful exchange.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
}

// Connection is the capability a job invokes to perform one HTTP
// request, honoring cooperative cancellation and progress reporting
// (spec §4.6). Implementations must be safe for reuse across many
// sequential requests from the worker that owns them, but need not be
// safe for concurrent use by more than one worker.
type Connection interface {
	PerformRequest(ctx context.Context, checkIn progress.CheckIn, reporter progress.Reporter, req Request) (Response, error)
	Close()
}

// realConnection is the production Connection: one persistent
// *http.Client per worker, matching the teacher's outbound-client idiom
// of constructing a client once and reusing it across calls rather than
// building a new one per request.
type realConnection struct {
	client *http.Client
}

// NewConnection returns a production Connection with the given request
// timeout (zero means no per-request timeout beyond ctx).
func NewConnection(timeout time.Duration) Connection {
	return &realConnection{client: &http.Client{Timeout: timeout}}
}

func (c *realConnection) PerformRequest(ctx context.Context, checkIn progress.CheckIn, reporter progress.Reporter, req Request) (Response, error) {
	if err := checkIn(); err != nil {
		return Response{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		return Response{}, cerr.Wrap(cerr.Transport, err, "constructing HTTP request").With("url", req.URL)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	if reporter != nil {
		reporter(0)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return Response{}, cerr.Wrap(cerr.Transport, err, "performing HTTP request").With("url", req.URL)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, cerr.Wrap(cerr.Transport, err, "reading HTTP response body").With("url", req.URL)
	}

	if reporter != nil {
		reporter(1)
	}

	headers := make(map[string]string, len(resp.Header))
	for k := range resp.Header {
		headers[k] = resp.Header.Get(k)
	}
	return Response{StatusCode: resp.StatusCode, Headers: headers, Body: body}, nil
}

func (c *realConnection) Close() {
	c.client.CloseIdleConnections()
}
