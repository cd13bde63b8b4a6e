package httpconn

import (
	"context"
	"fmt"
	"sync"

	"github.com/urlofmar/cradle-sub001/internal/cerr"
	"github.com/urlofmar/cradle-sub001/internal/progress"
)

// Exchange is one scripted request/response pair for MockConnection.
type Exchange struct {
	ExpectMethod string
	ExpectURL    string
	Response     Response
	Err          error
}

// MockConnection replays a fixed script of exchanges in order, failing
// loudly on an unexpected method/URL or an exhausted script (spec §4.6
// "mockable for deterministic tests").
type MockConnection struct {
	mu       sync.Mutex
	script   []Exchange
	next     int
	Requests []Request
}

// NewMockConnection returns a Connection that replays script in order.
func NewMockConnection(script ...Exchange) *MockConnection {
	return &MockConnection{script: script}
}

func (m *MockConnection) PerformRequest(_ context.Context, checkIn progress.CheckIn, reporter progress.Reporter, req Request) (Response, error) {
	if err := checkIn(); err != nil {
		return Response{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.Requests = append(m.Requests, req)

	if m.next >= len(m.script) {
		return Response{}, cerr.New(cerr.Transport, "mock connection script exhausted").
			With("method", req.Method).With("url", req.URL)
	}
	ex := m.script[m.next]
	m.next++

	if ex.ExpectMethod != "" && ex.ExpectMethod != req.Method {
		return Response{}, cerr.New(cerr.Transport, "unexpected method on mock connection").
			With("expected", ex.ExpectMethod).With("actual", req.Method)
	}
	if ex.ExpectURL != "" && ex.ExpectURL != req.URL {
		return Response{}, cerr.New(cerr.Transport, "unexpected URL on mock connection").
			With("expected", ex.ExpectURL).With("actual", req.URL)
	}
	if reporter != nil {
		reporter(1)
	}
	if ex.Err != nil {
		return Response{}, ex.Err
	}
	return ex.Response, nil
}

func (m *MockConnection) Close() {}

// String implements fmt.Stringer for debug logging.
func (m *MockConnection) String() string {
	return fmt.Sprintf("MockConnection(%d/%d exchanges consumed)", m.next, len(m.script))
}
