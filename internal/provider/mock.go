package provider

import (
	"context"
	"sync"
)

// Mock is a deterministic Transport for testing. It is safe for concurrent
// use so the parallel tribunal can share one instance.
type Mock struct {
	// Response is returned by Generate when Handler is nil.
	Response string

	// Error, if set, is returned by Generate instead of a response.
	Error error

	// Handler, if set, computes the response for each request.
	Handler func(req Request) (string, error)

	mu    sync.Mutex
	calls []Request
}

// NewMock creates a mock that always returns response.
func NewMock(response string) *Mock {
	return &Mock{Response: response}
}

// NewMockWithError creates a mock that always fails with err.
func NewMockWithError(err error) *Mock {
	return &Mock{Error: err}
}

// NewMockFunc creates a mock that routes every request through fn.
func NewMockFunc(fn func(req Request) (string, error)) *Mock {
	return &Mock{Handler: fn}
}

// Generate records req and returns the scripted result.
func (m *Mock) Generate(ctx context.Context, req Request) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()

	if err := checkCancelled(ctx); err != nil {
		return "", err
	}
	if m.Error != nil {
		return "", m.Error
	}
	if m.Handler != nil {
		return m.Handler(req)
	}
	return m.Response, nil
}

// Calls returns a copy of every request seen so far.
func (m *Mock) Calls() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.calls))
	copy(out, m.calls)
	return out
}

// LastRequest returns the most recent request, or the zero value.
func (m *Mock) LastRequest() Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return Request{}
	}
	return m.calls[len(m.calls)-1]
}
