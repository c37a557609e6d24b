// Package wallettest provides a scriptable wallet.Provider for tests.
package wallettest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"operator-console/internal/wallet"
)

// Handler answers one request. The returned value is JSON encoded.
type Handler func(params []interface{}) (interface{}, error)

// Call records one request seen by the fake.
type Call struct {
	Method string
	Params []interface{}
}

// Provider is an in-memory wallet.Provider. Unscripted methods fail with a
// generic -32601 error.
type Provider struct {
	wallet.Hub

	mu       sync.Mutex
	handlers map[string]Handler
	calls    []Call
}

func New() *Provider {
	return &Provider{handlers: make(map[string]Handler)}
}

// Handle scripts method.
func (p *Provider) Handle(method string, h Handler) *Provider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers[method] = h
	return p
}

// Returns scripts method to always answer v.
func (p *Provider) Returns(method string, v interface{}) *Provider {
	return p.Handle(method, func([]interface{}) (interface{}, error) { return v, nil })
}

// Fails scripts method to always fail with err.
func (p *Provider) Fails(method string, err error) *Provider {
	return p.Handle(method, func([]interface{}) (interface{}, error) { return nil, err })
}

// Request implements wallet.Provider.
func (p *Provider) Request(ctx context.Context, method string, params ...interface{}) (json.RawMessage, error) {
	p.mu.Lock()
	p.calls = append(p.calls, Call{Method: method, Params: params})
	h, ok := p.handlers[method]
	p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !ok {
		return nil, &wallet.Error{Code: -32601, Message: fmt.Sprintf("the method %s does not exist/is not available", method)}
	}
	v, err := h(params)
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

// Calls returns a copy of the recorded requests.
func (p *Provider) Calls() []Call {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Call(nil), p.calls...)
}

// CallsTo returns the recorded requests for method.
func (p *Provider) CallsTo(method string) []Call {
	var out []Call
	for _, c := range p.Calls() {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// Methods lists the recorded method names in order.
func (p *Provider) Methods() []string {
	var out []string
	for _, c := range p.Calls() {
		out = append(out, c.Method)
	}
	return out
}
