// Package mock provides a test double for the llm.Provider interface.
//
// Use Provider in unit tests to verify the prompts the composer sends and
// to feed controlled replies without a live backend:
//
//	p := &mock.Provider{Response: &llm.Response{Text: "Take the 7-iron."}}
//	resp, err := p.Complete(ctx, req)
package mock

import (
	"context"
	"sync"

	"github.com/JamieWonderchild/ai-golf-caddie/pkg/provider/llm"
)

// Provider is a mock implementation of llm.Provider. Zero values cause
// Complete to return an empty response and nil error. Set Err to inject a
// failure.
type Provider struct {
	mu sync.Mutex

	// Response is returned by Complete. Nil yields an empty Response.
	Response *llm.Response

	// Err, if non-nil, is returned by Complete instead of Response.
	Err error

	// Requests records every request passed to Complete, in order.
	Requests []llm.Request
}

var _ llm.Provider = (*Provider)(nil)

// Complete implements llm.Provider.
func (p *Provider) Complete(_ context.Context, req llm.Request) (*llm.Response, error) {
	p.mu.Lock()
	p.Requests = append(p.Requests, req)
	resp, err := p.Response, p.Err
	p.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if resp == nil {
		return &llm.Response{}, nil
	}
	out := *resp
	return &out, nil
}

// LastRequest returns the most recent request, or a zero Request when
// Complete has not been called.
func (p *Provider) LastRequest() llm.Request {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.Requests) == 0 {
		return llm.Request{}
	}
	return p.Requests[len(p.Requests)-1]
}
