// Package mock provides a scripted llm.Provider for tests.
package mock

import (
	"context"
	"sync"

	"github.com/iTherapyLLC/innervoice/pkg/provider/llm"
)

// Provider is a scripted llm.Provider. Each Complete call consumes the next
// entry of Responses; when the script runs out, the last entry is repeated.
// All calls are recorded for assertions. Safe for concurrent use.
type Provider struct {
	mu sync.Mutex

	// Responses are returned in order by Complete.
	Responses []string

	// Err, when non-nil, is returned by every Complete call instead of a
	// response.
	Err error

	// Requests records every CompletionRequest received.
	Requests []llm.CompletionRequest

	calls int
}

var _ llm.Provider = (*Provider)(nil)

// New returns a Provider scripted with the given responses.
func New(responses ...string) *Provider {
	return &Provider{Responses: responses}
}

// Complete implements llm.Provider.
func (p *Provider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.Requests = append(p.Requests, req)
	if p.Err != nil {
		return nil, p.Err
	}
	if len(p.Responses) == 0 {
		return &llm.CompletionResponse{}, nil
	}

	i := p.calls
	if i >= len(p.Responses) {
		i = len(p.Responses) - 1
	}
	p.calls++
	return &llm.CompletionResponse{Content: p.Responses[i]}, nil
}

// CountTokens implements llm.Provider with a 4-chars-per-token estimate.
func (p *Provider) CountTokens(messages []llm.Message) (int, error) {
	total := 0
	for _, m := range messages {
		total += (len(m.Content) + 3) / 4
	}
	return total, nil
}

// Capabilities implements llm.Provider.
func (p *Provider) Capabilities() llm.Capabilities {
	return llm.Capabilities{ContextWindow: 128_000, MaxOutputTokens: 4_096}
}

// CallCount returns how many Complete calls the provider has received.
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Requests)
}

// LastRequest returns the most recent request, or false when none were made.
func (p *Provider) LastRequest() (llm.CompletionRequest, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.Requests) == 0 {
		return llm.CompletionRequest{}, false
	}
	return p.Requests[len(p.Requests)-1], true
}
