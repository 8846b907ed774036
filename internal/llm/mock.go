package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockResponse is one scripted reply of a MockProvider.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
	// Truncated makes the reply fail as if MaxTokens was hit.
	Truncated bool
}

// MockProvider replays scripted replies in order and records every
// request. It is what the "mock" provider name resolves to, so it also
// backs offline runs of the explain command.
type MockProvider struct {
	mu      sync.Mutex
	replies []MockResponse
	Calls   []Request
}

func NewMockProvider(replies ...MockResponse) *MockProvider {
	return &MockProvider{replies: replies}
}

// Generate pops the next reply. Once the script runs out every call
// fails with ErrProviderUnavailable.
func (m *MockProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, req)

	if len(m.replies) == 0 {
		return nil, &ErrProviderUnavailable{}
	}
	r := m.replies[0]
	m.replies = m.replies[1:]

	switch {
	case r.Err != nil:
		return nil, r.Err
	case r.Truncated:
		return nil, &ErrMaxTokensExceeded{Content: r.Content}
	}
	if err := validateResponse(req.Schema, r.Content); err != nil {
		return nil, err
	}
	return &Response{Content: r.Content, Usage: r.Usage, Model: "mock", StopReason: "end"}, nil
}

func (m *MockProvider) ModelID() string { return "mock" }

// AddResponse appends to the script.
func (m *MockProvider) AddResponse(r MockResponse) {
	m.mu.Lock()
	m.replies = append(m.replies, r)
	m.mu.Unlock()
}

func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
