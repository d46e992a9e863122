package llm

import (
	"context"
	"time"
)

// MockProvider implements Provider for testing. It returns FixedContent, or
// walks Responses in order when set (useful for exercising the repair retry).
type MockProvider struct {
	FixedContent string
	Responses    []string
	PingErr      error
	GenerateErr  error

	// Calls records every (system, user) prompt pair sent to Generate.
	Calls []MockCall
}

// MockCall is one recorded Generate invocation.
type MockCall struct {
	SystemPrompt string
	UserPrompt   string
	Opts         Options
}

// NewMockProvider creates a mock provider with a canned response.
func NewMockProvider(content string) *MockProvider {
	return &MockProvider{FixedContent: content}
}

func (p *MockProvider) Name() string { return "Mock" }

func (p *MockProvider) Ping(_ context.Context) error {
	return p.PingErr
}

func (p *MockProvider) Generate(_ context.Context, systemPrompt, userPrompt string, opts Options) (*Response, error) {
	p.Calls = append(p.Calls, MockCall{SystemPrompt: systemPrompt, UserPrompt: userPrompt, Opts: opts})
	if p.GenerateErr != nil {
		return nil, p.GenerateErr
	}
	content := p.FixedContent
	if len(p.Responses) > 0 {
		i := len(p.Calls) - 1
		if i >= len(p.Responses) {
			i = len(p.Responses) - 1
		}
		content = p.Responses[i]
	}
	return &Response{
		Content:    content,
		Model:      "mock",
		TokensUsed: 100,
		Duration:   time.Millisecond,
	}, nil
}
