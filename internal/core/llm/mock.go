package llm

import (
	"context"
)

// mockResponse is a fixed well-formed completion so local runs without any
// API keys still exercise the full parse and digest path.
const mockResponse = `{"summary_of_emails":["Mock summary: no summarization backend is configured"],"actions":[]}`

// MockProvider is a deterministic backend for local development and tests.
type MockProvider struct {
	available bool
}

// NewMockProvider creates a mock summarization backend.
func NewMockProvider() *MockProvider {
	return &MockProvider{available: true}
}

// Name returns the provider identifier.
func (p *MockProvider) Name() ProviderName {
	return ProviderMock
}

// IsAvailable returns the configured availability.
func (p *MockProvider) IsAvailable() bool {
	return p.available
}

// Priority returns the provider priority.
func (p *MockProvider) Priority() int {
	return PriorityMock
}

// Complete returns a canned JSON summary.
func (p *MockProvider) Complete(_ context.Context, _ string) (string, error) {
	return mockResponse, nil
}

// Ensure MockProvider implements Provider interface.
var _ Provider = (*MockProvider)(nil)
