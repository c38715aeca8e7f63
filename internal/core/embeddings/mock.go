package embeddings

import (
	"context"
	"hash/fnv"
)

// MockProvider is a deterministic embedding provider for tests and local
// development without an API key. Identical input always yields the same
// vector, which preserves the stable re-upsert property.
type MockProvider struct {
	dimensions int
}

// NewMockProvider creates a mock provider with the given dimensions.
func NewMockProvider(dimensions int) *MockProvider {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}

	return &MockProvider{dimensions: dimensions}
}

// Name returns the provider identifier.
func (p *MockProvider) Name() ProviderName {
	return ProviderMock
}

// IsAvailable always returns true.
func (p *MockProvider) IsAvailable() bool {
	return true
}

// Dimensions returns the configured output dimensions.
func (p *MockProvider) Dimensions() int {
	return p.dimensions
}

// Embed produces a pseudo-vector derived from an FNV hash of the text.
func (p *MockProvider) Embed(_ context.Context, text string) ([]float32, error) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	seed := h.Sum64()

	vec := make([]float32, p.dimensions)
	for i := range vec {
		seed = seed*6364136223846793005 + 1442695040888963407
		vec[i] = float32(int32(seed>>33)) / float32(1<<31)
	}

	return vec, nil
}

// Ensure MockProvider implements Provider interface.
var _ Provider = (*MockProvider)(nil)
