// Package embeddings turns text into fixed-length float vectors for the
// semantic store.
package embeddings

import (
	"context"
	"time"
)

// ProviderName identifies an embedding provider.
type ProviderName string

// Provider name constants.
const (
	ProviderOpenAI ProviderName = "openai"
	ProviderMock   ProviderName = "mock"
)

// DefaultDimensions matches the email_vectors schema (text-embedding-3-small).
const DefaultDimensions = 1536

// Circuit breaker defaults.
const (
	defaultCircuitThreshold = 5
	defaultCircuitReset     = time.Minute
)

// Provider defines the interface for embedding providers. For a fixed
// provider and fixed input the returned vector is stable across calls,
// which makes re-upserting into the store safe.
type Provider interface {
	// Name returns the provider identifier.
	Name() ProviderName

	// Embed generates an embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// IsAvailable returns true if the provider is configured and available.
	IsAvailable() bool

	// Dimensions returns the output vector length.
	Dimensions() int
}

// CircuitBreakerConfig defines circuit breaker settings.
type CircuitBreakerConfig struct {
	Threshold  int           // Number of failures before opening circuit
	ResetAfter time.Duration // Time before attempting recovery
}

// DefaultCircuitBreakerConfig returns sensible defaults for circuit breaker.
func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Threshold:  defaultCircuitThreshold,
		ResetAfter: defaultCircuitReset,
	}
}
