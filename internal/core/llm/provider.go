package llm

import (
	"context"
)

// ProviderName identifies a summarization backend.
type ProviderName string

// Provider name constants.
const (
	ProviderGroq        ProviderName = "groq"
	ProviderGemini      ProviderName = "gemini"
	ProviderHuggingFace ProviderName = "huggingface"
	ProviderMock        ProviderName = "mock"
)

// Priority constants for provider ordering.
const (
	PriorityPrimary        = 100 // Primary provider (Groq)
	PriorityFallback       = 50  // First fallback (Gemini)
	PrioritySecondFallback = 25  // Second fallback (Hugging Face)
	PriorityMock           = 0   // Mock provider for testing
)

// Provider defines the interface for summarization backends. A provider is
// a single polymorphic capability: prompt in, raw completion text out.
// Provider-specific error handling stays inside each implementation; the
// registry only sees success, failure, or unavailability.
type Provider interface {
	// Name returns the provider identifier.
	Name() ProviderName

	// IsAvailable returns true if the provider is configured and available.
	IsAvailable() bool

	// Priority returns the provider priority (higher = preferred).
	Priority() int

	// Complete sends the prompt and returns the raw completion text.
	Complete(ctx context.Context, prompt string) (string, error)
}

// ProviderStatus describes one registered provider for diagnostics.
type ProviderStatus struct {
	Name        ProviderName `json:"name"`
	Priority    int          `json:"priority"`
	Available   bool         `json:"available"`
	CircuitOpen bool         `json:"circuit_open"`
}

// Client is the backend chain the pipeline depends on.
type Client interface {
	// Complete tries providers in priority order and returns the first
	// non-empty completion.
	Complete(ctx context.Context, prompt string) (string, error)

	// Statuses returns the registered providers in priority order.
	Statuses() []ProviderStatus
}
