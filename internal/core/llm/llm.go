package llm

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/mailsmart/mailsmart/internal/core/embeddings"
)

// Config selects and configures the summarization backends. A backend is
// registered only when its API key is present; with no keys at all the mock
// backend keeps the pipeline functional.
type Config struct {
	GroqAPIKey   string
	GroqModel    string
	GeminiAPIKey string
	GeminiModel  string
	HFAPIKey     string
	HFModel      string

	RateLimit   int // Requests per second, per backend
	CallTimeout time.Duration

	CircuitBreaker embeddings.CircuitBreakerConfig
}

// New builds the backend registry from configuration. Backend construction
// errors are logged and the backend is skipped; the chain degrades rather
// than failing startup.
func New(ctx context.Context, cfg Config, logger *zerolog.Logger) *Registry {
	registry := NewRegistry(cfg.CallTimeout, logger)

	if cfg.GroqAPIKey != "" {
		registry.Register(NewGroqProvider(GroqConfig{
			APIKey:    cfg.GroqAPIKey,
			Model:     cfg.GroqModel,
			RateLimit: cfg.RateLimit,
		}, logger), cfg.CircuitBreaker)
	}

	if cfg.GeminiAPIKey != "" {
		gemini, err := NewGeminiProvider(ctx, GeminiConfig{
			APIKey:    cfg.GeminiAPIKey,
			Model:     cfg.GeminiModel,
			RateLimit: cfg.RateLimit,
		}, logger)
		if err != nil {
			logger.Error().Err(err).Str(logKeyProvider, string(ProviderGemini)).Msg("failed to create summarization backend")
		} else {
			registry.Register(gemini, cfg.CircuitBreaker)
		}
	}

	if cfg.HFAPIKey != "" {
		registry.Register(NewHFProvider(HFConfig{
			APIKey:    cfg.HFAPIKey,
			Model:     cfg.HFModel,
			RateLimit: cfg.RateLimit,
		}, logger), cfg.CircuitBreaker)
	}

	if registry.ProviderCount() == 0 {
		logger.Warn().Msg("no summarization backend configured, using mock")
		registry.Register(NewMockProvider(), cfg.CircuitBreaker)
	}

	return registry
}
