package llm

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	apperrors "github.com/mailsmart/mailsmart/internal/core/errors"
)

// Groq API constants. Groq exposes an OpenAI-compatible chat completions
// endpoint, so the OpenAI client is pointed at its base URL.
const (
	groqBaseURL = "https://api.groq.com/openai/v1"

	// DefaultGroqModel is the default chat model.
	DefaultGroqModel = "llama-3.1-8b-instant"

	groqTemperature = 0.2
	groqMaxTokens   = 700
)

// groqProvider implements the Provider interface for Groq.
type groqProvider struct {
	client      *openai.Client
	model       string
	rateLimiter *rate.Limiter
	logger      *zerolog.Logger
	available   bool
}

// GroqConfig holds configuration for the Groq provider.
type GroqConfig struct {
	APIKey    string
	Model     string
	RateLimit int // Requests per second
}

// NewGroqProvider creates a new Groq summarization backend.
func NewGroqProvider(cfg GroqConfig, logger *zerolog.Logger) *groqProvider {
	if cfg.Model == "" {
		cfg.Model = DefaultGroqModel
	}

	if cfg.RateLimit == 0 {
		cfg.RateLimit = 1
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = groqBaseURL

	return &groqProvider{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), rateLimiterBurst),
		logger:      logger,
		available:   cfg.APIKey != "",
	}
}

// Name returns the provider identifier.
func (p *groqProvider) Name() ProviderName {
	return ProviderGroq
}

// IsAvailable returns true if an API key is configured.
func (p *groqProvider) IsAvailable() bool {
	return p.available
}

// Priority returns the provider priority.
func (p *groqProvider) Priority() int {
	return PriorityPrimary
}

// Complete sends the prompt as a single user message.
func (p *groqProvider) Complete(ctx context.Context, prompt string) (string, error) {
	if err := p.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf(errRateLimiter, err)
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: groqTemperature,
		MaxTokens:   groqMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("groq chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", apperrors.ErrEmptyResponse
	}

	return resp.Choices[0].Message.Content, nil
}

// Ensure groqProvider implements Provider interface.
var _ Provider = (*groqProvider)(nil)
