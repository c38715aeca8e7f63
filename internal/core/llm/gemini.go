package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	apperrors "github.com/mailsmart/mailsmart/internal/core/errors"
)

// Gemini model constants.
const (
	// DefaultGeminiModel is the cheapest/fastest Google model.
	DefaultGeminiModel = "gemini-2.5-flash-lite"
)

// geminiProvider implements the Provider interface for Google Gemini.
type geminiProvider struct {
	client      *genai.Client
	model       string
	rateLimiter *rate.Limiter
	logger      *zerolog.Logger
}

// GeminiConfig holds configuration for the Gemini provider.
type GeminiConfig struct {
	APIKey    string
	Model     string
	RateLimit int // Requests per second
}

// NewGeminiProvider creates a new Gemini summarization backend. Construction
// fails when the underlying client cannot be created; callers should log and
// continue without this backend.
func NewGeminiProvider(ctx context.Context, cfg GeminiConfig, logger *zerolog.Logger) (*geminiProvider, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultGeminiModel
	}

	if cfg.RateLimit == 0 {
		cfg.RateLimit = 1
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &geminiProvider{
		client:      client,
		model:       cfg.Model,
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), rateLimiterBurst),
		logger:      logger,
	}, nil
}

// Name returns the provider identifier.
func (p *geminiProvider) Name() ProviderName {
	return ProviderGemini
}

// IsAvailable returns true once the client is constructed.
func (p *geminiProvider) IsAvailable() bool {
	return p.client != nil
}

// Priority returns the provider priority.
func (p *geminiProvider) Priority() int {
	return PriorityFallback
}

// Complete generates content for the prompt and concatenates text parts.
func (p *geminiProvider) Complete(ctx context.Context, prompt string) (string, error) {
	if err := p.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf(errRateLimiter, err)
	}

	model := p.client.GenerativeModel(p.model)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	text := extractGeminiText(resp)
	if text == "" {
		return "", apperrors.ErrEmptyResponse
	}

	return text, nil
}

// extractGeminiText concatenates the text parts of the first candidate.
func extractGeminiText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return ""
	}

	var sb strings.Builder

	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	return sb.String()
}

// Ensure geminiProvider implements Provider interface.
var _ Provider = (*geminiProvider)(nil)
