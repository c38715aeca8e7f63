package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	apperrors "github.com/mailsmart/mailsmart/internal/core/errors"
)

// Hugging Face Inference API constants.
const (
	hfBaseURL = "https://api-inference.huggingface.co/models/"

	// DefaultHFModel is the default text generation model.
	DefaultHFModel = "mistralai/Mistral-7B-Instruct-v0.3"

	hfMaxNewTokens = 700
	hfHTTPTimeout  = 90 * time.Second
)

// hfProvider implements the Provider interface for the Hugging Face
// Inference API. The API has no official Go SDK, so requests go through a
// plain HTTP client.
type hfProvider struct {
	httpClient  *http.Client
	apiKey      string
	model       string
	rateLimiter *rate.Limiter
	logger      *zerolog.Logger
}

// HFConfig holds configuration for the Hugging Face provider.
type HFConfig struct {
	APIKey    string
	Model     string
	RateLimit int // Requests per second
}

// hfRequest is the inference request payload.
type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfParameters struct {
	MaxNewTokens   int  `json:"max_new_tokens"`
	ReturnFullText bool `json:"return_full_text"`
}

// hfGeneration is one element of the inference response array.
type hfGeneration struct {
	GeneratedText string `json:"generated_text"`
}

// hfErrorResponse is the error payload the API returns on failure, for
// example while a cold model is still loading.
type hfErrorResponse struct {
	Error string `json:"error"`
}

// NewHFProvider creates a new Hugging Face summarization backend.
func NewHFProvider(cfg HFConfig, logger *zerolog.Logger) *hfProvider {
	if cfg.Model == "" {
		cfg.Model = DefaultHFModel
	}

	if cfg.RateLimit == 0 {
		cfg.RateLimit = 1
	}

	return &hfProvider{
		httpClient:  &http.Client{Timeout: hfHTTPTimeout},
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), rateLimiterBurst),
		logger:      logger,
	}
}

// Name returns the provider identifier.
func (p *hfProvider) Name() ProviderName {
	return ProviderHuggingFace
}

// IsAvailable returns true if an API key is configured.
func (p *hfProvider) IsAvailable() bool {
	return p.apiKey != ""
}

// Priority returns the provider priority.
func (p *hfProvider) Priority() int {
	return PrioritySecondFallback
}

// Complete sends the prompt to the inference endpoint for the configured
// model and returns the generated text.
func (p *hfProvider) Complete(ctx context.Context, prompt string) (string, error) {
	if err := p.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf(errRateLimiter, err)
	}

	payload, err := json.Marshal(hfRequest{
		Inputs: prompt,
		Parameters: hfParameters{
			MaxNewTokens:   hfMaxNewTokens,
			ReturnFullText: false,
		},
	})
	if err != nil {
		return "", fmt.Errorf(errFmtMarshalRequest, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, hfBaseURL+p.model, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf(errFmtCreateRequest, err)
	}

	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("huggingface inference request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf(errFmtReadResponse, err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr hfErrorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return "", fmt.Errorf("huggingface inference: status %d: %s", resp.StatusCode, apiErr.Error)
		}

		return "", fmt.Errorf("huggingface inference: status %d", resp.StatusCode)
	}

	var generations []hfGeneration
	if err = json.Unmarshal(body, &generations); err != nil {
		return "", fmt.Errorf(errFmtDecodeResponse, err)
	}

	if len(generations) == 0 || generations[0].GeneratedText == "" {
		return "", apperrors.ErrEmptyResponse
	}

	return generations[0].GeneratedText, nil
}

// Ensure hfProvider implements Provider interface.
var _ Provider = (*hfProvider)(nil)
