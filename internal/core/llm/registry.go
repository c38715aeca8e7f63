package llm

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mailsmart/mailsmart/internal/core/embeddings"
	apperrors "github.com/mailsmart/mailsmart/internal/core/errors"
	"github.com/mailsmart/mailsmart/internal/platform/observability"
)

// Registry manages summarization backends with ordered first-success
// fallback. Candidates are tried in priority order; the first one producing
// non-empty content wins and no further candidates are invoked.
type Registry struct {
	mu              sync.RWMutex
	providers       map[ProviderName]Provider
	order           []ProviderName // Priority order (highest first)
	circuitBreakers map[ProviderName]*embeddings.CircuitBreaker
	callTimeout     time.Duration
	logger          *zerolog.Logger
}

// NewRegistry creates a new backend registry. callTimeout bounds each
// individual provider call; zero selects the default.
func NewRegistry(callTimeout time.Duration, logger *zerolog.Logger) *Registry {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	if callTimeout <= 0 {
		callTimeout = defaultCallTimeout
	}

	return &Registry{
		providers:       make(map[ProviderName]Provider),
		order:           make([]ProviderName, 0),
		circuitBreakers: make(map[ProviderName]*embeddings.CircuitBreaker),
		callTimeout:     callTimeout,
		logger:          logger,
	}
}

// Register adds a provider to the registry.
func (r *Registry) Register(p Provider, cfg embeddings.CircuitBreakerConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := p.Name()
	r.providers[name] = p
	r.order = append(r.order, name)
	r.circuitBreakers[name] = embeddings.NewCircuitBreaker(cfg, r.logger)

	sort.SliceStable(r.order, func(i, j int) bool {
		return r.providers[r.order[i]].Priority() > r.providers[r.order[j]].Priority()
	})

	available := observability.MetricValueUnavailable
	if p.IsAvailable() {
		available = observability.MetricValueAvailable
	}

	observability.LLMProviderAvailable.WithLabelValues(string(name)).Set(available)

	r.logger.Info().
		Str(logKeyProvider, string(name)).
		Int(logKeyPriority, p.Priority()).
		Msg("registered summarization backend")
}

// ProviderCount returns the number of registered providers.
func (r *Registry) ProviderCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.providers)
}

// Statuses returns the registered providers in priority order.
func (r *Registry) Statuses() []ProviderStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	statuses := make([]ProviderStatus, 0, len(r.order))

	for _, name := range r.order {
		p := r.providers[name]
		statuses = append(statuses, ProviderStatus{
			Name:        name,
			Priority:    p.Priority(),
			Available:   p.IsAvailable(),
			CircuitOpen: r.circuitBreakers[name].IsOpen(),
		})
	}

	return statuses
}

// Complete tries each candidate in priority order and returns the first
// non-empty completion. Unconfigured candidates are skipped, not counted as
// failures. Empty output counts as a failure and the chain continues. When
// every candidate fails the joined error wraps ErrAllProvidersFailed so the
// caller can degrade to its sentinel summary.
func (r *Registry) Complete(ctx context.Context, prompt string) (string, error) {
	r.mu.RLock()
	order := make([]ProviderName, len(r.order))
	copy(order, r.order)
	r.mu.RUnlock()

	if len(order) == 0 {
		return "", apperrors.ErrNoProvidersAvailable
	}

	var (
		lastErr      error
		firstFailure ProviderName
	)

	for _, name := range order {
		r.mu.RLock()
		p := r.providers[name]
		cb := r.circuitBreakers[name]
		r.mu.RUnlock()

		if !p.IsAvailable() {
			continue
		}

		if !cb.CanAttempt() {
			r.logger.Debug().Str(logKeyProvider, string(name)).Msg(logMsgCircuitBreakerOpen)
			continue
		}

		text, err := r.callProvider(ctx, p, prompt)
		if err != nil {
			cb.RecordFailure(string(name))

			lastErr = err
			if firstFailure == "" {
				firstFailure = name
			}

			r.logger.Warn().Err(err).Str(logKeyProvider, string(name)).Msg(logMsgBackendFailed)

			if ctx.Err() != nil {
				break
			}

			continue
		}

		cb.RecordSuccess()

		if firstFailure != "" {
			observability.LLMFallbacks.WithLabelValues(string(firstFailure), string(name)).Inc()

			r.logger.Info().
				Str(logKeyProvider, string(name)).
				Str("from_provider", string(firstFailure)).
				Msg(logMsgUsedFallback)
		}

		return text, nil
	}

	if lastErr != nil {
		return "", errors.Join(apperrors.ErrAllProvidersFailed, lastErr)
	}

	return "", apperrors.ErrNoProvidersAvailable
}

// callProvider invokes one provider with a bounded timeout and maps empty
// output to ErrEmptyResponse.
func (r *Registry) callProvider(ctx context.Context, p Provider, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, r.callTimeout)
	defer cancel()

	start := time.Now()

	text, err := p.Complete(callCtx, prompt)
	status := observability.StatusSuccess

	if err == nil && strings.TrimSpace(text) == "" {
		err = apperrors.ErrEmptyResponse
	}

	if err != nil {
		status = observability.StatusError
	}

	observability.LLMRequestDuration.
		WithLabelValues(string(p.Name()), status).
		Observe(time.Since(start).Seconds())

	if err != nil {
		return "", err
	}

	return text, nil
}

// Ensure Registry implements Client interface.
var _ Client = (*Registry)(nil)
