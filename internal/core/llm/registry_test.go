package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailsmart/mailsmart/internal/core/embeddings"
	apperrors "github.com/mailsmart/mailsmart/internal/core/errors"
)

// fakeProvider is a scriptable backend for registry tests.
type fakeProvider struct {
	name      ProviderName
	priority  int
	available bool
	text      string
	err       error
	calls     int
}

func (f *fakeProvider) Name() ProviderName { return f.name }
func (f *fakeProvider) IsAvailable() bool  { return f.available }
func (f *fakeProvider) Priority() int      { return f.priority }

func (f *fakeProvider) Complete(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.text, f.err
}

func newTestRegistry() *Registry {
	logger := zerolog.Nop()
	return NewRegistry(time.Second, &logger)
}

func TestRegistryFirstSuccessStopsChain(t *testing.T) {
	registry := newTestRegistry()

	failing := &fakeProvider{name: "a", priority: 100, available: true, err: errors.New("boom")}
	succeeding := &fakeProvider{name: "b", priority: 50, available: true, text: "X"}
	untouched := &fakeProvider{name: "c", priority: 25, available: true, text: "Y"}

	cfg := embeddings.DefaultCircuitBreakerConfig()
	registry.Register(failing, cfg)
	registry.Register(succeeding, cfg)
	registry.Register(untouched, cfg)

	got, err := registry.Complete(context.Background(), "prompt")
	require.NoError(t, err)

	assert.Equal(t, "X", got)
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, succeeding.calls)
	assert.Zero(t, untouched.calls, "later candidates must not be invoked after a success")
}

func TestRegistryAllProvidersFail(t *testing.T) {
	registry := newTestRegistry()

	cfg := embeddings.DefaultCircuitBreakerConfig()
	registry.Register(&fakeProvider{name: "a", priority: 100, available: true, err: errors.New("a down")}, cfg)
	registry.Register(&fakeProvider{name: "b", priority: 50, available: true, err: errors.New("b down")}, cfg)

	_, err := registry.Complete(context.Background(), "prompt")
	require.Error(t, err)

	assert.ErrorIs(t, err, apperrors.ErrAllProvidersFailed)
	assert.Contains(t, err.Error(), "b down")
}

func TestRegistrySkipsUnavailable(t *testing.T) {
	registry := newTestRegistry()

	unconfigured := &fakeProvider{name: "a", priority: 100, available: false, text: "never"}
	configured := &fakeProvider{name: "b", priority: 50, available: true, text: "ok"}

	cfg := embeddings.DefaultCircuitBreakerConfig()
	registry.Register(unconfigured, cfg)
	registry.Register(configured, cfg)

	got, err := registry.Complete(context.Background(), "prompt")
	require.NoError(t, err)

	assert.Equal(t, "ok", got)
	assert.Zero(t, unconfigured.calls, "unavailable candidates must be skipped, not called")
}

func TestRegistryEmptyOutputContinuesChain(t *testing.T) {
	registry := newTestRegistry()

	empty := &fakeProvider{name: "a", priority: 100, available: true, text: "   "}
	fallback := &fakeProvider{name: "b", priority: 50, available: true, text: "real content"}

	cfg := embeddings.DefaultCircuitBreakerConfig()
	registry.Register(empty, cfg)
	registry.Register(fallback, cfg)

	got, err := registry.Complete(context.Background(), "prompt")
	require.NoError(t, err)

	assert.Equal(t, "real content", got)
	assert.Equal(t, 1, empty.calls)
}

func TestRegistryNoProviders(t *testing.T) {
	registry := newTestRegistry()

	_, err := registry.Complete(context.Background(), "prompt")

	assert.ErrorIs(t, err, apperrors.ErrNoProvidersAvailable)
}

func TestRegistryNoAvailableProviders(t *testing.T) {
	registry := newTestRegistry()
	registry.Register(&fakeProvider{name: "a", priority: 100, available: false}, embeddings.DefaultCircuitBreakerConfig())

	_, err := registry.Complete(context.Background(), "prompt")

	assert.ErrorIs(t, err, apperrors.ErrNoProvidersAvailable)
}

func TestRegistryPriorityOrder(t *testing.T) {
	registry := newTestRegistry()

	low := &fakeProvider{name: "low", priority: 10, available: true, text: "low"}
	high := &fakeProvider{name: "high", priority: 90, available: true, text: "high"}

	cfg := embeddings.DefaultCircuitBreakerConfig()
	registry.Register(low, cfg)
	registry.Register(high, cfg)

	got, err := registry.Complete(context.Background(), "prompt")
	require.NoError(t, err)

	assert.Equal(t, "high", got)
	assert.Zero(t, low.calls)

	statuses := registry.Statuses()
	require.Len(t, statuses, 2)
	assert.Equal(t, ProviderName("high"), statuses[0].Name)
	assert.Equal(t, ProviderName("low"), statuses[1].Name)
}

func TestRegistryCircuitBreakerSkipsAfterThreshold(t *testing.T) {
	registry := newTestRegistry()

	flaky := &fakeProvider{name: "a", priority: 100, available: true, err: errors.New("down")}
	steady := &fakeProvider{name: "b", priority: 50, available: true, text: "ok"}

	cfg := embeddings.CircuitBreakerConfig{Threshold: 2, ResetAfter: time.Hour}
	registry.Register(flaky, cfg)
	registry.Register(steady, cfg)

	for range 3 {
		got, err := registry.Complete(context.Background(), "prompt")
		require.NoError(t, err)
		assert.Equal(t, "ok", got)
	}

	// After two failures the circuit opens and the flaky backend is no
	// longer attempted.
	assert.Equal(t, 2, flaky.calls)
	assert.Equal(t, 3, steady.calls)
}

func TestRegistryMockProviderRoundTrip(t *testing.T) {
	registry := newTestRegistry()
	registry.Register(NewMockProvider(), embeddings.DefaultCircuitBreakerConfig())

	got, err := registry.Complete(context.Background(), "prompt")
	require.NoError(t, err)

	summary := ParseSummary(got)
	assert.NotEmpty(t, summary.SummaryOfEmails)
	assert.Empty(t, summary.Actions)
}
