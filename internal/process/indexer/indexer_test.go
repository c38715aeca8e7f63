package indexer

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailsmart/mailsmart/internal/core/domain"
	"github.com/mailsmart/mailsmart/internal/core/embeddings"
	db "github.com/mailsmart/mailsmart/internal/storage"
)

type fakeStore struct {
	upserted  []db.VectorRecord
	upsertErr error
	hits      []domain.SearchHit
}

func (f *fakeStore) UpsertEmailVectors(_ context.Context, records []db.VectorRecord) error {
	f.upserted = append(f.upserted, records...)
	return f.upsertErr
}

func (f *fakeStore) SearchEmailVectors(_ context.Context, _ []float32, _ int) ([]domain.SearchHit, error) {
	return f.hits, nil
}

type failingProvider struct {
	failFor map[string]bool
}

func (p *failingProvider) Name() embeddings.ProviderName { return "fake" }
func (p *failingProvider) IsAvailable() bool             { return true }
func (p *failingProvider) Dimensions() int               { return 4 }

func (p *failingProvider) Embed(_ context.Context, text string) ([]float32, error) {
	if p.failFor[text] {
		return nil, errors.New("embed down")
	}

	return []float32{1, 0, 0, 0}, nil
}

func newTestIndexer(store *fakeStore, provider embeddings.Provider) *Indexer {
	logger := zerolog.Nop()
	return New(store, provider, &logger)
}

func TestStableIDDeterministic(t *testing.T) {
	a := StableID("msg-1", 0)
	b := StableID("msg-1", 99)

	assert.Equal(t, a, b, "same email id must map to the same point id regardless of position")
	assert.NotEqual(t, a, StableID("msg-2", 0))
}

func TestStableIDEmptyFallsBackToOrdinal(t *testing.T) {
	assert.NotEqual(t, StableID("", 0), StableID("", 1))
	assert.Equal(t, StableID("", 3), StableID("3", 0))
}

func TestIndexUpsertsAllItems(t *testing.T) {
	store := &fakeStore{}
	ix := newTestIndexer(store, &failingProvider{})

	items := []domain.Item{
		{ID: "a", Sender: "x@y", Subject: "s1", Snippet: "one"},
		{ID: "b", Sender: "x@y", Subject: "s2", Snippet: "two"},
	}

	require.NoError(t, ix.Index(context.Background(), items))
	require.Len(t, store.upserted, 2)

	assert.Equal(t, StableID("a", 0), store.upserted[0].ID)
	assert.Equal(t, "s1", store.upserted[0].Subject)
}

func TestIndexSkipsFailedEmbeddings(t *testing.T) {
	store := &fakeStore{}
	bad := domain.Item{ID: "bad", Subject: "broken"}
	good := domain.Item{ID: "good", Subject: "fine"}

	provider := &failingProvider{failFor: map[string]bool{bad.DocumentText(): true}}
	ix := newTestIndexer(store, provider)

	require.NoError(t, ix.Index(context.Background(), []domain.Item{bad, good}))
	require.Len(t, store.upserted, 1)

	assert.Equal(t, StableID("good", 1), store.upserted[0].ID)
}

func TestIndexAllEmbeddingsFail(t *testing.T) {
	store := &fakeStore{}
	item := domain.Item{ID: "a", Subject: "s"}
	provider := &failingProvider{failFor: map[string]bool{item.DocumentText(): true}}

	err := newTestIndexer(store, provider).Index(context.Background(), []domain.Item{item})

	require.Error(t, err)
	assert.Empty(t, store.upserted)
}

func TestIndexEmptyBatchIsNoop(t *testing.T) {
	store := &fakeStore{}

	require.NoError(t, newTestIndexer(store, &failingProvider{}).Index(context.Background(), nil))
	assert.Empty(t, store.upserted)
}

func TestSearcherReturnsHits(t *testing.T) {
	store := &fakeStore{hits: []domain.SearchHit{{ID: "a", Score: 0.9, Subject: "s"}}}
	searcher := NewSearcher(store, &failingProvider{})

	hits, err := searcher.Search(context.Background(), "query", 5)
	require.NoError(t, err)

	require.Len(t, hits, 1)
	assert.Equal(t, "a", hits[0].ID)
}
