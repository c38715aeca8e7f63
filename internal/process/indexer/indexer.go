// Package indexer embeds emails into the semantic store and answers
// similarity queries over it.
package indexer

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mailsmart/mailsmart/internal/core/domain"
	"github.com/mailsmart/mailsmart/internal/core/embeddings"
	apperrors "github.com/mailsmart/mailsmart/internal/core/errors"
	"github.com/mailsmart/mailsmart/internal/platform/observability"
	db "github.com/mailsmart/mailsmart/internal/storage"
)

// Store is the vector persistence the indexer depends on.
type Store interface {
	UpsertEmailVectors(ctx context.Context, records []db.VectorRecord) error
	SearchEmailVectors(ctx context.Context, embedding []float32, limit int) ([]domain.SearchHit, error)
}

// Indexer writes email embeddings into the store.
type Indexer struct {
	store    Store
	provider embeddings.Provider
	logger   *zerolog.Logger
}

// New creates an Indexer.
func New(store Store, provider embeddings.Provider, logger *zerolog.Logger) *Indexer {
	return &Indexer{store: store, provider: provider, logger: logger}
}

// StableID derives a deterministic UUID from the email id, so re-indexing
// the same email overwrites its previous point. An email with no id falls
// back to its position in the batch.
func StableID(id string, ordinal int) uuid.UUID {
	if id == "" {
		id = strconv.Itoa(ordinal)
	}

	return uuid.NewSHA1(uuid.NameSpaceDNS, []byte(id))
}

// Index embeds and upserts the given emails. Indexing is best-effort: an
// item whose embedding fails is skipped and logged, and a store failure is
// returned for the caller to log without aborting its run.
func (ix *Indexer) Index(ctx context.Context, items []domain.Item) error {
	if len(items) == 0 {
		return nil
	}

	if !ix.provider.IsAvailable() {
		return fmt.Errorf("%w: embedding provider %s unavailable", apperrors.ErrEmbeddingFailed, ix.provider.Name())
	}

	records := make([]db.VectorRecord, 0, len(items))

	for i, item := range items {
		vector, err := ix.provider.Embed(ctx, item.DocumentText())
		if err != nil {
			observability.IndexFailures.Inc()
			ix.logger.Warn().Err(err).Str("email_id", item.ID).Msg("failed to embed email, skipping")

			if ctx.Err() != nil {
				return ctx.Err()
			}

			continue
		}

		records = append(records, db.VectorRecord{
			ID:        StableID(item.ID, i),
			Embedding: vector,
			Sender:    item.Sender,
			Subject:   item.Subject,
			Snippet:   item.Snippet,
		})
	}

	if len(records) == 0 {
		return fmt.Errorf("%w: no items embedded", apperrors.ErrEmbeddingFailed)
	}

	if err := ix.store.UpsertEmailVectors(ctx, records); err != nil {
		observability.IndexFailures.Inc()
		return fmt.Errorf("upsert email vectors: %w", err)
	}

	observability.ItemsIndexed.Add(float64(len(records)))

	return nil
}

// Searcher answers similarity queries against the store.
type Searcher struct {
	store    Store
	provider embeddings.Provider
}

// NewSearcher creates a Searcher.
func NewSearcher(store Store, provider embeddings.Provider) *Searcher {
	return &Searcher{store: store, provider: provider}
}

// Search embeds the query and returns the nearest stored emails.
func (s *Searcher) Search(ctx context.Context, query string, limit int) ([]domain.SearchHit, error) {
	vector, err := s.provider.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrEmbeddingFailed, err)
	}

	hits, err := s.store.SearchEmailVectors(ctx, vector, limit)
	if err != nil {
		return nil, fmt.Errorf("search email vectors: %w", err)
	}

	return hits, nil
}
