package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"github.com/mailsmart/mailsmart/internal/core/domain"
	apperrors "github.com/mailsmart/mailsmart/internal/core/errors"
)

// VectorRecord is one email stored in the semantic index.
type VectorRecord struct {
	ID        uuid.UUID
	Embedding []float32
	Sender    string
	Subject   string
	Snippet   string
}

// UpsertEmailVectors writes embeddings into the semantic store. Re-indexing
// the same email id overwrites the previous vector and payload.
func (db *DB) UpsertEmailVectors(ctx context.Context, records []VectorRecord) error {
	for _, record := range records {
		_, err := db.Pool.Exec(ctx,
			`INSERT INTO email_vectors (id, embedding, sender, subject, snippet, updated_at)
			 VALUES ($1, $2, $3, $4, $5, now())
			 ON CONFLICT (id) DO UPDATE SET
			   embedding = EXCLUDED.embedding,
			   sender = EXCLUDED.sender,
			   subject = EXCLUDED.subject,
			   snippet = EXCLUDED.snippet,
			   updated_at = now()`,
			record.ID, pgvector.NewVector(record.Embedding), record.Sender, record.Subject, record.Snippet,
		)
		if err != nil {
			return fmt.Errorf("%w: failed to upsert email vector %s: %w", apperrors.ErrStoreUnavailable, record.ID, err)
		}
	}

	return nil
}

// SearchEmailVectors returns the nearest stored emails by cosine distance.
// Score is 1 - distance, so higher means more similar.
func (db *DB) SearchEmailVectors(ctx context.Context, embedding []float32, limit int) ([]domain.SearchHit, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT id, sender, subject, snippet, embedding <=> $1 AS distance
		 FROM email_vectors
		 ORDER BY distance
		 LIMIT $2`,
		pgvector.NewVector(embedding), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to search email vectors: %w", apperrors.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var hits []domain.SearchHit

	for rows.Next() {
		var (
			id       uuid.UUID
			hit      domain.SearchHit
			distance float64
		)

		if err := rows.Scan(&id, &hit.Sender, &hit.Subject, &hit.Snippet, &distance); err != nil {
			return nil, fmt.Errorf("failed to scan search hit: %w", err)
		}

		hit.ID = id.String()
		hit.Score = scoreFromDistance(distance)

		hits = append(hits, hit)
	}

	return hits, rows.Err()
}

// scoreFromDistance converts a cosine distance into a similarity score:
// identical vectors score 1, orthogonal vectors score 0.
func scoreFromDistance(distance float64) float32 {
	return float32(1 - distance)
}

// CountEmailVectors returns the number of indexed emails.
func (db *DB) CountEmailVectors(ctx context.Context) (int64, error) {
	var count int64

	if err := db.Pool.QueryRow(ctx, `SELECT count(*) FROM email_vectors`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count email vectors: %w", err)
	}

	return count, nil
}
