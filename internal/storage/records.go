package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mailsmart/mailsmart/internal/core/domain"
	apperrors "github.com/mailsmart/mailsmart/internal/core/errors"
)

// AppendRunRecord persists one digest run outcome.
func (db *DB) AppendRunRecord(ctx context.Context, record domain.RunRecord) error {
	summary, err := json.Marshal(record.Summary)
	if err != nil {
		return fmt.Errorf("failed to marshal run summary: %w", err)
	}

	_, err = db.Pool.Exec(ctx,
		`INSERT INTO run_records (run_at, email_count, summary) VALUES ($1, $2, $3)`,
		record.Time, record.Count, summary,
	)
	if err != nil {
		return fmt.Errorf("failed to append run record: %w", err)
	}

	return nil
}

// ListRunRecords returns run records, most recent first.
func (db *DB) ListRunRecords(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	if limit <= 0 {
		limit = defaultRecordLimit
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT run_at, email_count, summary FROM run_records ORDER BY run_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list run records: %w", err)
	}
	defer rows.Close()

	var records []domain.RunRecord

	for rows.Next() {
		var (
			record domain.RunRecord
			raw    []byte
		)

		if err := rows.Scan(&record.Time, &record.Count, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan run record: %w", err)
		}

		if err := json.Unmarshal(raw, &record.Summary); err != nil {
			return nil, fmt.Errorf("failed to unmarshal run summary: %w", err)
		}

		records = append(records, record)
	}

	return records, rows.Err()
}

// LatestRunRecord returns the most recent run record.
func (db *DB) LatestRunRecord(ctx context.Context) (domain.RunRecord, error) {
	var (
		record domain.RunRecord
		raw    []byte
	)

	err := db.Pool.QueryRow(ctx,
		`SELECT run_at, email_count, summary FROM run_records ORDER BY run_at DESC LIMIT 1`,
	).Scan(&record.Time, &record.Count, &raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.RunRecord{}, apperrors.ErrNotFound
		}

		return domain.RunRecord{}, fmt.Errorf("failed to get latest run record: %w", err)
	}

	if err := json.Unmarshal(raw, &record.Summary); err != nil {
		return domain.RunRecord{}, fmt.Errorf("failed to unmarshal run summary: %w", err)
	}

	return record, nil
}
