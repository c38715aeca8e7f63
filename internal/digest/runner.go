package digest

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mailsmart/mailsmart/internal/core/domain"
	apperrors "github.com/mailsmart/mailsmart/internal/core/errors"
	"github.com/mailsmart/mailsmart/internal/output/format"
	"github.com/mailsmart/mailsmart/internal/platform/observability"
	"github.com/mailsmart/mailsmart/internal/process/dedup"
	"github.com/mailsmart/mailsmart/internal/process/filters"
	db "github.com/mailsmart/mailsmart/internal/storage"
)

// Source provides recent emails and the account identity.
type Source interface {
	FetchRecent(ctx context.Context) ([]domain.Item, error)
	Profile(ctx context.Context) (string, error)
}

// Store is the persistence the runner depends on. TryAcquireRunLock hands
// back a release bound to the session that took the lock.
type Store interface {
	EssentialSenders(ctx context.Context) ([]string, error)
	AppendRunRecord(ctx context.Context, record domain.RunRecord) error
	TryAcquireRunLock(ctx context.Context, lockID int64) (release func(context.Context) error, acquired bool, err error)
}

// Indexer writes fetched emails into the semantic store.
type Indexer interface {
	Index(ctx context.Context, items []domain.Item) error
}

// Mailer delivers the rendered digest.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Runner executes the digest pipeline end to end.
type Runner struct {
	source     Source
	store      Store
	indexer    Indexer
	summarizer *Summarizer
	mailer     Mailer
	logger     *zerolog.Logger
}

// NewRunner creates a Runner. indexer and mailer may be nil: indexing is
// best-effort and delivery only happens through RunAndDeliver.
func NewRunner(source Source, store Store, indexer Indexer, summarizer *Summarizer, mailer Mailer, logger *zerolog.Logger) *Runner {
	return &Runner{
		source:     source,
		store:      store,
		indexer:    indexer,
		summarizer: summarizer,
		mailer:     mailer,
		logger:     logger,
	}
}

// Result is the outcome of one pipeline run.
type Result struct {
	Summary domain.Summary
	Count   int
}

// Run executes one digest pass: fetch, allowlist union, dedup, best-effort
// index, summarize, record. Concurrent runs are serialized by a database
// advisory lock; the loser gets ErrRunInProgress. An empty fetch returns the
// empty summary and writes no run record.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	release, acquired, err := r.store.TryAcquireRunLock(ctx, db.DigestRunLockID)
	if err != nil {
		observability.DigestRuns.WithLabelValues(observability.StatusError).Inc()
		return Result{}, fmt.Errorf("acquire run lock: %w", err)
	}

	if !acquired {
		return Result{}, apperrors.ErrRunInProgress
	}

	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			r.logger.Warn().Err(err).Msg("failed to release run lock")
		}
	}()

	result, err := r.run(ctx)
	if err != nil {
		observability.DigestRuns.WithLabelValues(observability.StatusError).Inc()
		return Result{}, err
	}

	observability.DigestRuns.WithLabelValues(observability.StatusSuccess).Inc()

	return result, nil
}

func (r *Runner) run(ctx context.Context) (Result, error) {
	fetched, err := r.source.FetchRecent(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("fetch recent emails: %w", err)
	}

	observability.ItemsFetched.Add(float64(len(fetched)))

	if len(fetched) == 0 {
		r.logger.Info().Msg("no recent emails, skipping run")
		return Result{Summary: domain.EmptySummary()}, nil
	}

	items := r.selectItems(ctx, fetched)

	observability.ItemsSummarized.Add(float64(len(items)))

	if r.indexer != nil {
		if err := r.indexer.Index(ctx, items); err != nil {
			r.logger.Warn().Err(err).Msg("semantic indexing failed, continuing without index update")
		}
	}

	summary := r.summarizer.Summarize(ctx, items)

	record := domain.RunRecord{
		Time:    time.Now().UTC(),
		Summary: summary,
		Count:   len(items),
	}

	if err := r.store.AppendRunRecord(ctx, record); err != nil {
		r.logger.Error().Err(err).Msg("failed to persist run record")
	}

	r.logger.Info().
		Int("fetched", len(fetched)).
		Int("summarized", len(items)).
		Int("summary_points", len(summary.SummaryOfEmails)).
		Msg("digest run complete")

	return Result{Summary: summary, Count: len(items)}, nil
}

// selectItems puts allowlisted senders first, then the rest, and removes
// duplicates. Allowlist lookup failures degrade to no allowlist.
func (r *Runner) selectItems(ctx context.Context, fetched []domain.Item) []domain.Item {
	allowlist, err := r.store.EssentialSenders(ctx)
	if err != nil {
		r.logger.Warn().Err(err).Msg("failed to load sender allowlist")
		allowlist = nil
	}

	essential := filters.SelectEssential(fetched, allowlist)

	combined := make([]domain.Item, 0, len(essential)+len(fetched))
	combined = append(combined, essential...)
	combined = append(combined, fetched...)

	return dedup.ByKey(combined)
}

// RunAndDeliver executes a run and emails the rendered digest. An empty
// recipient defaults to the authenticated account itself.
func (r *Runner) RunAndDeliver(ctx context.Context, recipient string) (Result, error) {
	result, err := r.Run(ctx)
	if err != nil {
		return Result{}, err
	}

	if recipient == "" {
		recipient, err = r.source.Profile(ctx)
		if err != nil {
			observability.DigestsDelivered.WithLabelValues(observability.StatusError).Inc()
			return result, fmt.Errorf("resolve digest recipient: %w", err)
		}
	}

	subject := format.Subject(time.Now())
	body := format.Digest(result.Summary, result.Count)

	if err := r.mailer.Send(ctx, recipient, subject, body); err != nil {
		observability.DigestsDelivered.WithLabelValues(observability.StatusError).Inc()
		return result, err
	}

	observability.DigestsDelivered.WithLabelValues(observability.StatusSuccess).Inc()

	r.logger.Info().Str("recipient", recipient).Msg("digest delivered")

	return result, nil
}
