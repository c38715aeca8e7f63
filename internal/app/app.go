// Package app wires configuration, storage, providers, and the pipeline
// into runnable service modes.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mailsmart/mailsmart/internal/core/embeddings"
	apperrors "github.com/mailsmart/mailsmart/internal/core/errors"
	"github.com/mailsmart/mailsmart/internal/core/llm"
	"github.com/mailsmart/mailsmart/internal/digest"
	"github.com/mailsmart/mailsmart/internal/ingest/gmail"
	"github.com/mailsmart/mailsmart/internal/platform/config"
	"github.com/mailsmart/mailsmart/internal/platform/schedule"
	"github.com/mailsmart/mailsmart/internal/platform/worker"
	"github.com/mailsmart/mailsmart/internal/process/indexer"
	"github.com/mailsmart/mailsmart/internal/server"
	db "github.com/mailsmart/mailsmart/internal/storage"
)

// runTimeout bounds one scheduled digest run end to end.
const runTimeout = 10 * time.Minute

// App holds the wired service.
type App struct {
	cfg        *config.Config
	db         *db.DB
	runner     *digest.Runner
	summarizer *digest.Summarizer
	source     *gmail.Source
	searcher   *indexer.Searcher
	logger     *zerolog.Logger
}

// New wires all components from configuration.
func New(ctx context.Context, cfg *config.Config, database *db.DB, logger *zerolog.Logger) (*App, error) {
	oauthCfg, err := gmail.NewOAuthConfig(cfg.GmailCredentialsPath)
	if err != nil {
		return nil, fmt.Errorf("gmail oauth config: %w", err)
	}

	token, err := gmail.NewToken(oauthCfg, cfg.GmailTokenPath)
	if err != nil {
		return nil, fmt.Errorf("gmail token: %w", err)
	}

	source := gmail.NewSource(oauthCfg, token, cfg.FetchLimit, logger)
	mailer := gmail.NewMailer(source)

	embedder := newEmbedder(cfg, logger)
	ix := indexer.New(database, embedder, logger)
	searcher := indexer.NewSearcher(database, embedder)

	client := llm.New(ctx, llm.Config{
		GroqAPIKey:   cfg.GroqAPIKey,
		GroqModel:    cfg.GroqModel,
		GeminiAPIKey: cfg.GeminiAPIKey,
		GeminiModel:  cfg.GeminiModel,
		HFAPIKey:     cfg.HFAPIKey,
		HFModel:      cfg.HFModel,
		RateLimit:    cfg.RateLimitRPS,
		CallTimeout:  cfg.BackendTimeout,
		CircuitBreaker: embeddings.CircuitBreakerConfig{
			Threshold:  cfg.CircuitThreshold,
			ResetAfter: cfg.CircuitReset,
		},
	}, logger)

	summarizer := digest.NewSummarizer(client, database, digest.SummarizerConfig{
		ChunkSize: cfg.ChunkSize,
		MaxWords:  cfg.MaxChunkWords,
		Parallel:  cfg.ParallelChunks,
	}, logger)
	runner := digest.NewRunner(source, database, ix, summarizer, mailer, logger)

	return &App{
		cfg:        cfg,
		db:         database,
		runner:     runner,
		summarizer: summarizer,
		source:     source,
		searcher:   searcher,
		logger:     logger,
	}, nil
}

func newEmbedder(cfg *config.Config, logger *zerolog.Logger) embeddings.Provider {
	if cfg.OpenAIAPIKey == "" {
		logger.Warn().Msg("no embedding provider configured, using mock embeddings")
		return embeddings.NewMockProvider(cfg.EmbeddingDimensions)
	}

	return embeddings.NewOpenAIProvider(embeddings.OpenAIConfig{
		APIKey:     cfg.OpenAIAPIKey,
		Model:      cfg.EmbeddingModel,
		Dimensions: cfg.EmbeddingDimensions,
		RateLimit:  cfg.RateLimitRPS,
	})
}

// RunServer serves the HTTP API, with the daily scheduler in the background
// when enabled.
func (a *App) RunServer(ctx context.Context) error {
	if a.cfg.SchedulerEnabled {
		sched, err := schedule.New(a.cfg.ScheduleHour, a.cfg.ScheduleMinute, a.cfg.ScheduleTimezone)
		if err != nil {
			return fmt.Errorf("build schedule: %w", err)
		}

		go a.runScheduler(ctx, sched)
	}

	srv := server.New(server.Config{
		Pipeline:   a.runner,
		Summarizer: a.summarizer,
		Searcher:   a.searcher,
		Records:    a.db,
		Allowlist:  a.db,
		Source:     a.source,
		Pinger:     a.db,
		Port:       a.cfg.HTTPPort,
		Logger:     a.logger,
	})

	return srv.Start(ctx)
}

// RunDigest executes digest runs without the HTTP surface. With once set it
// runs a single delivery and exits; otherwise it follows the daily schedule.
func (a *App) RunDigest(ctx context.Context, once bool) error {
	if once {
		result, err := a.runner.RunAndDeliver(ctx, a.cfg.DigestRecipient)
		if err != nil {
			return err
		}

		a.logger.Info().Int("emails", result.Count).Msg("one-shot digest complete")

		return nil
	}

	sched, err := schedule.New(a.cfg.ScheduleHour, a.cfg.ScheduleMinute, a.cfg.ScheduleTimezone)
	if err != nil {
		return fmt.Errorf("build schedule: %w", err)
	}

	a.runScheduler(ctx, sched)

	return ctx.Err()
}

func (a *App) runScheduler(ctx context.Context, sched schedule.Daily) {
	for {
		next := sched.Next(time.Now())

		a.logger.Info().Time("next_run", next).Msg("scheduler waiting for next digest")

		if err := worker.WaitUntil(ctx, next); err != nil {
			return
		}

		a.runScheduled(ctx)
	}
}

func (a *App) runScheduled(ctx context.Context) {
	defer worker.RecoverPanic(a.logger, "scheduled digest run")

	err := worker.RunWithTimeout(ctx, runTimeout, func(runCtx context.Context) error {
		_, err := a.runner.RunAndDeliver(runCtx, a.cfg.DigestRecipient)
		return err
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, apperrors.ErrRunInProgress) {
			a.logger.Info().Msg("skipping scheduled run, another run is in progress")
			return
		}

		a.logger.Error().Err(err).Msg("scheduled digest run failed")
	}
}
