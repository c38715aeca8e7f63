// Package digest orchestrates the daily pipeline: fetch, filter, dedup,
// index, summarize, record, deliver.
package digest

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/mailsmart/mailsmart/internal/core/domain"
	"github.com/mailsmart/mailsmart/internal/core/llm"
	"github.com/mailsmart/mailsmart/internal/process/chunk"
)

const (
	defaultChunkSize      = 5
	defaultMaxPromptWords = 1000
)

// PromptStore loads the operator prompt override.
type PromptStore interface {
	GetSetting(ctx context.Context, key string, target interface{}) error
}

// SummarizerConfig bounds how batches are split before hitting the
// backend chain.
type SummarizerConfig struct {
	// ChunkSize is the number of emails per chunk.
	ChunkSize int
	// MaxWords caps the rendered email text per prompt. A chunk whose
	// rendering exceeds it is summarized piecewise and merged.
	MaxWords int
	// Parallel summarizes chunks concurrently, keeping merge order by
	// chunk index.
	Parallel bool
}

// Summarizer turns batches of emails into a merged structured summary via
// the backend chain.
type Summarizer struct {
	client    llm.Client
	prompts   PromptStore
	chunkSize int
	maxWords  int
	parallel  bool
	logger    *zerolog.Logger
}

// NewSummarizer creates a Summarizer. A nil prompts store disables the
// operator prompt override.
func NewSummarizer(client llm.Client, prompts PromptStore, cfg SummarizerConfig, logger *zerolog.Logger) *Summarizer {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = defaultChunkSize
	}

	if cfg.MaxWords <= 0 {
		cfg.MaxWords = defaultMaxPromptWords
	}

	return &Summarizer{
		client:    client,
		prompts:   prompts,
		chunkSize: cfg.ChunkSize,
		maxWords:  cfg.MaxWords,
		parallel:  cfg.Parallel,
		logger:    logger,
	}
}

// Summarize splits items into chunks, summarizes each through the backend
// chain, and merges the parts in chunk order. A chunk whose backends all
// fail contributes the error sentinel instead of aborting the batch. Zero
// items yield the empty summary without any backend call.
func (s *Summarizer) Summarize(ctx context.Context, items []domain.Item) domain.Summary {
	if len(items) == 0 {
		return domain.EmptySummary()
	}

	template := s.promptTemplate(ctx)
	chunks := chunk.Items(items, s.chunkSize)

	if s.parallel && len(chunks) > 1 {
		return domain.MergeSummaries(s.summarizeParallel(ctx, template, chunks))
	}

	parts := make([]domain.Summary, 0, len(chunks))

	for _, c := range chunks {
		parts = append(parts, s.summarizeChunk(ctx, template, c))

		if ctx.Err() != nil {
			break
		}
	}

	return domain.MergeSummaries(parts)
}

// summarizeParallel runs one goroutine per chunk. Each goroutine owns its
// slot in parts, so writes need no synchronization and merge order matches
// the sequential path.
func (s *Summarizer) summarizeParallel(ctx context.Context, template string, chunks [][]domain.Item) []domain.Summary {
	parts := make([]domain.Summary, len(chunks))

	g, gctx := errgroup.WithContext(ctx)

	for i, c := range chunks {
		g.Go(func() error {
			parts[i] = s.summarizeChunk(gctx, template, c)
			return nil
		})
	}

	// Chunk failures degrade to the sentinel, so the group never errors.
	_ = g.Wait()

	return parts
}

// summarizeChunk renders the chunk's emails and summarizes them. Rendered
// text over the word budget is split into pieces, each summarized on its
// own prompt, and the piece summaries merged in order.
func (s *Summarizer) summarizeChunk(ctx context.Context, template string, items []domain.Item) domain.Summary {
	pieces := chunk.Text(llm.RenderEmails(items), s.maxWords)

	parts := make([]domain.Summary, 0, len(pieces))

	for _, piece := range pieces {
		raw, err := s.client.Complete(ctx, llm.BuildPrompt(template, piece))
		if err != nil {
			s.logger.Error().Err(err).Int("chunk_items", len(items)).Msg("all summarization backends failed for chunk")
			parts = append(parts, domain.ErrorSummary())
		} else {
			parts = append(parts, llm.ParseSummary(raw))
		}

		if ctx.Err() != nil {
			break
		}
	}

	return domain.MergeSummaries(parts)
}

// promptTemplate returns the operator override when one is stored, the
// built-in template otherwise. Settings lookup failures fall back silently
// to the default.
func (s *Summarizer) promptTemplate(ctx context.Context) string {
	template := llm.DefaultPromptTemplate()

	if s.prompts == nil {
		return template
	}

	var override string
	if err := s.prompts.GetSetting(ctx, llm.PromptSettingKey, &override); err != nil {
		s.logger.Warn().Err(err).Msg("failed to load prompt override, using default")
		return template
	}

	if override != "" {
		return override
	}

	return template
}
