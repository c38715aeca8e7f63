// Package server exposes the HTTP API: pipeline triggers, semantic search,
// run history, allowlist management, and health endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/mailsmart/mailsmart/internal/core/domain"
	"github.com/mailsmart/mailsmart/internal/digest"
)

const (
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second
)

// Pipeline triggers digest runs.
type Pipeline interface {
	Run(ctx context.Context) (digest.Result, error)
	RunAndDeliver(ctx context.Context, recipient string) (digest.Result, error)
}

// DirectSummarizer summarizes caller-supplied items without touching the
// source or the store.
type DirectSummarizer interface {
	Summarize(ctx context.Context, items []domain.Item) domain.Summary
}

// Searcher answers semantic queries.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]domain.SearchHit, error)
}

// Records reads persisted run history.
type Records interface {
	ListRunRecords(ctx context.Context, limit int) ([]domain.RunRecord, error)
	LatestRunRecord(ctx context.Context) (domain.RunRecord, error)
}

// Allowlist manages the essential sender list.
type Allowlist interface {
	EssentialSenders(ctx context.Context) ([]string, error)
	SaveEssentialSenders(ctx context.Context, senders []string) error
}

// RawSource fetches recent emails without running the pipeline.
type RawSource interface {
	FetchRecent(ctx context.Context) ([]domain.Item, error)
}

// Pinger checks storage liveness for readiness probes.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is the HTTP API.
type Server struct {
	pipeline   Pipeline
	summarizer DirectSummarizer
	searcher   Searcher
	records    Records
	allowlist  Allowlist
	source     RawSource
	pinger     Pinger
	port       int
	logger     *zerolog.Logger
}

// Config wires the server dependencies.
type Config struct {
	Pipeline   Pipeline
	Summarizer DirectSummarizer
	Searcher   Searcher
	Records    Records
	Allowlist  Allowlist
	Source     RawSource
	Pinger     Pinger
	Port       int
	Logger     *zerolog.Logger
}

// New creates the HTTP API server.
func New(cfg Config) *Server {
	return &Server{
		pipeline:   cfg.Pipeline,
		summarizer: cfg.Summarizer,
		searcher:   cfg.Searcher,
		records:    cfg.Records,
		allowlist:  cfg.Allowlist,
		source:     cfg.Source,
		pinger:     cfg.Pinger,
		port:       cfg.Port,
		logger:     cfg.Logger,
	}
}

// Handler builds the route table. Split out from Start for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /raw-emails", s.handleRawEmails)
	mux.HandleFunc("GET /summarize", s.handleSummarize)
	mux.HandleFunc("POST /summarize/direct", s.handleSummarizeDirect)
	mux.HandleFunc("POST /run-now", s.handleRunNow)
	mux.HandleFunc("GET /search", s.handleSearch)
	mux.HandleFunc("GET /history", s.handleHistory)
	mux.HandleFunc("GET /history/latest", s.handleHistoryLatest)
	mux.HandleFunc("GET /essentials", s.handleGetEssentials)
	mux.HandleFunc("POST /essentials/add", s.handleAddEssential)
	mux.HandleFunc("POST /essentials/remove", s.handleRemoveEssential)

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprint(w, "OK")
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := s.pinger.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = fmt.Fprintf(w, "DB error: %v", err)

			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprint(w, "OK")
	})

	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

// Start serves until the context is canceled.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)

		defer cancel()

		//nolint:errcheck,contextcheck // shutdown in signal handler is best-effort, non-inherited context intentional
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info().Int("port", s.port).Msg("HTTP API server starting")

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}
