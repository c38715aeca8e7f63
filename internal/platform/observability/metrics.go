// Package observability exposes Prometheus metrics for the digest pipeline.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DigestRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mailsmart_digest_runs_total",
		Help: "The total number of digest pipeline runs",
	}, []string{"status"})

	ItemsFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mailsmart_items_fetched_total",
		Help: "The total number of email items fetched from the source",
	})

	ItemsSummarized = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mailsmart_items_summarized_total",
		Help: "The total number of deduplicated items handed to summarization",
	})

	ItemsIndexed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mailsmart_items_indexed_total",
		Help: "The total number of items upserted into the semantic store",
	})

	IndexFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mailsmart_index_failures_total",
		Help: "The total number of best-effort indexing failures",
	})

	LLMRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mailsmart_llm_request_duration_seconds",
		Help:    "Duration of summarization backend requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider", "status"})

	LLMFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mailsmart_llm_fallbacks_total",
		Help: "The total number of times a fallback backend produced the result",
	}, []string{"from_provider", "to_provider"})

	LLMProviderAvailable = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "mailsmart_llm_provider_available",
		Help: "Whether a summarization backend is configured and available (1/0)",
	}, []string{"provider"})

	DigestsDelivered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mailsmart_digests_delivered_total",
		Help: "The total number of digest emails sent",
	}, []string{"status"})
)

// Metric gauge values.
const (
	MetricValueAvailable   = 1.0
	MetricValueUnavailable = 0.0
)

// Request status labels.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)
