// Package errors provides centralized error definitions for the application.
// Errors are organized by domain to avoid duplication and provide consistent
// naming.
//
// Naming conventions:
//   - Exported errors (Err*): Use for errors that callers need to check with errors.Is
//   - All sentinel errors should be defined as variables, not inline errors.New calls
//   - Use fmt.Errorf with %w to wrap sentinel errors with context
package errors

import "errors"

// Mail source errors.
var (
	// ErrSourceUnavailable indicates the mail source could not be reached or
	// authenticated. Fatal to a pipeline run.
	ErrSourceUnavailable = errors.New("mail source unavailable")

	// ErrTokenNotSet indicates no OAuth token is available yet.
	ErrTokenNotSet = errors.New("no oauth token defined")
)

// Semantic store and embedding errors. Both are non-fatal: indexing is
// best-effort and must never abort a digest run.
var (
	// ErrStoreUnavailable indicates the semantic store rejected a call.
	ErrStoreUnavailable = errors.New("semantic store unavailable")

	// ErrEmbeddingFailed indicates the embedding provider failed.
	ErrEmbeddingFailed = errors.New("embedding failed")
)

// Summarization backend errors.
var (
	// ErrEmptyResponse indicates a backend returned no usable content.
	ErrEmptyResponse = errors.New("empty response")

	// ErrNoProvidersAvailable indicates no backend is configured.
	ErrNoProvidersAvailable = errors.New("no summarization backends available")

	// ErrAllProvidersFailed indicates every configured backend failed.
	ErrAllProvidersFailed = errors.New("all summarization backends failed")
)

// Delivery errors.
var (
	// ErrDeliveryFailed indicates the digest email could not be sent.
	// Fatal to the run and surfaced to the caller.
	ErrDeliveryFailed = errors.New("digest delivery failed")
)

// Pipeline coordination errors.
var (
	// ErrRunInProgress indicates another digest run holds the run lock.
	ErrRunInProgress = errors.New("digest run already in progress")

	// ErrNotFound is a generic not found error.
	ErrNotFound = errors.New("not found")
)

// Is is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is a convenience wrapper around errors.As.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
