package llm

import "time"

// Log field keys.
const (
	logKeyProvider = "provider"
	logKeyPriority = "priority"
)

// Log message strings.
const (
	logMsgCircuitBreakerOpen = "skipping backend - circuit breaker open"
	logMsgBackendFailed      = "summarization backend failed"
	logMsgUsedFallback       = "used fallback summarization backend"
)

// Error format strings.
const (
	errRateLimiter       = "rate limiter: %w"
	errFmtMarshalRequest = "marshal request: %w"
	errFmtCreateRequest  = "create request: %w"
	errFmtReadResponse   = "read response: %w"
	errFmtDecodeResponse = "decode response: %w"
)

// Rate limiter burst shared by providers.
const rateLimiterBurst = 5

// Default per-call timeout applied by the registry when the caller's
// context has no deadline of its own.
const defaultCallTimeout = 60 * time.Second

// Heuristic parser limits.
const (
	maxFallbackLines   = 20
	maxFallbackLineLen = 300
)
