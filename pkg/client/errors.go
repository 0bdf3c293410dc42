package client

import (
	"errors"
	"fmt"
)

// Kind is the canonical failure category for a provider call.
type Kind string

const (
	// KindAPIKey covers missing credentials and HTTP 401/403.
	KindAPIKey Kind = "api_key"

	// KindRateLimit covers HTTP 429. Not retried here; the caller may
	// offer switching providers instead.
	KindRateLimit Kind = "rate_limit"

	// KindServer covers transient provider-side failures (500/502/503).
	KindServer Kind = "server"

	// KindNetwork covers transport-level failures: DNS, refused or reset
	// connections, unreachable hosts, and timeouts.
	KindNetwork Kind = "network"

	// KindParse covers 2xx responses whose body lacks the expected shape.
	KindParse Kind = "parse"

	// KindUnknownProvider covers provider IDs absent from the registry.
	KindUnknownProvider Kind = "unknown_provider"

	// KindCancelled covers caller-initiated cancellation.
	KindCancelled Kind = "cancelled"

	// KindUnknown covers everything else.
	KindUnknown Kind = "unknown"
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindAPIKey:
		return "API key error"
	case KindRateLimit:
		return "rate limit exceeded"
	case KindServer:
		return "server error"
	case KindNetwork:
		return "network error"
	case KindParse:
		return "response parse error"
	case KindUnknownProvider:
		return "unknown provider"
	case KindCancelled:
		return "cancelled"
	default:
		return "unknown error"
	}
}

// APIError is the single error type crossing the client's public surface.
type APIError struct {
	// Kind is the canonical failure category.
	Kind Kind

	// Provider is the provider ID the call was addressed to.
	Provider string

	// Message describes the failure. For HTTP failures it includes the
	// status and a trimmed response body.
	Message string

	// Retryable reports whether the retry loop was allowed to re-attempt.
	Retryable bool

	// Timeout marks network errors caused by the per-attempt deadline.
	Timeout bool

	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("provider %q: %s: %s", e.Provider, e.Kind.String(), e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind.String(), e.Message)
}

// Unwrap returns the underlying error for error chain support.
func (e *APIError) Unwrap() error {
	return e.Cause
}

// AsAPIError extracts an *APIError from an error chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
