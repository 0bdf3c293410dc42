// Package client implements the unified API client: it builds a
// provider-specific request from the registry, executes it with a
// per-attempt timeout, classifies failures into a canonical taxonomy,
// and retries transient errors with linear backoff.
//
// Classification happens exactly once, at the transport boundary. Every
// error returned from this package is an *APIError carrying the kind,
// the provider context, and whether a retry would have been eligible.
// Nothing above this layer re-retries.
package client
