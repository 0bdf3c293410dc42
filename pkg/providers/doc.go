// Package providers contains the static registry of AI provider
// descriptors.
//
// Each descriptor knows how to build a provider-specific HTTP request
// (endpoint, auth headers, JSON body) and how to extract the response
// text from the provider-specific reply shape. Descriptors also carry
// per-token pricing used by the usage tracker and the set of HTTP
// statuses the unified client may retry.
//
// The registry is built once at startup and is immutable afterwards.
// Adding a provider means adding a type implementing Descriptor and
// listing it in Default().
package providers
