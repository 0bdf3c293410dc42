// Package completion decides when an inline completion request is
// worth making and avoids redundant provider calls.
//
// The trigger detector inspects the document text around the cursor
// and classifies the context (comment-to-code, function declaration,
// lifecycle body, method access, empty line in a function). The cache
// is a bounded, TTL-limited store keyed by the detector's cache key;
// entries expire lazily on lookup and actively through a periodic
// sweep, and the least-recently-accessed entry is evicted at capacity.
package completion
