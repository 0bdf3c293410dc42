package providers

import (
	"fmt"
	"sort"
)

// Pricing holds the USD price per single token, split by direction.
// Prices are per token (not per 1K) so cost math stays a plain multiply.
type Pricing struct {
	// InputPerToken is the USD cost of one prompt token.
	InputPerToken float64

	// OutputPerToken is the USD cost of one completion token.
	OutputPerToken float64
}

// Request is a fully built provider request, ready to be executed by the
// unified client. Descriptors produce it; they never perform I/O.
type Request struct {
	// URL is the absolute endpoint URL, including any query-string auth.
	URL string

	// Headers contains all request headers, including auth headers.
	Headers map[string]string

	// Body is the JSON-encoded request body.
	Body []byte
}

// Descriptor describes one AI provider: its wire format, auth scheme,
// pricing, and retry eligibility. Implementations are immutable value
// holders; all methods must be safe for concurrent use.
type Descriptor interface {
	// ID returns the stable provider identifier (e.g. "claude").
	ID() string

	// DisplayName returns the human-readable provider name.
	DisplayName() string

	// Model returns the model identifier requests are built for.
	Model() string

	// Pricing returns the per-token prices for the configured model.
	Pricing() Pricing

	// RetryableStatus reports whether the given HTTP status is considered
	// transient for this provider.
	RetryableStatus(code int) bool

	// BuildRequest builds the provider-specific HTTP request for a prompt.
	// maxTokens caps the completion length; zero means the provider default.
	BuildRequest(apiKey, prompt string, maxTokens int) (*Request, error)

	// ExtractText pulls the response text out of a 2xx response body.
	// It returns an error when the expected shape is absent.
	ExtractText(body []byte) (string, error)
}

// retryableDefault is the shared transient-status set. Individual
// descriptors may extend it but in practice all five built-ins use it
// as-is.
var retryableDefault = map[int]bool{
	500: true,
	502: true,
	503: true,
}

// Registry maps provider IDs to descriptors. It is populated once and
// read-only afterwards.
type Registry struct {
	byID map[string]Descriptor
}

// NewRegistry builds a registry from the given descriptors.
// Duplicate IDs panic; the descriptor table is a programming artifact,
// not runtime input.
func NewRegistry(descriptors ...Descriptor) *Registry {
	r := &Registry{byID: make(map[string]Descriptor, len(descriptors))}
	for _, d := range descriptors {
		if _, dup := r.byID[d.ID()]; dup {
			panic(fmt.Sprintf("providers: duplicate descriptor id %q", d.ID()))
		}
		r.byID[d.ID()] = d
	}
	return r
}

// Default returns the registry of built-in providers.
func Default() *Registry {
	return NewRegistry(
		NewClaude(),
		NewOpenAI(),
		NewGemini(),
		NewMistral(),
		NewGroq(),
	)
}

// Get returns the descriptor for id, or false when the id is unknown.
func (r *Registry) Get(id string) (Descriptor, bool) {
	d, ok := r.byID[id]
	return d, ok
}

// IDs returns all registered provider IDs in sorted order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// All returns all descriptors, ordered by ID.
func (r *Registry) All() []Descriptor {
	all := make([]Descriptor, 0, len(r.byID))
	for _, id := range r.IDs() {
		all = append(all, r.byID[id])
	}
	return all
}
