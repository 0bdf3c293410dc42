package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/NikolaiRadke/AI.duino-sub001/pkg/providers"
	"github.com/NikolaiRadke/AI.duino-sub001/pkg/telemetry/metrics"
)

const (
	// DefaultTimeout is the per-attempt request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxRetries is the total number of attempts for a call.
	DefaultMaxRetries = 3

	// DefaultBaseDelay is the linear backoff unit: attempt n waits
	// BaseDelay * n before re-attempting.
	DefaultBaseDelay = 1 * time.Second

	// completionMaxTokens caps inline-completion responses. Completions
	// are short by nature; capping them keeps the calls cheap.
	completionMaxTokens = 256
)

// KeySource supplies the credential for a provider. An empty key with a
// nil error means no credential is configured.
type KeySource interface {
	APIKey(providerID string) (string, error)
}

// UsageRecorder receives the prompt and response text of every
// successful call for token/cost metering.
type UsageRecorder interface {
	Update(providerID, inputText, outputText string)
}

// Config contains the client tunables. Zero values fall back to the
// package defaults.
type Config struct {
	// Timeout is the per-attempt request timeout.
	Timeout time.Duration

	// MaxRetries is the total number of attempts per call.
	MaxRetries int

	// BaseDelay is the linear backoff unit between attempts.
	BaseDelay time.Duration
}

// Client executes logical "ask the AI" calls against the provider
// registry with timeout, retry, and failure classification.
type Client struct {
	cfg      Config
	registry *providers.Registry
	keys     KeySource
	usage    UsageRecorder
	metrics  *metrics.Metrics
	http     *http.Client
	logger   *slog.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithUsageRecorder wires a usage tracker into the success path.
func WithUsageRecorder(u UsageRecorder) Option {
	return func(c *Client) { c.usage = u }
}

// WithMetrics wires prometheus metrics into the client.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger replaces the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a unified API client over the given registry and key source.
func New(cfg Config, registry *providers.Registry, keys KeySource, opts ...Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = DefaultBaseDelay
	}

	c := &Client{
		cfg:      cfg,
		registry: registry,
		keys:     keys,
		logger:   slog.Default(),
		http: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
				ForceAttemptHTTP2:   true,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ask sends promptText to the given provider and returns the response
// text. It blocks until the call resolves or fails terminally.
func (c *Client) Ask(ctx context.Context, providerID, promptText string) (string, error) {
	return c.call(ctx, providerID, promptText, 0)
}

// Complete is the lighter-weight variant used for inline completions.
// It behaves like Ask with a small completion cap.
func (c *Client) Complete(ctx context.Context, providerID, promptText string) (string, error) {
	return c.call(ctx, providerID, promptText, completionMaxTokens)
}

// call runs the retry state machine for one logical request.
func (c *Client) call(ctx context.Context, providerID, promptText string, maxTokens int) (string, error) {
	desc, ok := c.registry.Get(providerID)
	if !ok {
		return "", &APIError{
			Kind:     KindUnknownProvider,
			Provider: providerID,
			Message:  fmt.Sprintf("provider %q is not registered", providerID),
		}
	}

	apiKey, err := c.keys.APIKey(providerID)
	if err != nil || apiKey == "" {
		return "", &APIError{
			Kind:     KindAPIKey,
			Provider: providerID,
			Message:  fmt.Sprintf("no API key configured for %s", desc.DisplayName()),
			Cause:    err,
		}
	}

	requestID := uuid.NewString()
	logger := c.logger.With("provider", providerID, "request_id", requestID)
	start := time.Now()

	var lastErr *APIError
	for attempt := 1; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 1 {
			// Linear backoff: attempt n waits BaseDelay * (n-1).
			delay := c.cfg.BaseDelay * time.Duration(attempt-1)
			logger.Debug("retrying request",
				"attempt", attempt,
				"max_retries", c.cfg.MaxRetries,
				"backoff", delay,
			)
			c.recordRetry(providerID)

			select {
			case <-ctx.Done():
				return "", c.fail(providerID, start, &APIError{
					Kind:     KindCancelled,
					Provider: providerID,
					Message:  "cancelled while waiting to retry",
					Cause:    ctx.Err(),
				})
			case <-time.After(delay):
			}
		}

		text, attemptErr := c.attempt(ctx, desc, apiKey, promptText, maxTokens)
		if attemptErr == nil {
			if c.usage != nil {
				c.usage.Update(providerID, promptText, text)
			}
			c.recordRequest(providerID, "success", start)
			logger.Debug("request succeeded",
				"attempt", attempt,
				"duration", time.Since(start),
			)
			return text, nil
		}

		if !attemptErr.Retryable || attemptErr.Kind == KindCancelled {
			return "", c.fail(providerID, start, attemptErr)
		}

		lastErr = attemptErr
		logger.Warn("request failed, will retry",
			"attempt", attempt,
			"kind", string(attemptErr.Kind),
			"error", attemptErr.Message,
		)
	}

	// Retries exhausted; enhance the last error with the attempt count.
	lastErr.Message = fmt.Sprintf("%s (gave up after %d attempts)", lastErr.Message, c.cfg.MaxRetries)
	return "", c.fail(providerID, start, lastErr)
}

// attempt executes a single HTTP exchange. Every returned error has
// been classified.
func (c *Client) attempt(ctx context.Context, desc providers.Descriptor, apiKey, promptText string, maxTokens int) (string, *APIError) {
	providerID := desc.ID()

	req, err := desc.BuildRequest(apiKey, promptText, maxTokens)
	if err != nil {
		return "", &APIError{
			Kind:     KindUnknown,
			Provider: providerID,
			Message:  "failed to build request: " + err.Error(),
			Cause:    err,
		}
	}

	attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		return "", &APIError{
			Kind:     KindUnknown,
			Provider: providerID,
			Message:  "failed to create request: " + err.Error(),
			Cause:    err,
		}
	}
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		// The parent context ending means the user cancelled; the
		// attempt context expiring is a timeout.
		if ctx.Err() != nil {
			return "", ClassifyTransport(providerID, ctx.Err())
		}
		return "", ClassifyTransport(providerID, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", ClassifyTransport(providerID, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := ClassifyStatus(providerID, resp.StatusCode, body)
		if apiErr.Kind == KindServer {
			apiErr.Retryable = desc.RetryableStatus(resp.StatusCode)
		}
		return "", apiErr
	}

	text, err := desc.ExtractText(body)
	if err != nil {
		return "", &APIError{
			Kind:     KindParse,
			Provider: providerID,
			Message:  err.Error(),
			Cause:    err,
		}
	}
	return text, nil
}

// fail records failure metrics and returns err unchanged.
func (c *Client) fail(providerID string, start time.Time, err *APIError) *APIError {
	c.recordRequest(providerID, string(err.Kind), start)
	return err
}

func (c *Client) recordRequest(providerID, outcome string, start time.Time) {
	if c.metrics != nil {
		c.metrics.RecordRequest(providerID, outcome, time.Since(start))
	}
}

func (c *Client) recordRetry(providerID string) {
	if c.metrics != nil {
		c.metrics.RecordRetry(providerID)
	}
}
