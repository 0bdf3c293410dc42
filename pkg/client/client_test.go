package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/NikolaiRadke/AI.duino-sub001/pkg/providers"
)

// staticKeys is a KeySource backed by a plain map.
type staticKeys map[string]string

func (k staticKeys) APIKey(providerID string) (string, error) {
	return k[providerID], nil
}

// recordingUsage captures Update calls.
type recordingUsage struct {
	calls  int32
	input  string
	output string
}

func (r *recordingUsage) Update(providerID, inputText, outputText string) {
	atomic.AddInt32(&r.calls, 1)
	r.input = inputText
	r.output = outputText
}

func testClient(t *testing.T, serverURL string, usage UsageRecorder) *Client {
	t.Helper()

	reg := providers.NewRegistry(&providers.Claude{BaseURL: serverURL, ModelID: "claude-test"})
	keys := staticKeys{"claude": "sk-test-key"}

	opts := []Option{}
	if usage != nil {
		opts = append(opts, WithUsageRecorder(usage))
	}
	return New(Config{
		Timeout:    2 * time.Second,
		MaxRetries: 3,
		BaseDelay:  time.Millisecond,
	}, reg, keys, opts...)
}

func TestAskSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("x-api-key"); got != "sk-test-key" {
			t.Errorf("expected api key header, got %q", got)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"use pinMode first"}]}`))
	}))
	defer server.Close()

	usage := &recordingUsage{}
	c := testClient(t, server.URL, usage)

	text, err := c.Ask(context.Background(), "claude", "why is my led dark?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "use pinMode first" {
		t.Errorf("expected extracted text, got %q", text)
	}

	// Usage is recorded exactly once, on success only.
	if n := atomic.LoadInt32(&usage.calls); n != 1 {
		t.Errorf("expected 1 usage update, got %d", n)
	}
	if usage.input != "why is my led dark?" || usage.output != "use pinMode first" {
		t.Errorf("usage recorded wrong text: in=%q out=%q", usage.input, usage.output)
	}
}

func TestAskUnknownProvider(t *testing.T) {
	c := testClient(t, "http://127.0.0.1:0", nil)

	_, err := c.Ask(context.Background(), "copilot", "hi")
	apiErr, ok := AsAPIError(err)
	if !ok {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Kind != KindUnknownProvider {
		t.Errorf("expected unknown provider kind, got %s", apiErr.Kind)
	}
}

func TestAskMissingAPIKey(t *testing.T) {
	reg := providers.NewRegistry(providers.NewClaude())
	c := New(Config{}, reg, staticKeys{})

	_, err := c.Ask(context.Background(), "claude", "hi")
	apiErr, ok := AsAPIError(err)
	if !ok {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Kind != KindAPIKey {
		t.Errorf("expected api key kind, got %s", apiErr.Kind)
	}
	if apiErr.Retryable {
		t.Error("api key errors must not be retryable")
	}
}

func TestAskRetriesExhaustedOn503(t *testing.T) {
	attempts := int32(0)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"overloaded"}`))
	}))
	defer server.Close()

	c := testClient(t, server.URL, nil)

	_, err := c.Ask(context.Background(), "claude", "hi")
	apiErr, ok := AsAPIError(err)
	if !ok {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Kind != KindServer {
		t.Errorf("expected server kind, got %s", apiErr.Kind)
	}

	// Exactly MaxRetries attempts, then terminal failure.
	if n := atomic.LoadInt32(&attempts); n != 3 {
		t.Errorf("expected exactly 3 attempts, got %d", n)
	}
}

func TestAskRecoversAfterTransientError(t *testing.T) {
	attempts := int32(0)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"ok"}]}`))
	}))
	defer server.Close()

	c := testClient(t, server.URL, nil)

	text, err := c.Ask(context.Background(), "claude", "hi")
	if err != nil {
		t.Fatalf("expected recovery after retries, got %v", err)
	}
	if text != "ok" {
		t.Errorf("expected %q, got %q", "ok", text)
	}
	if n := atomic.LoadInt32(&attempts); n != 3 {
		t.Errorf("expected 3 attempts, got %d", n)
	}
}

func TestAskDoesNotRetryNonRetryable(t *testing.T) {
	tests := []struct {
		name   string
		status int
		kind   Kind
	}{
		{"401 unauthorized", http.StatusUnauthorized, KindAPIKey},
		{"403 forbidden", http.StatusForbidden, KindAPIKey},
		{"429 rate limit", http.StatusTooManyRequests, KindRateLimit},
		{"418 unexpected", http.StatusTeapot, KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts := int32(0)
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&attempts, 1)
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			usage := &recordingUsage{}
			c := testClient(t, server.URL, usage)

			_, err := c.Ask(context.Background(), "claude", "hi")
			apiErr, ok := AsAPIError(err)
			if !ok {
				t.Fatalf("expected *APIError, got %v", err)
			}
			if apiErr.Kind != tt.kind {
				t.Errorf("expected kind %s, got %s", tt.kind, apiErr.Kind)
			}
			if n := atomic.LoadInt32(&attempts); n != 1 {
				t.Errorf("expected 1 attempt, got %d", n)
			}
			if atomic.LoadInt32(&usage.calls) != 0 {
				t.Error("usage must not be recorded on failure")
			}
		})
	}
}

func TestAskParseErrorNotRetried(t *testing.T) {
	attempts := int32(0)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"unexpected":"shape"}`))
	}))
	defer server.Close()

	c := testClient(t, server.URL, nil)

	_, err := c.Ask(context.Background(), "claude", "hi")
	apiErr, ok := AsAPIError(err)
	if !ok {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Kind != KindParse {
		t.Errorf("expected parse kind, got %s", apiErr.Kind)
	}
	if n := atomic.LoadInt32(&attempts); n != 1 {
		t.Errorf("expected 1 attempt (parse errors are terminal), got %d", n)
	}
}

func TestAskTimeoutClassifiedAsNetwork(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	reg := providers.NewRegistry(&providers.Claude{BaseURL: server.URL, ModelID: "m"})
	c := New(Config{
		Timeout:    20 * time.Millisecond,
		MaxRetries: 2,
		BaseDelay:  time.Millisecond,
	}, reg, staticKeys{"claude": "k"})

	_, err := c.Ask(context.Background(), "claude", "hi")
	apiErr, ok := AsAPIError(err)
	if !ok {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Kind != KindNetwork {
		t.Errorf("expected network kind, got %s", apiErr.Kind)
	}
	if !apiErr.Timeout {
		t.Error("expected timeout flag on deadline expiry")
	}
}

func TestAskCancellationPropagatesImmediately(t *testing.T) {
	started := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		time.Sleep(time.Second)
	}))
	defer server.Close()

	c := testClient(t, server.URL, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := c.Ask(ctx, "claude", "hi")
	apiErr, ok := AsAPIError(err)
	if !ok {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Kind != KindCancelled {
		t.Errorf("expected cancelled kind, got %s", apiErr.Kind)
	}
	if apiErr.Retryable {
		t.Error("cancellation must never be retryable")
	}
}

func TestCompleteCapsMaxTokens(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"digitalWrite(13, HIGH);"}]}`))
	}))
	defer server.Close()

	c := testClient(t, server.URL, nil)

	text, err := c.Complete(context.Background(), "claude", "// turn on led:")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text == "" {
		t.Error("expected completion text")
	}
}
