package client

import (
	"context"
	"net"
	"net/http"
	"syscall"
	"testing"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		kind      Kind
		retryable bool
	}{
		{"401 unauthorized", http.StatusUnauthorized, KindAPIKey, false},
		{"403 forbidden", http.StatusForbidden, KindAPIKey, false},
		{"429 too many requests", http.StatusTooManyRequests, KindRateLimit, false},
		{"500 internal error", http.StatusInternalServerError, KindServer, true},
		{"502 bad gateway", http.StatusBadGateway, KindServer, true},
		{"503 unavailable", http.StatusServiceUnavailable, KindServer, true},
		{"404 not found", http.StatusNotFound, KindUnknown, false},
		{"400 bad request", http.StatusBadRequest, KindUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyStatus("claude", tt.status, []byte(`{"error":"x"}`))
			if got.Kind != tt.kind {
				t.Errorf("expected kind %s, got %s", tt.kind, got.Kind)
			}
			if got.Retryable != tt.retryable {
				t.Errorf("expected retryable=%v, got %v", tt.retryable, got.Retryable)
			}
			if got.Provider != "claude" {
				t.Errorf("expected provider context, got %q", got.Provider)
			}
		})
	}
}

func TestClassifyTransport(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		kind      Kind
		retryable bool
		timeout   bool
	}{
		{"cancelled", context.Canceled, KindCancelled, false, false},
		{"deadline", context.DeadlineExceeded, KindNetwork, true, true},
		{"dns failure", &net.DNSError{Err: "no such host", Name: "api.example.com"}, KindNetwork, true, false},
		{"connection refused", &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}, KindNetwork, true, false},
		{"connection reset", &net.OpError{Op: "read", Err: syscall.ECONNRESET}, KindNetwork, true, false},
		{"host unreachable", &net.OpError{Op: "dial", Err: syscall.EHOSTUNREACH}, KindNetwork, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyTransport("gemini", tt.err)
			if got.Kind != tt.kind {
				t.Errorf("expected kind %s, got %s", tt.kind, got.Kind)
			}
			if got.Retryable != tt.retryable {
				t.Errorf("expected retryable=%v, got %v", tt.retryable, got.Retryable)
			}
			if got.Timeout != tt.timeout {
				t.Errorf("expected timeout=%v, got %v", tt.timeout, got.Timeout)
			}
		})
	}
}

// Classification is a pure function: identical inputs always produce
// identical results.
func TestClassifyDeterministic(t *testing.T) {
	for i := 0; i < 10; i++ {
		a := ClassifyStatus("mistral", 503, []byte("down"))
		b := ClassifyStatus("mistral", 503, []byte("down"))
		if a.Kind != b.Kind || a.Retryable != b.Retryable || a.Message != b.Message {
			t.Fatalf("classification not deterministic: %+v vs %+v", a, b)
		}

		x := ClassifyTransport("mistral", context.DeadlineExceeded)
		y := ClassifyTransport("mistral", context.DeadlineExceeded)
		if x.Kind != y.Kind || x.Retryable != y.Retryable || x.Timeout != y.Timeout {
			t.Fatalf("classification not deterministic: %+v vs %+v", x, y)
		}
	}
}

func TestClassifyStatusTrimsLongBodies(t *testing.T) {
	long := make([]byte, 4096)
	for i := range long {
		long[i] = 'x'
	}

	got := ClassifyStatus("groq", 500, long)
	if len(got.Message) > maxBodyInMessage+32 {
		t.Errorf("expected trimmed message, got %d bytes", len(got.Message))
	}
}
