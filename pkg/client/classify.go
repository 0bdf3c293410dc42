package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"syscall"
)

// maxBodyInMessage caps how much of an error response body is carried
// into the error message.
const maxBodyInMessage = 200

// ClassifyTransport maps a transport-level error (from http.Client.Do)
// into the canonical taxonomy. It is a pure function: identical inputs
// always classify identically.
func ClassifyTransport(provider string, err error) *APIError {
	switch {
	case errors.Is(err, context.Canceled):
		return &APIError{
			Kind:     KindCancelled,
			Provider: provider,
			Message:  "request cancelled",
			Cause:    err,
		}

	case errors.Is(err, context.DeadlineExceeded):
		return &APIError{
			Kind:      KindNetwork,
			Provider:  provider,
			Message:   "request timed out",
			Retryable: true,
			Timeout:   true,
			Cause:     err,
		}
	}

	// url.Error wraps net errors; net.Error.Timeout covers client-side
	// deadlines surfaced without the context sentinel.
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &APIError{
			Kind:      KindNetwork,
			Provider:  provider,
			Message:   "request timed out",
			Retryable: true,
			Timeout:   true,
			Cause:     err,
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &APIError{
			Kind:      KindNetwork,
			Provider:  provider,
			Message:   fmt.Sprintf("DNS lookup failed for %s", dnsErr.Name),
			Retryable: true,
			Cause:     err,
		}
	}

	var sysErr *os.SyscallError
	if errors.As(err, &sysErr) || isConnSyscall(err) {
		return &APIError{
			Kind:      KindNetwork,
			Provider:  provider,
			Message:   "connection failed: " + err.Error(),
			Retryable: true,
			Cause:     err,
		}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return &APIError{
			Kind:      KindNetwork,
			Provider:  provider,
			Message:   "network operation failed: " + err.Error(),
			Retryable: true,
			Cause:     err,
		}
	}

	return &APIError{
		Kind:     KindUnknown,
		Provider: provider,
		Message:  err.Error(),
		Cause:    err,
	}
}

// isConnSyscall reports whether err wraps one of the connection-level
// errno values treated as transient.
func isConnSyscall(err error) bool {
	for _, errno := range []syscall.Errno{
		syscall.ECONNREFUSED,
		syscall.ECONNRESET,
		syscall.EHOSTUNREACH,
		syscall.ENETUNREACH,
		syscall.EPIPE,
	} {
		if errors.Is(err, errno) {
			return true
		}
	}
	return false
}

// ClassifyStatus maps a non-2xx HTTP response into the canonical
// taxonomy. The body is trimmed into the message for diagnostics.
func ClassifyStatus(provider string, status int, body []byte) *APIError {
	msg := fmt.Sprintf("HTTP %d", status)
	if trimmed := trimBody(body); trimmed != "" {
		msg += ": " + trimmed
	}

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &APIError{Kind: KindAPIKey, Provider: provider, Message: msg}

	case http.StatusTooManyRequests:
		return &APIError{Kind: KindRateLimit, Provider: provider, Message: msg}

	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return &APIError{Kind: KindServer, Provider: provider, Message: msg, Retryable: true}

	default:
		return &APIError{Kind: KindUnknown, Provider: provider, Message: msg}
	}
}

// trimBody flattens an error response body into a single short line.
func trimBody(body []byte) string {
	s := strings.Join(strings.Fields(string(body)), " ")
	if len(s) > maxBodyInMessage {
		s = s[:maxBodyInMessage] + "..."
	}
	return s
}
