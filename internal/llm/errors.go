package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Error kinds for failed provider calls. Only connection and timeout
// failures are worth retrying; the rest will fail the same way again.
const (
	KindConnection = "connection"
	KindTimeout    = "timeout"
	KindRateLimit  = "rate_limit"
	KindAuth       = "auth"
	KindServer     = "server"
	KindMalformed  = "malformed"
)

// APIError is a classified provider failure.
type APIError struct {
	Kind    string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("llm %s error (status %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("llm %s error: %s", e.Kind, e.Message)
}

// Retryable reports whether a fresh attempt could plausibly succeed.
func (e *APIError) Retryable() bool {
	return e.Kind == KindConnection || e.Kind == KindTimeout
}

// classifyTransport maps an http.Client error to an APIError.
func classifyTransport(err error) *APIError {
	kind := KindConnection
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		kind = KindTimeout
	}
	return &APIError{Kind: kind, Message: err.Error()}
}

// classifyStatus maps a non-200 HTTP response to an APIError.
func classifyStatus(status int, body string) *APIError {
	kind := KindServer
	switch {
	case status == 401 || status == 403:
		kind = KindAuth
	case status == 429:
		kind = KindRateLimit
	case status == 408 || status == 504:
		kind = KindTimeout
	}
	return &APIError{Kind: kind, Status: status, Message: body}
}
