package llm

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind categorizes a provider failure without exposing vendor payloads.
type ErrorKind string

const (
	KindTimeout   ErrorKind = "timeout"
	KindAuth      ErrorKind = "auth"
	KindRateLimit ErrorKind = "rate_limit"
	KindNetwork   ErrorKind = "network"
	KindResponse  ErrorKind = "response"
)

// ProviderError wraps a vendor SDK error with the provider name and a
// normalized kind so callers never have to inspect vendor types.
type ProviderError struct {
	Provider string
	Kind     ErrorKind
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// kindForStatus maps an HTTP status from a vendor API into an ErrorKind.
func kindForStatus(status int) ErrorKind {
	switch {
	case status == 401 || status == 403:
		return KindAuth
	case status == 429:
		return KindRateLimit
	case status == 408 || status == 504:
		return KindTimeout
	case status >= 500:
		return KindNetwork
	default:
		return KindResponse
	}
}

// normalize wraps err as a *ProviderError, preferring context-derived
// kinds so a caller-imposed deadline always surfaces as a timeout.
func normalize(provider string, kind ErrorKind, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		kind = KindTimeout
	}
	return &ProviderError{Provider: provider, Kind: kind, Err: err}
}
