package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrCancelled is returned when the caller cancelled the operation. It is never
// wrapped in an AnalysisError.
var ErrCancelled = errors.New("analysis cancelled")

// AnalysisError represents a provider-neutral failure of an outbound call.
type AnalysisError struct {
	Kind        ErrorKind
	Message     string
	StatusCode  int   // 0 when the backend was never reached
	ProviderErr error // Original provider-specific error
}

// ErrorKind represents the category of error.
type ErrorKind string

const (
	ErrorKindInvalidKey ErrorKind = "invalid_key"
	ErrorKindRateLimit  ErrorKind = "rate_limit"
	ErrorKindNetwork    ErrorKind = "network"
	ErrorKindUnknown    ErrorKind = "unknown"
)

// Title returns the short heading shown to users for this kind.
func (k ErrorKind) Title() string {
	switch k {
	case ErrorKindInvalidKey:
		return "Invalid API Key"
	case ErrorKindRateLimit:
		return "Rate Limit Exceeded"
	case ErrorKindNetwork:
		return "Network Error"
	default:
		return "Analysis Failed"
	}
}

// Error implements the error interface.
func (e *AnalysisError) Error() string {
	return e.Message
}

// Unwrap returns the underlying provider error.
func (e *AnalysisError) Unwrap() error {
	return e.ProviderErr
}

// AsAnalysisError extracts an AnalysisError from err.
func AsAnalysisError(err error) (*AnalysisError, bool) {
	var aErr *AnalysisError
	if errors.As(err, &aErr) {
		return aErr, true
	}
	return nil, false
}

// IsKind checks if err is an AnalysisError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	aErr, ok := AsAnalysisError(err)
	return ok && aErr.Kind == kind
}

// IsInvalidKeyError checks if an error is an invalid credential error.
func IsInvalidKeyError(err error) bool { return IsKind(err, ErrorKindInvalidKey) }

// IsRateLimitError checks if an error is a rate limit error.
func IsRateLimitError(err error) bool { return IsKind(err, ErrorKindRateLimit) }

// IsNetworkError checks if an error is a transport or backend availability error.
func IsNetworkError(err error) bool { return IsKind(err, ErrorKindNetwork) }

// IsCancelled checks if an error reports caller cancellation.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}

// ClassifyStatus maps a non-success HTTP status to an AnalysisError.
// bodyMessage is the message from the backend's structured error body, if any.
func ClassifyStatus(providerName string, status int, bodyMessage string, providerErr error) *AnalysisError {
	e := &AnalysisError{StatusCode: status, ProviderErr: providerErr}
	switch {
	case status == http.StatusUnauthorized:
		e.Kind = ErrorKindInvalidKey
		e.Message = fmt.Sprintf("Invalid API key. Please check your %s API key in settings.", providerName)
	case status == http.StatusTooManyRequests:
		e.Kind = ErrorKindRateLimit
		e.Message = "Rate limit exceeded. Please wait a moment and try again."
	case status >= http.StatusInternalServerError:
		e.Kind = ErrorKindNetwork
		e.Message = fmt.Sprintf("%s service temporarily unavailable. Please try again later.", providerName)
	default:
		e.Kind = ErrorKindUnknown
		e.Message = bodyMessage
		if e.Message == "" {
			e.Message = fmt.Sprintf("API error: %d", status)
		}
	}
	return e
}

// ClassifyTransportError handles a call that produced no HTTP status. If ctx
// was cancelled by the caller the result wraps ErrCancelled. Connection
// failures and timeouts (net.Error, which includes *url.Error) are network
// errors. Anything else failed before or after the round trip and is unknown.
func ClassifyTransportError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %w", ErrCancelled, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return NewNetworkError(err)
	}
	return NewRequestError(err)
}

// NewRequestError creates an error for a call that failed without a transport
// problem, such as a request the client refused to build.
func NewRequestError(providerErr error) *AnalysisError {
	return &AnalysisError{
		Kind:        ErrorKindUnknown,
		Message:     fmt.Sprintf("Request failed: %v", providerErr),
		ProviderErr: providerErr,
	}
}

// NewNetworkError creates an error for a call that never reached the backend.
func NewNetworkError(providerErr error) *AnalysisError {
	return &AnalysisError{
		Kind:        ErrorKindNetwork,
		Message:     "Network error. Please check your connection.",
		ProviderErr: providerErr,
	}
}

// NewEmptyResponseError creates an error for a success response without text.
func NewEmptyResponseError(providerName string) *AnalysisError {
	return &AnalysisError{
		Kind:    ErrorKindUnknown,
		Message: fmt.Sprintf("Empty response from %s.", providerName),
	}
}
