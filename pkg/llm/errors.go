package llm

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType classifies a failed call to the text-analysis service.
type ErrorType string

const (
	ErrorTypeAuth       ErrorType = "auth"
	ErrorTypeModel      ErrorType = "model"
	ErrorTypeEndpoint   ErrorType = "endpoint"
	ErrorTypeOverloaded ErrorType = "overloaded"
	ErrorTypeUnknown    ErrorType = "unknown"
)

// Error represents a structured text-analysis service error.
type Error struct {
	Type       ErrorType // Classification of the error
	Message    string    // Human-readable message
	Retryable  bool      // Whether the operation can be retried
	Cause      error     // Underlying error
	StatusCode int       // HTTP status code if applicable
}

// Error implements the error interface.
func (e *Error) Error() string {
	var parts []string
	parts = append(parts, string(e.Type))

	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("HTTP %d", e.StatusCode))
	}
	parts = append(parts, e.Message)

	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", strings.Join(parts, " "), e.Cause)
	}
	return strings.Join(parts, " ")
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsRetryable implements the retry.RetryableError interface.
// This allows the retry package to check retryability without importing llm.
func (e *Error) IsRetryable() bool {
	return e.Retryable
}

// NewError creates a new structured service error.
func NewError(errType ErrorType, message string, retryable bool, cause error) *Error {
	return &Error{
		Type:      errType,
		Message:   message,
		Retryable: retryable,
		Cause:     cause,
	}
}

// ClassifyError categorizes an error and returns a structured Error.
// This consolidates error classification logic for consistent handling:
// the retry loop backs off on overloaded/transport errors and gives up
// immediately on auth and configuration failures.
func ClassifyError(err error) *Error {
	if err == nil {
		return nil
	}

	// Check if already an *Error
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr
	}

	errStr := err.Error()
	lower := strings.ToLower(errStr)

	// Extract HTTP status code from error string
	statusCode := 0
	for _, code := range []int{400, 401, 403, 404, 429, 500, 502, 503, 504, 529} {
		if strings.Contains(errStr, fmt.Sprintf("%d", code)) {
			statusCode = code
			break
		}
	}

	// Authentication errors (not retryable)
	if strings.Contains(errStr, "401") || strings.Contains(lower, "unauthorized") ||
		strings.Contains(lower, "invalid api key") {
		svcErr = NewError(ErrorTypeAuth, "authentication failed", false, err)
		svcErr.StatusCode = statusCode
		return svcErr
	}

	// Model not found (not retryable without config change)
	if strings.Contains(lower, "model") && (strings.Contains(lower, "not found") ||
		strings.Contains(lower, "does not exist")) {
		svcErr = NewError(ErrorTypeModel, "model not found", false, err)
		svcErr.StatusCode = statusCode
		return svcErr
	}

	// Endpoint not found (not retryable without config change)
	if strings.Contains(errStr, "404") {
		svcErr = NewError(ErrorTypeEndpoint, "endpoint not found", false, err)
		svcErr.StatusCode = statusCode
		return svcErr
	}

	// Service overload / rate limiting (retryable after backoff).
	// Anthropic signals overload with a distinguished 529 overloaded_error.
	if strings.Contains(errStr, "429") || strings.Contains(errStr, "529") ||
		strings.Contains(lower, "overloaded") || strings.Contains(lower, "rate limit") ||
		strings.Contains(lower, "too many requests") {
		svcErr = NewError(ErrorTypeOverloaded, "service overloaded", true, err)
		svcErr.StatusCode = statusCode
		return svcErr
	}

	// Connection errors (retryable)
	if strings.Contains(lower, "connection refused") || strings.Contains(lower, "no such host") ||
		strings.Contains(lower, "connection reset") {
		svcErr = NewError(ErrorTypeEndpoint, "connection failed", true, err)
		svcErr.StatusCode = statusCode
		return svcErr
	}

	// Timeout and deadline exceeded (retryable)
	if strings.Contains(lower, "timeout") || strings.Contains(lower, "deadline exceeded") {
		svcErr = NewError(ErrorTypeEndpoint, "request timeout", true, err)
		svcErr.StatusCode = statusCode
		return svcErr
	}

	// 5xx server errors (retryable)
	if strings.Contains(errStr, "500") || strings.Contains(errStr, "502") ||
		strings.Contains(errStr, "503") || strings.Contains(errStr, "504") {
		svcErr = NewError(ErrorTypeEndpoint, "server error", true, err)
		svcErr.StatusCode = statusCode
		return svcErr
	}

	// Unknown error
	svcErr = NewError(ErrorTypeUnknown, "classification service error", false, err)
	svcErr.StatusCode = statusCode
	return svcErr
}

// IsRetryable returns true if the error is retryable.
func IsRetryable(err error) bool {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Retryable
	}
	return false
}

// GetErrorType extracts the ErrorType from an error.
func GetErrorType(err error) ErrorType {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Type
	}
	return ErrorTypeUnknown
}
