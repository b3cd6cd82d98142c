package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode represents a specific error type for better error handling
type ErrorCode string

const (
	// Configuration errors
	ErrCodeConfigLoad      ErrorCode = "CONFIG_LOAD_FAILED"
	ErrCodeInvalidStrategy ErrorCode = "INVALID_STRATEGY"

	// Request errors
	ErrCodeMissingHost    ErrorCode = "MISSING_HOST"
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"

	// Delivery errors
	ErrCodeTransport      ErrorCode = "TRANSPORT_FAILED"
	ErrCodeRequestTimeout ErrorCode = "REQUEST_TIMEOUT"
	ErrCodeRateLimited    ErrorCode = "RATE_LIMITED"

	// Internal errors
	ErrCodeInternalError ErrorCode = "INTERNAL_ERROR"
)

// ClientError represents a structured error with context
type ClientError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	RequestID string                 `json:"request_id,omitempty"`
	Component string                 `json:"component,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Cause     error                  `json:"-"` // Original error
}

// Error implements the error interface
func (e *ClientError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("[%s][%s] %s: %s", e.RequestID, e.Code, e.Component, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Component, e.Message)
}

// Unwrap returns the underlying error
func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error code
func (e *ClientError) Is(target error) bool {
	if t, ok := target.(*ClientError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithMetadata adds metadata to the error
func (e *ClientError) WithMetadata(key string, value interface{}) *ClientError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// WithRequestID adds request ID to the error
func (e *ClientError) WithRequestID(requestID string) *ClientError {
	e.RequestID = requestID
	return e
}

// IsConfiguration returns true if the error is a programming or configuration
// mistake that retrying can never fix
func (e *ClientError) IsConfiguration() bool {
	switch e.Code {
	case ErrCodeConfigLoad, ErrCodeInvalidStrategy, ErrCodeMissingHost, ErrCodeInvalidRequest:
		return true
	default:
		return false
	}
}

// NewError creates a new ClientError
func NewError(code ErrorCode, component, message string) *ClientError {
	return &ClientError{
		Code:      code,
		Component: component,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// NewErrorWithCause creates a new ClientError with an underlying cause
func NewErrorWithCause(code ErrorCode, component, message string, cause error) *ClientError {
	return &ClientError{
		Code:      code,
		Component: component,
		Message:   message,
		Timestamp: time.Now(),
		Cause:     cause,
		Details:   cause.Error(),
	}
}

// WrapError wraps an existing error with ClientError structure
func WrapError(err error, code ErrorCode, component, message string) *ClientError {
	if err == nil {
		return nil
	}

	return &ClientError{
		Code:      code,
		Component: component,
		Message:   message,
		Timestamp: time.Now(),
		Cause:     err,
		Details:   err.Error(),
	}
}

// Common error constructors for frequently used errors

// NewMissingHostError creates an error for a request URI without a hostname
func NewMissingHostError(uri string) *ClientError {
	return NewError(
		ErrCodeMissingHost,
		"load_balanced_client",
		fmt.Sprintf("Request URI does not contain a valid hostname: %s", uri),
	).WithMetadata("uri", uri)
}

// NewTransportError wraps an I/O failure from the underlying transport
func NewTransportError(serviceID string, cause error) *ClientError {
	return NewErrorWithCause(
		ErrCodeTransport,
		"transport",
		fmt.Sprintf("Request to service %s failed", serviceID),
		cause,
	).WithMetadata("service_id", serviceID)
}

// NewInvalidStrategyError creates an error for an unknown balancing strategy
func NewInvalidStrategyError(strategy string) *ClientError {
	return NewError(
		ErrCodeInvalidStrategy,
		"resolver",
		fmt.Sprintf("Unsupported load balancing strategy '%s'", strategy),
	).WithMetadata("strategy", strategy)
}

// Helper functions

// IsClientError checks if an error is a ClientError
func IsClientError(err error) bool {
	var clientErr *ClientError
	return errors.As(err, &clientErr)
}

// GetErrorCode extracts the error code from an error
func GetErrorCode(err error) ErrorCode {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Code
	}
	return ErrCodeInternalError
}

// IsConfiguration checks if an error is a non-retryable configuration error
func IsConfiguration(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.IsConfiguration()
	}
	return false
}
