package error

import (
	"errors"
	"fmt"
)

// AI gateway errors.
var (
	// ErrAIUnavailable is returned when the generative model cannot be reached.
	ErrAIUnavailable = errors.New("ai service unavailable")

	// ErrAIEmptyResponse is returned when the model answered without any text.
	ErrAIEmptyResponse = errors.New("ai returned no text")

	// ErrInvalidImage is returned when an uploaded receipt is missing, too large or not an image.
	ErrInvalidImage = errors.New("invalid image")

	// ErrInvalidAIInput is returned when an AI-backed request lacks required text.
	ErrInvalidAIInput = errors.New("invalid ai input")
)

// AIFailureKind classifies why a gateway call produced no usable text.
type AIFailureKind string

const (
	AIFailureTimeout       AIFailureKind = "timeout"
	AIFailureQuota         AIFailureKind = "quota"
	AIFailureAuth          AIFailureKind = "auth"
	AIFailureNetwork       AIFailureKind = "network"
	AIFailureCircuitOpen   AIFailureKind = "circuit_open"
	AIFailureEmptyResponse AIFailureKind = "empty_response"
	AIFailureUnknown       AIFailureKind = "unknown"
)

// Retryable reports whether a single retry may succeed.
func (k AIFailureKind) Retryable() bool {
	return k == AIFailureNetwork
}

// AIGatewayError is returned by the AI gateway for any failed call.
type AIGatewayError struct {
	Kind AIFailureKind
	Err  error
}

// Error implements the error interface.
func (e *AIGatewayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ai gateway %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("ai gateway %s", e.Kind)
}

// Unwrap returns the underlying error.
func (e *AIGatewayError) Unwrap() error {
	return e.Err
}

// NewAIGatewayError creates a new AIGatewayError of the given kind.
func NewAIGatewayError(kind AIFailureKind, err error) *AIGatewayError {
	return &AIGatewayError{
		Kind: kind,
		Err:  err,
	}
}

// AIFailureKindOf extracts the failure kind of err, defaulting to unknown.
func AIFailureKindOf(err error) AIFailureKind {
	var gwErr *AIGatewayError
	if errors.As(err, &gwErr) {
		return gwErr.Kind
	}
	return AIFailureUnknown
}

// AIErrorCode defines error codes for AI request errors.
type AIErrorCode string

const (
	ErrCodeInvalidImage   AIErrorCode = "AI-010001"
	ErrCodeInvalidAIInput AIErrorCode = "AI-010002"
	ErrCodeAIRateLimited  AIErrorCode = "AI-020001"
)

// AIError represents a rejected AI-backed request.
type AIError struct {
	Code    AIErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AIError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *AIError) Unwrap() error {
	return e.Err
}

// NewAIError creates a new AIError with the given code and message.
func NewAIError(code AIErrorCode, message string, err error) *AIError {
	return &AIError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
