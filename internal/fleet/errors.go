package fleet

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a per-ship failure or warning
type ErrorCode string

const (
	ErrCodeLaunch     ErrorCode = "LAUNCH"
	ErrCodeTimeout    ErrorCode = "TIMEOUT"
	ErrCodeNavigation ErrorCode = "NAVIGATION"
	ErrCodeExtraction ErrorCode = "EXTRACTION"
	ErrCodeStore      ErrorCode = "STORE"
	ErrCodeScreenshot ErrorCode = "SCREENSHOT"
	ErrCodeUpload     ErrorCode = "UPLOAD"
	ErrCodeCleanup    ErrorCode = "CLEANUP"
)

// PhaseError wraps an error with the phase and ship it happened in
type PhaseError struct {
	Code       ErrorCode
	Phase      Phase
	Ship       string
	Message    string
	Underlying error
	Retry      bool
	Details    map[string]interface{}
}

// Error implements the error interface
func (e *PhaseError) Error() string {
	prefix := fmt.Sprintf("%s [%s]", e.Code, e.Phase)
	if e.Ship != "" {
		prefix += " " + e.Ship
	}
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// Unwrap returns the underlying error
func (e *PhaseError) Unwrap() error {
	return e.Underlying
}

// Is matches another *PhaseError by code, otherwise defers to the underlying error
func (e *PhaseError) Is(target error) bool {
	if t, ok := target.(*PhaseError); ok {
		return e.Code == t.Code
	}
	return errors.Is(e.Underlying, target)
}

// NewPhaseError creates a new PhaseError
func NewPhaseError(code ErrorCode, phase Phase, message string, err error) *PhaseError {
	return &PhaseError{
		Code:       code,
		Phase:      phase,
		Message:    message,
		Underlying: err,
		Details:    make(map[string]interface{}),
	}
}

// WithRetry marks the error as retryable on the next cycle
func (e *PhaseError) WithRetry() *PhaseError {
	e.Retry = true
	return e
}

// WithDetail adds a detail to the error
func (e *PhaseError) WithDetail(key string, value interface{}) *PhaseError {
	e.Details[key] = value
	return e
}

// Temporary reports whether the error is retryable
func (e *PhaseError) Temporary() bool {
	return e.Retry
}
