package models

import (
	"errors"
	"fmt"
)

// Error codes used in API responses and internal error handling.
const (
	// Pipeline taxonomy.
	ErrCodeExtraction  = "EXTRACTION_FAILED"
	ErrCodeValidation  = "VALIDATION_FAILED"
	ErrCodePersistence = "PERSISTENCE_FAILED"
	ErrCodeTimeout     = "TIMEOUT"

	// Browser / transport.
	ErrCodeNavigation   = "NAVIGATION_FAILED"
	ErrCodeBrowserCrash = "BROWSER_CRASH"

	// HTTP shell.
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeRateLimited  = "RATE_LIMITED"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// ErrorDetail is the structured error in API responses.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PipelineError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type PipelineError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// ToDetail converts an internal error to an API-facing ErrorDetail.
func (e *PipelineError) ToDetail() *ErrorDetail {
	return &ErrorDetail{Code: e.Code, Message: e.Message}
}

// NewPipelineError creates a new PipelineError.
func NewPipelineError(code, message string, err error) *PipelineError {
	return &PipelineError{Code: code, Message: message, Err: err}
}

// NewExtractionError reports that no strategy yielded a mandatory field.
func NewExtractionError(message string, err error) *PipelineError {
	return NewPipelineError(ErrCodeExtraction, message, err)
}

// NewValidationError reports a would-be verified record violating an invariant.
func NewValidationError(message string) *PipelineError {
	return NewPipelineError(ErrCodeValidation, message, nil)
}

// NewPersistenceError reports a backend write that was rejected or unreachable.
func NewPersistenceError(message string, err error) *PipelineError {
	return NewPipelineError(ErrCodePersistence, message, err)
}

// ErrorCode returns the code of the first PipelineError in err's chain,
// or "" if there is none.
func ErrorCode(err error) string {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// IsCode reports whether err carries the given pipeline error code.
func IsCode(err error, code string) bool {
	return err != nil && ErrorCode(err) == code
}

// AsPipelineError returns err as a PipelineError, wrapping unknown errors
// as INTERNAL_ERROR.
func AsPipelineError(err error) *PipelineError {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe
	}
	return NewPipelineError(ErrCodeInternal, err.Error(), err)
}
