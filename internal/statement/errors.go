package statement

import (
	"errors"
	"fmt"
)

// PipelineErrorCode identifies a specific pipeline failure.
type PipelineErrorCode string

const (
	// ErrPasswordRequired means the PDF is encrypted and no password was given.
	ErrPasswordRequired PipelineErrorCode = "PASSWORD_REQUIRED"
	// ErrIncorrectPassword means the supplied password was rejected.
	ErrIncorrectPassword PipelineErrorCode = "INCORRECT_PASSWORD"
	// ErrEmptyExtraction means the PDF yielded no text, likely a scanned document.
	ErrEmptyExtraction PipelineErrorCode = "EMPTY_EXTRACTION"
	// ErrExtractionFailed covers all other PDF extraction failures.
	ErrExtractionFailed PipelineErrorCode = "EXTRACTION_FAILED"
	// ErrShapeInvalid means the extracted text does not look like a bank statement.
	ErrShapeInvalid PipelineErrorCode = "SHAPE_INVALID"
	// ErrModelBlocked means the provider refused the parse request.
	ErrModelBlocked PipelineErrorCode = "BLOCKED"
	// ErrEmptyResponse means the model returned no body.
	ErrEmptyResponse PipelineErrorCode = "EMPTY_RESPONSE"
	// ErrInvalidResponse means the model body did not match the required schema.
	ErrInvalidResponse PipelineErrorCode = "INVALID_RESPONSE"
	// ErrModelUnavailable means the model call itself failed (transport, quota).
	ErrModelUnavailable PipelineErrorCode = "MODEL_UNAVAILABLE"
)

// PipelineError is a structured error for pipeline failures. Retryable marks
// failures where re-issuing the identical request may succeed; the pipeline
// itself never retries.
type PipelineError struct {
	Code      PipelineErrorCode
	Message   string
	Retryable bool
	Cause     error
}

func (e *PipelineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// IsRetryable returns whether re-issuing the same request may succeed.
func (e *PipelineError) IsRetryable() bool {
	return e.Retryable
}

// NewError builds a PipelineError for the given code.
func NewError(code PipelineErrorCode, message string) *PipelineError {
	return &PipelineError{Code: code, Message: message, Retryable: retryable(code)}
}

// WrapError builds a PipelineError wrapping an underlying cause.
func WrapError(code PipelineErrorCode, message string, cause error) *PipelineError {
	return &PipelineError{Code: code, Message: message, Retryable: retryable(code), Cause: cause}
}

func retryable(code PipelineErrorCode) bool {
	switch code {
	case ErrModelBlocked, ErrEmptyResponse, ErrInvalidResponse, ErrModelUnavailable:
		return true
	default:
		return false
	}
}

// CodeOf extracts the pipeline error code from err, or "" when err carries none.
func CodeOf(err error) PipelineErrorCode {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}
