package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors. Collaborator failures are surfaced through the
// two *Unavailable sentinels so callers can distinguish "the OCR tooling is
// broken" from "the driver store is broken" with errors.Is.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrValidation         = errors.New("validation failed")
	ErrOCRUnavailable     = errors.New("ocr unavailable")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// OCRError wraps err so that errors.Is(err, ErrOCRUnavailable) holds.
func OCRError(message string, cause error) error {
	return fmt.Errorf("%s: %w: %w", message, ErrOCRUnavailable, cause)
}

// StorageError wraps err so that errors.Is(err, ErrStorageUnavailable) holds.
func StorageError(message string, cause error) error {
	return fmt.Errorf("%s: %w: %w", message, ErrStorageUnavailable, cause)
}
