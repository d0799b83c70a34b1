package errors

import (
	"errors"
	"fmt"
)

// Error types for the directory domain
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeInternal   ErrorType = "internal"
)

// AppError represents a structured domain error
type AppError struct {
	Type    ErrorType              `json:"type"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an AppError of the same type and code.
// Message and details are ignored so sentinel values work with errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// Error constructors
func NewValidationError(code, message string) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Code:    code,
		Message: message,
	}
}

// NewNotFoundError builds a not-found error for resource. The code is derived
// from the resource name, e.g. "phone" becomes PHONE_NOT_FOUND.
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Code:    notFoundCode(resource),
		Message: fmt.Sprintf("%s not found", resource),
	}
}

func NewInternalError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeInternal,
		Code:    "INTERNAL_ERROR",
		Message: message,
	}
}

// Sentinel targets for errors.Is. Never return these directly; construct a
// fresh error so WithCause/WithDetails cannot mutate shared state.
var (
	ErrPhoneNotDigits     = NewValidationError(CodePhoneNotDigits, "phone number must contain only digits")
	ErrPhoneInvalidLength = NewValidationError(CodePhoneInvalidLength, "phone number must be between 10 and 13 digits long")
	ErrPhoneNotFound      = NewNotFoundError("phone")
	ErrRecordNotFound     = NewNotFoundError("record")
)

// Validation codes
const (
	CodePhoneNotDigits     = "PHONE_NOT_DIGITS"
	CodePhoneInvalidLength = "PHONE_INVALID_LENGTH"
	CodeInvalidRecord      = "INVALID_RECORD"
)

// IsType checks if an error is of a specific type
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}

// IsValidation reports whether err carries a validation AppError.
func IsValidation(err error) bool {
	return IsType(err, ErrorTypeValidation)
}

// IsNotFound reports whether err carries a not-found AppError.
func IsNotFound(err error) bool {
	return IsType(err, ErrorTypeNotFound)
}

func notFoundCode(resource string) string {
	code := make([]byte, 0, len(resource)+len("_NOT_FOUND"))
	for i := 0; i < len(resource); i++ {
		c := resource[i]
		switch {
		case c >= 'a' && c <= 'z':
			c -= 'a' - 'A'
		case c == ' ' || c == '-':
			c = '_'
		}
		code = append(code, c)
	}
	return string(code) + "_NOT_FOUND"
}
