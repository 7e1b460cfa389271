package apperr

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// TypeNotFound indicates a resource was not found
	TypeNotFound ErrorType = "not_found"
	// TypeValidation indicates invalid input data
	TypeValidation ErrorType = "validation"
	// TypeExternal indicates a remote service failed or returned garbage
	TypeExternal ErrorType = "external"
	// TypeInternal indicates an internal server error
	TypeInternal ErrorType = "internal"
)

// AppError is the base error type for application errors
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFoundf creates a not found error with formatting
func NotFoundf(format string, args ...interface{}) error {
	return &AppError{
		Type:    TypeNotFound,
		Message: fmt.Sprintf(format, args...),
	}
}

// Validationf creates a validation error with formatting
func Validationf(format string, args ...interface{}) error {
	return &AppError{
		Type:    TypeValidation,
		Message: fmt.Sprintf(format, args...),
	}
}

// WrapValidation wraps an error as a validation error
func WrapValidation(message string, err error) error {
	return &AppError{
		Type:    TypeValidation,
		Message: message,
		Err:     err,
	}
}

// Externalf creates an external service error with formatting
func Externalf(format string, args ...interface{}) error {
	return &AppError{
		Type:    TypeExternal,
		Message: fmt.Sprintf(format, args...),
	}
}

// WrapExternal wraps an error as an external service error
func WrapExternal(message string, err error) error {
	return &AppError{
		Type:    TypeExternal,
		Message: message,
		Err:     err,
	}
}

// WrapInternal wraps an error as an internal error
func WrapInternal(message string, err error) error {
	return &AppError{
		Type:    TypeInternal,
		Message: message,
		Err:     err,
	}
}

// GetType returns the error type of an error
func GetType(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return TypeInternal
}

// Is reports whether err carries the given type
func Is(err error, t ErrorType) bool {
	return err != nil && GetType(err) == t
}
