package errors

import (
	"fmt"
	"net/http"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeMalformedInput   ErrorType = "MALFORMED_INPUT"
	ErrTypeUnknownColumn    ErrorType = "UNKNOWN_COLUMN"
	ErrTypeTypeMismatch     ErrorType = "TYPE_MISMATCH"
	ErrTypeNonNumericColumn ErrorType = "NON_NUMERIC_COLUMN"
	ErrTypeEmptyDataset     ErrorType = "EMPTY_DATASET"
	ErrTypeEmptyInput       ErrorType = "EMPTY_INPUT"
	ErrTypeValidation       ErrorType = "VALIDATION"
	ErrTypePayloadTooLarge  ErrorType = "PAYLOAD_TOO_LARGE"
	ErrTypeRender           ErrorType = "RENDER"
	ErrTypeConfig           ErrorType = "CONFIG"
)

// Sentinels for errors.Is. An AppError matches a sentinel when their types are equal.
var (
	ErrMalformedInput   = &AppError{Type: ErrTypeMalformedInput}
	ErrUnknownColumn    = &AppError{Type: ErrTypeUnknownColumn}
	ErrTypeMismatch     = &AppError{Type: ErrTypeTypeMismatch}
	ErrNonNumericColumn = &AppError{Type: ErrTypeNonNumericColumn}
	ErrEmptyDataset     = &AppError{Type: ErrTypeEmptyDataset}
	ErrEmptyInput       = &AppError{Type: ErrTypeEmptyInput}
	ErrPayloadTooLarge  = &AppError{Type: ErrTypePayloadTooLarge}
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a sentinel of the same type.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Message == "" && t.Type == e.Type
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// HTTPStatus maps the error type to a response status code.
func (e *AppError) HTTPStatus() int {
	switch e.Type {
	case ErrTypeMalformedInput, ErrTypeUnknownColumn, ErrTypeTypeMismatch,
		ErrTypeNonNumericColumn, ErrTypeEmptyInput, ErrTypeValidation:
		return http.StatusBadRequest
	case ErrTypeEmptyDataset:
		return http.StatusUnprocessableEntity
	case ErrTypePayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewMalformedInputError reports a payload that cannot be decoded as a table.
func NewMalformedInputError(message string, cause error) *AppError {
	return NewAppError(ErrTypeMalformedInput, message, cause)
}

// NewUnknownColumnError reports a reference to a column absent from the schema.
func NewUnknownColumnError(column string) *AppError {
	return NewAppError(ErrTypeUnknownColumn, fmt.Sprintf("Column %q does not exist in the CSV file", column), nil).
		WithContext("column", column)
}

// NewTypeMismatchError reports a predicate whose type conflicts with its column.
func NewTypeMismatchError(column, predicate string) *AppError {
	return NewAppError(ErrTypeTypeMismatch,
		fmt.Sprintf("predicate %s cannot be applied to text column %q", predicate, column), nil).
		WithContext("column", column)
}

// NewNonNumericColumnError reports a numeric operation on a text column.
func NewNonNumericColumnError(column string) *AppError {
	return NewAppError(ErrTypeNonNumericColumn, fmt.Sprintf("column %q is not numeric", column), nil).
		WithContext("column", column)
}

// NewEmptyDatasetError reports that there is nothing to aggregate or render.
func NewEmptyDatasetError(message string) *AppError {
	return NewAppError(ErrTypeEmptyDataset, message, nil)
}

// NewEmptyInputError reports empty or whitespace-only text input.
func NewEmptyInputError(message string) *AppError {
	return NewAppError(ErrTypeEmptyInput, message, nil)
}

// NewAppValidationError creates a validation error for AppError type
func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewPayloadTooLargeError reports an upload over the configured limit.
func NewPayloadTooLargeError(limit int64, cause error) *AppError {
	return NewAppError(ErrTypePayloadTooLarge,
		fmt.Sprintf("payload exceeds the maximum allowed size of %d bytes", limit), cause).
		WithContext("max_bytes", limit)
}

// NewRenderError wraps a failure inside the rendering backend.
func NewRenderError(message string, cause error) *AppError {
	return NewAppError(ErrTypeRender, message, cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}
