// Package errors provides the structured error type returned at the API
// boundary.
//
// Import Path: vme-analyzer.io/analyzer/internal/pkg/errors
package errors

import (
	"errors"
	"net/http"
)

// Sentinels the store implementations wrap.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// AppError carries a machine-readable code and the HTTP status the
// ErrorHandler middleware renders it with.
type AppError struct {
	Code        string         `json:"code"`
	Message     string         `json:"message"`
	HTTPStatus  int            `json:"-"`
	Params      map[string]any `json:"params,omitempty"`
	FieldErrors []FieldError   `json:"field_errors,omitempty"`
	Err         error          `json:"-"`
}

// FieldError describes one request field that failed validation.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

func (e *AppError) Error() string {
	msg := e.Code + ": " + e.Message
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *AppError) Unwrap() error { return e.Err }

// New creates an AppError.
func New(code, message string, httpStatus int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus}
}

// Wrap creates an AppError with err as its cause.
func Wrap(err error, code, message string, httpStatus int) *AppError {
	e := New(code, message, httpStatus)
	e.Err = err
	return e
}

// WithParams sets structured parameters such as the offending id.
// Empty params leave e unchanged.
func (e *AppError) WithParams(params map[string]any) *AppError {
	if e != nil && len(params) > 0 {
		e.Params = params
	}
	return e
}

// WithFieldErrors sets the field-level failures. An empty slice leaves e
// unchanged.
func (e *AppError) WithFieldErrors(fieldErrors []FieldError) *AppError {
	if e != nil && len(fieldErrors) > 0 {
		e.FieldErrors = fieldErrors
	}
	return e
}

func BadRequest(code, message string) *AppError {
	return New(code, message, http.StatusBadRequest)
}

func NotFound(code, message string) *AppError {
	return New(code, message, http.StatusNotFound)
}

func TooLarge(code, message string) *AppError {
	return New(code, message, http.StatusRequestEntityTooLarge)
}

// Unavailable wraps a backend failure as a 503.
func Unavailable(err error, code, message string) *AppError {
	return Wrap(err, code, message, http.StatusServiceUnavailable)
}

// As reports whether err has an AppError in its chain and returns it.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	ok := errors.As(err, &appErr)
	return appErr, ok
}
