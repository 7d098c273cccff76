package domain

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation        Code = "VALIDATION"
	CodeNotFound          Code = "NOT_FOUND"
	CodeConflict          Code = "CONFLICT"
	CodeInsufficientStock Code = "INSUFFICIENT_STOCK"
	CodeUnavailable       Code = "UNAVAILABLE"
	CodeInternal          Code = "INTERNAL"
)

var statusByCode = map[Code]int{
	CodeValidation:        http.StatusBadRequest,
	CodeNotFound:          http.StatusNotFound,
	CodeConflict:          http.StatusBadRequest,
	CodeInsufficientStock: http.StatusBadRequest,
	CodeUnavailable:       http.StatusInternalServerError,
	CodeInternal:          http.StatusInternalServerError,
}

// Error carries a Code that the HTTP layer maps to a status.
type Error struct {
	code    Code
	message string
	cause   error
}

func NewError(code Code, format string, args ...any) *Error {
	return &Error{code: code, message: fmt.Sprintf(format, args...)}
}

func Wrap(code Code, err error, message string) *Error {
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code      { return e.code }
func (e *Error) Message() string { return e.message }
func (e *Error) Unwrap() error   { return e.cause }
func (e *Error) HTTPStatus() int { return StatusFor(e.code) }
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.code == e.code && t.message == ""
	}
	return false
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func StatusFor(code Code) int {
	if s, ok := statusByCode[code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// CodeOf reports the Code of err, or CodeInternal when err is not a domain error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.code
	}
	return CodeInternal
}

// Sentinels for errors.Is checks against a code, regardless of message.
var (
	ErrValidation        = &Error{code: CodeValidation}
	ErrNotFound          = &Error{code: CodeNotFound}
	ErrConflict          = &Error{code: CodeConflict}
	ErrInsufficientStock = &Error{code: CodeInsufficientStock}
	ErrUnavailable       = &Error{code: CodeUnavailable}
)
