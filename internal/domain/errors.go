package domain

import (
	"errors"
	"net/http"
)

// Error codes. Each maps to one HTTP status in HTTPStatusCode.
const (
	CodeNotFound      = 1
	CodeAlreadyExists = 2
	CodeValidation    = 3
	CodeInternal      = 4
	CodeUnauthorized  = 5
	CodeForbidden     = 6
)

var statusByCode = map[int]int{
	CodeNotFound:      http.StatusNotFound,
	CodeAlreadyExists: http.StatusConflict,
	CodeValidation:    http.StatusBadRequest,
	CodeInternal:      http.StatusInternalServerError,
	CodeUnauthorized:  http.StatusUnauthorized,
	CodeForbidden:     http.StatusForbidden,
}

// AppError is a business error. Message is safe to show to clients; Err is
// the cause and stays server side.
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Sentinels for the common cases. Match categories with the Is* helpers,
// which compare codes; errors.Is only matches these exact pointers.
var (
	ErrNotFound      = &AppError{Code: CodeNotFound, Message: "not found"}
	ErrAlreadyExists = &AppError{Code: CodeAlreadyExists, Message: "already exists"}
	ErrValidation    = &AppError{Code: CodeValidation, Message: "validation error"}
	ErrInternal      = &AppError{Code: CodeInternal, Message: "internal error"}
	ErrUnauthorized  = &AppError{Code: CodeUnauthorized, Message: "unauthorized"}
	ErrForbidden     = &AppError{Code: CodeForbidden, Message: "forbidden"}
)

// NewAppError creates an AppError wrapping err, which may be nil.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func NewValidationError(message string) *AppError {
	return NewAppError(CodeValidation, message, nil)
}

func NewNotFoundError(message string) *AppError {
	return NewAppError(CodeNotFound, message, nil)
}

func NewUnauthorizedError(message string) *AppError {
	return NewAppError(CodeUnauthorized, message, nil)
}

func NewForbiddenError(message string) *AppError {
	return NewAppError(CodeForbidden, message, nil)
}

// CodeOf returns the code of the first AppError in err's chain, or 0.
func CodeOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return 0
}

func IsNotFound(err error) bool      { return CodeOf(err) == CodeNotFound }
func IsAlreadyExists(err error) bool { return CodeOf(err) == CodeAlreadyExists }
func IsValidation(err error) bool    { return CodeOf(err) == CodeValidation }
func IsInternal(err error) bool      { return CodeOf(err) == CodeInternal }
func IsUnauthorized(err error) bool  { return CodeOf(err) == CodeUnauthorized }
func IsForbidden(err error) bool     { return CodeOf(err) == CodeForbidden }

// HTTPStatusCode maps err to a response status. Anything that is not an
// AppError with a known code is a 500.
func HTTPStatusCode(err error) int {
	if status, ok := statusByCode[CodeOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}
