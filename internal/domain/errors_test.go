package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppError_ErrorAndUnwrap(t *testing.T) {
	cause := errors.New("record not found")
	tests := []struct {
		name      string
		err       *AppError
		wantText  string
		wantCause error
	}{
		{"with cause", NewAppError(CodeNotFound, "lesson not found", cause), "lesson not found: record not found", cause},
		{"without cause", NewNotFoundError("lesson not found"), "lesson not found", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantText {
				t.Errorf("Error() = %q, want %q", got, tt.wantText)
			}
			if got := tt.err.Unwrap(); got != tt.wantCause {
				t.Errorf("Unwrap() = %v, want %v", got, tt.wantCause)
			}
		})
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		code int
	}{
		{"validation", NewValidationError("bad"), CodeValidation},
		{"not found", NewNotFoundError("bad"), CodeNotFound},
		{"unauthorized", NewUnauthorizedError("bad"), CodeUnauthorized},
		{"forbidden", NewForbiddenError("bad"), CodeForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code || tt.err.Message != "bad" || tt.err.Err != nil {
				t.Errorf("got %+v, want code %d message %q and no cause", tt.err, tt.code, "bad")
			}
		})
	}
}

func TestCategoryChecks(t *testing.T) {
	checks := map[int]func(error) bool{
		CodeNotFound:      IsNotFound,
		CodeAlreadyExists: IsAlreadyExists,
		CodeValidation:    IsValidation,
		CodeInternal:      IsInternal,
		CodeUnauthorized:  IsUnauthorized,
		CodeForbidden:     IsForbidden,
	}
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"sentinel", ErrForbidden, CodeForbidden},
		{"fresh value", NewValidationError("title is required"), CodeValidation},
		{"wrapped twice", fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", ErrNotFound)), CodeNotFound},
		{"with cause", NewAppError(CodeAlreadyExists, "email taken", errors.New("unique")), CodeAlreadyExists},
		{"plain error", errors.New("boom"), 0},
		{"nil", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.code {
				t.Errorf("CodeOf() = %d, want %d", got, tt.code)
			}
			for code, is := range checks {
				if want := code == tt.code; is(tt.err) != want {
					t.Errorf("check for code %d = %v, want %v", code, !want, want)
				}
			}
		})
	}
}

func TestHTTPStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", ErrNotFound, http.StatusNotFound},
		{"already exists", ErrAlreadyExists, http.StatusConflict},
		{"validation", NewValidationError("x"), http.StatusBadRequest},
		{"internal", ErrInternal, http.StatusInternalServerError},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden", fmt.Errorf("wrap: %w", ErrForbidden), http.StatusForbidden},
		{"unknown code", &AppError{Code: 99, Message: "odd"}, http.StatusInternalServerError},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatusCode(tt.err); got != tt.want {
				t.Errorf("HTTPStatusCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
