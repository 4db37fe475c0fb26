package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDomainError(t *testing.T) {
	baseErr := errors.New("base error")
	domainErr := NewDomainError(ErrorTypeNotFound, "resource not found", baseErr)

	assert.Equal(t, ErrorTypeNotFound, domainErr.Type)
	assert.Equal(t, "resource not found", domainErr.Message)
	assert.Equal(t, baseErr, domainErr.Err)
	assert.NotNil(t, domainErr.Details)
}

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *DomainError
		wantMsg string
	}{
		{
			name: "error with wrapped error",
			err: &DomainError{
				Type:    ErrorTypeNotFound,
				Message: "user not found",
				Err:     errors.New("db error"),
			},
			wantMsg: "not_found: user not found (db error)",
		},
		{
			name: "error without wrapped error",
			err: &DomainError{
				Type:    ErrorTypeValidation,
				Message: "invalid input",
				Err:     nil,
			},
			wantMsg: "validation: invalid input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.err.Error())
		})
	}
}

func TestDomainError_Unwrap(t *testing.T) {
	baseErr := errors.New("base error")
	domainErr := NewDomainError(ErrorTypeInternal, "internal error", baseErr)

	unwrapped := errors.Unwrap(domainErr)
	assert.Equal(t, baseErr, unwrapped)
}

func TestDomainError_Is(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{
			name:   "same error type",
			err:    NewDomainError(ErrorTypeNotFound, "not found", nil),
			target: ErrCompanyNotFound,
			want:   true,
		},
		{
			name:   "different error type",
			err:    NewDomainError(ErrorTypeValidation, "validation", nil),
			target: ErrCompanyNotFound,
			want:   false,
		},
		{
			name:   "non-domain target",
			err:    NewDomainError(ErrorTypeNotFound, "not found", nil),
			target: errors.New("plain"),
			want:   false,
		},
		{
			name:   "wrapped domain error",
			err:    fmt.Errorf("context: %w", ErrInvalidRefreshToken),
			target: ErrUnauthorized,
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.Is(tt.err, tt.target))
		})
	}
}

func TestDomainError_WithDetail(t *testing.T) {
	err := NewDomainError(ErrorTypeValidation, "invalid input", nil).
		WithDetail("field", "companyId")

	assert.Equal(t, "companyId", err.Details["field"])
}

func TestErrorTypeCheckers(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
		want  bool
	}{
		{"not found", ErrUserNotFound, IsNotFoundError, true},
		{"validation", ErrInvalidInput, IsValidationError, true},
		{"unauthorized", ErrInvalidRefreshToken, IsUnauthorizedError, true},
		{"forbidden", ErrNotParentCompany, IsForbiddenError, true},
		{"conflict", ErrConcurrentUpdate, IsConflictError, true},
		{"internal", ErrDatabaseError, IsInternalError, true},
		{"unavailable", ErrUnavailable, IsUnavailableError, true},
		{"wrapped", fmt.Errorf("ctx: %w", ErrUserNotFound), IsNotFoundError, true},
		{"wrong type", ErrUserNotFound, IsForbiddenError, false},
		{"plain error", errors.New("plain"), IsNotFoundError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.check(tt.err))
		})
	}
}

func TestGetErrorMessage(t *testing.T) {
	assert.Equal(t, "Invalid or expired refresh token", GetErrorMessage(ErrInvalidRefreshToken))
	assert.Equal(t, "You can only switch to companies where your company is the parent", GetErrorMessage(ErrNotParentCompany))

	// Wrapped causes never leak into the client-facing message
	wrapped := NewDomainError(ErrorTypeUnauthorized, ErrInvalidRefreshToken.Message, errors.New("pq: connection refused"))
	assert.Equal(t, "Invalid or expired refresh token", GetErrorMessage(wrapped))

	assert.Equal(t, "", GetErrorMessage(errors.New("plain")))
}

func TestGetErrorType(t *testing.T) {
	assert.Equal(t, ErrorTypeForbidden, GetErrorType(ErrRoleNotAllowed))
	assert.Equal(t, ErrorType(""), GetErrorType(errors.New("plain")))
}

func TestWrapInternal(t *testing.T) {
	baseErr := errors.New("db down")
	err := WrapInternal("failed to list companies", baseErr)

	assert.True(t, IsInternalError(err))
	assert.True(t, errors.Is(err, baseErr))
}
