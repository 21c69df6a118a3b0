package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"huddle/internal/core/domain"
	"huddle/pkg/validation"
)

func TestAppError_Error(t *testing.T) {
	err := New(ErrCodeValidation, "test error", http.StatusBadRequest)
	expected := "VALIDATION: test error"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := stderrors.New("original error")
	err := Wrap(cause, ErrCodeInternal, "wrapped error", http.StatusInternalServerError)

	if !stderrors.Is(err, cause) {
		t.Errorf("wrapped AppError should match its cause with errors.Is")
	}
}

func TestFromDomain_Mapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   ErrorCode
		wantStatus int
	}{
		{"channel name required", domain.ErrChannelNameRequired, ErrCodeValidation, http.StatusBadRequest},
		{"pipeline stage", domain.ErrPipelineStage, ErrCodeValidation, http.StatusBadRequest},
		{"validation sentinel", fmt.Errorf("%w: too long", validation.ErrInvalid), ErrCodeValidation, http.StatusBadRequest},
		{"channel not found", domain.ErrChannelNotFound, ErrCodeNotFound, http.StatusNotFound},
		{"blob not found", domain.ErrBlobNotFound, ErrCodeNotFound, http.StatusNotFound},
		{"decode failed", domain.ErrDecodeFailed, ErrCodeDecode, http.StatusUnprocessableEntity},
		{"upload failed", domain.ErrUploadFailed, ErrCodeUpload, http.StatusBadGateway},
		{"persistence failed", domain.ErrPersistenceFailed, ErrCodePersistence, http.StatusBadGateway},
		{"bad credentials", domain.ErrBadCredentials, ErrCodeUnauthorized, http.StatusUnauthorized},
		{"name taken", domain.ErrNameTaken, ErrCodeConflict, http.StatusConflict},
		{"deadline exceeded", context.DeadlineExceeded, ErrCodeTimeout, http.StatusGatewayTimeout},
		{"unknown error", stderrors.New("boom"), ErrCodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := FromDomain(tt.err)
			if appErr.Code != tt.wantCode {
				t.Errorf("Code = %v, want %v", appErr.Code, tt.wantCode)
			}
			if appErr.HTTPStatus != tt.wantStatus {
				t.Errorf("HTTPStatus = %v, want %v", appErr.HTTPStatus, tt.wantStatus)
			}
		})
	}
}

func TestFromDomain_WrappedSentinel(t *testing.T) {
	wrapped := fmt.Errorf("%w: append rejected", domain.ErrPersistenceFailed)
	appErr := FromDomain(wrapped)
	if appErr.Code != ErrCodePersistence {
		t.Errorf("Code = %v, want %v", appErr.Code, ErrCodePersistence)
	}
}

func TestFromDomain_PassesThroughAppError(t *testing.T) {
	original := New(ErrCodeConflict, "taken", http.StatusConflict)
	if got := FromDomain(original); got != original {
		t.Errorf("FromDomain should return the AppError unchanged")
	}
}

func TestFromDomain_TimeoutTakesPrecedence(t *testing.T) {
	err := fmt.Errorf("%w: %w", domain.ErrPersistenceFailed, context.DeadlineExceeded)
	appErr := FromDomain(err)
	if appErr.Code != ErrCodeTimeout {
		t.Errorf("Code = %v, want %v", appErr.Code, ErrCodeTimeout)
	}
}
