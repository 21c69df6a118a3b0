package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"

	"huddle/internal/core/domain"
	"huddle/pkg/validation"
)

// ErrorCode represents application error codes
type ErrorCode string

const (
	ErrCodeValidation   ErrorCode = "VALIDATION"
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeDecode       ErrorCode = "DECODE"
	ErrCodeUpload       ErrorCode = "UPLOAD"
	ErrCodePersistence  ErrorCode = "PERSISTENCE"
	ErrCodeTimeout      ErrorCode = "TIMEOUT"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
)

// AppError carries an error code and the HTTP status the facade should
// answer with.
type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus}
}

func Wrap(err error, code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus, Cause: err}
}

// FromDomain maps core sentinel errors onto the HTTP-facing taxonomy.
// Timeouts take precedence: a remote write that ran out of time reports
// TIMEOUT, not the failure kind of the operation that issued it.
func FromDomain(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}

	if stderrors.Is(err, context.DeadlineExceeded) {
		return Wrap(err, ErrCodeTimeout, "remote operation timed out", http.StatusGatewayTimeout)
	}

	switch {
	case stderrors.Is(err, domain.ErrChannelNameRequired),
		stderrors.Is(err, domain.ErrChannelDetailsRequired),
		stderrors.Is(err, domain.ErrPipelineStage),
		stderrors.Is(err, validation.ErrInvalid):
		return Wrap(err, ErrCodeValidation, err.Error(), http.StatusBadRequest)
	case stderrors.Is(err, domain.ErrChannelNotFound),
		stderrors.Is(err, domain.ErrIdentityNotFound),
		stderrors.Is(err, domain.ErrRecordNotFound),
		stderrors.Is(err, domain.ErrBlobNotFound):
		return Wrap(err, ErrCodeNotFound, err.Error(), http.StatusNotFound)
	case stderrors.Is(err, domain.ErrDecodeFailed):
		return Wrap(err, ErrCodeDecode, err.Error(), http.StatusUnprocessableEntity)
	case stderrors.Is(err, domain.ErrUploadFailed):
		return Wrap(err, ErrCodeUpload, err.Error(), http.StatusBadGateway)
	case stderrors.Is(err, domain.ErrPersistenceFailed):
		return Wrap(err, ErrCodePersistence, err.Error(), http.StatusBadGateway)
	case stderrors.Is(err, domain.ErrBadCredentials):
		return Wrap(err, ErrCodeUnauthorized, err.Error(), http.StatusUnauthorized)
	case stderrors.Is(err, domain.ErrNameTaken):
		return Wrap(err, ErrCodeConflict, err.Error(), http.StatusConflict)
	default:
		return Wrap(err, ErrCodeInternal, "internal error", http.StatusInternalServerError)
	}
}
