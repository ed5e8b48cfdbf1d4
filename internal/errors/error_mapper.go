package errors

import (
	stderrors "errors"
	"net/http"
)

// MapError converts a technical error into a user-friendly AppError.
func MapError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}

	technicalMessage := err.Error()

	var validationErr *ValidationError
	switch {
	case stderrors.As(err, &validationErr):
		return NewAppError(technicalMessage, validationErr.Error(), ErrCodeValidation, http.StatusBadRequest, err)
	case stderrors.Is(err, ErrNotFound):
		return NewAppError(technicalMessage, MsgPropertyNotFound, ErrCodePropertyNotFound, http.StatusNotFound, err)
	case stderrors.Is(err, ErrNoContent):
		return NewAppError(technicalMessage, MsgNoContent, ErrCodeNoContent, http.StatusNoContent, err)
	case stderrors.Is(err, ErrRateLimited):
		return NewAppError(technicalMessage, MsgRateLimited, ErrCodeRateLimited, http.StatusTooManyRequests, err)
	case stderrors.Is(err, ErrUnauthorized):
		return NewAppError(technicalMessage, MsgUnauthorized, ErrCodeUnauthorized, http.StatusUnauthorized, err)
	default:
		// StorageError and anything unexpected stay opaque to the caller.
		return NewAppError(technicalMessage, MsgInternalError, ErrCodeInternal, http.StatusInternalServerError, err)
	}
}
