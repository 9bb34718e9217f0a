package errors

import (
	"context"
	"errors"
	"net/http"

	"github.com/bidhub/console-go/internal/engine"
)

// MapAPIError maps settled request errors to AppError instances. It handles
// the common outcomes of a request/response exchange:
//   - 401/403 settlements → Unauthorized
//   - 404 → NotFound
//   - 409 → Conflict
//   - 400/422 → Validation
//   - 5xx → Internal
//   - context timeouts/cancellations → Timeout/Canceled
//   - any other transport failure → Unavailable
//
// A nil error maps to nil; an error that is already an AppError passes
// through unchanged.
func MapAPIError(err error) error {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &AppError{Code: ErrCodeTimeout, Message: "request timed out", Cause: err}
	}
	if errors.Is(err, context.Canceled) {
		return &AppError{Code: ErrCodeCanceled, Message: "request canceled", Cause: err}
	}

	var statusErr *engine.StatusError
	if !errors.As(err, &statusErr) {
		return &AppError{Code: ErrCodeUnavailable, Message: "remote API unreachable", Cause: err}
	}

	switch statusErr.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &AppError{Code: ErrCodeUnauthorized, Message: "not authorized", Cause: err}
	case http.StatusNotFound:
		return &AppError{Code: ErrCodeNotFound, Message: "not found", Cause: err}
	case http.StatusConflict:
		return &AppError{Code: ErrCodeConflict, Message: "conflict with existing data", Cause: err}
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return &AppError{Code: ErrCodeValidation, Message: "request rejected as invalid", Cause: err}
	default:
		if statusErr.StatusCode >= http.StatusInternalServerError {
			return &AppError{Code: ErrCodeInternal, Message: "remote API failure", Cause: err}
		}
		return &AppError{Code: ErrCodeInternal, Message: "unexpected response status", Cause: err}
	}
}
