package api

import (
	"errors"
	"net/http"

	"github.com/quizmith/adapt-api/internal/domain"
	"github.com/quizmith/adapt-api/internal/domain/cat"
	"github.com/quizmith/adapt-api/internal/service/assessment"
	"github.com/quizmith/adapt-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, store.ErrSessionNotFound),
		errors.Is(err, store.ErrQuestionNotFound):
		return http.StatusNotFound

	// Conflict errors: terminal sessions and lost concurrency races. The
	// caller may retry with freshly loaded state.
	case errors.Is(err, assessment.ErrSessionNotActive),
		errors.Is(err, assessment.ErrConcurrentModification),
		errors.Is(err, assessment.ErrProfileNotReady):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, assessment.ErrInvalidAnswer),
		errors.Is(err, assessment.ErrUnexpectedQuestion),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Configuration-level failures: an empty band pool or corrupt session
	// state cannot be fixed by the caller.
	case errors.Is(err, cat.ErrPoolExhausted),
		errors.Is(err, assessment.ErrCorruptSession):
		return http.StatusInternalServerError

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, store.ErrSessionNotFound):
		return "Assessment session not found"

	case errors.Is(err, store.ErrQuestionNotFound):
		return "Question not found"

	case errors.Is(err, assessment.ErrSessionNotActive):
		return "Assessment session is no longer active"

	case errors.Is(err, assessment.ErrConcurrentModification):
		return "Assessment session was modified concurrently; reload and retry"

	case errors.Is(err, assessment.ErrProfileNotReady):
		return "Profile is only available once the assessment completes"

	case errors.Is(err, assessment.ErrUnexpectedQuestion):
		return "Answer does not match the pending question"

	case errors.Is(err, assessment.ErrInvalidAnswer):
		return "Invalid answer payload"

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request data"

	case errors.Is(err, cat.ErrPoolExhausted):
		return "No questions are configured for the requested subject"

	case errors.Is(err, assessment.ErrCorruptSession):
		return "Assessment session state is invalid"

	default:
		return "An unexpected error occurred"
	}
}
