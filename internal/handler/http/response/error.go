package response

import (
	"errors"
	"net/http"

	"github.com/cmlabs-hris/timeclock-agent/internal/domain/timeclock"
	"github.com/cmlabs-hris/timeclock-agent/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses. Every pipeline
// failure surfaces with its specific cause; nothing collapses into a
// generic message except genuinely unexpected errors.
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Session-blocking errors
	case errors.Is(err, timeclock.ErrNotLoggedIn):
		Unauthorized(w, err.Error())
	case errors.Is(err, timeclock.ErrModelsNotLoaded),
		errors.Is(err, timeclock.ErrNoReferenceDescriptor),
		errors.Is(err, timeclock.ErrReferenceImageNotFound):
		ServiceUnavailable(w, err.Error())

	// Sequencing conflicts
	case errors.Is(err, timeclock.ErrAlreadyRecorded),
		errors.Is(err, timeclock.ErrOutOfSequence),
		errors.Is(err, timeclock.ErrCaptureInProgress):
		Conflict(w, err.Error())

	case errors.Is(err, timeclock.ErrInvalidEventType):
		BadRequest(w, err.Error(), nil)

	// Policy violation: the message carries both addresses.
	case errors.Is(err, timeclock.ErrOutsideAllowedRadius):
		Forbidden(w, err.Error())

	// Per-attempt capture failures: retryable by the user.
	case errors.Is(err, timeclock.ErrCameraUnavailable),
		errors.Is(err, timeclock.ErrLocationUnavailable),
		errors.Is(err, timeclock.ErrLocationTimeout),
		errors.Is(err, timeclock.ErrLivenessFailed),
		errors.Is(err, timeclock.ErrNoFaceInCapture),
		errors.Is(err, timeclock.ErrFaceMismatch):
		BadRequest(w, err.Error(), nil)

	case errors.Is(err, timeclock.ErrImageSaveFailed),
		errors.Is(err, timeclock.ErrEventSaveFailed):
		ServiceUnavailable(w, err.Error())

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
