package timeclock

import "errors"

// Timeclock domain errors
var (
	// Session-blocking errors: capture stays disabled until resolved.
	ErrModelsNotLoaded        = errors.New("face models are not loaded, refresh the device")
	ErrNoReferenceDescriptor  = errors.New("no registered face found, contact HR")
	ErrReferenceImageNotFound = errors.New("failed to load reference data")
	ErrNotLoggedIn            = errors.New("not logged in")

	// Per-attempt errors: the user may retry immediately.
	ErrCameraUnavailable    = errors.New("camera is unavailable")
	ErrLocationUnavailable  = errors.New("unable to acquire device location")
	ErrLocationTimeout      = errors.New("timed out acquiring device location")
	ErrOutsideAllowedRadius = errors.New("you are outside the allowed radius")
	ErrLivenessFailed       = errors.New("liveness check failed, please move your head")
	ErrNoFaceInCapture      = errors.New("no face detected in captured image")
	ErrFaceMismatch         = errors.New("face does not match registered profile")
	ErrImageSaveFailed      = errors.New("failed to save captured image")
	ErrEventSaveFailed      = errors.New("failed to record clock event")

	// Sequencing errors.
	ErrAlreadyRecorded   = errors.New("this event has already been recorded today")
	ErrOutOfSequence     = errors.New("previous clock event has not been recorded yet")
	ErrCaptureInProgress = errors.New("another capture is already in progress")
	ErrInvalidEventType  = errors.New("unknown clock event type")
)
