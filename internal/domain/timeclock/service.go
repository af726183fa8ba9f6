package timeclock

import (
	"context"
	"time"
)

// Phase is the coordinator's position in one submission attempt. The
// engine is re-entrant only while Idle.
type Phase string

const (
	PhaseIdle          Phase = "IDLE"
	PhaseLocationCheck Phase = "LOCATION_CHECK"
	PhaseCapturing     Phase = "CAPTURING"
	PhaseVerifying     Phase = "VERIFYING"
	PhasePersisting    Phase = "PERSISTING"
)

// Status is a snapshot of the engine's session state, served to the
// kiosk UI so it can render readiness and button enablement.
type Status struct {
	EmployeeNumber  string
	ModelsReady     bool
	ReferenceLoaded bool
	Phase           Phase
	Branch          BranchLocation
	Today           DailyTimeRecord
	Enabled         map[EventType]bool
	LastError       string
}

// CaptureService is the biometric attendance capture engine: it
// produces at most one verified, geofenced, face-matched clock entry
// per event type per day.
type CaptureService interface {
	// Start loads the face models, caches the reference descriptor for
	// the session employee, fetches the branch geofence configuration
	// and today's record. It must be called once before SubmitEvent.
	Start(ctx context.Context) error

	// SubmitEvent runs the full capture pipeline for one event type:
	// geofence validation, countdown, liveness check, face match,
	// image upload, then event persistence. Any failure aborts the
	// attempt without partial state; a second call while an attempt is
	// in flight fails with ErrCaptureInProgress.
	SubmitEvent(ctx context.Context, eventType EventType) (*ClockEntry, error)

	// Today returns the cached record for the current date.
	Today(ctx context.Context) (DailyTimeRecord, error)

	// Records returns the employee's records for an inclusive date range.
	Records(ctx context.Context, start, end time.Time) ([]DailyTimeRecord, error)

	// Status reports engine readiness, phase and button enablement.
	Status(ctx context.Context) Status

	// Close releases the camera and any other held hardware resources.
	// Safe to call when Start failed part-way.
	Close() error
}
