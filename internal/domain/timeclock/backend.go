package timeclock

import (
	"context"
	"time"
)

// TimeEventUpsert is one clock event submitted for merging into the
// day's record. Exactly one of the four time fields is populated per
// submission; the backend merges it into any existing record for the
// date and rejects duplicates authoritatively.
type TimeEventUpsert struct {
	EmployeeNumber string
	Date           time.Time
	EventType      EventType
	Timestamp      time.Time
	ImageID        *string
	ImagePath      *string
	Latitude       *float64
	Longitude      *float64
	Address        *string
}

// Backend is the remote HRIS system of record. All persistence and
// authoritative business rules live behind it; the agent only submits
// and reads.
type Backend interface {
	// NewImageID allocates a server-assigned identifier for a capture
	// still, requested before upload.
	NewImageID(ctx context.Context) (string, error)

	// SaveImage persists an encoded JPEG under the given identifier and
	// returns the server-side storage path.
	SaveImage(ctx context.Context, imageID string, imageData []byte) (string, error)

	// UpsertTimeEvent merges one clock event into the day's record.
	UpsertTimeEvent(ctx context.Context, event TimeEventUpsert) error

	// DailyTimeRecords returns records for an inclusive date range.
	DailyTimeRecords(ctx context.Context, employeeNumber string, start, end time.Time) ([]DailyTimeRecord, error)

	// BranchLocation returns the employee's branch geofence
	// configuration, or nil when the employee has no assigned branch.
	BranchLocation(ctx context.Context, employeeNumber string) (*BranchLocation, error)

	// EnrollmentImage fetches the employee's enrollment photo used to
	// build the session reference descriptor.
	EnrollmentImage(ctx context.Context, employeeNumber string) ([]byte, error)
}
