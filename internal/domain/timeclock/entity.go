package timeclock

import (
	"time"
)

// EventType identifies one of the four clock events an employee can
// record per working day.
type EventType string

const (
	TimeIn   EventType = "TIME_IN"
	BreakIn  EventType = "BREAK_IN"
	BreakOut EventType = "BREAK_OUT"
	TimeOut  EventType = "TIME_OUT"
)

// EventOrder is the chronological order events must be recorded in.
var EventOrder = []EventType{TimeIn, BreakIn, BreakOut, TimeOut}

// Valid reports whether t is one of the four known event types.
func (t EventType) Valid() bool {
	switch t {
	case TimeIn, BreakIn, BreakOut, TimeOut:
		return true
	}
	return false
}

// Predecessor returns the event type that must already be recorded
// before t may be submitted. TimeIn has no predecessor.
func (t EventType) Predecessor() (EventType, bool) {
	for i, et := range EventOrder {
		if et == t && i > 0 {
			return EventOrder[i-1], true
		}
	}
	return "", false
}

// Session is the employee identity supplied by the portal session.
// Immutable for the lifetime of a capture session.
type Session struct {
	EmployeeNumber string
	Approver       bool
}

// ClockEntry is one recorded clock event within a day's record.
type ClockEntry struct {
	Timestamp time.Time
	ImageID   *string
	ImagePath *string
	Latitude  *float64
	Longitude *float64
	Address   *string
}

// DailyTimeRecord holds one employee's clock events for one calendar
// date. The backend owns the authoritative copy; the agent keeps a
// read-through cache refreshed after each successful submission.
type DailyTimeRecord struct {
	EmployeeNumber string
	Date           time.Time
	TimeIn         *ClockEntry
	BreakIn        *ClockEntry
	BreakOut       *ClockEntry
	TimeOut        *ClockEntry
}

// Entry returns the record's entry for the given event type, nil when
// it has not been recorded yet.
func (r *DailyTimeRecord) Entry(t EventType) *ClockEntry {
	switch t {
	case TimeIn:
		return r.TimeIn
	case BreakIn:
		return r.BreakIn
	case BreakOut:
		return r.BreakOut
	case TimeOut:
		return r.TimeOut
	}
	return nil
}

// SetEntry stores the entry for the given event type. Existing entries
// are never overwritten; the first write wins.
func (r *DailyTimeRecord) SetEntry(t EventType, e *ClockEntry) {
	switch t {
	case TimeIn:
		if r.TimeIn == nil {
			r.TimeIn = e
		}
	case BreakIn:
		if r.BreakIn == nil {
			r.BreakIn = e
		}
	case BreakOut:
		if r.BreakOut == nil {
			r.BreakOut = e
		}
	case TimeOut:
		if r.TimeOut == nil {
			r.TimeOut = e
		}
	}
}

// Has reports whether the event type has been recorded for this date.
func (r *DailyTimeRecord) Has(t EventType) bool {
	return r.Entry(t) != nil
}

// CanSubmit reports whether the event type is currently submittable:
// its chronological predecessor is recorded and the event itself is
// not. This enablement is advisory; the backend enforces it
// authoritatively.
func (r *DailyTimeRecord) CanSubmit(t EventType) bool {
	if !t.Valid() || r.Has(t) {
		return false
	}
	if pred, ok := t.Predecessor(); ok && !r.Has(pred) {
		return false
	}
	return true
}

// BranchLocation is the per-branch geofence configuration assigned to
// an employee. AllowedRadiusMeters must be positive whenever
// GeofenceEnabled is true.
type BranchLocation struct {
	BranchName          string
	Address             string
	Latitude            float64
	Longitude           float64
	AllowedRadiusMeters float64
	GeofenceEnabled     bool
}

// CaptureAttempt is the transient state of one submission attempt. It
// is created when an event button is pressed and discarded after the
// attempt succeeds or fails; attempts are never retried automatically.
type CaptureAttempt struct {
	ID             string
	EventType      EventType
	StartedAt      time.Time
	LivenessPassed bool
	MatchDistance  float64
	Verified       bool
}
