package timeclock

import (
	"time"

	"github.com/cmlabs-hris/timeclock-agent/internal/pkg/validator"
)

// ========================================
// TIMECLOCK DTOs
// ========================================

type SubmitEventRequest struct {
	EventType string `json:"event_type"`
}

func (r *SubmitEventRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EventType) {
		errs = append(errs, validator.ValidationError{
			Field:   "event_type",
			Message: "event_type is required",
		})
	} else if !EventType(r.EventType).Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "event_type",
			Message: "event_type must be one of TIME_IN, BREAK_IN, BREAK_OUT, TIME_OUT",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RecordsFilter struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`

	Start time.Time `json:"-"`
	End   time.Time `json:"-"`
}

func (f *RecordsFilter) Validate() error {
	var errs validator.ValidationErrors

	start, ok := validator.IsValidDate(f.StartDate)
	if !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be a valid date (YYYY-MM-DD)",
		})
	}

	end, ok := validator.IsValidDate(f.EndDate)
	if !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be a valid date (YYYY-MM-DD)",
		})
	}

	if len(errs) == 0 && end.Before(start) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must not be before start_date",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	f.Start, f.End = start, end
	return nil
}

type ClockEntryResponse struct {
	Time            string   `json:"time"`
	ImageID         *string  `json:"image_id,omitempty"`
	ImagePath       *string  `json:"image_path,omitempty"`
	Latitude        *float64 `json:"latitude,omitempty"`
	Longitude       *float64 `json:"longitude,omitempty"`
	LocationAddress *string  `json:"location_address,omitempty"`
}

type DailyTimeRecordResponse struct {
	EmployeeNumber string              `json:"employee_number"`
	Date           string              `json:"date"`
	TimeIn         *ClockEntryResponse `json:"time_in,omitempty"`
	BreakIn        *ClockEntryResponse `json:"break_in,omitempty"`
	BreakOut       *ClockEntryResponse `json:"break_out,omitempty"`
	TimeOut        *ClockEntryResponse `json:"time_out,omitempty"`
}

type StatusResponse struct {
	EmployeeNumber  string                  `json:"employee_number"`
	ModelsReady     bool                    `json:"models_ready"`
	ReferenceLoaded bool                    `json:"reference_loaded"`
	Phase           Phase                   `json:"phase"`
	BranchName      string                  `json:"branch_name"`
	BranchAddress   string                  `json:"branch_address"`
	GeofenceEnabled bool                    `json:"geofence_enabled"`
	Today           DailyTimeRecordResponse `json:"today"`
	Enabled         map[EventType]bool      `json:"enabled"`
	LastError       string                  `json:"last_error,omitempty"`
}

func mapClockEntry(e *ClockEntry) *ClockEntryResponse {
	if e == nil {
		return nil
	}
	return &ClockEntryResponse{
		Time:            e.Timestamp.Format("15:04:05"),
		ImageID:         e.ImageID,
		ImagePath:       e.ImagePath,
		Latitude:        e.Latitude,
		Longitude:       e.Longitude,
		LocationAddress: e.Address,
	}
}

// MapDailyTimeRecord converts a record entity to its response shape.
func MapDailyTimeRecord(r DailyTimeRecord) DailyTimeRecordResponse {
	return DailyTimeRecordResponse{
		EmployeeNumber: r.EmployeeNumber,
		Date:           r.Date.Format("2006-01-02"),
		TimeIn:         mapClockEntry(r.TimeIn),
		BreakIn:        mapClockEntry(r.BreakIn),
		BreakOut:       mapClockEntry(r.BreakOut),
		TimeOut:        mapClockEntry(r.TimeOut),
	}
}

// MapStatus converts an engine status snapshot to its response shape.
func MapStatus(s Status) StatusResponse {
	return StatusResponse{
		EmployeeNumber:  s.EmployeeNumber,
		ModelsReady:     s.ModelsReady,
		ReferenceLoaded: s.ReferenceLoaded,
		Phase:           s.Phase,
		BranchName:      s.Branch.BranchName,
		BranchAddress:   s.Branch.Address,
		GeofenceEnabled: s.Branch.GeofenceEnabled,
		Today:           MapDailyTimeRecord(s.Today),
		Enabled:         s.Enabled,
		LastError:       s.LastError,
	}
}
