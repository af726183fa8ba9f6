package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/timeclock-agent/internal/domain/timeclock"
	"github.com/cmlabs-hris/timeclock-agent/internal/handler/http/response"
)

type TimeclockHandler interface {
	Submit(w http.ResponseWriter, r *http.Request)
	Today(w http.ResponseWriter, r *http.Request)
	Records(w http.ResponseWriter, r *http.Request)
	Status(w http.ResponseWriter, r *http.Request)
}

type timeclockHandlerImpl struct {
	captureService timeclock.CaptureService
}

func NewTimeclockHandler(captureService timeclock.CaptureService) TimeclockHandler {
	return &timeclockHandlerImpl{
		captureService: captureService,
	}
}

// Submit implements TimeclockHandler. It runs the full capture
// pipeline for one event type and returns the recorded entry.
func (h *timeclockHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	var req timeclock.SubmitEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode submit request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	entry, err := h.captureService.SubmitEvent(r.Context(), timeclock.EventType(req.EventType))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Clock event recorded", timeclock.ClockEntryResponse{
		Time:            entry.Timestamp.Format("15:04:05"),
		ImageID:         entry.ImageID,
		ImagePath:       entry.ImagePath,
		Latitude:        entry.Latitude,
		Longitude:       entry.Longitude,
		LocationAddress: entry.Address,
	})
}

// Today implements TimeclockHandler.
func (h *timeclockHandlerImpl) Today(w http.ResponseWriter, r *http.Request) {
	record, err := h.captureService.Today(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, timeclock.MapDailyTimeRecord(record))
}

// Records implements TimeclockHandler. Range is inclusive and
// validated before the backend query.
func (h *timeclockHandlerImpl) Records(w http.ResponseWriter, r *http.Request) {
	filter := timeclock.RecordsFilter{
		StartDate: r.URL.Query().Get("start_date"),
		EndDate:   r.URL.Query().Get("end_date"),
	}
	if err := filter.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	records, err := h.captureService.Records(r.Context(), filter.Start, filter.End)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	out := make([]timeclock.DailyTimeRecordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, timeclock.MapDailyTimeRecord(rec))
	}
	response.Success(w, out)
}

// Status implements TimeclockHandler.
func (h *timeclockHandlerImpl) Status(w http.ResponseWriter, r *http.Request) {
	response.Success(w, timeclock.MapStatus(h.captureService.Status(r.Context())))
}
