package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/timeclock-agent/internal/domain/timeclock"
	"github.com/cmlabs-hris/timeclock-agent/internal/handler/http/response"
)

type fakeCaptureService struct {
	submitEntry *timeclock.ClockEntry
	submitErr   error
	lastEvent   timeclock.EventType

	today      timeclock.DailyTimeRecord
	records    []timeclock.DailyTimeRecord
	recordsErr error
	status     timeclock.Status
}

func (f *fakeCaptureService) Start(ctx context.Context) error { return nil }

func (f *fakeCaptureService) SubmitEvent(ctx context.Context, eventType timeclock.EventType) (*timeclock.ClockEntry, error) {
	f.lastEvent = eventType
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return f.submitEntry, nil
}

func (f *fakeCaptureService) Today(ctx context.Context) (timeclock.DailyTimeRecord, error) {
	return f.today, nil
}

func (f *fakeCaptureService) Records(ctx context.Context, start, end time.Time) ([]timeclock.DailyTimeRecord, error) {
	if f.recordsErr != nil {
		return nil, f.recordsErr
	}
	return f.records, nil
}

func (f *fakeCaptureService) Status(ctx context.Context) timeclock.Status { return f.status }

func (f *fakeCaptureService) Close() error { return nil }

func decodeResponse(t *testing.T, rr *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func TestSubmit_Success(t *testing.T) {
	imageID := "img-1"
	svc := &fakeCaptureService{
		submitEntry: &timeclock.ClockEntry{
			Timestamp: time.Date(2026, 8, 29, 8, 0, 3, 0, time.Local),
			ImageID:   &imageID,
		},
	}
	handler := NewTimeclockHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/timeclock/events",
		strings.NewReader(`{"event_type":"TIME_IN"}`))
	rr := httptest.NewRecorder()
	handler.Submit(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, timeclock.TimeIn, svc.lastEvent)

	resp := decodeResponse(t, rr)
	assert.True(t, resp.Success)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "08:00:03", data["time"])
	assert.Equal(t, "img-1", data["image_id"])
}

func TestSubmit_InvalidBody(t *testing.T) {
	handler := NewTimeclockHandler(&fakeCaptureService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/timeclock/events",
		strings.NewReader(`{not json`))
	rr := httptest.NewRecorder()
	handler.Submit(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSubmit_UnknownEventType(t *testing.T) {
	handler := NewTimeclockHandler(&fakeCaptureService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/timeclock/events",
		strings.NewReader(`{"event_type":"LUNCH_IN"}`))
	rr := httptest.NewRecorder()
	handler.Submit(rr, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	resp := decodeResponse(t, rr)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
}

func TestSubmit_DomainErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"already recorded", timeclock.ErrAlreadyRecorded, http.StatusConflict},
		{"out of sequence", timeclock.ErrOutOfSequence, http.StatusConflict},
		{"capture in progress", timeclock.ErrCaptureInProgress, http.StatusConflict},
		{"outside geofence", timeclock.ErrOutsideAllowedRadius, http.StatusForbidden},
		{"face mismatch", timeclock.ErrFaceMismatch, http.StatusBadRequest},
		{"liveness failed", timeclock.ErrLivenessFailed, http.StatusBadRequest},
		{"models not loaded", timeclock.ErrModelsNotLoaded, http.StatusServiceUnavailable},
		{"event save failed", timeclock.ErrEventSaveFailed, http.StatusServiceUnavailable},
		{"not logged in", timeclock.ErrNotLoggedIn, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewTimeclockHandler(&fakeCaptureService{submitErr: tt.err})

			req := httptest.NewRequest(http.MethodPost, "/api/v1/timeclock/events",
				strings.NewReader(`{"event_type":"TIME_IN"}`))
			rr := httptest.NewRecorder()
			handler.Submit(rr, req)

			assert.Equal(t, tt.wantCode, rr.Code)
			resp := decodeResponse(t, rr)
			assert.False(t, resp.Success)
		})
	}
}

func TestToday(t *testing.T) {
	svc := &fakeCaptureService{
		today: timeclock.DailyTimeRecord{
			EmployeeNumber: "100234",
			Date:           time.Date(2026, 8, 29, 0, 0, 0, 0, time.Local),
			TimeIn:         &timeclock.ClockEntry{Timestamp: time.Date(2026, 8, 29, 8, 0, 0, 0, time.Local)},
		},
	}
	handler := NewTimeclockHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/timeclock/today", nil)
	rr := httptest.NewRecorder()
	handler.Today(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	resp := decodeResponse(t, rr)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "2026-08-29", data["date"])
	assert.NotNil(t, data["time_in"])
	assert.Nil(t, data["time_out"])
}

func TestRecords_ValidatesDateRange(t *testing.T) {
	handler := NewTimeclockHandler(&fakeCaptureService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/timeclock/records?start_date=bogus&end_date=2026-08-29", nil)
	rr := httptest.NewRecorder()
	handler.Records(rr, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestRecords_Success(t *testing.T) {
	svc := &fakeCaptureService{
		records: []timeclock.DailyTimeRecord{
			{EmployeeNumber: "100234", Date: time.Date(2026, 8, 28, 0, 0, 0, 0, time.Local)},
			{EmployeeNumber: "100234", Date: time.Date(2026, 8, 29, 0, 0, 0, 0, time.Local)},
		},
	}
	handler := NewTimeclockHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/timeclock/records?start_date=2026-08-28&end_date=2026-08-29", nil)
	rr := httptest.NewRecorder()
	handler.Records(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	resp := decodeResponse(t, rr)
	data, ok := resp.Data.([]interface{})
	require.True(t, ok)
	assert.Len(t, data, 2)
}

func TestStatus(t *testing.T) {
	svc := &fakeCaptureService{
		status: timeclock.Status{
			EmployeeNumber:  "100234",
			ModelsReady:     true,
			ReferenceLoaded: true,
			Phase:           timeclock.PhaseIdle,
			Branch:          timeclock.BranchLocation{BranchName: "Makati Branch", GeofenceEnabled: true},
			Enabled: map[timeclock.EventType]bool{
				timeclock.TimeIn: true, timeclock.BreakIn: false,
				timeclock.BreakOut: false, timeclock.TimeOut: false,
			},
		},
	}
	handler := NewTimeclockHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/timeclock/status", nil)
	rr := httptest.NewRecorder()
	handler.Status(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	resp := decodeResponse(t, rr)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, data["models_ready"])
	assert.Equal(t, "IDLE", data["phase"])
	assert.Equal(t, "Makati Branch", data["branch_name"])

	enabled, ok := data["enabled"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, enabled["TIME_IN"])
	assert.Equal(t, false, enabled["TIME_OUT"])
}
