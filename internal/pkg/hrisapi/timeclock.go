package hrisapi

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cmlabs-hris/timeclock-agent/internal/domain/timeclock"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05"
)

type newImageIDResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

type saveImageRequest struct {
	ImageID   string `json:"imageId"`
	ImageData string `json:"imageData"`
}

type saveImageResponse struct {
	Success bool   `json:"success"`
	Path    string `json:"path"`
}

type wireClockEntry struct {
	Time            *string  `json:"time,omitempty"`
	ImageID         *string  `json:"imageId,omitempty"`
	ImagePath       *string  `json:"imagePath,omitempty"`
	Latitude        *float64 `json:"latitude,omitempty"`
	Longitude       *float64 `json:"longitude,omitempty"`
	LocationAddress *string  `json:"locationAddress,omitempty"`
}

type wireEventDetail struct {
	Date            string   `json:"date"`
	TimeIn          *string  `json:"timeIn,omitempty"`
	BreakIn         *string  `json:"breakIn,omitempty"`
	BreakOut        *string  `json:"breakOut,omitempty"`
	TimeOut         *string  `json:"timeOut,omitempty"`
	ImageID         *string  `json:"imageId,omitempty"`
	ImagePath       *string  `json:"imagePath,omitempty"`
	Latitude        *float64 `json:"latitude,omitempty"`
	Longitude       *float64 `json:"longitude,omitempty"`
	LocationAddress *string  `json:"locationAddress,omitempty"`
}

type wireEventUpsert struct {
	EmployeeNumber string          `json:"empNo"`
	Detail         wireEventDetail `json:"detail"`
}

type upsertResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type wireDailyRecord struct {
	EmployeeNumber string          `json:"empNo"`
	Date           string          `json:"date"`
	TimeIn         *wireClockEntry `json:"timeIn,omitempty"`
	BreakIn        *wireClockEntry `json:"breakIn,omitempty"`
	BreakOut       *wireClockEntry `json:"breakOut,omitempty"`
	TimeOut        *wireClockEntry `json:"timeOut,omitempty"`
}

type recordsResponse struct {
	Success bool              `json:"success"`
	Records []wireDailyRecord `json:"records"`
}

type wireBranch struct {
	Address       string  `json:"address"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	AllowedRadius float64 `json:"allowedRadius"`
	Geofence      bool    `json:"geofence"`
	BranchName    string  `json:"branchname"`
}

type branchResponse struct {
	Success bool         `json:"success"`
	Records []wireBranch `json:"records"`
}

// NewImageID implements timeclock.Backend.
func (c *Client) NewImageID(ctx context.Context) (string, error) {
	var resp newImageIDResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/images/new-id", nil, &resp); err != nil {
		return "", err
	}
	if !resp.Success || resp.ID == "" {
		return "", fmt.Errorf("backend refused to allocate an image id")
	}
	return resp.ID, nil
}

// SaveImage implements timeclock.Backend. The still is uploaded as a
// base64 data URL, the format the portal's image store expects.
func (c *Client) SaveImage(ctx context.Context, imageID string, imageData []byte) (string, error) {
	req := saveImageRequest{
		ImageID:   imageID,
		ImageData: "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(imageData),
	}
	var resp saveImageResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/images", req, &resp); err != nil {
		return "", err
	}
	if !resp.Success {
		return "", fmt.Errorf("backend refused to save image %s", imageID)
	}
	return resp.Path, nil
}

// UpsertTimeEvent implements timeclock.Backend. Exactly one time field
// is populated; the backend merges it into the day's existing record
// and rejects duplicates.
func (c *Client) UpsertTimeEvent(ctx context.Context, event timeclock.TimeEventUpsert) error {
	clock := event.Timestamp.Format(timeLayout)
	detail := wireEventDetail{
		Date:            event.Date.Format(dateLayout),
		ImageID:         event.ImageID,
		ImagePath:       event.ImagePath,
		Latitude:        event.Latitude,
		Longitude:       event.Longitude,
		LocationAddress: event.Address,
	}

	switch event.EventType {
	case timeclock.TimeIn:
		detail.TimeIn = &clock
	case timeclock.BreakIn:
		detail.BreakIn = &clock
	case timeclock.BreakOut:
		detail.BreakOut = &clock
	case timeclock.TimeOut:
		detail.TimeOut = &clock
	default:
		return timeclock.ErrInvalidEventType
	}

	payload := []wireEventUpsert{{EmployeeNumber: event.EmployeeNumber, Detail: detail}}

	var resp upsertResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/dtr/events", payload, &resp); err != nil {
		return err
	}
	if resp.Status != "success" {
		return fmt.Errorf("backend rejected clock event: %s", resp.Message)
	}
	return nil
}

// DailyTimeRecords implements timeclock.Backend.
func (c *Client) DailyTimeRecords(ctx context.Context, employeeNumber string, start, end time.Time) ([]timeclock.DailyTimeRecord, error) {
	q := url.Values{}
	q.Set("empNo", employeeNumber)
	q.Set("startDate", start.Format(dateLayout))
	q.Set("endDate", end.Format(dateLayout))

	var resp recordsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/dtr?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("backend failed to list daily time records")
	}

	records := make([]timeclock.DailyTimeRecord, 0, len(resp.Records))
	for _, wr := range resp.Records {
		rec, err := wr.toDomain()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// BranchLocation implements timeclock.Backend. A success response with
// no records means the employee has no assigned branch; callers fall
// back to the default location.
func (c *Client) BranchLocation(ctx context.Context, employeeNumber string) (*timeclock.BranchLocation, error) {
	path := "/api/v1/employees/" + url.PathEscape(employeeNumber) + "/branch-location"

	var resp branchResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	if !resp.Success || len(resp.Records) == 0 {
		return nil, nil
	}

	b := resp.Records[0]
	return &timeclock.BranchLocation{
		BranchName:          b.BranchName,
		Address:             b.Address,
		Latitude:            b.Latitude,
		Longitude:           b.Longitude,
		AllowedRadiusMeters: b.AllowedRadius,
		GeofenceEnabled:     b.Geofence,
	}, nil
}

// EnrollmentImage implements timeclock.Backend. The photo lives on the
// static image host addressed deterministically by employee number.
func (c *Client) EnrollmentImage(ctx context.Context, employeeNumber string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf(c.enrollmentURL, url.PathEscape(employeeNumber)), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build enrollment image request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("enrollment image request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: "enrollment image not found"}
	}
	return io.ReadAll(resp.Body)
}

func (wr wireDailyRecord) toDomain() (timeclock.DailyTimeRecord, error) {
	date, err := time.ParseInLocation(dateLayout, wr.Date, time.Local)
	if err != nil {
		return timeclock.DailyTimeRecord{}, fmt.Errorf("invalid record date %q: %w", wr.Date, err)
	}

	rec := timeclock.DailyTimeRecord{EmployeeNumber: wr.EmployeeNumber, Date: date}
	entries := []struct {
		eventType timeclock.EventType
		wire      *wireClockEntry
	}{
		{timeclock.TimeIn, wr.TimeIn},
		{timeclock.BreakIn, wr.BreakIn},
		{timeclock.BreakOut, wr.BreakOut},
		{timeclock.TimeOut, wr.TimeOut},
	}
	for _, e := range entries {
		entry, err := e.wire.toDomain(date)
		if err != nil {
			return timeclock.DailyTimeRecord{}, err
		}
		if entry != nil {
			rec.SetEntry(e.eventType, entry)
		}
	}
	return rec, nil
}

func (we *wireClockEntry) toDomain(date time.Time) (*timeclock.ClockEntry, error) {
	if we == nil || we.Time == nil {
		return nil, nil
	}
	clock, err := time.ParseInLocation(timeLayout, *we.Time, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid clock time %q: %w", *we.Time, err)
	}
	ts := time.Date(date.Year(), date.Month(), date.Day(),
		clock.Hour(), clock.Minute(), clock.Second(), 0, time.Local)

	return &timeclock.ClockEntry{
		Timestamp: ts,
		ImageID:   we.ImageID,
		ImagePath: we.ImagePath,
		Latitude:  we.Latitude,
		Longitude: we.Longitude,
		Address:   we.LocationAddress,
	}, nil
}
