// Package capture implements the biometric attendance capture engine:
// it sequences geofence validation, liveness checking, face matching
// and backend persistence into one verified clock event per event type
// per day.
package capture

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cmlabs-hris/timeclock-agent/internal/domain/timeclock"
	"github.com/cmlabs-hris/timeclock-agent/internal/pkg/cache"
	"github.com/cmlabs-hris/timeclock-agent/internal/pkg/camera"
	"github.com/cmlabs-hris/timeclock-agent/internal/pkg/facerec"
	"github.com/cmlabs-hris/timeclock-agent/internal/pkg/geocode"
	"github.com/cmlabs-hris/timeclock-agent/internal/pkg/geoloc"
	"github.com/cmlabs-hris/timeclock-agent/internal/pkg/storage"
)

// Config carries the tunables of the capture pipeline. Flags are
// explicit construction-time configuration, not ambient globals, so
// tests can vary them per case.
type Config struct {
	// LocationRequired enables the geolocation phase.
	LocationRequired bool

	// ImageCaptureRequired enables the camera/liveness/match phases.
	ImageCaptureRequired bool

	// MatchThreshold is the maximum accepted descriptor distance.
	// Distances strictly below the threshold match. 0.6 is the dlib
	// reference operating point; lower it for stricter matching once
	// validation data supports it.
	MatchThreshold float64

	// CountdownSeconds is the UI countdown before sampling begins.
	CountdownSeconds int

	// LivenessDelay separates the two liveness samples.
	LivenessDelay time.Duration

	// LivenessMinMotion is the minimum mean landmark displacement, in
	// pixels, between the two samples.
	LivenessMinMotion float64

	// LocationTimeout bounds position acquisition.
	LocationTimeout time.Duration

	// OnCountdown, when set, receives each remaining second of the
	// capture countdown, ending with 0.
	OnCountdown func(remaining int)

	// OnPhase, when set, receives every phase transition.
	OnPhase func(phase timeclock.Phase)
}

func (c Config) withDefaults() Config {
	if c.MatchThreshold <= 0 {
		c.MatchThreshold = 0.6
	}
	if c.CountdownSeconds < 0 {
		c.CountdownSeconds = 0
	}
	if c.LivenessDelay <= 0 {
		c.LivenessDelay = 300 * time.Millisecond
	}
	if c.LivenessMinMotion <= 0 {
		c.LivenessMinMotion = 2.0
	}
	if c.LocationTimeout <= 0 {
		c.LocationTimeout = 8 * time.Second
	}
	return c
}

// DefaultBranch is used when the backend has no branch record for the
// employee.
var DefaultBranch = timeclock.BranchLocation{
	BranchName:          "Head Office",
	Address:             "Head Office, Jakarta",
	Latitude:            -6.2088,
	Longitude:           106.8456,
	AllowedRadiusMeters: 500,
	GeofenceEnabled:     false,
}

// Engine implements timeclock.CaptureService.
type Engine struct {
	cfg      Config
	session  timeclock.Session
	backend  timeclock.Backend
	rec      facerec.Recognizer
	cameras  camera.Provider
	locator  geoloc.Provider
	geocoder geocode.Geocoder
	store    *cache.Store
	archive  storage.Archive
	logger   *slog.Logger
	now      func() time.Time

	mu          sync.Mutex
	phase       timeclock.Phase
	modelsReady bool
	reference   *facerec.Descriptor
	branch      timeclock.BranchLocation
	today       timeclock.DailyTimeRecord
	stream      camera.Stream
	lastError   string
}

// NewEngine wires the capture engine. store and archive may be nil;
// the engine then runs without offline caching or local audit copies.
func NewEngine(
	cfg Config,
	session timeclock.Session,
	backend timeclock.Backend,
	rec facerec.Recognizer,
	cameras camera.Provider,
	locator geoloc.Provider,
	geocoder geocode.Geocoder,
	store *cache.Store,
	archive storage.Archive,
	logger *slog.Logger,
) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		cfg:      cfg.withDefaults(),
		session:  session,
		backend:  backend,
		rec:      rec,
		cameras:  cameras,
		locator:  locator,
		geocoder: geocoder,
		store:    store,
		archive:  archive,
		logger:   logger,
		now:      time.Now,
		phase:    timeclock.PhaseIdle,
		branch:   DefaultBranch,
	}
}

// Start implements timeclock.CaptureService.
func (e *Engine) Start(ctx context.Context) error {
	if e.session.EmployeeNumber == "" {
		return timeclock.ErrNotLoggedIn
	}

	e.loadBranch(ctx)
	e.refreshToday(ctx)

	if !e.cfg.ImageCaptureRequired {
		return nil
	}

	if e.rec == nil || !e.rec.Ready() {
		// No camera without models: the stream is never opened when the
		// model set failed to load.
		e.recordError(timeclock.ErrModelsNotLoaded)
		return timeclock.ErrModelsNotLoaded
	}
	e.mu.Lock()
	e.modelsReady = true
	e.mu.Unlock()

	if err := e.loadReference(ctx); err != nil {
		e.recordError(err)
		return err
	}

	stream, err := e.cameras.Open(ctx)
	if err != nil {
		wrapped := fmt.Errorf("%w: %v", timeclock.ErrCameraUnavailable, err)
		e.recordError(wrapped)
		return wrapped
	}
	e.mu.Lock()
	e.stream = stream
	e.mu.Unlock()

	e.logger.Info("capture engine ready",
		"employee", e.session.EmployeeNumber,
		"branch", e.branch.BranchName,
		"geofence", e.branch.GeofenceEnabled)
	return nil
}

// loadBranch fetches the employee's geofence configuration, falling
// back to the cached copy and finally to DefaultBranch.
func (e *Engine) loadBranch(ctx context.Context) {
	branch, err := e.backend.BranchLocation(ctx, e.session.EmployeeNumber)
	if err == nil {
		if branch == nil {
			b := DefaultBranch
			branch = &b
		}
		e.mu.Lock()
		e.branch = *branch
		e.mu.Unlock()
		if e.store != nil {
			if cerr := e.store.PutBranch(e.session.EmployeeNumber, *branch); cerr != nil {
				e.logger.Warn("failed to cache branch", "error", cerr)
			}
		}
		return
	}

	e.logger.Warn("failed to fetch branch location", "error", err)
	if e.store != nil {
		if cached, cerr := e.store.Branch(e.session.EmployeeNumber); cerr == nil && cached != nil {
			e.mu.Lock()
			e.branch = *cached
			e.mu.Unlock()
			return
		}
	}
	e.mu.Lock()
	e.branch = DefaultBranch
	e.mu.Unlock()
}

// loadReference builds the session reference descriptor from the
// employee's enrollment photo. A nil descriptor fails closed: every
// event submission stays blocked until it loads.
func (e *Engine) loadReference(ctx context.Context) error {
	img, err := e.backend.EnrollmentImage(ctx, e.session.EmployeeNumber)
	if err != nil {
		return fmt.Errorf("%w: %v", timeclock.ErrReferenceImageNotFound, err)
	}

	face, err := e.rec.DetectSingle(img)
	if err != nil {
		return fmt.Errorf("%w: %v", timeclock.ErrReferenceImageNotFound, err)
	}
	if face == nil {
		return timeclock.ErrNoReferenceDescriptor
	}

	e.mu.Lock()
	e.reference = &face.Descriptor
	e.mu.Unlock()
	return nil
}

// SubmitEvent implements timeclock.CaptureService. Phases run strictly
// in order; the first failure aborts the attempt with no partial state
// beyond the transient error message, and the in-flight guard is
// always released.
func (e *Engine) SubmitEvent(ctx context.Context, eventType timeclock.EventType) (*timeclock.ClockEntry, error) {
	entry, err := e.submit(ctx, eventType)
	if err != nil {
		e.recordError(err)
		return nil, err
	}
	e.mu.Lock()
	e.lastError = ""
	e.mu.Unlock()
	return entry, nil
}

func (e *Engine) submit(ctx context.Context, eventType timeclock.EventType) (*timeclock.ClockEntry, error) {
	if !eventType.Valid() {
		return nil, timeclock.ErrInvalidEventType
	}
	if e.session.EmployeeNumber == "" {
		return nil, timeclock.ErrNotLoggedIn
	}

	e.mu.Lock()
	if e.phase != timeclock.PhaseIdle {
		e.mu.Unlock()
		return nil, timeclock.ErrCaptureInProgress
	}
	e.phase = timeclock.PhaseLocationCheck
	today := e.today
	branch := e.branch
	reference := e.reference
	modelsReady := e.modelsReady
	stream := e.stream
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.phase = timeclock.PhaseIdle
		e.mu.Unlock()
		e.notifyPhase(timeclock.PhaseIdle)
	}()

	attempt := timeclock.CaptureAttempt{
		ID:        uuid.NewString(),
		EventType: eventType,
		StartedAt: e.now(),
	}

	if today.Has(eventType) {
		return nil, timeclock.ErrAlreadyRecorded
	}
	if pred, ok := eventType.Predecessor(); ok && !today.Has(pred) {
		return nil, timeclock.ErrOutOfSequence
	}

	var location *VerifiedLocation
	if e.cfg.LocationRequired {
		e.notifyPhase(timeclock.PhaseLocationCheck)
		loc, err := e.validateLocation(ctx, branch)
		if err != nil {
			return nil, err
		}
		location = loc
	}

	var imageID, imagePath *string
	var still []byte
	if e.cfg.ImageCaptureRequired {
		if !modelsReady {
			return nil, timeclock.ErrModelsNotLoaded
		}
		if reference == nil {
			return nil, timeclock.ErrNoReferenceDescriptor
		}
		if stream == nil {
			return nil, timeclock.ErrCameraUnavailable
		}

		e.setPhase(timeclock.PhaseCapturing)
		if err := e.countdown(ctx); err != nil {
			return nil, err
		}
		if err := e.checkLiveness(ctx, stream); err != nil {
			return nil, err
		}
		attempt.LivenessPassed = true

		frame, err := stream.Grab(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", timeclock.ErrCameraUnavailable, err)
		}
		still, err = encodeJPEG(frame)
		if err != nil {
			return nil, err
		}

		e.setPhase(timeclock.PhaseVerifying)
		distance, err := e.matchStill(still, *reference)
		attempt.MatchDistance = distance
		if err != nil {
			return nil, err
		}
		attempt.Verified = true

		e.setPhase(timeclock.PhasePersisting)
		id, err := e.backend.NewImageID(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", timeclock.ErrImageSaveFailed, err)
		}
		path, err := e.backend.SaveImage(ctx, id, still)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", timeclock.ErrImageSaveFailed, err)
		}
		imageID, imagePath = &id, &path
	} else {
		e.setPhase(timeclock.PhasePersisting)
	}

	now := e.now()
	entry := &timeclock.ClockEntry{
		Timestamp: now,
		ImageID:   imageID,
		ImagePath: imagePath,
	}
	event := timeclock.TimeEventUpsert{
		EmployeeNumber: e.session.EmployeeNumber,
		Date:           dateOnly(now),
		EventType:      eventType,
		Timestamp:      now,
		ImageID:        imageID,
		ImagePath:      imagePath,
	}
	if location != nil {
		lat, lon, addr := location.Latitude, location.Longitude, location.Address
		event.Latitude, event.Longitude, event.Address = &lat, &lon, &addr
		entry.Latitude, entry.Longitude, entry.Address = &lat, &lon, &addr
	}

	if err := e.backend.UpsertTimeEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("%w: %v", timeclock.ErrEventSaveFailed, err)
	}

	e.archiveStill(ctx, eventType, now, still)

	e.mu.Lock()
	e.today.SetEntry(eventType, entry)
	todayCopy := e.today
	e.mu.Unlock()
	if e.store != nil {
		if err := e.store.PutDayRecord(todayCopy); err != nil {
			e.logger.Warn("failed to cache day record", "error", err)
		}
	}

	// Resynchronize with the system of record; the backend may have
	// merged events from another device.
	e.refreshToday(ctx)

	e.logger.Info("clock event recorded",
		"attempt", attempt.ID,
		"event", eventType,
		"liveness", attempt.LivenessPassed,
		"distance", attempt.MatchDistance)
	return entry, nil
}

// countdown runs the capture countdown, announcing each remaining
// second. The submission buttons stay locked for its whole duration
// via the phase guard.
func (e *Engine) countdown(ctx context.Context) error {
	for i := e.cfg.CountdownSeconds; i > 0; i-- {
		if e.cfg.OnCountdown != nil {
			e.cfg.OnCountdown(i)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}
	if e.cfg.OnCountdown != nil {
		e.cfg.OnCountdown(0)
	}
	return nil
}

// archiveStill keeps a local audit copy of the verified still. Best
// effort only; archive failures never fail the clock event.
func (e *Engine) archiveStill(ctx context.Context, eventType timeclock.EventType, at time.Time, still []byte) {
	if e.archive == nil || still == nil {
		return
	}
	path := fmt.Sprintf("%s/%s/%s.jpg", e.session.EmployeeNumber, at.Format("2006-01-02"), eventType)
	if _, err := e.archive.Save(ctx, path, bytes.NewReader(still)); err != nil {
		e.logger.Warn("failed to archive capture still", "path", path, "error", err)
	}
}

// refreshToday re-fetches today's record from the backend, falling
// back to the local cache when the backend is unreachable.
func (e *Engine) refreshToday(ctx context.Context) {
	today := dateOnly(e.now())

	records, err := e.backend.DailyTimeRecords(ctx, e.session.EmployeeNumber, today, today)
	if err == nil {
		rec := timeclock.DailyTimeRecord{EmployeeNumber: e.session.EmployeeNumber, Date: today}
		for _, r := range records {
			if sameDay(r.Date, today) {
				rec = r
				break
			}
		}
		e.mu.Lock()
		e.today = rec
		e.mu.Unlock()
		if e.store != nil {
			if cerr := e.store.PutDayRecord(rec); cerr != nil {
				e.logger.Warn("failed to cache day record", "error", cerr)
			}
		}
		return
	}

	e.logger.Warn("failed to refresh day record", "error", err)
	if e.store != nil {
		if cached, cerr := e.store.DayRecord(e.session.EmployeeNumber, today); cerr == nil && cached != nil {
			e.mu.Lock()
			e.today = *cached
			e.mu.Unlock()
			return
		}
	}

	e.mu.Lock()
	if !sameDay(e.today.Date, today) {
		e.today = timeclock.DailyTimeRecord{EmployeeNumber: e.session.EmployeeNumber, Date: today}
	}
	e.mu.Unlock()
}

// Today implements timeclock.CaptureService.
func (e *Engine) Today(ctx context.Context) (timeclock.DailyTimeRecord, error) {
	e.mu.Lock()
	stale := !sameDay(e.today.Date, dateOnly(e.now()))
	e.mu.Unlock()
	if stale {
		e.refreshToday(ctx)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.today, nil
}

// Records implements timeclock.CaptureService.
func (e *Engine) Records(ctx context.Context, start, end time.Time) ([]timeclock.DailyTimeRecord, error) {
	if e.session.EmployeeNumber == "" {
		return nil, timeclock.ErrNotLoggedIn
	}
	return e.backend.DailyTimeRecords(ctx, e.session.EmployeeNumber, start, end)
}

// Status implements timeclock.CaptureService. Enablement follows the
// chronological-predecessor rule and fails closed while the models or
// the reference descriptor are missing.
func (e *Engine) Status(ctx context.Context) timeclock.Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	enabled := make(map[timeclock.EventType]bool, len(timeclock.EventOrder))
	biometricsReady := !e.cfg.ImageCaptureRequired || (e.modelsReady && e.reference != nil)
	for _, et := range timeclock.EventOrder {
		enabled[et] = biometricsReady && e.phase == timeclock.PhaseIdle && e.today.CanSubmit(et)
	}

	return timeclock.Status{
		EmployeeNumber:  e.session.EmployeeNumber,
		ModelsReady:     e.modelsReady,
		ReferenceLoaded: e.reference != nil,
		Phase:           e.phase,
		Branch:          e.branch,
		Today:           e.today,
		Enabled:         enabled,
		LastError:       e.lastError,
	}
}

// Close implements timeclock.CaptureService. It releases the camera
// stream; it must run on teardown regardless of how far Start got.
func (e *Engine) Close() error {
	e.mu.Lock()
	stream := e.stream
	e.stream = nil
	e.mu.Unlock()

	if stream != nil {
		return stream.Close()
	}
	return nil
}

func (e *Engine) setPhase(phase timeclock.Phase) {
	e.mu.Lock()
	e.phase = phase
	e.mu.Unlock()
	e.notifyPhase(phase)
}

func (e *Engine) notifyPhase(phase timeclock.Phase) {
	if e.cfg.OnPhase != nil {
		e.cfg.OnPhase(phase)
	}
}

func (e *Engine) recordError(err error) {
	e.mu.Lock()
	e.lastError = err.Error()
	e.mu.Unlock()
	e.logger.Warn("capture attempt failed", "error", err)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
