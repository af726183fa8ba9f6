package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/timeclock-agent/internal/config"
	"github.com/cmlabs-hris/timeclock-agent/internal/domain/timeclock"
	appHTTP "github.com/cmlabs-hris/timeclock-agent/internal/handler/http"
	"github.com/cmlabs-hris/timeclock-agent/internal/pkg/cache"
	"github.com/cmlabs-hris/timeclock-agent/internal/pkg/camera"
	"github.com/cmlabs-hris/timeclock-agent/internal/pkg/facerec"
	"github.com/cmlabs-hris/timeclock-agent/internal/pkg/geocode"
	"github.com/cmlabs-hris/timeclock-agent/internal/pkg/geoloc"
	"github.com/cmlabs-hris/timeclock-agent/internal/pkg/hrisapi"
	"github.com/cmlabs-hris/timeclock-agent/internal/pkg/storage"
	"github.com/cmlabs-hris/timeclock-agent/internal/service/capture"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With(
		slog.String("app", "timeclock-agent"),
	)

	backend := hrisapi.NewClient(hrisapi.Config{
		BaseURL:       cfg.Backend.BaseURL,
		APIKey:        cfg.Backend.APIKey,
		EnrollmentURL: cfg.Backend.EnrollmentURL,
		Timeout:       cfg.Backend.Timeout,
	})

	var recognizer facerec.Recognizer
	if cfg.Capture.ImageCaptureRequired {
		dlib, err := facerec.LoadDlib(cfg.Face.ModelDir)
		if err != nil {
			// Fatal for capture; the agent still serves status and
			// history so the kiosk can show why the buttons are dark.
			logger.Error("failed to load face models", "error", err)
		} else {
			recognizer = dlib
			defer dlib.Close()
		}
	}

	store, err := cache.Open(cfg.Storage.CachePath)
	if err != nil {
		logger.Warn("local cache unavailable", "error", err)
		store = nil
	} else {
		defer store.Close()
	}

	var archive storage.Archive
	if cfg.Storage.ArchiveEnabled {
		archive, err = storage.NewLocalArchive(cfg.Storage.ArchivePath)
		if err != nil {
			log.Fatal("Failed to initialize capture archive:", err)
		}
	}

	geocoder := geocode.NewClient(cfg.Location.GeocoderBaseURL, 10*time.Second)
	locator := &geoloc.StaticProvider{
		Latitude:   cfg.Location.Latitude,
		Longitude:  cfg.Location.Longitude,
		Configured: cfg.Location.Configured,
	}

	engine := capture.NewEngine(
		capture.Config{
			LocationRequired:     cfg.Capture.LocationRequired,
			ImageCaptureRequired: cfg.Capture.ImageCaptureRequired,
			MatchThreshold:       cfg.Capture.MatchThreshold,
			CountdownSeconds:     cfg.Capture.CountdownSeconds,
			LivenessDelay:        cfg.Capture.LivenessDelay,
			LivenessMinMotion:    cfg.Capture.LivenessMinMotion,
			LocationTimeout:      cfg.Location.Timeout,
		},
		timeclock.Session{
			EmployeeNumber: cfg.Session.EmployeeNumber,
			Approver:       cfg.Session.Approver,
		},
		backend,
		recognizer,
		&camera.DeviceProvider{DeviceID: cfg.Capture.CameraDeviceID},
		locator,
		geocoder,
		store,
		archive,
		logger,
	)
	defer engine.Close()

	startCtx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	if err := engine.Start(startCtx); err != nil {
		logger.Error("capture engine not fully ready", "error", err)
	}
	cancel()

	timeclockHandler := appHTTP.NewTimeclockHandler(engine)
	router := appHTTP.NewRouter(timeclockHandler)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Timeclock agent running on port %d\n", cfg.App.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server error:", err)
		}
	}()

	// The camera must be released on shutdown, so wait for a signal
	// instead of blocking in ListenAndServe.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}
}
