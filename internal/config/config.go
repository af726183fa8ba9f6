package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Session  SessionConfig
	Backend  BackendConfig
	Capture  CaptureConfig
	Location LocationConfig
	Face     FaceConfig
	Storage  StorageConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
}

// SessionConfig identifies the employee this kiosk is assigned to.
type SessionConfig struct {
	EmployeeNumber string
	Approver       bool
}

type BackendConfig struct {
	BaseURL       string
	APIKey        string
	EnrollmentURL string
	Timeout       time.Duration
}

type CaptureConfig struct {
	ImageCaptureRequired bool
	LocationRequired     bool
	MatchThreshold       float64
	CountdownSeconds     int
	LivenessDelay        time.Duration
	LivenessMinMotion    float64
	CameraDeviceID       int
}

type LocationConfig struct {
	Timeout time.Duration

	// Fixed kiosk coordinates; Configured is false when unset.
	Latitude   float64
	Longitude  float64
	Configured bool

	GeocoderBaseURL string
}

type FaceConfig struct {
	ModelDir string
}

type StorageConfig struct {
	CachePath      string
	ArchiveEnabled bool
	ArchivePath    string
}

func Load() (*Config, error) {
	// Optional in production; env vars may come from the unit file.
	_ = godotenv.Load()

	config := &Config{}

	appPort, err := strconv.Atoi(getEnv("AGENT_PORT", "8090"))
	if err != nil {
		return nil, fmt.Errorf("invalid AGENT_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:     appPort,
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	config.Session = SessionConfig{
		EmployeeNumber: getEnv("SESSION_EMPLOYEE_NUMBER", ""),
		Approver:       getEnvBool("SESSION_APPROVER", false),
	}

	backendTimeout, err := time.ParseDuration(getEnv("BACKEND_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("invalid BACKEND_TIMEOUT: %w", err)
	}
	config.Backend = BackendConfig{
		BaseURL:       getEnv("BACKEND_BASE_URL", "http://localhost:8080"),
		APIKey:        getEnv("BACKEND_API_KEY", ""),
		EnrollmentURL: getEnv("ENROLLMENT_IMAGE_URL", "http://localhost:8080/images/%s.jpg"),
		Timeout:       backendTimeout,
	}

	matchThreshold, err := getEnvFloat("MATCH_THRESHOLD", 0.6)
	if err != nil {
		return nil, err
	}
	countdown, err := strconv.Atoi(getEnv("COUNTDOWN_SECONDS", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid COUNTDOWN_SECONDS: %w", err)
	}
	livenessDelay, err := time.ParseDuration(getEnv("LIVENESS_DELAY", "300ms"))
	if err != nil {
		return nil, fmt.Errorf("invalid LIVENESS_DELAY: %w", err)
	}
	livenessMotion, err := getEnvFloat("LIVENESS_MIN_MOTION", 2.0)
	if err != nil {
		return nil, err
	}
	cameraDevice, err := strconv.Atoi(getEnv("CAMERA_DEVICE_ID", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid CAMERA_DEVICE_ID: %w", err)
	}

	config.Capture = CaptureConfig{
		ImageCaptureRequired: getEnvBool("IMAGE_CAPTURE_REQUIRED", true),
		LocationRequired:     getEnvBool("LOCATION_REQUIRED", true),
		MatchThreshold:       matchThreshold,
		CountdownSeconds:     countdown,
		LivenessDelay:        livenessDelay,
		LivenessMinMotion:    livenessMotion,
		CameraDeviceID:       cameraDevice,
	}

	locationTimeout, err := time.ParseDuration(getEnv("LOCATION_TIMEOUT", "8s"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOCATION_TIMEOUT: %w", err)
	}
	config.Location = LocationConfig{
		Timeout:         locationTimeout,
		GeocoderBaseURL: getEnv("GEOCODER_BASE_URL", "https://nominatim.openstreetmap.org"),
	}
	if lat, ok := os.LookupEnv("KIOSK_LATITUDE"); ok {
		latitude, err := strconv.ParseFloat(lat, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid KIOSK_LATITUDE: %w", err)
		}
		longitude, err := strconv.ParseFloat(getEnv("KIOSK_LONGITUDE", ""), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid KIOSK_LONGITUDE: %w", err)
		}
		config.Location.Latitude = latitude
		config.Location.Longitude = longitude
		config.Location.Configured = true
	}

	config.Face = FaceConfig{
		ModelDir: getEnv("MODEL_DIR", "./models"),
	}

	config.Storage = StorageConfig{
		CachePath:      getEnv("CACHE_PATH", "./timeclock-cache.db"),
		ArchiveEnabled: getEnvBool("ARCHIVE_ENABLED", false),
		ArchivePath:    getEnv("ARCHIVE_PATH", "./capture-archive"),
	}

	return config, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}
