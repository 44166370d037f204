// Package config provides environment-based configuration for the
// deepsift service. A .env file in the working directory is loaded
// when present; real environment variables always win.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Defaults for the scoring service.
const (
	DefaultPort              = "5000"
	DefaultClassifierURL     = "http://localhost:8080"
	DefaultClassifierTimeout = 60 * time.Second
	DefaultModelDir          = "models/face_detection"
	DefaultMaxFrames         = 30
	DefaultPaddingPercent    = 30.0
	DefaultModelVersion      = "v2"
)

// Config holds the full service configuration.
type Config struct {
	Port              string
	LogLevel          string
	ClassifierURL     string
	ClassifierModel   string
	ClassifierTimeout time.Duration
	ModelDir          string
	DetectorBackend   string // "", "dnn" or "haar"; empty means auto-select
	MaxFrames         int
	PaddingPercent    float64
	ModelVersion      string
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	// Missing .env is fine, env vars may be set directly.
	_ = godotenv.Load()

	cfg := &Config{
		Port:              getEnv("PORT", DefaultPort),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		ClassifierURL:     getEnv("CLASSIFIER_URL", DefaultClassifierURL),
		ClassifierModel:   getEnv("CLASSIFIER_MODEL", "deepfake-detect-siglip2"),
		ClassifierTimeout: DefaultClassifierTimeout,
		ModelDir:          getEnv("MODEL_DIR", DefaultModelDir),
		DetectorBackend:   getEnv("DETECTOR_BACKEND", ""),
		MaxFrames:         DefaultMaxFrames,
		PaddingPercent:    DefaultPaddingPercent,
		ModelVersion:      getEnv("MODEL_VERSION", DefaultModelVersion),
	}

	if v := os.Getenv("CLASSIFIER_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("config: invalid CLASSIFIER_TIMEOUT %q: %w", v, err)
		}
		cfg.ClassifierTimeout = d
	}

	if v := os.Getenv("MAX_FRAMES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("config: invalid MAX_FRAMES %q: %w", v, err)
		}
		cfg.MaxFrames = n
	}

	if v := os.Getenv("PADDING_PERCENT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			return nil, fmt.Errorf("config: invalid PADDING_PERCENT %q", v)
		}
		cfg.PaddingPercent = f
	}

	return cfg, nil
}

// getEnv returns the env var value or a fallback when unset.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
