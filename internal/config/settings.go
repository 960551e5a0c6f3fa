package config

import (
	"fmt"
	"time"
)

// Settings holds all runtime configuration for the enrichment pipeline
type Settings struct {
	// Placekey API
	PlacekeyAPIKey  string
	PlacekeyBaseURL string

	// Request behaviour
	RequestTimeout time.Duration
	MaxRetries     int
	RetryDelay     time.Duration
	RatePerSecond  float64
	RateBurst      int

	// Batch processing
	BatchSize  int
	MaxWorkers int

	// Results database (optional, only required for serve/stats)
	DatabaseURL string
}

// LoadSettings builds Settings from the environment with sensible defaults
func LoadSettings() *Settings {
	return &Settings{
		PlacekeyAPIKey:  GetEnv("PLACEKEY_API_KEY", ""),
		PlacekeyBaseURL: GetEnv("PLACEKEY_BASE_URL", "https://api.placekey.io/v1"),
		RequestTimeout:  time.Duration(GetEnvInt("REQUEST_TIMEOUT_SECONDS", 30)) * time.Second,
		MaxRetries:      GetEnvInt("MAX_RETRIES", 3),
		RetryDelay:      time.Duration(GetEnvFloat("RETRY_DELAY_SECONDS", 1.0) * float64(time.Second)),
		RatePerSecond:   GetEnvFloat("RATE_PER_SECOND", 5.0),
		RateBurst:       GetEnvInt("RATE_BURST", 10),
		BatchSize:       GetEnvInt("BATCH_SIZE", 100),
		MaxWorkers:      GetEnvInt("MAX_WORKERS", 5),
		DatabaseURL:     GetEnv("DATABASE_URL", ""),
	}
}

// Validate checks settings that have hard requirements
func (s *Settings) Validate(requireAPIKey bool) error {
	if requireAPIKey && s.PlacekeyAPIKey == "" {
		return fmt.Errorf("PLACEKEY_API_KEY is not set")
	}
	if s.BatchSize <= 0 {
		return fmt.Errorf("BATCH_SIZE must be greater than 0")
	}
	if s.MaxRetries < 0 {
		return fmt.Errorf("MAX_RETRIES cannot be negative")
	}
	if s.MaxWorkers <= 0 {
		return fmt.Errorf("MAX_WORKERS must be greater than 0")
	}
	return nil
}
