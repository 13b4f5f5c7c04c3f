package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds process-wide pipeline defaults. Per-call overrides live in
// models.Options; these values seed the defaults and bound the collaborator
// calls.
type Config struct {
	MaxFileSize      int64 // general input cap
	MaxAudioFileSize int64 // cap for the audio transcription collaborator

	LocalConfidenceThreshold float64
	LocalEngineDPI           int
	VisionMaxDimension       int
	VisionConcurrency        int
	VisionTimeout            time.Duration

	MaxPDFPages int
	RasterDPI   int

	VisionProvider string
	VisionModel    string
	VisionAPIKey   string
	VisionBaseURL  string

	StorageAccountName string
	StorageAccountKey  string
	StorageContainer   string
}

func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		MaxFileSize:              parseIntOrDefault("MAX_FILE_SIZE", 10*1024*1024),
		MaxAudioFileSize:         parseIntOrDefault("MAX_AUDIO_FILE_SIZE", 25*1024*1024),
		LocalConfidenceThreshold: parseFloatOrDefault("LOCAL_CONFIDENCE_THRESHOLD", 75),
		LocalEngineDPI:           int(parseIntOrDefault("LOCAL_ENGINE_DPI", 300)),
		VisionMaxDimension:       int(parseIntOrDefault("VISION_MAX_DIMENSION", 768)),
		VisionConcurrency:        int(parseIntOrDefault("VISION_CONCURRENCY", 3)),
		VisionTimeout:            parseDurationOrDefault("VISION_TIMEOUT", 4*time.Minute),
		MaxPDFPages:              int(parseIntOrDefault("MAX_PDF_PAGES", 10)),
		RasterDPI:                int(parseIntOrDefault("RASTER_DPI", 200)),
		VisionProvider:           getEnvOrDefault("VISION_PROVIDER", "openai"),
		VisionModel:              getEnvOrDefault("VISION_MODEL", "gpt-4o-mini"),
		VisionAPIKey:             os.Getenv("VISION_API_KEY"),
		VisionBaseURL:            os.Getenv("VISION_BASE_URL"),
		StorageAccountName:       os.Getenv("STORAGE_ACCOUNT_NAME"),
		StorageAccountKey:        os.Getenv("STORAGE_ACCOUNT_KEY"),
		StorageContainer:         getEnvOrDefault("STORAGE_CONTAINER", "documents"),
	}

	if cfg.MaxFileSize <= 0 {
		return nil, fmt.Errorf("MAX_FILE_SIZE must be > 0 (got %d)", cfg.MaxFileSize)
	}
	if cfg.LocalConfidenceThreshold < 0 || cfg.LocalConfidenceThreshold > 100 {
		return nil, fmt.Errorf("LOCAL_CONFIDENCE_THRESHOLD must be in [0,100] (got %v)", cfg.LocalConfidenceThreshold)
	}
	if cfg.MaxPDFPages <= 0 {
		return nil, fmt.Errorf("MAX_PDF_PAGES must be > 0 (got %d)", cfg.MaxPDFPages)
	}
	if cfg.VisionConcurrency <= 0 {
		return nil, fmt.Errorf("VISION_CONCURRENCY must be > 0 (got %d)", cfg.VisionConcurrency)
	}
	if cfg.VisionTimeout <= 0 {
		return nil, fmt.Errorf("VISION_TIMEOUT must be > 0 (got %s)", cfg.VisionTimeout)
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
