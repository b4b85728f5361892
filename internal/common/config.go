package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	OCR      OCRConfig
	Match    MatchConfig
}

// DatabaseConfig holds driver-store configuration. DSN is either a sqlite
// file path (the default local database) or a postgres:// URL for a shared
// administrative database.
type DatabaseConfig struct {
	DSN             string
	ActiveOnly      bool
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	TesseractBin string
	Preprocessor string
	PdftoppmBin  string
	Language     string
	TessdataDir  string
	DPI          int
	MaxPDFPages  int
	Timeout      time.Duration
}

// MatchConfig holds the caller-facing matching and login-gate knobs. The
// score bands themselves live in the match package policy.
type MatchConfig struct {
	MinConfidence        float64
	TopN                 int
	NameSimilarity       float64
	AllowPartialLastName bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:             getEnv("DB_URL", "dvla.db"),
			ActiveOnly:      getEnvAsBool("DB_ACTIVE_ONLY", true),
			MaxConns:        getEnvAsInt32("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt32("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		OCR: OCRConfig{
			TesseractBin: getEnv("TESSERACT_BIN", "tesseract"),
			Preprocessor: getEnv("IMAGE_PREPROCESSOR", "magick"),
			PdftoppmBin:  getEnv("PDFTOPPM_BIN", "pdftoppm"),
			Language:     getEnv("OCR_LANG", "eng"),
			TessdataDir:  getEnv("TESSDATA_PREFIX", ""),
			DPI:          getEnvAsInt("OCR_DPI", 300),
			MaxPDFPages:  getEnvAsInt("OCR_MAX_PDF_PAGES", 4),
			Timeout:      getEnvAsDuration("OCR_TIMEOUT", 60*time.Second),
		},
		Match: MatchConfig{
			MinConfidence:        getEnvAsFloat64("MIN_CONFIDENCE", 40.0),
			TopN:                 getEnvAsInt("MATCH_TOP_N", 5),
			NameSimilarity:       getEnvAsFloat64("NAME_SIMILARITY_THRESHOLD", 0.85),
			AllowPartialLastName: getEnvAsBool("ALLOW_PARTIAL_LAST_NAME", false),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// ValidateConfig validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.Match.MinConfidence < 0 || c.Match.MinConfidence > 100 {
		return NewAppError("CONFIG_ERROR", "MIN_CONFIDENCE must be between 0 and 100", ErrInvalidInput)
	}
	if c.Match.TopN < 1 {
		return NewAppError("CONFIG_ERROR", "MATCH_TOP_N must be at least 1", ErrInvalidInput)
	}
	if c.OCR.DPI < 72 {
		return NewAppError("CONFIG_ERROR", "OCR_DPI must be at least 72", ErrInvalidInput)
	}
	return nil
}
