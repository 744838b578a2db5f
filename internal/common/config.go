package common

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	OCR        OCRConfig
	AI         AIConfig
	Extraction ExtractionConfig
	LogLevel   string
}

// ServerConfig holds server-related configuration. A non-empty WatchDir
// makes the daemon extract every document dropped into it.
type ServerConfig struct {
	GRPCAddr     string
	WatchDir     string
	QueueWorkers int
}

// DatabaseConfig holds database-related configuration. An empty DSN disables
// persistence; a postgres:// DSN selects Postgres, anything else is a SQLite
// file path.
type DatabaseConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// OCRConfig points at the external OCR binaries.
type OCRConfig struct {
	Tesseract     string
	TesseractLang string
	Pdftoppm      string
	DPI           int
}

// AIConfig selects the AI collaborator. Provider is "openai", "remote" or
// empty for none.
type AIConfig struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float32
	Timeout     time.Duration
}

// ExtractionConfig tunes the format router.
type ExtractionConfig struct {
	MinAITextLength int
	AITimeout       time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			GRPCAddr:     getEnv("GRPC_ADDR", ":8080"),
			WatchDir:     getEnv("WATCH_DIR", ""),
			QueueWorkers: getEnvAsInt("QUEUE_WORKERS", 4),
		},
		Database: DatabaseConfig{
			DSN:             getEnv("DB_URL", ""),
			MaxConns:        getEnvAsInt32("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt32("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		OCR: OCRConfig{
			Tesseract:     getEnv("TESSERACT_BIN", "tesseract"),
			TesseractLang: getEnv("TESSERACT_LANG", "eng+rus+chi_sim"),
			Pdftoppm:      getEnv("PDFTOPPM_BIN", "pdftoppm"),
			DPI:           getEnvAsInt("OCR_DPI", 300),
		},
		AI: AIConfig{
			Provider:    strings.ToLower(getEnv("AI_PROVIDER", "")),
			Model:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			APIKey:      getEnv("AI_API_KEY", os.Getenv("OPENAI_API_KEY")),
			BaseURL:     getEnv("AI_BASE_URL", ""),
			Temperature: getEnvAsFloat32("AI_TEMPERATURE", 0.0),
			Timeout:     getEnvAsDuration("AI_HTTP_TIMEOUT", 45*time.Second),
		},
		Extraction: ExtractionConfig{
			MinAITextLength: getEnvAsInt("MIN_AI_TEXT_LENGTH", 100),
			AITimeout:       getEnvAsDuration("AI_TIMEOUT", 30*time.Second),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
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

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
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

// Validate checks the settings that the binaries cannot run without.
func (c *Config) Validate() error {
	if c.Server.GRPCAddr == "" {
		return NewAppError("CONFIG_ERROR", "GRPC_ADDR is required", ErrInvalidInput)
	}
	if c.Server.QueueWorkers <= 0 {
		return NewAppError("CONFIG_ERROR", "QUEUE_WORKERS must be positive", ErrInvalidInput)
	}
	switch c.AI.Provider {
	case "":
	case "openai":
		if c.AI.APIKey == "" {
			return NewAppError("CONFIG_ERROR", "AI_API_KEY is required for the openai provider", ErrInvalidInput)
		}
	case "remote":
		if c.AI.BaseURL == "" {
			return NewAppError("CONFIG_ERROR", "AI_BASE_URL is required for the remote provider", ErrInvalidInput)
		}
	default:
		return NewAppError("CONFIG_ERROR", "unknown AI_PROVIDER "+c.AI.Provider, ErrInvalidInput)
	}
	if c.Extraction.MinAITextLength < 0 {
		return NewAppError("CONFIG_ERROR", "MIN_AI_TEXT_LENGTH must not be negative", ErrInvalidInput)
	}
	if c.Extraction.AITimeout <= 0 {
		return NewAppError("CONFIG_ERROR", "AI_TIMEOUT must be positive", ErrInvalidInput)
	}
	if c.Database.MinConns > c.Database.MaxConns {
		return NewAppError("CONFIG_ERROR", "DB_MIN_CONNS exceeds DB_MAX_CONNS", ErrInvalidInput)
	}
	return nil
}
