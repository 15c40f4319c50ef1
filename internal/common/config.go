package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	OCR     OCRConfig
	LLM     LLMConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	HTTPAddr      string
	MaxUploadSize int64
}

// StorageConfig holds object store configuration
type StorageConfig struct {
	Endpoint      string // base URL of the object store gateway
	DefaultBucket string // bucket assumed when a locator omits one
	APIKey        string
	Timeout       time.Duration
}

// OCRConfig holds OCR service configuration
type OCRConfig struct {
	Endpoint     string
	APIKey       string
	PollInterval time.Duration
	MaxAttempts  int
	Timeout      time.Duration
}

// LLMConfig holds LLM client configuration
type LLMConfig struct {
	BaseURL     string
	Model       string
	APIKey      string
	Temperature float32
	Timeout     time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPAddr:      getEnv("HTTP_ADDR", ":8000"),
			MaxUploadSize: int64(getEnvAsInt("MAX_UPLOAD_MB", 25)) << 20,
		},
		Storage: StorageConfig{
			Endpoint:      getEnv("STORAGE_ENDPOINT", ""),
			DefaultBucket: getEnv("STORAGE_BUCKET", ""),
			APIKey:        getEnv("STORAGE_API_KEY", ""),
			Timeout:       getEnvAsDuration("STORAGE_TIMEOUT", 30*time.Second),
		},
		OCR: OCRConfig{
			Endpoint:     getEnv("OCR_ENDPOINT", ""),
			APIKey:       getEnv("OCR_API_KEY", ""),
			PollInterval: getEnvAsDuration("OCR_POLL_INTERVAL", 2*time.Second),
			MaxAttempts:  getEnvAsInt("OCR_MAX_ATTEMPTS", 60),
			Timeout:      getEnvAsDuration("OCR_TIMEOUT", 30*time.Second),
		},
		LLM: LLMConfig{
			BaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Model:       getEnv("OPENAI_MODEL", "gpt-4-turbo-preview"),
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			Temperature: getEnvAsFloat32("OPENAI_TEMPERATURE", 0.1),
			Timeout:     getEnvAsDuration("OPENAI_TIMEOUT", 60*time.Second),
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

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return &ExtractionError{Kind: "CONFIG_ERROR", Message: "HTTP_ADDR is required", Cause: ErrInvalidInput}
	}
	if c.LLM.APIKey == "" {
		return &ExtractionError{Kind: "CONFIG_ERROR", Message: "OPENAI_API_KEY is required", Cause: ErrInvalidInput}
	}
	if c.OCR.Endpoint == "" {
		return &ExtractionError{Kind: "CONFIG_ERROR", Message: "OCR_ENDPOINT is required", Cause: ErrInvalidInput}
	}
	if c.Storage.Endpoint == "" {
		return &ExtractionError{Kind: "CONFIG_ERROR", Message: "STORAGE_ENDPOINT is required", Cause: ErrInvalidInput}
	}
	return nil
}
