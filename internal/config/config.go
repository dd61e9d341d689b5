// Package config loads service configuration from the environment.
// A .env file in the working directory is honoured for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full service configuration.
type Config struct {
	Service  ServiceConfig
	Server   ServerConfig
	Database DatabaseConfig
	OCR      OCRConfig
	NATS     NATSConfig
}

// ServiceConfig identifies the running service.
type ServiceConfig struct {
	Name        string
	Version     string
	Environment string
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds Postgres connection settings.
type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	Database    string
	SSLMode     string
	MaxConns    int32
	MinConns    int32
	MaxConnTime time.Duration
	MaxIdleTime time.Duration
	HealthCheck time.Duration
}

// OCRConfig holds OCR engine and matcher settings.
type OCRConfig struct {
	EngineURL      string        // base URL of the OCR engine sidecar
	EngineTimeout  time.Duration // per-call timeout; model loads can be slow
	MatchThreshold float64       // minimum vendor-match score (0-100)
	FuzzyMatching  bool          // false falls back to substring matching
	UploadDir      string
}

// NATSConfig holds notification publishing settings.
type NATSConfig struct {
	URL     string
	Enabled bool
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Service: ServiceConfig{
			Name:        getEnv("SERVICE_NAME", "be-bills"),
			Version:     getEnv("SERVICE_VERSION", "dev"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Server: ServerConfig{
			Port:            getEnvInt("SERVER_PORT", 8086),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 3*time.Minute), // covers a full OCR engine pass on upload
			IdleTimeout:     getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnvInt("DB_PORT", 5432),
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", ""),
			Database:    getEnv("DB_NAME", "bills"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			MaxConns:    int32(getEnvInt("DB_MAX_CONNS", 10)),
			MinConns:    int32(getEnvInt("DB_MIN_CONNS", 2)),
			MaxConnTime: getEnvDuration("DB_MAX_CONN_LIFETIME", time.Hour),
			MaxIdleTime: getEnvDuration("DB_MAX_CONN_IDLE", 30*time.Minute),
			HealthCheck: getEnvDuration("DB_HEALTHCHECK_PERIOD", time.Minute),
		},
		OCR: OCRConfig{
			EngineURL:      getEnv("OCR_ENGINE_URL", "http://localhost:8871"),
			EngineTimeout:  getEnvDuration("OCR_ENGINE_TIMEOUT", 2*time.Minute),
			MatchThreshold: getEnvFloat("VENDOR_MATCH_THRESHOLD", 80),
			FuzzyMatching:  getEnvBool("VENDOR_FUZZY_MATCHING", true),
			UploadDir:      getEnv("UPLOAD_DIR", "uploads"),
		},
		NATS: NATSConfig{
			URL:     getEnv("NATS_URL", ""),
			Enabled: getEnv("NATS_URL", "") != "",
		},
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return nil, fmt.Errorf("invalid SERVER_PORT %d", cfg.Server.Port)
	}
	if cfg.OCR.MatchThreshold < 0 || cfg.OCR.MatchThreshold > 100 {
		return nil, fmt.Errorf("VENDOR_MATCH_THRESHOLD must be 0-100, got %v", cfg.OCR.MatchThreshold)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
