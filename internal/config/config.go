package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// Following 12-factor app principles, all config is loaded from environment variables
type Config struct {
	Server   ServerConfig
	Mongo    MongoConfig
	Uploads  UploadConfig
	LogLevel string
}

type ServerConfig struct {
	Port            string
	Host            string
	ReadTimeout     int
	WriteTimeout    int
	ShutdownTimeout int
}

type MongoConfig struct {
	URI      string
	Database string
	// ConnectTimeout bounds the initial connect+ping, in seconds
	ConnectTimeout int
}

type UploadConfig struct {
	// Dir is the directory uploaded images are written to
	Dir string
	// PublicPath is the URL prefix the directory is served under
	PublicPath string
}

// Load reads configuration from environment variables.
// A .env file in the working directory is merged in first if present.
func Load() (*Config, error) {
	// Missing .env is fine; real environments set variables directly
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Host:            getEnv("HOST", "0.0.0.0"),
			ReadTimeout:     getEnvAsInt("READ_TIMEOUT", 15),
			WriteTimeout:    getEnvAsInt("WRITE_TIMEOUT", 15),
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 30),
		},
		Mongo: MongoConfig{
			URI:            getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database:       getEnv("MONGO_DB", "catalog"),
			ConnectTimeout: getEnvAsInt("MONGO_CONNECT_TIMEOUT", 10),
		},
		Uploads: UploadConfig{
			Dir:        getEnv("UPLOAD_DIR", "uploads"),
			PublicPath: getEnv("UPLOAD_PUBLIC_PATH", "/uploads"),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Mongo.URI == "" {
		return fmt.Errorf("MONGO_URI is required")
	}

	if c.Mongo.Database == "" {
		return fmt.Errorf("MONGO_DB is required")
	}

	if c.Uploads.Dir == "" {
		return fmt.Errorf("UPLOAD_DIR is required")
	}

	if !strings.HasPrefix(c.Uploads.PublicPath, "/") {
		return fmt.Errorf("UPLOAD_PUBLIC_PATH must start with /")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}

// Helper functions for reading environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
