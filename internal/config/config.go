package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the sandbox API server
type Config struct {
	// HTTP Configuration
	Server ServerConfig

	// Database Configuration
	Database DatabaseConfig

	// Authentication Configuration
	Auth AuthConfig

	// Uploaded profile images
	Uploads UploadsConfig

	// Logging Configuration
	Logging LoggingConfig
}

// ServerConfig holds HTTP listener configuration
type ServerConfig struct {
	Addr         string
	AllowOrigins []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string // sqlite file path, or ":memory:"
}

// AuthConfig holds token and signup configuration
type AuthConfig struct {
	JWTSecret        string
	TokenTTL         time.Duration
	AdminInviteToken string // Signups presenting this token become admins; empty disables admin signup
}

// UploadsConfig holds the directory serving /uploads
type UploadsConfig struct {
	Dir string
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // json, console
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	ttl := 7 * 24 * time.Hour
	if raw := os.Getenv("SANDBOX_TOKEN_TTL"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid SANDBOX_TOKEN_TTL: %w", err)
		}
		ttl = d
	}

	secret := os.Getenv("SANDBOX_JWT_SECRET")
	if secret == "" {
		// Tokens will not survive a restart
		var err error
		if secret, err = GenerateSecret(); err != nil {
			return nil, err
		}
	}

	return &Config{
		Server: ServerConfig{
			Addr:         getenv("SANDBOX_ADDR", ":8000"),
			AllowOrigins: []string{"http://localhost:5173"},
		},
		Database: DatabaseConfig{
			URL: getenv("SANDBOX_DB", "nexa-sandbox.sqlite"),
		},
		Auth: AuthConfig{
			JWTSecret:        secret,
			TokenTTL:         ttl,
			AdminInviteToken: os.Getenv("SANDBOX_ADMIN_INVITE_TOKEN"),
		},
		Uploads: UploadsConfig{
			Dir: getenv("SANDBOX_UPLOAD_DIR", "uploads"),
		},
		Logging: LoggingConfig{
			Level:  getenv("LOG_LEVEL", "info"),
			Format: getenv("LOG_FORMAT", "console"),
		},
	}, nil
}

// GenerateSecret returns 64 hex characters (32 bytes of randomness)
func GenerateSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate JWT secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
