package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Storage  StorageConfig
	Mail     MailConfig
	Cooking  CookingConfig
	Backend  BackendConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host    string
	Port    int
	BaseURL string // external URL used in magic links and local file URLs
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // seconds
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// AuthConfig holds magic link and session configuration.
type AuthConfig struct {
	JWTSecret     string
	SessionTTL    time.Duration
	MagicLinkTTL  time.Duration
	SecureCookies bool
}

// StorageConfig holds object storage configuration for photos and master images.
type StorageConfig struct {
	S3Enabled     bool
	S3Bucket      string
	S3Region      string
	S3Endpoint    string // optional, for S3-compatible services
	PublicBaseURL string // optional CDN base for public object URLs
	LocalRoot     string
	SignedURLTTL  time.Duration
}

// MailConfig holds outgoing mail configuration.
type MailConfig struct {
	SESEnabled bool
	SESRegion  string
	Sender     string
}

// CookingConfig holds cooking timer defaults.
type CookingConfig struct {
	DefaultBoilSeconds int
	TickInterval       time.Duration
	IdleTimeout        time.Duration
}

// BackendConfig describes where to send the user when the backend looks paused.
type BackendConfig struct {
	DashboardURL string
}

// Load loads configuration from environment variables.
// A .env file in the working directory is read first when present; real
// environment variables take precedence over it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:    getEnv("SERVER_HOST", "0.0.0.0"),
			Port:    getEnvAsInt("SERVER_PORT", 8080),
			BaseURL: strings.TrimRight(getEnv("BASE_URL", "http://localhost:8080"), "/"),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "pastalogger"),
			MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 10),
			MinConnections:  getEnvAsInt("DB_MIN_CONNECTIONS", 1),
			MaxConnLifetime: getEnvAsInt("DB_MAX_CONN_LIFETIME", 300),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Auth: AuthConfig{
			JWTSecret:     getEnv("JWT_SECRET", ""),
			SessionTTL:    getEnvAsDuration("SESSION_TTL", 30*24*time.Hour),
			MagicLinkTTL:  getEnvAsDuration("MAGIC_LINK_TTL", 15*time.Minute),
			SecureCookies: getEnvAsBool("SECURE_COOKIES", false),
		},
		Storage: StorageConfig{
			S3Enabled:     getEnvAsBool("S3_ENABLED", false),
			S3Bucket:      getEnv("S3_BUCKET", ""),
			S3Region:      getEnv("S3_REGION", "us-east-1"),
			S3Endpoint:    getEnv("S3_ENDPOINT", ""),
			PublicBaseURL: strings.TrimRight(getEnv("STORAGE_PUBLIC_BASE_URL", ""), "/"),
			LocalRoot:     getEnv("STORAGE_LOCAL_ROOT", "./uploads"),
			SignedURLTTL:  getEnvAsDuration("SIGNED_URL_TTL", time.Hour),
		},
		Mail: MailConfig{
			SESEnabled: getEnvAsBool("SES_ENABLED", false),
			SESRegion:  getEnv("SES_REGION", "us-east-1"),
			Sender:     getEnv("MAIL_SENDER", ""),
		},
		Cooking: CookingConfig{
			DefaultBoilSeconds: getEnvAsInt("DEFAULT_BOIL_SECONDS", 480),
			TickInterval:       getEnvAsDuration("TIMER_TICK_INTERVAL", time.Second),
			IdleTimeout:        getEnvAsDuration("COOKING_IDLE_TIMEOUT", 6*time.Hour),
		},
		Backend: BackendConfig{
			DashboardURL: getEnv("BACKEND_DASHBOARD_URL", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.BaseURL == "" {
		return fmt.Errorf("base URL is required")
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}

	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.Database.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("JWT secret is required and must be at least 32 bytes")
	}

	if c.Auth.SessionTTL <= 0 || c.Auth.MagicLinkTTL <= 0 {
		return fmt.Errorf("session and magic link TTLs must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if c.Storage.S3Enabled {
		if c.Storage.S3Bucket == "" {
			return fmt.Errorf("S3 bucket is required when S3 is enabled")
		}
		if c.Storage.S3Region == "" {
			return fmt.Errorf("S3 region is required when S3 is enabled")
		}
	}

	if c.Storage.LocalRoot == "" {
		return fmt.Errorf("local storage root is required")
	}

	if c.Storage.SignedURLTTL <= 0 {
		return fmt.Errorf("signed URL TTL must be positive")
	}

	if c.Mail.SESEnabled && c.Mail.Sender == "" {
		return fmt.Errorf("mail sender is required when SES is enabled")
	}

	if c.Cooking.DefaultBoilSeconds < 1 {
		return fmt.Errorf("default boil seconds must be at least 1")
	}

	if c.Cooking.TickInterval <= 0 {
		return fmt.Errorf("timer tick interval must be positive")
	}

	if c.Cooking.IdleTimeout < 0 {
		return fmt.Errorf("cooking idle timeout cannot be negative")
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go duration strings such as "15m" or "720h".
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
