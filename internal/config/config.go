package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	NewRelic  NewRelicConfig
	Auth      AuthConfig
	Push      PushConfig
	Notifier  NotifierConfig
	Dashboard DashboardConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins []string
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN returns the lib/pq connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string
	LicenseKey string
	Enabled    bool
}

// AuthConfig holds JWT configuration.
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// PushConfig holds Firebase Cloud Messaging configuration.
type PushConfig struct {
	// ServiceAccountJSON is the raw service-account key. Empty disables sending.
	ServiceAccountJSON string
}

// Enabled reports whether push credentials are configured.
func (c PushConfig) Enabled() bool {
	return c.ServiceAccountJSON != ""
}

// NotifierConfig holds overdue notifier configuration.
type NotifierConfig struct {
	TimeZone     string
	DedupEnabled bool
	JobKey       string
	RunTimeout   time.Duration
}

// DashboardConfig holds dashboard aggregator configuration.
type DashboardConfig struct {
	TimeZone string
}

// Load loads configuration from environment variables, after applying an
// optional .env file from the working directory.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("failed to load .env: %v", err)
	}

	return &Config{
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "8080"),
			ReadTimeout:    getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:   getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
			AllowedOrigins: getListEnv("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "roadlines"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		NewRelic: NewRelicConfig{
			AppName:    getEnv("NEW_RELIC_APP_NAME", "roadlines"),
			LicenseKey: getEnv("NEW_RELIC_LICENSE_KEY", ""),
			Enabled:    getBoolEnv("NEW_RELIC_ENABLED", false),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			TokenTTL:  getDurationEnv("JWT_TTL", 7*24*time.Hour),
		},
		Push: PushConfig{
			ServiceAccountJSON: getEnv("FIREBASE_SERVICE_ACCOUNT", ""),
		},
		Notifier: NotifierConfig{
			TimeZone:     getEnv("NOTIFIER_TIMEZONE", "UTC"),
			DedupEnabled: getBoolEnv("NOTIFIER_DEDUP_ENABLED", false),
			JobKey:       getEnv("NOTIFIER_JOB_KEY", ""),
			RunTimeout:   getDurationEnv("NOTIFIER_RUN_TIMEOUT", 2*time.Minute),
		},
		Dashboard: DashboardConfig{
			TimeZone: getEnv("DASHBOARD_TIMEZONE", "Asia/Kolkata"),
		},
	}
}

// Validate checks the settings the server cannot run without.
// Missing push credentials only disable sending.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if _, err := time.LoadLocation(c.Notifier.TimeZone); err != nil {
		return fmt.Errorf("NOTIFIER_TIMEZONE: %w", err)
	}
	if _, err := time.LoadLocation(c.Dashboard.TimeZone); err != nil {
		return fmt.Errorf("DASHBOARD_TIMEZONE: %w", err)
	}
	if !c.Push.Enabled() {
		log.Println("FIREBASE_SERVICE_ACCOUNT not set: push notifications are disabled")
	}
	return nil
}

// Location resolves a validated time zone name, falling back to UTC.
func Location(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}
