// Package config loads server configuration from the environment.
//
// A .env file in the working directory is read first when present; real
// environment variables take precedence over it.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Driver names accepted by DB_DRIVER.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Log       LogConfig
	Payroll   PayrollConfig
	Scheduler SchedulerConfig
}

// AppConfig holds HTTP server configuration
type AppConfig struct {
	Port        int
	CORSOrigins []string
}

type DatabaseConfig struct {
	Driver string
	Path   string // sqlite file
	URL    string // postgres connection string
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string
	Format string // json or text
}

type PayrollConfig struct {
	SummaryWorkers int
}

// SchedulerConfig controls the automatic period-close scheduler
type SchedulerConfig struct {
	Enabled  bool
	Interval time.Duration
}

// Load reads configuration from .env and the environment, then validates it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	config := &Config{}

	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}
	config.App = AppConfig{
		Port:        appPort,
		CORSOrigins: getEnvSlice("CORS_ORIGINS"),
	}

	config.Database = DatabaseConfig{
		Driver: getEnv("DB_DRIVER", DriverSQLite),
		Path:   getEnv("DB_PATH", "payroll.db"),
		URL:    getEnv("DATABASE_URL", ""),
	}

	config.Log = LogConfig{
		Level:  getEnv("LOG_LEVEL", "info"),
		Format: getEnv("LOG_FORMAT", "json"),
	}

	workers, err := strconv.Atoi(getEnv("SUMMARY_WORKERS", "4"))
	if err != nil {
		return nil, fmt.Errorf("invalid SUMMARY_WORKERS: %w", err)
	}
	config.Payroll = PayrollConfig{SummaryWorkers: workers}

	enabled, err := strconv.ParseBool(getEnv("CLOSE_SCHEDULER_ENABLED", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid CLOSE_SCHEDULER_ENABLED: %w", err)
	}
	interval, err := time.ParseDuration(getEnv("CLOSE_SCHEDULER_INTERVAL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid CLOSE_SCHEDULER_INTERVAL: %w", err)
	}
	config.Scheduler = SchedulerConfig{Enabled: enabled, Interval: interval}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.App.Port <= 0 || c.App.Port > 65535 {
		return fmt.Errorf("APP_PORT must be between 1 and 65535, got %d", c.App.Port)
	}
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("DB_PATH is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.Database.Driver)
	}
	if c.Payroll.SummaryWorkers < 1 {
		return fmt.Errorf("SUMMARY_WORKERS must be at least 1")
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("LOG_FORMAT must be json or text")
	}
	if c.Scheduler.Enabled && c.Scheduler.Interval <= 0 {
		return fmt.Errorf("CLOSE_SCHEDULER_INTERVAL must be positive")
	}
	return nil
}

// SlogLevel maps Log.Level to a slog level. Unknown names mean info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
