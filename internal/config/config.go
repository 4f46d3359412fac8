package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	Environment string

	DatabaseURL    string
	DBMaxOpenConns int
	DBMaxIdleConns int

	RedisURL string

	JWTSecret string

	MinIOEndpoint       string
	MinIOAccessKey      string
	MinIOSecretKey      string
	MinIOBucket         string
	MinIOUseSSL         bool
	MinIOArchiveEnabled bool

	CORSOrigins string

	LogLevel  string
	LogFormat string

	ResendAPIKey      string
	FromEmail         string
	FromName          string
	DispatchBatchSize int

	EngineTimezone         string
	EngineDailyRunAt       string
	EngineReminderInterval time.Duration
	EngineDispatchInterval time.Duration
	EngineRunOnStart       bool

	RateLimitRequests int
	RateLimitWindow   time.Duration

	MessagesPath   string
	MessagesLocale string

	location *time.Location
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		DatabaseURL:    getEnv("DATABASE_URL", ""),
		DBMaxOpenConns: getIntEnv("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns: getIntEnv("DB_MAX_IDLE_CONNS", 5),

		RedisURL: getEnv("REDIS_URL", ""),

		JWTSecret: getEnv("JWT_SECRET", ""),

		MinIOEndpoint:       getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinIOAccessKey:      getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		MinIOSecretKey:      getEnv("MINIO_SECRET_KEY", "minioadmin"),
		MinIOBucket:         getEnv("MINIO_BUCKET", "crm-notification-archive"),
		MinIOUseSSL:         getBoolEnv("MINIO_USE_SSL", false),
		MinIOArchiveEnabled: getBoolEnv("MINIO_ARCHIVE_ENABLED", false),

		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:5173"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		ResendAPIKey:      getEnv("RESEND_API_KEY", ""),
		FromEmail:         getEnv("FROM_EMAIL", "noreply@example.com"),
		FromName:          getEnv("FROM_NAME", "CRM Notifications"),
		DispatchBatchSize: getIntEnv("DISPATCH_BATCH_SIZE", 100),

		EngineTimezone:         getEnv("ENGINE_TIMEZONE", "UTC"),
		EngineDailyRunAt:       getEnv("ENGINE_DAILY_RUN_AT", "00:05"),
		EngineReminderInterval: getDurationEnv("ENGINE_REMINDER_INTERVAL", 5*time.Minute),
		EngineDispatchInterval: getDurationEnv("ENGINE_DISPATCH_INTERVAL", time.Minute),
		EngineRunOnStart:       getBoolEnv("ENGINE_RUN_ON_START", false),

		RateLimitRequests: getIntEnv("RATE_LIMIT_REQUESTS", 5),
		RateLimitWindow:   getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),

		MessagesPath:   getEnv("MESSAGES_PATH", ""),
		MessagesLocale: getEnv("MESSAGES_LOCALE", "en"),
	}
}

// Validate checks the settings the engine cannot run without and caches the
// parsed timezone.
func (c *Config) Validate() error {
	var errs []error

	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}

	loc, err := time.LoadLocation(c.EngineTimezone)
	if err != nil {
		errs = append(errs, fmt.Errorf("ENGINE_TIMEZONE: %w", err))
	} else {
		c.location = loc
	}

	if _, _, err := c.DailyRunAt(); err != nil {
		errs = append(errs, err)
	}

	if c.EngineReminderInterval < 0 || c.EngineDispatchInterval < 0 {
		errs = append(errs, errors.New("engine intervals must not be negative"))
	}
	if c.RateLimitRequests < 1 {
		errs = append(errs, errors.New("RATE_LIMIT_REQUESTS must be at least 1"))
	}

	return errors.Join(errs...)
}

// Location is the timezone calendar days are computed in. UTC until
// Validate has parsed ENGINE_TIMEZONE.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// DailyRunAt parses ENGINE_DAILY_RUN_AT ("HH:MM").
func (c *Config) DailyRunAt() (hour, minute int, err error) {
	parts := strings.Split(c.EngineDailyRunAt, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("ENGINE_DAILY_RUN_AT %q: want HH:MM", c.EngineDailyRunAt)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("ENGINE_DAILY_RUN_AT %q: bad hour", c.EngineDailyRunAt)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("ENGINE_DAILY_RUN_AT %q: bad minute", c.EngineDailyRunAt)
	}
	return hour, minute, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}
