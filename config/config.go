package config

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds the full application configuration loaded from environment variables or .env file.
//
// It is composed of smaller structs that represent different concerns of the system:
// the HTTP server, the PostgreSQL store, the Redis cache, the remote report site and
// the background ingestion queue.
//
// Example ENV equivalent:
//
//	SERVER_PORT=8080
//	POSTGRES_HOST=localhost
//	POSTGRES_DB=spimex
//	REDIS_URL=redis://localhost:6379/0
//	REPORTS_BASE_URL=https://spimex.com
//	CACHE_RESET_TIME=14:11
type Config struct {
	Server     ServerConfig     // HTTP server configuration
	Postgres   PostgresConfig   // PostgreSQL connection settings
	Redis      RedisConfig      // Cache backend
	Reports    ReportsConfig    // Remote report site and local staging
	Cache      CacheConfig      // Freshness boundary of cached query results
	Ingestion  IngestionConfig  // Background ingestion queue
	Migrations MigrationsConfig // Schema migrations
}

// ServerConfig holds HTTP server settings such as the port to listen on.
type ServerConfig struct {
	Port           string        // The TCP port the HTTP server will listen on (e.g., "8080")
	RateLimitRPS   float64       // Requests per second allowed per client IP; 0 disables limiting
	RateLimitBurst int           // Token bucket size per client IP
	RequestTimeout time.Duration // Upper bound for a single read request
}

// PostgresConfig defines connection details for PostgreSQL.
//
// Fields:
//   - Host: hostname of the database server.
//   - Port: port number of the database server (default 5432).
//   - User: username for authentication.
//   - Password: password for authentication.
//   - DBName: target database name.
//   - SSLMode: SSL mode (e.g., "disable", "require").
//   - URL: computed DSN used by database/sql to connect.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	URL      string
}

// RedisConfig points at the Redis instance used as query cache.
type RedisConfig struct {
	URL string // redis://[:password@]host:port/db
}

// ReportsConfig describes where daily trading reports live and how they are fetched.
//
// Fields:
//   - BaseURL: scheme+host of the exchange site.
//   - Dir: staging directory for downloaded files.
//   - LookbackDays: extra calendar days the locator may walk back beyond n.
//   - ProbeRate / ProbeBurst: pacing of existence probes (requests per second).
//   - HTTPTimeout: per-request timeout for probes and downloads.
type ReportsConfig struct {
	BaseURL      string
	Dir          string
	LookbackDays int
	ProbeRate    float64
	ProbeBurst   int
	HTTPTimeout  time.Duration
}

// CacheConfig defines the daily wall-clock instant at which cached results go stale.
type CacheConfig struct {
	ResetHour   int
	ResetMinute int
	Timezone    string
}

// IngestionConfig sizes the background ingestion queue.
type IngestionConfig struct {
	QueueSize int
}

// MigrationsConfig controls whether migrations run on API startup.
type MigrationsConfig struct {
	Auto bool
}

// AppConfig is the globally accessible configuration instance.
//
// It is populated once via LoadConfig() and used throughout the application.
var AppConfig Config

// LoadConfig initializes the global AppConfig by reading from .env file
// or directly from environment variables.
//
// Precedence (from lowest to highest):
//  1. Defaults set in this function.
//  2. Values from .env file (if present).
//  3. Environment variables.
//
// Fatal exit:
//   - If required variables are missing or malformed, validateConfig() terminates the app.
func LoadConfig() {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_RATE_LIMIT_RPS", 10.0)
	viper.SetDefault("SERVER_RATE_LIMIT_BURST", 20)
	viper.SetDefault("SERVER_REQUEST_TIMEOUT", "15s")

	viper.SetDefault("POSTGRES_HOST", "localhost")
	viper.SetDefault("POSTGRES_PORT", 5432)
	viper.SetDefault("POSTGRES_USER", "postgres")
	viper.SetDefault("POSTGRES_PASSWORD", "postgres")
	viper.SetDefault("POSTGRES_DB", "spimex")
	viper.SetDefault("POSTGRES_SSLMODE", "disable")

	viper.SetDefault("REDIS_URL", "redis://localhost:6379/0")

	viper.SetDefault("REPORTS_BASE_URL", "https://spimex.com")
	viper.SetDefault("REPORTS_DIR", "./data/reports")
	viper.SetDefault("REPORTS_LOOKBACK_DAYS", 14)
	viper.SetDefault("REPORTS_PROBE_RATE", 5.0)
	viper.SetDefault("REPORTS_PROBE_BURST", 5)
	viper.SetDefault("REPORTS_HTTP_TIMEOUT", "30s")

	viper.SetDefault("CACHE_RESET_TIME", "14:11")
	viper.SetDefault("CACHE_TIMEZONE", "Europe/Moscow")

	viper.SetDefault("INGESTION_QUEUE_SIZE", 8)
	viper.SetDefault("MIGRATIONS_AUTO", true)

	// Optionally read from .env if present (common in local dev)
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()

	hour, minute, err := parseClock(viper.GetString("CACHE_RESET_TIME"))
	if err != nil {
		log.Fatalf("invalid CACHE_RESET_TIME: %v", err)
	}

	AppConfig = Config{
		Server: ServerConfig{
			Port:           viper.GetString("SERVER_PORT"),
			RateLimitRPS:   viper.GetFloat64("SERVER_RATE_LIMIT_RPS"),
			RateLimitBurst: viper.GetInt("SERVER_RATE_LIMIT_BURST"),
			RequestTimeout: viper.GetDuration("SERVER_REQUEST_TIMEOUT"),
		},
		Postgres: PostgresConfig{
			Host:     viper.GetString("POSTGRES_HOST"),
			Port:     viper.GetInt("POSTGRES_PORT"),
			User:     viper.GetString("POSTGRES_USER"),
			Password: viper.GetString("POSTGRES_PASSWORD"),
			DBName:   viper.GetString("POSTGRES_DB"),
			SSLMode:  viper.GetString("POSTGRES_SSLMODE"),
		},
		Redis: RedisConfig{
			URL: viper.GetString("REDIS_URL"),
		},
		Reports: ReportsConfig{
			BaseURL:      viper.GetString("REPORTS_BASE_URL"),
			Dir:          viper.GetString("REPORTS_DIR"),
			LookbackDays: viper.GetInt("REPORTS_LOOKBACK_DAYS"),
			ProbeRate:    viper.GetFloat64("REPORTS_PROBE_RATE"),
			ProbeBurst:   viper.GetInt("REPORTS_PROBE_BURST"),
			HTTPTimeout:  viper.GetDuration("REPORTS_HTTP_TIMEOUT"),
		},
		Cache: CacheConfig{
			ResetHour:   hour,
			ResetMinute: minute,
			Timezone:    viper.GetString("CACHE_TIMEZONE"),
		},
		Ingestion: IngestionConfig{
			QueueSize: viper.GetInt("INGESTION_QUEUE_SIZE"),
		},
		Migrations: MigrationsConfig{
			Auto: viper.GetBool("MIGRATIONS_AUTO"),
		},
	}

	AppConfig.Postgres.URL = fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		AppConfig.Postgres.User,
		AppConfig.Postgres.Password,
		AppConfig.Postgres.Host,
		AppConfig.Postgres.Port,
		AppConfig.Postgres.DBName,
		AppConfig.Postgres.SSLMode,
	)

	validateConfig()
}

// Location resolves the cache time zone, falling back to UTC when it is unknown.
func (c CacheConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// parseClock parses "HH:MM" into hour and minute.
func parseClock(s string) (int, int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("expected HH:MM, got %q", s)
	}
	return t.Hour(), t.Minute(), nil
}

// validateConfig ensures required variables are present and terminates
// the application if they are missing.
func validateConfig() {
	var missing []string

	if AppConfig.Server.Port == "" {
		missing = append(missing, "SERVER_PORT")
	}
	if AppConfig.Postgres.Host == "" {
		missing = append(missing, "POSTGRES_HOST")
	}
	if AppConfig.Postgres.Port == 0 {
		missing = append(missing, "POSTGRES_PORT")
	}
	if AppConfig.Postgres.User == "" {
		missing = append(missing, "POSTGRES_USER")
	}
	if AppConfig.Postgres.Password == "" {
		missing = append(missing, "POSTGRES_PASSWORD")
	}
	if AppConfig.Postgres.DBName == "" {
		missing = append(missing, "POSTGRES_DB")
	}
	if AppConfig.Redis.URL == "" {
		missing = append(missing, "REDIS_URL")
	}
	if AppConfig.Reports.BaseURL == "" {
		missing = append(missing, "REPORTS_BASE_URL")
	}
	if AppConfig.Reports.Dir == "" {
		missing = append(missing, "REPORTS_DIR")
	}

	if len(missing) > 0 {
		log.Fatalf("missing required environment variables: %v\n", missing)
	}
}
