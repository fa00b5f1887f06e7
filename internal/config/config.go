package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/cmlabs-hris/productivity-backend-go/internal/domain/role"
)

type Config struct {
	Database    DatabaseConfig
	App         AppConfig
	Scoring     ScoringConfig
	DefaultRole DefaultRoleConfig
	Scheduler   SchedulerConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
}

// AppConfig holds application configuration
type AppConfig struct {
	Port               int
	Env                string
	LogLevel           string
	CORSAllowedOrigins []string
}

type ScoringConfig struct {
	// BusinessTimezone is the IANA zone that defines a business day.
	BusinessTimezone string
	// RoleProfilesFile switches the role source from the database to a TOML file.
	RoleProfilesFile string
	BatchWorkers     int
}

// DefaultRoleConfig is the profile unknown role ids resolve to.
type DefaultRoleConfig struct {
	ID                   string
	Name                 string
	Type                 string
	ExpectedPerHour      float64
	IdleThresholdMinutes float64
	Multiplier           float64
}

type SchedulerConfig struct {
	RecalcTodayInterval time.Duration
	RoleRefreshInterval time.Duration
}

// Load reads .env when present, then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	return FromEnv()
}

// FromEnv builds and validates a Config from the process environment.
func FromEnv() (*Config, error) {
	config := &Config{}

	dbPort, err := getEnvInt("DB_PORT", 5432)
	if err != nil {
		return nil, err
	}
	dbMaxConns, err := getEnvInt("DB_MAX_CONNS", 25)
	if err != nil {
		return nil, err
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "productivity"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(dbMaxConns),
	}

	appPort, err := getEnvInt("APP_PORT", 8080)
	if err != nil {
		return nil, err
	}

	config.App = AppConfig{
		Port:               appPort,
		Env:                getEnv("APP_ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS"),
	}

	workers, err := getEnvInt("BATCH_WORKERS", runtime.NumCPU())
	if err != nil {
		return nil, err
	}

	config.Scoring = ScoringConfig{
		BusinessTimezone: getEnv("BUSINESS_TIMEZONE", "America/Chicago"),
		RoleProfilesFile: getEnv("ROLE_PROFILES_FILE", ""),
		BatchWorkers:     workers,
	}

	expectedPerHour, err := getEnvFloat("DEFAULT_EXPECTED_PER_HOUR", 0)
	if err != nil {
		return nil, err
	}
	idleThreshold, err := getEnvFloat("DEFAULT_IDLE_THRESHOLD_MINUTES", role.DefaultContinuousThresholdMinutes)
	if err != nil {
		return nil, err
	}
	multiplier, err := getEnvFloat("DEFAULT_MULTIPLIER", 1)
	if err != nil {
		return nil, err
	}

	config.DefaultRole = DefaultRoleConfig{
		ID:                   getEnv("DEFAULT_ROLE_ID", "default"),
		Name:                 getEnv("DEFAULT_ROLE_NAME", "Default"),
		Type:                 getEnv("DEFAULT_ROLE_TYPE", role.TypeNameContinuous),
		ExpectedPerHour:      expectedPerHour,
		IdleThresholdMinutes: idleThreshold,
		Multiplier:           multiplier,
	}

	recalcToday, err := getEnvDuration("RECALC_TODAY_INTERVAL", time.Hour)
	if err != nil {
		return nil, err
	}
	roleRefresh, err := getEnvDuration("ROLE_REFRESH_INTERVAL", 15*time.Minute)
	if err != nil {
		return nil, err
	}

	config.Scheduler = SchedulerConfig{
		RecalcTodayInterval: recalcToday,
		RoleRefreshInterval: roleRefresh,
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.FallbackProfile(); err != nil {
		return fmt.Errorf("DEFAULT_ROLE_*: %w", err)
	}
	if c.Scoring.BatchWorkers <= 0 {
		return fmt.Errorf("BATCH_WORKERS must be positive")
	}
	if c.Scheduler.RecalcTodayInterval <= 0 {
		return fmt.Errorf("RECALC_TODAY_INTERVAL must be positive")
	}
	if c.Scheduler.RoleRefreshInterval <= 0 {
		return fmt.Errorf("ROLE_REFRESH_INTERVAL must be positive")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// Location loads the business time zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Scoring.BusinessTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid BUSINESS_TIMEZONE %q: %w", c.Scoring.BusinessTimezone, err)
	}
	return loc, nil
}

func (c *Config) FallbackProfile() (role.Profile, error) {
	d := c.DefaultRole
	return role.NewProfile(d.ID, d.Name, d.Type, d.ExpectedPerHour, d.IdleThresholdMinutes, d.Multiplier)
}

// SlogLevel maps LOG_LEVEL onto a slog level; unknown values mean info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
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

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnvSlice(key string) []string {
	value := getEnv(key, "")
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}
