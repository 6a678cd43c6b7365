package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tullogher/gaa-fixtures/internal/platform/logging"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                        string
	ServiceName                   string
	ServiceVersion                string
	HTTPAddr                      string
	DBPath                        string
	ClubID                        int
	CountyBoardID                 int
	FixturesBaseURL               string
	FixturesTimeout               time.Duration
	FixturesMaxRetries            int
	FixturesCircuitFailureCount   int
	FixturesCircuitOpenTimeout    time.Duration
	FixturesCircuitHalfOpenMaxReq int
	SchedulerEnabled              bool
	FetchInterval                 time.Duration
	CacheEnabled                  bool
	CacheTTL                      time.Duration
	CORSAllowedOrigins            []string
	ReadTimeout                   time.Duration
	WriteTimeout                  time.Duration
	LogLevel                      logging.Level
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	clubID, err := getEnvAsInt("CLUB_ID", 0)
	if err != nil {
		return Config{}, fmt.Errorf("parse CLUB_ID: %w", err)
	}
	if clubID < 1 {
		return Config{}, fmt.Errorf("CLUB_ID must be >= 1")
	}

	countyBoardID, err := getEnvAsInt("COUNTY_BOARD_ID", 0)
	if err != nil {
		return Config{}, fmt.Errorf("parse COUNTY_BOARD_ID: %w", err)
	}
	if countyBoardID < 1 {
		return Config{}, fmt.Errorf("COUNTY_BOARD_ID must be >= 1")
	}

	fixturesTimeout, err := time.ParseDuration(getEnv("FIXTURES_TIMEOUT", "20s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FIXTURES_TIMEOUT: %w", err)
	}
	if fixturesTimeout <= 0 {
		return Config{}, fmt.Errorf("FIXTURES_TIMEOUT must be > 0")
	}

	fixturesMaxRetries, err := getEnvAsInt("FIXTURES_MAX_RETRIES", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse FIXTURES_MAX_RETRIES: %w", err)
	}
	if fixturesMaxRetries < 0 {
		return Config{}, fmt.Errorf("FIXTURES_MAX_RETRIES must be >= 0")
	}

	fixturesCircuitFailureCount, err := getEnvAsInt("FIXTURES_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse FIXTURES_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if fixturesCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("FIXTURES_CIRCUIT_FAILURE_COUNT must be >= 1")
	}

	fixturesCircuitOpenTimeout, err := time.ParseDuration(getEnv("FIXTURES_CIRCUIT_OPEN_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FIXTURES_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if fixturesCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("FIXTURES_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}

	fixturesCircuitHalfOpenMaxReq, err := getEnvAsInt("FIXTURES_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse FIXTURES_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if fixturesCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("FIXTURES_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	schedulerEnabled, err := strconv.ParseBool(getEnv("SCHEDULER_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SCHEDULER_ENABLED: %w", err)
	}

	fetchIntervalMinutes, err := getEnvAsInt("FETCH_INTERVAL_MINUTES", 30)
	if err != nil {
		return Config{}, fmt.Errorf("parse FETCH_INTERVAL_MINUTES: %w", err)
	}
	if fetchIntervalMinutes < 1 {
		return Config{}, fmt.Errorf("FETCH_INTERVAL_MINUTES must be >= 1")
	}

	cacheEnabled, err := strconv.ParseBool(getEnv("CACHE_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}

	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_TTL: %w", err)
	}
	if cacheTTL <= 0 {
		return Config{}, fmt.Errorf("CACHE_TTL must be > 0")
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}

	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	cfg := Config{
		AppEnv:                        appEnv,
		ServiceName:                   getEnv("APP_SERVICE_NAME", "gaa-fixtures-api"),
		ServiceVersion:                getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                      getEnv("APP_HTTP_ADDR", ":8080"),
		DBPath:                        strings.TrimSpace(getEnv("DB_PATH", "fixtures.db")),
		ClubID:                        clubID,
		CountyBoardID:                 countyBoardID,
		FixturesBaseURL:               strings.TrimSpace(getEnv("FIXTURES_BASE_URL", "https://www.gaa.ie/api/fixtures")),
		FixturesTimeout:               fixturesTimeout,
		FixturesMaxRetries:            fixturesMaxRetries,
		FixturesCircuitFailureCount:   fixturesCircuitFailureCount,
		FixturesCircuitOpenTimeout:    fixturesCircuitOpenTimeout,
		FixturesCircuitHalfOpenMaxReq: fixturesCircuitHalfOpenMaxReq,
		SchedulerEnabled:              schedulerEnabled,
		FetchInterval:                 time.Duration(fetchIntervalMinutes) * time.Minute,
		CacheEnabled:                  cacheEnabled,
		CacheTTL:                      cacheTTL,
		CORSAllowedOrigins:            splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		ReadTimeout:                   readTimeout,
		WriteTimeout:                  writeTimeout,
		LogLevel:                      parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
	}

	if cfg.DBPath == "" {
		return Config{}, fmt.Errorf("DB_PATH cannot be empty")
	}
	if cfg.FixturesBaseURL == "" {
		return Config{}, fmt.Errorf("FIXTURES_BASE_URL cannot be empty")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	return cfg, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
