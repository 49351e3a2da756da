package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"klineDataCore/internal/adapters/logger"
	"klineDataCore/internal/domain"
)

// Data sources.
const (
	SourceHTTP    = "http"
	SourceBinance = "binance"
)

// Cache backends.
const (
	CacheSQLite = "sqlite"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// Log formats.
const (
	LogFormatText    = "text"
	LogFormatJSON    = "json"
	LogFormatConsole = "console"
)

// Config holds all application configuration.
type Config struct {
	// Source selection
	DataSource string

	// Kline cache API
	PrimaryURL        string
	SecondaryURL      string
	PrimaryTimeframes []domain.Timeframe
	APIToken          string
	HTTPTimeout       time.Duration
	HTTPMaxRetries    int
	HTTPRatePerSec    float64

	// Binance API
	APIKey     string
	SecretKey  string
	IsTestnet  bool
	Symbols    []string
	KlineLimit int

	// Snapshot cache
	CacheBackend  string
	DBPath        string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Service
	Timeframes      []domain.Timeframe
	RefreshInterval time.Duration
	StaleThreshold  time.Duration // cached snapshot is fresh while closeTime + StaleThreshold >= now
	PipelineWorkers int
	MaxCandles      int
	MetricsAddr     string // empty disables the metrics endpoint

	// Logging
	LogLevel  logger.LogLevel
	LogFormat string
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string // Collect validation errors

	cfg.DataSource = strings.ToLower(getEnv("DATA_SOURCE", SourceHTTP))

	// Kline cache API
	cfg.PrimaryURL = getEnv("KLINE_API_PRIMARY_URL", "")
	cfg.SecondaryURL = getEnv("KLINE_API_SECONDARY_URL", "")
	cfg.APIToken = getEnv("KLINE_API_TOKEN", "")
	cfg.PrimaryTimeframes, err = parseTimeframes(getEnvAsList("KLINE_API_PRIMARY_TIMEFRAMES", []string{"1h", "12h", "1d"}))
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid KLINE_API_PRIMARY_TIMEFRAMES: %v", err))
	}

	httpTimeoutSeconds, err := getEnvAsIntRequired("HTTP_TIMEOUT_SECONDS", 30)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid HTTP_TIMEOUT_SECONDS: %v", err))
	} else if httpTimeoutSeconds <= 0 {
		errs = append(errs, "HTTP_TIMEOUT_SECONDS must be positive")
	}
	cfg.HTTPTimeout = time.Duration(httpTimeoutSeconds) * time.Second

	cfg.HTTPMaxRetries = getEnvAsInt("HTTP_MAX_RETRIES", 2)
	if cfg.HTTPMaxRetries < 0 {
		errs = append(errs, "HTTP_MAX_RETRIES cannot be negative")
	}
	cfg.HTTPRatePerSec, err = getEnvAsFloatRequired("HTTP_REQUESTS_PER_SEC", 5)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid HTTP_REQUESTS_PER_SEC: %v", err))
	}

	// Binance API
	cfg.APIKey = getEnv("BINANCE_API_KEY", "")
	cfg.SecretKey = getEnv("BINANCE_API_SECRET", "")
	cfg.IsTestnet = getEnvAsBool("IS_TESTNET", false)
	cfg.Symbols = getEnvAsList("SYMBOLS", []string{"BTCUSDT", "ETHUSDT"})
	cfg.KlineLimit, err = getEnvAsIntRequired("KLINE_LIMIT", 500)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid KLINE_LIMIT: %v", err))
	} else if cfg.KlineLimit <= 0 || cfg.KlineLimit > 1500 {
		errs = append(errs, "KLINE_LIMIT must be between 1 and 1500")
	}

	switch cfg.DataSource {
	case SourceHTTP:
		if cfg.PrimaryURL == "" && cfg.SecondaryURL == "" {
			errs = append(errs, "KLINE_API_PRIMARY_URL or KLINE_API_SECONDARY_URL must be set for the http source")
		}
	case SourceBinance:
		if len(cfg.Symbols) == 0 {
			errs = append(errs, "SYMBOLS must be set for the binance source")
		}
	default:
		errs = append(errs, fmt.Sprintf("DATA_SOURCE must be %q or %q, got %q", SourceHTTP, SourceBinance, cfg.DataSource))
	}

	// Snapshot cache
	cfg.CacheBackend = strings.ToLower(getEnv("CACHE_BACKEND", CacheSQLite))
	cfg.DBPath = getEnv("DB_PATH", "./data/datacore.db")
	cfg.RedisAddr = getEnv("REDIS_ADDR", "")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.RedisDB = getEnvAsInt("REDIS_DB", 0)
	switch cfg.CacheBackend {
	case CacheSQLite:
		if cfg.DBPath == "" {
			errs = append(errs, "DB_PATH must be set")
		}
	case CacheRedis:
		if cfg.RedisAddr == "" {
			errs = append(errs, "REDIS_ADDR must be set for the redis cache")
		}
	case CacheNone:
	default:
		errs = append(errs, fmt.Sprintf("CACHE_BACKEND must be one of sqlite, redis, none, got %q", cfg.CacheBackend))
	}

	// Service
	cfg.Timeframes, err = parseTimeframes(getEnvAsList("TIMEFRAMES", []string{"1h", "4h", "1d"}))
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid TIMEFRAMES: %v", err))
	} else if len(cfg.Timeframes) == 0 {
		errs = append(errs, "TIMEFRAMES must list at least one timeframe")
	}

	refreshSeconds := getEnvAsInt("REFRESH_INTERVAL_SECONDS", 60)
	if refreshSeconds <= 0 {
		errs = append(errs, "REFRESH_INTERVAL_SECONDS must be positive")
	}
	cfg.RefreshInterval = time.Duration(refreshSeconds) * time.Second

	staleSeconds := getEnvAsInt("STALE_THRESHOLD_SECONDS", 60)
	if staleSeconds < 0 {
		errs = append(errs, "STALE_THRESHOLD_SECONDS cannot be negative")
	}
	cfg.StaleThreshold = time.Duration(staleSeconds) * time.Second

	cfg.PipelineWorkers = getEnvAsInt("PIPELINE_WORKERS", 4)
	if cfg.PipelineWorkers <= 0 {
		errs = append(errs, "PIPELINE_WORKERS must be positive")
	}
	cfg.MaxCandles = getEnvAsInt("MAX_CANDLES", 400)
	if cfg.MaxCandles <= 0 {
		errs = append(errs, "MAX_CANDLES must be positive")
	}
	cfg.MetricsAddr = getEnv("METRICS_ADDR", "")

	// Logging
	cfg.LogLevel = logger.ParseLevel(getEnv("LOG_LEVEL", "INFO"))
	cfg.LogFormat = strings.ToLower(getEnv("LOG_FORMAT", LogFormatText))
	switch cfg.LogFormat {
	case LogFormatText, LogFormatJSON, LogFormatConsole:
	default:
		errs = append(errs, fmt.Sprintf("LOG_FORMAT must be text, json or console, got %q", cfg.LogFormat))
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

func parseTimeframes(values []string) ([]domain.Timeframe, error) {
	out := make([]domain.Timeframe, 0, len(values))
	for _, v := range values {
		tf, err := domain.ParseTimeframe(v)
		if err != nil {
			return nil, err
		}
		out = append(out, tf)
	}
	return out, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsList splits a comma separated value, dropping blanks.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
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

func getEnvAsIntRequired(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsFloatRequired(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
