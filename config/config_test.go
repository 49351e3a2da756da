package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"klineDataCore/internal/adapters/logger"
	"klineDataCore/internal/domain"
)

func setEnv(t *testing.T, env map[string]string) {
	t.Helper()
	for k, v := range env {
		t.Setenv(k, v)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	setEnv(t, map[string]string{"KLINE_API_PRIMARY_URL": "https://klines.example.com"})

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, SourceHTTP, cfg.DataSource)
	assert.Equal(t, []domain.Timeframe{domain.Timeframe1h, domain.Timeframe12h, domain.Timeframe1d}, cfg.PrimaryTimeframes)
	assert.Equal(t, []domain.Timeframe{domain.Timeframe1h, domain.Timeframe4h, domain.Timeframe1d}, cfg.Timeframes)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 60*time.Second, cfg.StaleThreshold)
	assert.Equal(t, 400, cfg.MaxCandles)
	assert.Equal(t, CacheSQLite, cfg.CacheBackend)
	assert.Equal(t, logger.LevelInfo, cfg.LogLevel)
	assert.Equal(t, LogFormatText, cfg.LogFormat)
	assert.Empty(t, cfg.MetricsAddr)
}

func TestLoadConfig_Overrides(t *testing.T) {
	setEnv(t, map[string]string{
		"DATA_SOURCE":              "BINANCE",
		"SYMBOLS":                  "btcusdt, ethusdt,,solusdt",
		"KLINE_LIMIT":              "1000",
		"CACHE_BACKEND":            "redis",
		"REDIS_ADDR":               "localhost:6379",
		"REDIS_DB":                 "2",
		"TIMEFRAMES":               "15m,4h",
		"REFRESH_INTERVAL_SECONDS": "30",
		"STALE_THRESHOLD_SECONDS":  "0",
		"PIPELINE_WORKERS":         "8",
		"LOG_LEVEL":                "debug",
		"LOG_FORMAT":               "json",
		"METRICS_ADDR":             ":9100",
	})

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, SourceBinance, cfg.DataSource)
	assert.Equal(t, []string{"btcusdt", "ethusdt", "solusdt"}, cfg.Symbols)
	assert.Equal(t, 1000, cfg.KlineLimit)
	assert.Equal(t, CacheRedis, cfg.CacheBackend)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, []domain.Timeframe{domain.Timeframe15m, domain.Timeframe4h}, cfg.Timeframes)
	assert.Equal(t, 30*time.Second, cfg.RefreshInterval)
	assert.Zero(t, cfg.StaleThreshold)
	assert.Equal(t, 8, cfg.PipelineWorkers)
	assert.Equal(t, logger.LevelDebug, cfg.LogLevel)
	assert.Equal(t, LogFormatJSON, cfg.LogFormat)
	assert.Equal(t, ":9100", cfg.MetricsAddr)
}

func TestLoadConfig_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantMsg string
	}{
		{"http source without url", map[string]string{}, "KLINE_API_PRIMARY_URL or KLINE_API_SECONDARY_URL must be set"},
		{"unknown source", map[string]string{"DATA_SOURCE": "ftp"}, "DATA_SOURCE must be"},
		{"bad timeframe", map[string]string{"KLINE_API_PRIMARY_URL": "http://x", "TIMEFRAMES": "1h,2w"}, "invalid TIMEFRAMES"},
		{"redis without addr", map[string]string{"KLINE_API_PRIMARY_URL": "http://x", "CACHE_BACKEND": "redis"}, "REDIS_ADDR must be set"},
		{"bad kline limit", map[string]string{"KLINE_API_PRIMARY_URL": "http://x", "KLINE_LIMIT": "abc"}, "invalid KLINE_LIMIT"},
		{"kline limit too high", map[string]string{"KLINE_API_PRIMARY_URL": "http://x", "KLINE_LIMIT": "2000"}, "KLINE_LIMIT must be between"},
		{"zero workers", map[string]string{"KLINE_API_PRIMARY_URL": "http://x", "PIPELINE_WORKERS": "0"}, "PIPELINE_WORKERS must be positive"},
		{"bad log format", map[string]string{"KLINE_API_PRIMARY_URL": "http://x", "LOG_FORMAT": "xml"}, "LOG_FORMAT must be"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("KLINE_API_PRIMARY_URL", "")
			setEnv(t, tt.env)

			cfg, err := LoadConfig()
			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestLoadConfig_CollectsAllErrors(t *testing.T) {
	setEnv(t, map[string]string{
		"DATA_SOURCE":      "ftp",
		"PIPELINE_WORKERS": "-1",
		"MAX_CANDLES":      "0",
	})

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATA_SOURCE")
	assert.Contains(t, err.Error(), "PIPELINE_WORKERS")
	assert.Contains(t, err.Error(), "MAX_CANDLES")
}
