package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"klineDataCore/config"
	"klineDataCore/internal/adapters/logger"
	"klineDataCore/internal/domain"
	"klineDataCore/internal/ports"
)

func TestNewLogger(t *testing.T) {
	assert.IsType(t, &logger.StdLogger{}, NewLogger(&config.Config{LogFormat: config.LogFormatText}))
	assert.IsType(t, &logger.ZerologLogger{}, NewLogger(&config.Config{LogFormat: config.LogFormatJSON}))
	assert.IsType(t, &logger.ZerologLogger{}, NewLogger(&config.Config{LogFormat: config.LogFormatConsole}))
}

func TestNewSource(t *testing.T) {
	log := logger.NewStdLogger(logger.LevelError)

	src, err := NewSource(&config.Config{
		DataSource:        config.SourceHTTP,
		PrimaryURL:        "http://localhost:8080",
		PrimaryTimeframes: []domain.Timeframe{domain.Timeframe1h},
	}, log)
	require.NoError(t, err)
	assert.Equal(t, "http", src.Name())

	src, err = NewSource(&config.Config{DataSource: config.SourceBinance, Symbols: []string{"BTCUSDT"}}, log)
	require.NoError(t, err)
	assert.Equal(t, "binance", src.Name())

	_, err = NewSource(&config.Config{DataSource: "ftp"}, log)
	assert.ErrorIs(t, err, ports.ErrConfigurationError)
}

func TestNewRepository(t *testing.T) {
	log := logger.NewStdLogger(logger.LevelError)

	repo, err := NewRepository(&config.Config{CacheBackend: config.CacheNone}, log)
	require.NoError(t, err)
	assert.Nil(t, repo)

	repo, err = NewRepository(&config.Config{
		CacheBackend: config.CacheSQLite,
		DBPath:       filepath.Join(t.TempDir(), "cache.db"),
	}, log)
	require.NoError(t, err)
	defer repo.Close()
	got, err := repo.Get(context.Background(), domain.Timeframe1h)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = NewRepository(&config.Config{CacheBackend: "memcached"}, log)
	assert.ErrorIs(t, err, ports.ErrConfigurationError)
}
