// Package bootstrap builds the adapters selected by configuration.
package bootstrap

import (
	"fmt"
	"os"

	"klineDataCore/config"
	"klineDataCore/internal/adapters/binanceclient"
	"klineDataCore/internal/adapters/httpsource"
	"klineDataCore/internal/adapters/logger"
	"klineDataCore/internal/adapters/redis"
	"klineDataCore/internal/adapters/sqlite"
	"klineDataCore/internal/ports"
)

// NewLogger returns the logger implementation named by cfg.LogFormat.
func NewLogger(cfg *config.Config) ports.Logger {
	switch cfg.LogFormat {
	case config.LogFormatJSON:
		return logger.NewZerologLogger(os.Stderr, cfg.LogLevel, false)
	case config.LogFormatConsole:
		return logger.NewZerologLogger(os.Stderr, cfg.LogLevel, true)
	default:
		return logger.NewStdLogger(cfg.LogLevel)
	}
}

// NewSource returns the kline source named by cfg.DataSource.
func NewSource(cfg *config.Config, log ports.Logger) (ports.KlineSource, error) {
	switch cfg.DataSource {
	case config.SourceHTTP:
		client, err := httpsource.NewClient(httpsource.Config{
			PrimaryURL:        cfg.PrimaryURL,
			SecondaryURL:      cfg.SecondaryURL,
			PrimaryTimeframes: cfg.PrimaryTimeframes,
			Token:             cfg.APIToken,
			Timeout:           cfg.HTTPTimeout,
			MaxRetries:        cfg.HTTPMaxRetries,
			RequestsPerSec:    cfg.HTTPRatePerSec,
			Logger:            log,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	case config.SourceBinance:
		client, err := binanceclient.New(binanceclient.Config{
			APIKey:     cfg.APIKey,
			SecretKey:  cfg.SecretKey,
			UseTestnet: cfg.IsTestnet,
			Symbols:    cfg.Symbols,
			Limit:      cfg.KlineLimit,
			Logger:     log,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("%w: unknown data source %q", ports.ErrConfigurationError, cfg.DataSource)
	}
}

// NewRepository returns the snapshot cache named by cfg.CacheBackend, or nil for "none".
func NewRepository(cfg *config.Config, log ports.Logger) (ports.DataCoreRepository, error) {
	switch cfg.CacheBackend {
	case config.CacheSQLite:
		repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: log})
		if err != nil {
			return nil, err
		}
		return repo, nil
	case config.CacheRedis:
		repo, err := redis.NewRepository(redis.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Logger:   log,
		})
		if err != nil {
			return nil, err
		}
		return repo, nil
	case config.CacheNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: unknown cache backend %q", ports.ErrConfigurationError, cfg.CacheBackend)
	}
}
