// Package redis implements the snapshot cache on Redis, one JSON value per timeframe.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"klineDataCore/internal/domain"
	"klineDataCore/internal/ports"
)

// DefaultKeyPrefix namespaces every key written by the repository.
const DefaultKeyPrefix = "datacore:root:"

// Config configures the Redis repository.
type Config struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
	TTL       time.Duration // 0 keeps snapshots until replaced
	Logger    ports.Logger
}

// Repository implements ports.DataCoreRepository.
type Repository struct {
	client *goredis.Client
	prefix string
	ttl    time.Duration
	logger ports.Logger
}

// NewRepository connects to Redis and pings the server.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Redis repository")
	}
	if cfg.Addr == "" {
		return nil, fmt.Errorf("%w: redis address is empty", ports.ErrConfigurationError)
	}
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		err = fmt.Errorf("%w: redis ping %s: %v", ports.ErrDBConnection, cfg.Addr, err)
		cfg.Logger.Error(context.Background(), err, "Redis repository initialization failed")
		return nil, err
	}

	cfg.Logger.Info(context.Background(), "Redis snapshot cache ready", map[string]interface{}{
		"addr":   cfg.Addr,
		"db":     cfg.DB,
		"prefix": prefix,
	})
	return &Repository{client: client, prefix: prefix, ttl: cfg.TTL, logger: cfg.Logger}, nil
}

func (r *Repository) key(timeframe string) string {
	return r.prefix + timeframe
}

// Get returns the cached snapshot of timeframe, or nil when the key is absent.
func (r *Repository) Get(ctx context.Context, timeframe domain.Timeframe) (*domain.DataCoreRoot, error) {
	payload, err := r.client.Get(ctx, r.key(timeframe.String())).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: redis get %s: %v", ports.ErrQueryFailed, timeframe, err)
	}

	var root domain.DataCoreRoot
	if err := json.Unmarshal(payload, &root); err != nil {
		return nil, fmt.Errorf("%w: timeframe %s: %v", ports.ErrCorruptCache, timeframe, err)
	}
	return &root, nil
}

// Save overwrites the snapshot of root.Timeframe.
func (r *Repository) Save(ctx context.Context, root *domain.DataCoreRoot) error {
	if root == nil || root.Timeframe == "" {
		return fmt.Errorf("%w: snapshot without timeframe", ports.ErrInvalidRequest)
	}
	payload, err := json.Marshal(root)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot for %s: %w", root.Timeframe, err)
	}
	if err := r.client.Set(ctx, r.key(root.Timeframe), payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("%w: redis set %s: %v", ports.ErrUpdateFailed, root.Timeframe, err)
	}

	r.logger.Debug(ctx, "Snapshot saved", map[string]interface{}{
		"timeframe": root.Timeframe,
		"closeTime": root.CloseTime,
		"bytes":     len(payload),
	})
	return nil
}

// Clear deletes every key under the repository prefix.
func (r *Repository) Clear(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("%w: redis scan: %v", ports.ErrDeleteFailed, err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: redis del: %v", ports.ErrDeleteFailed, err)
	}
	return nil
}

// Close closes the client.
func (r *Repository) Close() error {
	r.logger.Info(context.Background(), "Closing Redis connection")
	return r.client.Close()
}

var _ ports.DataCoreRepository = (*Repository)(nil)
