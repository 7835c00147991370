package cache

import (
	"context"
	"errors"
	"fmt"
)

// Backend names accepted by [Open].
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Config selects and configures a cache backend.
type Config struct {
	Backend string      `toml:"backend"`
	Dir     string      `toml:"dir"`
	Redis   RedisConfig `toml:"redis"`
	Mongo   MongoConfig `toml:"mongo"`
}

// Open creates the backend named by cfg.Backend. An empty backend means file.
func Open(ctx context.Context, cfg Config) (Cache, error) {
	switch cfg.Backend {
	case BackendNone:
		return NewNullCache(), nil
	case BackendFile, "":
		if cfg.Dir == "" {
			return nil, fmt.Errorf("file cache requires a directory")
		}
		c, err := NewFileCache(cfg.Dir)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendRedis:
		var c *RedisCache
		err := RetryWithBackoff(ctx, func() error {
			var err error
			c, err = NewRedisCache(ctx, cfg.Redis)
			return retryUnavailable(err)
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendMongo:
		var c *MongoCache
		err := RetryWithBackoff(ctx, func() error {
			var err error
			c, err = NewMongoCache(ctx, cfg.Mongo)
			return retryUnavailable(err)
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("%w: %q (must be none, file, redis or mongo)", ErrUnknownBackend, cfg.Backend)
	}
}

// retryUnavailable marks connection failures as retryable. Configuration
// errors fail immediately.
func retryUnavailable(err error) error {
	if errors.Is(err, ErrUnavailable) {
		return Retryable(err)
	}
	return err
}
