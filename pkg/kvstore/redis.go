package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisURL            = "redis://localhost:6379/0"
	defaultRedisRetryAttempts  = 3
	defaultRedisRetryInterval  = time.Second
	defaultRedisConnectTimeout = 10 * time.Second
)

// RedisConfig describes how to reach a Redis server used as the durable store,
// typically when the client runs on a shared host rather than a device.
// It is read from the environment as part of the client Config.
type RedisConfig struct {
	ConnectionURL  string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"1s"`
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"10s"`
}

func (c RedisConfig) withDefaults() RedisConfig {
	if c.ConnectionURL == "" {
		c.ConnectionURL = defaultRedisURL
	}
	if c.RetryAttempts <= 0 {
		c.RetryAttempts = defaultRedisRetryAttempts
	}
	if c.RetryInterval <= 0 {
		c.RetryInterval = defaultRedisRetryInterval
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = defaultRedisConnectTimeout
	}
	return c
}

// ConnectRedis parses the URL and pings the server until it answers or the
// retry budget is exhausted.
func ConnectRedis(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	opts, err := redis.ParseURL(cfg.ConnectionURL)
	if err != nil {
		return nil, errors.Join(ErrInvalidRedisURL, err)
	}

	attempts := max(cfg.RetryAttempts, 1)
	for range attempts {
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err == nil {
			return client, nil
		}
		_ = client.Close()

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrRedisNotReady, ctx.Err())
		case <-time.After(cfg.RetryInterval):
		}
	}

	return nil, ErrRedisNotReady
}

// Redis adapts a go-redis client to Store. Values never expire.
type Redis struct {
	db redis.UniversalClient
}

// NewRedis wraps an existing client.
func NewRedis(client redis.UniversalClient) *Redis {
	return &Redis{db: client}
}

func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	v, err := r.db.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("kvstore: redis get: %w", err)
	}
	return v, nil
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := r.db.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("kvstore: redis set: %w", err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := r.db.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("kvstore: redis delete: %w", err)
	}
	return nil
}

// Close terminates the Redis connection.
func (r *Redis) Close() error {
	return r.db.Close()
}

