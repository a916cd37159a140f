package kvstore

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Driver names accepted by Open.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// OpenOption configures Open.
type OpenOption func(*openOptions)

type openOptions struct {
	redis RedisConfig
}

// WithRedisConfig sets the connection settings of the redis driver. Zero
// fields keep their defaults; a non-empty location passed to Open replaces
// ConnectionURL.
func WithRedisConfig(cfg RedisConfig) OpenOption {
	return func(o *openOptions) {
		o.redis = cfg
	}
}

// Open builds a Store for driver. location is a file path for the file and
// sqlite drivers (empty selects the XDG data directory) and a redis URL for
// the redis driver. It is ignored for memory.
func Open(ctx context.Context, driver, location string, opts ...OpenOption) (Store, error) {
	o := &openOptions{}
	for _, opt := range opts {
		opt(o)
	}

	switch strings.ToLower(driver) {
	case DriverMemory:
		return NewMemory(), nil
	case DriverFile, "":
		if location == "" {
			p, err := DefaultFilePath()
			if err != nil {
				return nil, fmt.Errorf("kvstore: resolve default path: %w", err)
			}
			location = p
		}
		return NewFile(location)
	case DriverSQLite:
		if location == "" {
			p, err := DefaultFilePath()
			if err != nil {
				return nil, fmt.Errorf("kvstore: resolve default path: %w", err)
			}
			location = filepath.Join(filepath.Dir(p), "kv.db")
		}
		return OpenSQLite(location)
	case DriverRedis:
		cfg := o.redis.withDefaults()
		if location != "" {
			cfg.ConnectionURL = location
		}
		client, err := ConnectRedis(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return NewRedis(client), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

// Close releases store resources when the backend holds any.
func Close(s Store) error {
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
