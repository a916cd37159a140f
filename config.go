package attribution

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/attribution/pkg/fingerprint"
	"github.com/dmitrymomot/attribution/pkg/kvstore"
	"github.com/dmitrymomot/attribution/pkg/logger"
	"github.com/dmitrymomot/attribution/pkg/requestid"
	"github.com/dmitrymomot/attribution/pkg/transport"
)

// Config holds the client settings read from the environment. Load it with
// config.Load(&cfg, config.WithPrefix("ATTRIBUTION_")).
type Config struct {
	BaseURL        string        `env:"BASE_URL" envDefault:"http://localhost:4000"`
	Token          string        `env:"TOKEN"`
	AppVersion     string        `env:"APP_VERSION"`
	Platform       string        `env:"PLATFORM" envDefault:"GO"`
	OS             string        `env:"OS" envDefault:"other"`
	ClickIDKey     string        `env:"CLICK_ID_KEY" envDefault:"gclid"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`
	MaxRetries     int           `env:"MAX_RETRIES" envDefault:"0"`
	CircuitBreaker bool          `env:"CIRCUIT_BREAKER" envDefault:"true"`

	DisableAutoDeeplink  bool `env:"DISABLE_AUTO_DEEPLINK"`
	DisableAdvertisingID bool `env:"DISABLE_ADVERTISING_ID"`
	HashPII              bool `env:"HASH_PII"`

	StoreDriver string `env:"STORE_DRIVER" envDefault:"file"`
	Store       string `env:"STORE"`
	// StoreScope prefixes every stored key, so clients of several projects
	// can share one store.
	StoreScope string `env:"STORE_SCOPE"`
	Redis      kvstore.RedisConfig

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

// NewFromConfig opens the configured store and builds a client. Explicit
// opts are applied after the config-derived ones and win. The caller owns
// the returned client and must Close it.
func NewFromConfig(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	format := logger.Format(cfg.LogFormat)
	if format != logger.FormatJSON && format != logger.FormatText {
		return nil, fmt.Errorf("attribution: invalid log format %q", cfg.LogFormat)
	}

	store, err := kvstore.Open(ctx, cfg.StoreDriver, cfg.Store, kvstore.WithRedisConfig(cfg.Redis))
	if err != nil {
		return nil, fmt.Errorf("attribution: open store: %w", err)
	}
	if cfg.StoreScope != "" {
		store = kvstore.NewScoped(store, cfg.StoreScope)
	}

	log := logger.New(
		logger.WithLevelName(cfg.LogLevel),
		logger.WithFormat(format),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
		logger.WithAttr(slog.String("sdk_version", PackageVersion)),
	)

	topts := []transport.Option{transport.WithMaxRetries(cfg.MaxRetries)}
	if cfg.RequestTimeout > 0 {
		topts = append(topts, transport.WithTimeout(cfg.RequestTimeout))
	}

	base := []Option{
		WithStore(store),
		WithLogger(log),
		WithDevice(fingerprint.ParseOS(cfg.OS)),
		WithAppVersion(cfg.AppVersion),
		WithPlatform(cfg.Platform),
		WithClickIDKey(cfg.ClickIDKey),
		WithAutoDeeplinkDisabled(cfg.DisableAutoDeeplink),
		WithAdvertisingIDDisabled(cfg.DisableAdvertisingID),
		WithPIIHashing(cfg.HashPII),
		WithTransportOptions(topts...),
	}
	if cfg.CircuitBreaker {
		base = append(base, WithCircuitBreaker())
	}

	c, err := New(cfg.BaseURL, append(base, opts...)...)
	if err != nil {
		_ = kvstore.Close(store)
		return nil, err
	}
	return c, nil
}
