package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Option configures a single Load call.
type Option func(*loadOptions)

type loadOptions struct {
	envFiles []string
	prefix   string
	environ  map[string]string
}

// WithEnvFiles reads the given .env files before parsing. Values already
// present in the process environment win over file values.
// Missing files are reported as errors; use WithOptionalEnvFiles to skip them.
func WithEnvFiles(paths ...string) Option {
	return func(o *loadOptions) {
		o.envFiles = append(o.envFiles, paths...)
	}
}

// WithOptionalEnvFiles reads the given .env files, silently skipping those that do not exist.
func WithOptionalEnvFiles(paths ...string) Option {
	return func(o *loadOptions) {
		for _, p := range paths {
			if _, err := os.Stat(p); err == nil {
				o.envFiles = append(o.envFiles, p)
			}
		}
	}
}

// WithPrefix prepends prefix to every env tag, e.g. "ATTRIBUTION_".
func WithPrefix(prefix string) Option {
	return func(o *loadOptions) {
		o.prefix = prefix
	}
}

// WithEnvironment parses from the given map instead of the process environment.
// Intended for tests and embedding hosts that keep settings elsewhere.
func WithEnvironment(vars map[string]string) Option {
	return func(o *loadOptions) {
		o.environ = vars
	}
}

// Load parses environment variables into v based on its `env` struct tags.
//
// Example:
//
//	type ClientConfig struct {
//		BaseURL string        `env:"BASE_URL" envDefault:"https://api.example.com"`
//		Timeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`
//		Token   string        `env:"TOKEN,required"`
//	}
//
//	var cfg ClientConfig
//	if err := config.Load(&cfg, config.WithPrefix("ATTRIBUTION_")); err != nil {
//		// handle error
//	}
func Load[T any](v *T, opts ...Option) error {
	if v == nil {
		return ErrNilPointer
	}

	o := &loadOptions{}
	for _, opt := range opts {
		opt(o)
	}

	envOpts := env.Options{Prefix: o.prefix}

	switch {
	case o.environ != nil:
		envOpts.Environment = o.environ
	case len(o.envFiles) > 0:
		fileVars, err := godotenv.Read(o.envFiles...)
		if err != nil {
			return errors.Join(ErrReadingEnvFile, err)
		}
		// Process environment overrides file values.
		merged := env.ToMap(os.Environ())
		for k, val := range fileVars {
			if _, exists := merged[k]; !exists {
				merged[k] = val
			}
		}
		envOpts.Environment = merged
	}

	if err := env.ParseWithOptions(v, envOpts); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}

	return nil
}

// MustLoad works like Load but panics if configuration loading fails.
func MustLoad[T any](v *T, opts ...Option) {
	if err := Load(v, opts...); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}
