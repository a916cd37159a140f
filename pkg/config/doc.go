// Package config loads typed configuration from environment variables and
// optional .env files.
//
// It wraps github.com/caarlos0/env/v11 for struct-tag parsing and
// github.com/joho/godotenv for reading .env files. Unlike a process-wide
// cache, every Load call parses afresh, so several client instances (or
// tests) can load different settings side by side.
//
// # Usage
//
//	type Settings struct {
//	    BaseURL string `env:"BASE_URL" envDefault:"https://api.example.com"`
//	}
//
//	var s Settings
//	err := config.Load(&s,
//	    config.WithPrefix("ATTRIBUTION_"),
//	    config.WithOptionalEnvFiles(".env"),
//	)
//
// # Error Handling
//
// Parsing failures are joined with ErrParsingConfig and unreadable env files
// with ErrReadingEnvFile, so callers can match them with errors.Is.
package config
