package config

import "errors"

var (
	// ErrParsingConfig wraps env parsing failures, including missing required variables.
	ErrParsingConfig = errors.New("config: cannot parse environment")

	// ErrReadingEnvFile is returned when a required .env file cannot be read.
	ErrReadingEnvFile = errors.New("config: cannot read env file")

	// ErrNilPointer is returned when Load gets a nil target.
	ErrNilPointer = errors.New("config: nil target")
)
