package config

import "errors"

// Sentinel kinds so callers can classify configuration failures with
// errors.Is.
var (
	// ErrInvalidConfig marks a configuration that fails validation.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrLoadConfig marks a configuration that could not be read or parsed.
	ErrLoadConfig = errors.New("configuration load failed")
)
