package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and the command layer.
var (
	// ErrNoTarget is returned when a scan is requested without any address.
	ErrNoTarget = errors.New("no target specified: provide IP addresses or use --list")

	// ErrInvalidTimeout is returned when a network timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidConcurrency is returned when the concurrency cap is negative.
	// Zero means no cap.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be zero (unbounded) or positive")

	// ErrInvalidPacing is returned when the provider pacing delay is negative.
	ErrInvalidPacing = errors.New("invalid pacing: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrNoProviders is returned when the geolocation provider chain is empty.
	ErrNoProviders = errors.New("no geolocation providers configured")

	// ErrInvalidListenAddress is returned when the HTTP listen address is empty.
	ErrInvalidListenAddress = errors.New("invalid listen address: must not be empty")

	// ErrConfigNotFound is returned when the configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")
)
