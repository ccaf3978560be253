// Package config holds the runtime configuration of iprecon: timeouts,
// concurrency, network settings, output locations and the geolocation
// provider chain. Values start from NewConfig defaults, are overridden by
// an optional YAML file, and finally by command-line flags.
package config
