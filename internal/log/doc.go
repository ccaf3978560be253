// Package log provides slog loggers that mask sensitive values before they
// reach the output.
//
// iprecon talks to third-party geolocation APIs, some of which take an API
// token in the query string, and may route traffic through an authenticated
// SOCKS5 proxy. The SecureHandler keeps those credentials out of the logs:
//   - attributes whose key names a credential (token, password, api_key, ...)
//   - values that look like bearer tokens, JWTs or long API keys
//   - URL query parameters such as ?token= or ?key=
//   - userinfo in URLs and proxy addresses (user:pass@host)
//
// Addresses under investigation, locations and port lists are logged as is.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
//
//	logger.Debug("geolocation request",
//	    "url", "https://ipinfo.io/8.8.8.8/json?token=abc", // token=***REDACTED***
//	)
package log
